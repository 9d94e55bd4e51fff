package pager

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest(t *testing.T) {
	cases := map[string]int{
		"/":            1,
		"/?page=3":     3,
		"/?page=abc":   1,
		"/?page=0":     1,
		"/?page=-2":    1,
		"/?page=00010": 10,
	}
	for target, want := range cases {
		r := httptest.NewRequest("GET", target, nil)
		assert.Equal(t, want, FromRequest(r), "target %s", target)
	}
}

func TestBuildFirstPage(t *testing.T) {
	p, limit, offset := Build(15, 1)

	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, int64(15), p.Total)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)
	assert.Equal(t, PerPage, limit)
	assert.Equal(t, 0, offset)
}

func TestBuildClampsOutOfRange(t *testing.T) {
	p, _, offset := Build(15, 99)

	assert.Equal(t, 2, p.Number)
	assert.Equal(t, 10, offset)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)
}

func TestBuildEmptyCollection(t *testing.T) {
	p, limit, offset := Build(0, 5)

	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, PerPage, limit)
	assert.Equal(t, 0, offset)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}
