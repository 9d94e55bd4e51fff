package pager

import (
	"net/http"
	"strconv"
)

// PerPage is the fixed listing page size.
const PerPage = 10

type Page struct {
	Number     int   `json:"number"`
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// FromRequest reads the 1-based "page" query parameter, defaulting to 1.
func FromRequest(r *http.Request) int {
	n := 1
	if r != nil {
		if v := r.URL.Query().Get("page"); v != "" {
			n = atoiDef(v, 1)
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Build clamps number into the available range for total items and returns
// the page metadata plus the limit/offset to hand to the repository.
func Build(total int64, number int) (Page, int, int) {
	totalPages := int((total + PerPage - 1) / PerPage)
	if totalPages < 1 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}
	p := Page{
		Number:     number,
		TotalPages: totalPages,
		Total:      total,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}
	return p, PerPage, (number - 1) * PerPage
}

func atoiDef(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
