package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blog-service/configs"
	"blog-service/internal/cache"
	"blog-service/internal/comment"
	"blog-service/internal/follow"
	"blog-service/internal/group"
	"blog-service/internal/migrate"
	"blog-service/internal/post"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/storage/disk"
	"blog-service/pkg/di"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int

func newTestApp(t *testing.T) (*di.Container, http.Handler) {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:app_test_%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, migrate.AutoMigrateAll(db))

	store, err := disk.New(filepath.Join(t.TempDir(), "media"))
	require.NoError(t, err)

	c := di.BuildWith(db, cache.NewMemory(), store, nil)
	return c, App(configs.LoadConfig(), c)
}

func signup(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"sup3rsecret"}`, username, username)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func do(h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: httpx.SessionCookie, Value: token})
	}
	h.ServeHTTP(rec, req)
	return rec
}

func postCount(t *testing.T, c *di.Container) int64 {
	t.Helper()
	var n int64
	require.NoError(t, c.DB.Model(&post.Post{}).Count(&n).Error)
	return n
}

func commentCount(t *testing.T, c *di.Container) int64 {
	t.Helper()
	var n int64
	require.NoError(t, c.DB.Model(&comment.Comment{}).Count(&n).Error)
	return n
}

func TestAnonymousCreateRedirectsToLogin(t *testing.T) {
	c, h := newTestApp(t)

	rec := do(h, "POST", "/create/", "", `{"text":"hi"}`)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=%2Fcreate%2F", rec.Header().Get("Location"))
	assert.Zero(t, postCount(t, c))
}

func TestCreatePost(t *testing.T) {
	c, h := newTestApp(t)
	token := signup(t, h, "leo")

	g, err := c.GroupService.Create("Work", "work", "work posts")
	require.NoError(t, err)

	rec := do(h, "POST", "/create/", token, fmt.Sprintf(`{"text":"first post","group_id":%d}`, g.ID))

	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))
	require.Equal(t, int64(1), postCount(t, c))

	var p post.Post
	require.NoError(t, c.DB.Preload("Author").Preload("Group").First(&p).Error)
	assert.Equal(t, "first post", p.Text)
	assert.Equal(t, "leo", p.Author.Username)
	require.NotNil(t, p.Group)
	assert.Equal(t, "work", p.Group.Slug)
}

func TestCreatePostUnknownGroupIsFieldError(t *testing.T) {
	c, h := newTestApp(t)
	token := signup(t, h, "leo")

	rec := do(h, "POST", "/create/", token, `{"text":"orphan","group_id":999}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	var form post.FormView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	assert.Contains(t, form.Errors, "group_id")
	assert.Zero(t, postCount(t, c))
}

func TestCreatePostInvalidIsNotPersisted(t *testing.T) {
	c, h := newTestApp(t)
	token := signup(t, h, "leo")

	rec := do(h, "POST", "/create/", token, `{"text":""}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var form post.FormView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	assert.False(t, form.IsEdit)
	assert.Contains(t, form.Errors, "text")
	assert.Zero(t, postCount(t, c))
}

// uploadPost submits a multipart form with a small gif attached.
func uploadPost(t *testing.T, h http.Handler, token, target, text, filename string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", text))
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte("GIF89a"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: httpx.SessionCookie, Value: token})
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreatePostWithImage(t *testing.T) {
	c, h := newTestApp(t)
	token := signup(t, h, "leo")

	rec := uploadPost(t, h, token, "/create/", "with image", "small.gif")
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	var p post.Post
	require.NoError(t, c.DB.First(&p).Error)
	require.True(t, strings.HasPrefix(p.ImageURL, "/media/"), p.ImageURL)
	assert.True(t, strings.HasSuffix(p.ImageURL, ".gif"))

	d := c.Storage.(*disk.Storage)
	data, err := os.ReadFile(filepath.Join(d.Dir(), strings.TrimPrefix(p.ImageURL, "/media/")))
	require.NoError(t, err)
	assert.Equal(t, []byte("GIF89a"), data)
}

func TestEditReplacesImage(t *testing.T) {
	c, h := newTestApp(t)
	token := signup(t, h, "leo")

	require.Equal(t, http.StatusFound, uploadPost(t, h, token, "/create/", "with image", "old.gif").Code)
	var p post.Post
	require.NoError(t, c.DB.First(&p).Error)

	d := c.Storage.(*disk.Storage)
	oldKey, ok := c.Storage.Key(p.ImageURL)
	require.True(t, ok)
	oldPath := filepath.Join(d.Dir(), oldKey)
	_, err := os.Stat(oldPath)
	require.NoError(t, err)

	rec := uploadPost(t, h, token, fmt.Sprintf("/posts/%d/edit/", p.ID), "edited", "new.gif")
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	require.NoError(t, c.DB.First(&p, p.ID).Error)
	newKey, ok := c.Storage.Key(p.ImageURL)
	require.True(t, ok)
	assert.NotEqual(t, oldKey, newKey)

	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err), "replaced image must be removed from storage")
	_, err = os.Stat(filepath.Join(d.Dir(), newKey))
	assert.NoError(t, err)
}

func TestEditPostByAuthor(t *testing.T) {
	c, h := newTestApp(t)
	token := signup(t, h, "leo")

	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", token, `{"text":"original"}`).Code)
	var p post.Post
	require.NoError(t, c.DB.First(&p).Error)

	rec := do(h, "POST", fmt.Sprintf("/posts/%d/edit/", p.ID), token, `{"text":"edited"}`)

	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, fmt.Sprintf("/posts/%d/", p.ID), rec.Header().Get("Location"))
	assert.Equal(t, int64(1), postCount(t, c))

	require.NoError(t, c.DB.First(&p, p.ID).Error)
	assert.Equal(t, "edited", p.Text)
}

func TestEditByNonAuthorRedirectsToDetail(t *testing.T) {
	c, h := newTestApp(t)
	author := signup(t, h, "leo")
	other := signup(t, h, "mia")

	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", author, `{"text":"mine"}`).Code)
	var p post.Post
	require.NoError(t, c.DB.First(&p).Error)

	rec := do(h, "POST", fmt.Sprintf("/posts/%d/edit/", p.ID), other, `{"text":"hijacked"}`)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", p.ID), rec.Header().Get("Location"))

	require.NoError(t, c.DB.First(&p, p.ID).Error)
	assert.Equal(t, "mine", p.Text, "non-author edit must not mutate the post")
}

func TestEditFormPrefilled(t *testing.T) {
	c, h := newTestApp(t)
	token := signup(t, h, "leo")

	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", token, `{"text":"original"}`).Code)
	var p post.Post
	require.NoError(t, c.DB.First(&p).Error)

	rec := do(h, "GET", fmt.Sprintf("/posts/%d/edit/", p.ID), token, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var form post.FormView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &form))
	assert.True(t, form.IsEdit)
	assert.Equal(t, "original", form.Values["text"])
}

func TestAddComment(t *testing.T) {
	c, h := newTestApp(t)
	author := signup(t, h, "leo")
	commenter := signup(t, h, "mia")

	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", author, `{"text":"post"}`).Code)
	var p post.Post
	require.NoError(t, c.DB.First(&p).Error)

	rec := do(h, "POST", fmt.Sprintf("/posts/%d/comment/", p.ID), commenter, `{"text":"nice"}`)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", p.ID), rec.Header().Get("Location"))
	require.Equal(t, int64(1), commentCount(t, c))

	var cm comment.Comment
	require.NoError(t, c.DB.Preload("Author").First(&cm).Error)
	assert.Equal(t, "nice", cm.Text)
	assert.Equal(t, "mia", cm.Author.Username)
	assert.Equal(t, p.ID, cm.PostID)
}

func TestAddCommentAnonymous(t *testing.T) {
	c, h := newTestApp(t)
	author := signup(t, h, "leo")

	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", author, `{"text":"post"}`).Code)
	var p post.Post
	require.NoError(t, c.DB.First(&p).Error)

	rec := do(h, "POST", fmt.Sprintf("/posts/%d/comment/", p.ID), "", `{"text":"nope"}`)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/auth/login/?next="))
	assert.Zero(t, commentCount(t, c))
}

func TestAddCommentInvalidSilentlyDropped(t *testing.T) {
	c, h := newTestApp(t)
	token := signup(t, h, "leo")

	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", token, `{"text":"post"}`).Code)
	var p post.Post
	require.NoError(t, c.DB.First(&p).Error)

	rec := do(h, "POST", fmt.Sprintf("/posts/%d/comment/", p.ID), token, `{"text":""}`)

	// Invalid submissions still bounce back to the detail page.
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("/posts/%d/", p.ID), rec.Header().Get("Location"))
	assert.Zero(t, commentCount(t, c))
}

func TestAddCommentMissingPost(t *testing.T) {
	_, h := newTestApp(t)
	token := signup(t, h, "leo")

	rec := do(h, "POST", "/posts/999/comment/", token, `{"text":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostDetail(t *testing.T) {
	c, h := newTestApp(t)
	token := signup(t, h, "leo")

	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", token, `{"text":"post"}`).Code)
	var p post.Post
	require.NoError(t, c.DB.First(&p).Error)
	require.Equal(t, http.StatusFound, do(h, "POST", fmt.Sprintf("/posts/%d/comment/", p.ID), token, `{"text":"first"}`).Code)

	rec := do(h, "GET", fmt.Sprintf("/posts/%d/", p.ID), token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Post     post.View          `json:"post"`
		Comments []post.CommentView `json:"comments"`
		Form     *post.FormView     `json:"form"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "post", out.Post.Text)
	require.Len(t, out.Comments, 1)
	assert.Equal(t, "first", out.Comments[0].Text)
	require.NotNil(t, out.Form, "authenticated viewers get an empty comment form")

	// anonymous viewers get no form
	rec = do(h, "GET", fmt.Sprintf("/posts/%d/", p.ID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var anon map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &anon))
	assert.NotContains(t, anon, "form")

	assert.Equal(t, http.StatusNotFound, do(h, "GET", "/posts/999/", "", "").Code)
}

func TestGroupListing(t *testing.T) {
	c, h := newTestApp(t)
	token := signup(t, h, "leo")

	g, err := c.GroupService.Create("Work", "work", "work posts")
	require.NoError(t, err)
	require.Equal(t, http.StatusFound,
		do(h, "POST", "/create/", token, fmt.Sprintf(`{"text":"grouped","group_id":%d}`, g.ID)).Code)
	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", token, `{"text":"loose"}`).Code)

	rec := do(h, "GET", "/group/work/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Group group.Group `json:"group"`
		Items []post.View `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Work", out.Group.Title)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "grouped", out.Items[0].Text)

	assert.Equal(t, http.StatusNotFound, do(h, "GET", "/group/nope/", "", "").Code)
}

func TestProfileListing(t *testing.T) {
	_, h := newTestApp(t)
	author := signup(t, h, "leo")
	viewer := signup(t, h, "mia")

	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", author, `{"text":"mine"}`).Code)

	// anonymous viewer: following is always false
	rec := do(h, "GET", "/profile/leo/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Following bool        `json:"following"`
		Items     []post.View `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out.Following)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "leo", out.Items[0].Author)
	assert.NotContains(t, rec.Body.String(), "email", "profiles must not leak the account email")

	require.Equal(t, http.StatusFound, do(h, "GET", "/profile/leo/follow/", viewer, "").Code)
	rec = do(h, "GET", "/profile/leo/", viewer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Following)

	assert.Equal(t, http.StatusNotFound, do(h, "GET", "/profile/ghost/", "", "").Code)
}

func TestPaginationAcrossPages(t *testing.T) {
	c, h := newTestApp(t)
	signup(t, h, "leo")

	u, err := c.UserService.GetByUsername("leo")
	require.NoError(t, err)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		require.NoError(t, c.DB.Create(&post.Post{
			Text: fmt.Sprintf("post %d", i), AuthorID: u.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}).Error)
	}

	var out post.ListResponse
	rec := do(h, "GET", "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Items, 10)
	assert.Equal(t, "post 14", out.Items[0].Text)

	rec = do(h, "GET", "/?page=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Items, 5)
	assert.Equal(t, 2, out.Page.Number)
}

func TestFollowFeed(t *testing.T) {
	c, h := newTestApp(t)
	author := signup(t, h, "leo")
	viewer := signup(t, h, "mia")

	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", author, `{"text":"from leo"}`).Code)

	// before following: empty feed
	var out post.ListResponse
	rec := do(h, "GET", "/follow/", viewer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out.Items)

	// follow twice: one row, feed shows the author's posts
	require.Equal(t, http.StatusFound, do(h, "GET", "/profile/leo/follow/", viewer, "").Code)
	rec = do(h, "GET", "/profile/leo/follow/", viewer, "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/leo/", rec.Header().Get("Location"))

	var n int64
	require.NoError(t, c.DB.Model(&follow.Follow{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	rec = do(h, "GET", "/follow/", viewer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "from leo", out.Items[0].Text)

	// self-follow is a no-op
	require.Equal(t, http.StatusFound, do(h, "GET", "/profile/leo/follow/", author, "").Code)
	require.NoError(t, c.DB.Model(&follow.Follow{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	// unfollow: redirect to index, feed empties
	rec = do(h, "GET", "/profile/leo/unfollow/", viewer, "")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = do(h, "GET", "/follow/", viewer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out.Items)
}

func TestIndexCachedUntilCleared(t *testing.T) {
	_, h := newTestApp(t)
	token := signup(t, h, "leo")

	first := do(h, "GET", "/", "", "")
	require.Equal(t, http.StatusOK, first.Code)

	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", token, `{"text":"fresh"}`).Code)

	second := do(h, "GET", "/", "", "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes(),
		"index must be served from cache even after a new post")

	require.Equal(t, http.StatusOK, do(h, "POST", "/internal/cache/clear", token, "").Code)

	third := do(h, "GET", "/", "", "")
	require.Equal(t, http.StatusOK, third.Code)
	assert.NotEqual(t, first.Body.Bytes(), third.Body.Bytes())
	assert.Contains(t, third.Body.String(), "fresh")
}

func TestCacheClearRequiresSession(t *testing.T) {
	_, h := newTestApp(t)
	token := signup(t, h, "leo")

	first := do(h, "GET", "/", "", "")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusFound, do(h, "POST", "/create/", token, `{"text":"fresh"}`).Code)

	rec := do(h, "POST", "/internal/cache/clear", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	second := do(h, "GET", "/", "", "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes(),
		"an unauthenticated clear must not drop the cached index")
}

func TestLoginFlow(t *testing.T) {
	_, h := newTestApp(t)
	signup(t, h, "leo")

	rec := do(h, "POST", "/auth/login", "", `{"username":"leo","password":"sup3rsecret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.AccessToken)

	rec = do(h, "POST", "/auth/login", "", `{"username":"leo","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, "GET", "/auth/login/?next=%2Fcreate%2F", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/create/")
}
