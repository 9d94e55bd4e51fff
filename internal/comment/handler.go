package comment

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"blog-service/internal/shared/httpx"
	"blog-service/internal/shared/validate"
)

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

// Add posts a comment and always redirects back to the post detail page.
// Invalid submissions are dropped without surfacing an error, as the
// original flow did; a missing post is still a 404.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) error {
	uid, _, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	pid64, err := strconv.ParseUint(r.PathValue("post_id"), 10, 64)
	if err != nil {
		return httpx.ErrNotFound
	}
	postID := uint(pid64)
	if err := h.svc.EnsurePost(postID); err != nil {
		return err
	}

	in, err := h.decode(r)
	if err == nil && validate.Struct(in) == nil {
		if _, err := h.svc.Create(uid, postID, in.Text); err != nil {
			return err
		}
	}
	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", postID), http.StatusFound)
	return nil
}

func (h *Handler) decode(r *http.Request) (CreateReq, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return CreateReq{}, err
		}
		return CreateReq{Text: strings.TrimSpace(r.FormValue("text"))}, nil
	}
	return httpx.Decode[CreateReq](r)
}
