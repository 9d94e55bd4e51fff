package follow

import (
	"net/http"

	"blog-service/internal/pager"
	"blog-service/internal/post"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/user"
)

type Handler struct {
	svc   Service
	users user.Service
	posts post.Service
}

func NewHandler(svc Service, users user.Service, posts post.Service) *Handler {
	return &Handler{svc: svc, users: users, posts: posts}
}

// Index is the personalized feed: posts by authors the viewer follows.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) error {
	uid, _, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	authorIDs, err := h.svc.FollowedAuthorIDs(uid)
	if err != nil {
		return err
	}
	posts, pg, err := h.posts.ListAuthorsPage(authorIDs, pager.FromRequest(r))
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, post.ListResponse{Page: pg, Items: post.Views(posts)}, http.StatusOK)
	return nil
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) error {
	uid, _, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	username := r.PathValue("username")
	author, err := h.users.GetByUsername(username)
	if err != nil {
		return err
	}
	if err := h.svc.Follow(uid, author.ID); err != nil {
		return err
	}
	http.Redirect(w, r, "/profile/"+username+"/", http.StatusFound)
	return nil
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) error {
	uid, _, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	author, err := h.users.GetByUsername(r.PathValue("username"))
	if err != nil {
		return err
	}
	if err := h.svc.Unfollow(uid, author.ID); err != nil {
		return err
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}
