package profile

import (
	"net/http"

	"blog-service/internal/follow"
	"blog-service/internal/pager"
	"blog-service/internal/post"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/user"
)

type Handler struct {
	users   user.Service
	posts   post.Service
	follows follow.Service
}

// authorView is the public projection of an account; the email stays private.
type authorView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func NewHandler(users user.Service, posts post.Service, follows follow.Service) *Handler {
	return &Handler{users: users, posts: posts, follows: follows}
}

// Show lists an author's posts with a "following" flag for the viewer.
// Anonymous viewers always see following=false.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) error {
	author, err := h.users.GetByUsername(r.PathValue("username"))
	if err != nil {
		return err
	}
	posts, pg, err := h.posts.ListAuthorPage(author.ID, pager.FromRequest(r))
	if err != nil {
		return err
	}
	following := false
	if uid, _, err := httpx.UserFromCtx(r); err == nil {
		following, err = h.follows.IsFollowing(uid, author.ID)
		if err != nil {
			return err
		}
	}
	httpx.WriteJSON(w, map[string]any{
		"author":    authorView{ID: author.ID, Username: author.Username},
		"following": following,
		"page":      pg,
		"items":     post.Views(posts),
	}, http.StatusOK)
	return nil
}
