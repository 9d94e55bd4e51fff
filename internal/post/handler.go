package post

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"blog-service/internal/group"
	"blog-service/internal/pager"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/shared/validate"
	"blog-service/internal/storage"

	"github.com/google/uuid"
)

// CommentSource supplies a post's comments for the detail view.
type CommentSource interface {
	ListByPost(postID uint) ([]CommentView, error)
}

type Handler struct {
	svc      Service
	groups   group.Service
	comments CommentSource
	store    storage.Storage
}

func NewHandler(svc Service, groups group.Service, store storage.Storage) *Handler {
	return &Handler{svc: svc, groups: groups, store: store}
}

func (h *Handler) WithComments(src CommentSource) { h.comments = src }

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) error {
	posts, pg, err := h.svc.ListPage(pager.FromRequest(r))
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, ListResponse{Page: pg, Items: Views(posts)}, http.StatusOK)
	return nil
}

func (h *Handler) GroupIndex(w http.ResponseWriter, r *http.Request) error {
	g, err := h.groups.GetBySlug(r.PathValue("slug"))
	if err != nil {
		return err
	}
	posts, pg, err := h.svc.ListGroupPage(g.ID, pager.FromRequest(r))
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{
		"group": g,
		"page":  pg,
		"items": Views(posts),
	}, http.StatusOK)
	return nil
}

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) error {
	p, err := h.post(r)
	if err != nil {
		return err
	}
	comments, err := h.comments.ListByPost(p.ID)
	if err != nil {
		return err
	}
	out := map[string]any{
		"post":     ToView(*p),
		"comments": comments,
	}
	if _, _, err := httpx.UserFromCtx(r); err == nil {
		out["form"] = FormView{Values: map[string]any{"text": ""}}
	}
	httpx.WriteJSON(w, out, http.StatusOK)
	return nil
}

func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) error {
	httpx.WriteJSON(w, emptyForm(), http.StatusOK)
	return nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	uid, username, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	in, imageURL, err := h.parseForm(r)
	if err != nil {
		return err
	}
	if err := validate.Struct(in); err != nil {
		renderInvalid(w, in, validate.Fields(err), false)
		return nil
	}
	if _, err := h.svc.Create(r.Context(), uid, in, imageURL); err != nil {
		if errors.Is(err, ErrUnknownGroup) {
			renderInvalid(w, in, map[string]string{"group_id": err.Error()}, false)
			return nil
		}
		return errors.Join(httpx.ErrInternal, err)
	}
	http.Redirect(w, r, "/profile/"+username+"/", http.StatusFound)
	return nil
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) error {
	uid, _, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	p, err := h.post(r)
	if err != nil {
		return err
	}
	if p.AuthorID != uid {
		redirectToDetail(w, r, p.ID)
		return nil
	}
	httpx.WriteJSON(w, FormView{
		Values: map[string]any{"text": p.Text, "group_id": p.GroupID, "image": p.ImageURL},
		IsEdit: true,
	}, http.StatusOK)
	return nil
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) error {
	uid, _, err := httpx.UserFromCtx(r)
	if err != nil {
		return err
	}
	p, err := h.post(r)
	if err != nil {
		return err
	}
	// Not the author: bounce to the detail view, not an error.
	if p.AuthorID != uid {
		redirectToDetail(w, r, p.ID)
		return nil
	}
	in, imageURL, err := h.parseForm(r)
	if err != nil {
		return err
	}
	if err := validate.Struct(in); err != nil {
		renderInvalid(w, in, validate.Fields(err), true)
		return nil
	}
	oldImage := p.ImageURL
	if _, err := h.svc.Edit(p.ID, in, imageURL); err != nil {
		if errors.Is(err, ErrUnknownGroup) {
			renderInvalid(w, in, map[string]string{"group_id": err.Error()}, true)
			return nil
		}
		return errors.Join(httpx.ErrInternal, err)
	}
	// A replaced image leaves no orphaned object behind.
	if imageURL != "" && oldImage != "" && oldImage != imageURL {
		if key, ok := h.store.Key(oldImage); ok {
			_ = h.store.Remove(r.Context(), key)
		}
	}
	redirectToDetail(w, r, p.ID)
	return nil
}

func (h *Handler) post(r *http.Request) (*Post, error) {
	id, err := strconv.ParseUint(r.PathValue("post_id"), 10, 64)
	if err != nil {
		return nil, httpx.ErrNotFound
	}
	return h.svc.GetByID(uint(id))
}

// parseForm accepts either a JSON body or a multipart form with an optional
// image upload; an uploaded image lands in storage before validation, which
// matches the single-shot, no-partial-post contract because an orphaned
// object is not a Post.
func (h *Handler) parseForm(r *http.Request) (Form, string, error) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		in, err := httpx.Decode[Form](r)
		return in, "", err
	}
	if err := r.ParseMultipartForm(20 << 20); err != nil { // 20MB
		return Form{}, "", err
	}
	in := Form{Text: strings.TrimSpace(r.FormValue("text"))}
	if g := strings.TrimSpace(r.FormValue("group_id")); g != "" {
		id64, err := strconv.ParseUint(g, 10, 64)
		if err != nil {
			return in, "", fmt.Errorf("invalid group_id %q", g)
		}
		id := uint(id64)
		in.GroupID = &id
	}
	file, hdr, err := r.FormFile("image")
	if err != nil {
		return in, "", nil // image is optional
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return in, "", err
	}
	key := uuid.NewString() + filepath.Ext(hdr.Filename)
	if err := h.store.Put(r.Context(), key, hdr.Header.Get("Content-Type"), data); err != nil {
		return in, "", err
	}
	return in, h.store.URL(key), nil
}

func emptyForm() FormView {
	return FormView{Values: map[string]any{"text": "", "group_id": nil}}
}

func renderInvalid(w http.ResponseWriter, in Form, errs map[string]string, isEdit bool) {
	httpx.WriteJSON(w, FormView{
		Values: map[string]any{"text": in.Text, "group_id": in.GroupID},
		Errors: errs,
		IsEdit: isEdit,
	}, http.StatusUnprocessableEntity)
}

func redirectToDetail(w http.ResponseWriter, r *http.Request, id uint) {
	http.Redirect(w, r, fmt.Sprintf("/posts/%d/", id), http.StatusFound)
}
