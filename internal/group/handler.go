package group

import (
	"net/http"

	"blog-service/internal/shared/httpx"
	"blog-service/internal/shared/validate"
)

type CreateReq struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=100"`
	Description string `json:"description"`
}

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	if _, _, err := httpx.UserFromCtx(r); err != nil {
		return err
	}
	in, err := httpx.Decode[CreateReq](r)
	if err != nil {
		return err
	}
	if err := validate.Struct(in); err != nil {
		httpx.WriteJSON(w, map[string]any{"errors": validate.Fields(err)}, http.StatusUnprocessableEntity)
		return nil
	}
	g, err := h.svc.Create(in.Title, in.Slug, in.Description)
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, g, http.StatusCreated)
	return nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	groups, err := h.svc.ListAll()
	if err != nil {
		return err
	}
	httpx.WriteJSON(w, map[string]any{"items": groups}, http.StatusOK)
	return nil
}
