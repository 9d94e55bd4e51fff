package user

import (
	"net/http"

	"blog-service/internal/shared/httpx"
	"blog-service/internal/shared/jwt"
	"blog-service/internal/shared/validate"
)

type Handler struct{ svc Service }

func NewHandler(s Service) *Handler { return &Handler{svc: s} }

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) error {
	body, err := httpx.Decode[RegisterReq](r)
	if err != nil {
		return err
	}
	if err = validate.Struct(body); err != nil {
		httpx.WriteJSON(w, map[string]any{"errors": validate.Fields(err)}, http.StatusUnprocessableEntity)
		return nil
	}
	u, err := h.svc.Register(body.Username, body.Email, body.Password)
	if err != nil {
		return err
	}
	token, _ := jwt.Make(u.ID, u.Username)
	setSession(w, token)
	httpx.WriteJSON(w, map[string]any{
		"username": u.Username, "email": u.Email, "access_token": token,
	}, http.StatusCreated)
	return nil
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) error {
	body, err := httpx.Decode[LoginReq](r)
	if err != nil {
		return err
	}
	if err = validate.Struct(body); err != nil {
		httpx.WriteJSON(w, map[string]any{"errors": validate.Fields(err)}, http.StatusUnprocessableEntity)
		return nil
	}
	u, err := h.svc.Login(body.Username, body.Password)
	if err != nil {
		return err
	}
	token, _ := jwt.Make(u.ID, u.Username)
	setSession(w, token)
	httpx.WriteJSON(w, map[string]any{
		"message": "login successful", "username": u.Username, "access_token": token,
	}, http.StatusOK)
	return nil
}

// LoginForm is the target of unauthenticated redirects; it echoes the form
// descriptor and the return URL the client should come back to.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) error {
	httpx.WriteJSON(w, map[string]any{
		"form": map[string]any{
			"fields": []string{"username", "password"},
		},
		"next": r.URL.Query().Get("next"),
	}, http.StatusOK)
	return nil
}

func setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
}
