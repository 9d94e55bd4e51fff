package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"blog-service/internal/shared/jwt"
)

type HandlerFunc func(http.ResponseWriter, *http.Request) error

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)

func Wrap(fn HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			code := http.StatusBadRequest
			switch {
			case errors.Is(err, ErrNotFound):
				code = http.StatusNotFound
			case errors.Is(err, ErrUnauthorized):
				code = http.StatusUnauthorized
			case errors.Is(err, ErrInternal):
				code = http.StatusInternalServerError
			}
			WriteJSON(w, map[string]any{"error": err.Error()}, code)
		}
	})
}

func Decode[T any](r *http.Request) (T, error) {
	var t T
	err := json.NewDecoder(r.Body).Decode(&t)
	return t, err
}

func WriteJSON(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Use stable string keys to avoid mismatches if multiple copies of the package are linked.
var (
	ctxUserIDKey   = "httpx.user_id"
	ctxUsernameKey = "httpx.username"
)

const SessionCookie = "session"

// LoginURL is where unauthenticated requests to protected endpoints are sent.
const LoginURL = "/auth/login/"

func token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func withIdentity(r *http.Request, uid uint, username string) *http.Request {
	ctx := context.WithValue(r.Context(), ctxUserIDKey, uid)
	ctx = context.WithValue(ctx, ctxUsernameKey, username)
	return r.WithContext(ctx)
}

// LoginRequired guards a handler the way the framework decorator did: no
// valid session means a redirect to the login page carrying the original URL.
func LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := token(r)
		if tok == "" {
			redirectToLogin(w, r)
			return
		}
		uid, username, err := jwt.Parse(tok)
		if err != nil || username == "" {
			redirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, withIdentity(r, uid, username))
	})
}

// WithUser attaches the viewer's identity when a valid session is present and
// passes the request through anonymously otherwise.
func WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := token(r); tok != "" {
			if uid, username, err := jwt.Parse(tok); err == nil {
				r = withIdentity(r, uid, username)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, LoginURL+"?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
}

func UserFromCtx(r *http.Request) (uint, string, error) {
	uid, _ := r.Context().Value(ctxUserIDKey).(uint)
	username, _ := r.Context().Value(ctxUsernameKey).(string)
	if uid == 0 || username == "" {
		return 0, "", ErrUnauthorized
	}
	return uid, username, nil
}

func QueryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
