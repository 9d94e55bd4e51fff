package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"blog-service/internal/shared/httpx"

	"github.com/redis/go-redis/v9"
)

type Limiter struct{ R *redis.Client }

func New(r *redis.Client) *Limiter { return &Limiter{R: r} }

func (l *Limiter) AllowSliding(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	k := "rl:" + key
	pipe := l.R.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, window)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return false, 0, err
	}
	n := incr.Val()
	return n <= limit, n, nil
}

// LimitHTTP throttles mutating endpoints per authenticated user.
func (l *Limiter) LimitHTTP(limit int64, window time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, username, err := httpx.UserFromCtx(r)
		if err != nil {
			httpx.WriteJSON(w, map[string]any{"error": err.Error()}, http.StatusUnauthorized)
			return
		}
		ok, n, e := l.AllowSliding(r.Context(), username+":"+r.URL.Path, limit, window)
		if e != nil {
			httpx.WriteJSON(w, map[string]any{"error": "rate limiter error"}, http.StatusTooManyRequests)
			return
		}
		if !ok {
			httpx.WriteJSON(w, map[string]any{
				"error": fmt.Sprintf("rate limit exceeded (count=%d, limit=%d)", n, limit),
			}, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
