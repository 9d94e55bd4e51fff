package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"blog-service/configs"
	"blog-service/internal/cache"
	"blog-service/internal/comment"
	"blog-service/internal/follow"
	"blog-service/internal/group"
	"blog-service/internal/migrate"
	"blog-service/internal/post"
	"blog-service/internal/profile"
	"blog-service/internal/shared/httpx"
	"blog-service/internal/storage/disk"
	"blog-service/internal/user"
	"blog-service/pkg/di"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"gorm.io/plugin/opentelemetry/tracing"
)

func initOTEL(ctx context.Context) func(context.Context) error {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "otel-collector:4318"
	}
	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		log.Fatalf("otel exporter: %v", err)
	}
	res, _ := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(os.Getenv("OTEL_SERVICE_NAME")),
		attribute.String("deployment.environment", os.Getenv("ENV")),
	))
	ratio := 1.0
	if s := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); s != "" {
		if f, e := strconv.ParseFloat(s, 64); e == nil && f >= 0 && f <= 1 {
			ratio = f
		}
	}
	tp := trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(ratio))),
		trace.WithBatcher(exp),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown
}

// App assembles the route table on top of a wired container.
func App(cfg *configs.Config, c *di.Container) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	uh := user.NewHandler(c.UserService)
	mux.Handle("POST /auth/signup", httpx.Wrap(uh.Signup))
	mux.Handle("POST /auth/login", httpx.Wrap(uh.Login))
	mux.Handle("GET /auth/login/{$}", httpx.Wrap(uh.LoginForm))

	gh := group.NewHandler(c.GroupService)
	mux.Handle("GET /groups/{$}", httpx.Wrap(gh.List))

	ph := post.NewHandler(c.PostService, c.GroupService, c.Storage)
	ph.WithComments(c.CommentService)
	ch := comment.NewHandler(c.CommentService)
	fh := follow.NewHandler(c.FollowService, c.UserService, c.PostService)
	prh := profile.NewHandler(c.UserService, c.PostService, c.FollowService)

	// The home feed is served whole from the page cache until the TTL runs
	// out or an operator clears it; creating a post does not invalidate it.
	mux.Handle("GET /{$}", cache.Page(c.Cache, cfg.CacheTTL, httpx.Wrap(ph.Index)))

	mux.Handle("GET /group/{slug}/{$}", httpx.Wrap(ph.GroupIndex))
	mux.Handle("GET /posts/{post_id}/{$}", httpx.WithUser(httpx.Wrap(ph.Detail)))
	mux.Handle("GET /profile/{username}/{$}", httpx.WithUser(httpx.Wrap(prh.Show)))

	protect := func(pattern string, h http.Handler) {
		mux.Handle(pattern, httpx.LoginRequired(h))
	}
	throttled := func(h http.Handler) http.Handler {
		if c.Limiter == nil {
			return h
		}
		return c.Limiter.LimitHTTP(30, time.Minute, h)
	}

	protect("GET /create/{$}", httpx.Wrap(ph.CreateForm))
	protect("POST /create/{$}", throttled(httpx.Wrap(ph.Create)))
	protect("GET /posts/{post_id}/edit/{$}", httpx.Wrap(ph.EditForm))
	protect("POST /posts/{post_id}/edit/{$}", httpx.Wrap(ph.Edit))
	protect("POST /posts/{post_id}/comment/{$}", throttled(httpx.Wrap(ch.Add)))
	protect("GET /follow/{$}", httpx.Wrap(fh.Index))
	protect("GET /profile/{username}/follow/{$}", httpx.Wrap(fh.Follow))
	protect("GET /profile/{username}/unfollow/{$}", httpx.Wrap(fh.Unfollow))
	protect("POST /group/{$}", httpx.Wrap(gh.Create))

	// Operator primitive, not a page: requires a valid session and answers
	// 401 instead of redirecting.
	mux.Handle("POST /internal/cache/clear", httpx.WithUser(httpx.Wrap(func(w http.ResponseWriter, r *http.Request) error {
		if _, _, err := httpx.UserFromCtx(r); err != nil {
			return err
		}
		if err := c.Cache.Clear(r.Context()); err != nil {
			return errors.Join(httpx.ErrInternal, err)
		}
		httpx.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
		return nil
	})))

	if d, ok := c.Storage.(*disk.Storage); ok {
		mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(d.Dir()))))
	}

	return mux
}

func main() {
	ctx := context.Background()
	shutdown := initOTEL(ctx)
	defer func() {
		c, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = shutdown(c)
	}()

	cfg := configs.LoadConfig()
	container := di.BuildContainer(cfg)
	_ = container.DB.Use(tracing.NewPlugin())

	if os.Getenv("AUTO_MIGRATE") != "false" {
		if err := migrate.AutoMigrateAll(container.DB); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           otelhttp.NewHandler(App(cfg, container), "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
	log.Printf("blog-service listening on %s", cfg.AppPort)
	log.Fatal(srv.ListenAndServe())
}
