package di

import (
	"context"
	"log"

	"blog-service/configs"
	"blog-service/internal/cache"
	"blog-service/internal/comment"
	"blog-service/internal/follow"
	"blog-service/internal/group"
	"blog-service/internal/post"
	"blog-service/internal/ratelimit"
	"blog-service/internal/storage"
	"blog-service/internal/storage/disk"
	"blog-service/internal/storage/s3"
	"blog-service/internal/user"
	"blog-service/pkg/db"
	"blog-service/pkg/kafka"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	DB      *gorm.DB
	Cache   cache.Cache
	Storage storage.Storage
	Limiter *ratelimit.Limiter

	UserService    user.Service
	GroupService   group.Service
	PostService    post.Service
	CommentService comment.Service
	FollowService  follow.Service
}

// BuildContainer wires the production stack: Postgres, redis-backed page
// cache and rate limiter when REDIS_HOST is set, S3 media storage when
// S3_ENDPOINT is set (local disk otherwise), and a Kafka producer when a
// broker is configured.
func BuildContainer(cfg *configs.Config) *Container {
	dbConn := db.NewDb(cfg)

	var pageCache cache.Cache = cache.NewMemory()
	var limiter *ratelimit.Limiter
	if cfg.RedisHost != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr(), Password: cfg.RedisPass})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Redis ping failed: %v", err)
		}
		pageCache = cache.NewRedis(rdb)
		limiter = ratelimit.New(rdb)
	}

	var store storage.Storage
	if cfg.S3Endpoint != "" {
		s3store, err := s3.New(s3.Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
		if err != nil {
			log.Fatalf("s3: %v", err)
		}
		if err := s3store.EnsureBucket(context.Background()); err != nil {
			log.Fatalf("s3 ensure bucket: %v", err)
		}
		store = s3store
	} else {
		diskStore, err := disk.New(cfg.MediaDir)
		if err != nil {
			log.Fatalf("media dir: %v", err)
		}
		store = diskStore
	}

	var events post.EventPublisher
	if cfg.KafkaBrokerURL != "" {
		events = kafka.NewProducer(cfg.KafkaBrokerURL, cfg.KafkaTopic)
	}

	c := BuildWith(dbConn.DB, pageCache, store, events)
	c.Limiter = limiter
	return c
}

// BuildWith wires repositories and services onto the given collaborators;
// tests use it with sqlite and the in-process cache.
func BuildWith(gdb *gorm.DB, pageCache cache.Cache, store storage.Storage, events post.EventPublisher) *Container {
	userRepo := user.NewRepository(gdb)
	groupRepo := group.NewRepository(gdb)
	postRepo := post.NewRepository(gdb)
	commentRepo := comment.NewRepository(gdb)
	followRepo := follow.NewRepository(gdb)

	return &Container{
		DB:      gdb,
		Cache:   pageCache,
		Storage: store,

		UserService:    user.NewService(userRepo),
		GroupService:   group.NewService(groupRepo),
		PostService:    post.NewService(postRepo, groupRepo, events),
		CommentService: comment.NewService(commentRepo, postRepo),
		FollowService:  follow.NewService(followRepo),
	}
}
