package migrate

import (
	"blog-service/internal/comment"
	"blog-service/internal/follow"
	"blog-service/internal/group"
	"blog-service/internal/post"
	"blog-service/internal/user"

	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&group.Group{},
		&post.Post{},
		&comment.Comment{},
		&follow.Follow{},
	)
}
