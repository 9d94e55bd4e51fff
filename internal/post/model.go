package post

import (
	"time"

	"blog-service/internal/group"
	"blog-service/internal/user"
)

type Post struct {
	ID        uint   `gorm:"primaryKey"`
	Text      string `gorm:"type:text"`
	AuthorID  uint   `gorm:"index;not null"`
	Author    user.User
	GroupID   *uint `gorm:"index"`
	Group     *group.Group
	ImageURL  string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
