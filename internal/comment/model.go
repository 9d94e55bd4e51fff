package comment

import (
	"time"

	"blog-service/internal/user"
)

type Comment struct {
	ID        uint   `gorm:"primaryKey"`
	Text      string `gorm:"type:text"`
	AuthorID  uint   `gorm:"index;not null"`
	Author    user.User
	PostID    uint `gorm:"index;not null"`
	CreatedAt time.Time
}

type CreateReq struct {
	Text string `json:"text" validate:"required"`
}
