package user

import "time"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:150" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:100" json:"email"`
	PassHash  string    `gorm:"size:255" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
