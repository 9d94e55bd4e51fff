package comment

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(c *Comment) error
	ListByPost(postID uint) ([]Comment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(c *Comment) error {
	return r.db.Create(c).Error
}

func (r *repository) ListByPost(postID uint) ([]Comment, error) {
	var out []Comment
	err := r.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
