package follow

import (
	"gorm.io/gorm"
)

type Repository interface {
	Create(userID, authorID uint) error
	Delete(userID, authorID uint) error
	Exists(userID, authorID uint) (bool, error)
	AuthorIDs(userID uint) ([]uint, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(userID, authorID uint) error {
	return r.db.FirstOrCreate(&Follow{UserID: userID, AuthorID: authorID}).Error
}

func (r *repository) Delete(userID, authorID uint) error {
	return r.db.Delete(&Follow{}, "user_id = ? AND author_id = ?", userID, authorID).Error
}

func (r *repository) Exists(userID, authorID uint) (bool, error) {
	var n int64
	err := r.db.Model(&Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) AuthorIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&Follow{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("author_id", &ids).Error
	return ids, err
}
