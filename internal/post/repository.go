package post

import (
	"errors"

	"blog-service/internal/shared/httpx"

	"gorm.io/gorm"
)

type Repository interface {
	Create(p *Post) error
	GetByID(id uint) (*Post, error)
	Update(p *Post) error

	CountAll() (int64, error)
	ListAll(limit, offset int) ([]Post, error)
	CountByGroup(groupID uint) (int64, error)
	ListByGroup(groupID uint, limit, offset int) ([]Post, error)
	CountByAuthor(authorID uint) (int64, error)
	ListByAuthor(authorID uint, limit, offset int) ([]Post, error)
	CountByAuthors(authorIDs []uint) (int64, error)
	ListByAuthors(authorIDs []uint, limit, offset int) ([]Post, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// listing preloads Author and Group so callers get materialized rows,
// ordered newest first.
func (r *repository) listing() *gorm.DB {
	return r.db.Model(&Post{}).
		Preload("Author").Preload("Group").
		Order("created_at DESC, id DESC")
}

func (r *repository) Create(p *Post) error {
	return r.db.Create(p).Error
}

func (r *repository) GetByID(id uint) (*Post, error) {
	var p Post
	if err := r.db.Preload("Author").Preload("Group").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(p *Post) error {
	return r.db.Save(p).Error
}

func (r *repository) CountAll() (int64, error) {
	var n int64
	err := r.db.Model(&Post{}).Count(&n).Error
	return n, err
}

func (r *repository) ListAll(limit, offset int) ([]Post, error) {
	var posts []Post
	err := r.listing().Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (r *repository) CountByGroup(groupID uint) (int64, error) {
	var n int64
	err := r.db.Model(&Post{}).Where("group_id = ?", groupID).Count(&n).Error
	return n, err
}

func (r *repository) ListByGroup(groupID uint, limit, offset int) ([]Post, error) {
	var posts []Post
	err := r.listing().Where("group_id = ?", groupID).Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (r *repository) CountByAuthor(authorID uint) (int64, error) {
	var n int64
	err := r.db.Model(&Post{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

func (r *repository) ListByAuthor(authorID uint, limit, offset int) ([]Post, error) {
	var posts []Post
	err := r.listing().Where("author_id = ?", authorID).Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}

func (r *repository) CountByAuthors(authorIDs []uint) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.Model(&Post{}).Where("author_id IN ?", authorIDs).Count(&n).Error
	return n, err
}

func (r *repository) ListByAuthors(authorIDs []uint, limit, offset int) ([]Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var posts []Post
	err := r.listing().Where("author_id IN ?", authorIDs).Limit(limit).Offset(offset).Find(&posts).Error
	return posts, err
}
