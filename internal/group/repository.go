package group

import (
	"errors"

	"blog-service/internal/shared/httpx"

	"gorm.io/gorm"
)

type Repository interface {
	Create(g *Group) error
	GetBySlug(slug string) (*Group, error)
	GetByID(id uint) (*Group, error)
	ListAll() ([]Group, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(g *Group) error {
	return r.db.Create(g).Error
}

func (r *repository) GetBySlug(slug string) (*Group, error) {
	var g Group
	if err := r.db.Where("slug = ?", slug).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *repository) GetByID(id uint) (*Group, error) {
	var g Group
	if err := r.db.First(&g, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *repository) ListAll() ([]Group, error) {
	var groups []Group
	if err := r.db.Order("title asc").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}
