package repository

import (
	"context"
	"errors"

	"cartify/internal/domain/model"
	repo "cartify/internal/repository"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) FindByName(ctx context.Context, name string) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where("name = ?", name).Order("id asc").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// どれでもよいが、テストで再現できるようにID最小を返す
func (r *CategoryGormRepository) FindFirst(ctx context.Context) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Order("id asc").First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}
