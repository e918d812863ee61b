package repository

import (
	"context"
	"errors"

	"cartify/internal/domain/model"
	repo "cartify/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// serpapi_idで商品を取得
func (r *ProductGormRepository) FindByExternalRef(ctx context.Context, ref string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("serpapi_id = ?", ref).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の作成（serpapi_idが既にあれば何もしない）
// ON CONFLICT DO NOTHINGなのでTx内でも失敗扱いにならない
func (r *ProductGormRepository) CreateIfAbsent(ctx context.Context, p model.Product) (model.Product, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "serpapi_id"}},
			DoNothing: true,
		}).
		Create(&p)
	if res.Error != nil {
		return model.Product{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Product{}, false, nil
	}
	return p, true, nil
}
