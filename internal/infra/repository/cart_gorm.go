package repository

import (
	"context"

	"cartify/internal/domain/model"

	"gorm.io/gorm"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカート行を一覧取得
func (r *CartGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

// 消して入れ直す（Txで）
func (r *CartGormRepository) ReplaceForUser(ctx context.Context, userID string, items []model.CartItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		rows := make([]model.CartItem, len(items))
		copy(rows, items)
		for i := range rows {
			rows[i].ID = 0
			rows[i].UserID = userID
		}
		return tx.Create(&rows).Error
	})
}

// cart_itemsを全削除
func (r *CartGormRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
}
