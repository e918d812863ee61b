package repository

import (
	"context"

	"cartify/internal/domain/model"
)

// サーバー側カート行（cart_items）
type CartItemRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error)
	// ユーザーの行を全部入れ替える
	ReplaceForUser(ctx context.Context, userID string, items []model.CartItem) error
	// ユーザーの行を全削除
	DeleteByUserID(ctx context.Context, userID string) error
}
