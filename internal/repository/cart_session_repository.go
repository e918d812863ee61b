package repository

import (
	"context"

	"cartify/internal/domain/model"
)

// カートセッション（ブラウザ側のカートをサーバーで持つもの）
// 無いときは空のスライスを返す
type CartSessionStore interface {
	Get(ctx context.Context, userID string) ([]model.CartLine, error)
	Set(ctx context.Context, userID string, lines []model.CartLine) error
	Delete(ctx context.Context, userID string) error
}
