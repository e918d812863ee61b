package repository

import (
	"cartify/internal/domain/model"
	"context"
)

type CategoryRepository interface {
	FindByName(ctx context.Context, name string) (model.Category, error)
	// 一番小さいIDのカテゴリ（無ければErrNotFound）
	FindFirst(ctx context.Context) (model.Category, error)
}
