package repository

import (
	"cartify/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 商品の永続化（外部参照での検索・作成）だけを約束。
type ProductRepository interface {
	// serpapi_idで1件取得。無ければErrNotFound
	FindByExternalRef(ctx context.Context, ref string) (model.Product, error)

	// 同じserpapi_idが無いときだけ作成する。
	// 既にあった（競合した）場合はcreated=falseを返す
	CreateIfAbsent(ctx context.Context, p model.Product) (model.Product, bool, error)
}
