package usecase

import (
	"context"
	"errors"
	"fmt"

	"cartify/internal/domain/model"
	repo "cartify/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// 新規作成する商品のデフォルト値
const (
	defaultStockQuantity = 100
	defaultBrand         = "Brand"
)

// カート行の外部参照から商品行を探す/作る。カテゴリの決定もここ。
type CatalogResolver struct {
	log zerolog.Logger
}

func NewCatalogResolver(log zerolog.Logger) *CatalogResolver {
	return &CatalogResolver{log: log.With().Str("component", "catalog_resolver").Logger()}
}

// デフォルトカテゴリ → 無ければID最小のカテゴリ → 無ければnil。
// カテゴリは任意項目なので、検索エラーはログだけ出して次へ進む
func (c *CatalogResolver) ResolveCategory(ctx context.Context, categories repo.CategoryRepository) *int64 {
	cat, err := categories.FindByName(ctx, model.DefaultCategoryName)
	if err == nil {
		return &cat.ID
	}
	if !errors.Is(err, repo.ErrNotFound) {
		c.log.Warn().Err(err).Str("name", model.DefaultCategoryName).Msg("category lookup failed")
	}

	cat, err = categories.FindFirst(ctx)
	if err == nil {
		return &cat.ID
	}
	if !errors.Is(err, repo.ErrNotFound) {
		c.log.Warn().Err(err).Msg("fallback category lookup failed")
	}
	return nil
}

// serpapi_idで探して、あればそのID（価格や名前は更新しない）。
// 無ければカート行から作る。同時に作られて競合したら取り直す
func (c *CatalogResolver) ResolveProduct(ctx context.Context, products repo.ProductRepository, line model.CartLine, categoryID *int64) (int64, error) {
	existing, err := products.FindByExternalRef(ctx, line.ExternalRef)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return 0, fmt.Errorf("find product: %w", err)
	}

	created, ok, err := products.CreateIfAbsent(ctx, newProductFromLine(line, categoryID))
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}
	if ok {
		c.log.Debug().Str("ref", line.ExternalRef).Int64("product_id", created.ID).Msg("product created")
		return created.ID, nil
	}

	winner, err := products.FindByExternalRef(ctx, line.ExternalRef)
	if err != nil {
		return 0, fmt.Errorf("refetch product after conflict: %w", err)
	}
	c.log.Info().Str("ref", line.ExternalRef).Int64("product_id", winner.ID).Msg("product created concurrently, reusing")
	return winner.ID, nil
}

func newProductFromLine(line model.CartLine, categoryID *int64) model.Product {
	ref := line.ExternalRef

	description := line.Description
	if description == "" {
		description = line.Name
	}
	brand := line.Brand
	if brand == "" {
		brand = defaultBrand
	}
	stock := int64(defaultStockQuantity)
	if line.StockQuantity != nil {
		stock = *line.StockQuantity
	}
	rating := decimal.Zero
	if line.Rating != nil {
		rating = *line.Rating
	}
	var reviews int64
	if line.ReviewCount != nil {
		reviews = *line.ReviewCount
	}

	return model.Product{
		ExternalRef:   &ref,
		Name:          line.Name,
		Description:   description,
		Price:         line.UnitPrice,
		ImageURL:      line.ImageURL,
		CategoryID:    categoryID,
		StockQuantity: stock,
		Rating:        rating,
		ReviewCount:   reviews,
		Brand:         brand,
	}
}
