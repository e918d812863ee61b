package usecase_test

import (
	"context"
	"errors"
	"testing"

	"cartify/internal/domain/model"
	repo "cartify/internal/repository"
	"cartify/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Repository mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByExternalRef(ctx context.Context, ref string) (model.Product, error) {
	args := m.Called(ctx, ref)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) CreateIfAbsent(ctx context.Context, p model.Product) (model.Product, bool, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Bool(1), args.Error(2)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) FindByName(ctx context.Context, name string) (model.Category, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func (m *CategoryRepoMock) FindFirst(ctx context.Context) (model.Category, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

func cartLine(ref string) model.CartLine {
	return model.CartLine{
		ExternalRef: ref,
		Name:        "Organic Bananas",
		UnitPrice:   decimal.RequireFromString("3.49"),
		Quantity:    1,
		ImageURL:    "https://example.com/banana.jpg",
	}
}

func TestResolveProduct_Existing(t *testing.T) {
	ctx := context.Background()
	products := new(ProductRepoMock)
	products.On("FindByExternalRef", ctx, "serp-1").Return(model.Product{ID: 42}, nil).Once()

	r := usecase.NewCatalogResolver(zerolog.Nop())
	id, err := r.ResolveProduct(ctx, products, cartLine("serp-1"), nil)

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	products.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	products.AssertExpectations(t)
}

func TestResolveProduct_CreatesWithDefaults(t *testing.T) {
	ctx := context.Background()
	categoryID := int64(3)

	products := new(ProductRepoMock)
	products.On("FindByExternalRef", ctx, "serp-2").Return(model.Product{}, repo.ErrNotFound).Once()
	products.On("CreateIfAbsent", ctx, mock.MatchedBy(func(p model.Product) bool {
		return p.ExternalRef != nil && *p.ExternalRef == "serp-2" &&
			p.Name == "Organic Bananas" &&
			p.Description == "Organic Bananas" &&
			p.Price.Equal(decimal.RequireFromString("3.49")) &&
			p.CategoryID != nil && *p.CategoryID == 3 &&
			p.StockQuantity == 100 &&
			p.Rating.IsZero() &&
			p.ReviewCount == 0 &&
			p.Brand == "Brand"
	})).Return(model.Product{ID: 7}, true, nil).Once()

	r := usecase.NewCatalogResolver(zerolog.Nop())
	id, err := r.ResolveProduct(ctx, products, cartLine("serp-2"), &categoryID)

	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	products.AssertExpectations(t)
}

func TestResolveProduct_UsesLineAttributesWhenPresent(t *testing.T) {
	ctx := context.Background()
	stock := int64(12)
	rating := decimal.RequireFromString("4.5")
	reviews := int64(230)

	l := cartLine("serp-3")
	l.Description = "A bunch of bananas"
	l.Brand = "Dole"
	l.StockQuantity = &stock
	l.Rating = &rating
	l.ReviewCount = &reviews

	products := new(ProductRepoMock)
	products.On("FindByExternalRef", ctx, "serp-3").Return(model.Product{}, repo.ErrNotFound).Once()
	products.On("CreateIfAbsent", ctx, mock.MatchedBy(func(p model.Product) bool {
		return p.Description == "A bunch of bananas" &&
			p.Brand == "Dole" &&
			p.StockQuantity == 12 &&
			p.Rating.Equal(rating) &&
			p.ReviewCount == 230 &&
			p.CategoryID == nil
	})).Return(model.Product{ID: 8}, true, nil).Once()

	r := usecase.NewCatalogResolver(zerolog.Nop())
	id, err := r.ResolveProduct(ctx, products, l, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
	products.AssertExpectations(t)
}

func TestResolveProduct_ConflictRefetches(t *testing.T) {
	ctx := context.Background()
	products := new(ProductRepoMock)
	products.On("FindByExternalRef", ctx, "serp-4").Return(model.Product{}, repo.ErrNotFound).Once()
	products.On("CreateIfAbsent", ctx, mock.Anything).Return(model.Product{}, false, nil).Once()
	products.On("FindByExternalRef", ctx, "serp-4").Return(model.Product{ID: 99}, nil).Once()

	r := usecase.NewCatalogResolver(zerolog.Nop())
	id, err := r.ResolveProduct(ctx, products, cartLine("serp-4"), nil)

	require.NoError(t, err)
	assert.Equal(t, int64(99), id)
	products.AssertExpectations(t)
}

func TestResolveProduct_Errors(t *testing.T) {
	ctx := context.Background()
	dbErr := errors.New("db error")

	t.Run("find", func(t *testing.T) {
		products := new(ProductRepoMock)
		products.On("FindByExternalRef", ctx, "x").Return(model.Product{}, dbErr).Once()

		_, err := usecase.NewCatalogResolver(zerolog.Nop()).ResolveProduct(ctx, products, cartLine("x"), nil)
		assert.ErrorIs(t, err, dbErr)
		products.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
	})

	t.Run("create", func(t *testing.T) {
		products := new(ProductRepoMock)
		products.On("FindByExternalRef", ctx, "x").Return(model.Product{}, repo.ErrNotFound).Once()
		products.On("CreateIfAbsent", ctx, mock.Anything).Return(model.Product{}, false, dbErr).Once()

		_, err := usecase.NewCatalogResolver(zerolog.Nop()).ResolveProduct(ctx, products, cartLine("x"), nil)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestResolveCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("default category", func(t *testing.T) {
		cats := new(CategoryRepoMock)
		cats.On("FindByName", ctx, model.DefaultCategoryName).Return(model.Category{ID: 5, Name: model.DefaultCategoryName}, nil).Once()

		id := usecase.NewCatalogResolver(zerolog.Nop()).ResolveCategory(ctx, cats)
		require.NotNil(t, id)
		assert.Equal(t, int64(5), *id)
		cats.AssertNotCalled(t, "FindFirst", mock.Anything)
	})

	t.Run("fallback to first", func(t *testing.T) {
		cats := new(CategoryRepoMock)
		cats.On("FindByName", ctx, model.DefaultCategoryName).Return(model.Category{}, repo.ErrNotFound).Once()
		cats.On("FindFirst", ctx).Return(model.Category{ID: 1, Name: "Books"}, nil).Once()

		id := usecase.NewCatalogResolver(zerolog.Nop()).ResolveCategory(ctx, cats)
		require.NotNil(t, id)
		assert.Equal(t, int64(1), *id)
	})

	t.Run("lookup errors fall through to nil", func(t *testing.T) {
		cats := new(CategoryRepoMock)
		cats.On("FindByName", ctx, model.DefaultCategoryName).Return(model.Category{}, errors.New("timeout")).Once()
		cats.On("FindFirst", ctx).Return(model.Category{}, repo.ErrNotFound).Once()

		id := usecase.NewCatalogResolver(zerolog.Nop()).ResolveCategory(ctx, cats)
		assert.Nil(t, id)
		cats.AssertExpectations(t)
	})
}
