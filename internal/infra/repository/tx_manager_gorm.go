package repository

import (
	"context"

	repo "cartify/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	products   repo.ProductRepository
	categories repo.CategoryRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposGorm) Products() repo.ProductRepository     { return r.products }
func (r *txReposGorm) Categories() repo.CategoryRepository  { return r.categories }

func newTxReposGorm(db *gorm.DB) *txReposGorm {
	return &txReposGorm{
		orders:     NewOrderGormRepository(db),
		orderItems: NewOrderItemGormRepository(db),
		products:   NewProductGormRepository(db),
		categories: NewCategoryGormRepository(db),
	}
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		return fn(newTxReposGorm(tx))
	})
}

// Txを張らずに同じ約束を満たす（lenientモード）。
// 各書き込みはその場でcommitされ、失敗しても戻らない。
type AutoCommitManagerGorm struct {
	db *gorm.DB
}

func NewAutoCommitManagerGorm(db *gorm.DB) *AutoCommitManagerGorm {
	return &AutoCommitManagerGorm{db: db}
}

func (m *AutoCommitManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(newTxReposGorm(m.db))
}
