package repository

import "context"

// 注文確定の書き込みで使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Products() ProductRepository
	Categories() CategoryRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// lenientモードではTxを張らない実装が同じ約束を満たす。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
