package usecase

import (
	"context"
	"fmt"

	"cartify/internal/domain/model"
	repo "cartify/internal/repository"

	"github.com/shopspring/decimal"
)

// 注文ヘッダと明細の書き込み
type OrderWriter struct{}

// status=paidで作る（決済は模擬なので保留状態は持たない）
func (OrderWriter) CreateHeader(ctx context.Context, orders repo.OrderRepository, userID string, total decimal.Decimal) (model.Order, error) {
	o := model.Order{
		UserID:      userID,
		TotalAmount: total,
		Status:      model.OrderStatusPaid,
	}
	id, err := orders.Create(ctx, o)
	if err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}
	o.ID = id
	return o, nil
}

// 明細は全行まとめて1回で書く
func (OrderWriter) WriteLines(ctx context.Context, items repo.OrderItemRepository, orderID int64, lines []model.OrderItem) error {
	if err := items.CreateBulk(ctx, orderID, lines); err != nil {
		return fmt.Errorf("create order items: %w", err)
	}
	return nil
}
