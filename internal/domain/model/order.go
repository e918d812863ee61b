package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusShipped  OrderStatus = "shipped"
	OrderStatusCanceled OrderStatus = "canceled"
)

// total_amountは丸めない値をそのまま保存（表示時に2桁へ丸める）
type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	TotalAmount decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
