package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// サーバー側に保存したカート行（user_idごと）。
// 注文確定後にまとめて削除する。
type CartItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	ExternalRef string          `gorm:"column:serpapi_id;type:varchar(255);not null" json:"serpapi_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	ImageURL    string          `gorm:"column:image_url;type:text" json:"image_url"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
