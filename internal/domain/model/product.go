package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 外部カタログ（検索元）から取り込んだ商品。
// serpapi_idは外部参照で、1参照につき1行（ユニーク）。
type Product struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalRef   *string         `gorm:"column:serpapi_id;type:varchar(255);uniqueIndex" json:"serpapi_id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	ImageURL      string          `gorm:"column:image_url;type:text" json:"image_url"`
	CategoryID    *int64          `gorm:"index" json:"category_id"`
	StockQuantity int64           `gorm:"not null;default:0" json:"stock_quantity"`
	Rating        decimal.Decimal `gorm:"type:numeric(3,2);not null;default:0" json:"rating"`
	ReviewCount   int64           `gorm:"not null;default:0" json:"review_count"`
	Brand         string          `gorm:"type:varchar(255)" json:"brand"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
