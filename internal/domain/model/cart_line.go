package model

import "github.com/shopspring/decimal"

// カートの1行（クライアント側の状態）。DBには直接は保存しない。
// ポインタのフィールドは「未指定」を表す。
type CartLine struct {
	ExternalRef   string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	UnitPrice     decimal.Decimal  `json:"price"`
	Quantity      int64            `json:"quantity"`
	ImageURL      string           `json:"image_url"`
	Brand         string           `json:"brand,omitempty"`
	StockQuantity *int64           `json:"stock_quantity,omitempty"`
	Rating        *decimal.Decimal `json:"rating,omitempty"`
	ReviewCount   *int64           `json:"review_count,omitempty"`
}

// 行の小計
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// 永続化用のカート行に変換
func (l CartLine) ToCartItem(userID string) CartItem {
	return CartItem{
		UserID:      userID,
		ExternalRef: l.ExternalRef,
		Name:        l.Name,
		Price:       l.UnitPrice,
		Quantity:    l.Quantity,
		ImageURL:    l.ImageURL,
	}
}
