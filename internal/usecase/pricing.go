package usecase

import (
	"cartify/internal/domain/model"

	"github.com/shopspring/decimal"
)

var (
	// この金額を「超える」と送料無料
	freeShippingThreshold = decimal.NewFromInt(35)
	flatShippingFee       = decimal.RequireFromString("5.99")
	taxRate               = decimal.RequireFromString("0.08")
)

// 注文金額の内訳。途中では丸めない。
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// 表示用（2桁に丸めた文字列）
type TotalsView struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func ComputeTotals(lines []model.CartLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}

	shipping := flatShippingFee
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// 丸めは表示のときだけ
func (t Totals) Display() TotalsView {
	return TotalsView{
		Subtotal: t.Subtotal.StringFixed(2),
		Shipping: t.Shipping.StringFixed(2),
		Tax:      t.Tax.StringFixed(2),
		Total:    t.Total.StringFixed(2),
	}
}
