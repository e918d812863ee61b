package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cartify/internal/domain/model"
	repo "cartify/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// 1カートの最大行数
const maxCartLines = 100

// CartUsecase は /cart の業務ロジックです。
// カートの本体はセッション（Redis）で、cart_itemsはその写し。
type CartUsecase struct {
	sessions repo.CartSessionStore
	cartRows repo.CartItemRepository
	log      zerolog.Logger
}

func NewCartUsecase(sessions repo.CartSessionStore, cartRows repo.CartItemRepository, log zerolog.Logger) *CartUsecase {
	return &CartUsecase{
		sessions: sessions,
		cartRows: cartRows,
		log:      log.With().Str("component", "cart").Logger(),
	}
}

type CartResponse struct {
	Items []model.CartLine `json:"items"`
	TotalsView
}

// GetCart はカート取得（無ければ空）。
func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	lines, err := u.sessions.Get(ctx, userID)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("cart session get failed")
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart unavailable")
	}
	return buildCartResponse(lines), nil
}

// ReplaceCart はカートを丸ごと置き換える（同じ参照の行はまとめる）。
func (u *CartUsecase) ReplaceCart(ctx context.Context, userID string, lines []model.CartLine) (CartResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(lines) > maxCartLines {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "too many items")
	}
	if err := ValidateCartLines(lines); err != nil {
		return CartResponse{}, err
	}

	merged := mergeCartLines(lines)
	if err := u.sessions.Set(ctx, userID, merged); err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("cart session set failed")
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "cart unavailable")
	}

	rows := make([]model.CartItem, 0, len(merged))
	for _, l := range merged {
		rows = append(rows, l.ToCartItem(userID))
	}
	if err := u.cartRows.ReplaceForUser(ctx, userID, rows); err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("cart rows replace failed")
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return buildCartResponse(merged), nil
}

// ClearCart はセッションとcart_itemsを両方空にする。
func (u *CartUsecase) ClearCart(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.sessions.Delete(ctx, userID); err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("cart session delete failed")
		return NewHTTPError(http.StatusInternalServerError, "cart unavailable")
	}
	if err := u.cartRows.DeleteByUserID(ctx, userID); err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("cart rows delete failed")
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// カート行の入力チェック
func ValidateCartLines(lines []model.CartLine) error {
	for i, l := range lines {
		if strings.TrimSpace(l.ExternalRef) == "" {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid item %d: id", i))
		}
		if strings.TrimSpace(l.Name) == "" {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid item %d: name", i))
		}
		//保存は小数2桁まで。それより細かい価格は合計とずれる
		if l.UnitPrice.IsNegative() || !l.UnitPrice.Equal(l.UnitPrice.Truncate(2)) {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid item %d: price", i))
		}
		if l.Quantity < 1 {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid item %d: quantity", i))
		}
	}
	return nil
}

// 同じ参照は数量を足して1行に（最初に出てきた行の内容を使う）
func mergeCartLines(lines []model.CartLine) []model.CartLine {
	out := make([]model.CartLine, 0, len(lines))
	index := map[string]int{}
	for _, l := range lines {
		if i, ok := index[l.ExternalRef]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ExternalRef] = len(out)
		out = append(out, l)
	}
	return out
}

func buildCartResponse(lines []model.CartLine) CartResponse {
	if len(lines) == 0 {
		// 空カートに送料は付けない
		return CartResponse{Items: []model.CartLine{}, TotalsView: Totals{}.Display()}
	}
	return CartResponse{Items: lines, TotalsView: ComputeTotals(lines).Display()}
}
