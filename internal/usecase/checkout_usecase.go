package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cartify/internal/cart"
	"cartify/internal/domain/model"
	repo "cartify/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// 失敗した段階に関係なく画面へ出す文言
const CheckoutFailedMessage = "payment failed, please try again"

// 注文確定の通知先（Kafkaなど）
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, order model.Order, items []model.OrderItem) error
}

type CheckoutOptions struct {
	// 1回の注文確定全体（書き込み〜後片付け）の上限
	Timeout time.Duration
	// 書き込み前に待つ時間。0なら待たない
	PreSubmitDelay time.Duration
	// 商品解決の並列数。1なら順番に解決する。
	// 2以上はTxを張らないTransactionManagerと組み合わせること
	ResolveConcurrency int
}

type CheckoutUsecase struct {
	tx        repo.TransactionManager
	cartRows  repo.CartItemRepository
	publisher OrderPublisher
	tracker   *CheckoutTracker
	resolver  *CatalogResolver
	writer    OrderWriter
	opts      CheckoutOptions
	log       zerolog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	cartRows repo.CartItemRepository,
	publisher OrderPublisher,
	tracker *CheckoutTracker,
	opts CheckoutOptions,
	log zerolog.Logger,
) *CheckoutUsecase {
	if opts.ResolveConcurrency < 1 {
		opts.ResolveConcurrency = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	return &CheckoutUsecase{
		tx:        tx,
		cartRows:  cartRows,
		publisher: publisher,
		tracker:   tracker,
		resolver:  NewCatalogResolver(log),
		opts:      opts,
		log:       log.With().Str("component", "checkout").Logger(),
		sleep:     sleepCtx,
	}
}

// 注文確定の結果
type OrderConfirmation struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
	TotalsView
	// 注文は確定したが後片付けで失敗したもの
	Warnings []CheckoutErrorKind `json:"warnings,omitempty"`

	Totals Totals            `json:"-"`
	Items  []model.OrderItem `json:"-"`
}

func (c OrderConfirmation) HasWarning(kind CheckoutErrorKind) bool {
	for _, w := range c.Warnings {
		if w == kind {
			return true
		}
	}
	return false
}

// SubmitOrder はカートを注文にする。
// 注文ヘッダ → カテゴリ決定 → 行ごとに商品解決 → 明細一括作成 → cart_items削除 → カートを空にする。
// 自動リトライはしない。
func (u *CheckoutUsecase) SubmitOrder(ctx context.Context, userID string, c cart.State) (OrderConfirmation, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return OrderConfirmation{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	lines, err := c.Lines(ctx)
	if err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("read cart failed")
		return OrderConfirmation{}, NewHTTPError(http.StatusInternalServerError, "cart unavailable")
	}
	if len(lines) == 0 {
		return OrderConfirmation{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	if err := ValidateCartLines(lines); err != nil {
		return OrderConfirmation{}, err
	}

	machine := u.tracker.For(userID)
	if err := machine.Begin(); err != nil {
		return OrderConfirmation{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, u.opts.Timeout)
	defer cancel()

	conf, err := u.place(ctx, userID, lines)
	if err != nil {
		kind, _ := CheckoutErrorKindOf(err)
		u.log.Error().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("checkout failed")
		_ = machine.Fail(CheckoutFailedMessage)
		return OrderConfirmation{}, err
	}

	u.cleanup(ctx, userID, c, &conf)

	_ = machine.Succeed(conf.OrderID, conf.Total)
	u.log.Info().
		Str("user_id", userID).
		Int64("order_id", conf.OrderID).
		Str("total", conf.Total).
		Int("lines", len(conf.Items)).
		Interface("warnings", conf.Warnings).
		Msg("order placed")
	return conf, nil
}

// 直近の注文確定の状態
func (u *CheckoutUsecase) Status(userID string) CheckoutStatus {
	return u.tracker.Status(userID)
}

// 書き込み部分（ヘッダ〜明細）。atomicならここ全体が1つのTx
func (u *CheckoutUsecase) place(ctx context.Context, userID string, lines []model.CartLine) (OrderConfirmation, error) {
	if err := u.sleep(ctx, u.opts.PreSubmitDelay); err != nil {
		return OrderConfirmation{}, newCheckoutError(ErrKindOrderCreation, err)
	}

	totals := ComputeTotals(lines)

	var (
		order model.Order
		items []model.OrderItem
		// Tx外のエラー（begin/commit）を分類するため
		stage = ErrKindOrderCreation
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		order, err = u.writer.CreateHeader(ctx, r.Orders(), userID, totals.Total)
		if err != nil {
			return newCheckoutError(ErrKindOrderCreation, err)
		}

		stage = ErrKindProductResolution
		categoryID := u.resolver.ResolveCategory(ctx, r.Categories())
		items, err = u.resolveLines(ctx, r.Products(), lines, categoryID)
		if err != nil {
			return err
		}

		stage = ErrKindOrderLineWrite
		if err := u.writer.WriteLines(ctx, r.OrderItems(), order.ID, items); err != nil {
			return newCheckoutError(ErrKindOrderLineWrite, err)
		}
		return nil
	})
	if err != nil {
		var ce *CheckoutError
		if errors.As(err, &ce) {
			return OrderConfirmation{}, err
		}
		return OrderConfirmation{}, newCheckoutError(stage, err)
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	return OrderConfirmation{
		OrderID:    order.ID,
		Status:     string(order.Status),
		TotalsView: totals.Display(),
		Totals:     totals,
		Items:      items,
	}, nil
}

// 行ごとに商品IDを決めて明細を作る。並びはカートの順のまま
func (u *CheckoutUsecase) resolveLines(ctx context.Context, products repo.ProductRepository, lines []model.CartLine, categoryID *int64) ([]model.OrderItem, error) {
	if u.opts.ResolveConcurrency <= 1 {
		items := make([]model.OrderItem, 0, len(lines))
		for i, l := range lines {
			productID, err := u.resolver.ResolveProduct(ctx, products, l, categoryID)
			if err != nil {
				return nil, &CheckoutError{Kind: ErrKindProductResolution, Line: i, Ref: l.ExternalRef, Err: err}
			}
			items = append(items, model.OrderItem{ProductID: productID, Quantity: l.Quantity, Price: l.UnitPrice})
		}
		return items, nil
	}

	// 同じ参照は1回だけ解決する
	var sf singleflight.Group
	items := make([]model.OrderItem, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.ResolveConcurrency)

	for i, l := range lines {
		i, l := i, l
		g.Go(func() error {
			v, err, _ := sf.Do(l.ExternalRef, func() (interface{}, error) {
				return u.resolver.ResolveProduct(gctx, products, l, categoryID)
			})
			if err != nil {
				return &CheckoutError{Kind: ErrKindProductResolution, Line: i, Ref: l.ExternalRef, Err: err}
			}
			items[i] = model.OrderItem{ProductID: v.(int64), Quantity: l.Quantity, Price: l.UnitPrice}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

// 注文確定後の後片付け。失敗しても注文は成功のまま（warningsに残す）
func (u *CheckoutUsecase) cleanup(ctx context.Context, userID string, c cart.State, conf *OrderConfirmation) {
	if err := u.cartRows.DeleteByUserID(ctx, userID); err != nil {
		u.log.Warn().Err(err).Str("user_id", userID).Int64("order_id", conf.OrderID).Msg("cart rows cleanup failed")
		conf.Warnings = append(conf.Warnings, ErrKindCartCleanup)
	}

	if err := c.Clear(ctx); err != nil {
		u.log.Warn().Err(err).Str("user_id", userID).Int64("order_id", conf.OrderID).Msg("cart state clear failed")
		conf.Warnings = append(conf.Warnings, ErrKindCartStateClear)
	}

	if u.publisher == nil {
		return
	}
	order := model.Order{
		ID:          conf.OrderID,
		UserID:      userID,
		TotalAmount: conf.Totals.Total,
		Status:      model.OrderStatus(conf.Status),
	}
	if err := u.publisher.PublishOrderPlaced(ctx, order, conf.Items); err != nil {
		u.log.Warn().Err(err).Int64("order_id", conf.OrderID).Msg("order event publish failed")
		conf.Warnings = append(conf.Warnings, ErrKindEventPublish)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
