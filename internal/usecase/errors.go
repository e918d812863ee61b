package usecase

import (
	"errors"
	"fmt"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 注文確定のどこで失敗したか
type CheckoutErrorKind string

const (
	ErrKindOrderCreation      CheckoutErrorKind = "OrderCreationFailed"
	ErrKindProductResolution  CheckoutErrorKind = "ProductResolutionFailed"
	ErrKindOrderLineWrite     CheckoutErrorKind = "OrderLineWriteFailed"
	ErrKindCartCleanup        CheckoutErrorKind = "CartCleanupFailed"
	ErrKindCartStateClear     CheckoutErrorKind = "CartStateClearFailed"
	ErrKindEventPublish       CheckoutErrorKind = "EventPublishFailed"
	ErrKindCheckoutInProgress CheckoutErrorKind = "CheckoutInProgress"
)

// 注文確定の失敗。
// Lineは商品解決で失敗した行（0始まり、それ以外は-1）。
type CheckoutError struct {
	Kind CheckoutErrorKind
	Line int
	Ref  string
	Err  error
}

func (e *CheckoutError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s (line %d, ref %s): %v", e.Kind, e.Line, e.Ref, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// errors.Is(err, &CheckoutError{Kind: ...}) で種類だけ比べる
func (e *CheckoutError) Is(target error) bool {
	t, ok := target.(*CheckoutError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newCheckoutError(kind CheckoutErrorKind, err error) *CheckoutError {
	return &CheckoutError{Kind: kind, Line: -1, Err: err}
}

// errからCheckoutErrorの種類を取り出す
func CheckoutErrorKindOf(err error) (CheckoutErrorKind, bool) {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}

// 注文確定中なので受け付けない
var ErrCheckoutInProgress = newCheckoutError(ErrKindCheckoutInProgress, errors.New("checkout already in progress"))
