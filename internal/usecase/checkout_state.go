package usecase

import (
	"errors"
	"sync"
	"time"
)

type CheckoutState string

const (
	CheckoutStateIdle       CheckoutState = "idle"
	CheckoutStateProcessing CheckoutState = "processing"
	CheckoutStateSucceeded  CheckoutState = "succeeded"
	CheckoutStateFailed     CheckoutState = "failed"
)

var ErrIllegalTransition = errors.New("illegal transition of checkout state")

// 画面に返す注文確定の状態
type CheckoutStatus struct {
	State     CheckoutState `json:"state"`
	Reason    string        `json:"reason,omitempty"`
	OrderID   int64         `json:"order_id,omitempty"`
	Total     string        `json:"total,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// 1ユーザー分の状態遷移
// Idle/Succeeded/Failed → Processing → Succeeded | Failed
type CheckoutMachine struct {
	mu     sync.Mutex
	status CheckoutStatus
	now    func() time.Time
}

func NewCheckoutMachine(now func() time.Time) *CheckoutMachine {
	return &CheckoutMachine{
		status: CheckoutStatus{State: CheckoutStateIdle, UpdatedAt: now()},
		now:    now,
	}
}

// 新しい試行を始める。処理中なら二重送信なので拒否
func (m *CheckoutMachine) Begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.State == CheckoutStateProcessing {
		return ErrCheckoutInProgress
	}
	m.status = CheckoutStatus{State: CheckoutStateProcessing, UpdatedAt: m.now()}
	return nil
}

func (m *CheckoutMachine) Succeed(orderID int64, total string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.State != CheckoutStateProcessing {
		return ErrIllegalTransition
	}
	m.status = CheckoutStatus{State: CheckoutStateSucceeded, OrderID: orderID, Total: total, UpdatedAt: m.now()}
	return nil
}

// 失敗したら理由を残す。
// Failedは状態取得で理由が見えるように次のBeginまで残すが、
// Beginから見るとIdleと同じ扱いでそのままやり直せる。
func (m *CheckoutMachine) Fail(reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status.State != CheckoutStateProcessing {
		return ErrIllegalTransition
	}
	m.status = CheckoutStatus{State: CheckoutStateFailed, Reason: reason, UpdatedAt: m.now()}
	return nil
}

func (m *CheckoutMachine) Status() CheckoutStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// ユーザーごとの状態を持つ（プロセス内）
type CheckoutTracker struct {
	mu       sync.Mutex
	machines map[string]*CheckoutMachine
	now      func() time.Time
}

func NewCheckoutTracker() *CheckoutTracker {
	return &CheckoutTracker{machines: map[string]*CheckoutMachine{}, now: time.Now}
}

func (t *CheckoutTracker) For(userID string) *CheckoutMachine {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.machines[userID]
	if !ok {
		m = NewCheckoutMachine(t.now)
		t.machines[userID] = m
	}
	return m
}

// 一度も確定していないユーザーはIdle
func (t *CheckoutTracker) Status(userID string) CheckoutStatus {
	return t.For(userID).Status()
}
