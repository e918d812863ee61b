package cache

import (
	"context"
	"sync"

	"cartify/internal/domain/model"
)

// プロセス内だけのカートセッション（開発・テスト用）
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string][]model.CartLine
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: map[string][]model.CartLine{}}
}

func (m *MemoryCartStore) Get(_ context.Context, userID string) ([]model.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := m.carts[userID]
	out := make([]model.CartLine, len(lines))
	copy(out, lines)
	return out, nil
}

func (m *MemoryCartStore) Set(_ context.Context, userID string, lines []model.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(lines) == 0 {
		delete(m.carts, userID)
		return nil
	}
	cp := make([]model.CartLine, len(lines))
	copy(cp, lines)
	m.carts[userID] = cp
	return nil
}

func (m *MemoryCartStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, userID)
	return nil
}
