// Package cart はカートの状態（注文確定で読んで、成功時だけ空にする）を持つ。
package cart

import (
	"context"
	"sync"

	"cartify/internal/domain/model"
	repo "cartify/internal/repository"
)

// 注文確定が使うカートの約束
type State interface {
	Lines(ctx context.Context) ([]model.CartLine, error)
	Clear(ctx context.Context) error
}

// プロセス内で持つカート
type Memory struct {
	mu    sync.Mutex
	lines []model.CartLine
}

func NewMemory(lines ...model.CartLine) *Memory {
	cp := make([]model.CartLine, len(lines))
	copy(cp, lines)
	return &Memory{lines: cp}
}

func (m *Memory) Lines(_ context.Context) ([]model.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.CartLine, len(m.lines))
	copy(out, m.lines)
	return out, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lines = nil
	return nil
}

// カートセッション（Redisなど）上のユーザー1人分のカート
type Session struct {
	store  repo.CartSessionStore
	userID string
}

func NewSession(store repo.CartSessionStore, userID string) *Session {
	return &Session{store: store, userID: userID}
}

func (s *Session) Lines(ctx context.Context) ([]model.CartLine, error) {
	return s.store.Get(ctx, s.userID)
}

func (s *Session) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, s.userID)
}
