package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cartify/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

func (r *RedisCartStore) Get(ctx context.Context, userID string) ([]model.CartLine, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.CartLine{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []model.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if lines == nil {
		lines = []model.CartLine{}
	}
	return lines, nil
}

// 保存のたびにTTLを延ばす
func (r *RedisCartStore) Set(ctx context.Context, userID string, lines []model.CartLine) error {
	if len(lines) == 0 {
		return r.Delete(ctx, userID)
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCartStore) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
