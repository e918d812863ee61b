package cache

import (
	"context"
	"testing"
	"time"

	"cartify/internal/domain/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// miniredisに向けたストアを作る
func setupTestRedis(t *testing.T) (*RedisCartStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisCartStore(client, time.Hour), mr
}

func sampleLines() []model.CartLine {
	stock := int64(3)
	return []model.CartLine{
		{ExternalRef: "A", Name: "Apple", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2, StockQuantity: &stock},
		{ExternalRef: "B", Name: "Bread", UnitPrice: decimal.RequireFromString("5.25"), Quantity: 1},
	}
}

func TestRedisCartStore_GetMissingIsEmpty(t *testing.T) {
	store, _ := setupTestRedis(t)

	lines, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Len(t, lines, 0)
}

func TestRedisCartStore_SetGet(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "user-1", sampleLines()))
	assert.True(t, mr.Exists("cart:user-1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:user-1"))

	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ExternalRef)
	assert.True(t, got[0].UnitPrice.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, int64(2), got[0].Quantity)
	require.NotNil(t, got[0].StockQuantity)
	assert.Equal(t, int64(3), *got[0].StockQuantity)
	assert.Equal(t, "5.25", got[1].UnitPrice.String())
	assert.Nil(t, got[1].StockQuantity)
}

func TestRedisCartStore_SetEmptyDeletes(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "user-1", sampleLines()))
	require.NoError(t, store.Set(ctx, "user-1", nil))
	assert.False(t, mr.Exists("cart:user-1"))
}

func TestRedisCartStore_Delete(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "user-1", sampleLines()))
	require.NoError(t, store.Delete(ctx, "user-1"))
	assert.False(t, mr.Exists("cart:user-1"))

	// 無いキーの削除もエラーにしない
	assert.NoError(t, store.Delete(ctx, "user-2"))
}

func TestRedisCartStore_CorruptData(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:user-1", "{not json"))

	_, err := store.Get(context.Background(), "user-1")
	assert.Error(t, err)
}

func TestRedisCartStore_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), "user-1")
	assert.Error(t, err)
}

func TestMemoryCartStore_CopiesLines(t *testing.T) {
	store := NewMemoryCartStore()
	ctx := context.Background()

	lines := sampleLines()
	require.NoError(t, store.Set(ctx, "user-1", lines))

	// 呼び出し側のスライスを書き換えても影響しない
	lines[0].Quantity = 99
	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got[0].Quantity)

	require.NoError(t, store.Delete(ctx, "user-1"))
	got, err = store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, got, 0)
}
