package repository

import (
	"context"
	"testing"
	"time"

	"studio-storefront/internal/cart"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := NewRedisCartRepository(client)
	return repo, mr
}

func TestRedisCartRepository_SaveSetsTTLFromExpiry(t *testing.T) {
	repo, mr := setupTestRedis(t)
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "s1", sampleRecord(now.Add(cart.DefaultTTL))))

	assert.True(t, mr.Exists("cart:s1"))
	assert.Equal(t, cart.DefaultTTL, mr.TTL("cart:s1"))

	got, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "tournament-poster", got.Items[0].ServiceID)
	assert.True(t, now.Add(cart.DefaultTTL).Equal(got.ExpiresAt))
}

func TestRedisCartRepository_ExpiresWithTTL(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "s1", sampleRecord(time.Now().Add(time.Hour))))
	mr.FastForward(2 * time.Hour)

	_, err := repo.Load(ctx, "s1")
	assert.ErrorIs(t, err, cart.ErrRecordNotFound)
}

func TestRedisCartRepository_SavingPastExpiryDeletes(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "s1", sampleRecord(time.Now().Add(time.Hour))))
	require.NoError(t, repo.Save(ctx, "s1", sampleRecord(time.Now().Add(-time.Minute))))

	assert.False(t, mr.Exists("cart:s1"))
}

func TestRedisCartRepository_Miss(t *testing.T) {
	repo, _ := setupTestRedis(t)

	_, err := repo.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, cart.ErrRecordNotFound)
}

func TestRedisCartRepository_InvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:s1", "{not json"))

	_, err := repo.Load(context.Background(), "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, cart.ErrRecordNotFound)
}

func TestRedisCartRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "s1", sampleRecord(time.Now().Add(time.Hour))))
	require.NoError(t, repo.Delete(ctx, "s1"))
	assert.False(t, mr.Exists("cart:s1"))
}
