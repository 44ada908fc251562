package otp

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, nil), mr
}

func TestRedisStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)
	owner := uuid.New()

	entry := Entry{
		Key:       "email_verification:a@example.com",
		Code:      "123456",
		OwnerID:   owner,
		Role:      "user",
		ExpiresAt: time.Now().Add(30 * time.Minute).UTC().Truncate(time.Second),
	}
	require.NoError(t, store.Put(ctx, entry))
	assert.True(t, mr.Exists("otp:email_verification:a@example.com"))

	got, err := store.Get(ctx, entry.Key)
	require.NoError(t, err)
	assert.Equal(t, "123456", got.Code)
	assert.Equal(t, owner, got.OwnerID)
	assert.True(t, entry.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Delete(ctx, entry.Key))
	require.NoError(t, store.Delete(ctx, entry.Key))

	_, err = store.Get(ctx, entry.Key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_KeyExpiresAfterGrace(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	require.NoError(t, store.Put(ctx, Entry{
		Key:       "password_reset:a@example.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	mr.FastForward(time.Minute + expiredGrace + time.Second)

	_, err := store.Get(ctx, "password_reset:a@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store, _ := newRedisStore(t)
	exp := time.Now().Add(time.Minute)

	require.NoError(t, store.Put(ctx, Entry{Key: "k", Code: "111111", ExpiresAt: exp}))
	require.NoError(t, store.Put(ctx, Entry{Key: "k", Code: "222222", ExpiresAt: exp}))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "222222", got.Code)
}
