package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/set-night/vpnshop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDialogStore(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	store := NewRedisDialogStore(client, time.Minute)
	const adminID = int64(9000001)
	require.NoError(t, store.Delete(ctx, adminID))

	_, err = store.Get(ctx, adminID)
	assert.ErrorIs(t, err, domain.ErrDialogNotFound)

	want := domain.AdminDialog{Step: domain.DialogAwaitingDelta, TargetID: 555}
	require.NoError(t, store.Set(ctx, adminID, want))

	got, err := store.Get(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	ttl, err := client.TTL(ctx, dialogKey(adminID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, adminID))
	_, err = store.Get(ctx, adminID)
	assert.ErrorIs(t, err, domain.ErrDialogNotFound)
}
