package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamly/internal/app/middleware"
	"roamly/internal/infra/storage/memory"
)

func TestIdempotencyStore_TTLExpiresRecords(t *testing.T) {
	store := memory.NewIdempotencyStore()
	store.TTL = time.Hour

	stale := middleware.IdempotencyRecord{
		Key:        "idem-1",
		Payload:    []byte(`{"ok":true}`),
		OccurredAt: time.Now().UTC().Add(-2 * time.Hour),
	}
	require.NoError(t, store.Save(context.Background(), stale))

	_, found, err := store.Get(context.Background(), "idem-1")
	require.NoError(t, err)
	assert.False(t, found, "expired record must read as a miss")
}

func TestIdempotencyStore_ZeroTTLNeverExpires(t *testing.T) {
	store := memory.NewIdempotencyStore()

	rec := middleware.IdempotencyRecord{
		Key:        "idem-1",
		Payload:    []byte(`{"ok":true}`),
		OccurredAt: time.Now().UTC().Add(-240 * time.Hour),
	}
	require.NoError(t, store.Save(context.Background(), rec))

	got, found, err := store.Get(context.Background(), "idem-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.Payload, got.Payload)
}
