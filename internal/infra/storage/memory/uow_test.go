package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamly/internal/app/uow"
	"roamly/internal/infra/storage/memory"
)

func newFactory(lockWait time.Duration) *memory.Factory {
	bookings := memory.NewBookingRepository()
	return &memory.Factory{
		UnitsRepo:    memory.NewUnitRepository(),
		BookingRepo:  bookings,
		Reservations: bookings,
		BlocksRepo:   memory.NewBlockRepository(),
		LockWait:     lockWait,
	}
}

func TestLockUnit_SerializesAcrossUnits(t *testing.T) {
	f := newFactory(50 * time.Millisecond)
	ctx := context.Background()

	first, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, first.LockUnit(ctx, "unit-1"))

	second, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	assert.ErrorIs(t, second.LockUnit(ctx, "unit-1"), uow.ErrLockTimeout)

	// A different unit id is not affected.
	require.NoError(t, second.LockUnit(ctx, "unit-2"))
	require.NoError(t, second.Rollback(ctx))
	require.NoError(t, first.Rollback(ctx))
}

func TestLockUnit_ReentrantWithinOneUnit(t *testing.T) {
	f := newFactory(50 * time.Millisecond)
	ctx := context.Background()

	unit, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, unit.LockUnit(ctx, "unit-1"))
	assert.NoError(t, unit.LockUnit(ctx, "unit-1"))
	require.NoError(t, unit.Commit(ctx))
}

func TestLockUnit_ReleasedOnCommitAndRollback(t *testing.T) {
	f := newFactory(50 * time.Millisecond)
	ctx := context.Background()

	holder, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, holder.LockUnit(ctx, "unit-1"))
	require.NoError(t, holder.Commit(ctx))

	next, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, next.LockUnit(ctx, "unit-1"))
	require.NoError(t, next.Rollback(ctx))

	last, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	assert.NoError(t, last.LockUnit(ctx, "unit-1"))
	require.NoError(t, last.Rollback(ctx))
}

func TestLockUnit_CancelledContext(t *testing.T) {
	f := newFactory(0)

	holder, err := f.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, holder.LockUnit(context.Background(), "unit-1"))
	defer func() { _ = holder.Rollback(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked, err := f.Begin(ctx, uow.TxOptions{})
	require.NoError(t, err)
	assert.ErrorIs(t, blocked.LockUnit(ctx, "unit-1"), context.Canceled)
}
