package uow

import (
	"context"
	"errors"

	domainavailability "roamly/internal/domain/availability"
	domainbooking "roamly/internal/domain/booking"
	domaininventory "roamly/internal/domain/inventory"
)

// ErrLockTimeout is returned when a per-unit lock could not be acquired
// within the configured wait. Callers treat it as a commit conflict and
// ask the guest to try again.
var ErrLockTimeout = errors.New("uow: unit lock wait timed out")

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Units() domaininventory.Repository
	Bookings() domainbooking.Repository
	Reservations() domainavailability.ReservationSource
	Blocks() domainavailability.BlockSource

	// LockUnit serializes re-check-then-write spans per unit id, the
	// row-lock equivalent for the backing store. Held until Commit or
	// Rollback.
	LockUnit(ctx context.Context, id domaininventory.UnitID) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
