package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"roamly/internal/app/uow"
	domainavailability "roamly/internal/domain/availability"
	domainbooking "roamly/internal/domain/booking"
	domaininventory "roamly/internal/domain/inventory"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
// All units share one lock registry so commits for the same unit id
// serialize across goroutines exactly like row locks would.
type Factory struct {
	UnitsRepo    domaininventory.Repository
	BookingRepo  domainbooking.Repository
	Reservations domainavailability.ReservationSource
	BlocksRepo   domainavailability.BlockSource
	// LockWait bounds how long LockUnit blocks before reporting
	// uow.ErrLockTimeout. Zero waits on the context alone.
	LockWait time.Duration

	locksOnce sync.Once
	locks     *lockRegistry
}

// Begin starts a lightweight transaction boundary. No isolation is
// provided but the abstraction matches the application ports.
func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.UnitsRepo == nil || f.BookingRepo == nil || f.Reservations == nil || f.BlocksRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	f.locksOnce.Do(func() {
		f.locks = newLockRegistry()
	})
	return &Unit{
		units:        f.UnitsRepo,
		bookings:     f.BookingRepo,
		reservations: f.Reservations,
		blocks:       f.BlocksRepo,
		registry:     f.locks,
		lockWait:     f.LockWait,
	}, nil
}

var _ uow.UoWFactory = (*Factory)(nil)

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	units        domaininventory.Repository
	bookings     domainbooking.Repository
	reservations domainavailability.ReservationSource
	blocks       domainavailability.BlockSource
	registry     *lockRegistry
	lockWait     time.Duration
	held         []domaininventory.UnitID
	done         bool
}

func (u *Unit) Units() domaininventory.Repository { return u.units }

func (u *Unit) Bookings() domainbooking.Repository { return u.bookings }

func (u *Unit) Reservations() domainavailability.ReservationSource { return u.reservations }

func (u *Unit) Blocks() domainavailability.BlockSource { return u.blocks }

// LockUnit acquires the per-unit mutex, held until Commit or Rollback.
// A second call for the same id within one unit is a no-op.
func (u *Unit) LockUnit(ctx context.Context, id domaininventory.UnitID) error {
	for _, heldID := range u.held {
		if heldID == id {
			return nil
		}
	}
	if err := u.registry.acquire(ctx, id, u.lockWait); err != nil {
		return err
	}
	u.held = append(u.held, id)
	return nil
}

func (u *Unit) Commit(ctx context.Context) error {
	u.release()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.release()
	return nil
}

func (u *Unit) release() {
	if u.done {
		return
	}
	u.done = true
	for _, id := range u.held {
		u.registry.release(id)
	}
	u.held = nil
}

// lockRegistry hands out one binary semaphore per unit id.
type lockRegistry struct {
	mu   sync.Mutex
	sems map[domaininventory.UnitID]chan struct{}
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{sems: make(map[domaininventory.UnitID]chan struct{})}
}

func (r *lockRegistry) sem(id domaininventory.UnitID) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	sem, ok := r.sems[id]
	if !ok {
		sem = make(chan struct{}, 1)
		r.sems[id] = sem
	}
	return sem
}

func (r *lockRegistry) acquire(ctx context.Context, id domaininventory.UnitID, wait time.Duration) error {
	sem := r.sem(id)
	if wait <= 0 {
		select {
		case sem <- struct{}{}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return uow.ErrLockTimeout
	}
}

func (r *lockRegistry) release(id domaininventory.UnitID) {
	r.mu.Lock()
	sem, ok := r.sems[id]
	r.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-sem:
	default:
	}
}
