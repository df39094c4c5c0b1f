package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roamly/internal/domain/inventory"
	"roamly/internal/domain/shared/daterange"
)

var (
	ErrPastDate         = errors.New("availability: requested range is entirely in the past")
	ErrInvalidQuantity  = errors.New("availability: quantity must be positive")
	ErrCapacityExceeded = errors.New("availability: requested quantity exceeds unit capacity")
	ErrStoreTimeout     = errors.New("availability: record store call timed out")
)

// Unavailability reasons reported on a negative result. Unavailable is a
// normal outcome, never an error.
const (
	ReasonBlocked  = "blocked"
	ReasonCapacity = "capacity"
)

type CheckRequest struct {
	UnitID   inventory.UnitID
	Range    daterange.DateRange
	Quantity int // defaults to 1
	Now      time.Time
	// AllowPast permits historical queries (admin reporting). Booking
	// paths leave it false.
	AllowPast bool
}

type Result struct {
	UnitID            inventory.UnitID
	Range             daterange.DateRange
	Available         bool
	Capacity          int
	RemainingCapacity int
	Conflicts         []Reservation
	Blocks            []Block
	Reason            string
}

// Resolver answers "is this range free for this unit, at this quantity?".
type Resolver struct {
	Units        inventory.Repository
	Reservations ReservationSource
	Blocks       BlockSource
	// StoreTimeout bounds each record-store call; zero means no bound.
	StoreTimeout time.Duration
}

func NewResolver(units inventory.Repository, reservations ReservationSource, blocks BlockSource) *Resolver {
	return &Resolver{Units: units, Reservations: reservations, Blocks: blocks}
}

// Check fetches the unit, sums overlapping active holds and collects
// overlapping blocks. Any block wins over numeric capacity. Ranges that
// share only a boundary date do not conflict (checkout-morning turnover).
func (r *Resolver) Check(ctx context.Context, req CheckRequest) (Result, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 {
		return Result{}, ErrInvalidQuantity
	}
	if err := req.Range.Validate(); err != nil {
		return Result{}, err
	}
	if !req.AllowPast && req.Range.EntirelyBefore(req.Now) {
		return Result{}, ErrPastDate
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	unit, err := r.Units.ByID(ctx, req.UnitID)
	if err != nil {
		return Result{}, r.mapStoreErr(err)
	}
	if !unit.Bookable() {
		return Result{}, fmt.Errorf("%w: %s is not listed", inventory.ErrUnitNotFound, req.UnitID)
	}
	if qty > unit.Capacity {
		return Result{}, fmt.Errorf("%w: %d requested, capacity %d", ErrCapacityExceeded, qty, unit.Capacity)
	}

	holds, err := r.Reservations.ActiveOverlapping(ctx, req.UnitID, req.Range)
	if err != nil {
		return Result{}, r.mapStoreErr(err)
	}
	blocks, err := r.Blocks.Overlapping(ctx, req.UnitID, req.Range)
	if err != nil {
		return Result{}, r.mapStoreErr(err)
	}

	reserved := 0
	for _, hold := range holds {
		reserved += hold.Quantity
	}

	result := Result{
		UnitID:            req.UnitID,
		Range:             req.Range,
		Capacity:          unit.Capacity,
		RemainingCapacity: unit.Capacity - reserved,
		Conflicts:         holds,
		Blocks:            blocks,
	}
	if result.RemainingCapacity < 0 {
		result.RemainingCapacity = 0
	}
	if len(blocks) > 0 {
		// An explicit block zeroes capacity for the whole requested range.
		result.RemainingCapacity = 0
		result.Reason = ReasonBlocked
		return result, nil
	}
	if result.RemainingCapacity < qty {
		result.Reason = ReasonCapacity
		return result, nil
	}
	result.Available = true
	return result, nil
}

func (r *Resolver) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.StoreTimeout)
}

func (r *Resolver) mapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
	}
	return err
}
