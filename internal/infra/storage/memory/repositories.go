package memory

import (
	"context"
	"sort"
	"sync"

	domainavailability "roamly/internal/domain/availability"
	domainbooking "roamly/internal/domain/booking"
	domaininventory "roamly/internal/domain/inventory"
	domainrange "roamly/internal/domain/shared/daterange"
)

// UnitRepository is an in-memory implementation for tests and local runs.
type UnitRepository struct {
	mu    sync.RWMutex
	items map[domaininventory.UnitID]*domaininventory.Unit
}

// NewUnitRepository builds an empty repository.
func NewUnitRepository() *UnitRepository {
	return &UnitRepository{
		items: make(map[domaininventory.UnitID]*domaininventory.Unit),
	}
}

// ByID returns a unit or inventory.ErrUnitNotFound.
func (r *UnitRepository) ByID(ctx context.Context, id domaininventory.UnitID) (*domaininventory.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unit, ok := r.items[id]
	if !ok {
		return nil, domaininventory.ErrUnitNotFound
	}
	return unit, nil
}

// Save stores or updates a unit entry.
func (r *UnitRepository) Save(ctx context.Context, unit *domaininventory.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[unit.ID] = unit
	return nil
}

var _ domaininventory.Repository = (*UnitRepository)(nil)

// BookingRepository stores bookings in memory. It doubles as the
// resolver's reservation source so availability reads and booking writes
// observe the same records.
type BookingRepository struct {
	mu          sync.RWMutex
	items       map[domainbooking.BookingID]*domainbooking.Booking
	byReference map[string]domainbooking.BookingID
}

// NewBookingRepository builds an empty booking repo.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		items:       make(map[domainbooking.BookingID]*domainbooking.Booking),
		byReference: make(map[string]domainbooking.BookingID),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return booking, nil
}

func (r *BookingRepository) ByReference(ctx context.Context, reference string) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byReference[reference]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return r.items[id], nil
}

// Save stores the current booking state.
func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	booking.Version++
	r.items[booking.ID] = booking
	r.byReference[booking.Reference] = booking.ID
	return nil
}

func (r *BookingRepository) ListByUnit(ctx context.Context, unitID domaininventory.UnitID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.UnitID == unitID {
			matches = append(matches, booking)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Range.CheckIn.Before(matches[j].Range.CheckIn)
	})
	return matches, nil
}

// ActiveOverlapping returns capacity-holding bookings whose range
// overlaps dr. Cancelled and completed holds are filtered out here.
func (r *BookingRepository) ActiveOverlapping(ctx context.Context, unitID domaininventory.UnitID, dr domainrange.DateRange) ([]domainavailability.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := make([]domainavailability.Reservation, 0)
	for _, booking := range r.items {
		if booking.UnitID != unitID {
			continue
		}
		if !booking.State.CountsAgainstCapacity() {
			continue
		}
		if !booking.Range.Overlaps(dr) {
			continue
		}
		matches = append(matches, booking.AsReservation())
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Range.CheckIn.Before(matches[j].Range.CheckIn)
	})
	return matches, nil
}

var (
	_ domainbooking.Repository             = (*BookingRepository)(nil)
	_ domainavailability.ReservationSource = (*BookingRepository)(nil)
)

// BlockRepository keeps owner and sync blocks in memory.
type BlockRepository struct {
	mu    sync.RWMutex
	items map[domaininventory.UnitID][]domainavailability.Block
}

// NewBlockRepository builds an empty block store.
func NewBlockRepository() *BlockRepository {
	return &BlockRepository{
		items: make(map[domaininventory.UnitID][]domainavailability.Block),
	}
}

// Add records a blocked period for a unit.
func (r *BlockRepository) Add(ctx context.Context, block domainavailability.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[block.UnitID] = append(r.items[block.UnitID], block)
	return nil
}

func (r *BlockRepository) Overlapping(ctx context.Context, unitID domaininventory.UnitID, dr domainrange.DateRange) ([]domainavailability.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := make([]domainavailability.Block, 0)
	for _, block := range r.items[unitID] {
		if block.Range.Overlaps(dr) {
			matches = append(matches, block)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Range.CheckIn.Before(matches[j].Range.CheckIn)
	})
	return matches, nil
}

var _ domainavailability.BlockSource = (*BlockRepository)(nil)
