package availability

import (
	"context"
	"time"

	"roamly/internal/domain/inventory"
	"roamly/internal/domain/shared/daterange"
)

type BlockReason string

const (
	ReasonOwnerBlock   BlockReason = "OWNER_BLOCK"
	ReasonExternalSync BlockReason = "EXTERNAL_SYNC"
	ReasonMaintenance  BlockReason = "MAINTENANCE"
)

// Block is an owner- or system-declared period during which a unit takes
// no bookings regardless of numeric capacity. Blocks are created and
// removed by owner tooling; this engine only reads them.
type Block struct {
	UnitID    inventory.UnitID
	Range     daterange.DateRange
	Reason    BlockReason
	Reference string
	CreatedAt time.Time
}

// BlockSource reads blocked periods overlapping a date range.
type BlockSource interface {
	Overlapping(ctx context.Context, unitID inventory.UnitID, dr daterange.DateRange) ([]Block, error)
}

// Reservation is the resolver's view of an existing booking hold: just
// enough to count capacity and to report conflicts back to callers.
type Reservation struct {
	BookingID string
	Reference string
	UnitID    inventory.UnitID
	Range     daterange.DateRange
	Quantity  int
	Status    string
}

// ReservationSource reads bookings overlapping a date range. Implementations
// must return only records that still count against capacity (pending or
// confirmed); cancelled and completed holds never do.
type ReservationSource interface {
	ActiveOverlapping(ctx context.Context, unitID inventory.UnitID, dr daterange.DateRange) ([]Reservation, error)
}
