package dto

import (
	"time"

	domainbooking "roamly/internal/domain/booking"
)

type Booking struct {
	ID        string         `json:"id"`
	Reference string         `json:"reference"`
	UnitID    string         `json:"unit_id"`
	GuestID   string         `json:"guest_id"`
	Range     DateRange      `json:"range"`
	Quantity  int            `json:"quantity"`
	Status    string         `json:"status"`
	Price     PriceBreakdown `json:"price"`
	CreatedAt time.Time      `json:"created_at"`
}

// CommitConflict is the payload returned when availability was lost
// between quote and commit; it carries enough detail for the caller to
// re-offer alternatives without another availability round-trip.
type CommitConflict struct {
	UnitID            string                `json:"unit_id"`
	Range             DateRange             `json:"range"`
	RemainingCapacity int                   `json:"remaining_capacity"`
	RequestedQuantity int                   `json:"requested_quantity"`
	Conflicts         []ReservationConflict `json:"conflicts,omitempty"`
	Blocks            []BlockedPeriod       `json:"blocks,omitempty"`
	Reason            string                `json:"reason"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	return Booking{
		ID:        string(b.ID),
		Reference: b.Reference,
		UnitID:    string(b.UnitID),
		GuestID:   b.GuestID,
		Range:     MapDateRange(b.Range),
		Quantity:  b.Quantity,
		Status:    string(b.State),
		Price:     MapPriceBreakdown(b.Price),
		CreatedAt: b.CreatedAt,
	}
}

func MapCommitConflict(conflict *domainbooking.ConflictError) CommitConflict {
	out := CommitConflict{
		UnitID:            string(conflict.UnitID),
		Range:             MapDateRange(conflict.Range),
		RemainingCapacity: conflict.RemainingCapacity,
		RequestedQuantity: conflict.RequestedQuantity,
		Reason:            conflict.Reason,
	}
	for _, hold := range conflict.Conflicts {
		out.Conflicts = append(out.Conflicts, MapReservation(hold))
	}
	for _, block := range conflict.Blocks {
		out.Blocks = append(out.Blocks, MapBlock(block))
	}
	return out
}
