package dto

import (
	"time"

	domainavailability "roamly/internal/domain/availability"
	"roamly/internal/domain/shared/daterange"
)

type DateRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

type ReservationConflict struct {
	Reference string    `json:"reference"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
}

type BlockedPeriod struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
	Reason   string    `json:"reason"`
}

type AvailabilityResult struct {
	UnitID            string                `json:"unit_id"`
	Range             DateRange             `json:"range"`
	Available         bool                  `json:"available"`
	Capacity          int                   `json:"capacity"`
	RemainingCapacity int                   `json:"remaining_capacity"`
	Conflicts         []ReservationConflict `json:"conflicts,omitempty"`
	Blocks            []BlockedPeriod       `json:"blocks,omitempty"`
	Reason            string                `json:"reason,omitempty"`
}

type Alternatives struct {
	UnitID   string      `json:"unit_id"`
	Original DateRange   `json:"original"`
	Options  []DateRange `json:"options"`
}

func MapDateRange(dr daterange.DateRange) DateRange {
	return DateRange{CheckIn: dr.CheckIn, CheckOut: dr.CheckOut}
}

func MapAvailability(res domainavailability.Result) AvailabilityResult {
	out := AvailabilityResult{
		UnitID:            string(res.UnitID),
		Range:             MapDateRange(res.Range),
		Available:         res.Available,
		Capacity:          res.Capacity,
		RemainingCapacity: res.RemainingCapacity,
		Reason:            res.Reason,
	}
	for _, conflict := range res.Conflicts {
		out.Conflicts = append(out.Conflicts, MapReservation(conflict))
	}
	for _, block := range res.Blocks {
		out.Blocks = append(out.Blocks, MapBlock(block))
	}
	return out
}

func MapReservation(r domainavailability.Reservation) ReservationConflict {
	return ReservationConflict{
		Reference: r.Reference,
		CheckIn:   r.Range.CheckIn,
		CheckOut:  r.Range.CheckOut,
		Quantity:  r.Quantity,
		Status:    r.Status,
	}
}

func MapBlock(b domainavailability.Block) BlockedPeriod {
	return BlockedPeriod{
		CheckIn:  b.Range.CheckIn,
		CheckOut: b.Range.CheckOut,
		Reason:   string(b.Reason),
	}
}

func MapAlternatives(unitID string, original daterange.DateRange, options []daterange.DateRange) Alternatives {
	out := Alternatives{
		UnitID:   unitID,
		Original: MapDateRange(original),
		Options:  make([]DateRange, 0, len(options)),
	}
	for _, option := range options {
		out.Options = append(out.Options, MapDateRange(option))
	}
	return out
}
