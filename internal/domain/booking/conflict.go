package booking

import (
	"errors"
	"fmt"

	"roamly/internal/domain/availability"
	"roamly/internal/domain/inventory"
	"roamly/internal/domain/shared/daterange"
)

// ConflictError reports that availability was lost between quote and
// commit. It carries the same conflict and block detail as a resolver
// result so callers can re-offer alternatives without another round-trip.
type ConflictError struct {
	UnitID            inventory.UnitID
	Range             daterange.DateRange
	RemainingCapacity int
	RequestedQuantity int
	Conflicts         []availability.Reservation
	Blocks            []availability.Block
	Reason            string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("booking: unit %s no longer available for [%s, %s): %s",
		e.UnitID,
		e.Range.CheckIn.Format("2006-01-02"),
		e.Range.CheckOut.Format("2006-01-02"),
		e.Reason)
}

// NewConflictError builds a ConflictError from a negative resolver result.
func NewConflictError(res availability.Result, requested int) *ConflictError {
	return &ConflictError{
		UnitID:            res.UnitID,
		Range:             res.Range,
		RemainingCapacity: res.RemainingCapacity,
		RequestedQuantity: requested,
		Conflicts:         res.Conflicts,
		Blocks:            res.Blocks,
		Reason:            res.Reason,
	}
}

// AsConflict unwraps a ConflictError from an error chain.
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
