package booking

import (
	"context"
	"errors"
	"time"

	"roamly/internal/domain/availability"
	"roamly/internal/domain/inventory"
	"roamly/internal/domain/pricing"
	"roamly/internal/domain/shared/daterange"
	"roamly/internal/domain/shared/events"
)

var (
	ErrInvalidQuantity = errors.New("booking: quantity must be positive")
	ErrInvalidState    = errors.New("booking: invalid state transition")
	ErrBookingNotFound = errors.New("booking: not found")
	ErrCheckInInPast   = errors.New("booking: check-in date is in the past")
	ErrPriceSnapshot   = errors.New("booking: price snapshot is inconsistent")
)

type BookingID string

type BookingState string

const (
	StatePending   BookingState = "PENDING"
	StateConfirmed BookingState = "CONFIRMED"
	StateCancelled BookingState = "CANCELLED"
	StateCompleted BookingState = "COMPLETED"
)

// CountsAgainstCapacity reports whether a state still holds inventory.
func (s BookingState) CountsAgainstCapacity() bool {
	return s == StatePending || s == StateConfirmed
}

type Booking struct {
	ID BookingID
	// Reference is the unique, human-shareable booking code.
	Reference string
	UnitID    inventory.UnitID
	GuestID   string
	Range     daterange.DateRange
	Quantity  int
	// Price is frozen at creation time and never recomputed.
	Price      pricing.PriceBreakdown
	State      BookingState
	PaymentRef string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ByReference(ctx context.Context, reference string) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByUnit(ctx context.Context, unitID inventory.UnitID) ([]*Booking, error)
}

// ValidateDateRange rejects booking-creation ranges whose check-in has
// already passed. Read paths query history through the resolver instead.
func ValidateDateRange(dr daterange.DateRange, now time.Time) error {
	if daterange.Day(dr.CheckIn).Before(daterange.Day(now)) {
		return ErrCheckInInPast
	}
	return nil
}

type CreateParams struct {
	ID        BookingID
	Reference string
	UnitID    inventory.UnitID
	GuestID   string
	Range     daterange.DateRange
	Quantity  int
	Price     pricing.PriceBreakdown
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if params.GuestID == "" {
		return nil, errors.New("booking: guest id required")
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if err := params.Price.Validate(); err != nil {
		return nil, errors.Join(ErrPriceSnapshot, err)
	}
	reference := params.Reference
	if reference == "" {
		reference = NewReference()
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		Reference: reference,
		UnitID:    params.UnitID,
		GuestID:   params.GuestID,
		Range:     params.Range,
		Quantity:  params.Quantity,
		Price:     params.Price.Copy(),
		State:     StatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BookingCommitted{
		BookingID: b.ID,
		Reference: b.Reference,
		UnitID:    b.UnitID,
		GuestID:   b.GuestID,
		Range:     b.Range,
		Quantity:  b.Quantity,
		Total:     b.Price.Total,
		At:        now,
	})
	return b, nil
}

// Confirm marks payment capture, which happens outside this engine.
func (b *Booking) Confirm(paymentRef string, now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.PaymentRef = paymentRef
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, UnitID: b.UnitID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.State {
	case StatePending, StateConfirmed:
	default:
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, UnitID: b.UnitID, Reason: reason, At: b.UpdatedAt})
	return nil
}

// Complete is called by external housekeeping once the range has elapsed.
func (b *Booking) Complete(now time.Time) error {
	if b.State != StateConfirmed {
		return ErrInvalidState
	}
	if !b.Range.EntirelyBefore(now) {
		return ErrInvalidState
	}
	b.State = StateCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, UnitID: b.UnitID, At: b.UpdatedAt})
	return nil
}

// AsReservation projects the booking into the resolver's conflict view.
func (b *Booking) AsReservation() availability.Reservation {
	return availability.Reservation{
		BookingID: string(b.ID),
		Reference: b.Reference,
		UnitID:    b.UnitID,
		Range:     b.Range,
		Quantity:  b.Quantity,
		Status:    string(b.State),
	}
}
