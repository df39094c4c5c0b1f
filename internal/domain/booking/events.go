package booking

import (
	"time"

	"roamly/internal/domain/inventory"
	"roamly/internal/domain/shared/daterange"
	"roamly/internal/domain/shared/money"
)

type BookingCommitted struct {
	BookingID BookingID
	Reference string
	UnitID    inventory.UnitID
	GuestID   string
	Range     daterange.DateRange
	Quantity  int
	Total     money.Money
	At        time.Time
}

func (e BookingCommitted) EventName() string     { return "booking.committed" }
func (e BookingCommitted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCommitted) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID
	UnitID    inventory.UnitID
	Range     daterange.DateRange
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID BookingID
	UnitID    inventory.UnitID
	Reason    string
	At        time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID BookingID
	UnitID    inventory.UnitID
	At        time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }
