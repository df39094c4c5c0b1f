package booking_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamly/internal/domain/booking"
	"roamly/internal/domain/pricing"
	"roamly/internal/domain/shared/daterange"
	"roamly/internal/domain/shared/money"
)

var testNow = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, checkIn, checkOut time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)
	return dr
}

func snapshotFor(dr daterange.DateRange) pricing.PriceBreakdown {
	total := money.Money{Currency: "EUR"}
	nights := make([]pricing.NightLine, 0, dr.Nights())
	dr.EachNight(func(night time.Time) bool {
		nights = append(nights, pricing.NightLine{Date: night, Rate: money.Must(12000, "EUR")})
		total.Amount += 12000
		return true
	})
	return pricing.PriceBreakdown{
		UnitID:   "unit-1",
		Range:    dr,
		Currency: "EUR",
		Nights:   nights,
		Subtotal: total,
		Total:    total,
	}
}

func newPending(t *testing.T) *booking.Booking {
	t.Helper()
	stay := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13))
	b, err := booking.NewBooking(booking.CreateParams{
		ID:        "bk-1",
		UnitID:    "unit-1",
		GuestID:   "guest-1",
		Range:     stay,
		Quantity:  2,
		Price:     snapshotFor(stay),
		CreatedAt: testNow,
	})
	require.NoError(t, err)
	return b
}

func TestNewBooking_StartsPendingWithFrozenPrice(t *testing.T) {
	stay := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13))
	snapshot := snapshotFor(stay)

	b, err := booking.NewBooking(booking.CreateParams{
		ID:        "bk-1",
		UnitID:    "unit-1",
		GuestID:   "guest-1",
		Range:     stay,
		Quantity:  2,
		Price:     snapshot,
		CreatedAt: testNow,
	})

	require.NoError(t, err)
	assert.Equal(t, booking.StatePending, b.State)
	assert.True(t, strings.HasPrefix(b.Reference, "RMY-"))
	assert.Equal(t, int64(36000), b.Price.Total.Amount)

	// The stored snapshot is a copy; mutating the input must not leak in.
	snapshot.Nights[0].Rate.Amount = 1
	assert.Equal(t, int64(12000), b.Price.Nights[0].Rate.Amount)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	committed, ok := events[0].(booking.BookingCommitted)
	require.True(t, ok)
	assert.Equal(t, b.Reference, committed.Reference)
	assert.Equal(t, int64(36000), committed.Total.Amount)
}

func TestNewBooking_Validation(t *testing.T) {
	stay := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13))
	valid := booking.CreateParams{
		ID:        "bk-1",
		UnitID:    "unit-1",
		GuestID:   "guest-1",
		Range:     stay,
		Quantity:  1,
		Price:     snapshotFor(stay),
		CreatedAt: testNow,
	}

	zeroQty := valid
	zeroQty.Quantity = 0
	_, err := booking.NewBooking(zeroQty)
	assert.ErrorIs(t, err, booking.ErrInvalidQuantity)

	noGuest := valid
	noGuest.GuestID = ""
	_, err = booking.NewBooking(noGuest)
	assert.Error(t, err)

	badPrice := valid
	badPrice.Price = snapshotFor(stay)
	badPrice.Price.Total.Amount += 1
	_, err = booking.NewBooking(badPrice)
	assert.ErrorIs(t, err, booking.ErrPriceSnapshot)
}

func TestValidateDateRange_RejectsPastCheckIn(t *testing.T) {
	yesterday := mustRange(t, date(2026, time.August, 31), date(2026, time.September, 3))
	assert.ErrorIs(t, booking.ValidateDateRange(yesterday, testNow), booking.ErrCheckInInPast)

	// Same-day check-in is allowed regardless of the time of day.
	today := mustRange(t, date(2026, time.September, 1), date(2026, time.September, 3))
	assert.NoError(t, booking.ValidateDateRange(today, testNow))
}

func TestBooking_ConfirmThenComplete(t *testing.T) {
	b := newPending(t)

	require.NoError(t, b.Confirm("pay-123", testNow))
	assert.Equal(t, booking.StateConfirmed, b.State)
	assert.Equal(t, "pay-123", b.PaymentRef)

	// Cannot complete before the stay has elapsed.
	assert.ErrorIs(t, b.Complete(testNow), booking.ErrInvalidState)

	after := date(2026, time.September, 14)
	require.NoError(t, b.Complete(after))
	assert.Equal(t, booking.StateCompleted, b.State)
	assert.False(t, b.State.CountsAgainstCapacity())
}

func TestBooking_InvalidTransitions(t *testing.T) {
	b := newPending(t)

	// Pending bookings cannot complete.
	assert.ErrorIs(t, b.Complete(date(2026, time.September, 14)), booking.ErrInvalidState)

	require.NoError(t, b.Cancel("changed plans", testNow))
	assert.Equal(t, booking.StateCancelled, b.State)
	assert.False(t, b.State.CountsAgainstCapacity())

	assert.ErrorIs(t, b.Confirm("pay-1", testNow), booking.ErrInvalidState)
	assert.ErrorIs(t, b.Cancel("again", testNow), booking.ErrInvalidState)
}

func TestBooking_HoldStates(t *testing.T) {
	assert.True(t, booking.StatePending.CountsAgainstCapacity())
	assert.True(t, booking.StateConfirmed.CountsAgainstCapacity())
	assert.False(t, booking.StateCancelled.CountsAgainstCapacity())
	assert.False(t, booking.StateCompleted.CountsAgainstCapacity())
}

func TestBooking_AsReservation(t *testing.T) {
	b := newPending(t)

	res := b.AsReservation()

	assert.Equal(t, string(b.ID), res.BookingID)
	assert.Equal(t, b.Reference, res.Reference)
	assert.Equal(t, b.UnitID, res.UnitID)
	assert.Equal(t, b.Range, res.Range)
	assert.Equal(t, b.Quantity, res.Quantity)
	assert.Equal(t, string(booking.StatePending), res.Status)
}

func TestNewReference_Shape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		ref := booking.NewReference()
		assert.True(t, strings.HasPrefix(ref, "RMY-"))
		assert.Len(t, ref, len("RMY-")+10)
		seen[ref] = struct{}{}
	}
	assert.Len(t, seen, 100)
}
