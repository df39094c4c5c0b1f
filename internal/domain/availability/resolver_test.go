package availability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamly/internal/domain/availability"
	"roamly/internal/domain/booking"
	"roamly/internal/domain/inventory"
	"roamly/internal/domain/pricing"
	"roamly/internal/domain/shared/daterange"
	"roamly/internal/domain/shared/money"
	"roamly/internal/infra/storage/memory"
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

type fixture struct {
	units    *memory.UnitRepository
	bookings *memory.BookingRepository
	blocks   *memory.BlockRepository
	resolver *availability.Resolver
}

func newFixture(t *testing.T, capacity int) fixture {
	t.Helper()
	units := memory.NewUnitRepository()
	bookings := memory.NewBookingRepository()
	blocks := memory.NewBlockRepository()

	unit, err := inventory.NewUnit(inventory.CreateUnitParams{
		ID:       "unit-1",
		Owner:    "owner-1",
		Title:    "Harbor Rooms",
		Capacity: capacity,
		Currency: "EUR",
		BaseRate: 10000,
		Now:      testNow,
	})
	require.NoError(t, err)
	require.NoError(t, unit.Activate(testNow))
	unit.ClearEvents()
	require.NoError(t, units.Save(context.Background(), unit))

	return fixture{
		units:    units,
		bookings: bookings,
		blocks:   blocks,
		resolver: availability.NewResolver(units, bookings, blocks),
	}
}

func snapshotFor(dr daterange.DateRange) pricing.PriceBreakdown {
	total := money.Money{Currency: "EUR"}
	nights := make([]pricing.NightLine, 0, dr.Nights())
	dr.EachNight(func(night time.Time) bool {
		nights = append(nights, pricing.NightLine{Date: night, Rate: money.Must(10000, "EUR")})
		total.Amount += 10000
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

func seedBooking(t *testing.T, f fixture, id string, dr daterange.DateRange, quantity int) *booking.Booking {
	t.Helper()
	b, err := booking.NewBooking(booking.CreateParams{
		ID:        booking.BookingID(id),
		UnitID:    "unit-1",
		GuestID:   "guest-" + id,
		Range:     dr,
		Quantity:  quantity,
		Price:     snapshotFor(dr),
		CreatedAt: testNow,
	})
	require.NoError(t, err)
	b.ClearEvents()
	require.NoError(t, f.bookings.Save(context.Background(), b))
	return b
}

func TestCheck_PartialCapacityRemains(t *testing.T) {
	f := newFixture(t, 4)
	stay := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13))
	seedBooking(t, f, "b1", stay, 2)

	res, err := f.resolver.Check(context.Background(), availability.CheckRequest{
		UnitID:   "unit-1",
		Range:    stay,
		Quantity: 2,
		Now:      testNow,
	})

	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Equal(t, 4, res.Capacity)
	assert.Equal(t, 2, res.RemainingCapacity)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, 2, res.Conflicts[0].Quantity)
	assert.Empty(t, res.Blocks)
	assert.Empty(t, res.Reason)
}

func TestCheck_ShortfallReportsTrueRemainder(t *testing.T) {
	f := newFixture(t, 3)
	stay := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13))
	seedBooking(t, f, "b1", stay, 2)

	// One unit left; asking for two fails but the remainder is still 1.
	res, err := f.resolver.Check(context.Background(), availability.CheckRequest{
		UnitID:   "unit-1",
		Range:    stay,
		Quantity: 2,
		Now:      testNow,
	})

	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, availability.ReasonCapacity, res.Reason)
	assert.Equal(t, 1, res.RemainingCapacity)
}

func TestCheck_CapacityExhausted(t *testing.T) {
	f := newFixture(t, 2)
	stay := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13))
	seedBooking(t, f, "b1", stay, 1)
	seedBooking(t, f, "b2", stay, 1)

	res, err := f.resolver.Check(context.Background(), availability.CheckRequest{
		UnitID: "unit-1",
		Range:  stay,
		Now:    testNow,
	})

	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, availability.ReasonCapacity, res.Reason)
	assert.Equal(t, 0, res.RemainingCapacity)
	assert.Len(t, res.Conflicts, 2)
}

func TestCheck_BlockZeroesCapacity(t *testing.T) {
	f := newFixture(t, 4)
	stay := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13))
	require.NoError(t, f.blocks.Add(context.Background(), availability.Block{
		UnitID: "unit-1",
		Range:  mustRange(t, date(2026, time.September, 12), date(2026, time.September, 15)),
		Reason: availability.ReasonMaintenance,
	}))

	res, err := f.resolver.Check(context.Background(), availability.CheckRequest{
		UnitID: "unit-1",
		Range:  stay,
		Now:    testNow,
	})

	require.NoError(t, err)
	assert.False(t, res.Available)
	assert.Equal(t, availability.ReasonBlocked, res.Reason)
	assert.Equal(t, 0, res.RemainingCapacity)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, availability.ReasonMaintenance, res.Blocks[0].Reason)
}

func TestCheck_TurnoverDayDoesNotConflict(t *testing.T) {
	f := newFixture(t, 1)
	seedBooking(t, f, "b1", mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13)), 1)

	// Check-in on the previous guest's checkout morning.
	res, err := f.resolver.Check(context.Background(), availability.CheckRequest{
		UnitID: "unit-1",
		Range:  mustRange(t, date(2026, time.September, 13), date(2026, time.September, 15)),
		Now:    testNow,
	})

	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Equal(t, 1, res.RemainingCapacity)
	assert.Empty(t, res.Conflicts)
}

func TestCheck_CancelledHoldReleasesCapacity(t *testing.T) {
	f := newFixture(t, 1)
	stay := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13))
	b := seedBooking(t, f, "b1", stay, 1)
	require.NoError(t, b.Cancel("guest request", testNow))
	require.NoError(t, f.bookings.Save(context.Background(), b))

	res, err := f.resolver.Check(context.Background(), availability.CheckRequest{
		UnitID: "unit-1",
		Range:  stay,
		Now:    testNow,
	})

	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Empty(t, res.Conflicts)
}

func TestCheck_PastRangeRejectedUnlessAllowed(t *testing.T) {
	f := newFixture(t, 2)
	past := mustRange(t, date(2026, time.August, 10), date(2026, time.August, 12))

	_, err := f.resolver.Check(context.Background(), availability.CheckRequest{
		UnitID: "unit-1",
		Range:  past,
		Now:    testNow,
	})
	assert.ErrorIs(t, err, availability.ErrPastDate)

	res, err := f.resolver.Check(context.Background(), availability.CheckRequest{
		UnitID:    "unit-1",
		Range:     past,
		Now:       testNow,
		AllowPast: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Available)
}

func TestCheck_NegativeQuantity(t *testing.T) {
	f := newFixture(t, 2)

	_, err := f.resolver.Check(context.Background(), availability.CheckRequest{
		UnitID:   "unit-1",
		Range:    mustRange(t, date(2026, time.September, 10), date(2026, time.September, 12)),
		Quantity: -1,
		Now:      testNow,
	})

	assert.ErrorIs(t, err, availability.ErrInvalidQuantity)
}

func TestCheck_QuantityAboveCapacity(t *testing.T) {
	f := newFixture(t, 3)

	_, err := f.resolver.Check(context.Background(), availability.CheckRequest{
		UnitID:   "unit-1",
		Range:    mustRange(t, date(2026, time.September, 10), date(2026, time.September, 12)),
		Quantity: 4,
		Now:      testNow,
	})

	assert.ErrorIs(t, err, availability.ErrCapacityExceeded)
}

func TestCheck_UnlistedUnit(t *testing.T) {
	f := newFixture(t, 2)
	draft, err := inventory.NewUnit(inventory.CreateUnitParams{
		ID:       "unit-draft",
		Owner:    "owner-1",
		Title:    "Unfinished Cabin",
		Capacity: 2,
		Currency: "EUR",
		BaseRate: 8000,
		Now:      testNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.units.Save(context.Background(), draft))

	_, err = f.resolver.Check(context.Background(), availability.CheckRequest{
		UnitID: "unit-draft",
		Range:  mustRange(t, date(2026, time.September, 10), date(2026, time.September, 12)),
		Now:    testNow,
	})

	assert.ErrorIs(t, err, inventory.ErrUnitNotFound)
}

func TestCheck_RepeatedReadsAgree(t *testing.T) {
	f := newFixture(t, 4)
	stay := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13))
	seedBooking(t, f, "b1", stay, 3)

	req := availability.CheckRequest{UnitID: "unit-1", Range: stay, Now: testNow}
	first, err := f.resolver.Check(context.Background(), req)
	require.NoError(t, err)
	second, err := f.resolver.Check(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
