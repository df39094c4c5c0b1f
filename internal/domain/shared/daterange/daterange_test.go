package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamly/internal/domain/shared/daterange"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, checkIn, checkOut time.Time) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)
	return dr
}

func TestNew_TruncatesToCalendarDates(t *testing.T) {
	checkIn := time.Date(2026, time.September, 7, 15, 30, 12, 0, time.UTC)
	checkOut := time.Date(2026, time.September, 10, 11, 0, 0, 0, time.UTC)

	dr, err := daterange.New(checkIn, checkOut)

	require.NoError(t, err)
	assert.Equal(t, date(2026, time.September, 7), dr.CheckIn)
	assert.Equal(t, date(2026, time.September, 10), dr.CheckOut)
	assert.Equal(t, 3, dr.Nights())
}

func TestNew_RejectsEmptyAndInvertedRanges(t *testing.T) {
	day := date(2026, time.September, 7)

	_, err := daterange.New(day, day)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = daterange.New(day.AddDate(0, 0, 2), day)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = daterange.New(time.Time{}, day)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestOverlaps_IsSymmetric(t *testing.T) {
	a := mustRange(t, date(2026, time.September, 7), date(2026, time.September, 12))
	b := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 14))
	c := mustRange(t, date(2026, time.September, 20), date(2026, time.September, 22))

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
	assert.False(t, a.Overlaps(c))
	assert.False(t, c.Overlaps(a))
}

func TestOverlaps_SelfAndContained(t *testing.T) {
	a := mustRange(t, date(2026, time.September, 7), date(2026, time.September, 12))
	inner := mustRange(t, date(2026, time.September, 8), date(2026, time.September, 9))

	assert.True(t, a.Overlaps(a))
	assert.True(t, a.Overlaps(inner))
	assert.True(t, a.Contains(inner))
	assert.False(t, inner.Contains(a))
}

func TestOverlaps_TurnoverDayIsNotAConflict(t *testing.T) {
	first := mustRange(t, date(2026, time.September, 7), date(2026, time.September, 10))
	second := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13))

	assert.False(t, first.Overlaps(second))
	assert.False(t, second.Overlaps(first))
	assert.True(t, first.Adjacent(second))
}

func TestContainsDate_HalfOpenBoundaries(t *testing.T) {
	dr := mustRange(t, date(2026, time.September, 7), date(2026, time.September, 10))

	assert.True(t, dr.ContainsDate(date(2026, time.September, 7)))
	assert.True(t, dr.ContainsDate(date(2026, time.September, 9)))
	assert.False(t, dr.ContainsDate(date(2026, time.September, 10)))
}

func TestEachNight_WalksEveryNightAndRestarts(t *testing.T) {
	dr := mustRange(t, date(2026, time.September, 7), date(2026, time.September, 10))

	collect := func() []time.Time {
		var nights []time.Time
		dr.EachNight(func(night time.Time) bool {
			nights = append(nights, night)
			return true
		})
		return nights
	}

	first := collect()
	second := collect()

	require.Len(t, first, 3)
	assert.Equal(t, date(2026, time.September, 7), first[0])
	assert.Equal(t, date(2026, time.September, 9), first[2])
	assert.Equal(t, first, second)
}

func TestEachNight_StopsEarly(t *testing.T) {
	dr := mustRange(t, date(2026, time.September, 7), date(2026, time.September, 12))

	count := 0
	dr.EachNight(func(time.Time) bool {
		count++
		return count < 2
	})

	assert.Equal(t, 2, count)
}

func TestShift_MovesBothEndpoints(t *testing.T) {
	dr := mustRange(t, date(2026, time.September, 7), date(2026, time.September, 10))

	later := dr.Shift(3)
	earlier := dr.Shift(-2)

	assert.Equal(t, date(2026, time.September, 10), later.CheckIn)
	assert.Equal(t, date(2026, time.September, 13), later.CheckOut)
	assert.Equal(t, date(2026, time.September, 5), earlier.CheckIn)
	assert.Equal(t, dr.Nights(), later.Nights())
}

func TestEntirelyBefore(t *testing.T) {
	dr := mustRange(t, date(2026, time.September, 7), date(2026, time.September, 10))

	assert.True(t, dr.EntirelyBefore(date(2026, time.September, 10)))
	assert.True(t, dr.EntirelyBefore(date(2026, time.October, 1)))
	assert.False(t, dr.EntirelyBefore(date(2026, time.September, 9)))
}

func TestMerge(t *testing.T) {
	a := mustRange(t, date(2026, time.September, 7), date(2026, time.September, 10))
	b := mustRange(t, date(2026, time.September, 10), date(2026, time.September, 12))
	c := mustRange(t, date(2026, time.September, 20), date(2026, time.September, 22))

	merged, ok := a.Merge(b)
	require.True(t, ok)
	assert.Equal(t, date(2026, time.September, 7), merged.CheckIn)
	assert.Equal(t, date(2026, time.September, 12), merged.CheckOut)

	_, ok = a.Merge(c)
	assert.False(t, ok)
}
