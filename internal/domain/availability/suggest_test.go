package availability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamly/internal/domain/availability"
	"roamly/internal/domain/shared/daterange"
)

func TestSuggest_FirstFreeDatesAfterSoldOutStretch(t *testing.T) {
	f := newFixture(t, 1)
	// One hold sells out thirty straight days from the requested check-in.
	seedBooking(t, f, "b1", mustRange(t, date(2026, time.September, 10), date(2026, time.October, 10)), 1)
	suggester := availability.NewSuggester(f.resolver)

	got, err := suggester.Suggest(context.Background(), availability.SuggestRequest{
		UnitID:   "unit-1",
		Original: mustRange(t, date(2026, time.September, 10), date(2026, time.September, 13)),
		Now:      testNow,
	})

	require.NoError(t, err)
	require.Len(t, got, 3)
	// The checkout day itself is the first usable check-in.
	assert.Equal(t, date(2026, time.October, 10), got[0].CheckIn)
	assert.Equal(t, date(2026, time.October, 13), got[0].CheckOut)
	assert.Equal(t, date(2026, time.October, 11), got[1].CheckIn)
	assert.Equal(t, date(2026, time.October, 12), got[2].CheckIn)
	for _, dr := range got {
		assert.Equal(t, 3, dr.Nights())
	}
}

func TestSuggest_NearestFirstLaterWinsTies(t *testing.T) {
	f := newFixture(t, 1)
	suggester := availability.NewSuggester(f.resolver)
	original := mustRange(t, date(2026, time.September, 20), date(2026, time.September, 22))

	got, err := suggester.Suggest(context.Background(), availability.SuggestRequest{
		UnitID:         "unit-1",
		Original:       original,
		Now:            testNow,
		IncludeEarlier: true,
		MaxSuggestions: 2,
	})

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, date(2026, time.September, 21), got[0].CheckIn)
	assert.Equal(t, date(2026, time.September, 19), got[1].CheckIn)
}

func TestSuggest_EarlierCandidatesNeverStartInPast(t *testing.T) {
	f := newFixture(t, 1)
	suggester := availability.NewSuggester(f.resolver)

	got, err := suggester.Suggest(context.Background(), availability.SuggestRequest{
		UnitID:         "unit-1",
		Original:       mustRange(t, date(2026, time.September, 2), date(2026, time.September, 4)),
		Now:            testNow,
		IncludeEarlier: true,
		MaxSuggestions: 10,
		WindowDays:     5,
	})

	require.NoError(t, err)
	require.NotEmpty(t, got)
	today := daterange.Day(testNow)
	for _, dr := range got {
		assert.False(t, dr.CheckIn.Before(today), "suggestion %s starts before today", dr.CheckIn)
	}
}

func TestSuggest_EmptyWhenWindowIsFull(t *testing.T) {
	f := newFixture(t, 1)
	seedBooking(t, f, "b1", mustRange(t, date(2026, time.September, 4), date(2026, time.September, 25)), 1)
	suggester := availability.NewSuggester(f.resolver)

	got, err := suggester.Suggest(context.Background(), availability.SuggestRequest{
		UnitID:         "unit-1",
		Original:       mustRange(t, date(2026, time.September, 10), date(2026, time.September, 12)),
		Now:            testNow,
		WindowDays:     5,
		IncludeEarlier: true,
	})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggest_RespectsBlocks(t *testing.T) {
	f := newFixture(t, 1)
	require.NoError(t, f.blocks.Add(context.Background(), availability.Block{
		UnitID: "unit-1",
		Range:  mustRange(t, date(2026, time.September, 10), date(2026, time.September, 14)),
		Reason: availability.ReasonOwnerBlock,
	}))
	suggester := availability.NewSuggester(f.resolver)

	got, err := suggester.Suggest(context.Background(), availability.SuggestRequest{
		UnitID:         "unit-1",
		Original:       mustRange(t, date(2026, time.September, 10), date(2026, time.September, 12)),
		Now:            testNow,
		MaxSuggestions: 1,
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	// First two-night stay clear of the blocked period.
	assert.Equal(t, date(2026, time.September, 14), got[0].CheckIn)
}

func TestSuggest_InvalidOriginalRange(t *testing.T) {
	f := newFixture(t, 1)
	suggester := availability.NewSuggester(f.resolver)

	_, err := suggester.Suggest(context.Background(), availability.SuggestRequest{
		UnitID: "unit-1",
		Now:    testNow,
	})

	assert.Error(t, err)
}
