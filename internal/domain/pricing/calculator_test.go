package pricing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamly/internal/domain/inventory"
	"roamly/internal/domain/pricing"
	"roamly/internal/domain/shared/daterange"
	"roamly/internal/domain/shared/money"
	"roamly/internal/infra/storage/memory"
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

func storeUnit(t *testing.T, repo *memory.UnitRepository, params inventory.CreateUnitParams) *inventory.Unit {
	t.Helper()
	unit, err := inventory.NewUnit(params)
	require.NoError(t, err)
	require.NoError(t, unit.Activate(params.Now))
	unit.ClearEvents()
	require.NoError(t, repo.Save(context.Background(), unit))
	return unit
}

// 2026-09-07 is a Monday, so the 9th..12th run Wednesday through Saturday.
var testNow = date(2026, time.September, 1)

func TestQuote_WeekendRatesAndFees(t *testing.T) {
	repo := memory.NewUnitRepository()
	storeUnit(t, repo, inventory.CreateUnitParams{
		ID:          "unit-1",
		Owner:       "owner-1",
		Title:       "Canal Loft",
		Capacity:    2,
		Currency:    "EUR",
		BaseRate:    10000,
		WeekendRate: 15000,
		TaxPercent:  10,
		Fees: []inventory.Fee{
			{Name: "cleaning", Basis: inventory.FeePerStay, Amount: money.Must(2500, "EUR"), Taxable: true},
			{Name: "insurance", Basis: inventory.FeePerDay, Amount: money.Must(1000, "EUR")},
			{Name: "late_checkout", Basis: inventory.FeePerStay, Amount: money.Must(1500, "EUR"), Optional: true},
		},
		Now: testNow,
	})
	calc := pricing.NewCalculator(repo)

	// Wed + Thu at base rate, Fri at the weekend rate.
	breakdown, err := calc.Quote(context.Background(), pricing.QuoteRequest{
		UnitID: "unit-1",
		Range:  mustRange(t, date(2026, time.September, 9), date(2026, time.September, 12)),
		Now:    testNow,
	})

	require.NoError(t, err)
	require.Len(t, breakdown.Nights, 3)
	assert.Equal(t, int64(10000), breakdown.Nights[0].Rate.Amount)
	assert.False(t, breakdown.Nights[0].Weekend)
	assert.Equal(t, int64(15000), breakdown.Nights[2].Rate.Amount)
	assert.True(t, breakdown.Nights[2].Weekend)
	assert.Equal(t, int64(35000), breakdown.Subtotal.Amount)

	// Optional fee stays out; the per-day fee covers all three days.
	require.Len(t, breakdown.Fees, 2)
	assert.Equal(t, int64(2500), breakdown.Fees[0].Amount.Amount)
	assert.Equal(t, int64(3000), breakdown.Fees[1].Amount.Amount)

	// Tax applies to the subtotal plus taxable fees only.
	require.NotNil(t, breakdown.Tax)
	assert.Equal(t, int64(3750), breakdown.Tax.Amount.Amount)
	assert.InDelta(t, 10.0, breakdown.Tax.Percent, 0)

	assert.Equal(t, int64(44250), breakdown.Total.Amount)
	assert.Equal(t, breakdown.SumLines().Amount, breakdown.Total.Amount)
	assert.NoError(t, breakdown.Validate())
}

func TestQuote_OptionalFeeSelectedByExtras(t *testing.T) {
	repo := memory.NewUnitRepository()
	storeUnit(t, repo, inventory.CreateUnitParams{
		ID:       "unit-1",
		Owner:    "owner-1",
		Title:    "Canal Loft",
		Capacity: 2,
		Currency: "EUR",
		BaseRate: 10000,
		Fees: []inventory.Fee{
			{Name: "late_checkout", Basis: inventory.FeePerStay, Amount: money.Must(1500, "EUR"), Optional: true},
		},
		Now: testNow,
	})
	calc := pricing.NewCalculator(repo)

	breakdown, err := calc.Quote(context.Background(), pricing.QuoteRequest{
		UnitID: "unit-1",
		Range:  mustRange(t, date(2026, time.September, 9), date(2026, time.September, 10)),
		Extras: []string{" Late_Checkout "},
		Now:    testNow,
	})

	require.NoError(t, err)
	require.Len(t, breakdown.Fees, 1)
	assert.Equal(t, "late_checkout", breakdown.Fees[0].Name)
	assert.Equal(t, int64(11500), breakdown.Total.Amount)
}

func TestQuote_DiscountAppliesPerNight(t *testing.T) {
	repo := memory.NewUnitRepository()
	storeUnit(t, repo, inventory.CreateUnitParams{
		ID:              "unit-1",
		Owner:           "owner-1",
		Title:           "Canal Loft",
		Capacity:        2,
		Currency:        "EUR",
		BaseRate:        10000,
		DiscountPercent: 10,
		PromoLabel:      "SUMMER10",
		Now:             testNow,
	})
	calc := pricing.NewCalculator(repo)

	breakdown, err := calc.Quote(context.Background(), pricing.QuoteRequest{
		UnitID: "unit-1",
		Range:  mustRange(t, date(2026, time.September, 7), date(2026, time.September, 9)),
		Now:    testNow,
	})

	require.NoError(t, err)
	for _, night := range breakdown.Nights {
		assert.Equal(t, int64(9000), night.Rate.Amount)
	}
	assert.Equal(t, int64(18000), breakdown.Total.Amount)
	assert.Equal(t, "SUMMER10", breakdown.PromoLabel)
}

func TestQuote_IsDeterministic(t *testing.T) {
	repo := memory.NewUnitRepository()
	storeUnit(t, repo, inventory.CreateUnitParams{
		ID:          "unit-1",
		Owner:       "owner-1",
		Title:       "Canal Loft",
		Capacity:    2,
		Currency:    "EUR",
		BaseRate:    11111,
		WeekendRate: 17777,
		TaxPercent:  9.5,
		Fees: []inventory.Fee{
			{Name: "cleaning", Basis: inventory.FeePerStay, Amount: money.Must(2599, "EUR"), Taxable: true},
		},
		Now: testNow,
	})
	calc := pricing.NewCalculator(repo)
	req := pricing.QuoteRequest{
		UnitID: "unit-1",
		Range:  mustRange(t, date(2026, time.September, 9), date(2026, time.September, 14)),
		Now:    testNow,
	}

	first, err := calc.Quote(context.Background(), req)
	require.NoError(t, err)
	second, err := calc.Quote(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.SumLines().Amount, first.Total.Amount)
}

func TestQuote_UnknownUnit(t *testing.T) {
	calc := pricing.NewCalculator(memory.NewUnitRepository())

	_, err := calc.Quote(context.Background(), pricing.QuoteRequest{
		UnitID: "ghost",
		Range:  mustRange(t, date(2026, time.September, 9), date(2026, time.September, 10)),
		Now:    testNow,
	})

	assert.ErrorIs(t, err, inventory.ErrUnitNotFound)
}

func TestValidate_DetectsTamperedTotal(t *testing.T) {
	repo := memory.NewUnitRepository()
	storeUnit(t, repo, inventory.CreateUnitParams{
		ID:       "unit-1",
		Owner:    "owner-1",
		Title:    "Canal Loft",
		Capacity: 2,
		Currency: "EUR",
		BaseRate: 10000,
		Now:      testNow,
	})
	calc := pricing.NewCalculator(repo)

	breakdown, err := calc.Quote(context.Background(), pricing.QuoteRequest{
		UnitID: "unit-1",
		Range:  mustRange(t, date(2026, time.September, 9), date(2026, time.September, 10)),
		Now:    testNow,
	})
	require.NoError(t, err)

	breakdown.Total.Amount += 100
	assert.ErrorIs(t, breakdown.Validate(), pricing.ErrTotalMismatch)
}
