package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"roamly/internal/domain/inventory"
	"roamly/internal/domain/shared/daterange"
	"roamly/internal/domain/shared/money"
)

var ErrInvalidGuests = errors.New("pricing: guests count must be positive")

type QuoteRequest struct {
	UnitID inventory.UnitID
	Range  daterange.DateRange
	Guests int // defaults to 1
	// Extras selects optional fee-schedule entries by name.
	Extras []string
	Now    time.Time
}

// Calculator produces deterministic itemized quotes from a unit's static
// price components. All arithmetic happens in integer minor units; each
// percentage-derived line is rounded exactly once when emitted.
type Calculator struct {
	Units inventory.Repository
	// StoreTimeout bounds the unit lookup; zero means no bound.
	StoreTimeout time.Duration
}

func NewCalculator(units inventory.Repository) *Calculator {
	return &Calculator{Units: units}
}

func (c *Calculator) Quote(ctx context.Context, req QuoteRequest) (PriceBreakdown, error) {
	if err := req.Range.Validate(); err != nil {
		return PriceBreakdown{}, err
	}
	guests := req.Guests
	if guests == 0 {
		guests = 1
	}
	if guests < 0 {
		return PriceBreakdown{}, ErrInvalidGuests
	}

	if c.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.StoreTimeout)
		defer cancel()
	}
	unit, err := c.Units.ByID(ctx, req.UnitID)
	if err != nil {
		return PriceBreakdown{}, err
	}

	days := int64(req.Range.Nights())
	breakdown := PriceBreakdown{
		UnitID:          unit.ID,
		Range:           req.Range,
		Currency:        unit.Currency,
		DiscountPercent: unit.DiscountPercent,
		PromoLabel:      unit.PromoLabel,
		Nights:          make([]NightLine, 0, days),
	}

	subtotal := money.Money{Amount: 0, Currency: unit.Currency}
	req.Range.EachNight(func(night time.Time) bool {
		rate := unit.NightlyRate(night)
		if unit.DiscountPercent > 0 {
			rate = discounted(rate, unit.DiscountPercent)
		}
		breakdown.Nights = append(breakdown.Nights, NightLine{
			Date:    night,
			Rate:    rate,
			Weekend: unit.IsWeekend(night),
		})
		subtotal.Amount += rate.Amount
		return true
	})
	breakdown.Subtotal = subtotal

	taxable := subtotal
	for _, fee := range unit.Fees {
		if fee.Optional && !selected(fee.Name, req.Extras) {
			continue
		}
		amount := fee.Amount
		if fee.Basis == inventory.FeePerDay {
			amount = amount.Multiply(days)
		}
		breakdown.Fees = append(breakdown.Fees, FeeLine{
			Name:    fee.Name,
			Basis:   fee.Basis,
			Amount:  amount,
			Taxable: fee.Taxable,
		})
		if fee.Taxable {
			taxable.Amount += amount.Amount
		}
	}

	if unit.TaxPercent > 0 {
		breakdown.Tax = &TaxLine{
			Name:    "tax",
			Percent: unit.TaxPercent,
			Amount:  taxable.Percent(unit.TaxPercent),
		}
	}

	breakdown.Total = breakdown.SumLines()
	if err := breakdown.Validate(); err != nil {
		return PriceBreakdown{}, fmt.Errorf("pricing: quote for %s: %w", unit.ID, err)
	}
	return breakdown, nil
}

// discounted applies a percentage discount to a nightly rate, floored at
// zero, rounding only once.
func discounted(rate money.Money, pct float64) money.Money {
	off := rate.Percent(pct)
	rate.Amount -= off.Amount
	if rate.Amount < 0 {
		rate.Amount = 0
	}
	return rate
}

func selected(name string, extras []string) bool {
	for _, extra := range extras {
		if strings.EqualFold(strings.TrimSpace(extra), name) {
			return true
		}
	}
	return false
}
