package pricing

import (
	"errors"
	"time"

	"roamly/internal/domain/inventory"
	"roamly/internal/domain/shared/daterange"
	"roamly/internal/domain/shared/money"
)

var (
	ErrCurrencyUnset = errors.New("pricing: currency must be defined")
	ErrEmptyRange    = errors.New("pricing: breakdown must cover at least one night")
	ErrTotalMismatch = errors.New("pricing: total does not equal the sum of lines")
)

// NightLine is one night actually charged: the date and the rate after
// weekend selection and discount.
type NightLine struct {
	Date    time.Time
	Rate    money.Money
	Weekend bool
}

type FeeLine struct {
	Name    string
	Basis   inventory.FeeBasis
	Amount  money.Money
	Taxable bool
}

type TaxLine struct {
	Name    string
	Percent float64
	Amount  money.Money
}

// PriceBreakdown is an itemized quote. It is computed once; the Total is
// the exact sum of the emitted lines and is never silently re-derived
// after being shown to a guest.
type PriceBreakdown struct {
	UnitID          inventory.UnitID
	Range           daterange.DateRange
	Currency        string
	Nights          []NightLine
	Fees            []FeeLine
	Tax             *TaxLine
	DiscountPercent float64
	PromoLabel      string
	Subtotal        money.Money
	Total           money.Money
}

// SumLines re-adds every emitted line. Callers use it to verify the
// frozen Total instead of recomputing a quote with possibly different
// inputs.
func (p PriceBreakdown) SumLines() money.Money {
	sum := money.Money{Amount: 0, Currency: p.Currency}
	for _, night := range p.Nights {
		sum.Amount += night.Rate.Amount
	}
	for _, fee := range p.Fees {
		sum.Amount += fee.Amount.Amount
	}
	if p.Tax != nil {
		sum.Amount += p.Tax.Amount.Amount
	}
	return sum
}

func (p PriceBreakdown) Validate() error {
	if p.Currency == "" {
		return ErrCurrencyUnset
	}
	if len(p.Nights) == 0 {
		return ErrEmptyRange
	}
	if p.Total.Amount != p.SumLines().Amount {
		return ErrTotalMismatch
	}
	return nil
}

func (p PriceBreakdown) Copy() PriceBreakdown {
	clone := p
	clone.Nights = append([]NightLine(nil), p.Nights...)
	clone.Fees = append([]FeeLine(nil), p.Fees...)
	if p.Tax != nil {
		tax := *p.Tax
		clone.Tax = &tax
	}
	return clone
}
