package dto

import (
	"time"

	domainpricing "roamly/internal/domain/pricing"
	"roamly/internal/domain/shared/money"
)

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type NightLine struct {
	Date    time.Time `json:"date"`
	Rate    Money     `json:"rate"`
	Weekend bool      `json:"weekend"`
}

type FeeLine struct {
	Name    string `json:"name"`
	Basis   string `json:"basis"`
	Amount  Money  `json:"amount"`
	Taxable bool   `json:"taxable"`
}

type TaxLine struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
	Amount  Money   `json:"amount"`
}

type PriceBreakdown struct {
	UnitID          string      `json:"unit_id"`
	Range           DateRange   `json:"range"`
	Currency        string      `json:"currency"`
	Nights          []NightLine `json:"nights"`
	Fees            []FeeLine   `json:"fees,omitempty"`
	Tax             *TaxLine    `json:"tax,omitempty"`
	DiscountPercent float64     `json:"discount_percent,omitempty"`
	PromoLabel      string      `json:"promo_label,omitempty"`
	Subtotal        Money       `json:"subtotal"`
	Total           Money       `json:"total"`
}

func MapMoney(value money.Money) Money {
	return Money{Amount: value.Amount, Currency: value.Currency}
}

func MapPriceBreakdown(p domainpricing.PriceBreakdown) PriceBreakdown {
	out := PriceBreakdown{
		UnitID:          string(p.UnitID),
		Range:           MapDateRange(p.Range),
		Currency:        p.Currency,
		Nights:          make([]NightLine, 0, len(p.Nights)),
		DiscountPercent: p.DiscountPercent,
		PromoLabel:      p.PromoLabel,
		Subtotal:        MapMoney(p.Subtotal),
		Total:           MapMoney(p.Total),
	}
	for _, night := range p.Nights {
		out.Nights = append(out.Nights, NightLine{
			Date:    night.Date,
			Rate:    MapMoney(night.Rate),
			Weekend: night.Weekend,
		})
	}
	for _, fee := range p.Fees {
		out.Fees = append(out.Fees, FeeLine{
			Name:    fee.Name,
			Basis:   string(fee.Basis),
			Amount:  MapMoney(fee.Amount),
			Taxable: fee.Taxable,
		})
	}
	if p.Tax != nil {
		out.Tax = &TaxLine{Name: p.Tax.Name, Percent: p.Tax.Percent, Amount: MapMoney(p.Tax.Amount)}
	}
	return out
}
