package pricing

import (
	"context"
	"time"

	"roamly/internal/app/dto"
	"roamly/internal/app/handlers/support"
	"roamly/internal/app/queries"
	"roamly/internal/app/uow"
	domaininventory "roamly/internal/domain/inventory"
	domainpricing "roamly/internal/domain/pricing"
	domainrange "roamly/internal/domain/shared/daterange"
)

const quoteKey = "pricing.quote"

type QuoteQuery struct {
	UnitID   string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Extras   []string
	Now      time.Time
}

func (q QuoteQuery) Key() string { return quoteKey }

type QuoteHandler struct {
	UoWFactory   uow.UoWFactory
	StoreTimeout time.Duration
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (dto.PriceBreakdown, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PriceBreakdown{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.PriceBreakdown{}, err
	}
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}

	calculator := domainpricing.NewCalculator(unit.Units())
	calculator.StoreTimeout = h.StoreTimeout
	breakdown, err := calculator.Quote(ctx, domainpricing.QuoteRequest{
		UnitID: domaininventory.UnitID(q.UnitID),
		Range:  dr,
		Guests: q.Guests,
		Extras: q.Extras,
		Now:    now,
	})
	if err != nil {
		return dto.PriceBreakdown{}, err
	}
	return dto.MapPriceBreakdown(breakdown), nil
}

var _ queries.Handler[QuoteQuery, dto.PriceBreakdown] = (*QuoteHandler)(nil)
