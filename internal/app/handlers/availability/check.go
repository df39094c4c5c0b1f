package availability

import (
	"context"
	"time"

	"roamly/internal/app/dto"
	"roamly/internal/app/handlers/support"
	"roamly/internal/app/queries"
	"roamly/internal/app/uow"
	domainavailability "roamly/internal/domain/availability"
	domaininventory "roamly/internal/domain/inventory"
	domainrange "roamly/internal/domain/shared/daterange"
)

const checkAvailabilityKey = "availability.check"

type CheckAvailabilityQuery struct {
	UnitID   string
	CheckIn  time.Time
	CheckOut time.Time
	Quantity int
	Now      time.Time
	// AllowPast opts into historical queries for admin reporting.
	AllowPast bool
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type CheckAvailabilityHandler struct {
	UoWFactory   uow.UoWFactory
	StoreTimeout time.Duration
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.AvailabilityResult, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AvailabilityResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.AvailabilityResult{}, err
	}
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}

	resolver := domainavailability.NewResolver(unit.Units(), unit.Reservations(), unit.Blocks())
	resolver.StoreTimeout = h.StoreTimeout
	res, err := resolver.Check(ctx, domainavailability.CheckRequest{
		UnitID:    domaininventory.UnitID(q.UnitID),
		Range:     dr,
		Quantity:  q.Quantity,
		Now:       now,
		AllowPast: q.AllowPast,
	})
	if err != nil {
		return dto.AvailabilityResult{}, err
	}
	return dto.MapAvailability(res), nil
}

var _ queries.Handler[CheckAvailabilityQuery, dto.AvailabilityResult] = (*CheckAvailabilityHandler)(nil)
