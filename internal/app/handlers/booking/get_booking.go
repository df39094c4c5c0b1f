package booking

import (
	"context"
	"time"

	"roamly/internal/app/dto"
	"roamly/internal/app/handlers/support"
	"roamly/internal/app/queries"
	"roamly/internal/app/uow"
)

const getBookingKey = "booking.get"

type GetBookingQuery struct {
	Reference string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory   uow.UoWFactory
	StoreTimeout time.Duration
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Booking{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	if h.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.StoreTimeout)
		defer cancel()
	}
	record, err := unit.Bookings().ByReference(ctx, q.Reference)
	if err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(record), nil
}

var _ queries.Handler[GetBookingQuery, dto.Booking] = (*GetBookingHandler)(nil)
