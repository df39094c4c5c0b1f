package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roamly/internal/app/commands"
	"roamly/internal/app/dto"
	"roamly/internal/app/middleware"
	"roamly/internal/app/outbox"
	"roamly/internal/app/uow"
	domainavailability "roamly/internal/domain/availability"
	domainbooking "roamly/internal/domain/booking"
	domaininventory "roamly/internal/domain/inventory"
	domainpricing "roamly/internal/domain/pricing"
	domainrange "roamly/internal/domain/shared/daterange"
)

const commitBookingKey = "booking.commit"

type CommitBookingCommand struct {
	CommandID string
	UnitID    string
	GuestID   string
	CheckIn   time.Time
	CheckOut  time.Time
	Quantity  int
	Guests    int
	Extras    []string
	// Price carries the quote shown to the guest. When nil a fresh
	// breakdown is computed inside the transaction.
	Price           *domainpricing.PriceBreakdown
	Now             time.Time
	IdempotencyKeyV string
}

func (c CommitBookingCommand) Key() string { return commitBookingKey }

func (c CommitBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CommitBookingCommand) ResultPrototype() any { return &CommitBookingResult{} }

type CommitBookingResult struct {
	Booking dto.Booking `json:"booking"`
}

// CommitBookingHandler re-validates availability and persists the booking
// inside a single transaction, serialized per unit so two racing commits
// for the last remaining capacity cannot both succeed.
type CommitBookingHandler struct {
	UoWFactory   uow.UoWFactory
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	StoreTimeout time.Duration
}

func (h *CommitBookingHandler) Handle(ctx context.Context, cmd CommitBookingCommand) (*CommitBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		if injector, ok := unit.(interface {
			InjectContext(context.Context) context.Context
		}); ok {
			ctx = injector.InjectContext(ctx)
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return nil, err
	}
	qty := cmd.Quantity
	if qty == 0 {
		qty = 1
	}

	unitID := domaininventory.UnitID(cmd.UnitID)
	if err := unit.LockUnit(ctx, unitID); err != nil {
		if errors.Is(err, uow.ErrLockTimeout) {
			// Contention is indistinguishable from a lost race; the
			// caller retries or asks for alternatives.
			return nil, &domainbooking.ConflictError{
				UnitID:            unitID,
				Range:             dr,
				RequestedQuantity: qty,
				Reason:            "lock_timeout",
			}
		}
		return nil, err
	}

	resolver := domainavailability.NewResolver(unit.Units(), unit.Reservations(), unit.Blocks())
	resolver.StoreTimeout = h.StoreTimeout
	res, err := resolver.Check(ctx, domainavailability.CheckRequest{
		UnitID:   unitID,
		Range:    dr,
		Quantity: qty,
		Now:      now,
	})
	if err != nil {
		return nil, err
	}
	if !res.Available {
		return nil, domainbooking.NewConflictError(res, qty)
	}

	price, err := h.resolvePrice(ctx, unit, cmd, unitID, dr, now)
	if err != nil {
		return nil, err
	}

	record, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.CommandID),
		UnitID:    unitID,
		GuestID:   cmd.GuestID,
		Range:     dr,
		Quantity:  qty,
		Price:     price,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, record); err != nil {
		return nil, err
	}

	pending := record.PendingEvents()
	record.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CommitBookingResult{Booking: dto.MapBooking(record)}, nil
}

// resolvePrice freezes the breakdown stored on the booking: the caller's
// quote when it matches the requested stay, otherwise a fresh computation.
func (h *CommitBookingHandler) resolvePrice(
	ctx context.Context,
	unit uow.UnitOfWork,
	cmd CommitBookingCommand,
	unitID domaininventory.UnitID,
	dr domainrange.DateRange,
	now time.Time,
) (domainpricing.PriceBreakdown, error) {
	if cmd.Price != nil {
		price := cmd.Price.Copy()
		if err := price.Validate(); err != nil {
			return domainpricing.PriceBreakdown{}, err
		}
		if price.UnitID != unitID || !price.Range.CheckIn.Equal(dr.CheckIn) || !price.Range.CheckOut.Equal(dr.CheckOut) {
			return domainpricing.PriceBreakdown{}, fmt.Errorf("booking: quoted breakdown does not match unit %s and requested range", unitID)
		}
		return price, nil
	}
	calculator := domainpricing.NewCalculator(unit.Units())
	calculator.StoreTimeout = h.StoreTimeout
	return calculator.Quote(ctx, domainpricing.QuoteRequest{
		UnitID: unitID,
		Range:  dr,
		Guests: cmd.Guests,
		Extras: cmd.Extras,
		Now:    now,
	})
}

var _ commands.Handler[CommitBookingCommand, *CommitBookingResult] = (*CommitBookingHandler)(nil)
var _ middleware.IdempotentCommand = CommitBookingCommand{}
