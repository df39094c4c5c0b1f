package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"roamly/internal/domain/shared/events"
	"roamly/internal/domain/shared/money"
)

var (
	ErrUnitNotFound   = errors.New("inventory: unit not found")
	ErrCapacity       = errors.New("inventory: capacity must be at least 1")
	ErrNightlyRate    = errors.New("inventory: nightly rate must be non-negative")
	ErrDiscountRange  = errors.New("inventory: discount percent must be between 0 and 100")
	ErrTaxRange       = errors.New("inventory: tax percent must be non-negative")
	ErrInvalidState   = errors.New("inventory: invalid state transition")
	ErrTitleRequired  = errors.New("inventory: title is required")
	ErrFeeAmount      = errors.New("inventory: fee amounts cannot be negative")
	ErrCurrencyNeeded = errors.New("inventory: currency is required")
)

type UnitID string
type OwnerID string

// Vertical names the marketplace segment a unit belongs to.
type Vertical string

const (
	VerticalProperty Vertical = "PROPERTY"
	VerticalVehicle  Vertical = "VEHICLE"
	VerticalTour     Vertical = "TOUR"
)

type UnitState string

const (
	UnitDraft    UnitState = "DRAFT"
	UnitActive   UnitState = "ACTIVE"
	UnitUnlisted UnitState = "UNLISTED"
)

// FeeBasis tags how a fee entry scales: charged once per booking, or
// multiplied by the number of days in the stay.
type FeeBasis string

const (
	FeePerStay FeeBasis = "PER_STAY"
	FeePerDay  FeeBasis = "PER_DAY"
)

// Fee is one named entry of a unit's fee schedule. Optional fees are only
// charged when the caller selects them by name (e.g. an extra driver).
type Fee struct {
	Name     string
	Basis    FeeBasis
	Amount   money.Money
	Taxable  bool
	Optional bool
}

// Unit is the smallest reservable entity: a room type with several
// interchangeable rooms, or a single vehicle with capacity 1.
type Unit struct {
	ID         UnitID
	Owner      OwnerID
	Title      string
	Vertical   Vertical
	State      UnitState
	Capacity   int
	Currency   string
	BaseRate   money.Money
	// WeekendRate overrides BaseRate on weekend nights when non-zero.
	WeekendRate money.Money
	// WeekendDays defaults to Friday and Saturday when empty.
	WeekendDays     []time.Weekday
	DiscountPercent float64
	TaxPercent      float64
	PromoLabel      string
	Fees            []Fee
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	events.EventRecorder
}

// Repository reads and writes units. Reads always reflect the latest
// committed state; nothing is cached outside the surrounding transaction.
type Repository interface {
	ByID(ctx context.Context, id UnitID) (*Unit, error)
	Save(ctx context.Context, unit *Unit) error
}

type CreateUnitParams struct {
	ID              UnitID
	Owner           OwnerID
	Title           string
	Vertical        Vertical
	Capacity        int
	Currency        string
	BaseRate        int64
	WeekendRate     int64
	WeekendDays     []time.Weekday
	DiscountPercent float64
	TaxPercent      float64
	PromoLabel      string
	Fees            []Fee
	Now             time.Time
}

func NewUnit(params CreateUnitParams) (*Unit, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("inventory: id is required")
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, errors.New("inventory: owner is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.Capacity < 1 {
		return nil, ErrCapacity
	}
	if params.BaseRate < 0 || params.WeekendRate < 0 {
		return nil, ErrNightlyRate
	}
	if params.DiscountPercent < 0 || params.DiscountPercent > 100 {
		return nil, ErrDiscountRange
	}
	if params.TaxPercent < 0 {
		return nil, ErrTaxRange
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		return nil, ErrCurrencyNeeded
	}
	base, err := money.New(params.BaseRate, currency)
	if err != nil {
		return nil, err
	}
	weekend := money.Money{}
	if params.WeekendRate > 0 {
		weekend, err = money.New(params.WeekendRate, currency)
		if err != nil {
			return nil, err
		}
	}
	fees := make([]Fee, 0, len(params.Fees))
	for _, fee := range params.Fees {
		if fee.Amount.Amount < 0 {
			return nil, ErrFeeAmount
		}
		if fee.Amount.Currency != currency {
			return nil, money.ErrCurrencyMismatch
		}
		if fee.Basis == "" {
			fee.Basis = FeePerStay
		}
		fees = append(fees, fee)
	}
	vertical := params.Vertical
	if vertical == "" {
		vertical = VerticalProperty
	}

	now := params.Now.UTC()
	unit := &Unit{
		ID:              params.ID,
		Owner:           params.Owner,
		Title:           strings.TrimSpace(params.Title),
		Vertical:        vertical,
		State:           UnitDraft,
		Capacity:        params.Capacity,
		Currency:        currency,
		BaseRate:        base,
		WeekendRate:     weekend,
		WeekendDays:     append([]time.Weekday(nil), params.WeekendDays...),
		DiscountPercent: params.DiscountPercent,
		TaxPercent:      params.TaxPercent,
		PromoLabel:      strings.TrimSpace(params.PromoLabel),
		Fees:            fees,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	unit.Record(UnitCreated{UnitID: unit.ID, Owner: unit.Owner, At: now})
	return unit, nil
}

// Bookable reports whether the engine may take reservations for the unit.
func (u *Unit) Bookable() bool {
	return u.State == UnitActive
}

func (u *Unit) Activate(now time.Time) error {
	if u.State == UnitActive {
		return nil
	}
	u.State = UnitActive
	u.UpdatedAt = now.UTC()
	u.Record(UnitActivated{UnitID: u.ID, At: u.UpdatedAt})
	return nil
}

func (u *Unit) Unlist(now time.Time, reason string) error {
	if u.State != UnitActive {
		return ErrInvalidState
	}
	u.State = UnitUnlisted
	u.UpdatedAt = now.UTC()
	u.Record(UnitDelisted{UnitID: u.ID, Reason: reason, At: u.UpdatedAt})
	return nil
}

// IsWeekend reports whether the given night falls on one of the unit's
// weekend days. Providers that never configured weekend days get the
// Friday/Saturday default.
func (u *Unit) IsWeekend(night time.Time) bool {
	days := u.WeekendDays
	if len(days) == 0 {
		days = []time.Weekday{time.Friday, time.Saturday}
	}
	wd := night.UTC().Weekday()
	for _, d := range days {
		if wd == d {
			return true
		}
	}
	return false
}

// NightlyRate selects the rate actually charged for a night before any
// discount: the weekend override when configured and applicable, else base.
func (u *Unit) NightlyRate(night time.Time) money.Money {
	if !u.WeekendRate.IsZero() && u.IsWeekend(night) {
		return u.WeekendRate
	}
	return u.BaseRate
}
