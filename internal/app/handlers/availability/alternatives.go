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

const suggestAlternativesKey = "availability.alternatives"

type SuggestAlternativesQuery struct {
	UnitID         string
	CheckIn        time.Time
	CheckOut       time.Time
	Quantity       int
	WindowDays     int
	MaxSuggestions int
	IncludeEarlier bool
	Now            time.Time
}

func (q SuggestAlternativesQuery) Key() string { return suggestAlternativesKey }

type SuggestAlternativesHandler struct {
	UoWFactory   uow.UoWFactory
	StoreTimeout time.Duration
	// Defaults apply when the query leaves the knobs unset.
	DefaultWindowDays     int
	DefaultMaxSuggestions int
}

// Handle scans for the nearest open ranges of the same length. No open
// range inside the window is a normal empty result, not an error.
func (h *SuggestAlternativesHandler) Handle(ctx context.Context, q SuggestAlternativesQuery) (dto.Alternatives, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Alternatives{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.Alternatives{}, err
	}
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}

	resolver := domainavailability.NewResolver(unit.Units(), unit.Reservations(), unit.Blocks())
	resolver.StoreTimeout = h.StoreTimeout
	windowDays := q.WindowDays
	if windowDays == 0 {
		windowDays = h.DefaultWindowDays
	}
	maxSuggestions := q.MaxSuggestions
	if maxSuggestions == 0 {
		maxSuggestions = h.DefaultMaxSuggestions
	}
	suggester := domainavailability.NewSuggester(resolver)
	options, err := suggester.Suggest(ctx, domainavailability.SuggestRequest{
		UnitID:         domaininventory.UnitID(q.UnitID),
		Original:       dr,
		Quantity:       q.Quantity,
		Now:            now,
		WindowDays:     windowDays,
		MaxSuggestions: maxSuggestions,
		IncludeEarlier: q.IncludeEarlier,
	})
	if err != nil {
		return dto.Alternatives{}, err
	}
	return dto.MapAlternatives(q.UnitID, dr, options), nil
}

var _ queries.Handler[SuggestAlternativesQuery, dto.Alternatives] = (*SuggestAlternativesHandler)(nil)
