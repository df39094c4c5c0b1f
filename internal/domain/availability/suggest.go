package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"roamly/internal/domain/inventory"
	"roamly/internal/domain/shared/daterange"
)

const (
	DefaultSearchWindowDays = 90
	DefaultMaxSuggestions   = 3
)

type SuggestRequest struct {
	UnitID   inventory.UnitID
	Original daterange.DateRange
	Quantity int
	Now      time.Time
	// WindowDays bounds how far from the original dates the scan goes.
	WindowDays     int
	MaxSuggestions int
	// IncludeEarlier also scans backward from the original check-in,
	// skipping candidates that would start in the past.
	IncludeEarlier bool
}

// Suggester proposes the nearest fully-available ranges of the same
// length when a requested range is taken. An empty result is a normal
// outcome, not a failure.
type Suggester struct {
	Resolver *Resolver
}

func NewSuggester(resolver *Resolver) *Suggester {
	return &Suggester{Resolver: resolver}
}

func (s *Suggester) Suggest(ctx context.Context, req SuggestRequest) ([]daterange.DateRange, error) {
	if err := req.Original.Validate(); err != nil {
		return nil, err
	}
	window := req.WindowDays
	if window <= 0 {
		window = DefaultSearchWindowDays
	}
	limit := req.MaxSuggestions
	if limit <= 0 {
		limit = DefaultMaxSuggestions
	}

	offsets := make([]int, 0, 2*window)
	for day := 1; day <= window; day++ {
		offsets = append(offsets, day)
		if req.IncludeEarlier {
			offsets = append(offsets, -day)
		}
	}
	// Nearest alternatives first; on equal distance, prefer later dates.
	sort.SliceStable(offsets, func(i, j int) bool {
		di, dj := abs(offsets[i]), abs(offsets[j])
		if di == dj {
			return offsets[i] > offsets[j]
		}
		return di < dj
	})

	today := daterange.Day(req.Now)
	found := make([]daterange.DateRange, 0, limit)
	for _, offset := range offsets {
		candidate := req.Original.Shift(offset)
		if candidate.CheckIn.Before(today) {
			continue
		}
		res, err := s.Resolver.Check(ctx, CheckRequest{
			UnitID:   req.UnitID,
			Range:    candidate,
			Quantity: req.Quantity,
			Now:      req.Now,
		})
		if err != nil {
			if errors.Is(err, ErrPastDate) {
				continue
			}
			return nil, err
		}
		if !res.Available {
			continue
		}
		found = append(found, candidate)
		if len(found) == limit {
			break
		}
	}
	return found, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
