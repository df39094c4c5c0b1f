package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
)

// DateRange represents a half-open interval [checkIn, checkOut)
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Day truncates a timestamp to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

// EachNight walks each night's date in order. Stop early by returning false.
// Walking twice yields the same sequence.
func (dr DateRange) EachNight(fn func(night time.Time) bool) {
	for night := dr.CheckIn; night.Before(dr.CheckOut); night = night.AddDate(0, 0, 1) {
		if !fn(night) {
			return
		}
	}
}

// Shift moves both endpoints by the given number of days.
func (dr DateRange) Shift(days int) DateRange {
	return DateRange{
		CheckIn:  dr.CheckIn.AddDate(0, 0, days),
		CheckOut: dr.CheckOut.AddDate(0, 0, days),
	}
}

// Overlaps uses half-open semantics: a checkout that lands on another
// range's checkin is a legal turnover, not an overlap.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) Contains(other DateRange) bool {
	return (dr.CheckIn.Before(other.CheckIn) || dr.CheckIn.Equal(other.CheckIn)) &&
		(dr.CheckOut.After(other.CheckOut) || dr.CheckOut.Equal(other.CheckOut))
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.CheckOut.Equal(other.CheckIn) || dr.CheckIn.Equal(other.CheckOut)
}

// EntirelyBefore reports whether the whole range lies before the given date.
func (dr DateRange) EntirelyBefore(date time.Time) bool {
	return !dr.CheckOut.After(Day(date))
}

func (dr DateRange) Merge(other DateRange) (DateRange, bool) {
	if !(dr.Overlaps(other) || dr.Adjacent(other)) {
		return DateRange{}, false
	}
	start := dr.CheckIn
	if other.CheckIn.Before(start) {
		start = other.CheckIn
	}
	end := dr.CheckOut
	if other.CheckOut.After(end) {
		end = other.CheckOut
	}
	return DateRange{CheckIn: start, CheckOut: end}, true
}
