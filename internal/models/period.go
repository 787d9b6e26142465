package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod indicates a year/month pair outside the calendar.
var ErrInvalidPeriod = errors.New("invalid period")

// Period identifies one calendar month of comments.
type Period struct {
	Year  int
	Month int
}

// NewPeriod returns a validated period.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}

	return p, nil
}

// ParsePeriod parses a "YYYY-MM" string.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}

	return Period{Year: t.Year(), Month: int(t.Month())}, nil
}

// Validate checks the month range.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}

	if p.Year < 1970 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}

	return nil
}

// Bounds returns the first instant of the month and of the following month, in UTC.
func (p Period) Bounds() (time.Time, time.Time) {
	start := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	next := p.Next()
	end := time.Date(next.Year, time.Month(next.Month), 1, 0, 0, 0, 0, time.UTC)

	return start, end
}

// Next returns the following month, rolling December into January.
func (p Period) Next() Period {
	if p.Month == 12 {
		return Period{Year: p.Year + 1, Month: 1}
	}

	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}

	return p.Month < other.Month
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%d-%02d", p.Year, p.Month)
}

// PeriodRange lists every month from first to last inclusive.
func PeriodRange(first, last Period) ([]Period, error) {
	if err := first.Validate(); err != nil {
		return nil, err
	}

	if err := last.Validate(); err != nil {
		return nil, err
	}

	if last.Before(first) {
		return nil, fmt.Errorf("%w: %s is after %s", ErrInvalidPeriod, first, last)
	}

	var periods []Period
	for p := first; !last.Before(p); p = p.Next() {
		periods = append(periods, p)
	}

	return periods, nil
}

// ParseRange parses "YYYY-MM" bounds into the months between them. An empty
// to means the single month from.
func ParseRange(from, to string) ([]Period, error) {
	first, err := ParsePeriod(from)
	if err != nil {
		return nil, err
	}

	last := first
	if to != "" {
		if last, err = ParsePeriod(to); err != nil {
			return nil, err
		}
	}

	return PeriodRange(first, last)
}
