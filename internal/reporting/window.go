package reporting

import (
	"errors"
	"time"
)

// ErrUnknownPeriod is returned for a period keyword outside month/quarter/year.
var ErrUnknownPeriod = errors.New("reporting: unknown period")

// Period selects the aggregation window size.
type Period string

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// ParsePeriod validates a period keyword. Empty defaults to month.
func ParsePeriod(value string) (Period, error) {
	switch Period(value) {
	case "":
		return PeriodMonth, nil
	case PeriodMonth, PeriodQuarter, PeriodYear:
		return Period(value), nil
	default:
		return "", ErrUnknownPeriod
	}
}

// Window is the closed date range [Start, Now] scoping a report.
type Window struct {
	Start time.Time
	Now   time.Time
}

// NewWindow computes the window start for a period relative to now.
// Month starts at the first day of the current month, quarter at the
// first day of the month two months back, year at January 1st.
func NewWindow(period Period, now time.Time) Window {
	now = now.UTC()
	var start time.Time
	switch period {
	case PeriodQuarter:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -2, 0)
	case PeriodYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return Window{Start: start, Now: now}
}
