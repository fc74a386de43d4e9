package utils

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrInvalidPeriod is returned when a period string is not in YYYY-MM form.
var ErrInvalidPeriod = errors.New("invalid period")

var periodRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidPeriod reports whether s is a well-formed YYYY-MM period.
func ValidPeriod(s string) bool {
	return periodRe.MatchString(s)
}

// MonthRange resolves a YYYY-MM period to its inclusive UTC time range:
// the first instant of the month through the last instant of the month.
func MonthRange(period string) (time.Time, time.Time, error) {
	if !ValidPeriod(period) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	start, err := time.ParseInLocation("2006-01", period, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end, nil
}

// PeriodOf formats a point in time as its containing YYYY-MM period (UTC).
func PeriodOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod(now time.Time) string {
	return PeriodOf(now)
}
