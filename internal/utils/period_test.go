package utils

import (
	"errors"
	"testing"
	"time"
)

func TestMonthRange(t *testing.T) {
	cases := []struct {
		name      string
		period    string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "regular_month",
			period:    "2024-03",
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "leap_february",
			period:    "2024-02",
			wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "december_rolls_to_next_year",
			period:    "2023-12",
			wantStart: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2023, 12, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:    "missing_month",
			period:  "2024",
			wantErr: true,
		},
		{
			name:    "month_out_of_range",
			period:  "2024-13",
			wantErr: true,
		},
		{
			name:    "not_zero_padded",
			period:  "2024-3",
			wantErr: true,
		},
		{
			name:    "full_date",
			period:  "2024-03-01",
			wantErr: true,
		},
		{
			name:    "empty",
			period:  "",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := MonthRange(tc.period)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("MonthRange(%q) expected error, got start=%v end=%v", tc.period, start, end)
				}
				if !errors.Is(err, ErrInvalidPeriod) {
					t.Fatalf("MonthRange(%q) error = %v, want ErrInvalidPeriod", tc.period, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("MonthRange(%q) unexpected error: %v", tc.period, err)
			}
			if !start.Equal(tc.wantStart) {
				t.Fatalf("MonthRange(%q) start = %v, want %v", tc.period, start, tc.wantStart)
			}
			if !end.Equal(tc.wantEnd) {
				t.Fatalf("MonthRange(%q) end = %v, want %v", tc.period, end, tc.wantEnd)
			}
		})
	}
}

func TestPeriodOf(t *testing.T) {
	// Period assignment follows UTC regardless of the timestamp's zone.
	loc := time.FixedZone("EAT", 3*60*60)
	got := PeriodOf(time.Date(2024, 4, 1, 1, 30, 0, 0, loc))
	if got != "2024-03" {
		t.Fatalf("PeriodOf = %q, want %q", got, "2024-03")
	}
}

func TestCurrentPeriod(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	if got := CurrentPeriod(now); got != "2025-01" {
		t.Fatalf("CurrentPeriod = %q, want %q", got, "2025-01")
	}
}
