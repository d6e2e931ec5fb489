package types

import (
	"time"

	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/samber/lo"
)

// BillingFrequency is the cadence of a billing or remittance cycle
type BillingFrequency string

const (
	BillingFrequencyDaily   BillingFrequency = "DAILY"
	BillingFrequencyWeekly  BillingFrequency = "WEEKLY"
	BillingFrequencyMonthly BillingFrequency = "MONTHLY"
)

func (f BillingFrequency) String() string {
	return string(f)
}

func (f BillingFrequency) Validate() error {
	allowed := []BillingFrequency{
		BillingFrequencyDaily,
		BillingFrequencyWeekly,
		BillingFrequencyMonthly,
	}
	if !lo.Contains(allowed, f) {
		return ierr.NewError("invalid billing frequency").
			WithHint("Please provide a valid billing frequency").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Period is a closed time window [Start, End] covering one billing cycle
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the period, boundaries included
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// CalculatePeriod maps a frequency and a reference instant to the calendar
// period containing it, in UTC. DAILY covers the single day, WEEKLY the ISO
// week (Monday through Sunday), MONTHLY the calendar month. Deterministic for
// identical inputs; frequencies are validated at the edges, so an unknown
// value falls back to the daily window rather than erroring here.
func CalculatePeriod(frequency BillingFrequency, ref time.Time) Period {
	ref = ref.UTC()
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	switch frequency {
	case BillingFrequencyWeekly:
		// time.Weekday counts Sunday as 0; anchor to Monday
		offset := (int(dayStart.Weekday()) + 6) % 7
		start := dayStart.AddDate(0, 0, -offset)
		return Period{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}
	case BillingFrequencyMonthly:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Period{Start: start, End: endOfDay(start.AddDate(0, 1, -1))}
	default:
		return Period{Start: dayStart, End: endOfDay(dayStart)}
	}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
