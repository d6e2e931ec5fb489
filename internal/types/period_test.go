package types

import (
	"testing"
	"time"
)

func TestCalculatePeriod_Daily(t *testing.T) {
	ref := time.Date(2025, time.March, 14, 15, 9, 26, 0, time.UTC)
	p := CalculatePeriod(BillingFrequencyDaily, ref)

	want := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)
	if !p.Start.Equal(want) {
		t.Errorf("start = %v, want %v", p.Start, want)
	}
	if p.End.Day() != 14 || p.End.Hour() != 23 || p.End.Minute() != 59 || p.End.Second() != 59 {
		t.Errorf("end = %v, want end of March 14", p.End)
	}
}

func TestCalculatePeriod_Weekly(t *testing.T) {
	tests := []struct {
		name      string
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "midweek",
			ref:       time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC), // Wednesday
			wantStart: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),  // Monday
			wantEnd:   time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC),  // Sunday
		},
		{
			name:      "monday maps to same week",
			ref:       time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "sunday belongs to the preceding monday",
			ref:       time.Date(2025, time.March, 16, 20, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "week spanning a month boundary",
			ref:       time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.April, 6, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CalculatePeriod(BillingFrequencyWeekly, tt.ref)
			if !p.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", p.Start, tt.wantStart)
			}
			if p.End.Year() != tt.wantEnd.Year() || p.End.Month() != tt.wantEnd.Month() || p.End.Day() != tt.wantEnd.Day() {
				t.Errorf("end = %v, want same day as %v", p.End, tt.wantEnd)
			}
			if p.End.Sub(p.Start) >= 7*24*time.Hour {
				t.Errorf("window longer than 7 days: %v", p.End.Sub(p.Start))
			}
		})
	}
}

func TestCalculatePeriod_Monthly(t *testing.T) {
	tests := []struct {
		name    string
		ref     time.Time
		wantDay int
	}{
		{name: "31 day month", ref: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), wantDay: 31},
		{name: "leap february", ref: time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC), wantDay: 29},
		{name: "non leap february", ref: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), wantDay: 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CalculatePeriod(BillingFrequencyMonthly, tt.ref)
			if p.Start.Day() != 1 {
				t.Errorf("start day = %d, want 1", p.Start.Day())
			}
			if p.End.Day() != tt.wantDay {
				t.Errorf("end day = %d, want %d", p.End.Day(), tt.wantDay)
			}
			if p.Start.Month() != tt.ref.Month() || p.End.Month() != tt.ref.Month() {
				t.Errorf("period %v..%v escaped month %v", p.Start, p.End, tt.ref.Month())
			}
		})
	}
}

// The reference instant must always fall inside its own period, for every
// frequency and across day, week, month and year boundaries.
func TestCalculatePeriod_ContainsReference(t *testing.T) {
	frequencies := []BillingFrequency{
		BillingFrequencyDaily,
		BillingFrequencyWeekly,
		BillingFrequencyMonthly,
	}

	ref := time.Date(2024, time.December, 25, 3, 30, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		for _, f := range frequencies {
			p := CalculatePeriod(f, ref)
			if !p.Contains(ref) {
				t.Errorf("%s period %v..%v does not contain %v", f, p.Start, p.End, ref)
			}
		}
		ref = ref.Add(17 * time.Hour)
	}
}

func TestCalculatePeriod_Deterministic(t *testing.T) {
	ref := time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC)
	for _, f := range []BillingFrequency{BillingFrequencyDaily, BillingFrequencyWeekly, BillingFrequencyMonthly} {
		a := CalculatePeriod(f, ref)
		b := CalculatePeriod(f, ref)
		if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
			t.Errorf("%s not deterministic: %v vs %v", f, a, b)
		}
	}
}

func TestCalculatePeriod_NonUTCReference(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)
	// 01:30 IST on March 15 is still March 14 in UTC
	ref := time.Date(2025, time.March, 15, 1, 30, 0, 0, ist)
	p := CalculatePeriod(BillingFrequencyDaily, ref)
	if p.Start.Day() != 14 {
		t.Errorf("start day = %d, want 14 (UTC day of reference)", p.Start.Day())
	}
}
