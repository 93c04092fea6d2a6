package services

import (
	"testing"
	"time"
)

// Wednesday 2025-06-18 in a fixed non-UTC zone.
var testNow = time.Date(2025, 6, 18, 15, 30, 0, 0, time.FixedZone("CEST", 2*3600))

func TestResolveDateRange_Presets(t *testing.T) {
	tests := []struct {
		preset DatePreset
		start  string
		end    string
	}{
		{PresetToday, "2025-06-18", "2025-06-18"},
		{PresetYesterday, "2025-06-17", "2025-06-17"},
		{PresetThisWeek, "2025-06-16", "2025-06-18"},
		{PresetLastWeek, "2025-06-09", "2025-06-15"},
		{PresetThisMonth, "2025-06-01", "2025-06-18"},
		{PresetLastMonth, "2025-05-01", "2025-05-31"},
		{PresetThisYear, "2025-01-01", "2025-06-18"},
		{PresetLastYear, "2024-01-01", "2024-12-31"},
		{PresetLast7Days, "2025-06-12", "2025-06-18"},
		{PresetLast30Days, "2025-05-20", "2025-06-18"},
		{PresetLast90Days, "2025-03-21", "2025-06-18"},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			rng := ResolveDateRange(tt.preset, "", "", testNow)
			if rng.Start != tt.start || rng.End != tt.end {
				t.Errorf("ResolveDateRange(%s) = [%s, %s], expected [%s, %s]",
					tt.preset, rng.Start, rng.End, tt.start, tt.end)
			}
		})
	}
}

func TestResolveDateRange_WeekStartsMonday(t *testing.T) {
	// Sunday belongs to the week beginning the previous Monday.
	sunday := time.Date(2025, 6, 22, 12, 0, 0, 0, time.UTC)
	rng := ResolveDateRange(PresetThisWeek, "", "", sunday)
	if rng.Start != "2025-06-16" {
		t.Errorf("week containing a Sunday should start 2025-06-16, got %s", rng.Start)
	}
}

func TestResolveDateRange_Custom(t *testing.T) {
	rng := ResolveDateRange(PresetCustom, "2025-01-01", "2025-01-31", testNow)
	if rng.Start != "2025-01-01" || rng.End != "2025-01-31" {
		t.Errorf("custom range = [%s, %s]", rng.Start, rng.End)
	}

	open := ResolveDateRange(PresetCustom, "", "", testNow)
	if !open.IsOpen() {
		t.Error("custom range without bounds should be open")
	}
}

func TestResolveDateRange_AllAndUnknown(t *testing.T) {
	for _, preset := range []DatePreset{PresetAll, "", "bogus"} {
		rng := ResolveDateRange(preset, "", "", testNow)
		if !rng.IsOpen() {
			t.Errorf("preset %q should yield an open range, got [%s, %s]", preset, rng.Start, rng.End)
		}
	}
}

func TestDateRange_Contains(t *testing.T) {
	rng := DateRange{Start: "2025-06-01", End: "2025-06-15"}

	tests := []struct {
		day      string
		expected bool
	}{
		{"2025-06-01", true},  // inclusive start
		{"2025-06-15", true},  // inclusive end
		{"2025-06-10", true},
		{"2025-05-31", false},
		{"2025-06-16", false},
	}
	for _, tt := range tests {
		if got := rng.Contains(tt.day); got != tt.expected {
			t.Errorf("Contains(%s) = %v, expected %v", tt.day, got, tt.expected)
		}
	}
}

func TestDateRange_ContainsOpenSides(t *testing.T) {
	noStart := DateRange{End: "2025-06-15"}
	if !noStart.Contains("1999-01-01") {
		t.Error("open start should admit any earlier day")
	}
	noEnd := DateRange{Start: "2025-06-01"}
	if !noEnd.Contains("2099-12-31") {
		t.Error("open end should admit any later day")
	}
}
