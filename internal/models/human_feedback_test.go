package models

import (
	"math"
	"testing"
)

func TestComputeRating(t *testing.T) {
	f := HumanFeedback{
		LogicPath:     4,
		Information:   3,
		Solution:      2,
		Communication: 1,
		LanguageUsage: 0,
	}
	if got := f.ComputeRating(); got != 10 {
		t.Errorf("ComputeRating() = %d, expected 10", got)
	}
}

func TestNormalizedRating(t *testing.T) {
	tests := []struct {
		name     string
		rating   int
		scheme   string
		expected float64
	}{
		{"graduated max", 20, RatingSchemeGraduated, 5.0},
		{"graduated mid", 10, RatingSchemeGraduated, 2.5},
		{"graduated zero", 0, RatingSchemeGraduated, 0.0},
		{"binary max", 5, RatingSchemeBinary, 5.0},
		{"binary mid", 3, RatingSchemeBinary, 3.0},
		{"unknown scheme treated as graduated", 20, "", 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := HumanFeedback{Rating: tt.rating, RatingScheme: tt.scheme}
			if got := f.NormalizedRating(); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("NormalizedRating() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestMetricDay(t *testing.T) {
	tests := []struct {
		metricDate string
		expected   string
	}{
		{"2025-06-18", "2025-06-18"},
		{"2025-06-18T23:59:00", "2025-06-18"},
		{"2025-06-18 10:30:00+02:00", "2025-06-18"},
		{"", ""},
		{"short", "short"},
	}

	for _, tt := range tests {
		m := ConversationMetric{MetricDate: tt.metricDate}
		if got := m.MetricDay(); got != tt.expected {
			t.Errorf("MetricDay(%q) = %q, expected %q", tt.metricDate, got, tt.expected)
		}
	}
}
