package search

import (
	"math"
	"testing"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n        int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1.0K"},
		{1_500, "1.5K"},
		{1_000_000, "1.0M"},
		{2_500_000, "2.5M"},
		{1_000_000_000, "1.0B"},
		{1_500_000_000_000, "1.5T"},
	}

	for _, tt := range tests {
		if got := FormatCount(tt.n); got != tt.expected {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.n, got, tt.expected)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0.005, "0.005 seconds"},
		{30, "30.0 seconds"},
		{120, "2.0 minutes"},
		{3_661, "1.0 hours"},
		{86_401, "1.0 days"},
		{31_536_001, "1.0 years"},
		{31_536_000_000, "longer than the age of the universe"},
	}

	for _, tt := range tests {
		if got := FormatSeconds(tt.seconds); got != tt.expected {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestFormatSecondsNonFinite(t *testing.T) {
	want := "longer than the age of the universe"
	if got := FormatSeconds(math.Inf(1)); got != want {
		t.Errorf("FormatSeconds(+Inf) = %q, want %q", got, want)
	}
	if got := FormatSeconds(math.NaN()); got != want {
		t.Errorf("FormatSeconds(NaN) = %q, want %q", got, want)
	}
}
