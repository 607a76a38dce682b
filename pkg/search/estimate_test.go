package search

import (
	"math"
	"testing"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name       string
		patternLen int
		keysPerSec float64
		expected   float64
	}{
		{name: "one digit", patternLen: 1, keysPerSec: 16, expected: 1},
		{name: "two digits", patternLen: 2, keysPerSec: 256, expected: 1},
		{name: "four digits", patternLen: 4, keysPerSec: 1000, expected: 65536.0 / 1000},
		{name: "eight digits", patternLen: 8, keysPerSec: 50_000, expected: math.Pow(16, 8) / 50_000},
		{name: "sixteen digits", patternLen: 16, keysPerSec: 1_000_000, expected: math.Pow(16, 16) / 1_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Estimate(tt.patternLen, tt.keysPerSec); got != tt.expected {
				t.Errorf("Estimate(%d, %v) = %v, want %v", tt.patternLen, tt.keysPerSec, got, tt.expected)
			}
		})
	}
}

func TestEstimateZeroThroughput(t *testing.T) {
	if got := Estimate(4, 0); !math.IsInf(got, 1) {
		t.Errorf("Estimate with zero throughput = %v, want +Inf", got)
	}
}

func TestExpectedTrialsMaxPattern(t *testing.T) {
	// 16 hex digits: 16^16 expected candidates.
	want := math.Pow(16, 16)
	if got := ExpectedTrials(16); got != want {
		t.Errorf("ExpectedTrials(16) = %v, want %v", got, want)
	}
}

func TestBands(t *testing.T) {
	p50, p90 := Bands(100)
	if math.Abs(p50-100*math.Ln2) > 1e-9 {
		t.Errorf("p50 = %v, want %v", p50, 100*math.Ln2)
	}
	if math.Abs(p90-100*math.Log(10)) > 1e-9 {
		t.Errorf("p90 = %v, want %v", p90, 100*math.Log(10))
	}
	if p50 >= p90 {
		t.Error("50% bound must come before the 90% bound")
	}
}
