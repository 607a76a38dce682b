package search

import "math"

// ExpectedTrials returns the expected number of candidates needed to
// hit a prefix of patternLen hex digits: each digit is uniform over 16
// values, so the mean of the geometric distribution is 16^L.
func ExpectedTrials(patternLen int) float64 {
	return math.Pow(16, float64(patternLen))
}

// Estimate returns the expected search time in seconds for a prefix of
// patternLen hex digits at keysPerSec throughput. Advisory only; the
// search itself never consults it.
func Estimate(patternLen int, keysPerSec float64) float64 {
	if keysPerSec <= 0 {
		return math.Inf(1)
	}
	return ExpectedTrials(patternLen) / keysPerSec
}

// Bands converts a mean search time into 50% and 90% confidence
// bounds. The trial count is geometrically distributed, so the
// quantiles are mean*ln(2) and mean*ln(10).
func Bands(meanSeconds float64) (p50, p90 float64) {
	return meanSeconds * math.Ln2, meanSeconds * math.Log(10)
}
