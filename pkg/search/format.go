package search

import (
	"fmt"
	"math"
)

// FormatCount renders large attempt counts in K/M/B/T units so
// progress lines stay readable.
func FormatCount(n int64) string {
	switch {
	case n < 1_000:
		return fmt.Sprintf("%d", n)
	case n < 1_000_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	case n < 1_000_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n < 1_000_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	default:
		return fmt.Sprintf("%.1fT", float64(n)/1_000_000_000_000)
	}
}

// FormatSeconds renders an estimated duration in the largest sensible
// unit. Absurdly large estimates get called out as such instead of
// printing astronomical year counts.
func FormatSeconds(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds >= 31_536_000_000 {
		return "longer than the age of the universe"
	}
	switch {
	case seconds < 0.01:
		return fmt.Sprintf("%.3f seconds", seconds)
	case seconds < 60:
		return fmt.Sprintf("%.1f seconds", seconds)
	case seconds < 3_600:
		return fmt.Sprintf("%.1f minutes", seconds/60)
	case seconds < 86_400:
		return fmt.Sprintf("%.1f hours", seconds/3_600)
	case seconds < 31_536_000:
		return fmt.Sprintf("%.1f days", seconds/86_400)
	default:
		return fmt.Sprintf("%.1f years", seconds/31_536_000)
	}
}
