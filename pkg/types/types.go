package types

import (
	"sync/atomic"
	"time"
)

// FoundKey represents a keypair accepted by the pattern matcher.
// Immutable once created; ownership passes to the result store.
type FoundKey struct {
	PrivateHex string
	PublicHex  string
	FoundAt    time.Time
}

// Stats is the shared coordination state for one search run.
// Atomics keep the hot path lock-free; the matches counter is only
// incremented after the corresponding record is durably stored, so it
// never runs ahead of the file.
type Stats struct {
	Attempts atomic.Int64
	Matches  atomic.Int64
}

// Result summarizes a finished search run
type Result struct {
	Found    int64
	Attempts int64
	Duration time.Duration
}

// Rate returns keys tested per second, guarding against a zero duration.
func (r *Result) Rate() float64 {
	if r.Duration.Seconds() <= 0 {
		return 0
	}
	return float64(r.Attempts) / r.Duration.Seconds()
}
