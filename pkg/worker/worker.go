package worker

import (
	"time"

	"github.com/hexhunt/keyminer/internal/keys"
	"github.com/hexhunt/keyminer/pkg/pattern"
	"github.com/hexhunt/keyminer/pkg/types"
)

// Sink receives accepted matches. Append must be durable before it
// returns; the store satisfies this.
type Sink interface {
	Append(types.FoundKey) error
}

// Worker generates and tests candidates for a single goroutine. The
// candidate buffer is reused across attempts and wiped on every exit
// path so rejected seeds never outlive the attempt that made them.
type Worker struct {
	pattern pattern.Pattern
	stats   *types.Stats
	sink    Sink

	kp keys.KeyPair
}

// New creates a worker bound to the shared stats and sink
func New(p pattern.Pattern, stats *types.Stats, sink Sink) *Worker {
	return &Worker{pattern: p, stats: stats, sink: sink}
}

// Try generates one candidate and tests it against the pattern. On a
// match the record is durably appended before the shared match counter
// moves, so the counter never counts a key the file does not hold.
// The returned record is nil for a rejected candidate.
func (w *Worker) Try() (*types.FoundKey, error) {
	defer keys.WipePair(&w.kp)

	if err := keys.Generate(&w.kp); err != nil {
		return nil, err
	}
	w.stats.Attempts.Add(1)

	if !w.pattern.Matches(w.kp.Public[:]) {
		return nil, nil
	}

	rec := types.FoundKey{
		PrivateHex: w.kp.SeedHex(),
		PublicHex:  w.kp.PublicHex(),
		FoundAt:    time.Now(),
	}
	if err := w.sink.Append(rec); err != nil {
		return nil, err
	}
	w.stats.Matches.Add(1)
	return &rec, nil
}
