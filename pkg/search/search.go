package search

import (
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hexhunt/keyminer/internal/config"
	"github.com/hexhunt/keyminer/internal/keys"
	"github.com/hexhunt/keyminer/internal/logger"
	"github.com/hexhunt/keyminer/pkg/pattern"
	"github.com/hexhunt/keyminer/pkg/types"
	"github.com/hexhunt/keyminer/pkg/worker"
)

// State is the coordinator lifecycle state
type State int32

const (
	Idle State = iota
	Running
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ErrAlreadyRan is returned when Run is called on a used coordinator.
var ErrAlreadyRan = errors.New("coordinator can only run once")

// Coordinator owns the worker pool for one search run. Workers poll
// the shared match counter between candidates, so up to workers-1
// extra matches past the quota can land; that overshoot is accepted
// in exchange for a lock-free hot path.
type Coordinator struct {
	cfg  *config.Config
	pat  pattern.Pattern
	sink worker.Sink
	log  *logger.Logger

	stats types.Stats
	state atomic.Int32

	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup

	errMu  sync.Mutex
	runErr error
}

// New builds a coordinator from a validated config. The pattern is
// compiled here so an invalid one fails before any worker starts.
func New(cfg *config.Config, sink worker.Sink, log *logger.Logger) (*Coordinator, error) {
	pat, err := pattern.Compile(cfg.Pattern)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		cfg:  cfg,
		pat:  pat,
		sink: sink,
		log:  log,
		done: make(chan struct{}),
	}, nil
}

// State returns the current lifecycle state
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Stats exposes the shared counters, for progress reporting.
func (c *Coordinator) Stats() *types.Stats {
	return &c.stats
}

// Run executes the search and blocks until every worker has exited.
// It returns the run summary; the error is non-nil only when the run
// failed (generation or storage), never for cancellation.
func (c *Coordinator) Run() (*types.Result, error) {
	if !c.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return nil, ErrAlreadyRan
	}
	start := time.Now()

	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.runWorker(i)
	}

	stopProgress := make(chan struct{})
	go c.progressLoop(start, stopProgress)

	c.wg.Wait()
	close(stopProgress)

	// A full pool that drained without failing or being cancelled
	// means the quota was reached.
	c.state.CompareAndSwap(int32(Running), int32(Completed))

	res := &types.Result{
		Found:    c.stats.Matches.Load(),
		Attempts: c.stats.Attempts.Load(),
		Duration: time.Since(start),
	}

	c.errMu.Lock()
	err := c.runErr
	c.errMu.Unlock()
	return res, err
}

// Stop cancels a running search. Workers finish their current
// candidate and exit; matches already stored stay stored. Safe to
// call more than once.
func (c *Coordinator) Stop() {
	c.state.CompareAndSwap(int32(Running), int32(Cancelled))
	c.once.Do(func() { close(c.done) })
}

// fail records the first fatal error and tears the pool down. A
// degraded pool is never kept running; one worker's failure cancels
// the rest.
func (c *Coordinator) fail(err error) {
	c.errMu.Lock()
	if c.runErr == nil {
		c.runErr = err
	}
	c.errMu.Unlock()
	c.state.CompareAndSwap(int32(Running), int32(Failed))
	c.once.Do(func() { close(c.done) })
}

// quotaReached checks the shared counter against the configured quota.
func (c *Coordinator) quotaReached() bool {
	return c.stats.Matches.Load() >= int64(c.cfg.MaxKeys)
}

func (c *Coordinator) runWorker(id int) {
	defer c.wg.Done()

	w := worker.New(c.pat, &c.stats, c.sink)
	c.log.WithField("worker", id).Debug("worker started")

	for {
		select {
		case <-c.done:
			return
		default:
		}
		if c.quotaReached() {
			c.once.Do(func() { close(c.done) })
			return
		}

		rec, err := w.Try()
		if err != nil {
			c.log.WithField("worker", id).WithError(err).Error("worker aborting")
			c.fail(err)
			return
		}
		if rec == nil {
			continue
		}

		c.log.WithFields(logrus.Fields{
			"worker":      id,
			"public_key":  rec.PublicHex,
			"fingerprint": fingerprintOfHex(rec.PublicHex),
			"matches":     c.stats.Matches.Load(),
		}).Info("found matching key")

		if c.quotaReached() {
			c.once.Do(func() { close(c.done) })
			return
		}
	}
}

// progressLoop logs attempt and match counts at the configured
// interval until the run ends.
func (c *Coordinator) progressLoop(start time.Time, stop chan struct{}) {
	interval := time.Duration(c.cfg.LogInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			attempts := c.stats.Attempts.Load()
			elapsed := time.Since(start).Seconds()
			rate := 0.0
			if elapsed > 0 {
				rate = float64(attempts) / elapsed
			}
			c.log.WithFields(logrus.Fields{
				"attempts": FormatCount(attempts),
				"matches":  c.stats.Matches.Load(),
				"keys/sec": FormatCount(int64(rate)),
				"running":  time.Since(start).Round(time.Second).String(),
			}).Info("progress")
		case <-stop:
			return
		}
	}
}

func fingerprintOfHex(pubHex string) string {
	pub, err := hex.DecodeString(pubHex)
	if err != nil {
		return ""
	}
	return keys.Fingerprint(pub)
}
