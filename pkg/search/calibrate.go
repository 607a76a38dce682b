package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hexhunt/keyminer/internal/keys"
)

// Calibration holds a measured key-generation throughput. Per-core
// speed is stored because generation scales linearly with workers,
// and the platform tag flags stale results after a hardware change.
type Calibration struct {
	KeysPerSecPerCore float64 `json:"keys_per_sec_per_core"`
	Cores             int     `json:"cores_used"`
	Timestamp         int64   `json:"timestamp"`
	Platform          string  `json:"platform"`
}

const (
	// DefaultCalibrationFile caches benchmark results between runs.
	DefaultCalibrationFile = "performance.json"

	// calibrationValidity bounds cache age; thermal state and load
	// drift enough that old numbers mislead.
	calibrationValidity = 12 * time.Hour

	warmupDuration  = time.Second
	measureDuration = 2 * time.Second
)

// Throughput returns total keys/sec for the given worker count.
func (c *Calibration) Throughput(workers int) float64 {
	return c.KeysPerSecPerCore * float64(workers)
}

// LoadCalibration returns a cached measurement if it is fresh and was
// taken on this platform. Any read or decode problem just means
// re-measuring, so it only reports ok=false.
func LoadCalibration(path string) (*Calibration, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var c Calibration
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, false
	}
	if c.Platform != platformInfo() {
		return nil, false
	}
	age := time.Since(time.Unix(c.Timestamp, 0))
	if age < 0 || age > calibrationValidity {
		return nil, false
	}
	return &c, true
}

// SaveCalibration persists the measurement via temp file and rename so
// a crash never leaves a truncated cache.
func SaveCalibration(path string, c *Calibration) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Measure runs a short calibration burst: a warmup to settle CPU
// frequency, then a timed run counting generated keypairs across the
// given number of workers.
func Measure(workers int) (*Calibration, error) {
	if workers < 1 {
		return nil, errors.New("calibration needs at least one worker")
	}

	if _, err := burst(workers, warmupDuration); err != nil {
		return nil, fmt.Errorf("calibration warmup: %w", err)
	}
	generated, err := burst(workers, measureDuration)
	if err != nil {
		return nil, fmt.Errorf("calibration run: %w", err)
	}

	perCore := float64(generated) / measureDuration.Seconds() / float64(workers)
	return &Calibration{
		KeysPerSecPerCore: perCore,
		Cores:             workers,
		Timestamp:         time.Now().Unix(),
		Platform:          platformInfo(),
	}, nil
}

// burst generates keypairs on workers goroutines until the deadline
// and returns the total count. Candidates are wiped like in the real
// search so the measured cost matches it.
func burst(workers int, d time.Duration) (int64, error) {
	var (
		total    atomic.Int64
		firstErr error
		errMu    sync.Mutex
		wg       sync.WaitGroup
	)
	deadline := time.Now().Add(d)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var kp keys.KeyPair
			for time.Now().Before(deadline) {
				if err := keys.Generate(&kp); err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					keys.WipePair(&kp)
					return
				}
				keys.WipePair(&kp)
				total.Add(1)
			}
		}()
	}
	wg.Wait()
	return total.Load(), firstErr
}

func platformInfo() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}
