package search

import (
	"encoding/hex"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexhunt/keyminer/internal/config"
	"github.com/hexhunt/keyminer/internal/keys"
	"github.com/hexhunt/keyminer/internal/logger"
	"github.com/hexhunt/keyminer/pkg/store"
	"github.com/hexhunt/keyminer/pkg/types"
)

func testConfig(pattern string, maxKeys, workers int) *config.Config {
	return &config.Config{
		Pattern:     pattern,
		MaxKeys:     maxKeys,
		Workers:     workers,
		LogInterval: 60,
	}
}

func quietLogger() *logger.Logger {
	return logger.NewWriter(io.Discard)
}

func TestRunCompletesQuota(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "keys.txt"))
	cfg := testConfig("A", 1, 2)

	coord, err := New(cfg, st, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, Idle, coord.State())

	res, err := coord.Run()
	require.NoError(t, err)
	assert.Equal(t, Completed, coord.State())

	records, err := st.Records()
	require.NoError(t, err)

	// Quota 1 with 2 workers: at least one record, bounded overshoot.
	assert.GreaterOrEqual(t, len(records), 1)
	assert.LessOrEqual(t, len(records), cfg.MaxKeys+cfg.Workers-1)
	assert.Equal(t, int64(len(records)), res.Found)
	assert.GreaterOrEqual(t, res.Attempts, res.Found)

	for _, rec := range records {
		assert.True(t, strings.HasPrefix(rec.PublicHex, "A"),
			"public key %s must start with the pattern", rec.PublicHex)

		seed, err := hex.DecodeString(rec.PrivateHex)
		require.NoError(t, err)
		pub, err := hex.DecodeString(rec.PublicHex)
		require.NoError(t, err)
		assert.True(t, keys.VerifyDerivation(seed, pub))
	}
}

func TestRunQuotaBounds(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "keys.txt"))
	cfg := testConfig("B", 3, 4)

	coord, err := New(cfg, st, quietLogger())
	require.NoError(t, err)

	res, err := coord.Run()
	require.NoError(t, err)
	assert.Equal(t, Completed, coord.State())

	records, err := st.Records()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(records), cfg.MaxKeys, "run must reach the quota")
	assert.LessOrEqual(t, len(records), cfg.MaxKeys+cfg.Workers-1, "overshoot is bounded by workers-1")
	assert.Equal(t, int64(len(records)), res.Found, "counter and file never diverge")
}

func TestRunCaseInsensitivePattern(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "keys.txt"))
	cfg := testConfig("d", 1, 2)

	coord, err := New(cfg, st, quietLogger())
	require.NoError(t, err)
	_, err = coord.Run()
	require.NoError(t, err)

	records, err := st.Records()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.True(t, strings.HasPrefix(records[0].PublicHex, "D"))
}

func TestStopCancelsRun(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "keys.txt"))
	// 16 digits is unreachable in test time, so only Stop ends the run.
	cfg := testConfig("FFFFFFFFFFFFFFFF", 1, 2)

	coord, err := New(cfg, st, quietLogger())
	require.NoError(t, err)

	done := make(chan struct{})
	var res *types.Result
	var runErr error
	go func() {
		res, runErr = coord.Run()
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	coord.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}

	assert.NoError(t, runErr, "cancellation is not an error")
	assert.Equal(t, Cancelled, coord.State())
	assert.Greater(t, res.Attempts, int64(0), "workers ran before the stop")

	records, err := st.Records()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStopIsIdempotent(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "keys.txt"))
	cfg := testConfig("FFFFFFFFFFFFFFFF", 1, 1)

	coord, err := New(cfg, st, quietLogger())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		_, _ = coord.Run()
		close(done)
	}()

	coord.Stop()
	coord.Stop()
	<-done
	assert.Equal(t, Cancelled, coord.State())
}

type failingSink struct{ err error }

func (f *failingSink) Append(types.FoundKey) error { return f.err }

func TestStoreFailureFailsRun(t *testing.T) {
	sinkErr := errors.New("write failed")
	// Single-digit pattern so a match (and thus the failing append)
	// arrives quickly on every worker.
	cfg := testConfig("0", 1, 2)

	coord, err := New(cfg, &failingSink{err: sinkErr}, quietLogger())
	require.NoError(t, err)

	res, err := coord.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, sinkErr)
	assert.Equal(t, Failed, coord.State())
	assert.Equal(t, int64(0), res.Found, "failed appends never count")
}

func TestRunOnlyOnce(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "keys.txt"))
	cfg := testConfig("A", 1, 1)

	coord, err := New(cfg, st, quietLogger())
	require.NoError(t, err)

	_, err = coord.Run()
	require.NoError(t, err)

	_, err = coord.Run()
	assert.ErrorIs(t, err, ErrAlreadyRan)
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	st := store.New(filepath.Join(t.TempDir(), "keys.txt"))

	_, err := New(testConfig("NOPE", 1, 1), st, quietLogger())
	require.Error(t, err)

	// A rejected pattern must leave no trace: no workers, no writes.
	records, recErr := st.Records()
	require.NoError(t, recErr)
	assert.Empty(t, records)
}
