package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hexhunt/keyminer/internal/config"
	logpkg "github.com/hexhunt/keyminer/internal/logger"
	"github.com/hexhunt/keyminer/pkg/search"
	"github.com/hexhunt/keyminer/pkg/store"
	"github.com/hexhunt/keyminer/pkg/types"
)

// Exit codes, kept distinct so scripts can tell failure modes apart.
const (
	exitOK             = 0
	exitInvalidPattern = 2
	exitInvalidMaxKeys = 3
	exitFatal          = 4
	exitCancelled      = 130
)

var (
	cfg    = config.NewConfig()
	logger = logpkg.New()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "keyminer [pattern]",
		Short: "Ed25519 vanity public key miner",
		Long: `Searches for Ed25519 keypairs whose public key hex encoding starts
with a chosen pattern. Only hex digits 0-9 and A-F are allowed, matched
case-insensitively. Found keys are appended to a results file.`,
		Args: cobra.MaximumNArgs(1),
		Run:  run,
	}

	rootCmd.Flags().IntVarP(&cfg.MaxKeys, "max-keys", "n", 1, "Number of matching keys to find before stopping")
	rootCmd.Flags().IntVarP(&cfg.Workers, "workers", "w", config.DefaultWorkers(), "Number of worker goroutines")
	rootCmd.Flags().StringVarP(&cfg.OutputFile, "output", "o", config.DefaultOutputFile, "File found keys are appended to")
	rootCmd.Flags().IntVarP(&cfg.LogInterval, "log-interval", "i", 5, "Progress logging interval in seconds")
	rootCmd.Flags().BoolVarP(&cfg.Delete, "delete", "d", false, "Securely delete the results file and exit")
	rootCmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	if len(args) == 1 {
		cfg.Pattern = args[0]
	}
	logger.SetVerbose(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(classifyConfigError(err))
	}

	st := store.New(cfg.OutputFile)

	if cfg.Delete {
		if err := st.DeleteAll(); err != nil {
			logger.WithError(err).Error("failed to delete results file")
			os.Exit(exitFatal)
		}
		logger.WithField("file", cfg.OutputFile).Info("results file deleted")
		os.Exit(exitOK)
	}

	printEstimate()

	coord, err := search.New(cfg, st, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitInvalidPattern)
	}

	logger.WithFields(logrus.Fields{
		"pattern":  cfg.Pattern,
		"max_keys": cfg.MaxKeys,
		"workers":  cfg.Workers,
		"output":   cfg.OutputFile,
	}).Info("starting search")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	type runOutcome struct {
		result *types.Result
		err    error
	}
	resultChan := make(chan runOutcome, 1)
	go func() {
		result, err := coord.Run()
		resultChan <- runOutcome{result, err}
	}()

	var outcome runOutcome
	select {
	case outcome = <-resultChan:
	case <-sigChan:
		logger.Info("interrupt received, stopping workers")
		coord.Stop()
		outcome = <-resultChan
	}

	reportResult(outcome.result)

	switch coord.State() {
	case search.Completed:
		os.Exit(exitOK)
	case search.Cancelled:
		os.Exit(exitCancelled)
	default:
		if outcome.err != nil {
			logger.WithError(outcome.err).Error("search failed")
		}
		os.Exit(exitFatal)
	}
}

// printEstimate logs the expected search cost from calibrated
// throughput. Informational only; failures here never stop the run.
func printEstimate() {
	cal, ok := search.LoadCalibration(search.DefaultCalibrationFile)
	if ok {
		logger.WithFields(logrus.Fields{
			"keys_per_sec_per_core": int64(cal.KeysPerSecPerCore),
			"platform":              cal.Platform,
		}).Info("using cached calibration")
	} else {
		logger.WithField("workers", cfg.Workers).Info("running calibration burst")
		var err error
		cal, err = search.Measure(cfg.Workers)
		if err != nil {
			logger.WithError(err).Warn("calibration failed, skipping estimate")
			return
		}
		if err := search.SaveCalibration(search.DefaultCalibrationFile, cal); err != nil {
			logger.WithError(err).Warn("could not cache calibration result")
		}
	}

	mean := search.Estimate(len(cfg.Pattern), cal.Throughput(cfg.Workers))
	p50, p90 := search.Bands(mean)
	logger.WithFields(logrus.Fields{
		"pattern_len":   len(cfg.Pattern),
		"keys_per_sec":  int64(cal.Throughput(cfg.Workers)),
		"expected_time": search.FormatSeconds(mean),
		"p50":           search.FormatSeconds(p50),
		"p90":           search.FormatSeconds(p90),
	}).Info("search estimate")
}

func reportResult(res *types.Result) {
	if res == nil {
		return
	}
	logger.WithFields(logrus.Fields{
		"found":        res.Found,
		"attempts":     search.FormatCount(res.Attempts),
		"duration":     res.Duration.Round(time.Millisecond).String(),
		"keys_per_sec": search.FormatCount(int64(res.Rate())),
	}).Info("search finished")
	if res.Found > 0 {
		logger.WithField("file", cfg.OutputFile).Info("found keys written")
	}
}

// classifyConfigError maps validation failures onto exit codes.
func classifyConfigError(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidMaxKeys):
		return exitInvalidMaxKeys
	case errors.Is(err, config.ErrInvalidLogInterval):
		return exitInvalidMaxKeys
	default:
		return exitInvalidPattern
	}
}
