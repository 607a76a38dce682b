package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/hexhunt/keyminer/pkg/pattern"
)

// Errors
var (
	ErrNoPattern          = errors.New("must supply a target pattern (or --delete)")
	ErrDeleteWithPattern  = errors.New("--delete cannot be combined with a pattern")
	ErrInvalidMaxKeys     = errors.New("--max-keys must be a positive integer")
	ErrInvalidLogInterval = errors.New("--log-interval must be a positive integer")
)

// DefaultOutputFile is where found keys are appended unless overridden.
const DefaultOutputFile = "keyminer-keys.txt"

// Config holds the application configuration
type Config struct {
	Pattern     string
	MaxKeys     int
	Workers     int
	OutputFile  string
	LogInterval int // Logging interval in seconds
	Verbose     bool
	Delete      bool
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		MaxKeys:     1,
		Workers:     DefaultWorkers(),
		OutputFile:  DefaultOutputFile,
		LogInterval: 5,
	}
}

// DefaultWorkers reserves one core for the rest of the system, never
// going below a single worker.
func DefaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	return n
}

// Validate validates the configuration. A delete run takes no pattern;
// a search run requires a valid one.
func (c *Config) Validate() error {
	if c.Delete {
		if c.Pattern != "" {
			return ErrDeleteWithPattern
		}
		return nil
	}
	if c.Pattern == "" {
		return ErrNoPattern
	}
	if _, err := pattern.Compile(c.Pattern); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
	}
	if c.MaxKeys < 1 {
		return ErrInvalidMaxKeys
	}
	if c.LogInterval < 1 {
		return ErrInvalidLogInterval
	}
	if c.Workers < 1 {
		c.Workers = DefaultWorkers()
	}
	return nil
}
