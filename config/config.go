// Package config gathers the settings of a simulation run from .env files,
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/tlbsim/mem/trace"
	"github.com/sarchlab/tlbsim/mem/vm/tlb"
)

// Environment variables read by Load.
const (
	EnvTLBCapacity = "TLBSIM_TLB_CAPACITY"
	EnvPageSize    = "TLBSIM_PAGE_SIZE"
	EnvNumFrames   = "TLBSIM_NUM_FRAMES"
	EnvTrace       = "TLBSIM_TRACE"
	EnvRecord      = "TLBSIM_RECORD"
	EnvMonitorPort = "TLBSIM_MONITOR_PORT"
	EnvOpenBrowser = "TLBSIM_OPEN_BROWSER"
	EnvLenient     = "TLBSIM_LENIENT"
	EnvVerbose     = "TLBSIM_VERBOSE"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = "4KB"

// Config holds the settings of a simulation run.
type Config struct {
	TLBCapacity int
	PageSize    uint64
	NumFrames   uint64
	TracePath   string

	// RecordPath is the SQLite database that run results are written to.
	// Empty disables recording.
	RecordPath string

	// MonitorPort starts the monitoring server when it is not 0.
	MonitorPort int
	OpenBrowser bool
	Lenient     bool
	Verbose     bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	pageSize, _ := trace.ParseSize(DefaultPageSize)

	return Config{
		TLBCapacity: tlb.DefaultCapacity,
		PageSize:    pageSize,
		TracePath:   "trace.txt",
	}
}

// Load reads the given .env files, if they exist, and applies the environment
// variables on top of the default configuration. Variables that are already
// set in the environment take precedence over the .env files.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	c := Default()

	err := c.applyEnv()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvTLBCapacity); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTLBCapacity, err)
		}

		c.TLBCapacity = n
	}

	if v, ok := os.LookupEnv(EnvPageSize); ok {
		n, err := trace.ParseSize(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}

		c.PageSize = n
	}

	if v, ok := os.LookupEnv(EnvNumFrames); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvNumFrames, err)
		}

		c.NumFrames = n
	}

	if v, ok := os.LookupEnv(EnvTrace); ok {
		c.TracePath = v
	}

	if v, ok := os.LookupEnv(EnvRecord); ok {
		c.RecordPath = v
	}

	if v, ok := os.LookupEnv(EnvMonitorPort); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMonitorPort, err)
		}

		c.MonitorPort = n
	}

	for name, field := range map[string]*bool{
		EnvOpenBrowser: &c.OpenBrowser,
		EnvLenient:     &c.Lenient,
		EnvVerbose:     &c.Verbose,
	} {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}

		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		*field = b
	}

	return nil
}

// Validate checks that the configuration can drive a simulation.
func (c Config) Validate() error {
	if c.TLBCapacity <= 0 {
		return fmt.Errorf("TLB capacity must be positive, got %d",
			c.TLBCapacity)
	}

	if c.PageSize == 0 || c.PageSize&(c.PageSize-1) != 0 {
		return fmt.Errorf("page size must be a power of 2, got %d",
			c.PageSize)
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		return fmt.Errorf("invalid monitor port %d", c.MonitorPort)
	}

	return nil
}
