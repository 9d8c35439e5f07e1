// Package config provides configuration loading for the transform buffer.
// It defines the per-frame retention window option and the flag/env-var
// parsing CLI binaries use to load it, following the precedence CLI flags
// > environment variables > defaults.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix is the prefix for all environment variables the buffer's CLI
// tooling reads.
const EnvPrefix = "TFBUF_"

// DefaultCacheTime is the retention window used when none is configured.
// Ten seconds comfortably covers typical sensor-to-consumer latency without
// holding unbounded history.
const DefaultCacheTime = 10 * time.Second

// BufferConfig aggregates the transform buffer's configuration. It has one
// meaningful field today, but is kept as a struct loaded through the same
// flag/env pipeline as a larger config would use, so adding a second option
// later doesn't change the shape of the API.
type BufferConfig struct {
	// CacheTimeNS is the per-frame retention window, in nanoseconds. Zero is
	// permitted and yields an effectively point-in-time cache (only the
	// newest sample is retained).
	CacheTimeNS uint64
}

// CacheTime returns CacheTimeNS as a time.Duration, for callers that prefer
// to work in Go's native duration type.
func (c BufferConfig) CacheTime() time.Duration {
	return time.Duration(c.CacheTimeNS)
}

// Default returns the default BufferConfig.
func Default() BufferConfig {
	return BufferConfig{CacheTimeNS: uint64(DefaultCacheTime.Nanoseconds())}
}

// RegisterFlags registers the buffer's flags on fs, defaulting to cfg's
// current values. Call ParseEnvOverrides after fs.Parse to apply
// environment variable overrides for flags the caller didn't set
// explicitly.
func RegisterFlags(fs *flag.FlagSet, cfg *BufferConfig) {
	fs.Uint64Var(&cfg.CacheTimeNS, "cache-time-ns", cfg.CacheTimeNS,
		"per-frame retention window in nanoseconds (0 for point-in-time only)")
}

// ParseEnvOverrides applies TFBUF_-prefixed environment variable overrides
// to any flag the caller did not explicitly set on the command line, so
// explicit flags always beat environment variables, which always beat
// defaults.
func ParseEnvOverrides(cfg *BufferConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "cache-time-ns") {
		if v, ok := getEnvUint64("CACHE_TIME_NS"); ok {
			cfg.CacheTimeNS = v
		}
	}
}

// Load parses args (typically os.Args[1:]) into a BufferConfig, applying
// environment variable overrides for unset flags and validating the
// result.
func Load(args []string) (BufferConfig, error) {
	cfg := Default()
	fs := flag.NewFlagSet("tfbuffer", flag.ContinueOnError)
	RegisterFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return BufferConfig{}, err
	}
	ParseEnvOverrides(&cfg, fs)
	if err := Validate(cfg); err != nil {
		return BufferConfig{}, err
	}
	return cfg, nil
}

// Validate reports whether cfg is usable. CacheTimeNS has no invalid range
// (0 is a legitimate point-in-time configuration), so Validate exists
// mainly as an extension point and a place future options get checked.
func Validate(cfg BufferConfig) error {
	_ = cfg
	return nil
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func getEnvUint64(key string) (uint64, bool) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return 0, false
	}
	parsed, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// String implements fmt.Stringer for diagnostic logging.
func (c BufferConfig) String() string {
	return fmt.Sprintf("BufferConfig{CacheTimeNS: %d}", c.CacheTimeNS)
}
