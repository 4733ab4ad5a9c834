// Package config loads the planner's runtime settings from environment
// variables (and an optional .env file), in the same shape bundoc's own
// pkg/config used: a prefix-scoped viper instance unmarshalled into a
// plain struct.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/ogkla/mongo/internal/planner"
)

// Config holds every setting the planner and storage layer read at
// startup. Zero values are replaced by Defaults() before use.
type Config struct {
	// MaxProjectionSize bounds a FieldRangeVector's cross-product size.
	MaxProjectionSize int `mapstructure:"max_projection_size"`
	// PatternCacheSize bounds the supplemental plan cache's entry count.
	PatternCacheSize int `mapstructure:"pattern_cache_size"`
	// DataDir is the directory holding the database's data file.
	DataDir string `mapstructure:"data_dir"`
	// BufferPoolCapacity is the number of pages the buffer pool keeps
	// resident in memory.
	BufferPoolCapacity int `mapstructure:"buffer_pool_capacity"`
}

// Defaults returns the settings used when no environment override is
// present.
func Defaults() Config {
	return Config{
		MaxProjectionSize:  1_000_000,
		PatternCacheSize:   1024,
		DataDir:            "./data",
		BufferPoolCapacity: 256,
	}
}

// Load reads prefix-scoped environment variables (and an optional .env
// file in the working directory) into a Config seeded with Defaults().
// prefix is upper-cased and underscore-joined to each field's mapstructure
// tag, e.g. prefix "DOCPLAN" overrides max_projection_size via
// DOCPLAN_MAX_PROJECTION_SIZE.
func Load(prefix string) (Config, error) {
	cfg := Defaults()

	v := viper.New()
	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("config: reading .env: %w", err)
		}
	}

	prefixUpper := strings.ToUpper(prefix) + "_"
	for _, envStr := range os.Environ() {
		key, value, ok := strings.Cut(envStr, "=")
		if !ok || !strings.HasPrefix(key, prefixUpper) {
			continue
		}
		propKey := strings.ToLower(strings.TrimPrefix(key, prefixUpper))
		if n, err := strconv.Atoi(value); err == nil {
			v.Set(propKey, n)
		} else {
			v.Set(propKey, value)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// Apply installs cfg's planner-facing settings into the planner package's
// mutable guards. Storage-facing settings (DataDir, BufferPoolCapacity)
// and PatternCacheSize are not applied here.
func Apply(cfg Config) {
	if cfg.MaxProjectionSize > 0 {
		planner.MaxProjectionSize = cfg.MaxProjectionSize
	}
}
