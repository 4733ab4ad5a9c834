// Package logging provides the planner's structured logger: a
// package-level *zap.Logger, initialized once and safe for concurrent use
// from every package that needs to report a warning or error without
// threading a logger through every constructor.
package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu  sync.Mutex
	log *zap.Logger
)

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	log = l
}

// L returns the current logger.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return log
}

// SetDevelopment swaps in a human-readable console logger, for use by the
// CLI where structured JSON output would be noise.
func SetDevelopment() error {
	l, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	mu.Lock()
	log = l
	mu.Unlock()
	return nil
}

// Sync flushes any buffered log entries; callers should defer it from
// main.
func Sync() error {
	return L().Sync()
}
