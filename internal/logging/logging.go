// Package logging configures the process-wide leveled logger.
package logging

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Level names accepted by --log-level. The original tool exposed a
// verbose level between info and debug; verbose and notice map onto the
// nearest native level here.
var levelNames = map[string]log.Level{
	"debug":   log.DebugLevel,
	"verbose": log.InfoLevel,
	"info":    log.InfoLevel,
	"notice":  log.InfoLevel,
	"warn":    log.WarnLevel,
	"warning": log.WarnLevel,
	"error":   log.ErrorLevel,
}

// ParseLevel maps a level name to a log level, case-insensitively.
func ParseLevel(name string) (log.Level, bool) {
	lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	return lvl, ok
}

// Resolve selects the effective log level. Precedence: a recognized
// explicit level name, then debug, then verbose, then the quiet default.
func Resolve(explicit string, debug, verbose bool) log.Level {
	if lvl, ok := ParseLevel(explicit); ok && explicit != "" {
		return lvl
	}
	if debug {
		return log.DebugLevel
	}
	if verbose {
		return log.InfoLevel
	}
	return log.WarnLevel
}

var setupOnce sync.Once

// Setup builds the run's logger writing to w at the resolved level and
// installs it as the package default. The default is installed exactly
// once per process; later calls still return a correctly leveled logger.
func Setup(w io.Writer, explicit string, debug, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	logger.SetLevel(Resolve(explicit, debug, verbose))

	setupOnce.Do(func() {
		log.SetDefault(logger)
	})

	return logger
}
