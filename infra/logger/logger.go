package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	corelogger "github.com/kilianp07/procsched/core/logger"
	"github.com/rs/zerolog"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}
func (n NopLogger) With(map[string]any) Logger  { return n }

var (
	formatMu sync.RWMutex
	format   string
)

// Configure sets the global level and output format. format is "json",
// "console" or empty to pick console when APP_ENV=dev.
func Configure(level, fmtName string) error {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	switch fmtName {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log format %q", fmtName)
	}
	zerolog.SetGlobalLevel(lvl)
	formatMu.Lock()
	format = fmtName
	formatMu.Unlock()
	return nil
}

func consoleOutput() bool {
	formatMu.RLock()
	f := format
	formatMu.RUnlock()
	if f == "" {
		return strings.ToLower(os.Getenv("APP_ENV")) == "dev"
	}
	return f == "console"
}

// New returns a Logger for the given component writing to stdout.
func New(component string) Logger {
	return NewZerologLogger(component)
}
