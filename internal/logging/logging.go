// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// New returns a logger on stderr tagged with runID. A terminal gets the
// human-readable console format, anything else gets JSON lines.
func New(level, runID string) (zerolog.Logger, error) {
	console := term.IsTerminal(int(os.Stderr.Fd()))
	return NewWithWriter(os.Stderr, console, level, runID)
}

// NewWithWriter returns a logger writing to w
func NewWithWriter(w io.Writer, console bool, level, runID string) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(lvl).With().Timestamp()
	if runID != "" {
		ctx = ctx.Str("run_id", runID)
	}
	logger := ctx.Logger()
	log.Logger = logger
	return logger, nil
}

// ParseLevel accepts debug, info, warn and error. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch level {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
