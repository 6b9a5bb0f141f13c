// Package logging sets up the zerolog logger shared by the server and the
// batch commands. Console output when attached to a terminal, JSON otherwise.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New builds the process logger. Level comes from FLOWDESK_LOG_LEVEL
// (debug, info, warn, error); default info.
func New() zerolog.Logger {
	level := parseLevel(os.Getenv("FLOWDESK_LOG_LEVEL"))

	var logger zerolog.Logger
	if isatty.IsTerminal(os.Stderr.Fd()) {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		logger = zerolog.New(out)
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
