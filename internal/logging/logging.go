// Package logging builds the process zerolog logger.
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// New returns a JSON logger on out, or a human-readable console logger on
// out when console is set. Unknown levels fall back to info.
func New(out io.Writer, level string, console bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if console {
		out = zerolog.ConsoleWriter{Out: out, NoColor: true}
	}
	logger := zerolog.New(out).With().Timestamp().Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}
