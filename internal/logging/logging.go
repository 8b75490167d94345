// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options selects the log destination and verbosity.
type Options struct {
	Level   string    // zerolog level name; "" means warn
	Format  string    // "console" or "json"
	Out     io.Writer // defaults to os.Stderr
	NoColor bool
}

// LocalWriter returns a human-readable console writer.
func LocalWriter(out io.Writer, noColor bool) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: "15:04:05.000",
	}
}

// Configure builds a logger from opts, installs it as log.Logger and returns
// it.
func Configure(opts Options) (zerolog.Logger, error) {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var w io.Writer
	switch strings.ToLower(opts.Format) {
	case "", "console":
		w = LocalWriter(out, opts.NoColor)
	case "json":
		zerolog.TimeFieldFormat = time.RFC3339Nano
		w = out
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q (expected console|json)", opts.Format)
	}

	levelName := opts.Level
	if levelName == "" {
		levelName = "warn"
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	logger := zerolog.New(w).With().Timestamp().Logger().Level(level)
	log.Logger = logger
	return logger, nil
}
