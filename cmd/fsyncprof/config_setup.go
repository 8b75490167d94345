package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fsyncprof/internal/config"
	"fsyncprof/internal/fsynclog"
	"fsyncprof/internal/timeline"
	"fsyncprof/internal/traceevent"
)

// settings is the merged view of fsyncprof.toml and the command line.
type settings struct {
	window    timeline.Window
	buckets   timeline.Buckets
	skipReads bool
	suppress  []string
	format    traceevent.Format
	context   int
	source    string // config file path, if any
}

// engineOptions converts settings into timeline options.
func (s settings) engineOptions() timeline.Options {
	logger := log.Logger
	return timeline.Options{
		Window:          s.window,
		Buckets:         s.buckets,
		SkipReads:       s.skipReads,
		SuppressMarkers: s.suppress,
		Context:         s.context,
		Logger:          &logger,
	}
}

// fingerprint identifies the settings that change which events a log
// produces. The output format is not part of it.
func (s settings) fingerprint() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(s.window.Start, 10))
	sb.WriteByte('/')
	sb.WriteString(strconv.FormatInt(s.window.End, 10))
	sb.WriteByte('|')
	sb.WriteString(s.buckets.Wait)
	sb.WriteByte('|')
	sb.WriteString(s.buckets.Signal)
	sb.WriteByte('|')
	sb.WriteString(s.buckets.Read)
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatBool(s.skipReads))
	sb.WriteByte('|')
	sb.WriteString(strings.Join(s.suppress, "\x00"))
	return sb.String()
}

// loadSettings reads fsyncprof.toml and lets explicitly set flags override
// it.
func loadSettings(cmd *cobra.Command) (settings, error) {
	flags := cmd.Flags()
	explicit, err := flags.GetString("config")
	if err != nil {
		return settings{}, err
	}
	cfg, err := config.Discover(explicit, ".")
	if err != nil {
		return settings{}, err
	}

	var file config.File
	s := settings{buckets: timeline.DefaultBuckets()}
	if cfg != nil {
		file = cfg.File
		s.source = cfg.Path
		log.Debug().Str("path", cfg.Path).Msg("loaded config")
	}

	start, err := pickFloat(cmd, cfg, "start", file.Window.Start, "window", "start")
	if err != nil {
		return settings{}, err
	}
	duration, err := pickFloat(cmd, cfg, "duration", file.Window.Duration, "window", "duration")
	if err != nil {
		return settings{}, err
	}
	if start < 0 || duration < 0 {
		return settings{}, fmt.Errorf("--start and --duration must not be negative")
	}
	s.window = timeline.NewWindow(fsynclog.SecondsToMicros(start), fsynclog.SecondsToMicros(duration))

	if file.Buckets.Wait != "" {
		s.buckets.Wait = file.Buckets.Wait
	}
	if file.Buckets.Signal != "" {
		s.buckets.Signal = file.Buckets.Signal
	}
	if file.Buckets.Read != "" {
		s.buckets.Read = file.Buckets.Read
	}

	if file.Reads.Enabled != nil {
		s.skipReads = !*file.Reads.Enabled
	}
	if flags.Changed("no-reads") {
		if s.skipReads, err = flags.GetBool("no-reads"); err != nil {
			return settings{}, err
		}
	}
	if cfg.IsDefined("reads", "suppress") {
		s.suppress = append([]string{}, file.Reads.Suppress...)
	}
	if flags.Changed("suppress") {
		if s.suppress, err = flags.GetStringSlice("suppress"); err != nil {
			return settings{}, err
		}
	}

	if s.context, err = flags.GetInt("context"); err != nil {
		return settings{}, err
	}
	if s.context < 0 {
		return settings{}, fmt.Errorf("--context must not be negative")
	}

	formatName := file.Output.Format
	if f := flags.Lookup("format"); f != nil && (f.Changed || formatName == "") {
		formatName = f.Value.String()
	}
	if s.format, err = traceevent.ParseFormat(formatName); err != nil {
		return settings{}, err
	}
	return s, nil
}

func pickFloat(cmd *cobra.Command, cfg *config.Loaded, flag string, fileValue float64, key ...string) (float64, error) {
	if cmd.Flags().Changed(flag) || !cfg.IsDefined(key...) {
		return cmd.Flags().GetFloat64(flag)
	}
	return fileValue, nil
}
