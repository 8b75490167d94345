package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fsyncprof/internal/cache"
	"fsyncprof/internal/logsrc"
	"fsyncprof/internal/observ"
	"fsyncprof/internal/timeline"
	"fsyncprof/internal/traceevent"
)

const cacheApp = "fsyncprof"

func addConvertFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "fragments", "output format (fragments|document|ndjson|msgpack)")
	cmd.Flags().StringP("output", "o", "", "write events to this file instead of stdout")
	cmd.Flags().Bool("append", false, "append to --output instead of truncating it")
	cmd.Flags().Bool("cache", false, "reuse events from earlier runs over the same log and options")
	cmd.Flags().String("cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/fsyncprof)")
}

// convertFlags holds the flags only the conversion command has.
type convertFlags struct {
	output    string
	appendOut bool
	useCache  bool
	cacheDir  string
}

func readConvertFlags(cmd *cobra.Command) (convertFlags, error) {
	var cf convertFlags
	var err error
	flags := cmd.Flags()
	if cf.output, err = flags.GetString("output"); err != nil {
		return cf, err
	}
	if cf.appendOut, err = flags.GetBool("append"); err != nil {
		return cf, err
	}
	if cf.useCache, err = flags.GetBool("cache"); err != nil {
		return cf, err
	}
	if cf.cacheDir, err = flags.GetString("cache-dir"); err != nil {
		return cf, err
	}
	return cf, nil
}

func runConvert(cmd *cobra.Command, args []string) (err error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	cf, err := readConvertFlags(cmd)
	if err != nil {
		return err
	}
	if cf.appendOut && cf.output == "" {
		return errors.New("--append requires --output")
	}
	if cf.appendOut && !appendable(s.format) {
		return fmt.Errorf("--append cannot be used with --format %s", s.format)
	}
	run, err := readRunFlags(cmd)
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	timer := observ.NewTimer()
	logPath := args[0]

	openIdx := timer.Begin("open")
	src, err := logsrc.Open(logPath)
	if err != nil {
		return err
	}
	defer src.Close()
	timer.End(openIdx, src.Compression.String())

	out, closeOut, err := openOutput(cmd.OutOrStdout(), cf.output, cf.appendOut)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeOut(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", closeErr)
		}
	}()

	stream, err := traceevent.NewStreamWriter(out, s.format)
	if err != nil {
		return err
	}

	diskCache, key := openRunCache(cf, logPath, src, s)
	if diskCache != nil {
		var payload cache.Payload
		hit, getErr := diskCache.Get(key, &payload)
		if getErr != nil {
			log.Warn().Err(getErr).Msg("ignoring unreadable cache entry")
		}
		if hit {
			log.Debug().Str("key", key.String()).Int("events", len(payload.Events)).Msg("cache hit")
			replayIdx := timer.Begin("replay")
			replayErr := traceevent.Replay(payload.Events, stream)
			if closeErr := stream.Close(); replayErr == nil {
				replayErr = closeErr
			}
			timer.End(replayIdx, "cached")
			if replayErr != nil {
				return fmt.Errorf("failed to write events: %w", replayErr)
			}
			for _, p := range payload.Pending {
				log.Warn().Str("wait", p).Msg("wait still open at end of log")
			}
			finishRun(cmd, run, timer, src.Name, payload.Stats)
			return nil
		}
	}

	var sink traceevent.Sink = stream
	var collected *traceevent.Collector
	if diskCache != nil {
		collected = &traceevent.Collector{}
		sink = traceevent.NewMultiSink(stream, collected)
	}
	engine := timeline.New(sink, s.engineOptions())

	convertIdx := timer.Begin("convert")
	runErr := runEngine(cmd, run, src, engine)
	pending := engine.Finish()
	timer.EndLines(convertIdx, "", engine.Stats().Lines)

	// The footer is written even after a violation so that the events
	// already emitted form a valid document.
	flushIdx := timer.Begin("flush")
	closeErr := sink.Close()
	timer.End(flushIdx, s.format.String())
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write events: %w", closeErr)
	}

	stats := engine.Stats()
	if diskCache != nil {
		payload := &cache.Payload{
			Source:  src.Name,
			Options: s.fingerprint(),
			Created: time.Now(),
			Events:  collected.Events,
			Stats:   stats,
			Pending: describePending(engine, pending),
		}
		if putErr := diskCache.Put(key, payload); putErr != nil {
			log.Warn().Err(putErr).Msg("failed to store run in cache")
		}
	}
	finishRun(cmd, run, timer, src.Name, stats)
	return nil
}

// runFlags are the presentation flags shared by every engine command.
type runFlags struct {
	ui      uiMode
	quiet   bool
	timings bool
}

func readRunFlags(cmd *cobra.Command) (runFlags, error) {
	var rf runFlags
	flags := cmd.Flags()
	mode, err := flags.GetString("ui")
	if err != nil {
		return rf, err
	}
	if rf.ui, err = readUIMode(mode); err != nil {
		return rf, err
	}
	if rf.quiet, err = flags.GetBool("quiet"); err != nil {
		return rf, err
	}
	if rf.timings, err = flags.GetBool("timings"); err != nil {
		return rf, err
	}
	return rf, nil
}

// runEngine feeds src through engine, drawing a progress view when enabled.
func runEngine(cmd *cobra.Command, run runFlags, src *logsrc.Source, engine *timeline.Engine) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	errOut := cmd.ErrOrStderr()
	if run.quiet || !shouldUseTUI(run.ui, errOut) {
		return timeline.Run(ctx, src, engine, timeline.RunOptions{})
	}

	// Progress is measured against the decompressed stream, so the total is
	// only known for plain files.
	var total int64
	if src.Compression == logsrc.CompressionNone {
		total = src.Size
	}
	job := func(ctx context.Context, progress func(timeline.Stats)) error {
		return timeline.Run(ctx, src, engine, timeline.RunOptions{Progress: progress})
	}
	return runWithUI(ctx, errOut, filepath.Base(src.Name), total, src.Name == "<stdin>", job)
}

func finishRun(cmd *cobra.Command, run runFlags, timer *observ.Timer, name string, stats timeline.Stats) {
	if !run.quiet {
		printSummary(cmd.ErrOrStderr(), name, stats)
	}
	if run.timings {
		printTimings(cmd.ErrOrStderr(), timer)
	}
}

// openRunCache returns the cache to use for this run, or nil. Only regular
// files can be cached, because a stream has no identity to key on.
func openRunCache(cf convertFlags, logPath string, src *logsrc.Source, s settings) (*cache.DiskCache, cache.Key) {
	if !cf.useCache || logPath == "-" {
		return nil, cache.Key{}
	}
	abs, err := filepath.Abs(logPath)
	if err != nil {
		return nil, cache.Key{}
	}
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return nil, cache.Key{}
	}

	var dc *cache.DiskCache
	if cf.cacheDir != "" {
		dc, err = cache.OpenDir(cf.cacheDir)
	} else {
		dc, err = cache.Open(cacheApp)
	}
	if err != nil {
		log.Warn().Err(err).Msg("cache disabled")
		return nil, cache.Key{}
	}
	log.Debug().Str("dir", dc.Dir()).Str("source", src.Name).Msg("using cache")
	return dc, cache.KeyFor(abs, info.Size(), info.ModTime(), s.fingerprint())
}

func describePending(engine *timeline.Engine, pending []timeline.PendingWait) []string {
	if len(pending) == 0 {
		return nil
	}
	out := make([]string, 0, len(pending))
	for _, p := range pending {
		out = append(out, fmt.Sprintf("%s: %s since %d us", engine.ThreadLabel(p.TID), p.Wait, p.Wait.Start))
	}
	return out
}

func appendable(f traceevent.Format) bool {
	return f == traceevent.FormatFragments || f == traceevent.FormatNDJSON || f == traceevent.FormatMsgpack
}

// openOutput returns stdout when path is empty or "-", otherwise the file at
// path, truncated unless appendOut is set.
func openOutput(stdout io.Writer, path string, appendOut bool) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendOut {
		flag = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open output: %w", err)
	}
	return f, f.Close, nil
}
