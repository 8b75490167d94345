package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fsyncprof/internal/logsrc"
	"fsyncprof/internal/observ"
	"fsyncprof/internal/timeline"
	"fsyncprof/internal/traceevent"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <log>",
		Short: "Validate a log without writing events",
		Long: `check runs the full conversion and discards the events. It fails on the
same protocol violations as a conversion and lists the waits still open when
the log ends.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
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
	openIdx := timer.Begin("open")
	src, err := logsrc.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()
	timer.End(openIdx, src.Compression.String())

	engine := timeline.New(traceevent.Discard, s.engineOptions())
	checkIdx := timer.Begin("check")
	err = runEngine(cmd, run, src, engine)
	pending := engine.Finish()
	timer.EndLines(checkIdx, "", engine.Stats().Lines)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stats := engine.Stats()
	fmt.Fprintf(out, "%s: ok\n", src.Name)
	for _, line := range describePending(engine, pending) {
		fmt.Fprintf(out, "open wait %s\n", line)
	}
	if stats.PendingSignals > 0 {
		fmt.Fprintf(out, "%d signaled handles were never waited on\n", stats.PendingSignals)
	}
	finishRun(cmd, run, timer, src.Name, stats)
	return nil
}
