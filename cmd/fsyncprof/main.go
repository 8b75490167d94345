package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fsyncprof/internal/logging"
	"fsyncprof/internal/timeline"
	"fsyncprof/internal/version"
)

const longHelp = `fsyncprof reads a Wine/Proton log captured with +fsync,+microsecs and
writes Chrome trace events describing every fsync wait, the signal that ended
it and NtReadFile calls. The default output is a list of event fragments that
can be appended to a vkd3d-proton queue profile.`

// newRootCmd builds the command tree. Each call returns independent flag
// state.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fsyncprof [flags] <log>",
		Short:         "Convert Wine fsync logs into Chrome trace events",
		Long:          longHelp,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd)
		},
		RunE: runConvert,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "path to fsyncprof.toml (default: nearest one above the working directory)")
	pf.Float64("start", 0, "start of the time window in seconds")
	pf.Float64("duration", 0, "length of the time window in seconds (0 keeps everything)")
	pf.Bool("no-reads", false, "drop NtReadFile events")
	pf.StringSlice("suppress", nil, "drop reads from threads whose label contains any of these markers")
	pf.Int("context", 0, "on a protocol violation, show this many preceding log lines")
	pf.String("ui", "auto", "progress UI mode (auto|on|off)")
	pf.String("log-level", "", "log level (trace|debug|info|warn|error)")
	pf.String("log-format", "console", "log format (console|json)")
	pf.BoolP("verbose", "v", false, "shorthand for --log-level debug")
	pf.BoolP("quiet", "q", false, "suppress the run summary")
	pf.Bool("timings", false, "show timing information")
	pf.String("cpu-profile", "", "write a CPU profile of fsyncprof itself to this file")
	pf.String("mem-profile", "", "write a heap profile of fsyncprof itself to this file")

	addConvertFlags(rootCmd)

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// main runs the root command and exits with status 1 on any error.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(cmd *cobra.Command) error {
	flags := cmd.Flags()
	level, err := flags.GetString("log-level")
	if err != nil {
		return err
	}
	format, err := flags.GetString("log-format")
	if err != nil {
		return err
	}
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return err
	}
	if verbose && !flags.Changed("log-level") {
		level = "debug"
	}
	out := cmd.ErrOrStderr()
	_, err = logging.Configure(logging.Options{
		Level:   level,
		Format:  format,
		Out:     out,
		NoColor: !writerIsTerminal(out),
	})
	if err != nil {
		return err
	}
	log.Debug().Str("version", version.Version).Msg("fsyncprof starting")
	return nil
}

// reportError prints err once. Protocol violations also list the log lines
// that preceded the failing one when --context was given.
func reportError(w io.Writer, err error) {
	label := color.New(color.FgRed, color.Bold).Sprint("error:")
	fmt.Fprintf(w, "%s %v\n", label, err)

	var lineErr *timeline.LineError
	if !errors.As(err, &lineErr) || len(lineErr.Context) == 0 {
		return
	}
	dim := color.New(color.Faint)
	fmt.Fprintln(w, dim.Sprint("preceding lines:"))
	for _, rec := range lineErr.Context {
		fmt.Fprintf(w, "  %s %s\n", dim.Sprintf("%7d |", rec.Line), rec.Text)
	}
	fmt.Fprintf(w, "  %s %s\n", color.New(color.FgRed).Sprintf("%7d >", lineErr.Line), lineErr.Text)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
