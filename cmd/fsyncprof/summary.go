package main

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fsyncprof/internal/timeline"
)

func printSummary(out io.Writer, name string, stats timeline.Stats) {
	p := message.NewPrinter(language.English)
	p.Fprintf(out, "%s: %d lines, %d matched\n", name, stats.Lines, stats.Matched)
	p.Fprintf(out, "  waits %d, timeouts %d, signals %d, reads %d\n",
		stats.Waits, stats.Timeouts, stats.Signals, stats.Reads)
	p.Fprintf(out, "  emitted %d, outside window %d, suppressed %d\n",
		stats.Emitted, stats.Filtered, stats.Suppressed)
	if stats.OpenWaits > 0 || stats.PendingSignals > 0 {
		p.Fprintf(out, "  open waits %d, unclaimed signals %d\n", stats.OpenWaits, stats.PendingSignals)
	}
}
