package observ

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerReport(t *testing.T) {
	clock := time.Unix(0, 0)
	timer := NewTimer()
	timer.now = func() time.Time { return clock }

	open := timer.Begin("open")
	clock = clock.Add(2 * time.Millisecond)
	timer.End(open, "zstd")
	convert := timer.Begin("convert")
	clock = clock.Add(500 * time.Millisecond)
	timer.EndLines(convert, "", 1000)
	timer.End(42, "ignored")

	report := timer.Report()
	require.Equal(t, 502.0, report.TotalMS)
	require.Equal(t, []PhaseReport{
		{Name: "open", DurationMS: 2, Note: "zstd"},
		{Name: "convert", DurationMS: 500, LinesPerSec: 2000},
	}, report.Phases)

	summary := timer.Summary()
	require.Contains(t, summary, "(zstd)")
	require.Contains(t, summary, "2000 lines/s")
	require.Contains(t, summary, "502.00 ms")
}

func TestEmptyTimer(t *testing.T) {
	require.Equal(t, Report{}, NewTimer().Report())
	require.Contains(t, NewTimer().Summary(), "total")
}
