// Package observ measures the phases of a conversion run.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one timed step of a run such as opening the log or converting it.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	Lines int // log lines handled during the phase, 0 when not applicable
}

// Timer records phases in the order they were started.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

// NewTimer returns a Timer using the wall clock.
func NewTimer() *Timer { return &Timer{now: time.Now} }

// Begin starts a phase and returns a handle for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End stops the phase. Unknown handles are ignored.
func (t *Timer) End(idx int, note string) {
	t.EndLines(idx, note, 0)
}

// EndLines stops the phase and records how many log lines it handled, which
// the summary turns into a rate.
func (t *Timer) EndLines(idx int, note string, lines int) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
	p.Lines = lines
}

// PhaseReport is a Phase reduced to numbers.
type PhaseReport struct {
	Name        string  `json:"name"`
	DurationMS  float64 `json:"duration_ms"`
	LinesPerSec float64 `json:"lines_per_sec,omitempty"`
	Note        string  `json:"note,omitempty"`
}

// Report is the whole run.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report reduces the recorded phases.
func (t *Timer) Report() Report {
	var r Report
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
		pr := PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
		if p.Lines > 0 && p.Dur > 0 {
			pr.LinesPerSec = float64(p.Lines) / p.Dur.Seconds()
		}
		r.Phases = append(r.Phases, pr)
	}
	if len(r.Phases) > 0 {
		r.TotalMS = millis(total)
	}
	return r
}

// Summary renders the report as an aligned table for the terminal.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-10s %9.2f ms", p.Name, p.DurationMS)
		if p.LinesPerSec > 0 {
			fmt.Fprintf(&sb, "  %.0f lines/s", p.LinesPerSec)
		}
		if p.Note != "" {
			fmt.Fprintf(&sb, "  (%s)", p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-10s %9.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
