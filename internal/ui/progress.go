package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fsyncprof/internal/timeline"
)

type progressModel struct {
	title   string
	total   int64 // bytes; 0 when unknown
	updates <-chan timeline.Stats
	spinner spinner.Model
	prog    progress.Model
	stats   timeline.Stats
	width   int
	done    bool
	stopped bool // user pressed ctrl+c
	printer *message.Printer
}

type statsMsg timeline.Stats
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders conversion
// progress. total is the input size in bytes, or 0 when it is unknown; the
// model quits when updates is closed.
func NewProgressModel(title string, total int64, updates <-chan timeline.Stats) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:   title,
		total:   total,
		updates: updates,
		spinner: sp,
		prog:    prog,
		width:   80,
		printer: message.NewPrinter(language.English),
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForUpdate())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		m.stats = timeline.Stats(msg)
		var cmd tea.Cmd
		if m.total > 0 {
			cmd = m.prog.SetPercent(fraction(m.stats.Bytes, m.total))
		}
		return m, tea.Batch(cmd, m.listenForUpdate())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stopped = true
			return m, tea.Quit
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := truncate(m.title, m.width-4)
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	s := m.stats
	rows := []struct {
		label string
		value int
		style lipgloss.Style
	}{
		{"lines", s.Lines, labelStyle("7")},
		{"waits", s.Waits, labelStyle("6")},
		{"timeouts", s.Timeouts, labelStyle("3")},
		{"signals", s.Signals, labelStyle("2")},
		{"reads", s.Reads, labelStyle("5")},
		{"emitted", s.Emitted, labelStyle("7")},
		{"open waits", s.OpenWaits, labelStyle("1")},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s %s\n", r.style.Render(fmt.Sprintf("%12s", r.label)), m.printer.Sprintf("%d", r.value)))
	}

	b.WriteString("\n")
	if m.total > 0 {
		if m.done {
			b.WriteString(m.prog.ViewAs(1.0))
		} else {
			b.WriteString(m.prog.View())
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *progressModel) listenForUpdate() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-m.updates
		if !ok {
			return doneMsg{}
		}
		return statsMsg(s)
	}
}

// Interrupted reports whether the user quit the progress view before the
// conversion finished.
func Interrupted(model tea.Model) bool {
	m, ok := model.(*progressModel)
	return ok && m.stopped
}

func fraction(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	f := float64(done) / float64(total)
	if f > 1 {
		return 1
	}
	return f
}

func labelStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
