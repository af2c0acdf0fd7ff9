package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/metrics"
	"github.com/san-kum/reactorsim/internal/playback"
	"github.com/san-kum/reactorsim/internal/plot"
)

const (
	chartWidth  = 60
	chartHeight = 12
	seekSteps   = 20
)

type TickMsg time.Time

// Model paces a player from frame ticks and renders its history.
type Model struct {
	player   *playback.Player
	title    string
	frame    time.Duration
	last     time.Time
	running  bool
	logScale bool
	showHelp bool
	theme    Theme
	err      error
}

func NewModel(pl *playback.Player, title string, fps int) Model {
	if fps <= 0 {
		fps = playback.DefaultFPS
	}
	return Model{
		player:  pl,
		title:   title,
		frame:   time.Second / time.Duration(fps),
		running: true,
		theme:   Themes[0],
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and paces the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
			m.last = time.Time{}
		case "r":
			m.err = m.player.Reset(m.player.Params())
			m.last = time.Time{}
		case "[":
			m.seek(-1)
		case "]":
			m.seek(1)
		case "l":
			m.logScale = !m.logScale
		case "t":
			m.theme = m.theme.Next()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		now := time.Time(msg)
		if m.running && !m.last.IsZero() {
			m.player.Advance(now.Sub(m.last))
		}
		m.last = now
		return m, m.tick()
	}
	return m, nil
}

// seek moves the playhead by seekSteps steps and pauses.
func (m *Model) seek(dir int) {
	p := m.player.Params()
	target := m.player.Last().Time + float64(dir*seekSteps)*p.TimeStep
	m.err = m.player.Seek(context.Background(), target)
	m.running = false
	m.last = time.Time{}
}

func (m Model) status(st styles) string {
	switch {
	case m.err != nil:
		return st.alarm.Render("ERROR: " + m.err.Error())
	case m.player.Done():
		return st.paused.Render("COMPLETE")
	case m.running:
		return st.running.Render("RUNNING")
	default:
		return st.paused.Render("PAUSED")
	}
}

// View renders the TUI.
func (m Model) View() string {
	st := m.theme.styles()
	last := m.player.Last()
	feed := m.player.Feed()

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status(st) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", last.Time))
	row("Power", fmt.Sprintf("%.4g", last.Power))
	dollars := fmt.Sprintf("%.3f $", last.ReactivityDollars)
	if last.ReactivityDollars >= 1 {
		dollars = st.alarm.Render(dollars + "  PROMPT CRITICAL")
	}
	row("Reactivity", dollars)
	row("Precursor", fmt.Sprintf("%.4g", last.Precursor))
	row("Period", formatPeriod(feed))
	row("Progress", ProgressBar(m.theme, m.player.Progress(), 30))
	stats := st.panel.Render(s.String())

	chart := plot.Power(feed, plot.Options{Log: m.logScale, Height: chartHeight, Width: chartWidth})
	spark := st.label.Render("$") + Sparkline(feed.Dollars, chartWidth)
	graphs := st.graph.Render(chart + "\n\n" + spark)

	help := st.help.Render("SP:Pause R:Reset [ ]:Seek L:Log T:Theme ?:Help Q:Quit")
	view := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, stats, graphs),
		help)

	if m.showHelp {
		return st.panel.Render(helpText) + "\n" + view
	}
	return view
}

// formatPeriod reports the reactor period between the last two samples.
func formatPeriod(f engine.Feed) string {
	n := len(f.Power)
	if n < 2 {
		return "-"
	}
	prev := engine.Sample{Time: f.Time[n-2], Power: f.Power[n-2]}
	cur := engine.Sample{Time: f.Time[n-1], Power: f.Power[n-1]}
	period := metrics.ReactorPeriod(prev, cur)
	switch {
	case math.IsNaN(period):
		return "-"
	case math.IsInf(period, 0):
		return "∞"
	}
	return fmt.Sprintf("%.3gs (%.2f dpm)", period, metrics.StartupRate(period))
}

const helpText = `KEYBOARD SHORTCUTS

  Space   pause or resume
  R       reset to t=0
  [ / ]   seek backward or forward (replays from t=0)
  L       toggle log10 power axis
  T       cycle themes
  ?       toggle this help
  Q       quit`

// Run starts the interactive program and blocks until it exits.
func Run(pl *playback.Player, title string, fps int) error {
	_, err := tea.NewProgram(NewModel(pl, title, fps), tea.WithAltScreen()).Run()
	return err
}
