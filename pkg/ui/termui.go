// Package ui renders the interactive terminal front end for a recording
// session and forwards key presses to the session runner.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lecternapp/lectern/pkg/session"
)

const appBanner = `
 ██╗     ███████╗ ██████╗████████╗███████╗██████╗ ███╗   ██╗
 ██║     ██╔════╝██╔════╝╚══██╔══╝██╔════╝██╔══██╗████╗  ██║
 ██║     █████╗  ██║        ██║   █████╗  ██████╔╝██╔██╗ ██║
 ██║     ██╔══╝  ██║        ██║   ██╔══╝  ██╔══██╗██║╚██╗██║
 ███████╗███████╗╚██████╗   ██║   ███████╗██║  ██║██║ ╚████║
 ╚══════╝╚══════╝ ╚═════╝   ╚═╝   ╚══════╝╚═╝  ╚═╝╚═╝  ╚═══╝
              Lecture Recorder & Summarizer
`

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61E3FA")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(1, 2)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A9B1D6"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ECE6A")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7768E"))
)

// Controller is the subset of runner behavior the UI drives.
type Controller interface {
	Toggle() bool
	Quit()
	State() session.State
}

// LevelMsg carries one RMS level sample from the recorder callback.
type LevelMsg float32

// DoneMsg tells the UI the pipeline has finished and it should exit.
type DoneMsg struct{}

type tickMsg time.Time

// Model is the bubbletea model for one session.
type Model struct {
	controller  Controller
	sessionName string

	spinner     spinner.Model
	levels      []float32
	state       session.State
	recordStart time.Time
	elapsed     time.Duration
	errMessage  string
	width       int
	ready       bool
}

// NewModel builds the UI model around a session controller.
func NewModel(controller Controller, sessionName string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECE6A"))

	return Model{
		controller:  controller,
		sessionName: sessionName,
		spinner:     s,
		levels:      make([]float32, 30),
		state:       session.StateIdle,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.controller.Quit()
			return m, tea.Quit
		case " ", "r":
			wasIdle := m.state == session.StateIdle
			if m.controller.Toggle() && wasIdle {
				m.recordStart = time.Now()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.ready = true

	case LevelMsg:
		copy(m.levels[1:], m.levels)
		m.levels[0] = float32(msg)

	case DoneMsg:
		return m, tea.Quit

	case tickMsg:
		m.state = m.controller.State()
		if m.state == session.StateRecording && !m.recordStart.IsZero() {
			m.elapsed = time.Since(m.recordStart)
		}
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(bannerStyle.Render(appBanner))

	indicator := ""
	if m.state != session.StateIdle && !session.Terminal(m.state) {
		indicator = m.spinner.View() + " "
	}
	s.WriteString("\n" + statusStyle.Render(indicator+"Status: "+stageLabel(m.state)))

	if m.state == session.StateRecording || m.elapsed > 0 {
		s.WriteString("\n" + infoStyle.Render("Elapsed: "+formatElapsed(m.elapsed)))
	}

	s.WriteString("\n" + infoStyle.Render("Session: "+m.sessionName+" | SPACE or 'r' to start/stop | 'q' to quit"))
	s.WriteString("\n\n" + renderLevelMeter(m.levels, m.state == session.StateRecording))

	if m.errMessage != "" {
		s.WriteString("\n\n" + errorStyle.Render("Error: "+m.errMessage))
	}

	return s.String()
}

func stageLabel(s session.State) string {
	switch s {
	case session.StateIdle:
		return "Ready, press SPACE to start recording"
	case session.StateRecording:
		return "Recording..."
	case session.StateStopped:
		return "Saving audio..."
	case session.StateTranscribing:
		return "Transcribing..."
	case session.StateSummarizing:
		return "Summarizing..."
	case session.StateDone:
		return "Done"
	case session.StateCancelled:
		return "Cancelled"
	case session.StateError:
		return "Failed"
	default:
		return string(s)
	}
}

func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// renderLevelMeter draws recent RMS levels as a block meter.
func renderLevelMeter(levels []float32, active bool) string {
	var s strings.Builder
	s.WriteString("Audio Level: ")

	baseColor := "#555555"
	if active {
		baseColor = "#7AA2F7"
	}

	s.WriteString("[")
	for i := range levels {
		level := levels[i]
		var char, color string
		if active && level > 0.02 {
			char = "█"
			color = colorForLevel(level)
		} else {
			char = " "
			color = baseColor
		}
		s.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(char))
	}
	s.WriteString("]")

	return s.String()
}

func colorForLevel(level float32) string {
	switch {
	case level > 0.8:
		return "#F7768E"
	case level > 0.5:
		return "#FF9E64"
	case level > 0.3:
		return "#E0AF68"
	default:
		return "#9ECE6A"
	}
}
