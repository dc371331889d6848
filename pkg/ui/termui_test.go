package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/lecternapp/lectern/pkg/session"
)

type fakeController struct {
	state   session.State
	toggles int
	quits   int
	accept  bool
}

func (f *fakeController) Toggle() bool {
	f.toggles++
	return f.accept
}

func (f *fakeController) Quit()                { f.quits++ }
func (f *fakeController) State() session.State { return f.state }

func TestSpaceTogglesRecording(t *testing.T) {
	ctrl := &fakeController{state: session.StateIdle, accept: true}
	m := NewModel(ctrl, "physics101")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	model := next.(Model)
	require.Equal(t, 1, ctrl.toggles)
	require.False(t, model.recordStart.IsZero())
}

func TestRKeyAlsoToggles(t *testing.T) {
	ctrl := &fakeController{state: session.StateIdle, accept: true}
	m := NewModel(ctrl, "physics101")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.Equal(t, 1, ctrl.toggles)
}

func TestQuitKeySignalsController(t *testing.T) {
	ctrl := &fakeController{state: session.StateRecording}
	m := NewModel(ctrl, "physics101")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.Equal(t, 1, ctrl.quits)
	require.NotNil(t, cmd)
}

func TestLevelMsgShiftsMeter(t *testing.T) {
	ctrl := &fakeController{state: session.StateRecording}
	m := NewModel(ctrl, "physics101")

	next, _ := m.Update(LevelMsg(0.7))
	model := next.(Model)
	require.InDelta(t, 0.7, model.levels[0], 1e-6)

	next, _ = model.Update(LevelMsg(0.2))
	model = next.(Model)
	require.InDelta(t, 0.2, model.levels[0], 1e-6)
	require.InDelta(t, 0.7, model.levels[1], 1e-6)
}

func TestTickPollsControllerState(t *testing.T) {
	ctrl := &fakeController{state: session.StateTranscribing}
	m := NewModel(ctrl, "physics101")

	next, cmd := m.Update(tickMsg(time.Now()))
	model := next.(Model)
	require.Equal(t, session.StateTranscribing, model.state)
	require.NotNil(t, cmd)
}

func TestViewShowsStage(t *testing.T) {
	ctrl := &fakeController{state: session.StateIdle}
	m := NewModel(ctrl, "physics101")

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	model := next.(Model)
	model.state = session.StateSummarizing

	view := model.View()
	require.Contains(t, view, "Summarizing...")
	require.Contains(t, view, "physics101")
}

func TestViewBeforeSizeIsPlaceholder(t *testing.T) {
	m := NewModel(&fakeController{}, "physics101")
	require.Equal(t, "Initializing...", m.View())
}

func TestStageLabels(t *testing.T) {
	require.Contains(t, stageLabel(session.StateRecording), "Recording")
	require.Contains(t, stageLabel(session.StateDone), "Done")
	require.Contains(t, stageLabel(session.StateCancelled), "Cancelled")
}

func TestFormatElapsed(t *testing.T) {
	require.Equal(t, "00:05", formatElapsed(5*time.Second))
	require.Equal(t, "02:30", formatElapsed(150*time.Second))
	require.Equal(t, "1:01:01", formatElapsed(3661*time.Second))
}

func TestRenderLevelMeterInactiveIsBlank(t *testing.T) {
	levels := []float32{0.9, 0.9, 0.9}
	out := renderLevelMeter(levels, false)
	require.NotContains(t, out, "█")
	require.True(t, strings.HasPrefix(out, "Audio Level:"))
}
