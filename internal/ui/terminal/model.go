// Package terminal is a terminal front end over the controller.
package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focusflow/internal/app"
	"focusflow/internal/core/model"
)

// Controller is the subset of app.Controller the terminal drives.
type Controller interface {
	Toggle()
	Reset()
	SkipPhase()
	ChangePreset(preset model.Preset)
	SetAudioEnabled(enabled bool)
	SetAudioType(sourceType model.SourceType)
	SetBreakAudio(enabled bool)
	PreviewAudio()
	AddTask(text string)
	ToggleTask(id int64)
	DeleteTask(id int64)
}

type snapshotMsg app.Snapshot

type closedMsg struct{}

// Model is the root Bubble Tea model.
type Model struct {
	controller Controller
	updates    <-chan app.Snapshot
	snapshot   app.Snapshot

	keys     keyMap
	help     help.Model
	showHelp bool
	input    textinput.Model
	adding   bool
	cursor   int
	width    int
}

// NewModel renders initial and then every snapshot received from updates.
func NewModel(controller Controller, initial app.Snapshot, updates <-chan app.Snapshot) Model {
	input := textinput.New()
	input.Placeholder = "new task"
	input.CharLimit = 200
	return Model{
		controller: controller,
		updates:    updates,
		snapshot:   initial,
		keys:       defaultKeys(),
		help:       help.New(),
		input:      input,
	}
}

// Run starts the program and blocks until the user quits.
func Run(controller Controller, initial app.Snapshot, updates <-chan app.Snapshot) error {
	_, err := tea.NewProgram(NewModel(controller, initial, updates), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.waitForSnapshot()
}

func (m Model) waitForSnapshot() tea.Cmd {
	updates := m.updates
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snapshot, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snapshot)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case snapshotMsg:
		m.snapshot = app.Snapshot(msg)
		m.clampCursor()
		return m, m.waitForSnapshot()

	case closedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if text := strings.TrimSpace(m.input.Value()); text != "" {
			m.controller.AddTask(text)
		}
		m.adding = false
		m.input.Blur()
		return m, nil
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Toggle):
		m.controller.Toggle()
	case key.Matches(msg, m.keys.Reset):
		m.controller.Reset()
	case key.Matches(msg, m.keys.Skip):
		m.controller.SkipPhase()
	case key.Matches(msg, m.keys.Preset):
		m.controller.ChangePreset(nextPreset(m.snapshot.Preset))
	case key.Matches(msg, m.keys.Audio):
		m.controller.SetAudioEnabled(!m.snapshot.Audio.Enabled)
	case key.Matches(msg, m.keys.Source):
		m.controller.SetAudioType(nextSource(m.snapshot.Audio.Source))
	case key.Matches(msg, m.keys.BreakAudio):
		m.controller.SetBreakAudio(!m.snapshot.BreakAudio)
	case key.Matches(msg, m.keys.Preview):
		m.controller.PreviewAudio()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snapshot.Tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Done):
		if task, ok := m.selected(); ok {
			m.controller.ToggleTask(task.ID)
		}
	case key.Matches(msg, m.keys.Delete):
		if task, ok := m.selected(); ok {
			m.controller.DeleteTask(task.ID)
		}
	}
	return m, nil
}

func (m Model) selected() (model.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Tasks) {
		return model.Task{}, false
	}
	return m.snapshot.Tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.snapshot.Tasks) {
		m.cursor = len(m.snapshot.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func nextPreset(current model.Preset) model.Preset {
	for i, preset := range model.Presets {
		if preset == current {
			return model.Presets[(i+1)%len(model.Presets)]
		}
	}
	return model.DefaultPreset()
}

func nextSource(current model.SourceType) model.SourceType {
	for i, info := range model.Sources {
		if info.Type == current {
			return model.Sources[(i+1)%len(model.Sources)].Type
		}
	}
	return model.Sources[0].Type
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	snapshot := m.snapshot
	phaseStyle := focusStyle
	if snapshot.State.Phase == model.PhaseBreak {
		phaseStyle = breakStyle
	}

	status := "paused"
	if snapshot.State.Running {
		status = "running"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		phaseStyle.Render(app.PhaseTitle(snapshot.State.Phase)),
		"  ",
		mutedStyle.Render(fmt.Sprintf("%s · %s · %d completed", snapshot.Preset.Label, status, snapshot.State.CompletedSessions)),
	)
	timer := phaseStyle.Render(snapshot.State.Remaining())
	bar := progressBar(snapshot.Progress(), 30)

	breakAudio := "off"
	if snapshot.BreakAudio {
		breakAudio = "on"
	}
	audio := mutedStyle.Render(fmt.Sprintf("♪ %s · break audio %s", snapshot.AudioLine(), breakAudio))

	timerPane := paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "", timer, bar, "", audio))
	sections := []string{timerPane, m.renderTasks()}

	if m.adding {
		sections = append(sections, m.input.View())
	}
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderTasks() string {
	snapshot := m.snapshot
	lines := []string{hotStyle.Render("Tasks") + "  " + mutedStyle.Render(snapshot.TaskSummary())}
	if len(snapshot.Tasks) == 0 {
		lines = append(lines, mutedStyle.Render("no tasks, press a to add one"))
	}
	for i, task := range snapshot.Tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = hotStyle.Render("> ")
		}
		box := "[ ] "
		line := task.Text
		if task.Completed {
			box = "[x] "
			line = doneStyle.Render(task.Text)
		}
		lines = append(lines, cursor+box+line)
	}
	return paneStyle.Render(strings.Join(lines, "\n"))
}

func progressBar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * float64(width))
	return barStyle.Render(strings.Repeat("█", filled) + strings.Repeat("░", width-filled))
}
