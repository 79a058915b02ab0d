package app

import (
	"fmt"

	"focusflow/internal/audio/engine"
	"focusflow/internal/core/model"
	"focusflow/internal/core/session"
)

// PhaseTitle returns the heading for a phase.
func PhaseTitle(phase model.Phase) string {
	if phase == model.PhaseBreak {
		return "Break"
	}
	return "Focus"
}

// StatusLine summarises the cycle for subtitles and the tray.
func (snapshot Snapshot) StatusLine() string {
	state := "paused"
	if snapshot.Status != session.StatusIdle {
		state = "running"
	}
	return fmt.Sprintf("%s %s, %s, %d completed", PhaseTitle(snapshot.State.Phase), snapshot.State.Remaining(), state, snapshot.State.CompletedSessions)
}

// AudioLine describes the audio engine.
func (snapshot Snapshot) AudioLine() string {
	status := snapshot.Engine
	label := status.Preference.Source.Info().Label
	switch {
	case !status.Preference.Enabled:
		return "Audio off"
	case status.LoadErr != nil:
		return fmt.Sprintf("%s unavailable", label)
	case status.ActivationErr != nil:
		return "Audio device unavailable"
	case status.Previewing:
		return fmt.Sprintf("%s (test)", label)
	case status.State == engine.StateEngaged || status.State == engine.StateStarting:
		return fmt.Sprintf("%s playing", label)
	default:
		return label
	}
}

// Progress returns the elapsed fraction of the current phase.
func (snapshot Snapshot) Progress() float64 {
	total := snapshot.Preset.Seconds(snapshot.State.Phase)
	if total <= 0 {
		return 0
	}
	elapsed := total - snapshot.State.RemainingSeconds
	if elapsed < 0 {
		elapsed = 0
	}
	return float64(elapsed) / float64(total)
}

// TaskSummary returns "done/total done".
func (snapshot Snapshot) TaskSummary() string {
	return fmt.Sprintf("%d/%d done", snapshot.CompletedTasks, len(snapshot.Tasks))
}
