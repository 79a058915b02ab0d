package app

import (
	"errors"
	"testing"

	"focusflow/internal/audio/engine"
	"focusflow/internal/core/model"
	"focusflow/internal/core/session"
)

func TestStatusLine(t *testing.T) {
	snapshot := Snapshot{
		State:  model.SessionState{Phase: model.PhaseBreak, RemainingSeconds: 299, CompletedSessions: 3, Running: true},
		Status: session.StatusRunningBreak,
	}
	if got := snapshot.StatusLine(); got != "Break 04:59, running, 3 completed" {
		t.Fatalf("unexpected status line %q", got)
	}
}

func TestProgress(t *testing.T) {
	snapshot := Snapshot{
		Preset: model.DefaultPreset(),
		State:  model.SessionState{Phase: model.PhaseFocus, RemainingSeconds: 750},
	}
	if got := snapshot.Progress(); got != 0.5 {
		t.Fatalf("expected half way, got %v", got)
	}
	snapshot.State.RemainingSeconds = 25 * 60
	if got := snapshot.Progress(); got != 0 {
		t.Fatalf("expected zero progress, got %v", got)
	}
	if got := (Snapshot{}).Progress(); got != 0 {
		t.Fatalf("empty snapshot should report zero, got %v", got)
	}
}

func TestAudioLine(t *testing.T) {
	binaural := model.AudioPreference{Enabled: true, Source: model.SourceBinaural}
	label := model.SourceBinaural.Info().Label
	tests := []struct {
		name   string
		status engine.Status
		want   string
	}{
		{"off", engine.Status{Preference: model.AudioPreference{Source: model.SourceRain}}, "Audio off"},
		{"idle", engine.Status{Preference: binaural, State: engine.StateStopped}, label},
		{"playing", engine.Status{Preference: binaural, State: engine.StateEngaged}, label + " playing"},
		{"preview", engine.Status{Preference: binaural, Previewing: true}, label + " (test)"},
		{"device", engine.Status{Preference: binaural, ActivationErr: errors.New("no device")}, "Audio device unavailable"},
	}
	for _, test := range tests {
		if got := (Snapshot{Engine: test.status}).AudioLine(); got != test.want {
			t.Errorf("%s: expected %q, got %q", test.name, test.want, got)
		}
	}
}

func TestTaskSummary(t *testing.T) {
	snapshot := Snapshot{Tasks: make([]model.Task, 3), CompletedTasks: 1}
	if got := snapshot.TaskSummary(); got != "1/3 done" {
		t.Fatalf("unexpected summary %q", got)
	}
}
