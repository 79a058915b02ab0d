package session

import (
	"time"

	"focusflow/internal/core/model"
)

// Status is the coarse state of the machine.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusRunningFocus Status = "running_focus"
	StatusRunningBreak Status = "running_break"
)

// EventType defines the type of session event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
)

// Reason explains what caused a state change.
type Reason string

const (
	ReasonStart         Reason = "start"
	ReasonPause         Reason = "pause"
	ReasonReset         Reason = "reset"
	ReasonPhaseComplete Reason = "phase_complete"
	ReasonSkip          Reason = "skip"
	ReasonPreset        Reason = "preset"
	ReasonRestore       Reason = "restore"
)

// Event represents a session update for observers.
type Event struct {
	Type   EventType
	Reason Reason
	Status Status
	State  model.SessionState
	Preset model.Preset
	At     time.Time
}
