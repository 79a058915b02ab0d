package model

import (
	"errors"
	"fmt"
)

// ErrInvalidPreset indicates a preset with a non-positive phase length.
var ErrInvalidPreset = errors.New("invalid preset")

// Phase is one half of the focus cycle.
type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

// Preset is a named pair of focus and break lengths.
type Preset struct {
	Label        string `yaml:"label" json:"label"`
	FocusMinutes int    `yaml:"focus_minutes" json:"focus_minutes"`
	BreakMinutes int    `yaml:"break_minutes" json:"break_minutes"`
}

// Presets are the built-in timer presets, Classic first.
var Presets = []Preset{
	{Label: "Classic (25/5)", FocusMinutes: 25, BreakMinutes: 5},
	{Label: "Deep Work (50/10)", FocusMinutes: 50, BreakMinutes: 10},
	{Label: "Flow State (90/20)", FocusMinutes: 90, BreakMinutes: 20},
	{Label: "Quick (15/3)", FocusMinutes: 15, BreakMinutes: 3},
}

// DefaultPreset returns the Classic preset.
func DefaultPreset() Preset {
	return Presets[0]
}

// FindPreset looks up a built-in preset by label.
func FindPreset(label string) (Preset, bool) {
	for _, preset := range Presets {
		if preset.Label == label {
			return preset, true
		}
	}
	return Preset{}, false
}

// Validate reports whether both phase lengths are positive.
func (preset Preset) Validate() error {
	if preset.FocusMinutes <= 0 || preset.BreakMinutes <= 0 {
		return fmt.Errorf("%w: %q focus=%d break=%d", ErrInvalidPreset, preset.Label, preset.FocusMinutes, preset.BreakMinutes)
	}
	return nil
}

// Seconds returns the length of the given phase in seconds.
func (preset Preset) Seconds(phase Phase) int {
	if phase == PhaseBreak {
		return preset.BreakMinutes * 60
	}
	return preset.FocusMinutes * 60
}
