package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTone indicates a binaural pair the oscillators cannot play.
var ErrInvalidTone = errors.New("invalid binaural tone")

// SourceType selects the ambient audio played during a session.
type SourceType string

const (
	SourceBinaural   SourceType = "binaural"
	SourceWhiteNoise SourceType = "white"
	SourcePinkNoise  SourceType = "pink"
	SourceRain       SourceType = "rain"
)

// SourceInfo describes a source type for menus and asset lookup.
type SourceInfo struct {
	Type        SourceType
	Label       string
	Description string
	// Asset is the sample name without extension; empty for synthesized sources.
	Asset string
	// Fades marks continuous noise types that fade in and out.
	Fades bool
}

// Sources lists every selectable source type in menu order.
var Sources = []SourceInfo{
	{Type: SourceBinaural, Label: "Binaural Beats", Description: "40Hz for focus, 10Hz for relaxation"},
	{Type: SourceWhiteNoise, Label: "White Noise", Description: "Consistent background noise", Asset: "white", Fades: true},
	{Type: SourcePinkNoise, Label: "Pink Noise", Description: "Softer, more natural sound", Asset: "pink", Fades: true},
	{Type: SourceRain, Label: "Rain Sounds", Description: "Gentle rainfall ambience", Asset: "rain"},
}

// Info returns the metadata of the source type.
func (source SourceType) Info() SourceInfo {
	for _, info := range Sources {
		if info.Type == source {
			return info
		}
	}
	return SourceInfo{Type: source, Label: string(source)}
}

// IsSample reports whether the source plays a looped asset.
func (source SourceType) IsSample() bool {
	return source != SourceBinaural
}

// ParseSourceType converts a stored or typed name into a SourceType.
func ParseSourceType(value string) (SourceType, error) {
	for _, info := range Sources {
		if string(info.Type) == value || info.Label == value {
			return info.Type, nil
		}
	}
	return "", fmt.Errorf("unknown audio source %q", value)
}

// AudioPreference is the persisted audio selection.
type AudioPreference struct {
	Enabled bool       `yaml:"enabled" json:"enabled"`
	Source  SourceType `yaml:"source" json:"source"`
}

// DefaultAudioPreference enables the binaural tone.
func DefaultAudioPreference() AudioPreference {
	return AudioPreference{Enabled: true, Source: SourceBinaural}
}

// Tone is a binaural pair: left ear at BaseHz, right ear at BaseHz+BeatHz.
type Tone struct {
	BaseHz float64 `yaml:"base_hz" json:"base_hz"`
	BeatHz float64 `yaml:"beat_hz" json:"beat_hz"`
}

// LeftHz returns the left oscillator frequency.
func (tone Tone) LeftHz() float64 { return tone.BaseHz }

// RightHz returns the right oscillator frequency.
func (tone Tone) RightHz() float64 { return tone.BaseHz + tone.BeatHz }

// ToneMap assigns a binaural tone to each phase.
type ToneMap struct {
	Focus Tone `yaml:"focus" json:"focus"`
	Break Tone `yaml:"break" json:"break"`
}

// DefaultToneMap uses the same 40Hz/6Hz pair in both phases.
func DefaultToneMap() ToneMap {
	tone := Tone{BaseHz: 40, BeatHz: 6}
	return ToneMap{Focus: tone, Break: tone}
}

// For returns the tone of the given phase.
func (tones ToneMap) For(phase Phase) Tone {
	if phase == PhaseBreak {
		return tones.Break
	}
	return tones.Focus
}

// Validate rejects a map with a non-positive base or a negative beat.
func (tones ToneMap) Validate() error {
	for _, phase := range []Phase{PhaseFocus, PhaseBreak} {
		tone := tones.For(phase)
		if tone.BaseHz <= 0 || tone.BeatHz < 0 {
			return fmt.Errorf("%w: %s %.1f/%.1f Hz", ErrInvalidTone, phase, tone.BaseHz, tone.BeatHz)
		}
	}
	return nil
}
