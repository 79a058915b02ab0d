package preferences

import (
	"focusflow/internal/app"
	"focusflow/internal/core/model"
)

// Settings defines editable user preferences.
type Settings struct {
	Preset       model.Preset
	AudioEnabled bool
	Source       model.SourceType
	BreakAudio   bool
}

// DefaultSettings returns default settings for FocusFlow.
func DefaultSettings() Settings {
	audio := model.DefaultAudioPreference()
	return Settings{
		Preset:       model.DefaultPreset(),
		AudioEnabled: audio.Enabled,
		Source:       audio.Source,
	}
}

// FromSnapshot reads the editable fields of a controller snapshot.
func FromSnapshot(snapshot app.Snapshot) Settings {
	return Settings{
		Preset:       snapshot.Preset,
		AudioEnabled: snapshot.Audio.Enabled,
		Source:       snapshot.Audio.Source,
		BreakAudio:   snapshot.BreakAudio,
	}
}

// Controller is the subset of app.Controller the window edits.
type Controller interface {
	ChangePreset(preset model.Preset)
	SetAudioEnabled(enabled bool)
	SetAudioType(sourceType model.SourceType)
	SetBreakAudio(enabled bool)
}

// Apply sends only the fields that differ from previous.
func (settings Settings) Apply(previous Settings, controller Controller) {
	if settings.Preset != previous.Preset {
		controller.ChangePreset(settings.Preset)
	}
	if settings.Source != previous.Source {
		controller.SetAudioType(settings.Source)
	}
	if settings.AudioEnabled != previous.AudioEnabled {
		controller.SetAudioEnabled(settings.AudioEnabled)
	}
	if settings.BreakAudio != previous.BreakAudio {
		controller.SetBreakAudio(settings.BreakAudio)
	}
}

// SourceLabels returns the display names of the audio sources in menu order.
func SourceLabels() []string {
	labels := make([]string, 0, len(model.Sources))
	for _, info := range model.Sources {
		labels = append(labels, info.Label)
	}
	return labels
}

// SourceForLabel maps a display name back to its source type.
func SourceForLabel(label string) (model.SourceType, bool) {
	for _, info := range model.Sources {
		if info.Label == label {
			return info.Type, true
		}
	}
	return "", false
}

// PresetLabels returns the display names of the built-in presets.
func PresetLabels() []string {
	labels := make([]string, 0, len(model.Presets))
	for _, preset := range model.Presets {
		labels = append(labels, preset.Label)
	}
	return labels
}
