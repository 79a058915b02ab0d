package config

import (
	"path/filepath"
	"testing"
	"time"

	"focusflow/internal/core/model"
)

var envVars = []string{
	"FOCUSFLOW_CONFIG_DIR", "FOCUSFLOW_STORE", "FOCUSFLOW_SOUNDS_DIR",
	"FOCUSFLOW_SAMPLE_RATE", "FOCUSFLOW_PREVIEW", "FOCUSFLOW_BREAK_AUDIO",
	"FOCUSFLOW_BASE_HZ", "FOCUSFLOW_BEAT_HZ", "FOCUSFLOW_BREAK_BASE_HZ",
	"FOCUSFLOW_BREAK_BEAT_HZ", "FOCUSFLOW_TONE_RAMP",
	"FOCUSFLOW_NOISE_FADE_IN", "FOCUSFLOW_NOISE_FADE_OUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOCUSFLOW_CONFIG_DIR", "/tmp/focusflow-test")

	cfg := Load()

	if cfg.ConfigDir != "/tmp/focusflow-test" {
		t.Errorf("ConfigDir = %q", cfg.ConfigDir)
	}
	if cfg.Store != StoreYAML {
		t.Errorf("Store = %q, want yaml", cfg.Store)
	}
	if cfg.SoundsDir != filepath.Join("/tmp/focusflow-test", "sounds") {
		t.Errorf("SoundsDir = %q, want under config dir", cfg.SoundsDir)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", cfg.SampleRate)
	}
	if cfg.Preview != 3*time.Second {
		t.Errorf("Preview = %v, want 3s", cfg.Preview)
	}
	if cfg.BreakAudio {
		t.Errorf("BreakAudio = true, want false")
	}
	if cfg.BaseHz != 40 || cfg.BeatHz != 6 {
		t.Errorf("tone = %v/%v, want 40/6", cfg.BaseHz, cfg.BeatHz)
	}
	if tones := cfg.Tones(); tones != model.DefaultToneMap() {
		t.Errorf("Tones = %+v, want the default map", tones)
	}
	if cfg.ToneRamp != 200*time.Millisecond {
		t.Errorf("ToneRamp = %v, want 200ms", cfg.ToneRamp)
	}
	if cfg.NoiseFadeIn != 400*time.Millisecond || cfg.NoiseFadeOut != 550*time.Millisecond {
		t.Errorf("noise fades = %v/%v, want 400ms/550ms", cfg.NoiseFadeIn, cfg.NoiseFadeOut)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOCUSFLOW_STORE", "sqlite")
	t.Setenv("FOCUSFLOW_SOUNDS_DIR", "/srv/sounds")
	t.Setenv("FOCUSFLOW_SAMPLE_RATE", "48000")
	t.Setenv("FOCUSFLOW_PREVIEW", "5s")
	t.Setenv("FOCUSFLOW_BREAK_AUDIO", "true")
	t.Setenv("FOCUSFLOW_BASE_HZ", "200")
	t.Setenv("FOCUSFLOW_BEAT_HZ", "10")
	t.Setenv("FOCUSFLOW_TONE_RAMP", "50ms")

	cfg := Load()

	if cfg.Store != StoreSQLite || cfg.SoundsDir != "/srv/sounds" || cfg.SampleRate != 48000 {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
	if cfg.Preview != 5*time.Second || !cfg.BreakAudio || cfg.ToneRamp != 50*time.Millisecond {
		t.Errorf("unexpected audio overrides: %+v", cfg)
	}
	tones := cfg.Tones()
	if tones.Focus.RightHz() != 210 || tones.Break != tones.Focus {
		t.Errorf("unexpected tones: %+v", tones)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOCUSFLOW_SAMPLE_RATE", "fast")
	t.Setenv("FOCUSFLOW_PREVIEW", "3")
	t.Setenv("FOCUSFLOW_BREAK_AUDIO", "sometimes")

	cfg := Load()

	if cfg.SampleRate != 44100 || cfg.Preview != 3*time.Second || cfg.BreakAudio {
		t.Errorf("malformed values not ignored: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := Load()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"store", func(cfg *Config) { cfg.Store = "postgres" }},
		{"sample rate", func(cfg *Config) { cfg.SampleRate = 100 }},
		{"base", func(cfg *Config) { cfg.BaseHz = 0 }},
		{"break base", func(cfg *Config) { cfg.BreakBaseHz = -1 }},
		{"break beat", func(cfg *Config) { cfg.BreakBeatHz = -2 }},
		{"preview", func(cfg *Config) { cfg.Preview = 0 }},
		{"fade", func(cfg *Config) { cfg.NoiseFadeOut = -time.Second }},
	}
	for _, tt := range tests {
		cfg := base
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestBreakToneFollowsFocusUnlessSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOCUSFLOW_BASE_HZ", "100")
	t.Setenv("FOCUSFLOW_BEAT_HZ", "8")

	tones := Load().Tones()
	if tones.Break != tones.Focus || tones.Focus != (model.Tone{BaseHz: 100, BeatHz: 8}) {
		t.Errorf("break should follow focus, got %+v", tones)
	}

	t.Setenv("FOCUSFLOW_BREAK_BASE_HZ", "10")
	t.Setenv("FOCUSFLOW_BREAK_BEAT_HZ", "0")

	tones = Load().Tones()
	if tones.Focus != (model.Tone{BaseHz: 100, BeatHz: 8}) || tones.Break != (model.Tone{BaseHz: 10, BeatHz: 0}) {
		t.Errorf("unexpected per-phase tones: %+v", tones)
	}
	if err := Load().Validate(); err != nil {
		t.Errorf("a zero beat is valid: %v", err)
	}
}
