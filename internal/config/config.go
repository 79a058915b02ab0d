package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"focusflow/internal/core/model"
	"focusflow/internal/platform"
	"focusflow/internal/storage"
)

// AppName names the config directory and single-instance lock.
const AppName = "focusflow"

// Store backends.
const (
	StoreYAML   = "yaml"
	StoreSQLite = "sqlite"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Persistence
	ConfigDir string `yaml:"config_dir"`
	Store     string `yaml:"store"` // yaml or sqlite
	SoundsDir string `yaml:"sounds_dir"`

	// Audio device
	SampleRate int `yaml:"sample_rate"`

	// Audio behavior
	Preview      time.Duration `yaml:"preview"`     // length of the audio test
	BreakAudio   bool          `yaml:"break_audio"` // default for playing audio during breaks
	BaseHz       float64       `yaml:"base_hz"`     // binaural left ear
	BeatHz       float64       `yaml:"beat_hz"`     // binaural beat, added for the right ear
	BreakBaseHz  float64       `yaml:"break_base_hz"`
	BreakBeatHz  float64       `yaml:"break_beat_hz"`
	ToneRamp     time.Duration `yaml:"tone_ramp"` // binaural fade and glide
	NoiseFadeIn  time.Duration `yaml:"noise_fade_in"`
	NoiseFadeOut time.Duration `yaml:"noise_fade_out"`
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	configDir := envStr("FOCUSFLOW_CONFIG_DIR", platform.ConfigDir(AppName))
	baseHz := envFloat("FOCUSFLOW_BASE_HZ", 40)
	beatHz := envFloat("FOCUSFLOW_BEAT_HZ", 6)
	return Config{
		ConfigDir: configDir,
		Store:     envStr("FOCUSFLOW_STORE", StoreYAML),
		SoundsDir: envStr("FOCUSFLOW_SOUNDS_DIR", filepath.Join(configDir, "sounds")),

		SampleRate: envInt("FOCUSFLOW_SAMPLE_RATE", 44100),

		Preview:      envDuration("FOCUSFLOW_PREVIEW", 3*time.Second),
		BreakAudio:   envBool("FOCUSFLOW_BREAK_AUDIO", false),
		BaseHz:       baseHz,
		BeatHz:       beatHz,
		BreakBaseHz:  envFloat("FOCUSFLOW_BREAK_BASE_HZ", baseHz),
		BreakBeatHz:  envFloat("FOCUSFLOW_BREAK_BEAT_HZ", beatHz),
		ToneRamp:     envDuration("FOCUSFLOW_TONE_RAMP", 200*time.Millisecond),
		NoiseFadeIn:  envDuration("FOCUSFLOW_NOISE_FADE_IN", 400*time.Millisecond),
		NoiseFadeOut: envDuration("FOCUSFLOW_NOISE_FADE_OUT", 550*time.Millisecond),
	}
}

// Validate rejects values the audio engine cannot work with.
func (cfg Config) Validate() error {
	if cfg.Store != StoreYAML && cfg.Store != StoreSQLite {
		return fmt.Errorf("unknown store %q (want %s or %s)", cfg.Store, StoreYAML, StoreSQLite)
	}
	if cfg.SampleRate < 8000 || cfg.SampleRate > 192000 {
		return fmt.Errorf("sample rate %d out of range", cfg.SampleRate)
	}
	if err := cfg.Tones().Validate(); err != nil {
		return err
	}
	if cfg.Preview <= 0 {
		return fmt.Errorf("preview length must be positive, got %s", cfg.Preview)
	}
	if cfg.ToneRamp < 0 || cfg.NoiseFadeIn < 0 || cfg.NoiseFadeOut < 0 {
		return fmt.Errorf("fade windows must not be negative")
	}
	return nil
}

// Tones returns the binaural tone map. The break pair defaults to the focus
// pair.
func (cfg Config) Tones() model.ToneMap {
	return model.ToneMap{
		Focus: model.Tone{BaseHz: cfg.BaseHz, BeatHz: cfg.BeatHz},
		Break: model.Tone{BaseHz: cfg.BreakBaseHz, BeatHz: cfg.BreakBeatHz},
	}
}

// DatabasePath is the SQLite file used by the sqlite store.
func (cfg Config) DatabasePath() string {
	return filepath.Join(cfg.ConfigDir, storage.DatabaseFileName)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
