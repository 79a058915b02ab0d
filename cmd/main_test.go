package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"focusflow/internal/config"
	"focusflow/internal/core/model"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out.String()
}

func TestPresetsCommand(t *testing.T) {
	t.Setenv("FOCUSFLOW_CONFIG_DIR", t.TempDir())
	out := execute(t, "presets")
	for _, want := range []string{"Classic (25/5)", "Deep Work (50/10)", "Flow State (90/20)", "Quick (15/3)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestSoundsGenerateFollowsConfigDir(t *testing.T) {
	t.Setenv("FOCUSFLOW_CONFIG_DIR", t.TempDir())
	t.Setenv("FOCUSFLOW_SOUNDS_DIR", "")
	dir := t.TempDir()

	out := execute(t, "--config-dir", dir, "--sample-rate", "8000", "sounds", "generate", "--length", "1s")
	for _, name := range []string{"white.wav", "pink.wav", "rain.wav"} {
		path := filepath.Join(dir, "sounds", name)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
		if !strings.Contains(out, name) {
			t.Fatalf("output should list %s:\n%s", name, out)
		}
	}

	out = execute(t, "--config-dir", dir, "--sample-rate", "8000", "sounds", "list")
	if !strings.Contains(out, "Rain Sounds") || strings.Contains(out, "missing") {
		t.Fatalf("unexpected list output:\n%s", out)
	}
}

func TestInvalidStoreIsRejected(t *testing.T) {
	t.Setenv("FOCUSFLOW_CONFIG_DIR", t.TempDir())
	root := newRootCmd()
	root.SetArgs([]string{"--store", "redis", "presets"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected validation error for unknown store")
	}
}

func resolvedConfig(t *testing.T, args ...string) config.Config {
	t.Helper()
	var cfg config.Config
	out := execute(t, append(args, "config")...)
	if err := yaml.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("parse config output: %v\n%s", err, out)
	}
	return cfg
}

func TestBreakToneFlags(t *testing.T) {
	t.Setenv("FOCUSFLOW_CONFIG_DIR", t.TempDir())
	for _, key := range []string{"FOCUSFLOW_BASE_HZ", "FOCUSFLOW_BEAT_HZ", "FOCUSFLOW_BREAK_BASE_HZ", "FOCUSFLOW_BREAK_BEAT_HZ"} {
		t.Setenv(key, "")
	}

	cfg := resolvedConfig(t)
	if tones := cfg.Tones(); tones != model.DefaultToneMap() {
		t.Fatalf("expected the default tone map, got %+v", tones)
	}

	cfg = resolvedConfig(t, "--base-hz", "100", "--beat-hz", "8")
	if tones := cfg.Tones(); tones.Break != tones.Focus || tones.Focus != (model.Tone{BaseHz: 100, BeatHz: 8}) {
		t.Fatalf("break tone should follow the focus flags, got %+v", tones)
	}

	cfg = resolvedConfig(t, "--base-hz", "100", "--break-base-hz", "10", "--break-beat-hz", "4")
	want := model.ToneMap{
		Focus: model.Tone{BaseHz: 100, BeatHz: 6},
		Break: model.Tone{BaseHz: 10, BeatHz: 4},
	}
	if tones := cfg.Tones(); tones != want {
		t.Fatalf("expected %+v, got %+v", want, tones)
	}
}

func TestInvalidBreakToneIsRejected(t *testing.T) {
	t.Setenv("FOCUSFLOW_CONFIG_DIR", t.TempDir())
	root := newRootCmd()
	root.SetArgs([]string{"--break-base-hz", "0", "config"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected validation error for a zero break base")
	}
}
