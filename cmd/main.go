package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"focusflow/internal/app"
	"focusflow/internal/audio/asset"
	"focusflow/internal/config"
	"focusflow/internal/core/model"
	"focusflow/internal/core/session"
	"focusflow/internal/platform"
	"focusflow/internal/ui/animation"
	"focusflow/internal/ui/preferences"
	"focusflow/internal/ui/terminal"
	"focusflow/internal/ui/timerview"
	"focusflow/internal/ui/tray"
	"focusflow/resources"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "focusflow",
		Short:         "Focus timer with ambient audio",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("config-dir") && !flags.Changed("sounds-dir") && os.Getenv("FOCUSFLOW_SOUNDS_DIR") == "" {
				cfg.SoundsDir = filepath.Join(cfg.ConfigDir, "sounds")
			}
			if followsFocus(flags, "base-hz", "break-base-hz", "FOCUSFLOW_BREAK_BASE_HZ") {
				cfg.BreakBaseHz = cfg.BaseHz
			}
			if followsFocus(flags, "beat-hz", "break-beat-hz", "FOCUSFLOW_BREAK_BEAT_HZ") {
				cfg.BreakBeatHz = cfg.BeatHz
			}
			return cfg.Validate()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGUI(cfg)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&cfg.ConfigDir, "config-dir", cfg.ConfigDir, "directory for settings and sounds")
	flags.StringVar(&cfg.Store, "store", cfg.Store, "preference backend (yaml or sqlite)")
	flags.StringVar(&cfg.SoundsDir, "sounds-dir", cfg.SoundsDir, "directory of ambient loops")
	flags.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "audio output sample rate")
	flags.DurationVar(&cfg.Preview, "preview", cfg.Preview, "length of the audio test")
	flags.BoolVar(&cfg.BreakAudio, "break-audio", cfg.BreakAudio, "keep audio playing during breaks by default")
	flags.Float64Var(&cfg.BaseHz, "base-hz", cfg.BaseHz, "binaural base frequency during focus")
	flags.Float64Var(&cfg.BeatHz, "beat-hz", cfg.BeatHz, "binaural beat frequency during focus")
	flags.Float64Var(&cfg.BreakBaseHz, "break-base-hz", cfg.BreakBaseHz, "binaural base frequency during breaks (default: focus value)")
	flags.Float64Var(&cfg.BreakBeatHz, "break-beat-hz", cfg.BreakBeatHz, "binaural beat frequency during breaks (default: focus value)")

	root.AddCommand(newGUICmd(&cfg))
	root.AddCommand(newTUICmd(&cfg))
	root.AddCommand(newSoundsCmd(&cfg))
	root.AddCommand(newPresetsCmd())
	root.AddCommand(newConfigCmd(&cfg))
	return root
}

// followsFocus reports whether a break tone flag should copy the focus flag
// that was set on the command line.
func followsFocus(flags *pflag.FlagSet, focus, brk, env string) bool {
	return flags.Changed(focus) && !flags.Changed(brk) && os.Getenv(env) == ""
}

func newGUICmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Run the desktop timer (default)",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runGUI(*cfg)
		},
	}
}

func newTUICmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal timer",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(*cfg)
		},
	}
}

func newSoundsCmd(cfg *config.Config) *cobra.Command {
	sounds := &cobra.Command{Use: "sounds", Short: "Manage ambient sound loops"}

	var overwrite bool
	var length = soundLoopLength
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Render the noise and rain loops",
		Long:  fmt.Sprintf("Render seamless WAV loops (%s) into the sounds directory.", strings.Join(sortedSynths(), ", ")),
		RunE: func(cmd *cobra.Command, _ []string) error {
			written, err := asset.Generate(cfg.SoundsDir, cfg.SampleRate, length, overwrite)
			if err != nil {
				return err
			}
			if len(written) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "all loops already present in %s\n", cfg.SoundsDir)
			}
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	generate.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing files")
	generate.Flags().DurationVar(&length, "length", length, "loop length")

	list := &cobra.Command{
		Use:   "list",
		Short: "List audio sources and their assets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			library := asset.NewLibrary(os.DirFS(cfg.SoundsDir), cfg.SampleRate)
			for _, info := range model.Sources {
				state := "synthesized"
				if info.Asset != "" {
					state = "missing"
					if library.Has(info.Asset) {
						state = "ok"
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-16s %-12s %s\n", info.Type, info.Label, state, info.Description)
			}
			return nil
		},
	}

	sounds.AddCommand(generate, list)
	return sounds
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in timer presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, preset := range model.Presets {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s focus %3d min  break %3d min\n", preset.Label, preset.FocusMinutes, preset.BreakMinutes)
			}
			return nil
		},
	}
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func acquireInstance(onActivate func()) (*platform.InstanceGuard, error) {
	guard, err := platform.AcquireSingleInstance(config.AppName, onActivate)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		log.Printf("single instance: already running, activating it")
		if activateErr := platform.ActivateRunning(config.AppName); activateErr != nil {
			return nil, activateErr
		}
		return nil, err
	}
	return guard, err
}

func runTUI(cfg config.Config) error {
	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	logFile, err := tea.LogToFile(filepath.Join(cfg.ConfigDir, "focusflow.log"), "")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	guard, err := acquireInstance(nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	rt, err := startRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	updates := rt.controller.Subscribe(16)
	return terminal.Run(rt.controller, rt.controller.Snapshot(), updates)
}

func runGUI(cfg config.Config) error {
	fyneApp := fyneapp.NewWithID("com.focusflow.app")
	fyneApp.SetIcon(resources.MustIcon(resources.IconLogo))

	var view *timerview.Window
	guard, err := acquireInstance(func() {
		fyne.Do(func() {
			if view != nil {
				view.Show()
			}
		})
	})
	if errors.Is(err, platform.ErrAlreadyRunning) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = guard.Release()
	}()

	rt, err := startRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.close()
	controller := rt.controller

	breathing := animation.New(animation.DefaultConfig(), func(resource fyne.Resource) {
		if view != nil {
			view.SetSprite(resource)
		}
	})
	view = timerview.New(fyneApp, controller, animation.BreathSpec{
		Full:  resources.MustIcon(resources.IconBreathFull),
		Empty: resources.MustIcon(resources.IconBreathEmpty),
	}, breathing)
	defer view.Close()

	prefsWindow := preferences.New(fyneApp, preferences.FromSnapshot(controller.Snapshot()), func(updated preferences.Settings) {
		updated.Apply(preferences.FromSnapshot(controller.Snapshot()), controller)
	}, controller.PreviewAudio)

	icons := map[session.Status]fyne.Resource{
		session.StatusIdle:         resources.MustIcon(resources.IconPaused),
		session.StatusRunningFocus: resources.MustIcon(resources.IconFocus),
		session.StatusRunningBreak: resources.MustIcon(resources.IconBreak),
	}

	var trayManager *tray.Manager
	desktopApp, hasTray := fyneApp.(desktop.App)
	if hasTray {
		trayManager = tray.New(desktopApp, tray.Callbacks{
			OnShow: view.Show,
			OnPreferences: func() {
				prefsWindow.UpdateSettings(preferences.FromSnapshot(controller.Snapshot()))
				prefsWindow.Show()
			},
			OnToggle:  controller.Toggle,
			OnReset:   controller.Reset,
			OnSkip:    controller.SkipPhase,
			OnPreset:  controller.ChangePreset,
			OnPreview: controller.PreviewAudio,
			OnQuit:    fyneApp.Quit,
		})
		desktopApp.SetSystemTrayIcon(icons[session.StatusIdle])
		view.Window().SetCloseIntercept(view.Window().Hide)
	} else {
		log.Printf("system tray unsupported on this platform")
		view.Window().SetMaster()
	}

	render := func(snapshot app.Snapshot) {
		view.Render(snapshot)
		if trayManager == nil {
			return
		}
		trayManager.SetStatus(snapshot.StatusLine())
		trayManager.SetRunning(snapshot.State.Running)
		trayManager.SetPhase(snapshot.State.Phase)
		trayManager.SetActivePreset(snapshot.Preset)
		desktopApp.SetSystemTrayIcon(icons[snapshot.Status])
	}
	render(controller.Snapshot())

	updates := controller.Subscribe(16)
	go func() {
		for snapshot := range updates {
			snapshot := snapshot
			fyne.Do(func() { render(snapshot) })
		}
	}()

	view.Show()
	fyneApp.Run()
	return nil
}

func sortedSynths() []string {
	names := make([]string, 0, len(asset.Synths))
	for name := range asset.Synths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
