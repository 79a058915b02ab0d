package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"focusflow/internal/core/model"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnPreferences func()
	OnToggle      func()
	OnReset       func()
	OnSkip        func()
	OnPreset      func(model.Preset)
	OnPreview     func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	toggleItem  *fyne.MenuItem
	skipItem    *fyne.MenuItem
	presetItem  *fyne.MenuItem
	callbacks   Callbacks
	running     bool
	phase       model.Phase
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		phase:     model.PhaseFocus,
	}

	manager.statusItem = fyne.NewMenuItem("Status: ready", nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", func() {
		if manager.callbacks.OnToggle != nil {
			manager.callbacks.OnToggle()
		}
	})

	manager.skipItem = fyne.NewMenuItem("Skip to break", func() {
		if manager.callbacks.OnSkip != nil {
			manager.callbacks.OnSkip()
		}
	})

	presets := make([]*fyne.MenuItem, 0, len(model.Presets))
	for _, preset := range model.Presets {
		preset := preset
		presets = append(presets, fyne.NewMenuItem(preset.Label, func() {
			if manager.callbacks.OnPreset != nil {
				manager.callbacks.OnPreset(preset)
			}
		}))
	}
	manager.presetItem = fyne.NewMenuItem("Preset", nil)
	manager.presetItem.ChildMenu = fyne.NewMenu("", presets...)

	manager.refreshMenu()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetRunning updates the start/pause item.
func (manager *Manager) SetRunning(running bool) {
	manager.running = running
	manager.toggleItem.Label = ToggleLabel(running)
	manager.refreshStatus()
}

// SetPhase updates the skip item for the current phase.
func (manager *Manager) SetPhase(phase model.Phase) {
	manager.phase = phase
	manager.skipItem.Label = SkipLabel(phase)
	manager.refreshMenu()
}

// SetActivePreset ticks the active preset in the submenu.
func (manager *Manager) SetActivePreset(preset model.Preset) {
	for _, item := range manager.presetItem.ChildMenu.Items {
		item.Checked = item.Label == preset.Label
	}
	manager.refreshMenu()
}

// ToggleLabel returns the start/pause menu label.
func ToggleLabel(running bool) string {
	if running {
		return "Pause"
	}
	return "Start"
}

// SkipLabel returns the skip menu label for the phase being skipped.
func SkipLabel(phase model.Phase) string {
	if phase == model.PhaseBreak {
		return "Skip to focus"
	}
	return "Skip to break"
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if !manager.running && status != "" {
		status = fmt.Sprintf("%s (paused)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("FocusFlow",
		manager.statusItem,
		fyne.NewMenuItem("Show timer", func() {
			if manager.callbacks.OnShow != nil {
				manager.callbacks.OnShow()
			}
		}),
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		fyne.NewMenuItem("Reset", func() {
			if manager.callbacks.OnReset != nil {
				manager.callbacks.OnReset()
			}
		}),
		manager.skipItem,
		manager.presetItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Test sound", func() {
			if manager.callbacks.OnPreview != nil {
				manager.callbacks.OnPreview()
			}
		}),
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	))
}
