package preferences

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"focusflow/internal/core/model"
)

// Window handles the preferences UI.
type Window struct {
	window      fyne.Window
	settings    Settings
	onSave      func(Settings)
	onPreview   func()
	preset      *widget.Select
	audioCheck  *widget.Check
	source      *widget.Select
	description *widget.Label
	breakCheck  *widget.Check

	saveButton     *widget.Button
	defaultsButton *widget.Button
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings), onPreview func()) *Window {
	window := app.NewWindow("FocusFlow Settings")

	preset := widget.NewSelect(PresetLabels(), nil)
	audioCheck := widget.NewCheck("Play ambient audio during focus", nil)
	description := widget.NewLabel("")
	description.Wrapping = fyne.TextWrapWord
	source := widget.NewSelect(SourceLabels(), func(label string) {
		if sourceType, ok := SourceForLabel(label); ok {
			description.SetText(sourceType.Info().Description)
		}
	})
	breakCheck := widget.NewCheck("Keep playing during breaks", nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Timer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Preset"), preset),
		widget.NewLabelWithStyle("Audio", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		audioCheck,
		container.NewHBox(widget.NewLabel("Sound"), source),
		description,
		breakCheck,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	previewButton := widget.NewButton("Test sound", nil)
	defaultsButton := widget.NewButton("Defaults", nil)
	buttons := container.NewHBox(saveButton, previewButton, layout.NewSpacer(), defaultsButton, cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(420, 360))
	window.SetCloseIntercept(window.Hide)

	prefs := &Window{
		window:      window,
		onSave:      onSave,
		onPreview:   onPreview,
		preset:      preset,
		audioCheck:  audioCheck,
		source:      source,
		description: description,
		breakCheck:  breakCheck,

		saveButton:     saveButton,
		defaultsButton: defaultsButton,
	}
	prefs.UpdateSettings(settings)

	saveButton.OnTapped = prefs.handleSave
	previewButton.OnTapped = func() {
		// Preview plays the stored selection, so save first.
		prefs.save()
		if prefs.onPreview != nil {
			prefs.onPreview()
		}
	}
	// Defaults only fills the form; nothing is applied until Save.
	defaultsButton.OnTapped = prefs.fill
	cancelButton.OnTapped = func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	}

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.show(settings)
}

func (prefs *Window) fill() {
	prefs.show(DefaultSettings())
}

func (prefs *Window) show(settings Settings) {
	prefs.preset.SetSelected(settings.Preset.Label)
	prefs.audioCheck.SetChecked(settings.AudioEnabled)
	prefs.source.SetSelected(settings.Source.Info().Label)
	prefs.breakCheck.SetChecked(settings.BreakAudio)
}

func (prefs *Window) handleSave() {
	prefs.save()
	prefs.window.Hide()
}

func (prefs *Window) save() {
	settings := prefs.settings

	if preset, ok := model.FindPreset(prefs.preset.Selected); ok {
		settings.Preset = preset
	}
	if sourceType, ok := SourceForLabel(prefs.source.Selected); ok {
		settings.Source = sourceType
	}
	settings.AudioEnabled = prefs.audioCheck.Checked
	settings.BreakAudio = prefs.breakCheck.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
}
