// Package timerview is the main timer window.
package timerview

import (
	"context"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"focusflow/internal/app"
	"focusflow/internal/core/model"
	"focusflow/internal/ui/animation"
)

// Actions are the controller operations the window triggers.
type Actions interface {
	Toggle()
	Reset()
	SkipPhase()
	AddTask(text string)
	ToggleTask(id int64)
	DeleteTask(id int64)
}

var (
	focusColor = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	breakColor = color.NRGBA{R: 95, G: 179, B: 161, A: 255}
	textColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Window manages the timer UI.
type Window struct {
	window        fyne.Window
	actions       Actions
	breathing     *animation.Engine
	breath        animation.BreathSpec
	cancelCtx     context.CancelFunc
	image         *canvas.Image
	titleLabel    *canvas.Text
	subtitleLabel *canvas.Text
	cueLabel      *canvas.Text
	timerLabel    *canvas.Text
	progress      *widget.ProgressBar
	toggleButton  *widget.Button
	skipButton    *widget.Button
	audioLabel    *widget.Label
	taskSummary   *widget.Label
	taskList      *widget.List
	tasks         []model.Task
	phase         model.Phase
}

// New creates the timer window. The returned window is hidden.
func New(fyneApp fyne.App, actions Actions, breath animation.BreathSpec, breathing *animation.Engine) *Window {
	window := fyneApp.NewWindow("FocusFlow")
	if fyneApp.Icon() != nil {
		window.SetIcon(fyneApp.Icon())
	}

	view := &Window{
		window:    window,
		actions:   actions,
		breathing: breathing,
		breath:    breath,
		phase:     model.PhaseFocus,
	}

	view.image = canvas.NewImageFromResource(breath.Empty)
	view.image.FillMode = canvas.ImageFillContain
	view.image.Hide()

	view.titleLabel = canvas.NewText("Focus", focusColor)
	view.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	view.titleLabel.TextSize = 21

	view.subtitleLabel = canvas.NewText("", textColor)
	view.subtitleLabel.TextSize = 14

	view.cueLabel = canvas.NewText("", breakColor)
	view.cueLabel.TextSize = 17

	view.timerLabel = canvas.NewText("--:--", focusColor)
	view.timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	view.timerLabel.TextSize = 48

	view.progress = widget.NewProgressBar()
	view.progress.TextFormatter = func() string { return "" }

	view.toggleButton = widget.NewButton("Start", actions.Toggle)
	view.skipButton = widget.NewButton("Skip to break", actions.SkipPhase)
	resetButton := widget.NewButton("Reset", actions.Reset)

	view.audioLabel = widget.NewLabel("")
	view.taskSummary = widget.NewLabel("")

	entry := widget.NewEntry()
	entry.SetPlaceHolder("Add a task")
	entry.OnSubmitted = func(text string) {
		actions.AddTask(text)
		entry.SetText("")
	}
	addButton := widget.NewButton("Add", func() { entry.OnSubmitted(entry.Text) })

	view.taskList = widget.NewList(
		func() int { return len(view.tasks) },
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewCheck("", nil), layout.NewSpacer(), widget.NewButton("Delete", nil))
		},
		view.bindTask,
	)

	timerPanel := container.New(&timerPanelLayout{}, view.titleLabel, view.subtitleLabel, view.cueLabel, view.timerLabel)
	header := container.NewGridWithColumns(2, timerPanel, view.image)
	controls := container.NewHBox(view.toggleButton, resetButton, view.skipButton, layout.NewSpacer(), view.audioLabel)
	top := container.NewVBox(header, view.progress, controls, widget.NewSeparator(), view.taskSummary)
	bottom := container.NewBorder(nil, nil, nil, addButton, entry)
	window.SetContent(container.NewBorder(top, bottom, nil, nil, view.taskList))
	window.Resize(fyne.NewSize(520, 560))

	if breathing != nil {
		breathing.SetOnCue(func(cue animation.Cue) {
			fyne.Do(func() {
				view.cueLabel.Text = cue.String()
				view.cueLabel.Refresh()
			})
		})
	}

	return view
}

// Window returns the underlying fyne window.
func (view *Window) Window() fyne.Window {
	return view.window
}

// Show displays the window and brings it to the front.
func (view *Window) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// SetSprite updates the breathing image. Safe from any goroutine.
func (view *Window) SetSprite(resource fyne.Resource) {
	fyne.Do(func() {
		view.image.Resource = resource
		view.image.Refresh()
	})
}

// Render draws a snapshot. It must run on the fyne goroutine.
func (view *Window) Render(snapshot app.Snapshot) {
	state := snapshot.State
	accent := focusColor
	if state.Phase == model.PhaseBreak {
		accent = breakColor
	}

	view.titleLabel.Text = app.PhaseTitle(state.Phase)
	view.titleLabel.Color = accent
	view.titleLabel.Refresh()
	view.subtitleLabel.Text = snapshot.Preset.Label
	view.subtitleLabel.Refresh()
	view.timerLabel.Text = state.Remaining()
	view.timerLabel.Color = accent
	view.timerLabel.Refresh()
	view.progress.SetValue(snapshot.Progress())

	view.toggleButton.SetText(toggleText(state.Running))
	if state.Phase == model.PhaseBreak {
		view.skipButton.SetText("Skip to focus")
	} else {
		view.skipButton.SetText("Skip to break")
	}
	view.audioLabel.SetText(snapshot.AudioLine())
	view.taskSummary.SetText(snapshot.TaskSummary())

	view.tasks = snapshot.Tasks
	view.taskList.Refresh()

	view.setPhase(state.Phase, state.Running)
}

// Close stops the breathing guide.
func (view *Window) Close() {
	view.stopBreathing()
}

func (view *Window) setPhase(phase model.Phase, running bool) {
	breathing := phase == model.PhaseBreak && running
	if breathing == (view.cancelCtx != nil) && phase == view.phase {
		return
	}
	view.phase = phase
	view.stopBreathing()
	if !breathing || view.breathing == nil {
		view.image.Hide()
		view.cueLabel.Text = ""
		view.cueLabel.Refresh()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	view.cancelCtx = cancel
	view.image.Show()
	view.breathing.StartBreathing(ctx, view.breath)
}

func (view *Window) stopBreathing() {
	if view.cancelCtx != nil {
		view.cancelCtx()
		view.cancelCtx = nil
	}
	if view.breathing != nil {
		view.breathing.Stop()
	}
}

func (view *Window) bindTask(id widget.ListItemID, object fyne.CanvasObject) {
	if id >= len(view.tasks) {
		return
	}
	task := view.tasks[id]
	row := object.(*fyne.Container)
	check := row.Objects[0].(*widget.Check)
	remove := row.Objects[2].(*widget.Button)

	check.OnChanged = nil
	check.SetText(task.Text)
	check.SetChecked(task.Completed)
	check.OnChanged = func(bool) { view.actions.ToggleTask(task.ID) }
	remove.OnTapped = func() { view.actions.DeleteTask(task.ID) }
}

func toggleText(running bool) string {
	if running {
		return "Pause"
	}
	return "Start"
}

type timerPanelLayout struct{}

func (layout *timerPanelLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 4 {
		return
	}
	title := objects[0]
	subtitle := objects[1]
	cue := objects[2]
	timer := objects[3]

	pad := size.Height * 0.05
	availableWidth := size.Width - pad*2
	if availableWidth < 0 {
		availableWidth = 0
	}

	titleSize := title.MinSize()
	title.Move(fyne.NewPos(pad, pad))
	title.Resize(fyne.NewSize(availableWidth, titleSize.Height))

	subtitleSize := subtitle.MinSize()
	subtitleY := pad + titleSize.Height + 6
	subtitle.Move(fyne.NewPos(pad, subtitleY))
	subtitle.Resize(fyne.NewSize(availableWidth, subtitleSize.Height))

	cueSize := cue.MinSize()
	cueY := subtitleY + subtitleSize.Height + 8
	cue.Move(fyne.NewPos(pad, cueY))
	cue.Resize(fyne.NewSize(availableWidth, cueSize.Height))

	timerSize := timer.MinSize()
	timerY := size.Height - pad - timerSize.Height
	if timerY < 0 {
		timerY = 0
	}
	timer.Move(fyne.NewPos(pad, timerY))
	timer.Resize(timerSize)
}

func (layout *timerPanelLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 4 {
		return fyne.NewSize(0, 0)
	}
	width := float32(0)
	height := float32(40)
	for _, object := range objects[:4] {
		size := object.MinSize()
		if size.Width > width {
			width = size.Width
		}
		height += size.Height
	}
	return fyne.NewSize(width+20, height)
}
