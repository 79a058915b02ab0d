// Package app exposes the user-facing operations. Every operation is posted
// to the loop and returns immediately; results are observed via snapshots.
package app

import (
	"log"
	"sync"
	"time"

	"focusflow/internal/audio/engine"
	"focusflow/internal/core/loop"
	"focusflow/internal/core/model"
	"focusflow/internal/core/session"
	"focusflow/internal/core/tasks"
	"focusflow/internal/storage"
)

// Audio is the engine as seen by the controller.
type Audio interface {
	session.AudioPort
	Configure(preference model.AudioPreference)
	SetTones(tones model.ToneMap)
	Preview(d time.Duration)
	Status() engine.Status
	Close() error
}

// Options configure the controller.
type Options struct {
	// Preview is the length of PreviewAudio.
	Preview time.Duration
	// BreakAudio is used until the user stores a choice.
	BreakAudio bool
	// Tones is used until the settings carry a tone map.
	Tones model.ToneMap
	// TickInterval overrides the one second countdown tick.
	TickInterval time.Duration
}

// Snapshot is everything a view needs to render.
type Snapshot struct {
	State          model.SessionState
	Status         session.Status
	Preset         model.Preset
	Audio          model.AudioPreference
	BreakAudio     bool
	Engine         engine.Status
	Tasks          []model.Task
	CompletedTasks int
	Reason         session.Reason
}

// Controller owns the session machine, the audio engine and the task list.
type Controller struct {
	scheduler loop.Scheduler
	store     storage.Store
	audio     Audio
	options   Options

	machine    *session.Machine
	tasks      *tasks.List
	preference model.AudioPreference
	breakAudio bool
	tones      model.ToneMap
	closed     bool

	mu          sync.Mutex
	snapshot    Snapshot
	subscribers []chan Snapshot
}

// New restores persisted preferences and builds the controller. It must run on
// the loop goroutine.
func New(scheduler loop.Scheduler, store storage.Store, audio Audio, options Options) (*Controller, error) {
	if options.Preview <= 0 {
		options.Preview = 3 * time.Second
	}
	if options.Tones == (model.ToneMap{}) {
		options.Tones = model.DefaultToneMap()
	}
	controller := &Controller{
		scheduler:  scheduler,
		store:      store,
		audio:      audio,
		options:    options,
		preference: checkSource(storage.LoadOr(store, storage.KeyAudio, model.DefaultAudioPreference()), model.SourceBinaural),
		breakAudio: storage.LoadOr(store, storage.KeyBreakAudio, options.BreakAudio),
		tones:      restoreTones(store, options.Tones),
		tasks:      tasks.NewList(storage.LoadOr(store, storage.KeyTasks, []model.Task(nil))),
	}

	preset := restorePreset(store)
	machine, err := session.New(preset, controller.policy(), scheduler, audio, session.Config{
		TickInterval: options.TickInterval,
		OnEvent:      controller.onSessionEvent,
	})
	if err != nil {
		return nil, err
	}
	controller.machine = machine
	machine.SetCompleted(storage.LoadOr(store, storage.KeyCompletedSessions, 0))
	audio.SetTones(controller.tones)
	audio.Configure(controller.preference)
	controller.publish("")
	return controller, nil
}

func restorePreset(store storage.Store) model.Preset {
	preset := storage.LoadOr(store, storage.KeyPreset, model.DefaultPreset())
	if err := preset.Validate(); err != nil {
		log.Printf("app: stored preset ignored: %v", err)
		return model.DefaultPreset()
	}
	return preset
}

func restoreTones(store storage.Store, fallback model.ToneMap) model.ToneMap {
	tones := storage.LoadOr(store, storage.KeyTones, fallback)
	if err := tones.Validate(); err != nil {
		log.Printf("app: stored tones ignored: %v", err)
		return fallback
	}
	return tones
}

// checkSource replaces an unknown source with fallback. Labels are accepted
// and normalized to their type.
func checkSource(preference model.AudioPreference, fallback model.SourceType) model.AudioPreference {
	sourceType, err := model.ParseSourceType(string(preference.Source))
	if err != nil {
		log.Printf("app: %v, using %s", err, fallback)
		sourceType = fallback
	}
	preference.Source = sourceType
	return preference
}

// Subscribe returns a channel of snapshots. Snapshots are dropped for
// subscribers whose buffer is full.
func (controller *Controller) Subscribe(buffer int) <-chan Snapshot {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.closed {
		close(ch)
		return ch
	}
	controller.subscribers = append(controller.subscribers, ch)
	return ch
}

// Snapshot returns the latest published state. Safe from any goroutine.
func (controller *Controller) Snapshot() Snapshot {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.snapshot
}

// Start runs the countdown.
func (controller *Controller) Start() { controller.post(controller.machine.Start) }

// Pause stops the countdown.
func (controller *Controller) Pause() { controller.post(controller.machine.Pause) }

// Toggle starts a paused timer or pauses a running one.
func (controller *Controller) Toggle() {
	controller.post(func() {
		if controller.machine.State().Running {
			controller.machine.Pause()
		} else {
			controller.machine.Start()
		}
	})
}

// Reset refills the current phase and pauses.
func (controller *Controller) Reset() { controller.post(controller.machine.Reset) }

// SkipPhase ends the current phase now.
func (controller *Controller) SkipPhase() { controller.post(controller.machine.SkipPhase) }

// ChangePreset switches presets; the timer is left paused.
func (controller *Controller) ChangePreset(preset model.Preset) {
	controller.post(func() {
		if err := controller.machine.ChangePreset(preset); err != nil {
			log.Printf("app: change preset: %v", err)
			return
		}
		storage.SaveOrLog(controller.store, storage.KeyPreset, preset)
	})
}

// SetAudioEnabled turns ambient audio on or off.
func (controller *Controller) SetAudioEnabled(enabled bool) {
	controller.post(func() {
		controller.preference.Enabled = enabled
		controller.applyAudio()
	})
}

// SetAudioType selects the ambient source. Unknown types are ignored.
func (controller *Controller) SetAudioType(sourceType model.SourceType) {
	controller.post(func() {
		parsed, err := model.ParseSourceType(string(sourceType))
		if err != nil {
			log.Printf("app: set audio type: %v", err)
			return
		}
		controller.preference.Source = parsed
		controller.applyAudio()
	})
}

// SetBreakAudio chooses whether audio keeps playing during breaks.
func (controller *Controller) SetBreakAudio(enabled bool) {
	controller.post(func() {
		controller.breakAudio = enabled
		storage.SaveOrLog(controller.store, storage.KeyBreakAudio, enabled)
		controller.machine.SetAudioPolicy(controller.policy())
		controller.publish("")
	})
}

// PreviewAudio plays the selected source for the preview window without
// touching the timer.
func (controller *Controller) PreviewAudio() {
	controller.post(func() {
		controller.audio.Preview(controller.options.Preview)
		controller.publish("")
		controller.scheduler.AfterFunc(controller.options.Preview, func() {
			controller.publish("")
		})
	})
}

// AddTask appends a task.
func (controller *Controller) AddTask(text string) {
	controller.post(func() {
		if _, err := controller.tasks.Add(text); err != nil {
			log.Printf("app: add task: %v", err)
			return
		}
		controller.saveTasks()
	})
}

// ToggleTask flips a task's completed flag.
func (controller *Controller) ToggleTask(id int64) {
	controller.post(func() {
		if _, err := controller.tasks.Toggle(id); err != nil {
			log.Printf("app: toggle task %d: %v", id, err)
			return
		}
		controller.saveTasks()
	})
}

// RenameTask replaces a task's text.
func (controller *Controller) RenameTask(id int64, text string) {
	controller.post(func() {
		if _, err := controller.tasks.Rename(id, text); err != nil {
			log.Printf("app: rename task %d: %v", id, err)
			return
		}
		controller.saveTasks()
	})
}

// DeleteTask removes a task.
func (controller *Controller) DeleteTask(id int64) {
	controller.post(func() {
		if err := controller.tasks.Delete(id); err != nil {
			log.Printf("app: delete task %d: %v", id, err)
			return
		}
		controller.saveTasks()
	})
}

// Reload re-applies preferences edited outside the application.
func (controller *Controller) Reload() {
	controller.post(func() {
		if preset := restorePreset(controller.store); preset != controller.machine.Preset() {
			log.Printf("app: preset changed on disk: %s", preset.Label)
			if err := controller.machine.ChangePreset(preset); err != nil {
				log.Printf("app: reload preset: %v", err)
			}
		}
		preference := checkSource(storage.LoadOr(controller.store, storage.KeyAudio, controller.preference), controller.preference.Source)
		breakAudio := storage.LoadOr(controller.store, storage.KeyBreakAudio, controller.breakAudio)
		if tones := restoreTones(controller.store, controller.tones); tones != controller.tones {
			log.Printf("app: tones changed on disk")
			controller.tones = tones
			controller.audio.SetTones(tones)
		}
		if preference != controller.preference || breakAudio != controller.breakAudio {
			log.Printf("app: audio preferences changed on disk")
			controller.preference = preference
			controller.breakAudio = breakAudio
			controller.audio.Configure(preference)
			controller.machine.SetAudioPolicy(controller.policy())
		}
		controller.publish("")
	})
}

// Close stops the timer, releases audio and closes subscriber channels.
func (controller *Controller) Close() {
	controller.post(func() {
		if controller.closed {
			return
		}
		controller.machine.Close()
		if err := controller.audio.Close(); err != nil {
			log.Printf("app: close audio: %v", err)
		}
		controller.mu.Lock()
		controller.closed = true
		subscribers := controller.subscribers
		controller.subscribers = nil
		controller.mu.Unlock()
		for _, ch := range subscribers {
			close(ch)
		}
	})
}

func (controller *Controller) post(fn func()) {
	controller.scheduler.Post(func() {
		if controller.closed {
			return
		}
		fn()
	})
}

func (controller *Controller) policy() session.AudioPolicy {
	return session.AudioPolicy{Enabled: controller.preference.Enabled, BreakAudio: controller.breakAudio}
}

func (controller *Controller) applyAudio() {
	storage.SaveOrLog(controller.store, storage.KeyAudio, controller.preference)
	controller.audio.Configure(controller.preference)
	controller.machine.SetAudioPolicy(controller.policy())
	controller.publish("")
}

func (controller *Controller) saveTasks() {
	storage.SaveOrLog(controller.store, storage.KeyTasks, controller.tasks.Items())
	controller.publish("")
}

func (controller *Controller) onSessionEvent(event session.Event) {
	switch event.Reason {
	case session.ReasonPhaseComplete:
		storage.SaveOrLog(controller.store, storage.KeyCompletedSessions, event.State.CompletedSessions)
		log.Printf("app: %s phase started, %d sessions completed", event.State.Phase, event.State.CompletedSessions)
	}
	controller.publish(event.Reason)
}

func (controller *Controller) publish(reason session.Reason) {
	snapshot := Snapshot{
		State:          controller.machine.State(),
		Status:         controller.machine.Status(),
		Preset:         controller.machine.Preset(),
		Audio:          controller.preference,
		BreakAudio:     controller.breakAudio,
		Engine:         controller.audio.Status(),
		Tasks:          controller.tasks.Items(),
		CompletedTasks: controller.tasks.CompletedCount(),
		Reason:         reason,
	}

	controller.mu.Lock()
	controller.snapshot = snapshot
	subscribers := append([]chan Snapshot(nil), controller.subscribers...)
	controller.mu.Unlock()

	for _, ch := range subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
