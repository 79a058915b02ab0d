// Package engine keeps exactly one sound source and reconciles it with what
// the timer and the user want to hear. An Engine is owned by the loop
// goroutine; asynchronous work (device activation, asset decoding) runs on
// workers and re-enters through the scheduler, re-checking the desired state.
package engine

import (
	"log"
	"time"

	"focusflow/internal/audio/graph"
	"focusflow/internal/audio/source"
	"focusflow/internal/core/loop"
	"focusflow/internal/core/model"
)

// SourceState is the lifecycle of the active source.
type SourceState string

const (
	StateStopped  SourceState = "stopped"
	StateStarting SourceState = "starting"
	StateEngaged  SourceState = "engaged"
	StateStopping SourceState = "stopping"
)

// Options are the engine's tuning knobs.
type Options struct {
	Tones model.ToneMap
	// ToneRamp is the binaural fade and glide window.
	ToneRamp time.Duration
	// NoiseFadeIn and NoiseFadeOut apply to sample types that fade.
	NoiseFadeIn  time.Duration
	NoiseFadeOut time.Duration
	// SampleDecibels is the base level of sample playback.
	SampleDecibels float64
}

// DefaultOptions returns the stock fade windows and tones.
func DefaultOptions() Options {
	return Options{
		Tones:          model.DefaultToneMap(),
		ToneRamp:       200 * time.Millisecond,
		NoiseFadeIn:    400 * time.Millisecond,
		NoiseFadeOut:   550 * time.Millisecond,
		SampleDecibels: -20,
	}
}

// Status is a snapshot for observers.
type Status struct {
	Preference    model.AudioPreference
	State         SourceState
	Loaded        bool
	LoadErr       error
	Activated     bool
	ActivationErr error
	Previewing    bool
	Level         float64
	// Tone is the binaural pair of the current phase.
	Tone model.Tone
}

// Engine drives the graph for the selected source.
type Engine struct {
	ctx       *graph.Context
	scheduler loop.Scheduler
	loader    source.Loader
	options   Options

	preference model.AudioPreference
	phase      model.Phase
	source     source.Source
	state      SourceState
	generation uint64
	fade       loop.Task

	intent      bool
	preview     bool
	previewTask loop.Task

	activating    bool
	activationErr error
	closed        bool
}

// New creates an engine with nothing selected.
func New(ctx *graph.Context, scheduler loop.Scheduler, loader source.Loader, options Options) *Engine {
	return &Engine{
		ctx:       ctx,
		scheduler: scheduler,
		loader:    loader,
		options:   options,
		phase:     model.PhaseFocus,
		state:     StateStopped,
	}
}

// Configure selects the source. The previous source is torn down completely
// before the new one is built, so two sources never play at once. Selecting
// the current type again keeps a healthy source and rebuilds a failed one.
// Unknown source types are ignored.
func (engine *Engine) Configure(preference model.AudioPreference) {
	if engine.closed {
		return
	}
	if _, err := model.ParseSourceType(string(preference.Source)); err != nil {
		log.Printf("audio: configure: %v", err)
		return
	}
	if preference == engine.preference && engine.source != nil && engine.source.Err() == nil {
		return
	}
	engine.teardown()
	engine.preference = preference
	if !preference.Enabled {
		log.Printf("audio: disabled")
		return
	}

	built, err := engine.build(preference.Source)
	if err != nil {
		log.Printf("audio: build %s: %v", preference.Source, err)
		return
	}
	engine.source = built
	log.Printf("audio: selected %s", preference.Source.Info().Label)
	engine.reconcile()
}

// Engage records that the timer wants sound.
func (engine *Engine) Engage() {
	engine.intent = true
	engine.reconcile()
}

// Disengage records that the timer wants silence. It is idempotent.
func (engine *Engine) Disengage() {
	engine.intent = false
	engine.reconcile()
}

// Preview plays the selected source for d regardless of the timer. A new
// preview replaces the running one; when it ends only sound the timer does not
// want is silenced.
func (engine *Engine) Preview(d time.Duration) {
	if engine.closed {
		return
	}
	if engine.previewTask != nil {
		engine.previewTask.Cancel()
	}
	engine.preview = true
	engine.reconcile()
	engine.previewTask = engine.scheduler.AfterFunc(d, func() {
		engine.previewTask = nil
		engine.preview = false
		engine.reconcile()
	})
}

// SetPhase retunes the binaural source to the phase's tone.
func (engine *Engine) SetPhase(phase model.Phase) {
	engine.phase = phase
	if engine.source != nil {
		engine.source.Retune(engine.options.Tones.For(phase))
	}
}

// SetTones replaces the per-phase tone map and retunes the active source.
func (engine *Engine) SetTones(tones model.ToneMap) {
	engine.options.Tones = tones
	engine.SetPhase(engine.phase)
}

// State returns the state of the active source.
func (engine *Engine) State() SourceState {
	return engine.state
}

// Status returns a snapshot of the engine.
func (engine *Engine) Status() Status {
	status := Status{
		Preference:    engine.preference,
		State:         engine.state,
		Activated:     engine.ctx.State() == graph.StateRunning,
		ActivationErr: engine.activationErr,
		Previewing:    engine.preview,
		Tone:          engine.options.Tones.For(engine.phase),
	}
	if engine.source != nil {
		status.Loaded = engine.source.Ready()
		status.LoadErr = engine.source.Err()
		status.Level = engine.source.Level()
	}
	return status
}

// Close tears down the source and the context.
func (engine *Engine) Close() error {
	if engine.closed {
		return nil
	}
	engine.teardown()
	if engine.previewTask != nil {
		engine.previewTask.Cancel()
		engine.previewTask = nil
	}
	engine.closed = true
	return engine.ctx.Close()
}

func (engine *Engine) build(sourceType model.SourceType) (source.Source, error) {
	info := sourceType.Info()
	if !sourceType.IsSample() {
		envelope := source.Envelope{In: engine.options.ToneRamp, Out: engine.options.ToneRamp}
		return source.NewBinaural(engine.ctx, engine.options.Tones.For(engine.phase), envelope)
	}

	var envelope source.Envelope
	if info.Fades {
		envelope = source.Envelope{In: engine.options.NoiseFadeIn, Out: engine.options.NoiseFadeOut}
	}
	sample := source.NewSample(engine.ctx, info, envelope, engine.options.SampleDecibels)
	sample.Load(engine.scheduler, engine.loader, engine.reconcile)
	return sample, nil
}

func (engine *Engine) desired() bool {
	return engine.preference.Enabled && (engine.intent || engine.preview)
}

func (engine *Engine) reconcile() {
	if engine.source == nil || engine.closed {
		return
	}
	if engine.desired() {
		engine.start()
	} else {
		engine.stop()
	}
}

func (engine *Engine) start() {
	active := engine.source
	switch {
	case engine.state == StateEngaged:
		return
	case engine.state == StateStarting && active.Playing():
		return
	}

	if err := active.Err(); err != nil {
		engine.state = StateStopped
		return
	}
	if !active.Ready() {
		// Loading; the load continuation reconciles again.
		engine.state = StateStarting
		return
	}
	if engine.ctx.State() != graph.StateRunning {
		engine.state = StateStarting
		engine.activate()
		return
	}

	engine.cancelFade()
	if err := active.Start(); err != nil {
		log.Printf("audio: start %s: %v", active.Type(), err)
		active.Halt()
		engine.state = StateStopped
		return
	}
	fadeIn := active.Envelope().In
	if fadeIn <= 0 {
		engine.state = StateEngaged
		return
	}
	engine.state = StateStarting
	engine.after(fadeIn, StateStarting, func() {
		engine.state = StateEngaged
	})
}

func (engine *Engine) stop() {
	active := engine.source
	switch engine.state {
	case StateStopped, StateStopping:
		return
	case StateStarting:
		if !active.Playing() {
			engine.state = StateStopped
			return
		}
	}

	engine.cancelFade()
	fadeOut := active.Envelope().Out
	if fadeOut <= 0 {
		active.Halt()
		engine.state = StateStopped
		return
	}
	active.FadeOut()
	engine.state = StateStopping
	engine.after(fadeOut, StateStopping, func() {
		active.Halt()
		engine.state = StateStopped
	})
}

// after runs fn once d has passed, provided no other transition happened
// in between and the engine is still in state.
func (engine *Engine) after(d time.Duration, state SourceState, fn func()) {
	generation := engine.generation
	engine.fade = engine.scheduler.AfterFunc(d, func() {
		if engine.generation != generation || engine.state != state {
			return
		}
		engine.fade = nil
		fn()
	})
}

func (engine *Engine) cancelFade() {
	engine.generation++
	if engine.fade != nil {
		engine.fade.Cancel()
		engine.fade = nil
	}
}

func (engine *Engine) activate() {
	if engine.activating {
		return
	}
	engine.activating = true
	ctx := engine.ctx
	engine.scheduler.Go(func() func() {
		err := ctx.Resume()
		return func() {
			engine.activating = false
			if err != nil {
				log.Printf("audio: activation failed: %v", err)
				engine.activationErr = err
				if engine.state == StateStarting && (engine.source == nil || !engine.source.Playing()) {
					engine.state = StateStopped
				}
				return
			}
			engine.activationErr = nil
			engine.reconcile()
		}
	})
}

func (engine *Engine) teardown() {
	engine.cancelFade()
	if engine.source != nil {
		engine.source.Halt()
		engine.source.Dispose()
		engine.source = nil
	}
	engine.state = StateStopped
}
