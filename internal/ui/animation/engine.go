// Package animation runs the breathing guide shown during breaks.
package animation

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// Cue is one step of the breathing cycle.
type Cue int

const (
	CueInhale Cue = iota
	CueHold
	CueExhale
	CueRest
)

// String returns the instruction shown for the cue.
func (cue Cue) String() string {
	switch cue {
	case CueInhale:
		return "Breathe in"
	case CueHold:
		return "Hold"
	case CueExhale:
		return "Breathe out"
	case CueRest:
		return "Rest"
	default:
		return ""
	}
}

// Range defines a duration range with random sampling.
type Range struct {
	Min time.Duration
	Max time.Duration
}

// Random returns a random duration within the range.
func (value Range) Random(rng *rand.Rand) time.Duration {
	if value.Max <= value.Min {
		return value.Min
	}
	delta := value.Max - value.Min
	return value.Min + time.Duration(rng.Int63n(int64(delta)))
}

// Config contains the length of each cue.
type Config struct {
	Inhale Range
	Hold   Range
	Exhale Range
	Rest   Range
}

// BreathSpec defines the images for the two ends of a breath.
type BreathSpec struct {
	Full  fyne.Resource
	Empty fyne.Resource
}

// Engine drives the breathing guide.
type Engine struct {
	mu           sync.Mutex
	config       Config
	updateSprite func(fyne.Resource)
	onCue        func(Cue)
	cancel       context.CancelFunc
	rng          *rand.Rand
}

// New creates a new animation engine. updateSprite may be nil.
func New(config Config, updateSprite func(fyne.Resource)) *Engine {
	if updateSprite == nil {
		updateSprite = func(fyne.Resource) {}
	}
	return &Engine{
		config:       config,
		updateSprite: updateSprite,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetOnCue sets a callback fired at every cue change.
func (engine *Engine) SetOnCue(handler func(Cue)) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.onCue = handler
}

// StartBreathing cycles the breathing cues until ctx ends or Stop is called.
func (engine *Engine) StartBreathing(ctx context.Context, breath BreathSpec) {
	engine.start(ctx, func(runCtx context.Context) {
		for {
			if !engine.step(runCtx, CueInhale, breath.Full, engine.config.Inhale) {
				return
			}
			if !engine.step(runCtx, CueHold, breath.Full, engine.config.Hold) {
				return
			}
			if !engine.step(runCtx, CueExhale, breath.Empty, engine.config.Exhale) {
				return
			}
			if !engine.step(runCtx, CueRest, breath.Empty, engine.config.Rest) {
				return
			}
		}
	})
}

// Stop terminates any active animation.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.cancel != nil {
		engine.cancel()
		engine.cancel = nil
	}
}

func (engine *Engine) start(parent context.Context, run func(context.Context)) {
	engine.mu.Lock()
	if engine.cancel != nil {
		engine.cancel()
	}
	runCtx, cancel := context.WithCancel(parent)
	engine.cancel = cancel
	engine.mu.Unlock()

	go run(runCtx)
}

func (engine *Engine) step(ctx context.Context, cue Cue, sprite fyne.Resource, length Range) bool {
	if ctx.Err() != nil {
		return false
	}
	engine.notifyCue(cue)
	if sprite != nil {
		engine.updateSprite(sprite)
	}
	engine.mu.Lock()
	duration := length.Random(engine.rng)
	engine.mu.Unlock()
	return sleepWithContext(ctx, duration)
}

func (engine *Engine) notifyCue(cue Cue) {
	engine.mu.Lock()
	handler := engine.onCue
	engine.mu.Unlock()
	if handler != nil {
		handler(cue)
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
