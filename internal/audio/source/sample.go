package source

import (
	"errors"
	"fmt"
	"log"

	"github.com/gopxl/beep/v2"

	"focusflow/internal/audio/graph"
	"focusflow/internal/core/loop"
	"focusflow/internal/core/model"
)

// Loader decodes a named asset. asset.Library implements it.
type Loader interface {
	Load(name string) (*beep.Buffer, error)
}

// Sample loops a decoded asset through one player.
type Sample struct {
	ctx      *graph.Context
	info     model.SourceInfo
	envelope Envelope
	decibels float64

	player   *graph.Player
	loading  bool
	err      error
	disposed bool
}

// NewSample creates an unloaded sample source. decibels is the player's base level.
func NewSample(ctx *graph.Context, info model.SourceInfo, envelope Envelope, decibels float64) *Sample {
	return &Sample{ctx: ctx, info: info, envelope: envelope, decibels: decibels}
}

// Load decodes the asset off the loop and attaches it on the loop. done runs
// on the loop once the outcome is known, unless the sample was disposed meanwhile.
func (sample *Sample) Load(scheduler loop.Scheduler, loader Loader, done func()) {
	if sample.loading || sample.player != nil || sample.disposed {
		return
	}
	sample.loading = true
	name := sample.info.Asset
	scheduler.Go(func() func() {
		buffer, err := loader.Load(name)
		return func() {
			sample.loading = false
			if sample.disposed {
				return
			}
			if err := sample.attach(buffer, err); err != nil {
				log.Printf("audio: %s unavailable: %v", sample.info.Label, err)
			}
			if done != nil {
				done()
			}
		}
	})
}

func (sample *Sample) attach(buffer *beep.Buffer, loadErr error) error {
	if loadErr != nil {
		sample.err = loadErr
		return loadErr
	}
	player, err := graph.NewPlayer(sample.ctx, buffer, sample.decibels)
	if err != nil {
		sample.err = fmt.Errorf("create player: %w", err)
		return sample.err
	}
	if err := sample.ctx.Connect(player, sample.ctx.Destination()); err != nil {
		player.Dispose()
		sample.err = fmt.Errorf("connect player: %w", err)
		return sample.err
	}
	player.Gain().SetValue(0)
	sample.player = player
	sample.err = nil
	return nil
}

func (sample *Sample) Type() model.SourceType { return sample.info.Type }

func (sample *Sample) Envelope() Envelope { return sample.envelope }

func (sample *Sample) Ready() bool { return sample.player != nil }

// Loading reports whether the asset is still being decoded.
func (sample *Sample) Loading() bool { return sample.loading }

func (sample *Sample) Err() error { return sample.err }

// Start plays from silence over the fade-in, or at full level when the sample
// has no fade. A sample already playing ramps from where it is.
func (sample *Sample) Start() error {
	if sample.player == nil {
		return errors.New("sample not loaded")
	}
	gain := sample.player.Gain()
	if !sample.player.Playing() {
		if sample.envelope.In > 0 {
			gain.SetValue(0)
		} else {
			gain.SetValue(1)
		}
		if err := sample.player.Start(); err != nil {
			return fmt.Errorf("start player: %w", err)
		}
	}
	gain.RampTo(1, sample.envelope.In)
	return nil
}

func (sample *Sample) FadeOut() {
	if sample.player != nil {
		sample.player.Gain().RampTo(0, sample.envelope.Out)
	}
}

func (sample *Sample) Halt() {
	if sample.player != nil {
		sample.player.Stop()
		sample.player.Gain().SetValue(0)
	}
}

func (sample *Sample) Retune(model.Tone) {}

func (sample *Sample) Playing() bool {
	return sample.player != nil && sample.player.Playing()
}

func (sample *Sample) Level() float64 {
	if sample.player == nil || !sample.player.Playing() {
		return 0
	}
	return sample.player.Gain().Value()
}

func (sample *Sample) Dispose() {
	sample.disposed = true
	if sample.player != nil {
		sample.player.Dispose()
	}
}
