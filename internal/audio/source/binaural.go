package source

import (
	"errors"
	"fmt"

	"focusflow/internal/audio/graph"
	"focusflow/internal/core/model"
)

// Binaural plays two sine oscillators hard-panned to opposite ears.
type Binaural struct {
	envelope Envelope
	left     voice
	right    voice
	tone     model.Tone
}

type voice struct {
	oscillator *graph.Oscillator
	gain       *graph.Gain
	panner     *graph.Panner
}

// NewBinaural wires left and right voices into the context destination. Both
// start silent. The envelope's In window also sets the retune glide.
func NewBinaural(ctx *graph.Context, tone model.Tone, envelope Envelope) (*Binaural, error) {
	binaural := &Binaural{envelope: envelope, tone: tone}
	var err error
	if binaural.left, err = newVoice(ctx, tone.LeftHz(), -1); err != nil {
		return nil, fmt.Errorf("left voice: %w", err)
	}
	if binaural.right, err = newVoice(ctx, tone.RightHz(), 1); err != nil {
		binaural.left.dispose()
		return nil, fmt.Errorf("right voice: %w", err)
	}
	return binaural, nil
}

func newVoice(ctx *graph.Context, frequency, position float64) (voice, error) {
	var v voice
	var err error
	if v.oscillator, err = graph.NewOscillator(ctx, frequency); err != nil {
		return v, err
	}
	if v.gain, err = graph.NewGain(ctx, 0); err != nil {
		v.dispose()
		return v, err
	}
	if v.panner, err = graph.NewPanner(ctx, position); err != nil {
		v.dispose()
		return v, err
	}
	for _, edge := range [][2]graph.Node{
		{v.oscillator, v.gain},
		{v.gain, v.panner},
		{v.panner, ctx.Destination()},
	} {
		if err := ctx.Connect(edge[0], edge[1]); err != nil {
			v.dispose()
			return v, err
		}
	}
	return v, nil
}

func (v voice) dispose() {
	if v.oscillator != nil {
		v.oscillator.Dispose()
	}
	if v.gain != nil {
		v.gain.Dispose()
	}
	if v.panner != nil {
		v.panner.Dispose()
	}
}

func (binaural *Binaural) Type() model.SourceType { return model.SourceBinaural }

func (binaural *Binaural) Envelope() Envelope { return binaural.envelope }

func (binaural *Binaural) Ready() bool { return true }

func (binaural *Binaural) Err() error { return nil }

// Tone returns the frequencies the source is tuned to.
func (binaural *Binaural) Tone() model.Tone { return binaural.tone }

// Start starts the oscillators unless they already play, then ramps both gains up.
func (binaural *Binaural) Start() error {
	for _, v := range []voice{binaural.left, binaural.right} {
		if err := v.oscillator.Start(); err != nil && !errors.Is(err, graph.ErrAlreadyRunning) {
			return fmt.Errorf("start oscillator: %w", err)
		}
		v.gain.Gain().RampTo(1, binaural.envelope.In)
	}
	return nil
}

func (binaural *Binaural) FadeOut() {
	binaural.left.gain.Gain().RampTo(0, binaural.envelope.Out)
	binaural.right.gain.Gain().RampTo(0, binaural.envelope.Out)
}

func (binaural *Binaural) Halt() {
	for _, v := range []voice{binaural.left, binaural.right} {
		v.oscillator.Stop()
		v.gain.Gain().SetValue(0)
	}
}

// Retune glides both oscillators to the new pair.
func (binaural *Binaural) Retune(tone model.Tone) {
	if tone == binaural.tone {
		return
	}
	binaural.tone = tone
	binaural.left.oscillator.Frequency().RampTo(tone.LeftHz(), binaural.envelope.In)
	binaural.right.oscillator.Frequency().RampTo(tone.RightHz(), binaural.envelope.In)
}

func (binaural *Binaural) Playing() bool {
	return binaural.left.oscillator.Playing()
}

func (binaural *Binaural) Level() float64 {
	return binaural.left.gain.Gain().Value()
}

func (binaural *Binaural) Dispose() {
	binaural.left.dispose()
	binaural.right.dispose()
}
