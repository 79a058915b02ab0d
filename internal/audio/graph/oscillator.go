package graph

import "math"

// oscillatorLevel keeps a hard-panned sine below full scale.
const oscillatorLevel = 0.25

// Oscillator is a sine source with an automatable frequency.
type Oscillator struct {
	*node
	frequency *Param
	phase     float64
	playing   bool
}

// NewOscillator creates a stopped sine oscillator.
func NewOscillator(ctx *Context, frequency float64) (*Oscillator, error) {
	osc := &Oscillator{frequency: newParam(ctx, frequency)}
	n, err := ctx.register("oscillator", func(n *node) processor { return osc })
	if err != nil {
		return nil, err
	}
	osc.node = n
	return osc, nil
}

// Frequency returns the frequency param in Hz.
func (osc *Oscillator) Frequency() *Param { return osc.frequency }

// Start begins output. A playing oscillator is never restarted.
func (osc *Oscillator) Start() error {
	osc.ctx.mu.Lock()
	defer osc.ctx.mu.Unlock()
	if osc.disposed {
		return ErrDisposed
	}
	if osc.playing {
		return ErrAlreadyRunning
	}
	osc.phase = 0
	osc.playing = true
	return nil
}

// Stop silences the oscillator.
func (osc *Oscillator) Stop() {
	osc.ctx.mu.Lock()
	defer osc.ctx.mu.Unlock()
	osc.stopLocked()
}

// Playing reports whether the oscillator is producing sound.
func (osc *Oscillator) Playing() bool {
	osc.ctx.mu.Lock()
	defer osc.ctx.mu.Unlock()
	return osc.playing
}

func (osc *Oscillator) stopLocked() {
	osc.playing = false
}

func (osc *Oscillator) process(out [][2]float64) {
	if !osc.playing {
		silence(out)
		return
	}
	rate := float64(osc.ctx.rate)
	frame := osc.ctx.frame
	for i := range out {
		sample := oscillatorLevel * math.Sin(2*math.Pi*osc.phase)
		out[i] = [2]float64{sample, sample}
		osc.phase += osc.frequency.at(frame+int64(i)) / rate
		osc.phase -= math.Floor(osc.phase)
	}
}
