package graph

import "github.com/gopxl/beep/v2/effects"

// Gain scales its inputs by an automatable factor.
type Gain struct {
	*node
	gain *Param
}

// NewGain creates a gain node with the given initial factor.
func NewGain(ctx *Context, initial float64) (*Gain, error) {
	g := &Gain{gain: newParam(ctx, initial)}
	n, err := ctx.register("gain", func(n *node) processor { return g })
	if err != nil {
		return nil, err
	}
	g.node = n
	return g, nil
}

// Gain returns the gain param.
func (g *Gain) Gain() *Param { return g.gain }

func (g *Gain) process(out [][2]float64) {
	g.mix(out)
	frame := g.ctx.frame
	for i := range out {
		factor := g.gain.at(frame + int64(i))
		out[i][0] *= factor
		out[i][1] *= factor
	}
}

// Panner moves its inputs across the stereo field. -1 is hard left, +1 hard right.
type Panner struct {
	*node
	pan *effects.Pan
}

// NewPanner creates a panner at the given position.
func NewPanner(ctx *Context, position float64) (*Panner, error) {
	p := &Panner{}
	n, err := ctx.register("panner", func(n *node) processor {
		p.pan = &effects.Pan{Streamer: inputs{n}, Pan: clamp(position)}
		return p
	})
	if err != nil {
		return nil, err
	}
	p.node = n
	return p, nil
}

func (p *Panner) process(out [][2]float64) {
	p.pan.Stream(out)
}
