package graph

import (
	"errors"
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

// ErrEmptyBuffer is returned for a player without audio.
var ErrEmptyBuffer = errors.New("audio buffer is empty")

// Player loops a decoded buffer at a fixed base level with an automatable gain.
type Player struct {
	*node
	buffer   *beep.Buffer
	decibels float64
	gain     *Param
	stream   *effects.Volume
	playing  bool
}

// NewPlayer creates a stopped player. baseDecibels sets the fixed level applied
// before the gain param, e.g. -20.
func NewPlayer(ctx *Context, buffer *beep.Buffer, baseDecibels float64) (*Player, error) {
	if buffer == nil || buffer.Len() == 0 {
		return nil, ErrEmptyBuffer
	}
	if rate := int(buffer.Format().SampleRate); rate != ctx.rate {
		return nil, fmt.Errorf("player buffer at %d Hz, context at %d Hz", rate, ctx.rate)
	}
	p := &Player{buffer: buffer, decibels: baseDecibels, gain: newParam(ctx, 1)}
	n, err := ctx.register("player", func(n *node) processor { return p })
	if err != nil {
		return nil, err
	}
	p.node = n
	return p, nil
}

// Gain returns the gain param.
func (p *Player) Gain() *Param { return p.gain }

// Start plays the buffer in a loop from its beginning.
func (p *Player) Start() error {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	if p.disposed {
		return ErrDisposed
	}
	if p.playing {
		return ErrAlreadyRunning
	}
	p.stream = &effects.Volume{
		Streamer: beep.Loop(-1, p.buffer.Streamer(0, p.buffer.Len())),
		Base:     10,
		Volume:   p.decibels / 20,
	}
	p.playing = true
	return nil
}

// Stop halts playback.
func (p *Player) Stop() {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.stopLocked()
}

// Playing reports whether the player is producing sound.
func (p *Player) Playing() bool {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.playing
}

func (p *Player) stopLocked() {
	p.playing = false
	p.stream = nil
}

func (p *Player) process(out [][2]float64) {
	if !p.playing {
		silence(out)
		return
	}
	n, _ := p.stream.Stream(out)
	silence(out[n:])
	frame := p.ctx.frame
	for i := range out {
		factor := p.gain.at(frame + int64(i))
		out[i][0] *= factor
		out[i][1] *= factor
	}
}
