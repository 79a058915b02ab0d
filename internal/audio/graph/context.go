// Package graph is a small pull-based audio graph: sources feed gains and
// panners that feed the context's destination. The context is rendered either
// by an Output device or offline. One mutex guards the whole graph; it plays the
// role of the audio rendering thread, so callers never see a half-applied change.
package graph

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"
)

var (
	// ErrClosed is returned by operations on a closed context.
	ErrClosed = errors.New("audio context closed")
	// ErrDisposed is returned when connecting a disposed node.
	ErrDisposed = errors.New("audio node disposed")
	// ErrAlreadyRunning is returned when starting a source that is playing.
	ErrAlreadyRunning = errors.New("audio source already running")
)

// State is the lifecycle state of a Context.
type State int

const (
	StateSuspended State = iota
	StateRunning
	StateClosed
)

func (state State) String() string {
	switch state {
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return "suspended"
	}
}

// Output is a device that pulls rendered audio from the context.
type Output interface {
	// Start opens the device and begins pulling float32 LE stereo frames from
	// source. It blocks until the device is ready.
	Start(sampleRate int, source io.Reader) error
	Close() error
}

// Context owns the nodes, the frame clock and the destination bus.
type Context struct {
	mu          sync.Mutex
	rate        int
	output      Output
	started     bool
	state       State
	frame       int64
	block       int64
	nextID      uint64
	nodes       map[uint64]*node
	destination *node
	scratch     [][2]float64

	pulledTime   time.Duration
	pulledFrames int64
}

// NewContext creates a suspended context rendered by output.
func NewContext(sampleRate int, output Output) *Context {
	ctx := &Context{
		rate:   sampleRate,
		output: output,
		nodes:  make(map[uint64]*node),
	}
	ctx.destination = &node{ctx: ctx, kind: "destination"}
	ctx.destination.proc = mixer{ctx.destination}
	return ctx
}

// NewOfflineContext creates a context without a device. Resume succeeds
// immediately and audio is pulled with Render or RenderFor.
func NewOfflineContext(sampleRate int) *Context {
	return NewContext(sampleRate, nil)
}

// SampleRate returns frames per second.
func (ctx *Context) SampleRate() int {
	return ctx.rate
}

// State returns the lifecycle state.
func (ctx *Context) State() State {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.state
}

// Frame returns the number of frames rendered while running.
func (ctx *Context) Frame() int64 {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.frame
}

// Now returns the context clock.
func (ctx *Context) Now() time.Duration {
	return ctx.Duration(ctx.Frame())
}

// Frames converts d to a frame count at the context rate.
func (ctx *Context) Frames(d time.Duration) int64 {
	return int64(math.Round(d.Seconds() * float64(ctx.rate)))
}

// Duration converts a frame count to time.
func (ctx *Context) Duration(frames int64) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(ctx.rate)
}

// Resume activates the context. With an output the call starts the device,
// which may block; it must not be called on the loop goroutine. A context
// stays running until Close.
func (ctx *Context) Resume() error {
	ctx.mu.Lock()
	switch ctx.state {
	case StateClosed:
		ctx.mu.Unlock()
		return ErrClosed
	case StateRunning:
		ctx.mu.Unlock()
		return nil
	}
	output := ctx.output
	ctx.mu.Unlock()

	if output != nil {
		if err := output.Start(ctx.rate, ctx); err != nil {
			return fmt.Errorf("activate audio output: %w", err)
		}
	}

	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.state == StateClosed {
		return ErrClosed
	}
	ctx.started = ctx.started || output != nil
	ctx.state = StateRunning
	return nil
}

// Close disposes every node and releases the device. It is idempotent.
func (ctx *Context) Close() error {
	ctx.mu.Lock()
	if ctx.state == StateClosed {
		ctx.mu.Unlock()
		return nil
	}
	ctx.state = StateClosed
	for _, n := range ctx.nodes {
		n.disposeLocked()
	}
	output, started := ctx.output, ctx.started
	ctx.mu.Unlock()

	if output != nil && started {
		return output.Close()
	}
	return nil
}

// Destination is the bus that reaches the output.
func (ctx *Context) Destination() Node {
	return destination{ctx.destination}
}

// Connect routes src into dst.
func (ctx *Context) Connect(src, dst Node) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.state == StateClosed {
		return ErrClosed
	}
	from, to := src.base(), dst.base()
	if from.disposed || to.disposed {
		return ErrDisposed
	}
	for _, input := range to.inputs {
		if input == from {
			return nil
		}
	}
	to.inputs = append(to.inputs, from)
	from.outputs = append(from.outputs, to)
	return nil
}

// LiveNodes returns the number of nodes not yet disposed.
func (ctx *Context) LiveNodes() int {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return len(ctx.nodes)
}

// Connections returns the number of edges in the graph.
func (ctx *Context) Connections() int {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	count := len(ctx.destination.inputs)
	for _, n := range ctx.nodes {
		count += len(n.inputs)
	}
	return count
}

// Render fills out with the next frames. A context that is not running
// renders silence and its clock stands still.
func (ctx *Context) Render(out [][2]float64) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.renderLocked(out)
}

// RenderFor pulls d worth of audio, carrying rounding between calls so that
// repeated short pulls stay aligned with wall time.
func (ctx *Context) RenderFor(d time.Duration) [][2]float64 {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	ctx.pulledTime += d
	frames := ctx.Frames(ctx.pulledTime) - ctx.pulledFrames
	if frames < 0 {
		frames = 0
	}
	ctx.pulledFrames += frames
	out := make([][2]float64, frames)
	ctx.renderLocked(out)
	return out
}

// Read implements io.Reader for devices: float32 little endian, stereo
// interleaved.
func (ctx *Context) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	ctx.mu.Lock()
	if cap(ctx.scratch) < frames {
		ctx.scratch = make([][2]float64, frames)
	}
	samples := ctx.scratch[:frames]
	ctx.renderLocked(samples)
	ctx.mu.Unlock()

	for i, frame := range samples {
		binary.LittleEndian.PutUint32(p[i*8:], math.Float32bits(float32(clamp(frame[0]))))
		binary.LittleEndian.PutUint32(p[i*8+4:], math.Float32bits(float32(clamp(frame[1]))))
	}
	return frames * 8, nil
}

func (ctx *Context) renderLocked(out [][2]float64) {
	if ctx.state != StateRunning {
		silence(out)
		return
	}
	ctx.block++
	ctx.destination.proc.process(out)
	ctx.frame += int64(len(out))
}

func (ctx *Context) register(kind string, proc func(n *node) processor) (*node, error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.state == StateClosed {
		return nil, ErrClosed
	}
	ctx.nextID++
	n := &node{ctx: ctx, id: ctx.nextID, kind: kind}
	n.proc = proc(n)
	ctx.nodes[n.id] = n
	return n, nil
}

func silence(out [][2]float64) {
	for i := range out {
		out[i] = [2]float64{}
	}
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
