package graph

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
)

const testRate = 1000

func runningContext(t *testing.T) *Context {
	t.Helper()
	ctx := NewOfflineContext(testRate)
	if err := ctx.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	return ctx
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-3 }

func constantBuffer(t *testing.T, rate int, frames int, level float64) *beep.Buffer {
	t.Helper()
	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 2}
	buffer := beep.NewBuffer(format)
	constant := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{level, level}
		}
		return len(samples), true
	})
	buffer.Append(beep.Take(frames, constant))
	return buffer
}

func TestRampStartsFromCurrentValue(t *testing.T) {
	ctx := runningContext(t)
	gain, err := NewGain(ctx, 0)
	if err != nil {
		t.Fatalf("gain: %v", err)
	}

	gain.Gain().RampTo(1, 200*time.Millisecond)
	ctx.RenderFor(100 * time.Millisecond)
	if v := gain.Gain().Value(); !near(v, 0.5) {
		t.Fatalf("expected 0.5 mid ramp, got %f", v)
	}

	gain.Gain().RampTo(0, 200*time.Millisecond)
	if v := gain.Gain().Value(); !near(v, 0.5) {
		t.Fatalf("replacing a ramp must not jump, got %f", v)
	}
	ctx.RenderFor(100 * time.Millisecond)
	if v := gain.Gain().Value(); !near(v, 0.25) {
		t.Fatalf("expected 0.25, got %f", v)
	}
	ctx.RenderFor(200 * time.Millisecond)
	if v := gain.Gain().Value(); v != 0 || gain.Gain().Ramping() {
		t.Fatalf("expected settled at 0, got %f ramping=%v", v, gain.Gain().Ramping())
	}
}

func TestSetValueCancelsRamp(t *testing.T) {
	ctx := runningContext(t)
	gain, _ := NewGain(ctx, 0)

	gain.Gain().RampTo(1, time.Second)
	gain.Gain().SetValue(0.3)
	ctx.RenderFor(2 * time.Second)
	if v := gain.Gain().Value(); v != 0.3 {
		t.Fatalf("expected 0.3, got %f", v)
	}
	if gain.Gain().Target() != 0.3 {
		t.Fatalf("unexpected target %f", gain.Gain().Target())
	}
}

func TestSuspendedContextHoldsClock(t *testing.T) {
	ctx := NewOfflineContext(testRate)
	out := ctx.RenderFor(time.Second)
	if ctx.Frame() != 0 || ctx.State() != StateSuspended {
		t.Fatalf("suspended context advanced to %d", ctx.Frame())
	}
	for _, frame := range out {
		if frame != [2]float64{} {
			t.Fatalf("suspended context rendered sound")
		}
	}
	if err := ctx.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	ctx.RenderFor(250 * time.Millisecond)
	if ctx.Now() != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", ctx.Now())
	}
}

func TestHardPannedOscillator(t *testing.T) {
	ctx := runningContext(t)
	osc, _ := NewOscillator(ctx, 40)
	gain, _ := NewGain(ctx, 1)
	pan, _ := NewPanner(ctx, -1)
	for _, edge := range [][2]Node{{osc, gain}, {gain, pan}, {pan, ctx.Destination()}} {
		if err := ctx.Connect(edge[0], edge[1]); err != nil {
			t.Fatalf("connect: %v", err)
		}
	}
	if err := osc.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	var left, right float64
	for _, frame := range ctx.RenderFor(time.Second) {
		left = math.Max(left, math.Abs(frame[0]))
		right = math.Max(right, math.Abs(frame[1]))
	}
	if left < 0.1 || right > 1e-9 {
		t.Fatalf("expected left-only signal, left=%f right=%f", left, right)
	}
}

func TestOscillatorNotRestartedWhilePlaying(t *testing.T) {
	ctx := runningContext(t)
	osc, _ := NewOscillator(ctx, 40)

	if err := osc.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := osc.Start(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	osc.Stop()
	if err := osc.Start(); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
}

func TestDisposeReleasesNodesAndEdges(t *testing.T) {
	ctx := runningContext(t)
	osc, _ := NewOscillator(ctx, 40)
	gain, _ := NewGain(ctx, 0)
	pan, _ := NewPanner(ctx, 1)
	ctx.Connect(osc, gain)
	ctx.Connect(gain, pan)
	ctx.Connect(pan, ctx.Destination())
	osc.Start()

	if ctx.LiveNodes() != 3 || ctx.Connections() != 3 {
		t.Fatalf("expected 3 nodes and 3 edges, got %d/%d", ctx.LiveNodes(), ctx.Connections())
	}
	for _, n := range []Node{osc, gain, pan} {
		n.Dispose()
		n.Dispose()
	}
	ctx.Destination().Dispose()

	if ctx.LiveNodes() != 0 || ctx.Connections() != 0 {
		t.Fatalf("residual graph: %d nodes %d edges", ctx.LiveNodes(), ctx.Connections())
	}
	if osc.Playing() {
		t.Fatalf("disposed oscillator still playing")
	}
	if err := ctx.Connect(osc, ctx.Destination()); !errors.Is(err, ErrDisposed) {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
}

func TestPlayerLoopsAtBaseLevel(t *testing.T) {
	ctx := runningContext(t)
	player, err := NewPlayer(ctx, constantBuffer(t, testRate, 10, 1), -20)
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	ctx.Connect(player, ctx.Destination())
	if err := player.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	out := ctx.RenderFor(35 * time.Millisecond)
	if len(out) != 35 {
		t.Fatalf("expected 35 frames, got %d", len(out))
	}
	for i, frame := range out {
		if !near(frame[0], 0.1) || !near(frame[1], 0.1) {
			t.Fatalf("frame %d not looped at -20dB: %v", i, frame)
		}
	}

	player.Gain().SetValue(0)
	for _, frame := range ctx.RenderFor(10 * time.Millisecond) {
		if frame != [2]float64{} {
			t.Fatalf("muted player audible")
		}
	}
}

func TestPlayerValidatesBuffer(t *testing.T) {
	ctx := runningContext(t)
	if _, err := NewPlayer(ctx, beep.NewBuffer(beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}), 0); !errors.Is(err, ErrEmptyBuffer) {
		t.Fatalf("expected ErrEmptyBuffer, got %v", err)
	}
	if _, err := NewPlayer(ctx, constantBuffer(t, 2*testRate, 10, 1), 0); err == nil {
		t.Fatalf("expected sample rate mismatch error")
	}
}

func TestReadEncodesFloat32Stereo(t *testing.T) {
	ctx := runningContext(t)
	player, _ := NewPlayer(ctx, constantBuffer(t, testRate, 10, 0.5), 0)
	ctx.Connect(player, ctx.Destination())
	player.Start()

	p := make([]byte, 4*8)
	n, err := ctx.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("read: %d %v", n, err)
	}
	for i := 0; i < 8; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if !near(float64(v), 0.5) {
			t.Fatalf("sample %d = %f", i, v)
		}
	}
	if ctx.Frame() != 4 {
		t.Fatalf("expected 4 frames rendered, got %d", ctx.Frame())
	}
}

type fakeOutput struct {
	startErr error
	starts   int
	rate     int
	source   io.Reader
	closed   bool
}

func (out *fakeOutput) Start(rate int, source io.Reader) error {
	out.starts++
	if out.startErr != nil {
		return out.startErr
	}
	out.rate, out.source = rate, source
	return nil
}

func (out *fakeOutput) Close() error { out.closed = true; return nil }

func TestResumeFailureLeavesContextSuspended(t *testing.T) {
	output := &fakeOutput{startErr: errors.New("no device")}
	ctx := NewContext(testRate, output)

	if err := ctx.Resume(); err == nil {
		t.Fatalf("expected activation error")
	}
	if ctx.State() != StateSuspended {
		t.Fatalf("failed activation changed state to %s", ctx.State())
	}

	output.startErr = nil
	if err := ctx.Resume(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if ctx.State() != StateRunning || output.rate != testRate || output.source == nil {
		t.Fatalf("device not started: %+v", output)
	}
	if err := ctx.Resume(); err != nil || output.starts != 2 {
		t.Fatalf("running context must not restart the device: starts=%d err=%v", output.starts, err)
	}
	if err := ctx.Close(); err != nil || !output.closed {
		t.Fatalf("close: %v closed=%v", err, output.closed)
	}
}

func TestClosedContextRejectsWork(t *testing.T) {
	ctx := runningContext(t)
	gain, _ := NewGain(ctx, 1)
	ctx.Close()
	ctx.Close()

	if ctx.LiveNodes() != 0 {
		t.Fatalf("close left %d nodes", ctx.LiveNodes())
	}
	if _, err := NewOscillator(ctx, 40); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := ctx.Resume(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := ctx.Connect(gain, ctx.Destination()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
