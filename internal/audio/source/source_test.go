package source

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"

	"focusflow/internal/audio/graph"
	"focusflow/internal/core/loop/looptest"
	"focusflow/internal/core/model"
)

const testRate = 1000

func runningContext(t *testing.T) *graph.Context {
	t.Helper()
	ctx := graph.NewOfflineContext(testRate)
	if err := ctx.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	return ctx
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-3 }

type fakeLoader struct {
	err   error
	names []string
}

func (loader *fakeLoader) Load(name string) (*beep.Buffer, error) {
	loader.names = append(loader.names, name)
	if loader.err != nil {
		return nil, loader.err
	}
	buffer := beep.NewBuffer(beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2})
	buffer.Append(beep.Take(100, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{0.5, 0.5}
		}
		return len(samples), true
	})))
	return buffer, nil
}

func TestBinauralGraphShape(t *testing.T) {
	ctx := runningContext(t)
	binaural, err := NewBinaural(ctx, model.Tone{BaseHz: 40, BeatHz: 6}, Envelope{In: 200 * time.Millisecond, Out: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("binaural: %v", err)
	}

	if ctx.LiveNodes() != 6 || ctx.Connections() != 6 {
		t.Fatalf("expected 6 nodes and 6 edges, got %d/%d", ctx.LiveNodes(), ctx.Connections())
	}
	if binaural.left.oscillator.Frequency().Value() != 40 || binaural.right.oscillator.Frequency().Value() != 46 {
		t.Fatalf("unexpected frequencies")
	}

	binaural.Dispose()
	binaural.Dispose()
	if ctx.LiveNodes() != 0 || ctx.Connections() != 0 {
		t.Fatalf("dispose left %d nodes %d edges", ctx.LiveNodes(), ctx.Connections())
	}
}

func TestBinauralFadesFromCurrentLevel(t *testing.T) {
	ctx := runningContext(t)
	binaural, _ := NewBinaural(ctx, model.DefaultToneMap().Focus, Envelope{In: 200 * time.Millisecond, Out: 200 * time.Millisecond})

	if err := binaural.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	ctx.RenderFor(100 * time.Millisecond)
	if !near(binaural.Level(), 0.5) {
		t.Fatalf("expected half level, got %f", binaural.Level())
	}

	binaural.FadeOut()
	if !near(binaural.Level(), 0.5) {
		t.Fatalf("fade out jumped to %f", binaural.Level())
	}
	ctx.RenderFor(100 * time.Millisecond)

	if err := binaural.Start(); err != nil {
		t.Fatalf("restart during fade: %v", err)
	}
	if !near(binaural.Level(), 0.25) || !binaural.Playing() {
		t.Fatalf("expected playing at 0.25, got %f playing=%v", binaural.Level(), binaural.Playing())
	}
	ctx.RenderFor(200 * time.Millisecond)
	if !near(binaural.Level(), 1) {
		t.Fatalf("expected full level, got %f", binaural.Level())
	}

	binaural.Halt()
	if binaural.Playing() || binaural.Level() != 0 {
		t.Fatalf("halt left sound on")
	}
}

func TestBinauralRetuneGlides(t *testing.T) {
	ctx := runningContext(t)
	binaural, _ := NewBinaural(ctx, model.Tone{BaseHz: 40, BeatHz: 6}, Envelope{In: 200 * time.Millisecond})

	binaural.Retune(model.Tone{BaseHz: 100, BeatHz: 10})
	ctx.RenderFor(100 * time.Millisecond)
	if v := binaural.left.oscillator.Frequency().Value(); !near(v, 70) {
		t.Fatalf("expected glide midpoint 70Hz, got %f", v)
	}
	ctx.RenderFor(100 * time.Millisecond)
	if v := binaural.right.oscillator.Frequency().Value(); !near(v, 110) {
		t.Fatalf("expected 110Hz, got %f", v)
	}
}

func TestSampleLoadsAsynchronously(t *testing.T) {
	ctx := runningContext(t)
	scheduler := looptest.New()
	scheduler.Hold = true
	loader := &fakeLoader{}
	info := model.SourceWhiteNoise.Info()
	sample := NewSample(ctx, info, Envelope{In: 400 * time.Millisecond, Out: 550 * time.Millisecond}, -20)

	loaded := 0
	sample.Load(scheduler, loader, func() { loaded++ })
	if sample.Ready() || !sample.Loading() {
		t.Fatalf("sample ready before load finished")
	}
	scheduler.Release()

	if !sample.Ready() || loaded != 1 || loader.names[0] != "white" {
		t.Fatalf("load not attached: ready=%v loaded=%d names=%v", sample.Ready(), loaded, loader.names)
	}
	if ctx.LiveNodes() != 1 || ctx.Connections() != 1 {
		t.Fatalf("expected one connected player, got %d/%d", ctx.LiveNodes(), ctx.Connections())
	}
}

func TestSampleFadeInStartsFromSilence(t *testing.T) {
	ctx := runningContext(t)
	scheduler := looptest.New()
	sample := NewSample(ctx, model.SourcePinkNoise.Info(), Envelope{In: 400 * time.Millisecond, Out: 550 * time.Millisecond}, -20)
	sample.Load(scheduler, &fakeLoader{}, nil)
	scheduler.Flush()

	if err := sample.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if sample.Level() != 0 {
		t.Fatalf("fade-in must start silent, got %f", sample.Level())
	}
	ctx.RenderFor(200 * time.Millisecond)
	if !near(sample.Level(), 0.5) {
		t.Fatalf("expected half level, got %f", sample.Level())
	}
	out := ctx.RenderFor(300 * time.Millisecond)
	if last := out[len(out)-1]; !near(last[0], 0.05) {
		t.Fatalf("expected 0.5 at -20dB, got %f", last[0])
	}
}

func TestSampleWithoutFadeStartsAtLevel(t *testing.T) {
	ctx := runningContext(t)
	scheduler := looptest.New()
	sample := NewSample(ctx, model.SourceRain.Info(), Envelope{}, -20)
	sample.Load(scheduler, &fakeLoader{}, nil)
	scheduler.Flush()

	sample.Start()
	if sample.Level() != 1 {
		t.Fatalf("expected immediate full level, got %f", sample.Level())
	}
	sample.Halt()
	if sample.Playing() || sample.Level() != 0 {
		t.Fatalf("halt left the sample playing")
	}
}

func TestSampleLoadFailure(t *testing.T) {
	ctx := runningContext(t)
	scheduler := looptest.New()
	failure := errors.New("missing file")
	sample := NewSample(ctx, model.SourceRain.Info(), Envelope{}, -20)

	sample.Load(scheduler, &fakeLoader{err: failure}, nil)
	scheduler.Flush()

	if sample.Ready() || !errors.Is(sample.Err(), failure) {
		t.Fatalf("expected load failure, ready=%v err=%v", sample.Ready(), sample.Err())
	}
	if err := sample.Start(); err == nil {
		t.Fatalf("start must fail without a buffer")
	}
	sample.FadeOut()
	sample.Halt()
	sample.Dispose()
}

func TestSampleDisposedDuringLoad(t *testing.T) {
	ctx := runningContext(t)
	scheduler := looptest.New()
	scheduler.Hold = true
	sample := NewSample(ctx, model.SourceRain.Info(), Envelope{}, -20)

	called := false
	sample.Load(scheduler, &fakeLoader{}, func() { called = true })
	sample.Dispose()
	scheduler.Release()

	if called || sample.Ready() || ctx.LiveNodes() != 0 {
		t.Fatalf("disposed sample attached a player")
	}
}
