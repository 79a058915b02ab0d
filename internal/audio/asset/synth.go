package asset

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// crossfade is the overlap used to make generated loops seamless.
const crossfade = 250 * time.Millisecond

// Synth renders one loop of frames at the given rate.
type Synth func(frames int, rate int, random *rand.Rand) [][2]float64

// Synths are the generated ambient loops keyed by asset name.
var Synths = map[string]Synth{
	"white": WhiteNoise,
	"pink":  PinkNoise,
	"rain":  Rain,
}

// Generate writes a WAV loop for every synthesized asset into dir. Existing
// files are kept unless overwrite is set. It returns the written paths.
func Generate(dir string, sampleRate int, length time.Duration, overwrite bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sounds directory: %w", err)
	}
	frames := int(length.Seconds() * float64(sampleRate))
	if frames <= 0 {
		return nil, fmt.Errorf("loop length %s too short", length)
	}

	var written []string
	for i, name := range []string{"white", "pink", "rain"} {
		path := filepath.Join(dir, name+".wav")
		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				continue
			}
		}
		random := rand.New(rand.NewSource(int64(i+1) * 7919))
		samples := loop(Synths[name], frames, sampleRate, random)
		if err := writeWAV(path, samples, sampleRate); err != nil {
			return written, err
		}
		log.Printf("sounds: wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}

// loop renders frames plus an overlap and folds the tail into the head.
func loop(synth Synth, frames, rate int, random *rand.Rand) [][2]float64 {
	overlap := int(crossfade.Seconds() * float64(rate))
	if overlap > frames/2 {
		overlap = frames / 2
	}
	samples := synth(frames+overlap, rate, random)
	for i := 0; i < overlap; i++ {
		weight := float64(i) / float64(overlap)
		tail := samples[frames+i]
		samples[i][0] = samples[i][0]*weight + tail[0]*(1-weight)
		samples[i][1] = samples[i][1]*weight + tail[1]*(1-weight)
	}
	return samples[:frames]
}

func writeWAV(path string, samples [][2]float64, rate int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	format := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 2}
	position := 0
	streamer := beep.StreamerFunc(func(out [][2]float64) (int, bool) {
		if position >= len(samples) {
			return 0, false
		}
		n := copy(out, samples[position:])
		position += n
		return n, true
	})
	if err := wav.Encode(file, streamer, format); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// WhiteNoise is flat-spectrum noise, independent per channel.
func WhiteNoise(frames int, rate int, random *rand.Rand) [][2]float64 {
	samples := make([][2]float64, frames)
	for i := range samples {
		samples[i] = [2]float64{
			0.5 * (random.Float64()*2 - 1),
			0.5 * (random.Float64()*2 - 1),
		}
	}
	return samples
}

// pinkFilter is Paul Kellet's economy pink noise filter.
type pinkFilter struct {
	b0, b1, b2 float64
}

func (filter *pinkFilter) next(white float64) float64 {
	filter.b0 = 0.99765*filter.b0 + white*0.0990460
	filter.b1 = 0.96300*filter.b1 + white*0.2965164
	filter.b2 = 0.57000*filter.b2 + white*1.0526913
	return (filter.b0 + filter.b1 + filter.b2 + white*0.1848) * 0.11
}

// PinkNoise falls off at 3 dB per octave.
func PinkNoise(frames int, rate int, random *rand.Rand) [][2]float64 {
	var left, right pinkFilter
	samples := make([][2]float64, frames)
	for i := range samples {
		samples[i] = [2]float64{
			left.next(random.Float64()*2 - 1),
			right.next(random.Float64()*2 - 1),
		}
	}
	return samples
}

// Rain is low-passed noise with a slow swell and scattered drops.
func Rain(frames int, rate int, random *rand.Rand) [][2]float64 {
	samples := PinkNoise(frames, rate, random)
	var low [2]float64
	const smoothing = 0.35
	dropDecay := math.Exp(-1 / (0.004 * float64(rate)))
	var drop [2]float64
	for i := range samples {
		swell := 0.75 + 0.25*math.Sin(2*math.Pi*float64(i)/float64(rate)/7)
		for ch := 0; ch < 2; ch++ {
			low[ch] += smoothing * (samples[i][ch] - low[ch])
			if random.Float64() < 30/float64(rate) {
				drop[ch] += 0.3 * random.Float64()
			}
			drop[ch] *= dropDecay
			samples[i][ch] = 0.8*low[ch]*swell + drop[ch]*(random.Float64()*2-1)
		}
	}
	return samples
}
