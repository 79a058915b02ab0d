// Package asset resolves named ambient samples and decodes them into buffers
// at the playback sample rate.
package asset

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// ErrAssetNotFound is returned when no file exists for a sample name.
var ErrAssetNotFound = errors.New("audio asset not found")

// resampleQuality is the beep.Resample interpolation quality.
const resampleQuality = 4

type decoder func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

// Extensions are tried in order.
var decoders = []struct {
	ext    string
	decode decoder
}{
	{".wav", func(r io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(r) }},
	{".mp3", mp3.Decode},
}

// Library loads samples from a directory tree.
type Library struct {
	files fs.FS
	rate  beep.SampleRate
}

// NewLibrary reads samples from files and converts them to sampleRate.
func NewLibrary(files fs.FS, sampleRate int) *Library {
	return &Library{files: files, rate: beep.SampleRate(sampleRate)}
}

// SampleRate returns the rate every loaded buffer is converted to.
func (library *Library) SampleRate() int {
	return int(library.rate)
}

// Has reports whether a file exists for name.
func (library *Library) Has(name string) bool {
	if library.files == nil {
		return false
	}
	for _, candidate := range decoders {
		if _, err := fs.Stat(library.files, name+candidate.ext); err == nil {
			return true
		}
	}
	return false
}

// Load decodes name.wav or name.mp3 into a stereo buffer at the library rate.
// It may take a while and is meant to run off the loop goroutine.
func (library *Library) Load(name string) (*beep.Buffer, error) {
	if library.files == nil {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	}
	for _, candidate := range decoders {
		file, err := library.files.Open(name + candidate.ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open asset %s%s: %w", name, candidate.ext, err)
		}
		buffer, err := library.decode(file, candidate.decode)
		if err != nil {
			return nil, fmt.Errorf("decode asset %s%s: %w", name, candidate.ext, err)
		}
		return buffer, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
}

func (library *Library) decode(file fs.File, decode decoder) (*beep.Buffer, error) {
	streamer, format, err := decode(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	defer streamer.Close()

	var source beep.Streamer = streamer
	if format.SampleRate != library.rate {
		source = beep.Resample(resampleQuality, format.SampleRate, library.rate, streamer)
	}
	buffer := beep.NewBuffer(beep.Format{SampleRate: library.rate, NumChannels: 2, Precision: 2})
	buffer.Append(source)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	if buffer.Len() == 0 {
		return nil, errors.New("asset has no audio")
	}
	return buffer, nil
}
