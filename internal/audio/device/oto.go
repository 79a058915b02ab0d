// Package device plays a graph context on the system audio device.
package device

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"focusflow/internal/audio/graph"
)

var _ graph.Output = (*Oto)(nil)

// Oto is a graph.Output backed by ebitengine/oto.
type Oto struct {
	// BufferSize is the device latency hint. Zero picks the driver default.
	BufferSize time.Duration

	mu      sync.Mutex
	context *oto.Context
	player  *oto.Player
}

// NewOto returns an unopened device.
func NewOto(bufferSize time.Duration) *Oto {
	return &Oto{BufferSize: bufferSize}
}

// Start opens the device and plays source. It blocks until the driver is
// ready. oto allows one context per process, so Start may only succeed once.
func (device *Oto) Start(sampleRate int, source io.Reader) error {
	device.mu.Lock()
	defer device.mu.Unlock()
	if device.player != nil {
		return nil
	}

	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   device.BufferSize,
	})
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	device.context = context
	device.player = context.NewPlayer(source)
	device.player.Play()
	log.Printf("audio: device opened at %d Hz", sampleRate)
	return nil
}

// Close releases the player. The oto context itself lives for the process.
func (device *Oto) Close() error {
	device.mu.Lock()
	defer device.mu.Unlock()
	if device.player == nil {
		return nil
	}
	err := device.player.Close()
	device.player = nil
	return err
}
