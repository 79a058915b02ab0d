// Package source builds the playable sound sources on top of the audio graph.
// Sources only mutate graph nodes; when to start and stop them is decided by
// the engine.
package source

import (
	"time"

	"focusflow/internal/core/model"
)

// Envelope holds the fade windows of a source. Zero means start or stop at once.
type Envelope struct {
	In  time.Duration
	Out time.Duration
}

// Source is one selectable sound.
type Source interface {
	Type() model.SourceType
	Envelope() Envelope
	// Ready reports whether the source can produce sound now.
	Ready() bool
	// Err returns a permanent failure such as an undecodable asset.
	Err() error
	// Start begins playback if needed and ramps the level from its current
	// value to full over the envelope's fade-in.
	Start() error
	// FadeOut ramps the level from its current value to silence.
	FadeOut()
	// Halt stops playback at once and leaves the level at zero.
	Halt()
	// Retune moves the source to the tone of a phase. Samples ignore it.
	Retune(tone model.Tone)
	Playing() bool
	// Level returns the current output level in [0, 1].
	Level() float64
	// Dispose releases every graph node. It is idempotent.
	Dispose()
}
