package animation

import "time"

// DefaultConfig returns a slow 4-4-6 breathing rhythm.
func DefaultConfig() Config {
	return Config{
		Inhale: Range{Min: 4 * time.Second, Max: 4 * time.Second},
		Hold:   Range{Min: 4 * time.Second, Max: 4 * time.Second},
		Exhale: Range{Min: 6 * time.Second, Max: 6 * time.Second},
		Rest: Range{
			Min: 500 * time.Millisecond,
			Max: 1500 * time.Millisecond,
		},
	}
}
