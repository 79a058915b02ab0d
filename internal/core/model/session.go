package model

import "fmt"

// SessionState is the observable state of the focus cycle.
type SessionState struct {
	Phase             Phase
	RemainingSeconds  int
	CompletedSessions int
	Running           bool
}

// Remaining formats the countdown as MM:SS.
func (state SessionState) Remaining() string {
	seconds := state.RemainingSeconds
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
