// Package session implements the focus/break state machine. A Machine is not
// safe for concurrent use: every method must run on the loop goroutine.
package session

import (
	"time"

	"focusflow/internal/core/loop"
	"focusflow/internal/core/model"
)

// AudioPort receives the machine's audio intents.
type AudioPort interface {
	Engage()
	Disengage()
	SetPhase(phase model.Phase)
}

// AudioPolicy decides in which phases audio plays.
type AudioPolicy struct {
	Enabled bool
	// BreakAudio keeps audio playing during breaks. Off by default: breaks are silent.
	BreakAudio bool
}

// Audible reports whether audio should play in the given phase.
func (policy AudioPolicy) Audible(phase model.Phase) bool {
	if !policy.Enabled {
		return false
	}
	return phase == model.PhaseFocus || policy.BreakAudio
}

// Config contains runtime options for the Machine.
type Config struct {
	TickInterval time.Duration
	// OnEvent, if set, receives every event synchronously on the loop.
	OnEvent func(Event)
}

// Machine drives the focus cycle and tells the audio side when to play.
type Machine struct {
	preset    model.Preset
	state     model.SessionState
	policy    AudioPolicy
	options   Config
	scheduler loop.Scheduler
	audio     AudioPort
	ticker    loop.Task
	events    []chan Event
	now       func() time.Time
}

// New creates an idle Machine in the focus phase of preset.
func New(preset model.Preset, policy AudioPolicy, scheduler loop.Scheduler, audio AudioPort, options Config) (*Machine, error) {
	if err := preset.Validate(); err != nil {
		return nil, err
	}
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	return &Machine{
		preset:    preset,
		policy:    policy,
		options:   options,
		scheduler: scheduler,
		audio:     audio,
		now:       time.Now,
		state: model.SessionState{
			Phase:            model.PhaseFocus,
			RemainingSeconds: preset.Seconds(model.PhaseFocus),
		},
	}, nil
}

// Subscribe registers a new observer channel. Events are dropped for observers
// whose buffer is full.
func (machine *Machine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	machine.events = append(machine.events, ch)
	return ch
}

// State returns a snapshot of the session state.
func (machine *Machine) State() model.SessionState {
	return machine.state
}

// Preset returns the active preset.
func (machine *Machine) Preset() model.Preset {
	return machine.preset
}

// Policy returns the current audio policy.
func (machine *Machine) Policy() AudioPolicy {
	return machine.policy
}

// Status derives the coarse machine state.
func (machine *Machine) Status() Status {
	switch {
	case !machine.state.Running:
		return StatusIdle
	case machine.state.Phase == model.PhaseBreak:
		return StatusRunningBreak
	default:
		return StatusRunningFocus
	}
}

// Start resumes the countdown in the current phase.
func (machine *Machine) Start() {
	if machine.state.Running {
		return
	}
	machine.state.Running = true
	machine.armTicker()
	machine.applyAudio()
	machine.emit(EventStateChange, ReasonStart)
}

// Pause freezes the countdown and silences audio.
func (machine *Machine) Pause() {
	if !machine.state.Running {
		return
	}
	machine.state.Running = false
	machine.disarmTicker()
	machine.disengage()
	machine.emit(EventStateChange, ReasonPause)
}

// Reset stops the countdown and refills the current phase.
func (machine *Machine) Reset() {
	machine.state.Running = false
	machine.state.RemainingSeconds = machine.preset.Seconds(machine.state.Phase)
	machine.disarmTicker()
	machine.disengage()
	machine.emit(EventStateChange, ReasonReset)
}

// ChangePreset swaps the preset and refills the current phase. The machine is
// left paused.
func (machine *Machine) ChangePreset(preset model.Preset) error {
	if err := preset.Validate(); err != nil {
		return err
	}
	machine.preset = preset
	machine.state.Running = false
	machine.state.RemainingSeconds = preset.Seconds(machine.state.Phase)
	machine.disarmTicker()
	machine.disengage()
	machine.emit(EventStateChange, ReasonPreset)
	return nil
}

// SetAudioPolicy updates the policy and re-evaluates audio when running.
func (machine *Machine) SetAudioPolicy(policy AudioPolicy) {
	machine.policy = policy
	if machine.state.Running {
		machine.applyAudio()
	}
}

// SetCompleted restores a persisted completed-session count.
func (machine *Machine) SetCompleted(count int) {
	if count < 0 {
		count = 0
	}
	machine.state.CompletedSessions = count
	machine.emit(EventStateChange, ReasonRestore)
}

// Tick advances the countdown by one second. Ticks while idle are ignored.
func (machine *Machine) Tick() {
	if !machine.state.Running {
		return
	}
	if machine.state.RemainingSeconds > 0 {
		machine.state.RemainingSeconds--
	}
	if machine.state.RemainingSeconds == 0 {
		machine.completePhase(false)
		return
	}
	machine.emit(EventProgress, "")
}

// SkipPhase ends the current phase immediately. Skipped focus phases are not
// counted as completed.
func (machine *Machine) SkipPhase() {
	machine.completePhase(true)
}

// Close stops ticking and closes observers.
func (machine *Machine) Close() {
	machine.disarmTicker()
	events := machine.events
	machine.events = nil
	for _, ch := range events {
		close(ch)
	}
}

// completePhase moves to the other phase and refills it. The audio side is
// retuned on every change. A running machine keeps playing into the next phase
// when the policy makes it audible and stops audio otherwise.
func (machine *Machine) completePhase(skipped bool) {
	if machine.state.Phase == model.PhaseFocus {
		if !skipped {
			machine.state.CompletedSessions++
		}
		machine.state.Phase = model.PhaseBreak
	} else {
		machine.state.Phase = model.PhaseFocus
	}
	machine.state.RemainingSeconds = machine.preset.Seconds(machine.state.Phase)
	if machine.audio != nil {
		machine.audio.SetPhase(machine.state.Phase)
	}

	if machine.state.Running {
		machine.applyAudio()
	} else {
		machine.disengage()
	}

	reason := ReasonPhaseComplete
	if skipped {
		reason = ReasonSkip
	}
	machine.emit(EventStateChange, reason)
}

func (machine *Machine) applyAudio() {
	if machine.audio == nil {
		return
	}
	if machine.policy.Audible(machine.state.Phase) {
		machine.audio.Engage()
		return
	}
	machine.audio.Disengage()
}

func (machine *Machine) disengage() {
	if machine.audio != nil {
		machine.audio.Disengage()
	}
}

func (machine *Machine) armTicker() {
	if machine.ticker != nil || machine.scheduler == nil {
		return
	}
	machine.ticker = machine.scheduler.Every(machine.options.TickInterval, machine.Tick)
}

func (machine *Machine) disarmTicker() {
	if machine.ticker == nil {
		return
	}
	machine.ticker.Cancel()
	machine.ticker = nil
}

func (machine *Machine) emit(eventType EventType, reason Reason) {
	event := Event{
		Type:   eventType,
		Reason: reason,
		Status: machine.Status(),
		State:  machine.state,
		Preset: machine.preset,
		At:     machine.now(),
	}
	if machine.options.OnEvent != nil {
		machine.options.OnEvent(event)
	}
	for _, ch := range machine.events {
		select {
		case ch <- event:
		default:
		}
	}
}
