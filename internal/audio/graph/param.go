package graph

import "time"

// Param is an automatable value with at most one linear ramp in flight.
// Ramps always start from the value the param has at the moment they are
// scheduled, so replacing a ramp never jumps.
type Param struct {
	ctx   *Context
	value float64

	ramping  bool
	from, to float64
	startAt  int64
	endAt    int64
}

func newParam(ctx *Context, value float64) *Param {
	return &Param{ctx: ctx, value: value}
}

// Value returns the current value.
func (param *Param) Value() float64 {
	param.ctx.mu.Lock()
	defer param.ctx.mu.Unlock()
	return param.at(param.ctx.frame)
}

// Target returns the value the param settles on.
func (param *Param) Target() float64 {
	param.ctx.mu.Lock()
	defer param.ctx.mu.Unlock()
	if param.ramping {
		return param.to
	}
	return param.value
}

// Ramping reports whether a ramp is still in progress.
func (param *Param) Ramping() bool {
	param.ctx.mu.Lock()
	defer param.ctx.mu.Unlock()
	return param.ramping && param.ctx.frame < param.endAt
}

// SetValue cancels any ramp and jumps to value.
func (param *Param) SetValue(value float64) {
	param.ctx.mu.Lock()
	defer param.ctx.mu.Unlock()
	param.ramping = false
	param.value = value
}

// RampTo glides linearly from the current value to target over d.
func (param *Param) RampTo(target float64, d time.Duration) {
	param.ctx.mu.Lock()
	defer param.ctx.mu.Unlock()
	now := param.ctx.frame
	frames := param.ctx.Frames(d)
	if frames <= 0 {
		param.ramping = false
		param.value = target
		return
	}
	param.from = param.at(now)
	param.to = target
	param.startAt = now
	param.endAt = now + frames
	param.ramping = true
}

// at evaluates the param at frame. Callers hold ctx.mu.
func (param *Param) at(frame int64) float64 {
	if !param.ramping {
		return param.value
	}
	if frame >= param.endAt {
		param.ramping = false
		param.value = param.to
		return param.value
	}
	if frame <= param.startAt {
		return param.from
	}
	progress := float64(frame-param.startAt) / float64(param.endAt-param.startAt)
	return param.from + (param.to-param.from)*progress
}
