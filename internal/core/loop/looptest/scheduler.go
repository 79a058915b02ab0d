// Package looptest provides a virtual-time loop.Scheduler for deterministic tests.
package looptest

import (
	"sort"
	"time"

	"focusflow/internal/core/loop"
)

// Scheduler runs everything on the test goroutine against a virtual clock.
// Posted callbacks run on Flush or Advance; timers fire only on Advance.
type Scheduler struct {
	// OnElapse is called with each stretch of virtual time that passes between
	// timer firings, e.g. to render an offline audio context alongside.
	OnElapse func(time.Duration)
	// Hold defers Go work until Release is called.
	Hold bool

	now    time.Duration
	seq    int
	timers []*timer
	posted []func()
	works  []func() func()
}

var _ loop.Scheduler = (*Scheduler)(nil)

// New returns a scheduler at virtual time zero.
func New() *Scheduler {
	return &Scheduler{}
}

type timer struct {
	at        time.Duration
	seq       int
	interval  time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

func (t *timer) Cancel() bool {
	if t.cancelled || t.fired {
		return false
	}
	t.cancelled = true
	return true
}

// Now returns the virtual time elapsed since New.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Post queues fn for the next Flush.
func (s *Scheduler) Post(fn func()) {
	s.posted = append(s.posted, fn)
}

// AfterFunc schedules fn at Now()+delay.
func (s *Scheduler) AfterFunc(delay time.Duration, fn func()) loop.Task {
	return s.add(delay, 0, fn)
}

// Every schedules fn at each multiple of interval from Now().
func (s *Scheduler) Every(interval time.Duration, fn func()) loop.Task {
	return s.add(interval, interval, fn)
}

// Go runs work immediately unless Hold is set, then queues its continuation.
func (s *Scheduler) Go(work func() func()) {
	if s.Hold {
		s.works = append(s.works, work)
		return
	}
	if next := work(); next != nil {
		s.Post(next)
	}
}

// Release runs held Go work in order and flushes the continuations.
func (s *Scheduler) Release() {
	works := s.works
	s.works = nil
	for _, work := range works {
		if next := work(); next != nil {
			s.Post(next)
		}
	}
	s.Flush()
}

// Flush runs posted callbacks, including ones they post, until none remain.
func (s *Scheduler) Flush() {
	for len(s.posted) > 0 {
		fn := s.posted[0]
		s.posted = s.posted[1:]
		fn()
	}
}

// Pending returns the number of live timers.
func (s *Scheduler) Pending() int {
	count := 0
	for _, t := range s.timers {
		if !t.cancelled && !t.fired {
			count++
		}
	}
	return count
}

// Advance moves the clock forward by d, firing due timers in order.
func (s *Scheduler) Advance(d time.Duration) {
	target := s.now + d
	s.Flush()
	for {
		next := s.nextDue(target)
		if next == nil {
			s.elapse(target - s.now)
			s.now = target
			return
		}
		s.elapse(next.at - s.now)
		s.now = next.at
		if next.interval > 0 {
			next.at += next.interval
		} else {
			next.fired = true
		}
		next.fn()
		s.Flush()
	}
}

func (s *Scheduler) add(delay, interval time.Duration, fn func()) *timer {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	t := &timer{at: s.now + delay, seq: s.seq, interval: interval, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *Scheduler) nextDue(target time.Duration) *timer {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.cancelled && !t.fired {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at == s.timers[j].at {
			return s.timers[i].seq < s.timers[j].seq
		}
		return s.timers[i].at < s.timers[j].at
	})
	if len(s.timers) == 0 || s.timers[0].at > target {
		return nil
	}
	return s.timers[0]
}

func (s *Scheduler) elapse(d time.Duration) {
	if d > 0 && s.OnElapse != nil {
		s.OnElapse(d)
	}
}
