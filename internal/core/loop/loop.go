// Package loop provides the single goroutine on which focusflow mutates session
// and audio state. User actions, the 1 Hz tick and fade completions are all
// callbacks executed here one after another, so handlers never race each other.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a scheduled callback that can be cancelled before it runs.
type Task interface {
	// Cancel prevents future runs and reports whether the task was still pending.
	Cancel() bool
}

// Scheduler runs callbacks on one logical thread.
type Scheduler interface {
	// Post queues fn to run after the current callback.
	Post(fn func())
	// AfterFunc runs fn once after delay.
	AfterFunc(delay time.Duration, fn func()) Task
	// Every runs fn repeatedly with the given interval.
	Every(interval time.Duration, fn func()) Task
	// Go runs work off the loop and posts the continuation it returns.
	Go(work func() func())
}

// Loop is the production Scheduler.
type Loop struct {
	mu       sync.Mutex
	pending  []func()
	stopped  bool
	wake     chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates an idle loop; call Run to start executing callbacks.
func New() *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
}

// Run executes posted callbacks until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return
		case <-l.stopCh:
			return
		case <-l.wake:
		}

		for {
			batch := l.drain()
			if len(batch) == 0 {
				break
			}
			for _, fn := range batch {
				fn()
			}
		}
	}
}

// Stop terminates Run and drops callbacks posted afterwards.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		l.pending = nil
		l.mu.Unlock()
		close(l.stopCh)
	})
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.stopCh
}

// Post queues fn. It never blocks, so callbacks may post follow-ups.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop and waits for it. It must not be used from the loop
// goroutine itself. It returns false when the loop stopped first.
func (l *Loop) Call(fn func()) bool {
	done := make(chan struct{})
	l.Post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
		return true
	case <-l.stopCh:
		return false
	}
}

// AfterFunc runs fn on the loop once delay has elapsed.
func (l *Loop) AfterFunc(delay time.Duration, fn func()) Task {
	task := &timerTask{}
	task.timer = time.AfterFunc(delay, func() {
		l.Post(func() {
			if task.cancelled.Load() {
				return
			}
			task.fired.Store(true)
			fn()
		})
	})
	return task
}

// Every runs fn on the loop at each interval until cancelled.
func (l *Loop) Every(interval time.Duration, fn func()) Task {
	task := &tickerTask{stop: make(chan struct{})}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-task.stop:
				return
			case <-l.stopCh:
				return
			case <-ticker.C:
				l.Post(func() {
					if task.cancelled.Load() {
						return
					}
					fn()
				})
			}
		}
	}()
	return task
}

// Go runs work on a new goroutine and posts its continuation, if any.
func (l *Loop) Go(work func() func()) {
	go func() {
		next := work()
		if next != nil {
			l.Post(next)
		}
	}()
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.pending
	l.pending = nil
	return batch
}

type timerTask struct {
	timer     *time.Timer
	cancelled atomic.Bool
	fired     atomic.Bool
}

func (task *timerTask) Cancel() bool {
	task.timer.Stop()
	if task.fired.Load() {
		return false
	}
	return !task.cancelled.Swap(true)
}

type tickerTask struct {
	stop      chan struct{}
	cancelled atomic.Bool
}

func (task *tickerTask) Cancel() bool {
	if task.cancelled.Swap(true) {
		return false
	}
	close(task.stop)
	return true
}
