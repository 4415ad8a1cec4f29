package timer

import (
	"sync/atomic"
	"time"
)

// Scheduler translates time into callbacks delivered on a channel.
// The receiver (the session loop) is responsible for executing them, so
// every scheduled callback runs on the same goroutine as the code that
// scheduled it.
type Scheduler struct {
	out  chan<- func()
	done <-chan struct{}

	scheduled atomic.Int64
	fired     atomic.Int64
}

// NewScheduler creates a Scheduler that sends callbacks to out until done
// is closed.
func NewScheduler(out chan<- func(), done <-chan struct{}) *Scheduler {
	return &Scheduler{out: out, done: done}
}

// Now implements Clock.
func (s *Scheduler) Now() time.Time { return time.Now() }

// AfterFunc implements Clock. The returned Timer can be stopped from the
// loop even after the callback was queued but before it ran.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) Timer {
	h := &handle{}
	s.scheduled.Add(1)
	h.t = time.AfterFunc(d, func() {
		job := func() {
			if h.stopped.Swap(true) {
				return // Stopped after queueing
			}
			s.fired.Add(1)
			f()
		}
		// Drop once done, even if out has room.
		select {
		case <-s.done:
			return
		default:
		}
		select {
		case s.out <- job:
		case <-s.done:
		}
	})
	return h
}

// Stats returns how many callbacks were scheduled and how many ran.
func (s *Scheduler) Stats() (scheduled, fired int64) {
	return s.scheduled.Load(), s.fired.Load()
}

type handle struct {
	t       *time.Timer
	stopped atomic.Bool
}

func (h *handle) Stop() bool {
	h.t.Stop()
	return !h.stopped.Swap(true)
}
