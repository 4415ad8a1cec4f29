// Package ratelimit wraps callbacks so they run at most once per interval.
//
// Two policies are provided. Debounce delays execution until the calls stop
// for a full interval and then runs once with the latest arguments. Throttle
// runs the first call immediately, then suppresses calls for the interval,
// running one trailing call with the latest arguments if any arrived during
// the cooldown.
//
// A Limiter holds at most one pending timer. Scheduling goes through a
// timer.Clock, so tests drive it with timer.Fake and the session drives it
// with a timer.Scheduler bound to its event loop.
package ratelimit

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/drake/winsize/timer"
)

// DefaultDelay is used when a Limiter is built with a non-positive delay.
const DefaultDelay = 100 * time.Millisecond

// Policy selects the temporal behaviour of a Limiter.
type Policy int

const (
	PolicyThrottle Policy = iota
	PolicyDebounce
)

func (p Policy) String() string {
	switch p {
	case PolicyThrottle:
		return "throttle"
	case PolicyDebounce:
		return "debounce"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy converts a config string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "throttle", "":
		return PolicyThrottle, nil
	case "debounce":
		return PolicyDebounce, nil
	default:
		return 0, fmt.Errorf("unknown rate limit policy %q", s)
	}
}

// Limiter gates calls to fn according to its policy.
type Limiter[T any] struct {
	fn     func(T)
	policy Policy
	delay  time.Duration
	clock  timer.Clock

	mu      sync.Mutex
	timer   timer.Timer
	gen     uint64 // Bumped whenever the armed timer is replaced or released
	cooling bool   // Throttle only
	pending bool
	arg     T
	last    time.Time
}

// New builds a Limiter with the given policy.
func New[T any](policy Policy, fn func(T), delay time.Duration, clock timer.Clock) *Limiter[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if clock == nil {
		clock = timer.System{}
	}
	return &Limiter[T]{
		fn:     fn,
		policy: policy,
		delay:  delay,
		clock:  clock,
	}
}

// Debounce returns a Limiter that runs fn once, delay after the last call.
func Debounce[T any](fn func(T), delay time.Duration, clock timer.Clock) *Limiter[T] {
	return New(PolicyDebounce, fn, delay, clock)
}

// Throttle returns a Limiter that runs fn immediately and then at most once
// per delay, with a trailing call for arguments received during cooldown.
func Throttle[T any](fn func(T), delay time.Duration, clock timer.Clock) *Limiter[T] {
	return New(PolicyThrottle, fn, delay, clock)
}

// Call schedules or suppresses an execution of fn with arg.
// fn is never invoked while the Limiter's lock is held, so it may call back
// into the Limiter.
func (l *Limiter[T]) Call(arg T) {
	l.mu.Lock()

	if l.policy == PolicyDebounce {
		l.releaseLocked()
		l.arg = arg
		l.pending = true
		l.armLocked(l.expireDebounce)
		l.mu.Unlock()
		return
	}

	if l.cooling {
		l.arg = arg
		l.pending = true
		l.mu.Unlock()
		return
	}

	l.cooling = true
	l.last = l.clock.Now()
	l.armLocked(l.expireCooldown)
	l.mu.Unlock()

	l.fn(arg)
}

// Cancel releases the pending timer and drops any pending arguments.
// The Limiter returns to idle; a cancelled timer never runs fn.
func (l *Limiter[T]) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.releaseLocked()
	l.cooling = false
	l.clearLocked()
}

// Pending reports whether an execution is waiting on the timer.
func (l *Limiter[T]) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Cooling reports whether a throttle Limiter is inside its cooldown.
func (l *Limiter[T]) Cooling() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cooling
}

// LastRun returns when fn was last invoked, or the zero time.
func (l *Limiter[T]) LastRun() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Policy returns the policy the Limiter was built with.
func (l *Limiter[T]) Policy() Policy { return l.policy }

// Delay returns the effective interval, after defaulting.
func (l *Limiter[T]) Delay() time.Duration { return l.delay }

// armLocked replaces the timer. Callers must have released the old one.
func (l *Limiter[T]) armLocked(expire func(gen uint64)) {
	l.gen++
	gen := l.gen
	l.timer = l.clock.AfterFunc(l.delay, func() { expire(gen) })
}

func (l *Limiter[T]) releaseLocked() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.gen++
}

func (l *Limiter[T]) clearLocked() {
	var zero T
	l.arg = zero
	l.pending = false
}

func (l *Limiter[T]) expireDebounce(gen uint64) {
	l.mu.Lock()
	if gen != l.gen || !l.pending {
		l.mu.Unlock()
		return
	}
	arg := l.arg
	l.clearLocked()
	l.timer = nil
	l.last = l.clock.Now()
	l.mu.Unlock()

	l.fn(arg)
}

func (l *Limiter[T]) expireCooldown(gen uint64) {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.timer = nil

	if !l.pending {
		l.cooling = false
		l.mu.Unlock()
		return
	}

	// Trailing call starts a fresh cooldown.
	arg := l.arg
	l.clearLocked()
	l.last = l.clock.Now()
	l.armLocked(l.expireCooldown)
	l.mu.Unlock()

	l.fn(arg)
}
