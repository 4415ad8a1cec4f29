package timer

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// call stopped the timer; false means it already ran or was stopped.
	Stop() bool
}

// Clock is the time source used by rate limiters and the size observer.
// Callbacks scheduled with AfterFunc may run on any goroutine the
// implementation chooses; Scheduler runs them on the session loop.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// System is a Clock backed directly by the runtime timer.
// Callbacks run on their own goroutine.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
