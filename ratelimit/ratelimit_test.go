package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/winsize/timer"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const ms = time.Millisecond

// call records one execution of the wrapped function.
type call struct {
	Arg string
	At  time.Duration // Offset from epoch
}

type recorder struct {
	clock *timer.Fake
	calls []call
}

func newRecorder() *recorder {
	return &recorder{clock: timer.NewFake(epoch)}
}

func (r *recorder) fn(arg string) {
	r.calls = append(r.calls, call{Arg: arg, At: r.clock.Now().Sub(epoch)})
}

func TestDebounceCoalescing(t *testing.T) {
	r := newRecorder()
	l := Debounce(r.fn, 100*ms, r.clock)

	l.Call("a")
	r.clock.Advance(10 * ms)
	l.Call("b")
	r.clock.Advance(10 * ms)
	l.Call("c")

	r.clock.Advance(99 * ms)
	assert.Empty(t, r.calls, "nothing runs before the quiet period ends")
	assert.True(t, l.Pending())

	r.clock.Advance(1 * ms)
	require.Len(t, r.calls, 1)
	assert.Equal(t, call{Arg: "c", At: 120 * ms}, r.calls[0])

	r.clock.Advance(time.Second)
	assert.Len(t, r.calls, 1)
	assert.False(t, l.Pending())
	assert.Equal(t, epoch.Add(120*ms), l.LastRun())
}

func TestDebounceQuiescence(t *testing.T) {
	r := newRecorder()
	l := Debounce(r.fn, 100*ms, r.clock)

	l.Call("only")
	r.clock.Advance(time.Second)

	assert.Equal(t, []call{{Arg: "only", At: 100 * ms}}, r.calls)
}

func TestDebounceSingleTimer(t *testing.T) {
	r := newRecorder()
	l := Debounce(r.fn, 100*ms, r.clock)

	for i := 0; i < 10; i++ {
		l.Call("x")
		assert.Equal(t, 1, r.clock.Pending(), "at most one pending timer")
		r.clock.Advance(5 * ms)
	}
}

func TestThrottleImmediacy(t *testing.T) {
	r := newRecorder()
	l := Throttle(r.fn, 100*ms, r.clock)

	l.Call("first")
	assert.Equal(t, []call{{Arg: "first", At: 0}}, r.calls, "first call runs synchronously")
	assert.True(t, l.Cooling())
}

func TestThrottleTrailingCall(t *testing.T) {
	r := newRecorder()
	l := Throttle(r.fn, 100*ms, r.clock)

	l.Call("t0")
	r.clock.Advance(50 * ms)
	l.Call("t50")
	r.clock.Advance(40 * ms)
	l.Call("t90")

	r.clock.Advance(9 * ms)
	require.Len(t, r.calls, 1)

	r.clock.Advance(1 * ms)
	assert.Equal(t, []call{
		{Arg: "t0", At: 0},
		{Arg: "t90", At: 100 * ms},
	}, r.calls)

	// No further calls arrive, so the second cooldown lapses silently.
	r.clock.Advance(time.Second)
	assert.Len(t, r.calls, 2)
	assert.False(t, l.Cooling())
}

func TestThrottleSilence(t *testing.T) {
	r := newRecorder()
	l := Throttle(r.fn, 100*ms, r.clock)

	l.Call("once")
	r.clock.Advance(time.Second)

	assert.Equal(t, []call{{Arg: "once", At: 0}}, r.calls)
	assert.False(t, l.Cooling())
	assert.Zero(t, r.clock.Pending())
}

func TestThrottleReturnsToIdle(t *testing.T) {
	r := newRecorder()
	l := Throttle(r.fn, 100*ms, r.clock)

	l.Call("a")
	r.clock.Advance(150 * ms)
	l.Call("b")

	assert.Equal(t, []call{
		{Arg: "a", At: 0},
		{Arg: "b", At: 150 * ms},
	}, r.calls, "a call after an idle cooldown runs immediately")
}

func TestThrottleTrailingStartsCooldown(t *testing.T) {
	r := newRecorder()
	l := Throttle(r.fn, 100*ms, r.clock)

	l.Call("a")
	r.clock.Advance(50 * ms)
	l.Call("b")
	r.clock.Advance(60 * ms) // Trailing "b" ran at 100
	l.Call("c")              // Within the cooldown started by the trailing call

	require.Len(t, r.calls, 2)
	r.clock.Advance(90 * ms)
	assert.Equal(t, call{Arg: "c", At: 200 * ms}, r.calls[2])
}

func TestCancelPreventsExecution(t *testing.T) {
	for _, policy := range []Policy{PolicyDebounce, PolicyThrottle} {
		t.Run(policy.String(), func(t *testing.T) {
			r := newRecorder()
			l := New(policy, r.fn, 100*ms, r.clock)

			l.Call("a")
			l.Call("b")
			before := len(r.calls)
			l.Cancel()

			r.clock.Advance(time.Second)
			assert.Len(t, r.calls, before)
			assert.False(t, l.Pending())
			assert.Zero(t, r.clock.Pending())
		})
	}
}

func TestStaleTimerIgnored(t *testing.T) {
	r := newRecorder()
	l := Debounce(r.fn, 100*ms, r.clock)

	// A clock whose Stop cannot prevent the callback still must not fire
	// a replaced deadline.
	sticky := &stickyClock{Fake: r.clock}
	l.clock = sticky

	l.Call("a")
	r.clock.Advance(50 * ms)
	l.Call("b")
	r.clock.Advance(time.Second)

	assert.Equal(t, []call{{Arg: "b", At: 150 * ms}}, r.calls)
}

func TestCallbackMayReenter(t *testing.T) {
	clock := timer.NewFake(epoch)
	var l *Limiter[int]
	var got []int
	l = Throttle(func(n int) {
		got = append(got, n)
		if n == 1 {
			l.Call(2)
		}
	}, 100*ms, clock)

	l.Call(1)
	clock.Advance(100 * ms)
	assert.Equal(t, []int{1, 2}, got)
}

func TestDefaults(t *testing.T) {
	l := Throttle(func(struct{}) {}, 0, nil)
	assert.Equal(t, DefaultDelay, l.Delay())
	assert.Equal(t, PolicyThrottle, l.Policy())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"throttle", PolicyThrottle, false},
		{"Debounce", PolicyDebounce, false},
		{" debounce ", PolicyDebounce, false},
		{"", PolicyThrottle, false},
		{"leaky", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

// stickyClock hands out timers whose Stop reports success but never
// removes the callback.
type stickyClock struct {
	*timer.Fake
}

type stickyTimer struct{}

func (stickyTimer) Stop() bool { return true }

func (c *stickyClock) AfterFunc(d time.Duration, f func()) timer.Timer {
	c.Fake.AfterFunc(d, f)
	return stickyTimer{}
}
