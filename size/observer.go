package size

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/drake/winsize/ratelimit"
	"github.com/drake/winsize/timer"
)

// DefaultInterval bounds publishes during a continuous drag-resize.
const DefaultInterval = 300 * time.Millisecond

// Stats counts observer activity since construction.
type Stats struct {
	Notifications int64 // Raw resize notifications received
	Publishes     int64 // Sizes handed to the Subscriber
	Activations   int64
}

// Observer publishes the platform size to a Subscriber.
//
// Activate, Deactivate and Reactivate must be called from one goroutine,
// and never from inside Subscriber.Publish. Platform notifications and
// limiter timers may arrive on any goroutine: with the default
// timer.System clock they run on runtime timer goroutines. Once Deactivate
// returns, nothing is published for the released binding.
type Observer struct {
	platform Platform
	sink     Subscriber

	policy   ratelimit.Policy
	interval time.Duration
	clock    timer.Clock
	logger   zerolog.Logger

	// deliver serialises publishes with release.
	deliver sync.Mutex

	mu      sync.Mutex
	current Dimensions
	binding *binding
	stats   Stats
}

// binding is one Attached period. Everything scheduled during the period
// checks active, under Observer.mu, before touching the Observer, so a
// notification or timer that outlives its binding has no effect.
type binding struct {
	active      bool
	unsubscribe func()
	limiter     *ratelimit.Limiter[struct{}]
}

// Option configures an Observer.
type Option func(*Observer)

// WithPolicy selects the rate limiting policy. The default is throttle.
func WithPolicy(p ratelimit.Policy) Option {
	return func(o *Observer) { o.policy = p }
}

// WithInterval sets the rate limiting interval.
func WithInterval(d time.Duration) Option {
	return func(o *Observer) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithClock sets the clock the rate limiter schedules on.
func WithClock(c timer.Clock) Option {
	return func(o *Observer) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Observer) { o.logger = l }
}

// NewObserver creates a Detached observer. Call Activate to bind it.
func NewObserver(p Platform, sub Subscriber, opts ...Option) *Observer {
	o := &Observer{
		platform: p,
		sink:     sub,
		policy:   ratelimit.PolicyThrottle,
		interval: DefaultInterval,
		clock:    timer.System{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Activate binds the observer to the platform. Any existing binding is
// released first, so calling Activate after a context change re-subscribes.
// Without a live platform the size is reset to (0, 0) and nothing is
// subscribed.
func (o *Observer) Activate() {
	o.release()

	o.mu.Lock()
	o.stats.Activations++
	if !o.platform.Available() {
		o.current = Dimensions{}
		o.mu.Unlock()
		o.logger.Debug().Msg("no terminal attached, staying detached")
		return
	}

	o.current = clamp(o.platform.Size())
	current := o.current

	b := &binding{active: true}
	b.limiter = ratelimit.New(o.policy, func(struct{}) {
		o.update(b)
	}, o.interval, o.clock)
	o.binding = b
	o.mu.Unlock()

	unsubscribe := o.platform.Subscribe(func() { o.notify(b) })

	o.mu.Lock()
	b.unsubscribe = unsubscribe
	o.mu.Unlock()

	o.logger.Debug().
		Stringer("size", current).
		Stringer("policy", o.policy).
		Dur("interval", o.interval).
		Msg("size observer attached")
}

// Deactivate unsubscribes from the platform and cancels any pending
// rate-limited update. No publish happens after Deactivate returns.
// The last size is retained.
func (o *Observer) Deactivate() {
	if o.release() {
		o.logger.Debug().Stringer("size", o.Size()).Msg("size observer detached")
	}
}

// Reactivate re-runs activation, for example after the terminal was
// suspended and resumed.
func (o *Observer) Reactivate() {
	o.Deactivate()
	o.Activate()
}

// Size returns the last known size.
func (o *Observer) Size() Dimensions {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// State reports whether the observer is subscribed to the platform.
func (o *Observer) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.binding != nil {
		return Attached
	}
	return Detached
}

// Pending reports whether a rate-limited update is waiting to fire.
func (o *Observer) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.binding != nil && o.binding.limiter.Pending()
}

// Stats returns activity counters.
func (o *Observer) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stats
}

// notify receives a raw platform notification for b.
func (o *Observer) notify(b *binding) {
	o.mu.Lock()
	active := b.active
	if active {
		o.stats.Notifications++
	}
	o.mu.Unlock()

	if active {
		b.limiter.Call(struct{}{})
	}
}

// update re-reads the size and publishes it, unless b was released.
func (o *Observer) update(b *binding) {
	o.deliver.Lock()
	defer o.deliver.Unlock()

	o.mu.Lock()
	if !b.active {
		o.mu.Unlock()
		return
	}
	o.current = clamp(o.platform.Size())
	o.stats.Publishes++
	d := o.current
	o.mu.Unlock()

	o.sink.Publish(d)
}

// release tears down the current binding, if any. It waits for an
// in-flight publish, so none follows it.
func (o *Observer) release() bool {
	o.deliver.Lock()
	o.mu.Lock()
	b := o.binding
	if b == nil {
		o.mu.Unlock()
		o.deliver.Unlock()
		return false
	}
	o.binding = nil
	b.active = false
	unsubscribe := b.unsubscribe
	o.mu.Unlock()
	o.deliver.Unlock()

	b.limiter.Cancel()
	if unsubscribe != nil {
		unsubscribe()
	}
	return true
}
