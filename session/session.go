package session

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/drake/winsize/config"
	"github.com/drake/winsize/event"
	"github.com/drake/winsize/internal/buffer"
	"github.com/drake/winsize/lua"
	"github.com/drake/winsize/platform"
	"github.com/drake/winsize/ratelimit"
	"github.com/drake/winsize/size"
	"github.com/drake/winsize/timer"
	"github.com/drake/winsize/ui"
)

// Ensure Session implements lua.Host at compile time
var _ lua.Host = (*Session)(nil)

// watchFile is replaced in tests.
var watchFile = config.Watch

// DefaultReloadDelay debounces bursts of file events from a single save.
const DefaultReloadDelay = 200 * time.Millisecond

// Config holds session configuration
type Config struct {
	Policy      ratelimit.Policy
	Interval    time.Duration
	InitFile    string        // Optional user init.lua
	Scripts     []string      // CLI script arguments, run after InitFile
	Watch       bool          // Reload scripts when InitFile changes
	ReloadDelay time.Duration // Debounce for Watch
}

// PlatformFunc builds the size.Platform for a session. post delivers
// callbacks onto the session loop.
type PlatformFunc func(post platform.Poster) size.Platform

// Stats is a snapshot of session activity.
type Stats struct {
	Size     size.Dimensions
	State    size.State
	Observer size.Stats

	EventsProcessed int64
	Resizes         int64
	Timers          int64
	Controls        int64
	ScriptChanges   int64
	Reloads         int64

	JobQueueLen     int
	JobQueueCap     int
	TimersScheduled int64
	TimersFired     int64
	Goroutines      int
}

// Session wires the platform, the size observer, the Lua engine and the UI
// together. Everything except Quit runs on a single loop goroutine.
type Session struct {
	// Components
	ui       ui.UI
	platform size.Platform
	observer *size.Observer
	engine   *lua.Engine
	sched    *timer.Scheduler
	reload   *ratelimit.Limiter[struct{}]
	logger   zerolog.Logger

	// Event bus
	in     chan<- event.Event
	out    <-chan event.Event
	jobs   chan func()
	busMu  sync.RWMutex
	closed bool

	// Config (retained for reload)
	config Config

	statsMu sync.Mutex
	stats   Stats

	// Shutdown coordination
	wg        conc.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new Session. It is passive - no goroutines start here
// except the event bus buffer.
func New(u ui.UI, newPlatform PlatformFunc, cfg Config, logger zerolog.Logger) *Session {
	if cfg.ReloadDelay <= 0 {
		cfg.ReloadDelay = DefaultReloadDelay
	}

	in, out := buffer.Unbounded[event.Event](64, 10000, logger)
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ui:     u,
		logger: logger,
		in:     in,
		out:    out,
		jobs:   make(chan func(), 1024),
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.sched = timer.NewScheduler(s.jobs, s.done)
	s.platform = newPlatform(s.postResize)
	s.observer = size.NewObserver(s.platform, size.SubscriberFunc(s.publish),
		size.WithPolicy(cfg.Policy),
		size.WithInterval(cfg.Interval),
		size.WithClock(s.sched),
		size.WithLogger(logger),
	)
	s.engine = lua.NewEngine(s, logger)
	s.reload = ratelimit.Debounce(func(struct{}) { s.doReload() }, cfg.ReloadDelay, s.sched)

	return s
}

// Run starts the session and blocks until the UI exits.
func (s *Session) Run() error {
	s.observer.Activate()
	s.snapshot()
	s.ui.Publish(s.observer.Size())

	if err := s.boot(); err != nil {
		s.logger.Error().Err(err).Msg("boot failed")
		s.ui.Print(fmt.Sprintf("[system] boot error: %v", err))
	}

	s.wg.Go(s.processEvents)
	if s.config.Watch && s.config.InitFile != "" {
		s.wg.Go(s.watchScripts)
	}

	err := s.ui.Run()
	// Ensure shutdown of goroutines/resources when UI exits
	s.shutdown()
	s.wg.Wait()
	s.teardown()
	return err
}

// processEvents is the main event loop.
func (s *Session) processEvents() {
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.out:
			if !ok {
				return
			}
			s.handleEvent(ev)
		case job := <-s.jobs:
			s.handleEvent(event.Event{Type: event.Timer, Callback: job})
		case req := <-s.ui.Outbound():
			s.handleUIEvent(req)
		}
	}
}

// handleEvent executes a single event on the session loop.
func (s *Session) handleEvent(ev event.Event) {
	switch ev.Type {
	case event.Resize, event.Timer:
		if ev.Callback != nil {
			ev.Callback()
		}
	case event.Control:
		s.handleControl(ev.Action)
	case event.Script:
		s.reload.Call(struct{}{})
	}
	s.record(ev.Type)
}

func (s *Session) handleUIEvent(req ui.Event) {
	s.logger.Debug().Stringer("request", req).Msg("ui request")
	switch req {
	case ui.EventResumed:
		s.handleEvent(event.Event{Type: event.Control, Action: event.ActionReactivate})
	case ui.EventReload:
		s.handleEvent(event.Event{Type: event.Control, Action: event.ActionReload})
	}
}

// handleControl processes lifecycle requests.
func (s *Session) handleControl(action string) {
	switch action {
	case event.ActionQuit:
		s.shutdown()
	case event.ActionReload:
		s.doReload()
	case event.ActionReactivate:
		s.observer.Reactivate()
		s.ui.Publish(s.observer.Size())
		s.engine.UpdateSize(s.observer.Size())
	}
}

// boot loads the VM state: core scripts, init.lua, then CLI scripts.
func (s *Session) boot() error {
	if err := s.engine.Init(); err != nil {
		return err
	}

	if s.config.InitFile != "" {
		if _, err := os.Stat(s.config.InitFile); err == nil {
			if err := s.engine.DoFile(s.config.InitFile); err != nil {
				return fmt.Errorf("init.lua: %w", err)
			}
		}
	}

	if err := s.engine.LoadScripts(s.config.Scripts); err != nil {
		return err
	}

	s.engine.CallHook("ready")
	return nil
}

func (s *Session) doReload() {
	s.statsMu.Lock()
	s.stats.Reloads++
	s.statsMu.Unlock()

	if err := s.boot(); err != nil {
		s.logger.Warn().Err(err).Msg("reload failed")
		s.ui.Print(fmt.Sprintf("[system] reload failed: %v", err))
		return
	}
	s.logger.Info().Msg("scripts reloaded")
	s.ui.Print("[system] scripts reloaded")
	s.engine.CallHook("reloaded")
}

// watchScripts posts a Script event whenever InitFile changes on disk.
func (s *Session) watchScripts() {
	err := watchFile(s.ctx, s.config.InitFile, func() {
		s.post(event.Event{Type: event.Script})
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.config.InitFile).Msg("script watch stopped")
	}
}

// publish receives sizes from the observer.
func (s *Session) publish(d size.Dimensions) {
	s.ui.Publish(d)
	s.engine.OnResize(d)
}

// postResize is the platform.Poster handed to the platform.
func (s *Session) postResize(fn func()) {
	s.post(event.Event{Type: event.Resize, Callback: fn})
}

// post enqueues ev for the loop. Events posted after shutdown are dropped.
func (s *Session) post(ev event.Event) {
	s.busMu.RLock()
	defer s.busMu.RUnlock()
	if s.closed {
		return
	}
	s.in <- ev
}

func (s *Session) record(t event.Type) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	s.stats.EventsProcessed++
	switch t {
	case event.Resize:
		s.stats.Resizes++
	case event.Timer:
		s.stats.Timers++
	case event.Control:
		s.stats.Controls++
	case event.Script:
		s.stats.ScriptChanges++
	}
	s.snapshotLocked()
}

// snapshot copies observer state into stats. Loop goroutine only.
func (s *Session) snapshot() {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.snapshotLocked()
}

func (s *Session) snapshotLocked() {
	s.stats.Size = s.observer.Size()
	s.stats.State = s.observer.State()
	s.stats.Observer = s.observer.Stats()
}

// shutdown stops the loop and asks the UI to exit. Safe from any goroutine.
func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.done)

		s.busMu.Lock()
		s.closed = true
		close(s.in)
		s.busMu.Unlock()

		s.ui.Quit()
	})
}

// teardown releases loop-owned state once the loop has exited.
func (s *Session) teardown() {
	s.observer.Deactivate()
	s.reload.Cancel()
	s.engine.Close()
	if c, ok := s.platform.(interface{ Close() }); ok {
		c.Close()
	}
	for range s.out {
	}
	s.logger.Debug().Msg("session stopped")
}

// --- Controls ---

// Quit stops the session. Safe from any goroutine.
func (s *Session) Quit() { s.shutdown() }

// Reload re-initialises the Lua VM and reruns all scripts.
func (s *Session) Reload() {
	s.post(event.Event{Type: event.Control, Action: event.ActionReload})
}

// Reactivate re-binds the observer, for example after a context change.
func (s *Session) Reactivate() {
	s.post(event.Event{Type: event.Control, Action: event.ActionReactivate})
}

// Stats returns a snapshot of session activity. Safe from any goroutine.
func (s *Session) Stats() Stats {
	s.statsMu.Lock()
	st := s.stats
	s.statsMu.Unlock()

	st.JobQueueLen = len(s.jobs)
	st.JobQueueCap = cap(s.jobs)
	st.TimersScheduled, st.TimersFired = s.sched.Stats()
	st.Goroutines = runtime.NumGoroutine()
	return st
}

// --- Host Implementation ---

// Print writes script output to the UI.
func (s *Session) Print(text string) { s.ui.Print(text) }

// Size returns the last published size.
func (s *Session) Size() size.Dimensions { return s.observer.Size() }

// Clock delivers script timers on the session loop.
func (s *Session) Clock() timer.Clock { return s.sched }
