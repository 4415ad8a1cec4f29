// Package debug provides runtime monitoring and diagnostics.
package debug

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/drake/winsize/session"
)

// DefaultInterval is the period between stats lines.
const DefaultInterval = 5 * time.Second

// Enabled returns true if debug mode is active (WINSIZE_DEBUG=1).
func Enabled() bool {
	return os.Getenv("WINSIZE_DEBUG") == "1"
}

// StatsSource is implemented by *session.Session.
type StatsSource interface {
	Stats() session.Stats
}

// Monitor periodically logs session statistics when debug mode is enabled.
type Monitor struct {
	source   StatsSource
	interval time.Duration
	logger   zerolog.Logger
}

// NewMonitor creates a new monitor for the given session.
// If force is false and WINSIZE_DEBUG is not set, returns nil.
func NewMonitor(src StatsSource, interval time.Duration, force bool, logger zerolog.Logger) *Monitor {
	if !force && !Enabled() {
		return nil
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Monitor{
		source:   src,
		interval: interval,
		logger:   logger.With().Str("component", "monitor").Logger(),
	}
}

// Start begins the monitoring loop in a goroutine. It stops when ctx is
// cancelled.
func (m *Monitor) Start(ctx context.Context) {
	if m == nil {
		return
	}
	go m.run(ctx)
}

func (m *Monitor) run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Debug().Dur("interval", m.interval).Msg("monitor started")

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug().Msg("monitor stopped")
			return
		case <-ticker.C:
			m.logStats()
		}
	}
}

func (m *Monitor) logStats() {
	s := m.source.Stats()

	m.logger.Debug().
		Stringer("size", s.Size).
		Stringer("state", s.State).
		Int64("events", s.EventsProcessed).
		Int64("resizes", s.Resizes).
		Int64("timers", s.Timers).
		Int64("controls", s.Controls).
		Int64("script_changes", s.ScriptChanges).
		Int64("reloads", s.Reloads).
		Int64("notifications", s.Observer.Notifications).
		Int64("publishes", s.Observer.Publishes).
		Int64("activations", s.Observer.Activations).
		Int("job_q", s.JobQueueLen).
		Int("job_cap", s.JobQueueCap).
		Int64("timers_scheduled", s.TimersScheduled).
		Int64("timers_fired", s.TimersFired).
		Int("goroutines", s.Goroutines).
		Msg("stats")
}
