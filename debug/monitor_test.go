package debug

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/winsize/session"
	"github.com/drake/winsize/size"
)

type staticSource struct{ stats session.Stats }

func (s staticSource) Stats() session.Stats { return s.stats }

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewMonitorDisabled(t *testing.T) {
	t.Setenv("WINSIZE_DEBUG", "")
	assert.Nil(t, NewMonitor(staticSource{}, time.Second, false, zerolog.Nop()))

	// A nil monitor is inert.
	var m *Monitor
	m.Start(context.Background())
}

func TestNewMonitorEnabledByEnv(t *testing.T) {
	t.Setenv("WINSIZE_DEBUG", "1")
	m := NewMonitor(staticSource{}, 0, false, zerolog.Nop())
	require.NotNil(t, m)
	assert.Equal(t, DefaultInterval, m.interval)
}

func TestMonitorLogsStats(t *testing.T) {
	var out syncBuffer
	logger := zerolog.New(&out).Level(zerolog.DebugLevel)

	src := staticSource{stats: session.Stats{
		Size:            size.Dimensions{Width: 80, Height: 24},
		State:           size.Attached,
		EventsProcessed: 7,
		Observer:        size.Stats{Publishes: 3},
	}}

	m := NewMonitor(src, 5*time.Millisecond, true, logger)
	require.NotNil(t, m)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"message":"stats"`)
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		if rec["message"] != "stats" {
			continue
		}
		assert.Equal(t, "80x24", rec["size"])
		assert.Equal(t, "attached", rec["state"])
		assert.EqualValues(t, 7, rec["events"])
		assert.EqualValues(t, 3, rec["publishes"])
		assert.Equal(t, "monitor", rec["component"])
		return
	}
	t.Fatal("no stats line")
}
