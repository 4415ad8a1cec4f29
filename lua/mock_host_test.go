package lua

import (
	"sync"
	"time"

	"github.com/drake/winsize/size"
	"github.com/drake/winsize/timer"
)

// MockHost implements Host for testing.
type MockHost struct {
	mu sync.Mutex

	// Captured calls
	PrintCalls []string

	CurrentSize size.Dimensions
	FakeClock   *timer.Fake
}

func NewMockHost() *MockHost {
	return &MockHost{
		FakeClock: timer.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func (m *MockHost) Print(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PrintCalls = append(m.PrintCalls, text)
}

func (m *MockHost) Size() size.Dimensions { return m.CurrentSize }

func (m *MockHost) Clock() timer.Clock { return m.FakeClock }

// Helper methods for tests

func (m *MockHost) DrainPrintCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := m.PrintCalls
	m.PrintCalls = nil
	return calls
}
