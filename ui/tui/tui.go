// Package tui implements ui.UI with Bubble Tea.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/winsize/size"
	"github.com/drake/winsize/ui"
)

var _ ui.UI = (*BubbleTeaUI)(nil)

// BubbleTeaUI bridges the session's push calls with Bubble Tea's
// model/update/view event loop.
type BubbleTeaUI struct {
	mu      sync.Mutex
	program *tea.Program

	caption string
	options []tea.ProgramOption

	// Message queue - buffered channel drained by a single goroutine.
	// This decouples callers from tea.Program.Send() which can block.
	msgQueue chan tea.Msg

	// Outbound requests from UI to Session (resume, reload).
	outbound chan ui.Event

	// Shutdown coordination
	done     chan struct{}
	doneOnce sync.Once
}

// NewBubbleTeaUI creates a new Bubble Tea-based UI. caption is shown under
// the title. Extra options are appended after the defaults.
func NewBubbleTeaUI(caption string, opts ...tea.ProgramOption) *BubbleTeaUI {
	return &BubbleTeaUI{
		caption:  caption,
		options:  opts,
		msgQueue: make(chan tea.Msg, 1024),
		outbound: make(chan ui.Event, 16),
		done:     make(chan struct{}),
	}
}

// send queues a message for delivery to the Bubble Tea program.
// Blocks until the message is queued or the UI has exited.
func (b *BubbleTeaUI) send(msg tea.Msg) {
	select {
	case <-b.done:
	case b.msgQueue <- msg:
	}
}

// Publish implements size.Subscriber.
func (b *BubbleTeaUI) Publish(d size.Dimensions) {
	b.send(ui.SizeMsg(d))
}

// Print appends a line to the output area.
func (b *BubbleTeaUI) Print(text string) {
	b.send(ui.PrintMsg(text))
}

// Run starts the TUI and blocks until exit.
func (b *BubbleTeaUI) Run() error {
	model := NewModel(b.outbound, b.caption)

	opts := append([]tea.ProgramOption{tea.WithAltScreen()}, b.options...)

	b.mu.Lock()
	select {
	case <-b.done:
		b.mu.Unlock()
		return nil // Quit before Run
	default:
	}
	program := tea.NewProgram(model, opts...)
	b.program = program
	b.mu.Unlock()

	// Single goroutine drains message queue to Bubble Tea.
	go func() {
		for {
			select {
			case <-b.done:
				return
			case msg := <-b.msgQueue:
				program.Send(msg)
			}
		}
	}()

	_, err := program.Run()

	b.doneOnce.Do(func() {
		close(b.done)
	})
	return err
}

// Done returns a channel that closes when the UI exits.
func (b *BubbleTeaUI) Done() <-chan struct{} {
	return b.done
}

// Quit signals the TUI to exit.
func (b *BubbleTeaUI) Quit() {
	b.doneOnce.Do(func() {
		close(b.done)
	})

	b.mu.Lock()
	program := b.program
	b.mu.Unlock()
	if program != nil {
		program.Quit()
	}
}

// Outbound returns a channel of requests from UI to Session.
func (b *BubbleTeaUI) Outbound() <-chan ui.Event {
	return b.outbound
}
