// Package ui defines the display layer that receives published sizes.
package ui

import "github.com/drake/winsize/size"

// UI defines the contract for the display layer.
// Implementations: ConsoleUI here, BubbleTeaUI in ui/tui.
type UI interface {
	Run() error
	Quit()
	Done() <-chan struct{}

	// Outbound carries requests from the UI to the session.
	Outbound() <-chan Event

	// Publish shows a new terminal size. UI implements size.Subscriber.
	Publish(d size.Dimensions)

	// Print appends a line of script or status output.
	Print(text string)
}

// Event is a request from the UI to the session.
type Event int

const (
	// EventResumed is sent after the process returns to the foreground.
	EventResumed Event = iota
	// EventReload asks the session to reload scripts.
	EventReload
)

func (e Event) String() string {
	switch e {
	case EventResumed:
		return "resumed"
	case EventReload:
		return "reload"
	default:
		return "unknown"
	}
}
