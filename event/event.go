// Package event defines the messages carried on the session event bus.
package event

// Type identifies the source of the message
type Type int

const (
	Resize  Type = iota // Platform resize notification
	Timer               // Scheduled callback from timer.Scheduler
	Control             // Lifecycle request
	Script              // Script file changed on disk
)

func (t Type) String() string {
	switch t {
	case Resize:
		return "resize"
	case Timer:
		return "timer"
	case Control:
		return "control"
	case Script:
		return "script"
	default:
		return "unknown"
	}
}

// Control action constants
const (
	ActionQuit       = "quit"
	ActionReload     = "reload"
	ActionReactivate = "reactivate"
)

// Event is the universal packet handled by the session loop.
type Event struct {
	Type     Type
	Callback func() // Resize and Timer
	Action   string // Control, use Action* constants
}
