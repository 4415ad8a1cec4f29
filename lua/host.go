package lua

import (
	"github.com/drake/winsize/size"
	"github.com/drake/winsize/timer"
)

// Host provides the bridge between Engine and the rest of the system.
// All methods are called on the goroutine that drives the Engine.
type Host interface {
	// Print writes a line of script output to the UI.
	Print(text string)

	// Size returns the last published terminal size.
	Size() size.Dimensions

	// Clock schedules rate-limited script callbacks. Callbacks must be
	// delivered on the Engine's goroutine.
	Clock() timer.Clock
}
