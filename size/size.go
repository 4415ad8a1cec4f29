// Package size keeps a published terminal size in sync with the platform.
//
// An Observer reads the current size from a Platform, subscribes to its
// resize notifications through a rate limiter, and republishes each accepted
// size to a Subscriber. Without a live terminal it degrades to a static
// (0, 0) and never subscribes.
package size

import "fmt"

// Dimensions is a terminal size in cells. Values are replaced wholesale;
// width and height always change together.
type Dimensions struct {
	Width  int
	Height int
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// IsZero reports whether d is the headless default.
func (d Dimensions) IsZero() bool {
	return d.Width == 0 && d.Height == 0
}

// clamp keeps platform values non-negative.
func clamp(width, height int) Dimensions {
	return Dimensions{Width: max(width, 0), Height: max(height, 0)}
}

// Platform is the window context an Observer binds to.
type Platform interface {
	// Available reports whether a live terminal is attached.
	Available() bool

	// Size returns the current width and height.
	Size() (width, height int)

	// Subscribe registers fn for resize notifications. The returned
	// function removes exactly this registration.
	Subscribe(fn func()) (unsubscribe func())
}

// Subscriber receives published sizes.
type Subscriber interface {
	Publish(d Dimensions)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(Dimensions)

func (f SubscriberFunc) Publish(d Dimensions) { f(d) }

// State is the binding state of an Observer.
type State int

const (
	Detached State = iota
	Attached
)

func (s State) String() string {
	switch s {
	case Detached:
		return "detached"
	case Attached:
		return "attached"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
