package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"

	"github.com/drake/winsize/size"
)

// ConsoleUI writes one line per published size. It is used for
// --ui=console and whenever output is not a terminal.
type ConsoleUI struct {
	mu     sync.Mutex
	out    io.Writer
	output *termenv.Output

	outbound chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewConsoleUI creates a console UI writing to w. Styling follows the
// color profile termenv detects for w, so pipes get plain text.
func NewConsoleUI(w io.Writer) *ConsoleUI {
	return &ConsoleUI{
		out:      w,
		output:   termenv.NewOutput(w),
		outbound: make(chan Event),
		done:     make(chan struct{}),
	}
}

// Publish prints the size as WxH.
func (c *ConsoleUI) Publish(d size.Dimensions) {
	c.println(c.output.String(d.String()).Bold().String())
}

// Print outputs a line of script output.
func (c *ConsoleUI) Print(text string) {
	c.println(c.output.String(text).Faint().String())
}

func (c *ConsoleUI) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

// Run blocks until Quit.
func (c *ConsoleUI) Run() error {
	<-c.done
	return nil
}

// Done returns a channel that closes when the UI is done
func (c *ConsoleUI) Done() <-chan struct{} {
	return c.done
}

// Quit requests the console UI to exit.
func (c *ConsoleUI) Quit() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

// Outbound never delivers; the console has no interactive controls.
func (c *ConsoleUI) Outbound() <-chan Event {
	return c.outbound
}
