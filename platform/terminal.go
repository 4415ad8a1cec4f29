// Package platform provides size.Platform implementations for real
// terminals and for headless processes.
package platform

import (
	"os"
	"sync"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Poster hands a callback to the goroutine that owns the observer.
// Terminal never invokes subscribers on its own goroutines.
type Poster func(fn func())

// Terminal reports the size of a terminal file descriptor and delivers
// resize notifications through a Poster.
type Terminal struct {
	file   *os.File
	post   Poster
	logger zerolog.Logger

	mu     sync.Mutex
	nextID int
	stops  map[int]func()
}

// NewTerminal creates a Terminal for f (usually os.Stdout).
func NewTerminal(f *os.File, post Poster, logger zerolog.Logger) *Terminal {
	return &Terminal{
		file:   f,
		post:   post,
		logger: logger,
		stops:  make(map[int]func()),
	}
}

// Available reports whether the file is an interactive terminal.
func (t *Terminal) Available() bool {
	if t.file == nil {
		return false
	}
	fd := t.file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Size returns the terminal size, or (0, 0) if it cannot be read.
func (t *Terminal) Size() (int, int) {
	if t.file == nil {
		return 0, 0
	}
	w, h, err := term.GetSize(t.file.Fd())
	if err != nil {
		t.logger.Debug().Err(err).Msg("reading terminal size")
		return 0, 0
	}
	return w, h
}

// Subscribe starts watching for resizes. Each registration owns its own
// watcher so that unsubscribing one never affects another.
func (t *Terminal) Subscribe(fn func()) func() {
	stop := t.watch(func() { t.post(fn) })

	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.stops[id] = stop
	t.mu.Unlock()

	return func() {
		// Whoever removes the entry owns the stop; Close may have already.
		t.mu.Lock()
		_, owned := t.stops[id]
		delete(t.stops, id)
		t.mu.Unlock()
		if owned {
			stop()
		}
	}
}

// Close stops every active watcher.
func (t *Terminal) Close() {
	t.mu.Lock()
	stops := t.stops
	t.stops = make(map[int]func())
	t.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

// Subscriptions returns the number of active registrations.
func (t *Terminal) Subscriptions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stops)
}
