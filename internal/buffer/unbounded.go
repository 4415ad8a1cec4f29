// Package buffer provides the growable channel used as the session event bus.
package buffer

import (
	"github.com/rs/zerolog"
)

// Unbounded creates a channel buffer that grows as needed.
// It returns a write-only channel to feed data in, and a read-only channel to read data out.
//
// initialCap: The starting size of the backing slice.
// hardLimit: The maximum number of items to buffer before dropping the oldest.
//
// Closing in flushes the queue and then closes out.
//
// Usage:
//
//	in, out := buffer.Unbounded[event.Event](64, 10000, logger)
//	in <- ev
//	ev := <-out
func Unbounded[T any](initialCap int, hardLimit int, logger zerolog.Logger) (chan<- T, <-chan T) {
	in := make(chan T, 10)
	out := make(chan T, 10)

	go func() {
		defer close(out)

		queue := make([]T, 0, initialCap)
		dropped := 0

		for {
			var next T
			var downstream chan T

			// Enable the send case only when there is something to send.
			if len(queue) > 0 {
				next = queue[0]
				downstream = out
			}

			select {
			case val, ok := <-in:
				if !ok {
					for _, item := range queue {
						out <- item
					}
					return
				}

				if len(queue) >= hardLimit {
					dropped++
					logger.Warn().
						Int("limit", hardLimit).
						Int("dropped", dropped).
						Msg("event queue full, dropping oldest")
					queue = queue[1:]
				}
				queue = append(queue, val)

			case downstream <- next:
				queue = queue[1:]
			}
		}
	}()

	return in, out
}
