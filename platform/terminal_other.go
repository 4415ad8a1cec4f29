//go:build !unix

package platform

import "time"

// pollInterval is how often the size is sampled where no resize signal
// exists.
const pollInterval = 250 * time.Millisecond

// watch polls the size and calls notify when it changes.
func (t *Terminal) watch(notify func()) (stop func()) {
	done := make(chan struct{})
	ticker := time.NewTicker(pollInterval)
	lastW, lastH := t.Size()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				w, h := t.Size()
				if w != lastW || h != lastH {
					lastW, lastH = w, h
					notify()
				}
			}
		}
	}()

	return func() { close(done) }
}
