//go:build unix

package platform

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// watch forwards SIGWINCH to notify until the returned stop is called.
func (t *Terminal) watch(notify func()) (stop func()) {
	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sig, unix.SIGWINCH)

	go func() {
		for {
			select {
			case <-done:
				return
			case <-sig:
				notify()
			}
		}
	}()

	return func() {
		signal.Stop(sig)
		close(done)
	}
}
