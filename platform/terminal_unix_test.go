//go:build unix

package platform

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestTerminalForwardsSIGWINCH(t *testing.T) {
	posted := make(chan func(), 4)
	term := NewTerminal(regularFile(t), func(fn func()) { posted <- fn }, zerolog.Nop())

	fired := 0
	unsubscribe := term.Subscribe(func() { fired++ })
	defer unsubscribe()

	assert.NoError(t, unix.Kill(os.Getpid(), unix.SIGWINCH))

	select {
	case fn := <-posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("resize notification was not posted")
	}
	assert.Equal(t, 1, fired)
}
