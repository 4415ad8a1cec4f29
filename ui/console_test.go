package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/drake/winsize/size"
)

var _ UI = (*ConsoleUI)(nil)

func TestConsolePublish(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleUI(&buf)

	c.Publish(size.Dimensions{Width: 1024, Height: 768})
	c.Print("hello")

	assert.Equal(t, "1024x768\nhello\n", buf.String())
}

func TestConsoleRunUntilQuit(t *testing.T) {
	c := NewConsoleUI(&bytes.Buffer{})

	errc := make(chan error, 1)
	go func() { errc <- c.Run() }()

	c.Quit()
	c.Quit()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Quit")
	}
	<-c.Done()
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "resumed", EventResumed.String())
	assert.Equal(t, "reload", EventReload.String())
}
