package buffer

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func collect[T any](t *testing.T, out <-chan T) []T {
	t.Helper()
	var got []T
	timeout := time.After(2 * time.Second)
	for {
		select {
		case v, ok := <-out:
			if !ok {
				return got
			}
			got = append(got, v)
		case <-timeout:
			t.Fatal("output channel never closed")
		}
	}
}

func TestUnboundedPreservesOrder(t *testing.T) {
	in, out := Unbounded[int](4, 1000, zerolog.Nop())

	for i := 0; i < 100; i++ {
		in <- i
	}
	close(in)

	got := collect(t, out)
	assert.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestUnboundedDropsOldestAtLimit(t *testing.T) {
	var logs bytes.Buffer
	in, out := Unbounded[int](1, 3, zerolog.New(&logs))

	// Nothing reads out until the input is closed, so the internal queue
	// fills up past the small channel buffers.
	for i := 0; i < 50; i++ {
		in <- i
	}
	close(in)

	got := collect(t, out)
	assert.Less(t, len(got), 50)
	assert.Equal(t, 49, got[len(got)-1], "newest item is kept")
	assert.Contains(t, logs.String(), "dropping oldest")
}
