package hook

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/hotpin/internal/logger"
)

func TestDispatcher_FIFO(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var got []string

	d := NewDispatcher(16, func(a string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, a)
	}, logger.NewNoOpLogger())
	defer d.Close()

	want := []string{"a", "b", "c", "d", "e"}
	for _, a := range want {
		require.True(t, d.Post(SourceKeyboard, a))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == len(want)
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, got)
}

func TestDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{}, 1)

	d := NewDispatcher(1, func(string) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	}, logger.NewNoOpLogger())

	// first post occupies the consumer, second fills the queue
	require.True(t, d.Post(SourceKeyboard, "busy"))
	<-started
	require.True(t, d.Post(SourceKeyboard, "queued"))

	done := make(chan bool)
	go func() { done <- d.Post(SourceMouse, "overflow") }()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Post blocked on a full queue")
	}

	assert.Equal(t, uint64(1), d.Dropped())

	close(release)
	d.Close()
}

func TestDispatcher_PostAfterCloseDropped(t *testing.T) {
	t.Parallel()

	called := make(chan string, 1)
	d := NewDispatcher(4, func(a string) { called <- a }, logger.NewNoOpLogger())

	d.Close()
	d.Close()

	assert.False(t, d.Post(SourceHotkey, "late"))
	assert.Equal(t, uint64(1), d.Dropped())

	select {
	case a := <-called:
		t.Fatalf("unexpected delivery of %q", a)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestDispatcher_RecoversPanic(t *testing.T) {
	t.Parallel()

	delivered := make(chan string, 2)
	d := NewDispatcher(4, func(a string) {
		if a == "boom" {
			panic("handler failure")
		}
		delivered <- a
	}, logger.NewNoOpLogger())
	defer d.Close()

	d.Post(SourceKeyboard, "boom")
	d.Post(SourceKeyboard, "after")

	select {
	case a := <-delivered:
		assert.Equal(t, "after", a)
	case <-time.After(time.Second):
		t.Fatal("consumer did not survive a panicking handler")
	}
}

func TestDispatcher_ZeroSizeClamped(t *testing.T) {
	t.Parallel()

	delivered := make(chan string, 1)
	d := NewDispatcher(0, func(a string) { delivered <- a }, logger.NewNoOpLogger())
	defer d.Close()

	require.True(t, d.Post(SourceKeyboard, "x"))

	select {
	case a := <-delivered:
		assert.Equal(t, "x", a)
	case <-time.After(time.Second):
		t.Fatal("no delivery")
	}
}
