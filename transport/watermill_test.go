package transport

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector records every payload a handler receives
type collector struct {
	mu       sync.Mutex
	payloads []string
}

func (c *collector) handle(_ context.Context, _ string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, string(payload))
	return nil
}

func (c *collector) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.payloads))
	copy(out, c.payloads)
	return out
}

func TestLocalPublishSubscribeInOrder(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	pub := hub.Connect()
	sub := hub.Connect()
	defer pub.Close()
	defer sub.Close()

	ctx := context.Background()
	got := &collector{}
	require.NoError(t, sub.Subscribe(ctx, "players/1", got.handle))

	var want []string
	for i := 0; i < 50; i++ {
		payload := fmt.Sprintf("msg-%d", i)
		want = append(want, payload)
		require.NoError(t, pub.Publish(ctx, "players/1", []byte(payload)))
	}

	// Publish waits for the ack, so everything is already delivered
	assert.Equal(t, want, got.get())
}

func TestLocalTopicsAreIsolated(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	bus := hub.Connect()
	defer bus.Close()

	ctx := context.Background()
	one, two := &collector{}, &collector{}
	require.NoError(t, bus.Subscribe(ctx, "players/1", one.handle))
	require.NoError(t, bus.Subscribe(ctx, "players/2", two.handle))

	require.NoError(t, bus.Publish(ctx, "players/1", []byte("a")))
	require.NoError(t, bus.Publish(ctx, "players/2", []byte("b")))

	assert.Equal(t, []string{"a"}, one.get())
	assert.Equal(t, []string{"b"}, two.get())
}

func TestLocalUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	pub := hub.Connect()
	sub := hub.Connect()
	other := hub.Connect()

	ctx := context.Background()
	got, otherGot := &collector{}, &collector{}
	require.NoError(t, sub.Subscribe(ctx, "players/2", got.handle))
	require.NoError(t, other.Subscribe(ctx, "players/2", otherGot.handle))

	require.NoError(t, pub.Publish(ctx, "players/2", []byte("before")))
	require.NoError(t, sub.Unsubscribe("players/2"))

	// The hub drops the subscriber asynchronously once its context is cancelled
	require.Eventually(t, func() bool {
		_ = pub.Publish(ctx, "players/2", []byte("probe"))
		return len(otherGot.get()) > len(got.get())+1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, pub.Publish(ctx, "players/2", []byte("after")))
	assert.NotContains(t, got.get(), "after")
	assert.Contains(t, otherGot.get(), "after", "unsubscribing one handle must not affect another")

	// Unknown topics are ignored
	assert.NoError(t, sub.Unsubscribe("players/99"))
}

func TestLocalHandlerErrorDoesNotRedeliver(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	bus := hub.Connect()
	defer bus.Close()

	ctx := context.Background()
	var mu sync.Mutex
	calls := 0
	require.NoError(t, bus.Subscribe(ctx, "players/1", func(context.Context, string, []byte) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return fmt.Errorf("rejected")
	}))

	require.NoError(t, bus.Publish(ctx, "players/1", []byte("garbage")))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestLocalClose(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	bus := hub.Connect()
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	ctx := context.Background()
	assert.ErrorIs(t, bus.Publish(ctx, "players/1", []byte("x")), ErrClosed)
	assert.ErrorIs(t, bus.Subscribe(ctx, "players/1", (&collector{}).handle), ErrClosed)
}

func TestLocalRejectsEmptyTopic(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	bus := hub.Connect()
	ctx := context.Background()
	assert.ErrorIs(t, bus.Publish(ctx, "", []byte("x")), ErrInvalidTopic)
	assert.ErrorIs(t, bus.Subscribe(ctx, "", (&collector{}).handle), ErrInvalidTopic)
}
