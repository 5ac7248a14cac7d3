package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webtrials/flowcanvas/pkg/schema"
)

func TestPublishSubscribe(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	defer cancel()

	event := CanvasEvent{
		CanvasID:  "cv-1",
		NodeID:    "step-1",
		EventType: schema.EventNodeMoved,
		Payload:   map[string]any{"x": 120.0, "y": 40.0},
	}

	err = hub.Publish(ctx, event)
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, event.CanvasID, got.CanvasID)
		assert.Equal(t, event.NodeID, got.NodeID)
		assert.Equal(t, event.EventType, got.EventType)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestFilterByCanvasID(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{CanvasID: "cv-1"})
	require.NoError(t, err)
	defer cancel()

	// Should be received (matching canvas)
	err = hub.Publish(ctx, CanvasEvent{CanvasID: "cv-1", EventType: schema.EventNodeAdded})
	require.NoError(t, err)

	// Should be dropped (different canvas)
	err = hub.Publish(ctx, CanvasEvent{CanvasID: "cv-2", EventType: schema.EventNodeAdded})
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, "cv-1", got.CanvasID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	// Channel should be empty -- the cv-2 event was filtered out.
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
		// expected
	}
}

func TestFilterByEventType(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{
		EventTypes: []string{schema.EventConnectionAdded, schema.EventValidationRun},
	})
	require.NoError(t, err)
	defer cancel()

	// Should be received
	err = hub.Publish(ctx, CanvasEvent{CanvasID: "cv-1", EventType: schema.EventConnectionAdded})
	require.NoError(t, err)

	// Should be dropped
	err = hub.Publish(ctx, CanvasEvent{CanvasID: "cv-1", EventType: schema.EventNodeMoved})
	require.NoError(t, err)

	// Should be received
	err = hub.Publish(ctx, CanvasEvent{CanvasID: "cv-1", EventType: schema.EventValidationRun})
	require.NoError(t, err)

	var received []string
	for i := 0; i < 2; i++ {
		select {
		case got := <-ch:
			received = append(received, got.EventType)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	assert.Equal(t, []string{schema.EventConnectionAdded, schema.EventValidationRun}, received)

	// No more events
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
		// expected
	}
}

func TestFilterByNodeID(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{NodeID: "step-7"})
	require.NoError(t, err)
	defer cancel()

	err = hub.Publish(ctx, CanvasEvent{CanvasID: "cv-1", NodeID: "step-7", EventType: schema.EventNodeStatusChanged})
	require.NoError(t, err)
	err = hub.Publish(ctx, CanvasEvent{CanvasID: "cv-1", NodeID: "step-8", EventType: schema.EventNodeStatusChanged})
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, "step-7", got.NodeID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
		// expected
	}
}

func TestMultipleSubscribers(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch1, cancel1, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	defer cancel1()

	ch2, cancel2, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	defer cancel2()

	event := CanvasEvent{CanvasID: "cv-1", EventType: schema.EventGraphChanged}
	err = hub.Publish(ctx, event)
	require.NoError(t, err)

	for _, ch := range []<-chan CanvasEvent{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, "cv-1", got.CanvasID)
			assert.Equal(t, schema.EventGraphChanged, got.EventType)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestCancelSubscription(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)

	// Cancel removes the subscriber
	cancel()

	err = hub.Publish(ctx, CanvasEvent{CanvasID: "cv-1", EventType: schema.EventGraphChanged})
	require.NoError(t, err)

	select {
	case evt := <-ch:
		t.Fatalf("unexpected event after cancel: %+v", evt)
	case <-time.After(50 * time.Millisecond):
		// expected: subscriber was removed
	}

	// Verify subscriber map is empty
	hub.mu.RLock()
	assert.Empty(t, hub.subs)
	hub.mu.RUnlock()
}

func TestBackpressure(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()

	ch, cancel, err := hub.Subscribe(ctx, Filter{})
	require.NoError(t, err)
	defer cancel()

	// Fill the channel buffer (64) then publish some more.
	// None of these should block.
	for i := 0; i < defaultChannelBuffer+10; i++ {
		err = hub.Publish(ctx, CanvasEvent{
			CanvasID:  "cv-1",
			EventType: schema.EventNodeMoved,
		})
		require.NoError(t, err)
	}

	// We should be able to drain exactly defaultChannelBuffer events.
	drained := 0
	for {
		select {
		case <-ch:
			drained++
		default:
			goto done
		}
	}
done:
	assert.Equal(t, defaultChannelBuffer, drained)
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewMemoryHub()
	ctx := context.Background()
	const goroutines = 20
	const eventsPerGoroutine = 50

	var wg sync.WaitGroup

	cancels := make([]func(), goroutines)
	for i := 0; i < goroutines; i++ {
		_, cancel, err := hub.Subscribe(ctx, Filter{})
		require.NoError(t, err)
		cancels[i] = cancel
	}
	defer func() {
		for _, c := range cancels {
			c()
		}
	}()

	// Concurrent publishers
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				_ = hub.Publish(ctx, CanvasEvent{
					CanvasID:  "cv-concurrent",
					EventType: schema.EventNodeMoved,
				})
			}
		}()
	}

	// Concurrent subscribers being added/removed
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, cancel, err := hub.Subscribe(ctx, Filter{})
			if err != nil {
				return
			}
			for range 5 {
				select {
				case <-ch:
				case <-time.After(10 * time.Millisecond):
				}
			}
			cancel()
		}()
	}

	wg.Wait()
}

func TestPublishCancelledContext(t *testing.T) {
	hub := NewMemoryHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := hub.Publish(ctx, CanvasEvent{CanvasID: "cv-1", EventType: schema.EventNodeMoved})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubscribeCancelledContext(t *testing.T) {
	hub := NewMemoryHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := hub.Subscribe(ctx, Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}
