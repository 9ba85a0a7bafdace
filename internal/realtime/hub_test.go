package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastsWithoutNATS(t *testing.T) {
	hub := NewHub(nil)

	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish("bookings", ActionCreated, "b1")

	select {
	case change := <-ch:
		assert.Equal(t, "bookings", change.Resource)
		assert.Equal(t, ActionCreated, change.Action)
		assert.Equal(t, "b1", change.ID)
		assert.False(t, change.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no change received")
	}
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub(nil)

	ch, cancel := hub.Subscribe()
	cancel()

	hub.Publish("polls", ActionUpdated, "p1")

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("cancelled subscriber received a change")
		}
	default:
	}
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	hub := NewHub(nil)

	ch, cancel := hub.Subscribe()
	defer cancel()

	// Overfill the subscriber buffer; nothing should block.
	for i := 0; i < 100; i++ {
		hub.Publish("events", ActionUpdated, "e1")
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}

	require.Greater(t, received, 0)
	assert.LessOrEqual(t, received, 16)
}
