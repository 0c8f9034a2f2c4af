package broadcast

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mkraiem/go-smartcity-alerts/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBroadcaster_SubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", b.SubscriberCount())
	}

	b.Unsubscribe(id)
	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}

	// Channel should be closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed")
		}
	default:
		t.Error("channel should be closed and readable")
	}
}

func TestBroadcaster_Broadcast(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	alert := models.Alert{
		ID:       "ALERT-1",
		Severity: models.SeverityCritical,
		Region:   "Nabeul",
	}

	b.Broadcast(alert)

	select {
	case received := <-ch:
		if received.ID != alert.ID {
			t.Errorf("expected ID %s, got %s", alert.ID, received.ID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for broadcast")
	}
}

func TestBroadcaster_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := b.Subscribe()
			time.Sleep(time.Millisecond)
			b.Unsubscribe(id)
		}()
	}

	wg.Wait()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after cleanup, got %d", b.SubscriberCount())
	}
}

func TestBroadcaster_ConcurrentBroadcast(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup

	numSubscribers := 10
	ids := make([]uint64, numSubscribers)
	for i := 0; i < numSubscribers; i++ {
		ids[i], _ = b.Subscribe()
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Broadcast(models.Alert{ID: "ALERT-1", Severity: models.SeveritySevere})
		}(i)
	}

	wg.Wait()

	for i := 0; i < numSubscribers; i++ {
		b.Unsubscribe(ids[i])
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster()
	id, _ := b.Subscribe()
	defer b.Unsubscribe(id)

	// Overfill the subscriber buffer; Broadcast must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			b.Broadcast(models.Alert{ID: "ALERT-1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("broadcast blocked on a slow subscriber")
	}
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster()

	var channels []chan models.Alert
	for i := 0; i < 5; i++ {
		_, ch := b.Subscribe()
		channels = append(channels, ch)
	}

	if b.SubscriberCount() != 5 {
		t.Errorf("expected 5 subscribers, got %d", b.SubscriberCount())
	}

	b.Close()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after close, got %d", b.SubscriberCount())
	}

	for i, ch := range channels {
		select {
		case _, ok := <-ch:
			if ok {
				t.Errorf("expected channel %d to be closed", i)
			}
		default:
			t.Errorf("channel %d should be closed and readable", i)
		}
	}
}
