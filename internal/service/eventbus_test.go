package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishReachesSubscriber(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe("job-1")
	defer bus.Unsubscribe("job-1", ch)

	bus.Publish("job-1", Event{Type: "progress", Stage: "transcode", Percent: 42})

	ev := <-ch
	assert.Equal(t, "progress", ev.Type)
	assert.Equal(t, 42.0, ev.Percent)
}

func TestEventBus_PublishToOtherJobIsNotDelivered(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe("job-1")
	defer bus.Unsubscribe("job-1", ch)

	bus.Publish("job-2", Event{Type: "status", State: "ready"})
	assert.Empty(t, ch)
}

func TestEventBus_SlowSubscriberDropsEvents(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe("job-1")
	defer bus.Unsubscribe("job-1", ch)

	// Overfill the buffer; Publish must never block.
	for i := 0; i < 100; i++ {
		bus.Publish("job-1", Event{Type: "progress", Percent: float64(i)})
	}
	assert.Equal(t, cap(ch), len(ch))
}

func TestEventBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewEventBus()
	ch := bus.Subscribe("job-1")
	bus.Unsubscribe("job-1", ch)

	_, open := <-ch
	require.False(t, open)
}
