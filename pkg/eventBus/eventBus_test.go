package eventBus

import (
	"context"
	"os"
	"testing"

	"github.com/Layr-Labs/txguard/internal/config"
	"github.com/Layr-Labs/txguard/internal/logger"
	"github.com/Layr-Labs/txguard/pkg/eventBus/eventBusTypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_EventBus(t *testing.T) {
	debug := os.Getenv(config.Debug) == "true"
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: debug})
	require.Nil(t, err)

	t.Run("Should deliver verdict events to every subscribed consumer", func(t *testing.T) {
		eb := NewEventBus(l)

		first := &eventBusTypes.Consumer{Id: "first", Channel: make(chan *eventBusTypes.Event, 10), Context: context.Background()}
		second := &eventBusTypes.Consumer{Id: "second", Channel: make(chan *eventBusTypes.Event, 10), Context: context.Background()}
		eb.Subscribe(first)
		eb.Subscribe(second)

		eb.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_VerdictApproved, Data: "approved"})
		eb.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_VerdictRejected, Data: "rejected"})

		for _, c := range []*eventBusTypes.Consumer{first, second} {
			require.Len(t, c.Channel, 2)
			assert.Equal(t, eventBusTypes.Event_VerdictApproved, (<-c.Channel).Name)
			assert.Equal(t, eventBusTypes.Event_VerdictRejected, (<-c.Channel).Name)
		}
	})

	t.Run("Should drop events for a full consumer instead of blocking", func(t *testing.T) {
		eb := NewEventBus(l)
		consumer := &eventBusTypes.Consumer{Id: "slow", Channel: make(chan *eventBusTypes.Event, 1), Context: context.Background()}
		eb.Subscribe(consumer)

		for i := 0; i < 5; i++ {
			eb.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_VerdictApproved})
		}
		assert.Len(t, consumer.Channel, 1)
	})

	t.Run("Should stop delivering after unsubscribe or cancellation", func(t *testing.T) {
		eb := NewEventBus(l)
		ctx, cancel := context.WithCancel(context.Background())

		cancelled := &eventBusTypes.Consumer{Id: "cancelled", Channel: make(chan *eventBusTypes.Event, 10), Context: ctx}
		removed := &eventBusTypes.Consumer{Id: "removed", Channel: make(chan *eventBusTypes.Event, 10), Context: context.Background()}
		eb.Subscribe(cancelled)
		eb.Subscribe(removed)

		cancel()
		eb.Unsubscribe(removed)
		eb.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_VerdictRejected})

		assert.Len(t, cancelled.Channel, 0)
		assert.Len(t, removed.Channel, 0)
	})
}
