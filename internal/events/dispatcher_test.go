package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var received []Event
	dispatcher.Subscribe(EventTicketAssigned, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{ID: "e1", Type: EventTicketAssigned, TicketID: "t1"})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "t1", received[0].TicketID)
}

func TestDispatcherIgnoresOtherTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	calls := 0
	dispatcher.Subscribe(EventTicketModified, func(_ context.Context, _ Event) error {
		calls++
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketAssigned})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	order := []string{}
	dispatcher.Subscribe(EventTicketModified, func(_ context.Context, _ Event) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventTicketModified, func(_ context.Context, _ Event) error {
		order = append(order, "second")
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketModified})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}
