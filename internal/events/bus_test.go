package events_test

import (
	"context"
	"testing"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/internal/events"

	"github.com/stretchr/testify/assert"
)

func TestLocalBusDeliversToAllSubscribers(t *testing.T) {
	bus := events.NewLocalBus()

	var first, second []domain.AuthEventType
	_, err := bus.Subscribe(func(e domain.AuthEvent) { first = append(first, e.Type) })
	assert.NoError(t, err)
	_, err = bus.Subscribe(func(e domain.AuthEvent) { second = append(second, e.Type) })
	assert.NoError(t, err)

	assert.NoError(t, bus.Publish(context.Background(), domain.AuthEvent{Type: domain.EventSignedIn, UserID: "u1"}))
	assert.NoError(t, bus.Publish(context.Background(), domain.AuthEvent{Type: domain.EventSignedOut, UserID: "u1"}))

	assert.Equal(t, []domain.AuthEventType{domain.EventSignedIn, domain.EventSignedOut}, first)
	assert.Equal(t, first, second)
}

func TestLocalBusCancelStopsDelivery(t *testing.T) {
	bus := events.NewLocalBus()

	var got int
	cancel, err := bus.Subscribe(func(domain.AuthEvent) { got++ })
	assert.NoError(t, err)

	assert.NoError(t, bus.Publish(context.Background(), domain.AuthEvent{Type: domain.EventSignedIn}))
	cancel()
	assert.NoError(t, bus.Publish(context.Background(), domain.AuthEvent{Type: domain.EventSignedOut}))

	assert.Equal(t, 1, got)
}
