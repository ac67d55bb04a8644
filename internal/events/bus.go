package events

import (
	"context"
	"encoding/json"
	"sync"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/pkg/logger"

	"github.com/nats-io/nats.go"
)

// AuthSubject is the NATS subject carrying auth lifecycle events.
const AuthSubject = "auth.events"

// NATSBus carries auth events over a NATS connection so that every process
// observing a user's session sees sign-outs and expiries.
type NATSBus struct {
	conn *nats.Conn
}

func NewNATSBus(url string) (*NATSBus, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, err
	}
	return &NATSBus{conn: conn}, nil
}

func (b *NATSBus) Publish(ctx context.Context, event domain.AuthEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.conn.Publish(AuthSubject, data)
}

// Subscribe registers a handler for the process lifetime. The returned func
// cancels the subscription.
func (b *NATSBus) Subscribe(handler func(domain.AuthEvent)) (func(), error) {
	sub, err := b.conn.Subscribe(AuthSubject, func(msg *nats.Msg) {
		var event domain.AuthEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Log.Warn("dropping malformed auth event", "error", err)
			return
		}
		handler(event)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

func (b *NATSBus) Close() {
	b.conn.Drain()
}

// LocalBus is the in-process fallback used when NATS is not configured.
// Delivery is synchronous and ordered per publisher.
type LocalBus struct {
	mu       sync.RWMutex
	handlers []func(domain.AuthEvent)
}

func NewLocalBus() *LocalBus {
	return &LocalBus{}
}

func (b *LocalBus) Publish(ctx context.Context, event domain.AuthEvent) error {
	b.mu.RLock()
	handlers := make([]func(domain.AuthEvent), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
	return nil
}

func (b *LocalBus) Subscribe(handler func(domain.AuthEvent)) (func(), error) {
	b.mu.Lock()
	b.handlers = append(b.handlers, handler)
	idx := len(b.handlers) - 1
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		b.handlers[idx] = func(domain.AuthEvent) {}
		b.mu.Unlock()
	}, nil
}
