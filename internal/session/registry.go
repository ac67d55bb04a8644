package session

import (
	"context"
	"sync"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/pkg/logger"
)

// Registry holds one manager per user and routes auth events to the owning
// manager. It subscribes to the event bus for the process lifetime.
type Registry struct {
	deps Deps
	bus  domain.EventBus

	mu       sync.RWMutex
	managers map[string]*Manager
}

func NewRegistry(deps Deps, bus domain.EventBus) (*Registry, error) {
	r := &Registry{
		deps:     deps,
		managers: make(map[string]*Manager),
	}
	if bus != nil {
		r.bus = bus
		if _, err := bus.Subscribe(r.dispatch); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ForUser returns the manager owning the user's session, creating it lazily.
func (r *Registry) ForUser(userID string) *Manager {
	r.mu.RLock()
	mgr, ok := r.managers[userID]
	r.mu.RUnlock()
	if ok {
		return mgr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if mgr, ok := r.managers[userID]; ok {
		return mgr
	}
	mgr = NewManager(r.deps)
	r.managers[userID] = mgr
	return mgr
}

// NewDetached builds an unregistered manager for pre-authentication flows
// (sign-up, sign-in). Bind adopts it under the authenticated user id.
func (r *Registry) NewDetached() *Manager {
	return NewManager(r.deps)
}

// Bind registers a manager under the user id it authenticated as.
func (r *Registry) Bind(userID string, mgr *Manager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.managers[userID] = mgr
}

// Remove drops the manager after sign-out.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, userID)
}

// dispatch routes a bus event to the owning manager. Sign-out and expiry
// events remove the manager once handled.
func (r *Registry) dispatch(event domain.AuthEvent) {
	r.mu.RLock()
	mgr, ok := r.managers[event.UserID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	mgr.HandleAuthEvent(event)
	if event.Type == domain.EventSignedOut || event.Type == domain.EventSessionExpired {
		r.Remove(event.UserID)
		logger.Log.Info("removed session manager", "user_id", event.UserID, "event", event.Type)
	}
}

// Publish emits an auth event on behalf of a manager operation.
func (r *Registry) Publish(ctx context.Context, event domain.AuthEvent) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, event); err != nil {
		logger.Log.Warn("failed to publish auth event", "type", event.Type, "error", err)
	}
}
