package session_test

import (
	"context"
	"testing"
	"time"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/internal/events"
	"go-athlete-backend/internal/session"

	"github.com/stretchr/testify/assert"
)

func newRegistryFixture(t *testing.T) (*session.Registry, *fixture, *events.LocalBus) {
	t.Helper()
	f := newFixture()
	bus := events.NewLocalBus()

	cfg := session.DefaultConfig()
	cfg.SignOutGracePeriod = 0
	registry, err := session.NewRegistry(session.Deps{
		Identity:  f.identity,
		Profiles:  f.profiles,
		Snapshots: f.snapshots,
		Pictures:  f.pictures,
		Config:    cfg,
	}, bus)
	assert.NoError(t, err)
	return registry, f, bus
}

func TestForUserReturnsSameManager(t *testing.T) {
	registry, _, _ := newRegistryFixture(t)

	a := registry.ForUser("u1")
	b := registry.ForUser("u1")
	c := registry.ForUser("u2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestBindAdoptsDetachedManager(t *testing.T) {
	registry, f, _ := newRegistryFixture(t)
	ctx := context.Background()

	f.identity.On("SignIn", ctx, "u3@example.com", "secret123").
		Return(identityFor("u3"), nil)
	f.profiles.On("FetchProfile", ctx, "u3").Return(completedProfile("u3"), nil)

	mgr := registry.NewDetached()
	profile, err := mgr.SignIn(ctx, "u3@example.com", "secret123")
	assert.NoError(t, err)

	registry.Bind(profile.ID, mgr)
	assert.Same(t, mgr, registry.ForUser("u3"))
}

func TestBusSignOutEventClearsOwningManager(t *testing.T) {
	registry, f, bus := newRegistryFixture(t)
	ctx := context.Background()

	f.identity.On("SignIn", ctx, "u4@example.com", "secret123").
		Return(identityFor("u4"), nil)
	f.profiles.On("FetchProfile", ctx, "u4").Return(completedProfile("u4"), nil)

	mgr := registry.NewDetached()
	_, err := mgr.SignIn(ctx, "u4@example.com", "secret123")
	assert.NoError(t, err)
	registry.Bind("u4", mgr)

	assert.NoError(t, bus.Publish(ctx, domain.AuthEvent{
		Type:       domain.EventSignedOut,
		UserID:     "u4",
		OccurredAt: time.Now(),
	}))

	assert.Equal(t, domain.StateSignedOut, mgr.State())
	assert.Nil(t, mgr.CurrentUser())
	// The registry dropped the old manager; a fresh one comes back clean.
	assert.NotSame(t, mgr, registry.ForUser("u4"))
}

func TestBusEventForUnknownUserIsIgnored(t *testing.T) {
	registry, f, bus := newRegistryFixture(t)
	ctx := context.Background()

	f.identity.On("SignIn", ctx, "u5@example.com", "secret123").
		Return(identityFor("u5"), nil)
	f.profiles.On("FetchProfile", ctx, "u5").Return(completedProfile("u5"), nil)

	mgr := registry.NewDetached()
	_, err := mgr.SignIn(ctx, "u5@example.com", "secret123")
	assert.NoError(t, err)
	registry.Bind("u5", mgr)

	assert.NoError(t, bus.Publish(ctx, domain.AuthEvent{
		Type:   domain.EventSessionExpired,
		UserID: "stranger",
	}))

	assert.Equal(t, domain.StateActive, mgr.State())
}
