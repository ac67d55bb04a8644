package domain

import (
	"context"
	"time"
)

// ============================================================================
// Session state machine
// ============================================================================

// SessionState is the conceptual state of the session manager. The machine
// cycles between SignedOut and Active for the life of the installation.
type SessionState string

const (
	StateSignedOut         SessionState = "signed_out"
	StateSignedInNoProfile SessionState = "signed_in_no_profile"
	StateOnboarding        SessionState = "onboarding"
	StateActive            SessionState = "active"
)

// NavState is the navigation surface observed by the client: rebuilt to
// defaults on process start, never persisted.
type NavState struct {
	SelectedTab     int     `json:"selected_tab"`
	IsAuthenticated bool    `json:"is_authenticated"`
	ShowOnboarding  bool    `json:"show_onboarding"`
	ActiveWorkout   *string `json:"active_workout,omitempty"`
}

// ============================================================================
// Identity service boundary
// ============================================================================

// UserIdentity is the identity provider's view of a user.
type UserIdentity struct {
	UserID      string
	Email       string
	AccessToken string
	Confirmed   bool
}

// SessionInfo is the result of inspecting the provider session. CurrentSession
// never fails; any internal error reports a definite signed-out state.
type SessionInfo struct {
	IsSignedIn bool
	UserID     string
}

// SignOutStatus classifies the outcome of a sign-out request.
type SignOutStatus string

const (
	SignOutComplete SignOutStatus = "complete"
	SignOutPartial  SignOutStatus = "partial"
	SignOutFailed   SignOutStatus = "failed"
)

// SignOutResult carries per-subsystem sub-errors for partial sign-outs.
type SignOutResult struct {
	Status    SignOutStatus
	SubErrors []error
}

// IdentityService wraps the external identity provider. Implementations
// translate every provider-specific error into the apperror taxonomy; no raw
// provider error may cross this boundary.
type IdentityService interface {
	SignUp(ctx context.Context, email, password, displayName string) (*UserIdentity, error)
	ConfirmSignUp(ctx context.Context, email, code string) (bool, error)
	SignIn(ctx context.Context, email, password string) (*UserIdentity, error)
	CurrentSession(ctx context.Context, accessToken string) SessionInfo
	FetchUserAttributes(ctx context.Context, accessToken string) (map[string]string, error)
	// UpdateUserAttributes returns the set of attribute keys still pending
	// out-of-band confirmation.
	UpdateUserAttributes(ctx context.Context, accessToken string, attrs map[string]string) ([]string, error)
	SignOut(ctx context.Context, accessToken string, global bool) SignOutResult
}

// ============================================================================
// Auth events
// ============================================================================

type AuthEventType string

const (
	EventSignedIn       AuthEventType = "signed_in"
	EventSignedOut      AuthEventType = "signed_out"
	EventSessionExpired AuthEventType = "session_expired"
)

type AuthEvent struct {
	Type       AuthEventType `json:"type"`
	UserID     string        `json:"user_id"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// EventBus publishes and subscribes auth events. Subscriptions live for the
// process lifetime.
type EventBus interface {
	Publish(ctx context.Context, event AuthEvent) error
	Subscribe(handler func(AuthEvent)) (func(), error)
}

// ============================================================================
// Local snapshot boundary
// ============================================================================

// SnapshotSchemaVersion tags persisted snapshots so future profile fields
// don't silently break deserialization of older blobs.
const SnapshotSchemaVersion = 1

// Snapshot is the locally persisted session state: the profile blob plus the
// opaque auth token, read and written as whole values.
type Snapshot struct {
	SchemaVersion int          `json:"schema_version"`
	Profile       *UserProfile `json:"profile"`
}

// SnapshotStore persists the local snapshot. Only the session manager writes
// to it. Failures must be logged and swallowed, never crash a flow.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, userID string, snap Snapshot) error
	LoadSnapshot(ctx context.Context, userID string) (*Snapshot, error)
	SaveAuthToken(ctx context.Context, userID, token string) error
	LoadAuthToken(ctx context.Context, userID string) (string, error)
	Clear(ctx context.Context, userID string) error
}
