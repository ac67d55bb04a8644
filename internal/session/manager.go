package session

import (
	"context"
	"sync"
	"time"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/pkg/apperror"
	"go-athlete-backend/pkg/logger"
)

// Config holds the session policy knobs. The two behavioral flags preserve
// observed product behavior while keeping it adjustable.
type Config struct {
	// AssumeOnboardedOnRestore treats an authenticated user with no local
	// snapshot as having completed onboarding previously.
	AssumeOnboardedOnRestore bool
	// Step3ProceedOnRemoteFailure advances past a failed remote update on the
	// learning-goal step instead of surfacing the error.
	Step3ProceedOnRemoteFailure bool
	// SignOutGracePeriod is how long to wait after a global sign-out request
	// before re-verifying that the provider session is gone.
	SignOutGracePeriod time.Duration
}

func DefaultConfig() Config {
	return Config{
		AssumeOnboardedOnRestore:    true,
		Step3ProceedOnRemoteFailure: true,
		SignOutGracePeriod:          500 * time.Millisecond,
	}
}

// Deps are the external boundaries the manager orchestrates.
type Deps struct {
	Identity  domain.IdentityService
	Profiles  domain.ProfileStore
	Snapshots domain.SnapshotStore
	Pictures  domain.PictureStore
	Config    Config
}

// Manager owns the current user profile and authentication flags for one
// session. All mutations are serialized through its mutex so two in-flight
// step submissions cannot interleave and corrupt StepsCompleted. The mutex is
// released across remote calls; an epoch counter detects a sign-out racing an
// in-flight operation so stale results are discarded.
type Manager struct {
	deps Deps

	mu              sync.Mutex
	current         *domain.UserProfile
	token           string
	isAuthenticated bool
	isOnboarding    bool
	nav             domain.NavState
	epoch           uint64
}

func NewManager(deps Deps) *Manager {
	return &Manager{deps: deps}
}

// State derives the conceptual machine state from the auth and profile flags.
func (m *Manager) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

func (m *Manager) stateLocked() domain.SessionState {
	switch {
	case !m.isAuthenticated:
		return domain.StateSignedOut
	case m.current == nil:
		return domain.StateSignedInNoProfile
	case m.isOnboarding:
		return domain.StateOnboarding
	default:
		return domain.StateActive
	}
}

// CurrentUser returns a copy of the current profile, or nil when signed out.
func (m *Manager) CurrentUser() *domain.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyProfileLocked()
}

func (m *Manager) copyProfileLocked() *domain.UserProfile {
	if m.current == nil {
		return nil
	}
	cp := *m.current
	return &cp
}

// NavState returns the navigation surface.
func (m *Manager) NavState() domain.NavState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nav
}

// SelectTab records the active tab. UI-driven, no persistence.
func (m *Manager) SelectTab(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nav.SelectedTab = index
}

// ============================================================================
// Authentication operations
// ============================================================================

// SignUp registers a new account and, when the provider auto-confirms,
// establishes the session immediately.
func (m *Manager) SignUp(ctx context.Context, email, password, displayName string) (*domain.UserProfile, error) {
	ident, err := m.deps.Identity.SignUp(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	return m.establishSession(ctx, ident, domain.AuthMethodEmail)
}

// ConfirmSignUp redeems the emailed code and signs the user in with the
// password supplied at registration.
func (m *Manager) ConfirmSignUp(ctx context.Context, email, code, password string) (*domain.UserProfile, error) {
	ok, err := m.deps.Identity.ConfirmSignUp(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.ConfirmationFailed("Confirmation was not accepted")
	}
	if password == "" {
		return nil, nil
	}
	return m.SignIn(ctx, email, password)
}

// SignIn authenticates and materializes the profile.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	ident, err := m.deps.Identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.establishSession(ctx, ident, domain.AuthMethodEmail)
}

// establishSession moves SignedOut -> SignedInNoProfile -> Onboarding/Active:
// adopt the remote profile if one exists, otherwise mint a fresh minimal one.
func (m *Manager) establishSession(ctx context.Context, ident *domain.UserIdentity, method domain.AuthMethod) (*domain.UserProfile, error) {
	m.mu.Lock()
	m.token = ident.AccessToken
	m.isAuthenticated = true
	m.nav.IsAuthenticated = true
	m.current = nil
	epoch := m.epoch
	m.mu.Unlock()

	profile, err := m.deps.Profiles.FetchProfile(ctx, ident.UserID)
	if err != nil {
		logger.Log.Warn("remote profile fetch failed, starting fresh onboarding", "user_id", ident.UserID, "error", err)
		profile = nil
	}

	created := false
	if profile == nil {
		profile = domain.NewMinimalProfile(ident.UserID, ident.Email, method)
		created = true
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return nil, apperror.SessionExpired()
	}
	m.current = profile
	m.isOnboarding = !profile.Onboarding.SurveyCompleted
	m.nav.ShowOnboarding = m.isOnboarding
	snapshotCopy := *profile
	m.mu.Unlock()

	if created {
		if err := m.deps.Profiles.CreateProfile(ctx, profile); err != nil {
			// Onboarding must not be blocked by a missing durable record.
			logger.Log.Warn("remote profile create failed", "user_id", ident.UserID, "error", err)
		}
	}

	m.persistSnapshot(ctx, snapshotCopy, ident.AccessToken)
	return m.CurrentUser(), nil
}

// Restore reconciles identity-service session validity, identity attributes
// and the locally persisted snapshot on startup. Precedence: provider says
// signed out wins; then a matching local snapshot; then a minimal profile
// synthesized from provider attributes.
func (m *Manager) Restore(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	info := m.deps.Identity.CurrentSession(ctx, accessToken)
	if !info.IsSignedIn {
		m.forceSignOut(ctx, "restore found no provider session")
		return nil, nil
	}

	snap, err := m.deps.Snapshots.LoadSnapshot(ctx, info.UserID)
	if err != nil {
		logger.Log.Warn("snapshot load failed during restore", "user_id", info.UserID, "error", err)
		snap = nil
	}

	var profile *domain.UserProfile
	if snap != nil && snap.Profile != nil && snap.Profile.ID == info.UserID {
		profile = snap.Profile
	} else {
		attrs, err := m.deps.Identity.FetchUserAttributes(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		profile = domain.NewMinimalProfile(info.UserID, attrs["email"], domain.AuthMethodEmail)
		if name, ok := attrs["display_name"]; ok && name != "" {
			profile.Name = &name
		}
		if m.deps.Config.AssumeOnboardedOnRestore {
			now := time.Now()
			profile.Onboarding.SurveyCompleted = true
			profile.Onboarding.StepsCompleted = profile.Onboarding.TotalSteps
			profile.Onboarding.CurrentStep = profile.Onboarding.TotalSteps
			profile.Onboarding.CompletionTimestamp = &now
			profile.CurrentStage = domain.StageActive
		}
	}

	m.mu.Lock()
	m.current = profile
	m.token = accessToken
	m.isAuthenticated = true
	m.isOnboarding = !profile.Onboarding.SurveyCompleted
	m.nav.IsAuthenticated = true
	m.nav.ShowOnboarding = m.isOnboarding
	snapshotCopy := *profile
	m.mu.Unlock()

	// Keep the snapshot current with whatever was adopted.
	m.persistSnapshot(ctx, snapshotCopy, accessToken)
	return m.CurrentUser(), nil
}

// SignOut requests a global provider sign-out, waits the grace period,
// re-verifies, retries once with local scope, then clears local state
// unconditionally. Local state never remains authenticated after a
// user-initiated sign-out.
func (m *Manager) SignOut(ctx context.Context) domain.SignOutResult {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	result := domain.SignOutResult{Status: domain.SignOutComplete}
	if token != "" {
		result = m.deps.Identity.SignOut(ctx, token, true)

		if m.deps.Config.SignOutGracePeriod > 0 {
			select {
			case <-time.After(m.deps.Config.SignOutGracePeriod):
			case <-ctx.Done():
			}
		}

		if info := m.deps.Identity.CurrentSession(ctx, token); info.IsSignedIn {
			retry := m.deps.Identity.SignOut(ctx, token, false)
			if retry.Status == domain.SignOutFailed {
				result.Status = domain.SignOutPartial
				result.SubErrors = append(result.SubErrors, retry.SubErrors...)
			}
		}
	}

	m.forceSignOut(ctx, "user sign-out")
	return result
}

// HandleAuthEvent applies a provider event. A signed-out or session-expired
// event wins over any in-flight operation.
func (m *Manager) HandleAuthEvent(event domain.AuthEvent) {
	switch event.Type {
	case domain.EventSignedOut:
		m.forceSignOut(context.Background(), "provider signed_out event")
	case domain.EventSessionExpired:
		m.forceSignOut(context.Background(), "provider session_expired event")
	}
}

// forceSignOut clears in-memory and locally persisted state and bumps the
// epoch so in-flight operations discard their results.
func (m *Manager) forceSignOut(ctx context.Context, reason string) {
	m.mu.Lock()
	userID := ""
	if m.current != nil {
		userID = m.current.ID
	}
	m.current = nil
	m.token = ""
	m.isAuthenticated = false
	m.isOnboarding = false
	m.nav = domain.NavState{}
	m.epoch++
	m.mu.Unlock()

	if userID != "" {
		if err := m.deps.Snapshots.Clear(ctx, userID); err != nil {
			logger.Log.Warn("failed to clear local snapshot", "user_id", userID, "error", err)
		}
	}
	logger.Log.Info("session cleared", "reason", reason, "user_id", userID)
}

// persistSnapshot writes the local snapshot best-effort: a persistence
// failure is logged and swallowed, never fails the calling flow.
func (m *Manager) persistSnapshot(ctx context.Context, profile domain.UserProfile, token string) {
	if err := m.deps.Snapshots.SaveSnapshot(ctx, profile.ID, domain.Snapshot{Profile: &profile}); err != nil {
		logger.Log.Warn("failed to persist profile snapshot", "user_id", profile.ID, "error", err)
	}
	if token != "" {
		if err := m.deps.Snapshots.SaveAuthToken(ctx, profile.ID, token); err != nil {
			logger.Log.Warn("failed to persist auth token", "user_id", profile.ID, "error", err)
		}
	}
}

// ============================================================================
// Post-onboarding account operations
// ============================================================================

// AddPoints credits gamification points to the current user.
func (m *Manager) AddPoints(ctx context.Context, amount int, reason string) (*domain.UserProfile, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return nil, apperror.NoUserLoggedIn()
	}
	m.current.AddPoints(amount, reason)
	m.current.Touch()
	event := m.current.Points.History[len(m.current.Points.History)-1]
	userID := m.current.ID
	snapshotCopy := *m.current
	epoch := m.epoch
	m.mu.Unlock()

	err := m.deps.Profiles.AddPoints(ctx, userID, event)

	m.mu.Lock()
	stale := m.epoch != epoch
	m.mu.Unlock()
	if stale {
		return nil, apperror.SessionExpired()
	}
	if err != nil {
		return m.CurrentUser(), err
	}

	m.persistSnapshot(ctx, snapshotCopy, "")
	return m.CurrentUser(), nil
}

// StartWorkout records the active workout on the navigation surface.
func (m *Manager) StartWorkout(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return apperror.NoUserLoggedIn()
	}
	m.nav.ActiveWorkout = &name
	return nil
}

// CompleteWorkout clears the active workout and records a game session.
func (m *Manager) CompleteWorkout(ctx context.Context, session domain.GameSession) (*domain.UserProfile, error) {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return nil, apperror.NoUserLoggedIn()
	}
	m.current.GameSessions = append(m.current.GameSessions, session)
	m.current.Touch()
	m.nav.ActiveWorkout = nil
	userID := m.current.ID
	snapshotCopy := *m.current
	epoch := m.epoch
	m.mu.Unlock()

	err := m.deps.Profiles.RecordGameSession(ctx, userID, session)

	m.mu.Lock()
	stale := m.epoch != epoch
	m.mu.Unlock()
	if stale {
		return nil, apperror.SessionExpired()
	}
	if err != nil {
		return m.CurrentUser(), err
	}

	m.persistSnapshot(ctx, snapshotCopy, "")
	return m.CurrentUser(), nil
}
