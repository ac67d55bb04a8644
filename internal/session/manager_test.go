package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/internal/session"
	"go-athlete-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock boundaries

type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) SignUp(ctx context.Context, email, password, displayName string) (*domain.UserIdentity, error) {
	args := m.Called(ctx, email, password, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserIdentity), args.Error(1)
}

func (m *MockIdentity) ConfirmSignUp(ctx context.Context, email, code string) (bool, error) {
	args := m.Called(ctx, email, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdentity) SignIn(ctx context.Context, email, password string) (*domain.UserIdentity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserIdentity), args.Error(1)
}

func (m *MockIdentity) CurrentSession(ctx context.Context, accessToken string) domain.SessionInfo {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(domain.SessionInfo)
}

func (m *MockIdentity) FetchUserAttributes(ctx context.Context, accessToken string) (map[string]string, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockIdentity) UpdateUserAttributes(ctx context.Context, accessToken string, attrs map[string]string) ([]string, error) {
	args := m.Called(ctx, accessToken, attrs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockIdentity) SignOut(ctx context.Context, accessToken string, global bool) domain.SignOutResult {
	args := m.Called(ctx, accessToken, global)
	return args.Get(0).(domain.SignOutResult)
}

type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) FetchProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

func (m *MockProfiles) CreateProfile(ctx context.Context, profile *domain.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfiles) ApplyStep1(ctx context.Context, userID string, delta domain.Step1Delta) error {
	return m.Called(ctx, userID, delta).Error(0)
}

func (m *MockProfiles) ApplyStep2(ctx context.Context, userID string, delta domain.Step2Delta) error {
	return m.Called(ctx, userID, delta).Error(0)
}

func (m *MockProfiles) ApplyStep3(ctx context.Context, userID string, delta domain.Step3Delta) error {
	return m.Called(ctx, userID, delta).Error(0)
}

func (m *MockProfiles) ApplyCompletion(ctx context.Context, userID string, delta domain.CompletionDelta) error {
	return m.Called(ctx, userID, delta).Error(0)
}

func (m *MockProfiles) RecordGameSession(ctx context.Context, userID string, sess domain.GameSession) error {
	return m.Called(ctx, userID, sess).Error(0)
}

func (m *MockProfiles) AddPoints(ctx context.Context, userID string, event domain.PointsEvent) error {
	return m.Called(ctx, userID, event).Error(0)
}

func (m *MockProfiles) UpgradeTier(ctx context.Context, userID string, tier domain.AccountTier, purchase domain.Purchase) error {
	return m.Called(ctx, userID, tier, purchase).Error(0)
}

type MockSnapshots struct {
	mock.Mock
}

func (m *MockSnapshots) SaveSnapshot(ctx context.Context, userID string, snap domain.Snapshot) error {
	return m.Called(ctx, userID, snap).Error(0)
}

func (m *MockSnapshots) LoadSnapshot(ctx context.Context, userID string) (*domain.Snapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshots) SaveAuthToken(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *MockSnapshots) LoadAuthToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSnapshots) Clear(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockPictures struct {
	mock.Mock
}

func (m *MockPictures) UploadProfilePicture(ctx context.Context, userID string, image []byte) (string, error) {
	args := m.Called(ctx, userID, image)
	return args.String(0), args.Error(1)
}

// Test fixture

type fixture struct {
	identity  *MockIdentity
	profiles  *MockProfiles
	snapshots *MockSnapshots
	pictures  *MockPictures
	mgr       *session.Manager
}

func newFixture() *fixture {
	f := &fixture{
		identity:  new(MockIdentity),
		profiles:  new(MockProfiles),
		snapshots: new(MockSnapshots),
		pictures:  new(MockPictures),
	}

	// Snapshot persistence is best-effort background noise in most scenarios.
	f.snapshots.On("SaveSnapshot", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.snapshots.On("SaveAuthToken", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.snapshots.On("Clear", mock.Anything, mock.Anything).Return(nil).Maybe()

	cfg := session.DefaultConfig()
	cfg.SignOutGracePeriod = 0
	f.mgr = session.NewManager(session.Deps{
		Identity:  f.identity,
		Profiles:  f.profiles,
		Snapshots: f.snapshots,
		Pictures:  f.pictures,
		Config:    cfg,
	})
	return f
}

func identityFor(userID string) *domain.UserIdentity {
	return &domain.UserIdentity{
		UserID:      userID,
		Email:       userID + "@example.com",
		AccessToken: "token-" + userID,
		Confirmed:   true,
	}
}

func completedProfile(userID string) *domain.UserProfile {
	p := domain.NewMinimalProfile(userID, userID+"@example.com", domain.AuthMethodEmail)
	now := time.Now()
	p.Onboarding.SurveyCompleted = true
	p.Onboarding.StepsCompleted = domain.OnboardingTotalSteps
	p.Onboarding.CurrentStep = domain.OnboardingTotalSteps
	p.Onboarding.CompletionTimestamp = &now
	p.CurrentStage = domain.StageActive
	return p
}

// Scenarios

func TestSignUpEstablishesOnboardingSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.identity.On("SignUp", ctx, "new@example.com", "secret123", "New Athlete").
		Return(identityFor("u1"), nil)
	f.profiles.On("FetchProfile", ctx, "u1").Return(nil, nil)
	f.profiles.On("CreateProfile", ctx, mock.AnythingOfType("*domain.UserProfile")).Return(nil)

	profile, err := f.mgr.SignUp(ctx, "new@example.com", "secret123", "New Athlete")
	assert.NoError(t, err)
	assert.NotNil(t, profile)
	assert.Equal(t, domain.StateOnboarding, f.mgr.State())
	assert.Equal(t, 1, profile.Onboarding.CurrentStep)
	assert.Equal(t, 0, profile.Onboarding.StepsCompleted)
	assert.True(t, f.mgr.NavState().IsAuthenticated)
	assert.True(t, f.mgr.NavState().ShowOnboarding)
}

func TestSignInAdoptsCompletedProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.identity.On("SignIn", ctx, "u2@example.com", "secret123").
		Return(identityFor("u2"), nil)
	f.profiles.On("FetchProfile", ctx, "u2").Return(completedProfile("u2"), nil)

	profile, err := f.mgr.SignIn(ctx, "u2@example.com", "secret123")
	assert.NoError(t, err)
	assert.True(t, profile.Onboarding.SurveyCompleted)
	assert.Equal(t, domain.StateActive, f.mgr.State())
	assert.False(t, f.mgr.NavState().ShowOnboarding)
}

func TestSignInInvalidCredentials(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.identity.On("SignIn", ctx, "u3@example.com", "wrong").
		Return(nil, apperror.SignInFailed("Invalid email or password", nil))

	profile, err := f.mgr.SignIn(ctx, "u3@example.com", "wrong")
	assert.Nil(t, profile)
	assert.Equal(t, apperror.KindSignInFailed, apperror.KindOf(err))
	assert.Equal(t, domain.StateSignedOut, f.mgr.State())
}

func signedInFixture(t *testing.T, userID string) *fixture {
	t.Helper()
	f := newFixture()
	ctx := context.Background()

	f.identity.On("SignIn", ctx, userID+"@example.com", "secret123").
		Return(identityFor(userID), nil)
	f.profiles.On("FetchProfile", ctx, userID).Return(nil, nil)
	f.profiles.On("CreateProfile", ctx, mock.Anything).Return(nil)

	_, err := f.mgr.SignIn(ctx, userID+"@example.com", "secret123")
	assert.NoError(t, err)
	return f
}

func TestOnboardingStepProgression(t *testing.T) {
	f := signedInFixture(t, "u4")
	ctx := context.Background()

	f.profiles.On("ApplyStep1", ctx, "u4", mock.Anything).Return(nil)
	f.profiles.On("ApplyStep2", ctx, "u4", mock.Anything).Return(nil)
	f.profiles.On("ApplyStep3", ctx, "u4", mock.Anything).Return(nil)
	f.profiles.On("ApplyCompletion", ctx, "u4", mock.Anything).Return(nil)

	p, err := f.mgr.SubmitStep1(ctx, domain.Step1Request{
		AthleteType: domain.AthleteCollegiate,
		Sport:       "basketball",
		DateOfBirth: "2004-05-01",
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, p.Onboarding.StepsCompleted)
	assert.Equal(t, 2, p.Onboarding.CurrentStep)
	assert.NotNil(t, p.Age)

	p, err = f.mgr.SubmitStep2(ctx, domain.Step2Request{
		Interests: []domain.InterestKey{domain.InterestInvesting, domain.InterestInvesting, domain.InterestCrypto},
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, p.Onboarding.StepsCompleted)
	assert.Equal(t, []domain.InterestKey{domain.InterestInvesting, domain.InterestCrypto}, p.Interests)

	p, err = f.mgr.SubmitStep3(ctx, domain.Step3Request{LearningGoal: domain.GoalBrandBuilding})
	assert.NoError(t, err)
	assert.Equal(t, 3, p.Onboarding.StepsCompleted)
	assert.Equal(t, domain.ContentStory, *p.PreferredContentType)
	assert.Equal(t, domain.MindsetLegacy, *p.MindsetProfile)

	p, err = f.mgr.SkipPicture(ctx)
	assert.NoError(t, err)
	assert.True(t, p.Onboarding.SurveyCompleted)
	assert.Equal(t, domain.OnboardingTotalSteps, p.Onboarding.StepsCompleted)
	assert.Equal(t, domain.StateActive, f.mgr.State())
}

func TestStepProgressNeverRegresses(t *testing.T) {
	f := signedInFixture(t, "u5")
	ctx := context.Background()

	f.profiles.On("ApplyStep1", ctx, "u5", mock.Anything).Return(nil)
	f.profiles.On("ApplyStep2", ctx, "u5", mock.Anything).Return(nil)

	_, err := f.mgr.SubmitStep1(ctx, domain.Step1Request{
		AthleteType: domain.AthleteAmateur, Sport: "soccer", DateOfBirth: "2001-01-01",
	})
	assert.NoError(t, err)
	_, err = f.mgr.SubmitStep2(ctx, domain.Step2Request{Interests: []domain.InterestKey{domain.InterestTaxes}})
	assert.NoError(t, err)

	// Re-submitting an earlier step must not roll progress back.
	p, err := f.mgr.SubmitStep1(ctx, domain.Step1Request{
		AthleteType: domain.AthleteSemiPro, Sport: "tennis", DateOfBirth: "2001-01-01",
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, p.Onboarding.StepsCompleted)
	assert.Equal(t, 3, p.Onboarding.CurrentStep)
	assert.Equal(t, domain.AthleteSemiPro, *p.AthleteType)
}

func TestInvalidStepInputsRejected(t *testing.T) {
	f := signedInFixture(t, "u6")
	ctx := context.Background()

	t.Run("Unknown athlete type", func(t *testing.T) {
		_, err := f.mgr.SubmitStep1(ctx, domain.Step1Request{AthleteType: "olympian", Sport: "x", DateOfBirth: "2000-01-01"})
		assert.Equal(t, apperror.KindInvalidUserData, apperror.KindOf(err))
	})

	t.Run("Unknown interest key", func(t *testing.T) {
		_, err := f.mgr.SubmitStep2(ctx, domain.Step2Request{Interests: []domain.InterestKey{"gardening"}})
		assert.Equal(t, apperror.KindInvalidUserData, apperror.KindOf(err))
	})

	t.Run("Unknown learning goal", func(t *testing.T) {
		_, err := f.mgr.SubmitStep3(ctx, domain.Step3Request{LearningGoal: "fame"})
		assert.Equal(t, apperror.KindInvalidUserData, apperror.KindOf(err))
	})
}

func TestInvalidDateOfBirthLeavesAgeUnset(t *testing.T) {
	f := signedInFixture(t, "u7")
	ctx := context.Background()

	f.profiles.On("ApplyStep1", ctx, "u7", mock.Anything).Return(nil)

	p, err := f.mgr.SubmitStep1(ctx, domain.Step1Request{
		AthleteType: domain.AthleteAmateur, Sport: "golf", DateOfBirth: "01-05-2004",
	})
	assert.NoError(t, err)
	assert.Nil(t, p.Age)
	assert.Equal(t, 1, p.Onboarding.StepsCompleted)
}

func TestStep3ProceedsOnRemoteFailure(t *testing.T) {
	f := signedInFixture(t, "u8")
	ctx := context.Background()

	f.profiles.On("ApplyStep3", ctx, "u8", mock.Anything).Return(errors.New("db down"))

	p, err := f.mgr.SubmitStep3(ctx, domain.Step3Request{LearningGoal: domain.GoalWealthBuilding})
	assert.NoError(t, err)
	assert.Equal(t, 3, p.Onboarding.StepsCompleted)
}

func TestCompletionIsIdempotent(t *testing.T) {
	f := signedInFixture(t, "u9")
	ctx := context.Background()

	f.profiles.On("ApplyCompletion", ctx, "u9", mock.Anything).Return(nil).Once()

	first, err := f.mgr.SkipPicture(ctx)
	assert.NoError(t, err)
	assert.True(t, first.Onboarding.SurveyCompleted)
	stamp := first.Onboarding.CompletionTimestamp

	second, err := f.mgr.SkipPicture(ctx)
	assert.NoError(t, err)
	assert.True(t, second.Onboarding.SurveyCompleted)
	assert.Equal(t, stamp, second.Onboarding.CompletionTimestamp)
	f.profiles.AssertNumberOfCalls(t, "ApplyCompletion", 1)
}

func TestCompletionAppliesDespiteUploadFailure(t *testing.T) {
	f := signedInFixture(t, "u10")
	ctx := context.Background()

	f.pictures.On("UploadProfilePicture", ctx, "u10", mock.Anything).
		Return("", errors.New("bucket unreachable"))
	f.profiles.On("ApplyCompletion", ctx, "u10", mock.Anything).Return(nil)

	p, err := f.mgr.CompleteWithPicture(ctx, []byte{0xFF, 0xD8})
	assert.Error(t, err)
	assert.NotNil(t, p)
	assert.True(t, p.Onboarding.SurveyCompleted)
	assert.Equal(t, domain.StateActive, f.mgr.State())
}

func TestSignedOutEventClearsState(t *testing.T) {
	f := signedInFixture(t, "u11")

	f.mgr.HandleAuthEvent(domain.AuthEvent{Type: domain.EventSignedOut, UserID: "u11"})

	assert.Equal(t, domain.StateSignedOut, f.mgr.State())
	assert.Nil(t, f.mgr.CurrentUser())
	assert.Equal(t, domain.NavState{}, f.mgr.NavState())
}

func TestSignOutWinsOverInFlightStep(t *testing.T) {
	f := signedInFixture(t, "u12")
	ctx := context.Background()

	// The provider event lands while the remote update is still in flight.
	f.profiles.On("ApplyStep2", ctx, "u12", mock.Anything).
		Run(func(args mock.Arguments) {
			f.mgr.HandleAuthEvent(domain.AuthEvent{Type: domain.EventSessionExpired, UserID: "u12"})
		}).
		Return(nil)

	p, err := f.mgr.SubmitStep2(ctx, domain.Step2Request{Interests: []domain.InterestKey{domain.InterestMedia}})
	assert.Nil(t, p)
	assert.Equal(t, apperror.KindSessionExpired, apperror.KindOf(err))
	assert.Equal(t, domain.StateSignedOut, f.mgr.State())
	assert.Nil(t, f.mgr.CurrentUser())
}

func TestStepWithoutSessionCreatesTemporaryProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// No remote call may happen for a locally-fabricated placeholder, so no
	// ApplyStep1 expectation is registered.
	p, err := f.mgr.SubmitStep1(ctx, domain.Step1Request{
		AthleteType: domain.AthleteAmateur, Sport: "swimming", DateOfBirth: "1999-09-09",
	})
	assert.NoError(t, err)
	assert.True(t, p.Temporary())
	assert.Equal(t, 1, p.Onboarding.StepsCompleted)
	f.profiles.AssertNotCalled(t, "ApplyStep1", mock.Anything, mock.Anything, mock.Anything)
}

func TestRestorePrecedence(t *testing.T) {
	t.Run("Provider signed out wins over everything", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		f.identity.On("CurrentSession", ctx, "stale-token").
			Return(domain.SessionInfo{IsSignedIn: false})

		p, err := f.mgr.Restore(ctx, "stale-token")
		assert.NoError(t, err)
		assert.Nil(t, p)
		assert.Equal(t, domain.StateSignedOut, f.mgr.State())
	})

	t.Run("Matching snapshot is adopted", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		f.identity.On("CurrentSession", ctx, "token-u13").
			Return(domain.SessionInfo{IsSignedIn: true, UserID: "u13"})
		f.snapshots.On("LoadSnapshot", ctx, "u13").
			Return(&domain.Snapshot{SchemaVersion: domain.SnapshotSchemaVersion, Profile: completedProfile("u13")}, nil)

		p, err := f.mgr.Restore(ctx, "token-u13")
		assert.NoError(t, err)
		assert.Equal(t, "u13", p.ID)
		assert.Equal(t, domain.StateActive, f.mgr.State())
	})

	t.Run("No snapshot synthesizes from attributes, assumed onboarded", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		f.identity.On("CurrentSession", ctx, "token-u14").
			Return(domain.SessionInfo{IsSignedIn: true, UserID: "u14"})
		f.snapshots.On("LoadSnapshot", ctx, "u14").Return(nil, nil)
		f.identity.On("FetchUserAttributes", ctx, "token-u14").
			Return(map[string]string{"email": "u14@example.com", "display_name": "Jordan"}, nil)

		p, err := f.mgr.Restore(ctx, "token-u14")
		assert.NoError(t, err)
		assert.True(t, p.Onboarding.SurveyCompleted)
		assert.Equal(t, "Jordan", *p.Name)
		assert.Equal(t, domain.StateActive, f.mgr.State())
	})

	t.Run("Snapshot for a different user is ignored", func(t *testing.T) {
		f := newFixture()
		ctx := context.Background()

		f.identity.On("CurrentSession", ctx, "token-u15").
			Return(domain.SessionInfo{IsSignedIn: true, UserID: "u15"})
		f.snapshots.On("LoadSnapshot", ctx, "u15").
			Return(&domain.Snapshot{SchemaVersion: domain.SnapshotSchemaVersion, Profile: completedProfile("someone-else")}, nil)
		f.identity.On("FetchUserAttributes", ctx, "token-u15").
			Return(map[string]string{"email": "u15@example.com"}, nil)

		p, err := f.mgr.Restore(ctx, "token-u15")
		assert.NoError(t, err)
		assert.Equal(t, "u15", p.ID)
	})
}

func TestSignOutClearsLocalStateEvenOnPartialFailure(t *testing.T) {
	f := signedInFixture(t, "u16")
	ctx := context.Background()

	f.identity.On("SignOut", ctx, "token-u16", true).
		Return(domain.SignOutResult{Status: domain.SignOutPartial, SubErrors: []error{errors.New("revocation timed out")}})
	f.identity.On("CurrentSession", ctx, "token-u16").
		Return(domain.SessionInfo{IsSignedIn: true, UserID: "u16"})
	f.identity.On("SignOut", ctx, "token-u16", false).
		Return(domain.SignOutResult{Status: domain.SignOutComplete})

	result := f.mgr.SignOut(ctx)
	assert.Equal(t, domain.SignOutPartial, result.Status)
	assert.Equal(t, domain.StateSignedOut, f.mgr.State())
	assert.Nil(t, f.mgr.CurrentUser())
}

func TestAccountOperationsRequireUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.mgr.AddPoints(ctx, 10, "x")
	assert.Equal(t, apperror.KindNoUserLoggedIn, apperror.KindOf(err))

	err = f.mgr.StartWorkout("drill")
	assert.Equal(t, apperror.KindNoUserLoggedIn, apperror.KindOf(err))

	_, err = f.mgr.CompleteWorkout(ctx, domain.GameSession{ID: "g1"})
	assert.Equal(t, apperror.KindNoUserLoggedIn, apperror.KindOf(err))
}

func TestWorkoutLifecycle(t *testing.T) {
	f := signedInFixture(t, "u17")
	ctx := context.Background()

	f.profiles.On("RecordGameSession", ctx, "u17", mock.Anything).Return(nil)

	assert.NoError(t, f.mgr.StartWorkout("budgeting_drill"))
	assert.Equal(t, "budgeting_drill", *f.mgr.NavState().ActiveWorkout)

	p, err := f.mgr.CompleteWorkout(ctx, domain.GameSession{ID: "g1", ModuleKey: "budgeting_drill", Score: 8})
	assert.NoError(t, err)
	assert.Len(t, p.GameSessions, 1)
	assert.Nil(t, f.mgr.NavState().ActiveWorkout)
}
