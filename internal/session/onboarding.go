package session

import (
	"context"
	"time"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/pkg/apperror"
	"go-athlete-backend/pkg/logger"

	"github.com/google/uuid"
)

// ensureProfileLocked synthesizes a temporary placeholder when a step is
// invoked with no current profile, so the onboarding flow is never blocked.
// Caller must hold m.mu.
func (m *Manager) ensureProfileLocked() {
	if m.current != nil {
		return
	}
	m.current = domain.NewTemporaryProfile(uuid.NewString())
	m.isOnboarding = true
	m.nav.ShowOnboarding = true
	logger.Log.Warn("onboarding step invoked with no profile, created temporary placeholder", "temp_id", m.current.ID)
}

// advanceStepLocked marks step n completed without ever regressing or
// exceeding TotalSteps. Caller must hold m.mu.
func (m *Manager) advanceStepLocked(n int) {
	ob := &m.current.Onboarding
	if ob.StepsCompleted < n {
		ob.StepsCompleted = n
	}
	if ob.StepsCompleted > ob.TotalSteps {
		ob.StepsCompleted = ob.TotalSteps
	}
	next := n + 1
	if next > ob.TotalSteps {
		next = ob.TotalSteps
	}
	if ob.CurrentStep < next {
		ob.CurrentStep = next
	}
}

// SubmitStep1 records athlete demographics. The age is derived from the
// yyyy-MM-dd date of birth; an invalid date leaves age unset rather than
// failing the step. The phone number is mirrored to the identity provider's
// attribute store best-effort.
func (m *Manager) SubmitStep1(ctx context.Context, req domain.Step1Request) (*domain.UserProfile, error) {
	if !req.AthleteType.IsValid() {
		return nil, apperror.BadRequest("Invalid athlete type: " + string(req.AthleteType))
	}

	m.mu.Lock()
	m.ensureProfileLocked()
	athleteType := req.AthleteType
	m.current.AthleteType = &athleteType
	m.current.Sport = &req.Sport
	m.current.Age = domain.AgeFromDateOfBirth(req.DateOfBirth, time.Now())
	m.advanceStepLocked(1)
	m.current.Touch()

	delta := domain.Step1Delta{
		AthleteType:    athleteType,
		Sport:          req.Sport,
		Age:            m.current.Age,
		CurrentStep:    m.current.Onboarding.CurrentStep,
		StepsCompleted: m.current.Onboarding.StepsCompleted,
		LastActive:     m.current.LastActive,
	}
	userID := m.current.ID
	temporary := m.current.Temporary()
	token := m.token
	snapshotCopy := *m.current
	epoch := m.epoch
	m.mu.Unlock()

	var remoteErr error
	if !temporary {
		remoteErr = m.deps.Profiles.ApplyStep1(ctx, userID, delta)
	}

	if req.PhoneNumber != "" && token != "" {
		if _, err := m.deps.Identity.UpdateUserAttributes(ctx, token, map[string]string{"phone_number": req.PhoneNumber}); err != nil {
			logger.Log.Warn("failed to mirror phone number to identity attributes", "user_id", userID, "error", err)
		}
	}

	return m.finishStep(ctx, epoch, snapshotCopy, remoteErr)
}

// SubmitStep2 records interest selections: deduplicated, insertion order
// preserved, silently capped at the maximum.
func (m *Manager) SubmitStep2(ctx context.Context, req domain.Step2Request) (*domain.UserProfile, error) {
	for _, k := range req.Interests {
		if !k.IsValid() {
			return nil, apperror.BadRequest("Invalid interest key: " + string(k))
		}
	}
	interests := domain.NormalizeInterests(req.Interests)

	m.mu.Lock()
	m.ensureProfileLocked()
	m.current.Interests = interests
	m.advanceStepLocked(2)
	m.current.Touch()

	delta := domain.Step2Delta{
		Interests:      interests,
		CurrentStep:    m.current.Onboarding.CurrentStep,
		StepsCompleted: m.current.Onboarding.StepsCompleted,
		LastActive:     m.current.LastActive,
	}
	userID := m.current.ID
	temporary := m.current.Temporary()
	snapshotCopy := *m.current
	epoch := m.epoch
	m.mu.Unlock()

	var remoteErr error
	if !temporary {
		remoteErr = m.deps.Profiles.ApplyStep2(ctx, userID, delta)
	}
	return m.finishStep(ctx, epoch, snapshotCopy, remoteErr)
}

// SubmitStep3 derives the preferred content type and mindset profile from the
// learning goal. A remote failure does not block the wizard when the
// proceed-on-failure policy is enabled.
func (m *Manager) SubmitStep3(ctx context.Context, req domain.Step3Request) (*domain.UserProfile, error) {
	if !req.LearningGoal.IsValid() {
		return nil, apperror.BadRequest("Invalid learning goal: " + string(req.LearningGoal))
	}
	contentType, mindset := domain.ContentMappingFor(req.LearningGoal)

	m.mu.Lock()
	m.ensureProfileLocked()
	m.current.PreferredContentType = &contentType
	m.current.MindsetProfile = &mindset
	m.advanceStepLocked(3)
	m.current.Touch()

	delta := domain.Step3Delta{
		PreferredContentType: contentType,
		MindsetProfile:       mindset,
		CurrentStep:          m.current.Onboarding.CurrentStep,
		StepsCompleted:       m.current.Onboarding.StepsCompleted,
		LastActive:           m.current.LastActive,
	}
	userID := m.current.ID
	temporary := m.current.Temporary()
	snapshotCopy := *m.current
	epoch := m.epoch
	m.mu.Unlock()

	var remoteErr error
	if !temporary {
		remoteErr = m.deps.Profiles.ApplyStep3(ctx, userID, delta)
	}
	if remoteErr != nil && m.deps.Config.Step3ProceedOnRemoteFailure {
		logger.Log.Warn("step 3 remote update failed, proceeding", "user_id", userID, "error", remoteErr)
		remoteErr = nil
	}
	return m.finishStep(ctx, epoch, snapshotCopy, remoteErr)
}

// CompleteWithPicture uploads the picture, then marks onboarding complete.
// Completion is applied whether or not the upload succeeded; an upload
// failure is reported alongside the completed profile, never swallowed.
func (m *Manager) CompleteWithPicture(ctx context.Context, image []byte) (*domain.UserProfile, error) {
	m.mu.Lock()
	m.ensureProfileLocked()
	if m.current.Onboarding.SurveyCompleted {
		// Idempotent: repeat completion never regresses state.
		m.mu.Unlock()
		return m.CurrentUser(), nil
	}
	userID := m.current.ID
	m.mu.Unlock()

	var pictureURL *string
	var uploadErr error
	if len(image) > 0 && m.deps.Pictures != nil {
		url, err := m.deps.Pictures.UploadProfilePicture(ctx, userID, image)
		if err != nil {
			uploadErr = err
		} else {
			pictureURL = &url
		}
	}

	profile, err := m.completeOnboarding(ctx, pictureURL)
	if err != nil {
		return profile, err
	}
	return profile, uploadErr
}

// SkipPicture completes onboarding without a picture.
func (m *Manager) SkipPicture(ctx context.Context) (*domain.UserProfile, error) {
	m.mu.Lock()
	m.ensureProfileLocked()
	if m.current.Onboarding.SurveyCompleted {
		m.mu.Unlock()
		return m.CurrentUser(), nil
	}
	m.mu.Unlock()

	return m.completeOnboarding(ctx, nil)
}

// completeOnboarding performs the Onboarding -> Active transition.
func (m *Manager) completeOnboarding(ctx context.Context, pictureURL *string) (*domain.UserProfile, error) {
	now := time.Now()

	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return nil, apperror.NoUserLoggedIn()
	}
	ob := &m.current.Onboarding
	ob.SurveyCompleted = true
	ob.StepsCompleted = ob.TotalSteps
	ob.CurrentStep = ob.TotalSteps
	ob.CompletionTimestamp = &now
	if pictureURL != nil {
		m.current.PictureURL = pictureURL
	}
	m.current.CurrentStage = domain.StageActive
	m.current.Touch()
	m.isOnboarding = false
	m.nav.ShowOnboarding = false

	delta := domain.CompletionDelta{
		PictureURL:          pictureURL,
		SurveyCompleted:     true,
		CompletionTimestamp: now,
		CurrentStage:        domain.StageActive,
		StepsCompleted:      ob.StepsCompleted,
		LastActive:          m.current.LastActive,
	}
	userID := m.current.ID
	temporary := m.current.Temporary()
	snapshotCopy := *m.current
	epoch := m.epoch
	m.mu.Unlock()

	var remoteErr error
	if !temporary {
		remoteErr = m.deps.Profiles.ApplyCompletion(ctx, userID, delta)
	}
	return m.finishStep(ctx, epoch, snapshotCopy, remoteErr)
}

// finishStep re-checks the epoch after the remote suspension point: a
// sign-out that arrived mid-flight wins and the mutation result is discarded.
// On remote success the snapshot is persisted; on remote failure the error is
// surfaced with the local mutation already applied.
func (m *Manager) finishStep(ctx context.Context, epoch uint64, snapshotCopy domain.UserProfile, remoteErr error) (*domain.UserProfile, error) {
	m.mu.Lock()
	stale := m.epoch != epoch
	m.mu.Unlock()
	if stale {
		return nil, apperror.SessionExpired()
	}

	if remoteErr != nil {
		return m.CurrentUser(), remoteErr
	}

	m.persistSnapshot(ctx, snapshotCopy, "")
	return m.CurrentUser(), nil
}
