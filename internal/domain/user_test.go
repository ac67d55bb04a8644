package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"go-athlete-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestAgeFromDateOfBirth(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	t.Run("Birthday already passed this year", func(t *testing.T) {
		age := domain.AgeFromDateOfBirth("2000-03-10", now)
		assert.NotNil(t, age)
		assert.Equal(t, 26, *age)
	})

	t.Run("Birthday not yet reached this year", func(t *testing.T) {
		age := domain.AgeFromDateOfBirth("2000-09-10", now)
		assert.NotNil(t, age)
		assert.Equal(t, 25, *age)
	})

	t.Run("Birthday today counts the full year", func(t *testing.T) {
		age := domain.AgeFromDateOfBirth("2000-06-15", now)
		assert.NotNil(t, age)
		assert.Equal(t, 26, *age)
	})

	t.Run("Unparseable date yields nil, not an error", func(t *testing.T) {
		assert.Nil(t, domain.AgeFromDateOfBirth("15/06/2000", now))
		assert.Nil(t, domain.AgeFromDateOfBirth("not-a-date", now))
		assert.Nil(t, domain.AgeFromDateOfBirth("", now))
	})

	t.Run("Future date of birth yields nil", func(t *testing.T) {
		assert.Nil(t, domain.AgeFromDateOfBirth("2030-01-01", now))
	})
}

func TestNewMinimalProfile(t *testing.T) {
	p := domain.NewMinimalProfile("user-1", "a@b.com", domain.AuthMethodEmail)

	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, domain.StageOnboarding, p.CurrentStage)
	assert.Equal(t, domain.TierFreemium, p.AccountTier)
	assert.False(t, p.Onboarding.SurveyCompleted)
	assert.Equal(t, 1, p.Onboarding.CurrentStep)
	assert.Equal(t, 0, p.Onboarding.StepsCompleted)
	assert.Equal(t, domain.OnboardingTotalSteps, p.Onboarding.TotalSteps)
	assert.False(t, p.Temporary())
}

func TestTemporaryProfile(t *testing.T) {
	t.Run("Flagged placeholder is temporary", func(t *testing.T) {
		p := domain.NewTemporaryProfile("local-123")
		assert.True(t, p.Temporary())
	})

	t.Run("Sentinel email prefix survives a lost flag", func(t *testing.T) {
		p := domain.NewTemporaryProfile("local-123")
		p.IsTemporary = false
		assert.True(t, p.Temporary())
	})
}

func TestAddPoints(t *testing.T) {
	p := domain.NewMinimalProfile("user-1", "a@b.com", domain.AuthMethodEmail)

	p.AddPoints(50, "lesson_completed")
	p.AddPoints(25, "streak_bonus")

	assert.NotNil(t, p.Points)
	assert.Equal(t, 75, p.Points.Balance)
	assert.Len(t, p.Points.History, 2)
	assert.Equal(t, "lesson_completed", p.Points.History[0].Reason)
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Run("Minimal profile survives serialization", func(t *testing.T) {
		snap := domain.Snapshot{
			SchemaVersion: domain.SnapshotSchemaVersion,
			Profile:       domain.NewMinimalProfile("user-1", "a@b.com", domain.AuthMethodEmail),
		}

		data, err := json.Marshal(snap)
		assert.NoError(t, err)

		var got domain.Snapshot
		assert.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, snap.Profile.ID, got.Profile.ID)
		assert.Nil(t, got.Profile.Age)
		assert.Nil(t, got.Profile.AthleteType)
		assert.Empty(t, got.Profile.Interests)
	})

	t.Run("Fully populated profile survives serialization", func(t *testing.T) {
		now := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
		athleteType := domain.AthleteCollegiate
		sport := "basketball"
		age := 21
		contentType := domain.ContentStory
		mindset := domain.MindsetLegacy

		p := domain.NewMinimalProfile("user-1", "a@b.com", domain.AuthMethodEmail)
		p.AthleteType = &athleteType
		p.Sport = &sport
		p.Age = &age
		p.Interests = []domain.InterestKey{domain.InterestInvesting, domain.InterestBranding}
		p.PreferredContentType = &contentType
		p.MindsetProfile = &mindset
		p.Onboarding.SurveyCompleted = true
		p.Onboarding.StepsCompleted = domain.OnboardingTotalSteps
		p.Onboarding.CurrentStep = domain.OnboardingTotalSteps
		p.Onboarding.CompletionTimestamp = &now
		p.CurrentStage = domain.StageActive
		p.AddPoints(100, "welcome")
		p.GameSessions = []domain.GameSession{{ID: "g1", ModuleKey: "budgeting_101", Score: 9}}
		p.PurchaseHistory = []domain.Purchase{{ProductID: "premium", AmountCents: 999, Currency: "usd"}}

		data, err := json.Marshal(domain.Snapshot{SchemaVersion: domain.SnapshotSchemaVersion, Profile: p})
		assert.NoError(t, err)

		var got domain.Snapshot
		assert.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, domain.AthleteCollegiate, *got.Profile.AthleteType)
		assert.Equal(t, 21, *got.Profile.Age)
		assert.True(t, got.Profile.Onboarding.SurveyCompleted)
		assert.Equal(t, 100, got.Profile.Points.Balance)
		assert.Len(t, got.Profile.GameSessions, 1)
		assert.Len(t, got.Profile.PurchaseHistory, 1)
	})
}
