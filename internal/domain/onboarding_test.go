package domain_test

import (
	"testing"

	"go-athlete-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestToggleInterest(t *testing.T) {
	t.Run("Selecting an absent key appends it", func(t *testing.T) {
		got := domain.ToggleInterest(nil, domain.InterestCrypto)
		assert.Equal(t, []domain.InterestKey{domain.InterestCrypto}, got)
	})

	t.Run("Selecting a present key removes it", func(t *testing.T) {
		selected := []domain.InterestKey{domain.InterestCrypto, domain.InterestTaxes}
		got := domain.ToggleInterest(selected, domain.InterestCrypto)
		assert.Equal(t, []domain.InterestKey{domain.InterestTaxes}, got)
	})

	t.Run("Selection beyond the cap is dropped silently", func(t *testing.T) {
		all := domain.ValidInterestKeys()
		selected := all[:domain.MaxInterests]
		got := domain.ToggleInterest(selected, all[domain.MaxInterests])
		assert.Len(t, got, domain.MaxInterests)
		assert.NotContains(t, got, all[domain.MaxInterests])
	})

	t.Run("Deselection still works at the cap", func(t *testing.T) {
		all := domain.ValidInterestKeys()
		selected := all[:domain.MaxInterests]
		got := domain.ToggleInterest(selected, selected[0])
		assert.Len(t, got, domain.MaxInterests-1)
		assert.NotContains(t, got, selected[0])
	})
}

func TestNormalizeInterests(t *testing.T) {
	t.Run("Duplicates removed, insertion order kept", func(t *testing.T) {
		got := domain.NormalizeInterests([]domain.InterestKey{
			domain.InterestMedia,
			domain.InterestCrypto,
			domain.InterestMedia,
			domain.InterestTaxes,
		})
		assert.Equal(t, []domain.InterestKey{domain.InterestMedia, domain.InterestCrypto, domain.InterestTaxes}, got)
	})

	t.Run("Result capped at the maximum", func(t *testing.T) {
		got := domain.NormalizeInterests(domain.ValidInterestKeys())
		assert.Len(t, got, domain.MaxInterests)
	})
}

func TestContentMappingFor(t *testing.T) {
	cases := []struct {
		goal    domain.LearningGoal
		content domain.ContentType
		mindset domain.MindsetProfile
	}{
		{domain.GoalWealthBuilding, domain.ContentTactical, domain.MindsetSecurity},
		{domain.GoalBrandBuilding, domain.ContentStory, domain.MindsetLegacy},
		{domain.GoalCareerBuilding, domain.ContentMixed, domain.MindsetGrowth},
	}

	for _, tc := range cases {
		t.Run(string(tc.goal), func(t *testing.T) {
			content, mindset := domain.ContentMappingFor(tc.goal)
			assert.Equal(t, tc.content, content)
			assert.Equal(t, tc.mindset, mindset)
		})
	}
}

func TestInterestKeyValidation(t *testing.T) {
	assert.True(t, domain.InterestInvesting.IsValid())
	assert.False(t, domain.InterestKey("gardening").IsValid())
}

func TestLearningGoalValidation(t *testing.T) {
	assert.True(t, domain.GoalWealthBuilding.IsValid())
	assert.False(t, domain.LearningGoal("fame").IsValid())
}
