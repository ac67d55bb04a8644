package domain

import (
	"context"
	"time"
)

// ============================================================================
// Interests (Step 2)
// ============================================================================

// InterestKey represents valid interest options shown in the onboarding wizard.
type InterestKey string

const (
	InterestInvesting        InterestKey = "investing"
	InterestBudgeting        InterestKey = "budgeting"
	InterestSavings          InterestKey = "savings"
	InterestRealEstate       InterestKey = "real_estate"
	InterestCrypto           InterestKey = "crypto"
	InterestTaxes            InterestKey = "taxes"
	InterestContracts        InterestKey = "contracts"
	InterestBranding         InterestKey = "branding"
	InterestSponsorships     InterestKey = "sponsorships"
	InterestMedia            InterestKey = "media"
	InterestNetworking       InterestKey = "networking"
	InterestEntrepreneurship InterestKey = "entrepreneurship"
)

// MaxInterests caps how many interests a user may select.
const MaxInterests = 10

// ValidInterestKeys returns all valid interest keys.
func ValidInterestKeys() []InterestKey {
	return []InterestKey{
		InterestInvesting, InterestBudgeting, InterestSavings,
		InterestRealEstate, InterestCrypto, InterestTaxes,
		InterestContracts, InterestBranding, InterestSponsorships,
		InterestMedia, InterestNetworking, InterestEntrepreneurship,
	}
}

// IsValid checks if the interest key is valid.
func (k InterestKey) IsValid() bool {
	for _, valid := range ValidInterestKeys() {
		if k == valid {
			return true
		}
	}
	return false
}

// ToggleInterest selects the key if absent and deselects it if present.
// Selections beyond MaxInterests are dropped silently.
func ToggleInterest(selected []InterestKey, key InterestKey) []InterestKey {
	for i, k := range selected {
		if k == key {
			return append(selected[:i:i], selected[i+1:]...)
		}
	}
	if len(selected) >= MaxInterests {
		return selected
	}
	return append(selected, key)
}

// NormalizeInterests deduplicates while preserving insertion order and caps
// the result at MaxInterests.
func NormalizeInterests(keys []InterestKey) []InterestKey {
	seen := make(map[InterestKey]bool, len(keys))
	out := make([]InterestKey, 0, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
		if len(out) == MaxInterests {
			break
		}
	}
	return out
}

// ============================================================================
// Learning goal (Step 3)
// ============================================================================

type LearningGoal string

const (
	GoalWealthBuilding LearningGoal = "wealth_building"
	GoalBrandBuilding  LearningGoal = "brand_building"
	GoalCareerBuilding LearningGoal = "career_building"
)

func ValidLearningGoals() []LearningGoal {
	return []LearningGoal{GoalWealthBuilding, GoalBrandBuilding, GoalCareerBuilding}
}

func (g LearningGoal) IsValid() bool {
	for _, valid := range ValidLearningGoals() {
		if g == valid {
			return true
		}
	}
	return false
}

type ContentType string

const (
	ContentTactical ContentType = "tactical"
	ContentStory    ContentType = "story"
	ContentMixed    ContentType = "mixed"
)

type MindsetProfile string

const (
	MindsetSecurity MindsetProfile = "security"
	MindsetLegacy   MindsetProfile = "legacy"
	MindsetGrowth   MindsetProfile = "growth"
)

// ContentMappingFor derives the preferred content type and mindset profile
// deterministically from the learning goal.
func ContentMappingFor(goal LearningGoal) (ContentType, MindsetProfile) {
	switch goal {
	case GoalBrandBuilding:
		return ContentStory, MindsetLegacy
	case GoalCareerBuilding:
		return ContentMixed, MindsetGrowth
	default:
		return ContentTactical, MindsetSecurity
	}
}

// ============================================================================
// Step requests
// ============================================================================

// Step1Request collects athlete demographics.
type Step1Request struct {
	AthleteType AthleteType `json:"athlete_type" validate:"required"`
	Sport       string      `json:"sport" validate:"required"`
	DateOfBirth string      `json:"date_of_birth" validate:"required"` // yyyy-MM-dd
	PhoneNumber string      `json:"phone_number,omitempty"`
}

// Step2Request collects interest selections.
type Step2Request struct {
	Interests []InterestKey `json:"interests" validate:"required,min=1"`
}

// Step3Request collects the learning goal.
type Step3Request struct {
	LearningGoal LearningGoal `json:"learning_goal" validate:"required"`
}

// ============================================================================
// Typed partial-update deltas sent to the profile store
// ============================================================================

// Step1Delta is the remote update for step 1.
type Step1Delta struct {
	AthleteType    AthleteType
	Sport          string
	Age            *int
	CurrentStep    int
	StepsCompleted int
	LastActive     time.Time
}

// Step2Delta is the remote update for step 2.
type Step2Delta struct {
	Interests      []InterestKey
	CurrentStep    int
	StepsCompleted int
	LastActive     time.Time
}

// Step3Delta is the remote update for step 3.
type Step3Delta struct {
	PreferredContentType ContentType
	MindsetProfile       MindsetProfile
	CurrentStep          int
	StepsCompleted       int
	LastActive           time.Time
}

// CompletionDelta is the remote update for finishing onboarding, with or
// without a picture.
type CompletionDelta struct {
	PictureURL          *string
	SurveyCompleted     bool
	CompletionTimestamp time.Time
	CurrentStage        Stage
	StepsCompleted      int
	LastActive          time.Time
}

// ============================================================================
// Profile store boundary (the remote profile client)
// ============================================================================

// ProfileStore persists and retrieves durable profiles. Implementations must
// not be constructed with a current profile: the session manager owns it.
type ProfileStore interface {
	FetchProfile(ctx context.Context, userID string) (*UserProfile, error)
	CreateProfile(ctx context.Context, profile *UserProfile) error

	ApplyStep1(ctx context.Context, userID string, delta Step1Delta) error
	ApplyStep2(ctx context.Context, userID string, delta Step2Delta) error
	ApplyStep3(ctx context.Context, userID string, delta Step3Delta) error
	ApplyCompletion(ctx context.Context, userID string, delta CompletionDelta) error

	RecordGameSession(ctx context.Context, userID string, session GameSession) error
	AddPoints(ctx context.Context, userID string, event PointsEvent) error
	UpgradeTier(ctx context.Context, userID string, tier AccountTier, purchase Purchase) error
}

// PictureStore uploads profile pictures and returns a public URL.
type PictureStore interface {
	UploadProfilePicture(ctx context.Context, userID string, image []byte) (string, error)
}
