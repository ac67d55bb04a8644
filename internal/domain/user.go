package domain

import (
	"strings"
	"time"
)

// AuthMethod is how the user authenticated with the identity provider.
type AuthMethod string

const (
	AuthMethodEmail     AuthMethod = "email"
	AuthMethodMagicLink AuthMethod = "magic_link"
	AuthMethodSocial    AuthMethod = "social"
)

// AccountTier is the monetization tier of the account.
type AccountTier string

const (
	TierFreemium AccountTier = "freemium"
	TierPremium  AccountTier = "premium"
	TierTrial    AccountTier = "trial"
)

// Stage is the user's journey stage.
type Stage string

const (
	StageOnboarding Stage = "onboarding"
	StageActive     Stage = "active"
	StageDormant    Stage = "dormant"
)

type AthleteType string

const (
	AthleteAmateur      AthleteType = "amateur"
	AthleteCollegiate   AthleteType = "collegiate"
	AthleteSemiPro      AthleteType = "semi_pro"
	AthleteProfessional AthleteType = "professional"
	AthleteRetired      AthleteType = "retired"
)

func ValidAthleteTypes() []AthleteType {
	return []AthleteType{AthleteAmateur, AthleteCollegiate, AthleteSemiPro, AthleteProfessional, AthleteRetired}
}

func (t AthleteType) IsValid() bool {
	for _, valid := range ValidAthleteTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// TempEmailPrefix marks locally-fabricated placeholder profiles. A profile
// whose email starts with this prefix is treated as temporary even if the
// IsTemporary flag was lost in transit.
const TempEmailPrefix = "temp-"

// OnboardingTotalSteps counts the four wizard steps, including the optional
// profile-picture step.
const OnboardingTotalSteps = 4

// OnboardingState tracks progress through the onboarding wizard.
// Invariant: 0 <= StepsCompleted <= TotalSteps, and SurveyCompleted implies
// StepsCompleted == TotalSteps.
type OnboardingState struct {
	SurveyCompleted     bool       `json:"survey_completed"`
	CompletionTimestamp *time.Time `json:"completion_timestamp,omitempty"`
	CurrentStep         int        `json:"current_step"` // 1-based
	StepsCompleted      int        `json:"steps_completed"`
	TotalSteps          int        `json:"total_steps"`
}

func NewOnboardingState() OnboardingState {
	return OnboardingState{
		CurrentStep: 1,
		TotalSteps:  OnboardingTotalSteps,
	}
}

type DeviceInfo struct {
	Platform   string `json:"platform"`
	OSVersion  string `json:"os_version,omitempty"`
	AppVersion string `json:"app_version,omitempty"`
}

type NotificationPrefs struct {
	PushEnabled  bool `json:"push_enabled"`
	EmailEnabled bool `json:"email_enabled"`
}

// PointsBalance is the gamification currency: a running balance plus an
// append-only history of earn events.
type PointsBalance struct {
	Balance int           `json:"balance"`
	History []PointsEvent `json:"history,omitempty"`
}

type PointsEvent struct {
	Amount   int       `json:"amount"`
	Reason   string    `json:"reason"`
	EarnedAt time.Time `json:"earned_at"`
}

type GameSession struct {
	ID          string    `json:"id"`
	ModuleKey   string    `json:"module_key"`
	Score       int       `json:"score"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

type Purchase struct {
	ProductID   string    `json:"product_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type PremiumConversion struct {
	ConvertedAt time.Time   `json:"converted_at"`
	FromTier    AccountTier `json:"from_tier"`
}

// UserProfile is the app's durable representation of an athlete, distinct
// from the identity provider's attribute set. Exactly one profile is current
// per session; it is owned and mutated only by the session manager.
type UserProfile struct {
	// Identity
	ID         string     `json:"id"` // provider-issued, opaque
	Email      string     `json:"email"`
	Name       *string    `json:"name,omitempty"`
	PictureURL *string    `json:"picture_url,omitempty"`
	AuthMethod AuthMethod `json:"auth_method"`

	// Timestamps
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`

	// Demographic / athlete attributes, filled in during onboarding
	AthleteType *AthleteType `json:"athlete_type,omitempty"`
	Sport       *string      `json:"sport,omitempty"`
	Level       *SkillLevel  `json:"level,omitempty"`
	Age         *int         `json:"age,omitempty"`
	Location    *string      `json:"location,omitempty"`

	// Psychographic
	MindsetProfile    *MindsetProfile `json:"mindset_profile,omitempty"`
	Interests         []InterestKey   `json:"interests,omitempty"`
	InitialSkillLevel *SkillLevel     `json:"initial_skill_level,omitempty"`

	// Journey state
	Onboarding       OnboardingState `json:"onboarding"`
	CurrentStage     Stage           `json:"current_stage"`
	ModulesCompleted []string        `json:"modules_completed,omitempty"`
	GameSessions     []GameSession   `json:"game_sessions,omitempty"`

	// Behavioral / gamification
	Points               *PointsBalance `json:"points,omitempty"`
	ChurnRisk            *int           `json:"churn_risk,omitempty"` // 0-100
	PreferredContentType *ContentType   `json:"preferred_content_type,omitempty"`

	// Monetization / system
	AccountTier       AccountTier        `json:"account_tier"`
	PremiumConversion *PremiumConversion `json:"premium_conversion,omitempty"`
	PurchaseHistory   []Purchase         `json:"purchase_history,omitempty"`
	Device            DeviceInfo         `json:"device"`
	Notifications     NotificationPrefs  `json:"notifications"`

	// IsTemporary marks a locally-fabricated placeholder created when the
	// identity service authenticated a user but no durable profile exists yet.
	IsTemporary bool `json:"is_temporary"`
}

// NewMinimalProfile builds the profile created immediately after a successful
// authentication, before onboarding has collected anything.
func NewMinimalProfile(id, email string, method AuthMethod) *UserProfile {
	now := time.Now()
	return &UserProfile{
		ID:           id,
		Email:        email,
		AuthMethod:   method,
		CreatedAt:    now,
		LastActive:   now,
		Onboarding:   NewOnboardingState(),
		CurrentStage: StageOnboarding,
		AccountTier:  TierFreemium,
		Notifications: NotificationPrefs{
			PushEnabled:  true,
			EmailEnabled: true,
		},
	}
}

// NewTemporaryProfile builds a placeholder so the onboarding flow is never
// blocked by a missing profile. The id must be locally generated.
func NewTemporaryProfile(localID string) *UserProfile {
	p := NewMinimalProfile(localID, TempEmailPrefix+localID+"@placeholder.local", AuthMethodEmail)
	p.IsTemporary = true
	return p
}

// Temporary reports whether the profile is a local placeholder, either by
// flag or by the sentinel email prefix.
func (p *UserProfile) Temporary() bool {
	return p.IsTemporary || strings.HasPrefix(p.Email, TempEmailPrefix)
}

// Touch updates LastActive. Called by every mutating operation.
func (p *UserProfile) Touch() {
	p.LastActive = time.Now()
}

// AddPoints credits the balance and appends to history.
func (p *UserProfile) AddPoints(amount int, reason string) {
	if p.Points == nil {
		p.Points = &PointsBalance{}
	}
	p.Points.Balance += amount
	p.Points.History = append(p.Points.History, PointsEvent{
		Amount:   amount,
		Reason:   reason,
		EarnedAt: time.Now(),
	})
}

// AgeFromDateOfBirth computes the whole-year age for a yyyy-MM-dd date
// relative to now. Returns nil for unparseable input: an invalid date of
// birth must not fail the submitting operation.
func AgeFromDateOfBirth(dob string, now time.Time) *int {
	t, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return nil
	}
	age := now.Year() - t.Year()
	if now.Month() < t.Month() || (now.Month() == t.Month() && now.Day() < t.Day()) {
		age--
	}
	if age < 0 {
		return nil
	}
	return &age
}
