package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

type profileRepo struct {
	db *pgxpool.Pool
}

// NewProfileRepository builds the durable profile store backing the session
// manager's remote profile boundary.
func NewProfileRepository(db *pgxpool.Pool) domain.ProfileStore {
	return &profileRepo{db: db}
}

func (r *profileRepo) CreateProfile(ctx context.Context, p *domain.UserProfile) error {
	points, _ := json.Marshal(p.Points)
	sessions, _ := json.Marshal(p.GameSessions)
	purchases, _ := json.Marshal(p.PurchaseHistory)
	conversion, _ := json.Marshal(p.PremiumConversion)
	device, _ := json.Marshal(p.Device)
	notifications, _ := json.Marshal(p.Notifications)

	query := `
		INSERT INTO profiles (
			id, email, name, picture_url, auth_method, created_at, last_active,
			athlete_type, sport, level, age, location,
			mindset_profile, interests, initial_skill_level,
			survey_completed, completion_timestamp, current_step, steps_completed, total_steps,
			current_stage, modules_completed, game_sessions,
			points, churn_risk, preferred_content_type,
			account_tier, premium_conversion, purchase_history,
			device, notifications, is_temporary
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22, $23,
			$24, $25, $26,
			$27, $28, $29,
			$30, $31, $32
		)`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.Email, p.Name, p.PictureURL, p.AuthMethod, p.CreatedAt, p.LastActive,
		p.AthleteType, p.Sport, p.Level, p.Age, p.Location,
		p.MindsetProfile, pq.Array(interestStrings(p.Interests)), p.InitialSkillLevel,
		p.Onboarding.SurveyCompleted, p.Onboarding.CompletionTimestamp, p.Onboarding.CurrentStep, p.Onboarding.StepsCompleted, p.Onboarding.TotalSteps,
		p.CurrentStage, pq.Array(p.ModulesCompleted), sessions,
		points, p.ChurnRisk, p.PreferredContentType,
		p.AccountTier, conversion, purchases,
		device, notifications, p.IsTemporary,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("A profile for this user already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

// FetchProfile returns (nil, nil) when no durable profile exists for the
// user: absence is an expected state during onboarding, not an error.
func (r *profileRepo) FetchProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `
		SELECT id, email, name, picture_url, auth_method, created_at, last_active,
		       athlete_type, sport, level, age, location,
		       mindset_profile, interests, initial_skill_level,
		       survey_completed, completion_timestamp, current_step, steps_completed, total_steps,
		       current_stage, modules_completed, game_sessions,
		       points, churn_risk, preferred_content_type,
		       account_tier, premium_conversion, purchase_history,
		       device, notifications, is_temporary
		FROM profiles WHERE id = $1`

	var p domain.UserProfile
	var interests, modules []string
	var sessions, points, purchases, conversion, device, notifications []byte

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.Email, &p.Name, &p.PictureURL, &p.AuthMethod, &p.CreatedAt, &p.LastActive,
		&p.AthleteType, &p.Sport, &p.Level, &p.Age, &p.Location,
		&p.MindsetProfile, pq.Array(&interests), &p.InitialSkillLevel,
		&p.Onboarding.SurveyCompleted, &p.Onboarding.CompletionTimestamp, &p.Onboarding.CurrentStep, &p.Onboarding.StepsCompleted, &p.Onboarding.TotalSteps,
		&p.CurrentStage, pq.Array(&modules), &sessions,
		&points, &p.ChurnRisk, &p.PreferredContentType,
		&p.AccountTier, &conversion, &purchases,
		&device, &notifications, &p.IsTemporary,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	for _, s := range interests {
		p.Interests = append(p.Interests, domain.InterestKey(s))
	}
	p.ModulesCompleted = modules
	unmarshalInto(sessions, &p.GameSessions)
	unmarshalInto(points, &p.Points)
	unmarshalInto(purchases, &p.PurchaseHistory)
	unmarshalInto(conversion, &p.PremiumConversion)
	unmarshalInto(device, &p.Device)
	unmarshalInto(notifications, &p.Notifications)

	return &p, nil
}

func (r *profileRepo) ApplyStep1(ctx context.Context, userID string, delta domain.Step1Delta) error {
	query := `
		UPDATE profiles
		SET athlete_type = $2, sport = $3, age = $4,
		    current_step = $5, steps_completed = $6, last_active = $7
		WHERE id = $1`
	return r.exec(ctx, query, userID,
		delta.AthleteType, delta.Sport, delta.Age,
		delta.CurrentStep, delta.StepsCompleted, delta.LastActive)
}

func (r *profileRepo) ApplyStep2(ctx context.Context, userID string, delta domain.Step2Delta) error {
	query := `
		UPDATE profiles
		SET interests = $2, current_step = $3, steps_completed = $4, last_active = $5
		WHERE id = $1`
	return r.exec(ctx, query, userID,
		pq.Array(interestStrings(delta.Interests)),
		delta.CurrentStep, delta.StepsCompleted, delta.LastActive)
}

func (r *profileRepo) ApplyStep3(ctx context.Context, userID string, delta domain.Step3Delta) error {
	query := `
		UPDATE profiles
		SET preferred_content_type = $2, mindset_profile = $3,
		    current_step = $4, steps_completed = $5, last_active = $6
		WHERE id = $1`
	return r.exec(ctx, query, userID,
		delta.PreferredContentType, delta.MindsetProfile,
		delta.CurrentStep, delta.StepsCompleted, delta.LastActive)
}

func (r *profileRepo) ApplyCompletion(ctx context.Context, userID string, delta domain.CompletionDelta) error {
	query := `
		UPDATE profiles
		SET picture_url = COALESCE($2, picture_url),
		    survey_completed = $3, completion_timestamp = $4,
		    current_stage = $5, steps_completed = $6, last_active = $7
		WHERE id = $1`
	return r.exec(ctx, query, userID,
		delta.PictureURL, delta.SurveyCompleted, delta.CompletionTimestamp,
		delta.CurrentStage, delta.StepsCompleted, delta.LastActive)
}

func (r *profileRepo) RecordGameSession(ctx context.Context, userID string, session domain.GameSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return apperror.Internal(err)
	}
	query := `
		UPDATE profiles
		SET game_sessions = COALESCE(game_sessions, '[]'::jsonb) || $2::jsonb,
		    last_active = $3
		WHERE id = $1`
	return r.exec(ctx, query, userID, data, session.CompletedAt)
}

func (r *profileRepo) AddPoints(ctx context.Context, userID string, event domain.PointsEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return apperror.Internal(err)
	}
	// Balance and history live in one jsonb document; rebuild it in place.
	query := `
		UPDATE profiles
		SET points = jsonb_set(
		        jsonb_set(
		            COALESCE(points, '{"balance":0,"history":[]}'::jsonb),
		            '{balance}',
		            to_jsonb(COALESCE((points->>'balance')::int, 0) + $2)
		        ),
		        '{history}',
		        COALESCE(points->'history', '[]'::jsonb) || $3::jsonb
		    ),
		    last_active = $4
		WHERE id = $1`
	return r.exec(ctx, query, userID, event.Amount, data, event.EarnedAt)
}

func (r *profileRepo) UpgradeTier(ctx context.Context, userID string, tier domain.AccountTier, purchase domain.Purchase) error {
	purchaseData, err := json.Marshal(purchase)
	if err != nil {
		return apperror.Internal(err)
	}
	conversion, err := json.Marshal(domain.PremiumConversion{
		ConvertedAt: purchase.PurchasedAt,
		FromTier:    domain.TierFreemium,
	})
	if err != nil {
		return apperror.Internal(err)
	}
	query := `
		UPDATE profiles
		SET account_tier = $2,
		    premium_conversion = COALESCE(premium_conversion, $3::jsonb),
		    purchase_history = COALESCE(purchase_history, '[]'::jsonb) || $4::jsonb,
		    last_active = $5
		WHERE id = $1`
	return r.exec(ctx, query, userID, tier, conversion, purchaseData, purchase.PurchasedAt)
}

func (r *profileRepo) exec(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("profile update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Profile not found")
	}
	return nil
}

func interestStrings(keys []domain.InterestKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

func unmarshalInto(data []byte, target interface{}) {
	if len(data) == 0 {
		return
	}
	_ = json.Unmarshal(data, target)
}
