package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/pkg/logger"

	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/checkout/session"
	"github.com/stripe/stripe-go/v72/webhook"
)

// Service drives the freemium -> premium conversion through Stripe Checkout.
type Service struct {
	secretKey     string
	webhookSecret string
	priceID       string
	profiles      domain.ProfileStore
}

type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceID       string
}

func NewService(cfg Config, profiles domain.ProfileStore) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		priceID:       cfg.PriceID,
		profiles:      profiles,
	}
}

// CreateCheckoutSession returns the session id and hosted payment URL for a
// premium upgrade. The user id rides along as the client reference so the
// webhook can attribute the payment.
func (s *Service) CreateCheckoutSession(userID, successURL, cancelURL string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(userID),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.ID, sess.URL, nil
}

// HandleWebhook verifies the event signature and, on a completed checkout,
// upgrades the account tier and appends the purchase to history.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.webhookSecret == "" {
		return fmt.Errorf("webhook secret is not configured")
	}

	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return fmt.Errorf("webhook signature verification failed: %w", err)
	}

	if event.Type != "checkout.session.completed" {
		logger.Log.Debug("ignoring stripe event", "type", event.Type)
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	userID := sess.ClientReferenceID
	if userID == "" {
		return fmt.Errorf("checkout session %s has no client reference id", sess.ID)
	}

	purchase := domain.Purchase{
		ProductID:   s.priceID,
		AmountCents: sess.AmountTotal,
		Currency:    string(sess.Currency),
		PurchasedAt: time.Now(),
	}
	if err := s.profiles.UpgradeTier(ctx, userID, domain.TierPremium, purchase); err != nil {
		return fmt.Errorf("failed to upgrade tier for %s: %w", userID, err)
	}

	logger.Log.Info("premium conversion recorded", "user_id", userID, "amount_cents", purchase.AmountCents)
	return nil
}
