// internal/domain/payment/stripe_service.go
package payment

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
	"github.com/your-org/storefront-backend/internal/config"
)

// StripeService wraps the card gateway
type StripeService struct {
	config *config.Config
}

// NewStripeService creates a new Stripe service and sets the API key
func NewStripeService(cfg *config.Config) *StripeService {
	stripe.Key = cfg.Stripe.SecretKey
	return &StripeService{
		config: cfg,
	}
}

// Enabled reports whether the gateway is configured
func (s *StripeService) Enabled() bool {
	return s.config.StripeEnabled()
}

// IntentResult carries the data a client needs to confirm a card payment
type IntentResult struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// CreateIntent creates a payment intent for the order total. Totals under
// the gateway minimum are rejected before calling out.
func (s *StripeService) CreateIntent(amount int64, sessionID string) (*IntentResult, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("card payments are not configured")
	}
	if amount < s.config.Stripe.MinimumAmount {
		return nil, fmt.Errorf("amount %d is below the gateway minimum %d", amount, s.config.Stripe.MinimumAmount)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(s.config.Stripe.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("session_id", sessionID)

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &IntentResult{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     string(intent.Currency),
	}, nil
}

// VerifyIntent confirms that a client-supplied intent id exists and has
// been captured before an order is marked paid at checkout
func (s *StripeService) VerifyIntent(intentID string) (bool, error) {
	if !s.Enabled() {
		return false, fmt.Errorf("card payments are not configured")
	}

	intent, err := paymentintent.Get(intentID, nil)
	if err != nil {
		return false, fmt.Errorf("failed to fetch payment intent: %w", err)
	}

	return intent.Status == stripe.PaymentIntentStatusSucceeded, nil
}

// ParseWebhook verifies the event signature and returns the event
func (s *StripeService) ParseWebhook(payload []byte, signature string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.config.Stripe.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return &event, nil
}

// ExtractPaymentIntent unmarshals the intent object from a webhook event
func ExtractPaymentIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}
	return &intent, nil
}
