// Package payment is a thin pass-through to Stripe: hosted checkout session
// creation for the paid evaluation path, and webhook signature verification.
// No payment state is persisted; webhook events are logged only.
package payment

import (
	"fmt"
	"log/slog"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"
)

// ErrNotConfigured is returned when the Stripe keys are absent. The free
// evaluation path works without them, so this is a per-endpoint condition
// rather than a startup failure.
var ErrNotConfigured = fmt.Errorf("stripe is not configured")

const metadataPromptLimit = 500

// Service creates checkout sessions and verifies webhook payloads.
type Service struct {
	webhookSecret string
	priceCents    int64
	configured    bool
	logger        *slog.Logger
}

// NewService sets up the Stripe SDK. An empty secretKey yields a service
// whose operations all return ErrNotConfigured.
func NewService(secretKey, webhookSecret string, priceCents int64, logger *slog.Logger) *Service {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &Service{
		webhookSecret: webhookSecret,
		priceCents:    priceCents,
		configured:    secretKey != "",
		logger:        logger.With("component", "payment"),
	}
}

// Configured reports whether checkout sessions can be created.
func (s *Service) Configured() bool {
	return s.configured
}

// CreateCheckoutSession creates a hosted card-payment session for one
// evaluation at the fixed price. The prompt is attached to the session as
// truncated metadata only; the full text never reaches Stripe. origin is the
// client's Origin header, used to build the redirect URLs.
func (s *Service) CreateCheckoutSession(prompt, origin string) (string, error) {
	if !s.configured {
		return "", ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("PromptIQ Evaluation"),
						Description: stripe.String(fmt.Sprintf("AI-powered prompt evaluation for: %q", truncate(prompt, 100))),
					},
					UnitAmount: stripe.Int64(s.priceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(origin + "/results?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(origin + "/"),
	}
	params.AddMetadata("prompt", TruncateForMetadata(prompt))

	created, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	s.logger.Info("Checkout session created", "session_id", created.ID)
	return created.ID, nil
}

// HandleWebhook verifies the provider signature and dispatches on the event
// type. Verification failure is the caller's 400; a verified event is logged
// and acknowledged, nothing more. Retries on failure are Stripe's job.
func (s *Service) HandleWebhook(payload []byte, signature string) (string, error) {
	if s.webhookSecret == "" {
		return "", ErrNotConfigured
	}

	// Stripe pins webhook payloads to the API version of the endpoint, which
	// routinely trails the SDK's pinned version. Only the fields read below
	// matter, so version skew is tolerated.
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return "", fmt.Errorf("verify webhook signature: %w", err)
	}

	objectID, _ := event.Data.Object["id"].(string)
	switch event.Type {
	case "checkout.session.completed":
		s.logger.Info("Payment successful for session", "session_id", objectID)
	case "payment_intent.succeeded":
		s.logger.Info("Payment succeeded", "payment_intent", objectID)
	case "payment_intent.payment_failed":
		s.logger.Warn("Payment failed", "payment_intent", objectID)
	default:
		s.logger.Debug("Unhandled webhook event type", "type", event.Type)
	}

	return string(event.Type), nil
}

// TruncateForMetadata caps the prompt at 500 characters for storage as
// checkout session metadata, appending an ellipsis marker when cut.
func TruncateForMetadata(prompt string) string {
	return truncate(prompt, metadataPromptLimit)
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
