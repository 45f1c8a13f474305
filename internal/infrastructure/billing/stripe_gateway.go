// Package billing adapts the payment processor to the subscription domain.
package billing

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"github.com/stripe/stripe-go/v72/webhook"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/subscription"
	"sovereign-chat/internal/infrastructure/logger"
	"sovereign-chat/internal/infrastructure/metrics"
	"sovereign-chat/internal/utils/platformerrors"
)

// StripeGateway implements subscription.PaymentGateway.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	configured    bool
}

// NewStripeGateway builds a gateway from the process configuration. A
// missing secret key yields a gateway whose API calls fail with EXTERNAL,
// so the rest of the service still starts.
func NewStripeGateway(cfg *config.Config) *StripeGateway {
	return NewStripeGatewayWithBackends(cfg.StripeSecretKey, cfg.StripeWebhookSecret, nil)
}

// NewStripeGatewayWithBackends allows pointing the client at another API base.
func NewStripeGatewayWithBackends(secretKey, webhookSecret string, backends *stripe.Backends) *StripeGateway {
	secretKey = strings.TrimSpace(secretKey)
	if secretKey == "" {
		log := logger.GetLogger()
		log.Warn().Msg("STRIPE_SECRET_KEY is empty, billing calls will fail")
	}
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{
		api:           api,
		webhookSecret: webhookSecret,
		configured:    secretKey != "",
	}
}

func (g *StripeGateway) ensureConfigured(ctx context.Context) error {
	if g.configured {
		return nil
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
		"billing is not configured", nil, "5b7d9f1a-3c5e-4a7b-9d1f-3a5c7e9b1d4f")
}

// CreateCustomer registers the user at the processor and returns the customer id.
func (g *StripeGateway) CreateCustomer(ctx context.Context, input subscription.CustomerInput) (string, error) {
	if err := g.ensureConfigured(ctx); err != nil {
		return "", err
	}
	params := &stripe.CustomerParams{
		Email: stripe.String(input.Email),
	}
	if input.Name != "" {
		params.Name = stripe.String(input.Name)
	}
	params.Context = ctx
	params.AddMetadata("user_public_id", input.UserPublicID)

	customer, err := g.api.Customers.New(params)
	if err != nil {
		return "", stripeError(ctx, err, "failed to create customer", "8a0c2e4f-6b8d-4f1a-a3c5-e7091b3d5f7a")
	}
	return customer.ID, nil
}

// CreateCheckoutSession opens a subscription-mode hosted checkout.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, input subscription.CheckoutInput) (*subscription.CheckoutSession, error) {
	if err := g.ensureConfigured(ctx); err != nil {
		return nil, err
	}
	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(input.CustomerID),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:        stripe.String(input.SuccessURL),
		CancelURL:         stripe.String(input.CancelURL),
		ClientReferenceID: stripe.String(input.ClientReferenceID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(input.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, stripeError(ctx, err, "failed to create checkout session", "1c3e5a7b-9d0f-4b2c-8e4a-6c8e0a2b4d6f")
	}
	metrics.RecordCheckoutSession(string(input.Plan))
	return &subscription.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// CreatePortalSession returns a billing-portal URL for customerID.
func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if err := g.ensureConfigured(ctx); err != nil {
		return "", err
	}
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	session, err := g.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", stripeError(ctx, err, "failed to create billing portal session", "3e5a7c9b-1d2f-4c4e-9a6c-8e0a2c4e6a8b")
	}
	return session.URL, nil
}

// ConstructEvent verifies the Stripe-Signature header and decodes the event
// object. Subscription events carry the subscription; invoice events carry
// the invoice and its subscription id.
func (g *StripeGateway) ConstructEvent(payload []byte, signatureHeader string) (*subscription.Event, error) {
	ctx := context.Background()
	if g.webhookSecret == "" {
		metrics.RecordWebhook("unconfigured")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
			"webhook secret is not configured", nil, "7a9c1e3b-5d6f-4e8a-b0c2-4e6a8c0e2b4d")
	}

	raw, err := webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
	if err != nil {
		metrics.RecordWebhook("invalid_signature")
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
			"invalid webhook signature", err, "9c1e3a5d-7f8b-4a0c-a2e4-6c8e0a2c4e6b")
	}

	event := &subscription.Event{ID: raw.ID, Type: raw.Type}
	if raw.Data == nil || len(raw.Data.Raw) == 0 {
		metrics.RecordWebhook("accepted")
		return event, nil
	}

	switch {
	case strings.HasPrefix(raw.Type, "customer.subscription."):
		var sub stripe.Subscription
		if err := json.Unmarshal(raw.Data.Raw, &sub); err != nil {
			metrics.RecordWebhook("decode_failed")
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
				"failed to decode subscription event", err, "0d2f4b6c-8a9e-4c1d-b3f5-7d9f1b3d5f7c")
		}
		fillFromSubscription(event, &sub)
	case strings.HasPrefix(raw.Type, "invoice."):
		var invoice stripe.Invoice
		if err := json.Unmarshal(raw.Data.Raw, &invoice); err != nil {
			metrics.RecordWebhook("decode_failed")
			return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeValidation,
				"failed to decode invoice event", err, "2f4b6d8e-0c1a-4e3f-85b7-9f1b3d5f7b9e")
		}
		if invoice.Customer != nil {
			event.CustomerID = invoice.Customer.ID
		}
		if invoice.Subscription != nil {
			event.SubscriptionID = invoice.Subscription.ID
		}
	}

	metrics.RecordWebhook("accepted")
	return event, nil
}

func fillFromSubscription(event *subscription.Event, sub *stripe.Subscription) {
	event.SubscriptionID = sub.ID
	event.ExternalStatus = string(sub.Status)
	if sub.Customer != nil {
		event.CustomerID = sub.Customer.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		event.CurrentPeriodEnd = &end
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item != nil && item.Price != nil && item.Price.ID != "" {
				event.PriceID = item.Price.ID
				break
			}
		}
	}
}

func stripeError(ctx context.Context, err error, message, uuid string) error {
	fields := map[string]any{}
	if stripeErr, ok := err.(*stripe.Error); ok {
		fields["stripe_code"] = string(stripeErr.Code)
		fields["stripe_status"] = stripeErr.HTTPStatusCode
		if stripeErr.Msg != "" {
			message = message + ": " + stripeErr.Msg
		}
	}
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
		message, err, uuid, fields)
}
