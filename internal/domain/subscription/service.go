package subscription

import (
	"context"
	"errors"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/infrastructure/logger"
	"sovereign-chat/internal/utils/idgen"
	"sovereign-chat/internal/utils/platformerrors"
)

// Config carries the billing settings taken from the process configuration.
type Config struct {
	UpgradePolicy   string
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
	Catalog         *config.PlanCatalog
}

// Service owns the subscription lifecycle.
type Service struct {
	repo    Repository
	gateway PaymentGateway
	cfg     Config
}

// NewService constructs a Service.
func NewService(repo Repository, gateway PaymentGateway, cfg Config) *Service {
	if cfg.Catalog == nil {
		cfg.Catalog = config.DefaultPlanCatalog()
	}
	if cfg.UpgradePolicy == "" {
		cfg.UpgradePolicy = config.UpgradePolicyFreeOnly
	}
	return &Service{repo: repo, gateway: gateway, cfg: cfg}
}

// EnsureForUser creates the user's subscription when missing: FREE/ACTIVE,
// or SOVEREIGN/ACTIVE for the sovereign user. An existing sovereign row
// that drifted is restored, and a SOVEREIGN row held by a user who is no
// longer sovereign is reset to FREE/ACTIVE.
func (s *Service) EnsureForUser(ctx context.Context, u *user.User) error {
	plan := PlanFree
	if u.Sovereign {
		plan = PlanSovereign
	}

	publicID, err := idgen.GenerateSecureID(idgen.PrefixSubscription, idgen.DefaultLength)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate subscription id", err, "c7d1e4a9-2b3f-4e8a-9c6d-0f1a2b3c4d5e")
	}

	stored, err := s.repo.CreateIfAbsent(ctx, &Subscription{
		PublicID: publicID,
		UserID:   u.ID,
		Plan:     plan,
		Status:   StatusActive,
	})
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to ensure subscription")
	}

	if u.Sovereign && (stored.Plan != PlanSovereign || stored.Status != StatusActive) {
		stored.Plan = PlanSovereign
		stored.Status = StatusActive
		if err := s.repo.Update(ctx, stored); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to restore sovereign subscription")
		}
		return nil
	}
	return s.demoteRevokedSovereign(ctx, u, stored)
}

func (s *Service) demoteRevokedSovereign(ctx context.Context, u *user.User, sub *Subscription) error {
	if u.Sovereign || sub.Plan != PlanSovereign {
		return nil
	}
	sub.Plan = PlanFree
	sub.Status = StatusActive
	if err := s.repo.Update(ctx, sub); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to revoke sovereign subscription")
	}
	log := logger.GetLogger()
	log.Info().Uint("user_id", u.ID).Msg("sovereign subscription revoked")
	return nil
}

// GetForUser returns the user's subscription, creating it when absent.
func (s *Service) GetForUser(ctx context.Context, u *user.User) (*Subscription, error) {
	sub, err := s.repo.FindByUserID(ctx, u.ID)
	if err == nil {
		if err := s.demoteRevokedSovereign(ctx, u, sub); err != nil {
			return nil, err
		}
		return sub, nil
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load subscription")
	}
	if err := s.EnsureForUser(ctx, u); err != nil {
		return nil, err
	}
	sub, err = s.repo.FindByUserID(ctx, u.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load subscription")
	}
	return sub, nil
}

// Entitlements returns what the user's effective plan grants.
func (s *Service) Entitlements(ctx context.Context, u *user.User) (Entitlements, error) {
	if u.Sovereign {
		return entitlementsFor(s.cfg.Catalog, PlanSovereign), nil
	}
	sub, err := s.GetForUser(ctx, u)
	if err != nil {
		return Entitlements{}, err
	}
	return entitlementsFor(s.cfg.Catalog, EffectivePlan(sub, false)), nil
}

// CreateCheckout starts a checkout for plan and returns the hosted checkout URL.
// The subscription is set to INCOMPLETE until the processor confirms payment.
func (s *Service) CreateCheckout(ctx context.Context, u *user.User, plan Plan) (string, error) {
	if u.Sovereign {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"sovereign access does not require a subscription", nil, "0d4c2b7a-8e1f-4a6b-b3c5-7d9e1f2a4b6c")
	}

	def, ok := s.cfg.Catalog.Plan(string(plan))
	if !ok || def.PriceID == "" {
		return "", platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"plan is not available for purchase", nil, "3a9f6e21-4b7c-4d8e-a1f2-6c3b5d7e9f01", map[string]any{"plan": plan})
	}

	sub, err := s.GetForUser(ctx, u)
	if err != nil {
		return "", err
	}
	if err := s.checkUpgradeAllowed(ctx, sub, Plan(def.Name)); err != nil {
		return "", err
	}

	customerID := sub.CustomerID()
	if customerID == "" {
		customerID, err = s.gateway.CreateCustomer(ctx, CustomerInput{Email: u.Email, Name: u.Name, UserPublicID: u.PublicID})
		if err != nil {
			return "", platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerDomain, err, "failed to create billing customer", "6e1b3d5f-7a9c-4b2d-8e0f-1a3c5e7b9d2f")
		}
		sub.ExternalCustomerID = &customerID
		if err := s.repo.Update(ctx, sub); err != nil {
			return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store billing customer")
		}
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutInput{
		Plan:              Plan(def.Name),
		CustomerID:        customerID,
		PriceID:           def.PriceID,
		SuccessURL:        s.cfg.SuccessURL,
		CancelURL:         s.cfg.CancelURL,
		ClientReferenceID: u.PublicID,
	})
	if err != nil {
		return "", platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerDomain, err, "failed to create checkout session", "9b2e4f6a-1c3d-4e5f-8a7b-2d4f6a8c0e1b")
	}

	priceID := def.PriceID
	sub.Plan = Plan(def.Name)
	sub.Status = StatusIncomplete
	sub.ExternalPriceID = &priceID
	if err := s.repo.Update(ctx, sub); err != nil {
		return "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update subscription")
	}

	log := logger.GetLogger()
	log.Info().
		Uint("user_id", u.ID).
		Str("plan", string(sub.Plan)).
		Str("checkout_session_id", session.ID).
		Msg("checkout session created")
	return session.URL, nil
}

func (s *Service) checkUpgradeAllowed(ctx context.Context, sub *Subscription, plan Plan) error {
	if sub.Plan == PlanSovereign {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"sovereign access does not require a subscription", nil, "0d4c2b7a-8e1f-4a6b-b3c5-7d9e1f2a4b6c")
	}
	if !sub.IsPaidActive() {
		return nil
	}
	if s.cfg.UpgradePolicy == config.UpgradePolicyAllowPlanChange && sub.Plan != plan {
		return nil
	}
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
		"an active subscription already exists", nil, "4c8d2e6f-0a1b-4c3d-9e5f-7a8b0c2d4e6f",
		map[string]any{"current_plan": sub.Plan, "requested_plan": plan})
}

// CreatePortal returns a billing-portal URL for the user's customer.
func (s *Service) CreatePortal(ctx context.Context, u *user.User) (string, error) {
	sub, err := s.GetForUser(ctx, u)
	if err != nil {
		return "", err
	}
	customerID := sub.CustomerID()
	if customerID == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"no billing account exists for this user", nil, "8f0a2c4e-6b1d-4f3a-9c5e-1b3d5f7a9c0e")
	}
	url, err := s.gateway.CreatePortalSession(ctx, customerID, s.cfg.PortalReturnURL)
	if err != nil {
		return "", platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerDomain, err, "failed to create billing portal session", "2e4a6c8f-0b1d-4e3f-a5c7-9e1b3d5f7a2c")
	}
	return url, nil
}

// HandleWebhook verifies and applies a payment webhook. Nothing is read or
// written before the signature is verified. Unhandled event types and
// unknown customers are acknowledged without changes.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	log := logger.GetLogger()

	event, err := s.gateway.ConstructEvent(payload, signatureHeader)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "invalid webhook")
	}

	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted,
		EventInvoicePaymentSucceeded, EventInvoicePaymentFailed:
	default:
		log.Debug().Str("event_id", event.ID).Str("event_type", event.Type).Msg("ignoring unhandled webhook event")
		return nil
	}

	if event.CustomerID == "" {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"webhook event has no customer", nil, "7d9f1b3e-5a2c-4e6f-8b0d-3f5a7c9e1b4d", map[string]any{"event_id": event.ID})
	}

	sub, err := s.repo.FindByCustomerID(ctx, event.CustomerID)
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			log.Warn().Str("event_id", event.ID).Str("event_type", event.Type).Str("customer_id", event.CustomerID).Msg("webhook for unknown customer ignored")
			return nil
		}
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load subscription for webhook")
	}

	if err := s.applyEvent(sub, event); err != nil {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			err.Error(), err, "1f3b5d7a-9c2e-4a6b-8d0f-5b7d9f1a3c6e", map[string]any{"event_id": event.ID})
	}
	if err := s.repo.Update(ctx, sub); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to apply webhook")
	}

	log.Info().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Uint("user_id", sub.UserID).
		Str("plan", string(sub.Plan)).
		Str("status", string(sub.Status)).
		Msg("subscription updated from webhook")
	return nil
}

func (s *Service) applyEvent(sub *Subscription, event *Event) error {
	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		status, ok := MapExternalStatus(event.ExternalStatus)
		if !ok {
			return errors.New("unknown subscription status " + event.ExternalStatus)
		}
		sub.Status = status
		if plan, ok := s.cfg.Catalog.PlanForPrice(event.PriceID); ok {
			sub.Plan = Plan(plan)
		}
		if event.PriceID != "" {
			priceID := event.PriceID
			sub.ExternalPriceID = &priceID
		}
		if event.SubscriptionID != "" {
			subscriptionID := event.SubscriptionID
			sub.ExternalSubscriptionID = &subscriptionID
		}
		if event.CurrentPeriodEnd != nil {
			sub.CurrentPeriodEnd = event.CurrentPeriodEnd
		}
	case EventSubscriptionDeleted:
		sub.Status = StatusCanceled
	case EventInvoicePaymentSucceeded:
		sub.Status = StatusActive
	case EventInvoicePaymentFailed:
		sub.Status = StatusPastDue
	}
	return nil
}
