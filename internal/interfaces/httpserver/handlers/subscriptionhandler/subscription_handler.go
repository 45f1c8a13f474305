package subscriptionhandler

import (
	"context"
	"strings"

	"sovereign-chat/internal/domain/subscription"
	"sovereign-chat/internal/domain/user"
	subscriptionrequests "sovereign-chat/internal/interfaces/httpserver/requests/subscription"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	subscriptionresponses "sovereign-chat/internal/interfaces/httpserver/responses/subscription"
	"sovereign-chat/internal/utils/platformerrors"
)

// SubscriptionHandler handles the current user and billing requests.
type SubscriptionHandler struct {
	subscriptionService *subscription.Service
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptionService *subscription.Service) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// Me returns the user with their subscription.
func (h *SubscriptionHandler) Me(ctx context.Context, u *user.User) (*subscriptionresponses.MeResponse, error) {
	sub, err := h.GetSubscription(ctx, u)
	if err != nil {
		return nil, err
	}
	return &subscriptionresponses.MeResponse{
		User:         subscriptionresponses.NewUserResponse(u),
		Subscription: sub,
	}, nil
}

// GetSubscription returns the user's subscription and what it grants.
func (h *SubscriptionHandler) GetSubscription(ctx context.Context, u *user.User) (*subscriptionresponses.SubscriptionResponse, error) {
	sub, err := h.subscriptionService.GetForUser(ctx, u)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to load subscription")
	}
	ent, err := h.subscriptionService.Entitlements(ctx, u)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to load entitlements")
	}
	return subscriptionresponses.NewSubscriptionResponse(sub, ent), nil
}

// CreateCheckout starts a checkout session for the requested plan.
func (h *SubscriptionHandler) CreateCheckout(ctx context.Context, u *user.User, req subscriptionrequests.CreateSubscriptionRequest) (*responses.URLResponse, error) {
	plan := subscription.Plan(strings.ToUpper(strings.TrimSpace(req.Plan)))
	url, err := h.subscriptionService.CreateCheckout(ctx, u, plan)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to create checkout session")
	}
	return &responses.URLResponse{URL: url}, nil
}

// CreatePortal opens a billing portal session.
func (h *SubscriptionHandler) CreatePortal(ctx context.Context, u *user.User) (*responses.URLResponse, error) {
	url, err := h.subscriptionService.CreatePortal(ctx, u)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to create portal session")
	}
	return &responses.URLResponse{URL: url}, nil
}

// HandleWebhook verifies and applies a payment-processor event.
func (h *SubscriptionHandler) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return h.subscriptionService.HandleWebhook(ctx, payload, signature)
}
