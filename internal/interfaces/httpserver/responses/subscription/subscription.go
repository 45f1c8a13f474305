package subscriptionresponses

import (
	"time"

	"sovereign-chat/internal/domain/subscription"
	"sovereign-chat/internal/domain/user"
)

// SubscriptionResponse is the API shape of a subscription. External
// payment-processor ids are not exposed.
type SubscriptionResponse struct {
	ID               string     `json:"id"`
	Object           string     `json:"object"`
	Plan             string     `json:"plan"`
	EffectivePlan    string     `json:"effective_plan"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	HasBillingPortal bool       `json:"has_billing_portal"`
	MonthlyMessages  int        `json:"monthly_messages"`
	AllowedModels    []string   `json:"allowed_models,omitempty"`
	Unlimited        bool       `json:"unlimited"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// UserResponse is the API shape of the current user.
type UserResponse struct {
	ID        string    `json:"id"`
	Object    string    `json:"object"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Sovereign bool      `json:"sovereign"`
	CreatedAt time.Time `json:"created_at"`
}

// MeResponse is the current user with their subscription.
type MeResponse struct {
	User         UserResponse          `json:"user"`
	Subscription *SubscriptionResponse `json:"subscription"`
}

// NewSubscriptionResponse creates a response from a subscription and the
// entitlements it currently grants.
func NewSubscriptionResponse(sub *subscription.Subscription, ent subscription.Entitlements) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:               sub.PublicID,
		Object:           "subscription",
		Plan:             string(sub.Plan),
		EffectivePlan:    string(ent.Plan),
		Status:           string(sub.Status),
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
		HasBillingPortal: sub.CustomerID() != "",
		MonthlyMessages:  ent.MonthlyMessages,
		AllowedModels:    ent.AllowedModels,
		Unlimited:        ent.Unlimited,
		UpdatedAt:        sub.UpdatedAt,
	}
}

// NewUserResponse creates a response from a user.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.PublicID,
		Object:    "user",
		Email:     u.Email,
		Name:      u.Name,
		Sovereign: u.Sovereign,
		CreatedAt: u.CreatedAt,
	}
}
