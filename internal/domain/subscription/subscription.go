// Package subscription models a user's billing plan and its payment-processor lifecycle.
package subscription

import (
	"context"
	"time"

	"sovereign-chat/internal/config"
)

// Plan is a billing plan name.
type Plan string

const (
	PlanFree       Plan = config.PlanFree
	PlanPro        Plan = config.PlanPro
	PlanEnterprise Plan = config.PlanEnterprise
	PlanSovereign  Plan = config.PlanSovereign
)

// Status is the subscription state. Transitions are driven by payment webhooks.
type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusIncomplete Status = "INCOMPLETE"
	StatusPastDue    Status = "PAST_DUE"
	StatusCanceled   Status = "CANCELED"
)

// Subscription is the single billing record of a user.
type Subscription struct {
	ID                     uint
	PublicID               string
	UserID                 uint
	Plan                   Plan
	Status                 Status
	ExternalCustomerID     *string
	ExternalSubscriptionID *string
	ExternalPriceID        *string
	CurrentPeriodEnd       *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// OwnerID implements authz.Resource.
func (s *Subscription) OwnerID() uint {
	return s.UserID
}

// IsPaidActive reports an active subscription on a plan other than FREE.
func (s *Subscription) IsPaidActive() bool {
	return s.Status == StatusActive && s.Plan != PlanFree
}

// CustomerID returns the external customer id or "".
func (s *Subscription) CustomerID() string {
	if s.ExternalCustomerID == nil {
		return ""
	}
	return *s.ExternalCustomerID
}

// Repository defines storage operations for subscriptions.
type Repository interface {
	// CreateIfAbsent inserts sub unless the user already has one and returns the stored row.
	CreateIfAbsent(ctx context.Context, sub *Subscription) (*Subscription, error)
	FindByUserID(ctx context.Context, userID uint) (*Subscription, error)
	FindByCustomerID(ctx context.Context, customerID string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
}

// Webhook event types handled by HandleWebhook.
const (
	EventSubscriptionCreated     = "customer.subscription.created"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
)

// CustomerInput describes the customer created at the payment processor.
type CustomerInput struct {
	Email        string
	Name         string
	UserPublicID string
}

// CheckoutInput describes a subscription-mode checkout session.
type CheckoutInput struct {
	Plan              Plan
	CustomerID        string
	PriceID           string
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
}

// CheckoutSession is the created checkout session.
type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified and decoded payment webhook event.
type Event struct {
	ID               string
	Type             string
	CustomerID       string
	SubscriptionID   string
	PriceID          string
	ExternalStatus   string
	CurrentPeriodEnd *time.Time
}

// PaymentGateway is the payment-processor integration.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (string, error)
	CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	// ConstructEvent verifies the signature header before decoding payload.
	// Signature and decode failures are VALIDATION errors.
	ConstructEvent(payload []byte, signatureHeader string) (*Event, error)
}

// MapExternalStatus maps a payment-processor subscription status to Status.
func MapExternalStatus(external string) (Status, bool) {
	switch external {
	case "active", "trialing":
		return StatusActive, true
	case "incomplete", "incomplete_expired":
		return StatusIncomplete, true
	case "past_due", "unpaid":
		return StatusPastDue, true
	case "canceled":
		return StatusCanceled, true
	default:
		return "", false
	}
}
