package dbschema

import (
	"time"

	"sovereign-chat/internal/domain/subscription"
	"sovereign-chat/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Subscription{})
}

// Subscription is the billing row of a user; at most one per user.
type Subscription struct {
	BaseModel
	PublicID               string     `gorm:"type:varchar(32);not null;uniqueIndex:ux_subscriptions_public_id"`
	UserID                 uint       `gorm:"not null;uniqueIndex:ux_subscriptions_user_id"`
	Plan                   string     `gorm:"type:varchar(32);not null;default:'FREE'"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'ACTIVE'"`
	ExternalCustomerID     *string    `gorm:"type:varchar(255);uniqueIndex:ux_subscriptions_external_customer_id"`
	ExternalSubscriptionID *string    `gorm:"type:varchar(255)"`
	ExternalPriceID        *string    `gorm:"type:varchar(255)"`
	CurrentPeriodEnd       *time.Time
}

// NewSchemaSubscription converts a domain subscription into a schema instance.
func NewSchemaSubscription(s *subscription.Subscription) *Subscription {
	return &Subscription{
		BaseModel: BaseModel{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		},
		PublicID:               s.PublicID,
		UserID:                 s.UserID,
		Plan:                   string(s.Plan),
		Status:                 string(s.Status),
		ExternalCustomerID:     s.ExternalCustomerID,
		ExternalSubscriptionID: s.ExternalSubscriptionID,
		ExternalPriceID:        s.ExternalPriceID,
		CurrentPeriodEnd:       s.CurrentPeriodEnd,
	}
}

// EtoD converts a schema subscription back to the domain representation.
func (s *Subscription) EtoD() *subscription.Subscription {
	return &subscription.Subscription{
		ID:                     s.ID,
		PublicID:               s.PublicID,
		UserID:                 s.UserID,
		Plan:                   subscription.Plan(s.Plan),
		Status:                 subscription.Status(s.Status),
		ExternalCustomerID:     s.ExternalCustomerID,
		ExternalSubscriptionID: s.ExternalSubscriptionID,
		ExternalPriceID:        s.ExternalPriceID,
		CurrentPeriodEnd:       s.CurrentPeriodEnd,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
}
