package subscriptionrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sovereign-chat/internal/domain/subscription"
	"sovereign-chat/internal/infrastructure/database/dbschema"
	"sovereign-chat/internal/infrastructure/database/transaction"
	"sovereign-chat/internal/utils/platformerrors"
)

// SubscriptionGormRepository implements subscription.Repository using GORM
type SubscriptionGormRepository struct {
	db *transaction.Database
}

var _ subscription.Repository = (*SubscriptionGormRepository)(nil)

// NewSubscriptionGormRepository creates a new subscription repository
func NewSubscriptionGormRepository(db *transaction.Database) subscription.Repository {
	return &SubscriptionGormRepository{db: db}
}

// CreateIfAbsent implements subscription.Repository with ON CONFLICT (user_id) DO NOTHING.
func (repo *SubscriptionGormRepository) CreateIfAbsent(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	model := dbschema.NewSchemaSubscription(sub)
	if err := repo.getDB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(model).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to create subscription", "1d2e3f4a-5b6c-4d7e-8f9a-0b1c2d3e4f5a")
	}
	return repo.FindByUserID(ctx, sub.UserID)
}

// FindByUserID implements subscription.Repository.
func (repo *SubscriptionGormRepository) FindByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	var row dbschema.Subscription
	if err := repo.getDB(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find subscription", "2e3f4a5b-6c7d-4e8f-9a0b-1c2d3e4f5a6b")
	}
	return row.EtoD(), nil
}

// FindByCustomerID implements subscription.Repository.
func (repo *SubscriptionGormRepository) FindByCustomerID(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	var row dbschema.Subscription
	if err := repo.getDB(ctx).Where("external_customer_id = ?", customerID).First(&row).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find subscription by customer", "3f4a5b6c-7d8e-4f9a-0b1c-2d3e4f5a6b7c")
	}
	return row.EtoD(), nil
}

// Update implements subscription.Repository.
func (repo *SubscriptionGormRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	model := dbschema.NewSchemaSubscription(sub)
	if err := repo.getDB(ctx).
		Model(&dbschema.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(map[string]any{
			"plan":                     model.Plan,
			"status":                   model.Status,
			"external_customer_id":     model.ExternalCustomerID,
			"external_subscription_id": model.ExternalSubscriptionID,
			"external_price_id":        model.ExternalPriceID,
			"current_period_end":       model.CurrentPeriodEnd,
		}).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to update subscription", "4a5b6c7d-8e9f-4a0b-1c2d-3e4f5a6b7c8e")
	}
	return nil
}

// getDB returns the database connection, checking for transaction context
func (repo *SubscriptionGormRepository) getDB(ctx context.Context) *gorm.DB {
	return repo.db.GetTx(ctx)
}
