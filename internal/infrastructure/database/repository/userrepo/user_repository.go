package userrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/infrastructure/database/dbschema"
	"sovereign-chat/internal/infrastructure/database/transaction"
	"sovereign-chat/internal/utils/platformerrors"
)

type UserGormRepository struct {
	db *transaction.Database
}

var _ user.Repository = (*UserGormRepository)(nil)

func NewUserGormRepository(db *transaction.Database) user.Repository {
	return &UserGormRepository{db: db}
}

func (repo *UserGormRepository) FindByIdentityID(ctx context.Context, identityID string) (*user.User, error) {
	var entity dbschema.User
	if err := repo.getDB(ctx).Where("identity_id = ?", identityID).First(&entity).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find user by identity id", "b2a7c2d5-53b2-44a3-8f8f-927f94e9a4db")
	}
	return entity.EtoD(), nil
}

func (repo *UserGormRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	var entity dbschema.User
	if err := repo.getDB(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find user by ID", "a9d3f8e4-21c7-4f5b-9a2e-6d8f9e1a2b3c")
	}
	return entity.EtoD(), nil
}

// GetOrCreate inserts with ON CONFLICT (identity_id) DO NOTHING and reloads
// the row, so concurrent first requests converge on a single user.
func (repo *UserGormRepository) GetOrCreate(ctx context.Context, usr *user.User) (*user.User, bool, error) {
	schemaUser := dbschema.NewSchemaUser(usr)

	result := repo.getDB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity_id"}},
			DoNothing: true,
		}).
		Create(schemaUser)
	if result.Error != nil {
		return nil, false, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, result.Error, "failed to insert user", "3b31d2bd-3260-4233-b0c8-09909fa0f154")
	}

	// Retrieve the persisted user to capture ID and timestamps
	var persisted dbschema.User
	if err := repo.getDB(ctx).
		Where("identity_id = ?", usr.IdentityID).
		First(&persisted).Error; err != nil {
		return nil, false, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to reload user", "f71f98cb-3154-4ad2-9076-7e58628a4098")
	}
	return persisted.EtoD(), result.RowsAffected == 1, nil
}

func (repo *UserGormRepository) UpdateProfile(ctx context.Context, id uint, email, name string) error {
	updates := map[string]any{}
	if email != "" {
		updates["email"] = email
	}
	if name != "" {
		updates["name"] = name
	}
	if len(updates) == 0 {
		return nil
	}
	if err := repo.getDB(ctx).Model(&dbschema.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to update user profile", "0c6e3a1f-8b2d-4f7e-9a5c-2d4b6f8a1c3e")
	}
	return nil
}

// getDB returns the database connection, checking for transaction context
func (repo *UserGormRepository) getDB(ctx context.Context) *gorm.DB {
	return repo.db.GetTx(ctx)
}
