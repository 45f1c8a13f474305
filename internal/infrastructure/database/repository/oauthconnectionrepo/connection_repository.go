package oauthconnectionrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sovereign-chat/internal/domain/oauthconnection"
	"sovereign-chat/internal/infrastructure/database/dbschema"
	"sovereign-chat/internal/infrastructure/database/transaction"
	"sovereign-chat/internal/utils/crypto"
	"sovereign-chat/internal/utils/platformerrors"
)

var errCipherUnavailable = errors.New("token encryption key is not configured")

// OAuthConnectionGormRepository stores connections with tokens sealed by cipher.
type OAuthConnectionGormRepository struct {
	db     *transaction.Database
	cipher *crypto.TokenCipher
}

var _ oauthconnection.Repository = (*OAuthConnectionGormRepository)(nil)

// NewOAuthConnectionGormRepository builds the repository. A nil cipher makes
// every token read or write fail.
func NewOAuthConnectionGormRepository(db *transaction.Database, cipher *crypto.TokenCipher) oauthconnection.Repository {
	return &OAuthConnectionGormRepository{db: db, cipher: cipher}
}

// Upsert implements oauthconnection.Repository.
func (repo *OAuthConnectionGormRepository) Upsert(ctx context.Context, conn *oauthconnection.Connection) (*oauthconnection.Connection, error) {
	model, err := repo.seal(conn)
	if err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to encrypt oauth tokens", "1d9e7c44-80b2-4f3a-9c61-2a8e5b7f0d13")
	}

	if err := repo.getDB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "provider"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"external_account_id",
				"external_username",
				"access_token",
				"refresh_token",
				"scopes",
				"token_expires_at",
				"updated_at",
			}),
		}).
		Create(model).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to upsert oauth connection", "2e0f8d55-91c3-4a4b-8d72-3b9f6c8a1e24")
	}

	var persisted dbschema.OAuthConnection
	if err := repo.getDB(ctx).
		Where("user_id = ? AND provider = ?", conn.UserID, conn.Provider).
		First(&persisted).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to reload oauth connection", "3f1a9e66-a2d4-4b5c-9e83-4c0a7d9b2f35")
	}
	return repo.open(ctx, &persisted)
}

// FindByUserID implements oauthconnection.Repository.
func (repo *OAuthConnectionGormRepository) FindByUserID(ctx context.Context, userID uint) ([]*oauthconnection.Connection, error) {
	var rows []dbschema.OAuthConnection
	if err := repo.getDB(ctx).Where("user_id = ?", userID).Order("provider ASC").Find(&rows).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to list oauth connections", "4a2b0f77-b3e5-4c6d-8f94-5d1b8e0c3a46")
	}
	result := make([]*oauthconnection.Connection, 0, len(rows))
	for i := range rows {
		conn, err := repo.open(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, conn)
	}
	return result, nil
}

// FindByPublicID implements oauthconnection.Repository.
func (repo *OAuthConnectionGormRepository) FindByPublicID(ctx context.Context, publicID string) (*oauthconnection.Connection, error) {
	var row dbschema.OAuthConnection
	if err := repo.getDB(ctx).Where("public_id = ?", publicID).First(&row).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find oauth connection", "5b3c1a88-c4f6-4d7e-9a05-6e2c9f1d4b57")
	}
	return repo.open(ctx, &row)
}

// Delete implements oauthconnection.Repository.
func (repo *OAuthConnectionGormRepository) Delete(ctx context.Context, id uint) error {
	if err := repo.getDB(ctx).Where("id = ?", id).Delete(&dbschema.OAuthConnection{}).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to delete oauth connection", "6c4d2b99-d507-4e8f-8b16-7f3d0a2e5c68")
	}
	return nil
}

func (repo *OAuthConnectionGormRepository) seal(conn *oauthconnection.Connection) (*dbschema.OAuthConnection, error) {
	if repo.cipher == nil {
		return nil, errCipherUnavailable
	}
	model := dbschema.NewSchemaOAuthConnection(conn)
	access, err := repo.cipher.Encrypt(conn.AccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := repo.cipher.Encrypt(conn.RefreshToken)
	if err != nil {
		return nil, err
	}
	model.AccessToken = access
	model.RefreshToken = refresh
	return model, nil
}

func (repo *OAuthConnectionGormRepository) open(ctx context.Context, row *dbschema.OAuthConnection) (*oauthconnection.Connection, error) {
	if repo.cipher == nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, errCipherUnavailable, "failed to decrypt oauth tokens", "7d5e3caa-e618-4f90-9c27-803e1b3f6d79")
	}
	conn := row.EtoD()
	access, err := repo.cipher.Decrypt(row.AccessToken)
	if err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to decrypt access token", "8e6f4dbb-f729-4a01-8d38-914f2c4a7e8a")
	}
	refresh, err := repo.cipher.Decrypt(row.RefreshToken)
	if err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to decrypt refresh token", "9f705ecc-083a-4b12-9e49-a2503d5b8f9b")
	}
	conn.AccessToken = access
	conn.RefreshToken = refresh
	return conn, nil
}

func (repo *OAuthConnectionGormRepository) getDB(ctx context.Context) *gorm.DB {
	return repo.db.GetTx(ctx)
}
