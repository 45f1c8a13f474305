package oauthconnectionrepo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovereign-chat/internal/domain/oauthconnection"
	"sovereign-chat/internal/infrastructure/database/databasetest"
	"sovereign-chat/internal/infrastructure/database/dbschema"
	"sovereign-chat/internal/infrastructure/database/repository/oauthconnectionrepo"
	"sovereign-chat/internal/utils/crypto"
)

func TestOAuthConnectionRepository_UpsertEncryptsTokens(t *testing.T) {
	ctx := context.Background()
	db := databasetest.NewSQLite(t)
	cipher, err := crypto.NewTokenCipher("test-key")
	require.NoError(t, err)
	repo := oauthconnectionrepo.NewOAuthConnectionGormRepository(db, cipher)

	stored, err := repo.Upsert(ctx, &oauthconnection.Connection{
		PublicID:          "conn_first",
		UserID:            1,
		Provider:          "github",
		ExternalAccountID: "42",
		ExternalUsername:  "octocat",
		AccessToken:       "gho_secret",
		RefreshToken:      "ghr_secret",
		Scopes:            []string{"read:user"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gho_secret", stored.AccessToken)
	assert.Equal(t, []string{"read:user"}, stored.Scopes)

	var raw dbschema.OAuthConnection
	require.NoError(t, db.GetTx(ctx).Where("public_id = ?", "conn_first").First(&raw).Error)
	assert.NotEqual(t, "gho_secret", raw.AccessToken)
	assert.NotEmpty(t, raw.AccessToken)
}

func TestOAuthConnectionRepository_UpsertReplacesPerProvider(t *testing.T) {
	ctx := context.Background()
	cipher, err := crypto.NewTokenCipher("test-key")
	require.NoError(t, err)
	repo := oauthconnectionrepo.NewOAuthConnectionGormRepository(databasetest.NewSQLite(t), cipher)

	_, err = repo.Upsert(ctx, &oauthconnection.Connection{PublicID: "conn_first", UserID: 1, Provider: "github", ExternalAccountID: "42", AccessToken: "old"})
	require.NoError(t, err)
	second, err := repo.Upsert(ctx, &oauthconnection.Connection{PublicID: "conn_second", UserID: 1, Provider: "github", ExternalAccountID: "42", AccessToken: "new"})
	require.NoError(t, err)

	assert.Equal(t, "conn_first", second.PublicID)
	assert.Equal(t, "new", second.AccessToken)

	list, err := repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, second.ID))
	list, err = repo.FindByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOAuthConnectionRepository_NoCipher(t *testing.T) {
	repo := oauthconnectionrepo.NewOAuthConnectionGormRepository(databasetest.NewSQLite(t), nil)
	_, err := repo.Upsert(context.Background(), &oauthconnection.Connection{PublicID: "conn_x", UserID: 1, Provider: "github", AccessToken: "t"})
	assert.Error(t, err)
}
