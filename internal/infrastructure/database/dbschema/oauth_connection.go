package dbschema

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/schema"

	"sovereign-chat/internal/domain/oauthconnection"
	"sovereign-chat/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(OAuthConnection{})
}

// OAuthConnection stores a linked account. AccessToken and RefreshToken hold
// ciphertext; the repository encrypts and decrypts them.
type OAuthConnection struct {
	BaseModel
	PublicID          string         `gorm:"type:varchar(32);not null;uniqueIndex:ux_oauth_connections_public_id"`
	UserID            uint           `gorm:"not null;uniqueIndex:ux_oauth_connections_user_provider,priority:1"`
	Provider          string         `gorm:"type:varchar(64);not null;uniqueIndex:ux_oauth_connections_user_provider,priority:2"`
	ExternalAccountID string         `gorm:"type:varchar(255);not null"`
	ExternalUsername  string         `gorm:"type:varchar(255);not null;default:''"`
	AccessToken       string         `gorm:"type:text;not null;default:''"`
	RefreshToken      string         `gorm:"type:text;not null;default:''"`
	Scopes            datatypes.JSON `gorm:"type:jsonb"`
	TokenExpiresAt    *time.Time
}

// TableName keeps the table prefix while avoiding the default "o_auth_connections".
func (OAuthConnection) TableName(namer schema.Namer) string {
	return namer.TableName("OauthConnection")
}

// NewSchemaOAuthConnection converts a domain connection into a schema
// instance. Tokens are copied as given.
func NewSchemaOAuthConnection(c *oauthconnection.Connection) *OAuthConnection {
	var scopes datatypes.JSON
	if len(c.Scopes) > 0 {
		if raw, err := json.Marshal(c.Scopes); err == nil {
			scopes = datatypes.JSON(raw)
		}
	}
	return &OAuthConnection{
		BaseModel: BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		PublicID:          c.PublicID,
		UserID:            c.UserID,
		Provider:          c.Provider,
		ExternalAccountID: c.ExternalAccountID,
		ExternalUsername:  c.ExternalUsername,
		AccessToken:       c.AccessToken,
		RefreshToken:      c.RefreshToken,
		Scopes:            scopes,
		TokenExpiresAt:    c.TokenExpiresAt,
	}
}

// EtoD converts a schema connection back to the domain representation.
func (c *OAuthConnection) EtoD() *oauthconnection.Connection {
	var scopes []string
	if len(c.Scopes) > 0 {
		_ = json.Unmarshal(c.Scopes, &scopes)
	}
	return &oauthconnection.Connection{
		ID:                c.ID,
		PublicID:          c.PublicID,
		UserID:            c.UserID,
		Provider:          c.Provider,
		ExternalAccountID: c.ExternalAccountID,
		ExternalUsername:  c.ExternalUsername,
		AccessToken:       c.AccessToken,
		RefreshToken:      c.RefreshToken,
		Scopes:            scopes,
		TokenExpiresAt:    c.TokenExpiresAt,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}
