// Package oauthconnection links third-party accounts to users.
package oauthconnection

import (
	"context"
	"time"
)

// Connection is a linked third-party account. Tokens are plaintext in the
// domain and encrypted by the repository.
type Connection struct {
	ID                uint
	PublicID          string
	UserID            uint
	Provider          string
	ExternalAccountID string
	ExternalUsername  string
	AccessToken       string
	RefreshToken      string
	Scopes            []string
	TokenExpiresAt    *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OwnerID implements authz.Resource.
func (c *Connection) OwnerID() uint {
	return c.UserID
}

// Repository defines storage operations for connections.
type Repository interface {
	// Upsert inserts or replaces the connection for (user, provider) and returns the stored row.
	Upsert(ctx context.Context, conn *Connection) (*Connection, error)
	FindByUserID(ctx context.Context, userID uint) ([]*Connection, error)
	FindByPublicID(ctx context.Context, publicID string) (*Connection, error)
	Delete(ctx context.Context, id uint) error
}

// Token is the result of an authorization-code exchange.
type Token struct {
	AccessToken  string
	RefreshToken string
	Scopes       []string
	ExpiresAt    *time.Time
}

// Profile identifies the external account.
type Profile struct {
	ID       string
	Username string
}

// ProviderClient talks to configured OAuth providers. Unknown provider names
// yield NOT_FOUND errors.
type ProviderClient interface {
	AuthorizeURL(provider, state, redirectURI string) (string, error)
	ExchangeCode(ctx context.Context, provider, code, redirectURI string) (*Token, error)
	FetchProfile(ctx context.Context, provider, accessToken string) (*Profile, error)
}
