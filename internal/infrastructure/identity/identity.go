// Package identity verifies identity-provider session tokens.
package identity

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/user"
)

// Verifier resolves an opaque session token to the identity it belongs to.
// Invalid or unknown tokens yield UNAUTHORIZED platform errors.
type Verifier interface {
	Verify(ctx context.Context, token string) (*user.Identity, error)
}

// NewVerifier selects the implementation configured by IDENTITY_MODE.
func NewVerifier(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Verifier, error) {
	switch cfg.IdentityMode {
	case config.IdentityModeSession:
		return NewSessionVerifier(SessionConfig{
			BaseURL:   cfg.IdentityBaseURL,
			SecretKey: cfg.IdentitySecretKey,
			Timeout:   cfg.IdentityTimeout,
		}), nil
	case config.IdentityModeJWT:
		return NewJWTVerifier(ctx, JWTConfig{
			JWKSURL:      cfg.JWKSURL,
			Issuer:       cfg.Issuer,
			Audience:     cfg.Audience,
			RefreshEvery: cfg.RefreshJWKSInterval,
		}, log)
	default:
		return nil, fmt.Errorf("unsupported identity mode %q", cfg.IdentityMode)
	}
}
