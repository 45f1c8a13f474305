package identity

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/utils/platformerrors"
)

// JWTConfig configures local verification of provider-issued JWTs.
type JWTConfig struct {
	JWKSURL      string
	Issuer       string
	Audience     string
	RefreshEvery time.Duration
	ClockSkew    time.Duration
}

// JWTVerifier validates RS256 session JWTs against the provider JWKS.
type JWTVerifier struct {
	cfg     JWTConfig
	logger  zerolog.Logger
	jwks    atomic.Pointer[keyfunc.JWKS]
	lastErr atomic.Value // stores lastErrWrap
}

// lastErrWrap is a sentinel wrapper to avoid storing bare nil in atomic.Value.
type lastErrWrap struct{ Err error }

const (
	jwksInitialRetryInterval   = time.Second
	jwksInitialRetryMaxBackoff = 10 * time.Second
	jwksInitialRetryTimeout    = 2 * time.Minute
)

// NewJWTVerifier fetches the JWKS, retrying with backoff until ctx or the
// retry window ends.
func NewJWTVerifier(ctx context.Context, cfg JWTConfig, logger zerolog.Logger) (*JWTVerifier, error) {
	if cfg.JWKSURL == "" {
		return nil, errors.New("jwks url is required")
	}
	v := &JWTVerifier{cfg: cfg, logger: logger}
	v.lastErr.Store(lastErrWrap{Err: nil})

	if err := v.initJWKS(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *JWTVerifier) initJWKS(ctx context.Context) error {
	options := keyfunc.Options{
		Ctx: ctx,
		RefreshErrorHandler: func(err error) {
			v.lastErr.Store(lastErrWrap{Err: err})
			if err != nil {
				v.logger.Error().Err(err).Msg("jwks refresh failed")
			}
		},
		RefreshInterval:   v.cfg.RefreshEvery,
		RefreshUnknownKID: true,
	}

	backoff := jwksInitialRetryInterval
	deadline := time.Now().Add(jwksInitialRetryTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	for attempt := 1; ; attempt++ {
		jwks, err := keyfunc.Get(v.cfg.JWKSURL, options)
		if err == nil {
			v.lastErr.Store(lastErrWrap{Err: nil})
			v.jwks.Store(jwks)
			return nil
		}

		v.logger.Warn().
			Err(err).
			Str("jwks_url", v.cfg.JWKSURL).
			Int("attempt", attempt).
			Msg("initial jwks fetch failed, retrying")

		select {
		case <-ctx.Done():
			return fmt.Errorf("fetch jwks: %w", ctx.Err())
		case <-time.After(backoff):
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("fetch jwks: %w", err)
		}
		backoff = min(backoff*2, jwksInitialRetryMaxBackoff)
	}
}

// Verify implements Verifier.
func (v *JWTVerifier) Verify(ctx context.Context, rawToken string) (*user.Identity, error) {
	identity, err := v.parse(rawToken)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized, "invalid session token", err, "5c8e0f2b-6d7a-4b12-9e4f-0617283a4b5c")
	}
	return identity, nil
}

func (v *JWTVerifier) parse(rawToken string) (*user.Identity, error) {
	jwks := v.jwks.Load()
	if jwks == nil {
		return nil, errors.New("jwks not initialised")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.cfg.ClockSkew),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	token, err := jwt.NewParser(opts...).ParseWithClaims(rawToken, jwt.MapClaims{}, jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claims")
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, errors.New("sub claim missing")
	}

	name := claimString(claims["name"])
	if name == "" {
		name = claimString(claims["preferred_username"])
	}
	return &user.Identity{ID: sub, Email: claimString(claims["email"]), Name: name}, nil
}

// Ready indicates whether JWKS has been successfully loaded.
func (v *JWTVerifier) Ready() bool {
	if v.jwks.Load() == nil {
		return false
	}
	if val := v.lastErr.Load(); val != nil {
		if wrap, ok := val.(lastErrWrap); ok && wrap.Err != nil {
			return false
		}
	}
	return true
}

func claimString(value any) string {
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}
