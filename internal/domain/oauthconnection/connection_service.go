package oauthconnection

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"sovereign-chat/internal/domain/authz"
	"sovereign-chat/internal/utils/idgen"
	"sovereign-chat/internal/utils/platformerrors"
)

const stateBytes = 32

// Config carries the OAuth settings taken from the process configuration.
type Config struct {
	// CallbackBaseURL is the public origin of this API, used to build redirect URIs.
	CallbackBaseURL string
}

// Service manages the connect and disconnect flows.
type Service struct {
	repo   Repository
	client ProviderClient
	cfg    Config
}

// NewService creates a connection service.
func NewService(repo Repository, client ProviderClient, cfg Config) *Service {
	cfg.CallbackBaseURL = strings.TrimRight(cfg.CallbackBaseURL, "/")
	return &Service{repo: repo, client: client, cfg: cfg}
}

// RedirectURI is the callback registered with the provider.
func (s *Service) RedirectURI(provider string) string {
	return s.cfg.CallbackBaseURL + "/api/oauth/" + provider + "/callback"
}

// List returns the actor's connections.
func (s *Service) List(ctx context.Context, actor authz.Actor) ([]*Connection, error) {
	conns, err := s.repo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list connections")
	}
	return conns, nil
}

// Disconnect deletes one of the actor's connections.
func (s *Service) Disconnect(ctx context.Context, actor authz.Actor, publicID string) error {
	if !idgen.ValidateIDFormat(publicID, idgen.PrefixConnection) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid connection ID", nil, "e1f2a3b4-c5d6-4e7f-8a9b-0c1d2e3f4a5b")
	}
	conn, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "connection not found")
	}
	if err := authz.Require(ctx, actor, conn); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, conn.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete connection")
	}
	return nil
}

// BeginAuthorize returns the provider authorize URL and the state value the
// caller must persist for the callback.
func (s *Service) BeginAuthorize(ctx context.Context, provider string) (authorizeURL, state string, err error) {
	state, err = newState()
	if err != nil {
		return "", "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate state", err, "f2a3b4c5-d6e7-4f8a-9b0c-1d2e3f4a5b6c")
	}
	authorizeURL, err = s.client.AuthorizeURL(provider, state, s.RedirectURI(provider))
	if err != nil {
		return "", "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to build authorize URL")
	}
	return authorizeURL, state, nil
}

// CompleteInput is the provider callback.
type CompleteInput struct {
	Provider      string
	Code          string
	State         string
	ExpectedState string
}

// CompleteAuthorize validates state, exchanges the code, fetches the profile
// and upserts the connection for (actor, provider).
func (s *Service) CompleteAuthorize(ctx context.Context, actor authz.Actor, input CompleteInput) (*Connection, error) {
	if input.ExpectedState == "" || subtle.ConstantTimeCompare([]byte(input.State), []byte(input.ExpectedState)) != 1 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid oauth state", nil, "a3b4c5d6-e7f8-4a9b-0c1d-2e3f4a5b6c7d")
	}
	if strings.TrimSpace(input.Code) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "authorization code is required", nil, "b4c5d6e7-f8a9-4b0c-1d2e-3f4a5b6c7d8e")
	}

	token, err := s.client.ExchangeCode(ctx, input.Provider, input.Code, s.RedirectURI(input.Provider))
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to exchange authorization code")
	}
	profile, err := s.client.FetchProfile(ctx, input.Provider, token.AccessToken)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to fetch provider profile")
	}

	publicID, err := idgen.GenerateSecureID(idgen.PrefixConnection, idgen.DefaultLength)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate connection id", err, "c5d6e7f8-a9b0-4c1d-2e3f-4a5b6c7d8e9f")
	}

	stored, err := s.repo.Upsert(ctx, &Connection{
		PublicID:          publicID,
		UserID:            actor.UserID,
		Provider:          input.Provider,
		ExternalAccountID: profile.ID,
		ExternalUsername:  profile.Username,
		AccessToken:       token.AccessToken,
		RefreshToken:      token.RefreshToken,
		Scopes:            token.Scopes,
		TokenExpiresAt:    token.ExpiresAt,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store connection")
	}
	return stored, nil
}

func newState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
