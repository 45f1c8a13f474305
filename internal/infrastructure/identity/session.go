package identity

import (
	"context"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"

	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/utils/httpclients"
	"sovereign-chat/internal/utils/platformerrors"
)

// SessionConfig configures the hosted identity provider session API.
type SessionConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// SessionVerifier makes one verification call per request.
type SessionVerifier struct {
	client    *resty.Client
	secretKey string
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserID string `json:"user_id"`
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type verifyErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewSessionVerifier creates a verifier against cfg.BaseURL.
func NewSessionVerifier(cfg SessionConfig) *SessionVerifier {
	client := httpclients.NewClient("IdentitySessionClient", cfg.Timeout)
	client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	return &SessionVerifier{client: client, secretKey: cfg.SecretKey}
}

// Verify implements Verifier.
func (v *SessionVerifier) Verify(ctx context.Context, token string) (*user.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized, "missing session token", nil, "0d3f5a7c-1e2b-4c6d-8f9a-b1c2d3e4f506")
	}

	var body verifyResponse
	var errBody verifyErrorResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(v.secretKey).
		SetBody(verifyRequest{Token: token}).
		SetResult(&body).
		SetError(&errBody).
		Post("/sessions/verify")
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "identity provider unavailable", err, "1e4a6b8d-2f3c-4d7e-9a0b-c2d3e4f50617")
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusNotFound:
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized, "invalid session", nil, "2f5b7c9e-3a4d-4e8f-8b1c-d3e4f5061728")
	case resp.IsError():
		msg := errBody.Message
		if msg == "" {
			msg = errBody.Error
		}
		if msg == "" {
			msg = resp.Status()
		}
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"identity provider error: "+msg, nil, "3a6c8d0f-4b5e-4f90-9c2d-e4f506172839", map[string]any{"status": resp.StatusCode()})
	}

	id := body.UserID
	if id == "" {
		id = body.ID
	}
	if id == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized, "session has no subject", nil, "4b7d9e1a-5c6f-4a01-8d3e-f506172839a4")
	}
	return &user.Identity{ID: id, Email: body.Email, Name: body.Name}, nil
}
