// Package oauthprovider implements the authorization-code flow against the
// providers listed in the OAuth provider config file.
package oauthprovider

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"resty.dev/v3"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/oauthconnection"
	"sovereign-chat/internal/utils/httpclients"
	"sovereign-chat/internal/utils/platformerrors"
)

// Client implements oauthconnection.ProviderClient.
type Client struct {
	http      *resty.Client
	providers map[string]config.OAuthProvider
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	ExpiresIn        int64  `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// NewClient builds a client over the configured providers.
func NewClient(cfg *config.Config) *Client {
	return NewClientWithProviders(cfg.OAuthProviders, cfg.OAuthTimeout)
}

// NewClientWithProviders builds a client over an explicit provider list.
func NewClientWithProviders(providers []config.OAuthProvider, timeout time.Duration) *Client {
	byName := make(map[string]config.OAuthProvider, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
	}
	return &Client{
		http:      httpclients.NewClient("OAuthProviderClient", timeout),
		providers: byName,
	}
}

// Providers lists the configured provider names.
func (c *Client) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	return names
}

func (c *Client) provider(ctx context.Context, name string) (config.OAuthProvider, error) {
	p, ok := c.providers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return config.OAuthProvider{}, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeNotFound,
			"oauth provider is not configured", nil, "4d6f8a0c-2e3b-4d5f-a7c9-1b3d5f7a9c2e", map[string]any{"provider": name})
	}
	return p, nil
}

// AuthorizeURL returns the provider consent URL carrying state and redirectURI.
func (c *Client) AuthorizeURL(provider, state, redirectURI string) (string, error) {
	p, err := c.provider(context.Background(), provider)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(p.AuthorizeURL)
	if err != nil {
		return "", platformerrors.NewError(context.Background(), platformerrors.LayerInfrastructure, platformerrors.ErrorTypeInternal,
			"invalid provider authorize URL", err, "6f8a0c2e-4b5d-4f7a-9c1e-3d5f7a9c1e4b")
	}
	q := u.Query()
	q.Set("client_id", p.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("state", state)
	if len(p.Scopes) > 0 {
		q.Set("scope", strings.Join(p.Scopes, " "))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExchangeCode trades an authorization code for tokens.
func (c *Client) ExchangeCode(ctx context.Context, provider, code, redirectURI string) (*oauthconnection.Token, error) {
	p, err := c.provider(ctx, provider)
	if err != nil {
		return nil, err
	}

	var body tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetFormData(map[string]string{
			"grant_type":    "authorization_code",
			"code":          code,
			"redirect_uri":  redirectURI,
			"client_id":     p.ClientID,
			"client_secret": p.ClientSecret,
		}).
		SetResult(&body).
		SetError(&body).
		Post(p.TokenURL)
	if err != nil {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"token exchange request failed", err, "8a0c2e4b-6d7f-4a9c-b1e3-5f7a9c1e3b6d", map[string]any{"provider": p.Name})
	}
	if resp.IsError() || body.Error != "" || body.AccessToken == "" {
		msg := "token exchange rejected"
		if body.ErrorDescription != "" {
			msg += ": " + body.ErrorDescription
		} else if body.Error != "" {
			msg += ": " + body.Error
		}
		errType := platformerrors.ErrorTypeExternal
		if body.Error == "invalid_grant" || body.Error == "bad_verification_code" {
			errType = platformerrors.ErrorTypeValidation
		}
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, errType,
			msg, nil, "0c2e4a6d-8f9b-4c1e-93a5-7b9c1e3a5d8f", map[string]any{"provider": p.Name, "status": resp.StatusCode()})
	}

	token := &oauthconnection.Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		Scopes:       splitScopes(body.Scope),
	}
	if len(token.Scopes) == 0 {
		token.Scopes = p.Scopes
	}
	if body.ExpiresIn > 0 {
		expires := time.Now().UTC().Add(time.Duration(body.ExpiresIn) * time.Second)
		token.ExpiresAt = &expires
	}
	return token, nil
}

// FetchProfile reads the external account id and username from the
// provider profile endpoint using the configured field paths.
func (c *Client) FetchProfile(ctx context.Context, provider, accessToken string) (*oauthconnection.Profile, error) {
	p, err := c.provider(ctx, provider)
	if err != nil {
		return nil, err
	}

	body := map[string]any{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetAuthToken(accessToken).
		SetResult(&body).
		Get(p.ProfileURL)
	if err != nil {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"profile request failed", err, "2e4a6c8f-0b1d-4e3a-b5c7-9d1e3a5c7f0b", map[string]any{"provider": p.Name})
	}
	if resp.IsError() {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"profile request rejected", nil, "4a6c8e0b-2d3f-4a5c-97e9-1f3a5c7e9b2d", map[string]any{"provider": p.Name, "status": resp.StatusCode()})
	}

	id := lookupString(body, p.IDField)
	if id == "" {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"profile response has no account id", nil, "6c8e0a2d-4f5b-4c7e-a9f1-3b5c7e9a1d4f", map[string]any{"provider": p.Name, "field": p.IDField})
	}
	return &oauthconnection.Profile{ID: id, Username: lookupString(body, p.UsernameField)}, nil
}

// lookupString resolves a dot separated path such as "data.username".
// Numeric ids are rendered without exponent.
func lookupString(body map[string]any, path string) string {
	var current any = body
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current = obj[key]
	}
	switch v := current.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func splitScopes(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) == 0 {
		return nil
	}
	return fields
}
