package connectionresponses

import (
	"time"

	"sovereign-chat/internal/domain/oauthconnection"
)

// ConnectionResponse is the API shape of an OAuth connection. Tokens are
// never part of it.
type ConnectionResponse struct {
	ID                string     `json:"id"`
	Object            string     `json:"object"`
	Provider          string     `json:"provider"`
	ExternalAccountID string     `json:"external_account_id"`
	ExternalUsername  string     `json:"external_username,omitempty"`
	Scopes            []string   `json:"scopes"`
	TokenExpiresAt    *time.Time `json:"token_expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ConnectionListResponse lists connections.
type ConnectionListResponse struct {
	Data []ConnectionResponse `json:"data"`
}

// AuthorizeResponse carries the provider consent URL.
type AuthorizeResponse struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// NewConnectionResponse creates a response from a connection.
func NewConnectionResponse(conn *oauthconnection.Connection) ConnectionResponse {
	scopes := conn.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return ConnectionResponse{
		ID:                conn.PublicID,
		Object:            "connection",
		Provider:          conn.Provider,
		ExternalAccountID: conn.ExternalAccountID,
		ExternalUsername:  conn.ExternalUsername,
		Scopes:            scopes,
		TokenExpiresAt:    conn.TokenExpiresAt,
		CreatedAt:         conn.CreatedAt,
		UpdatedAt:         conn.UpdatedAt,
	}
}

// NewConnectionListResponse creates a list response.
func NewConnectionListResponse(conns []*oauthconnection.Connection) *ConnectionListResponse {
	data := make([]ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		data = append(data, NewConnectionResponse(conn))
	}
	return &ConnectionListResponse{Data: data}
}
