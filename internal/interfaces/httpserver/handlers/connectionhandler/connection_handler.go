package connectionhandler

import (
	"context"

	"sovereign-chat/internal/domain/authz"
	"sovereign-chat/internal/domain/oauthconnection"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	connectionresponses "sovereign-chat/internal/interfaces/httpserver/responses/connection"
	"sovereign-chat/internal/utils/platformerrors"
)

// ConnectionHandler handles OAuth connection requests.
type ConnectionHandler struct {
	connectionService *oauthconnection.Service
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(connectionService *oauthconnection.Service) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

// ListConnections lists the actor's connections without tokens.
func (h *ConnectionHandler) ListConnections(ctx context.Context, actor authz.Actor) (*connectionresponses.ConnectionListResponse, error) {
	conns, err := h.connectionService.List(ctx, actor)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to list connections")
	}
	return connectionresponses.NewConnectionListResponse(conns), nil
}

// Disconnect deletes an owned connection.
func (h *ConnectionHandler) Disconnect(ctx context.Context, actor authz.Actor, connectionID string) (*responses.DeletedResponse, error) {
	if err := h.connectionService.Disconnect(ctx, actor, connectionID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to disconnect")
	}
	return &responses.DeletedResponse{ID: connectionID, Deleted: true}, nil
}

// BeginAuthorize returns the provider consent URL and the state to remember.
func (h *ConnectionHandler) BeginAuthorize(ctx context.Context, provider string) (*connectionresponses.AuthorizeResponse, string, error) {
	url, state, err := h.connectionService.BeginAuthorize(ctx, provider)
	if err != nil {
		return nil, "", platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to start authorization")
	}
	return &connectionresponses.AuthorizeResponse{Provider: provider, URL: url}, state, nil
}

// CompleteAuthorize validates the callback and upserts the connection.
func (h *ConnectionHandler) CompleteAuthorize(ctx context.Context, actor authz.Actor, input oauthconnection.CompleteInput) (*connectionresponses.ConnectionResponse, error) {
	conn, err := h.connectionService.CompleteAuthorize(ctx, actor, input)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to complete authorization")
	}
	resp := connectionresponses.NewConnectionResponse(conn)
	return &resp, nil
}
