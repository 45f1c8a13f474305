package connection

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/oauthconnection"
	"sovereign-chat/internal/interfaces/httpserver/handlers/authhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/connectionhandler"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	"sovereign-chat/internal/utils/platformerrors"
)

const (
	stateCookiePrefix = "oauth_state_"
	// stateCookieMaxAge bounds how long a consent screen may stay open, in seconds.
	stateCookieMaxAge = 600
)

type ConnectionRoute struct {
	handler     *connectionhandler.ConnectionHandler
	authHandler *authhandler.AuthHandler
	cfg         *config.Config
}

func NewConnectionRoute(
	handler *connectionhandler.ConnectionHandler,
	authHandler *authhandler.AuthHandler,
	cfg *config.Config,
) *ConnectionRoute {
	return &ConnectionRoute{
		handler:     handler,
		authHandler: authHandler,
		cfg:         cfg,
	}
}

func (route *ConnectionRoute) RegisterRouter(router gin.IRouter) {
	connections := router.Group("/connections")
	connections.GET("", route.authHandler.WithAppUserAuthChain(route.listConnections)...)
	connections.DELETE("/:connection_id", route.authHandler.WithAppUserAuthChain(route.disconnect)...)

	oauth := router.Group("/oauth/:provider")
	oauth.GET("/authorize", route.authHandler.WithAppUserAuthChain(route.authorize)...)
	oauth.GET("/callback", route.authHandler.WithAppUserAuthChain(route.callback)...)
}

// listConnections godoc
// @Summary List OAuth connections
// @Description Lists the signed-in user's connected accounts. Tokens are never returned.
// @Tags Connections API
// @Security BearerAuth
// @Produce json
// @Success 200 {object} connectionresponses.ConnectionListResponse "Connections"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /api/connections [get]
func (route *ConnectionRoute) listConnections(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	resp, err := route.handler.ListConnections(reqCtx.Request.Context(), actor)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list connections")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// disconnect godoc
// @Summary Disconnect an OAuth connection
// @Tags Connections API
// @Security BearerAuth
// @Produce json
// @Param connection_id path string true "Connection public ID"
// @Success 200 {object} responses.DeletedResponse "Disconnected"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 403 {object} responses.ErrorResponse "Connection belongs to another user"
// @Failure 404 {object} responses.ErrorResponse "Connection not found"
// @Router /api/connections/{connection_id} [delete]
func (route *ConnectionRoute) disconnect(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	resp, err := route.handler.Disconnect(reqCtx.Request.Context(), actor, reqCtx.Param("connection_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to disconnect")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// authorize godoc
// @Summary Start an OAuth connection
// @Description Returns the provider consent URL and stores the state in an HttpOnly cookie scoped to the provider.
// @Tags Connections API
// @Security BearerAuth
// @Produce json
// @Param provider path string true "Provider name"
// @Success 200 {object} connectionresponses.AuthorizeResponse "Consent URL"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 404 {object} responses.ErrorResponse "Unknown provider"
// @Router /api/oauth/{provider}/authorize [get]
func (route *ConnectionRoute) authorize(reqCtx *gin.Context) {
	if _, _, ok := authhandler.RequireUser(reqCtx); !ok {
		return
	}
	provider := providerParam(reqCtx)

	resp, state, err := route.handler.BeginAuthorize(reqCtx.Request.Context(), provider)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to start authorization")
		return
	}
	route.setStateCookie(reqCtx, provider, state, stateCookieMaxAge)
	reqCtx.JSON(http.StatusOK, resp)
}

// callback godoc
// @Summary Complete an OAuth connection
// @Description Validates the state cookie, exchanges the code, fetches the provider profile and stores the connection.
// @Description Redirects to the configured success URL when set, otherwise returns the connection.
// @Tags Connections API
// @Security BearerAuth
// @Produce json
// @Param provider path string true "Provider name"
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by authorize"
// @Success 200 {object} connectionresponses.ConnectionResponse "Stored connection"
// @Success 302 "Redirect to the success URL"
// @Failure 400 {object} responses.ErrorResponse "State mismatch or provider error"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 404 {object} responses.ErrorResponse "Unknown provider"
// @Failure 500 {object} responses.ErrorResponse "Provider request failed"
// @Router /api/oauth/{provider}/callback [get]
func (route *ConnectionRoute) callback(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}
	provider := providerParam(reqCtx)

	expected, _ := reqCtx.Cookie(stateCookiePrefix + provider)
	route.setStateCookie(reqCtx, provider, "", -1)

	if providerErr := reqCtx.Query("error"); providerErr != "" {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "provider denied authorization: "+providerErr, "e1f2a3b4-c5d6-4e7f-8a9b-0c1d2e3f4a5b")
		return
	}

	resp, err := route.handler.CompleteAuthorize(reqCtx.Request.Context(), actor, oauthconnection.CompleteInput{
		Provider:      provider,
		Code:          reqCtx.Query("code"),
		State:         reqCtx.Query("state"),
		ExpectedState: expected,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to complete authorization")
		return
	}

	if target := route.successRedirect(provider, resp.ID); target != "" {
		reqCtx.Redirect(http.StatusFound, target)
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

func (route *ConnectionRoute) setStateCookie(reqCtx *gin.Context, provider, value string, maxAge int) {
	secure := reqCtx.Request.TLS != nil || strings.HasPrefix(route.cfg.OAuthCallbackBaseURL, "https://")
	reqCtx.SetSameSite(http.SameSiteLaxMode)
	reqCtx.SetCookie(stateCookiePrefix+provider, value, maxAge, "/api/oauth/"+provider, "", secure, true)
}

func (route *ConnectionRoute) successRedirect(provider, connectionID string) string {
	raw := strings.TrimSpace(route.cfg.OAuthSuccessRedirectURL)
	if raw == "" {
		return ""
	}
	target, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	q := target.Query()
	q.Set("provider", provider)
	q.Set("connection_id", connectionID)
	target.RawQuery = q.Encode()
	return target.String()
}

func providerParam(reqCtx *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(reqCtx.Param("provider")))
}
