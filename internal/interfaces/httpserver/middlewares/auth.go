package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain"
	"sovereign-chat/internal/infrastructure/identity"
	"sovereign-chat/internal/infrastructure/metrics"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	"sovereign-chat/internal/utils/platformerrors"
)

const principalContextKey = "principal"

// AuthMiddleware verifies the session token from the Authorization bearer
// header or the session cookie and stores the resulting principal. Requests
// without a valid session stop here with 401.
func AuthMiddleware(verifier identity.Verifier, cfg *config.Config, logger zerolog.Logger) gin.HandlerFunc {
	method := domain.AuthMethodSession
	if cfg.IdentityMode == config.IdentityModeJWT {
		method = domain.AuthMethodJWT
	}
	cookieName := cfg.SessionCookieName

	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			metrics.RecordAuth(string(method), false)
			logger.Warn().
				Str("path", c.FullPath()).
				Str("method", c.Request.Method).
				Msg("unauthenticated request")
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "7b1e2c3d-4f5a-4b6c-8d7e-9f0a1b2c3d4e")
			return
		}

		ident, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			metrics.RecordAuth(string(method), false)
			responses.HandleError(c, err, "session verification failed")
			return
		}
		metrics.RecordAuth(string(method), true)

		setPrincipal(c, domain.Principal{
			ID:         ident.ID,
			AuthMethod: method,
			Email:      ident.Email,
			Name:       ident.Name,
		})
		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalContextKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}

func setPrincipal(c *gin.Context, principal domain.Principal) {
	c.Set(principalContextKey, principal)
	c.Set("identity_id", principal.ID)
}

func sessionToken(c *gin.Context, cookieName string) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		scheme, value, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(value)
		}
	}
	if cookieName == "" {
		return ""
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}
