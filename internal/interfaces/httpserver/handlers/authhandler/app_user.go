package authhandler

import (
	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/domain/authz"
	"sovereign-chat/internal/domain/user"
	middleware "sovereign-chat/internal/interfaces/httpserver/middlewares"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	"sovereign-chat/internal/utils/platformerrors"
)

// GetUserFromContext returns the ensured application user from the request context.
func GetUserFromContext(c *gin.Context) (*user.User, bool) {
	val, ok := c.Get(appUserContextKey)
	if !ok || val == nil {
		return nil, false
	}
	usr, ok := val.(*user.User)
	return usr, ok && usr != nil
}

// RequireUser returns the app user or writes a 401 and reports false.
func RequireUser(c *gin.Context) (*user.User, authz.Actor, bool) {
	usr, ok := GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "3296ce86-783b-4c05-9fdb-930d3713024e")
		return nil, authz.Actor{}, false
	}
	return usr, authz.ActorFor(usr), true
}

func (h *AuthHandler) ensureAppUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserFromContext(c); ok {
			c.Next()
			return
		}

		principal, ok := middleware.PrincipalFromContext(c)
		if !ok || principal.ID == "" {
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "5e1d3524-929e-4c7a-9bb7-0a8b74fa6f10")
			return
		}

		usr, err := h.userService.EnsureUser(c.Request.Context(), user.Identity{
			ID:    principal.ID,
			Email: principal.Email,
			Name:  principal.Name,
		})
		if err != nil {
			h.logger.Error().Err(err).Str("identity_id", principal.ID).Msg("failed to ensure user from principal")
			responses.HandleError(c, err, "unable to resolve user identity")
			return
		}

		c.Set(appUserContextKey, usr)
		c.Set("user_public_id", usr.PublicID)
		c.Next()
	}
}
