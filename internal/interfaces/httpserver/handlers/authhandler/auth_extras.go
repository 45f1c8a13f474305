package authhandler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/infrastructure/identity"
	middleware "sovereign-chat/internal/interfaces/httpserver/middlewares"
)

const appUserContextKey = "app_user"

// AuthHandler coordinates per-request authentication helpers.
type AuthHandler struct {
	userService    *user.Service
	authMiddleware gin.HandlerFunc
	logger         zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(userService *user.Service, verifier identity.Verifier, cfg *config.Config, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService:    userService,
		authMiddleware: middleware.AuthMiddleware(verifier, cfg, logger),
		logger:         logger,
	}
}

// WithAppUserAuthChain verifies the session and ensures the app user exists
// before executing handlers.
func (h *AuthHandler) WithAppUserAuthChain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{h.authMiddleware, h.ensureAppUser()}
	return append(chain, handlers...)
}
