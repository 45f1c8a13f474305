package middlewares

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sovereign-chat/internal/interfaces/httpserver/responses"
	"sovereign-chat/internal/utils/platformerrors"
)

// RecoveryMiddleware turns handler panics into the 500 error envelope.
func RecoveryMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().
			Str("path", c.Request.URL.Path).
			Str("request_id", RequestIDFromContext(c)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("recovered from panic")
		responses.HandleNewError(c, platformerrors.ErrorTypeInternal, "internal server error", "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d")
	})
}
