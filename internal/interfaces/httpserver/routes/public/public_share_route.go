package public

import (
	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/interfaces/httpserver/handlers/sharehandler"
	"sovereign-chat/internal/interfaces/httpserver/middlewares"
)

// publicShareRateLimit is requests per minute per client IP.
const publicShareRateLimit = 100

// PublicShareRoute handles routing for public share endpoints (no auth required)
type PublicShareRoute struct {
	handler *sharehandler.ShareHandler
}

// NewPublicShareRoute creates a new public share route handler
func NewPublicShareRoute(handler *sharehandler.ShareHandler) *PublicShareRoute {
	return &PublicShareRoute{
		handler: handler,
	}
}

// RegisterRouter registers public share routes. They do not require
// authentication but are rate limited per IP.
func (route *PublicShareRoute) RegisterRouter(router gin.IRouter) {
	publicShares := router.Group("/share")
	publicShares.Use(middlewares.RateLimitMiddleware(publicShareRateLimit))
	publicShares.GET("/:share_id", route.handler.GetPublicShare)
}
