package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/interfaces/httpserver/handlers/authhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/galleryhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/subscriptionhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/usagehandler"
	"sovereign-chat/internal/interfaces/httpserver/responses"
)

// AccountRoute serves the current user, usage and the public gallery.
type AccountRoute struct {
	subscriptionHandler *subscriptionhandler.SubscriptionHandler
	usageHandler        *usagehandler.UsageHandler
	galleryHandler      *galleryhandler.GalleryHandler
	authHandler         *authhandler.AuthHandler
}

func NewAccountRoute(
	subscriptionHandler *subscriptionhandler.SubscriptionHandler,
	usageHandler *usagehandler.UsageHandler,
	galleryHandler *galleryhandler.GalleryHandler,
	authHandler *authhandler.AuthHandler,
) *AccountRoute {
	return &AccountRoute{
		subscriptionHandler: subscriptionHandler,
		usageHandler:        usageHandler,
		galleryHandler:      galleryHandler,
		authHandler:         authHandler,
	}
}

func (route *AccountRoute) RegisterRouter(router gin.IRouter) {
	router.GET("/me", route.authHandler.WithAppUserAuthChain(route.getMe)...)
	router.GET("/usage", route.authHandler.WithAppUserAuthChain(route.usageHandler.GetMyUsage)...)
	router.GET("/gallery", route.authHandler.WithAppUserAuthChain(route.galleryHandler.ListGallery)...)
}

// getMe godoc
// @Summary Get the current user
// @Description Returns the signed-in user with their subscription. The user and a FREE subscription are created on first access.
// @Tags Account API
// @Security BearerAuth
// @Produce json
// @Success 200 {object} subscriptionresponses.MeResponse "Current user"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /api/me [get]
func (route *AccountRoute) getMe(reqCtx *gin.Context) {
	user, _, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	resp, err := route.subscriptionHandler.Me(reqCtx.Request.Context(), user)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to load current user")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}
