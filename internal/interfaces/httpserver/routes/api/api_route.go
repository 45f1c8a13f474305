package api

import (
	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/interfaces/httpserver/routes/api/account"
	"sovereign-chat/internal/interfaces/httpserver/routes/api/chat"
	"sovereign-chat/internal/interfaces/httpserver/routes/api/connection"
	"sovereign-chat/internal/interfaces/httpserver/routes/api/conversation"
	"sovereign-chat/internal/interfaces/httpserver/routes/api/subscription"
	"sovereign-chat/internal/interfaces/httpserver/routes/public"
)

// APIRoute mounts every JSON route under /api.
type APIRoute struct {
	account      *account.AccountRoute
	subscription *subscription.SubscriptionRoute
	chat         *chat.ChatRoute
	conversation *conversation.ConversationRoute
	connection   *connection.ConnectionRoute
	publicShare  *public.PublicShareRoute
}

func NewAPIRoute(
	account *account.AccountRoute,
	subscription *subscription.SubscriptionRoute,
	chat *chat.ChatRoute,
	conversation *conversation.ConversationRoute,
	connection *connection.ConnectionRoute,
	publicShare *public.PublicShareRoute,
) *APIRoute {
	return &APIRoute{
		account,
		subscription,
		chat,
		conversation,
		connection,
		publicShare,
	}
}

func (apiRoute *APIRoute) RegisterRouter(router gin.IRouter) {
	apiRouter := router.Group("/api")

	// Authenticated routes; each chain verifies the session itself.
	apiRoute.account.RegisterRouter(apiRouter)
	apiRoute.subscription.RegisterRouter(apiRouter)
	apiRoute.chat.RegisterRouter(apiRouter)
	apiRoute.conversation.RegisterRouter(apiRouter)
	apiRoute.connection.RegisterRouter(apiRouter)

	// Public routes
	apiRoute.subscription.RegisterPublicRouter(apiRouter)
	apiRoute.publicShare.RegisterRouter(apiRouter)
}
