package routes

import (
	"github.com/google/wire"

	"sovereign-chat/internal/interfaces/httpserver/handlers"
	"sovereign-chat/internal/interfaces/httpserver/routes/api"
	"sovereign-chat/internal/interfaces/httpserver/routes/api/account"
	"sovereign-chat/internal/interfaces/httpserver/routes/api/chat"
	"sovereign-chat/internal/interfaces/httpserver/routes/api/connection"
	"sovereign-chat/internal/interfaces/httpserver/routes/api/conversation"
	"sovereign-chat/internal/interfaces/httpserver/routes/api/subscription"
	"sovereign-chat/internal/interfaces/httpserver/routes/public"
)

var RouteProvider = wire.NewSet(
	// Handlers
	handlers.HandlerProvider,

	// Routes
	api.NewAPIRoute,
	account.NewAccountRoute,
	subscription.NewSubscriptionRoute,
	chat.NewChatRoute,
	conversation.NewConversationRoute,
	connection.NewConnectionRoute,
	public.NewPublicShareRoute,
)
