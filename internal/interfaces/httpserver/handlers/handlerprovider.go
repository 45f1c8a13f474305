package handlers

import (
	"github.com/google/wire"

	"sovereign-chat/internal/interfaces/httpserver/handlers/authhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/chathandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/connectionhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/conversationhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/galleryhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/sharehandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/subscriptionhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/usagehandler"
)

var HandlerProvider = wire.NewSet(
	authhandler.NewAuthHandler,
	chathandler.NewChatHandler,
	conversationhandler.NewConversationHandler,
	sharehandler.NewShareHandler,
	subscriptionhandler.NewSubscriptionHandler,
	connectionhandler.NewConnectionHandler,
	usagehandler.NewUsageHandler,
	galleryhandler.NewGalleryHandler,
)
