package repository

import (
	"sovereign-chat/internal/infrastructure/database/repository/conversationrepo"
	"sovereign-chat/internal/infrastructure/database/repository/messagerepo"
	"sovereign-chat/internal/infrastructure/database/repository/oauthconnectionrepo"
	"sovereign-chat/internal/infrastructure/database/repository/subscriptionrepo"
	"sovereign-chat/internal/infrastructure/database/repository/userrepo"

	"github.com/google/wire"
)

var RepositoryProvider = wire.NewSet(
	conversationrepo.NewConversationGormRepository,
	messagerepo.NewMessageGormRepository,
	oauthconnectionrepo.NewOAuthConnectionGormRepository,
	subscriptionrepo.NewSubscriptionGormRepository,
	userrepo.NewUserGormRepository,
)
