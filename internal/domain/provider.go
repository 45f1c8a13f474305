package domain

import (
	"github.com/google/wire"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/chat"
	"sovereign-chat/internal/domain/conversation"
	"sovereign-chat/internal/domain/gallery"
	"sovereign-chat/internal/domain/message"
	"sovereign-chat/internal/domain/oauthconnection"
	"sovereign-chat/internal/domain/subscription"
	"sovereign-chat/internal/domain/usage"
	"sovereign-chat/internal/domain/user"
)

// ServiceProvider provides all domain services
var ServiceProvider = wire.NewSet(
	// User domain
	ProvideUserConfig,
	user.NewService,
	wire.Bind(new(user.Provisioner), new(*subscription.Service)),

	// Billing
	ProvideSubscriptionConfig,
	subscription.NewService,

	// Conversations and messages
	message.NewService,
	wire.Bind(new(conversation.MessagePurger), new(*message.Service)),
	conversation.NewConversationService,

	// Usage and quotas
	ProvidePlanCatalog,
	usage.NewService,
	wire.Bind(new(usage.EntitlementSource), new(*subscription.Service)),
	wire.Bind(new(usage.MessageStats), new(*message.Service)),

	// Chat
	ProvideChatConfig,
	chat.NewService,
	wire.Bind(new(chat.QuotaChecker), new(*usage.Service)),

	// Gallery
	ProvideGalleryConfig,
	gallery.NewService,
	wire.Bind(new(gallery.PublicConversations), new(*conversation.ConversationService)),

	// OAuth connections
	ProvideOAuthConnectionConfig,
	oauthconnection.NewService,
)

func ProvideUserConfig(cfg *config.Config) user.Config {
	return user.Config{SovereignUserID: cfg.SovereignUserID}
}

func ProvideSubscriptionConfig(cfg *config.Config) subscription.Config {
	success, cancel := cfg.CheckoutURLs()
	return subscription.Config{
		UpgradePolicy:   cfg.UpgradePolicy,
		SuccessURL:      success,
		CancelURL:       cancel,
		PortalReturnURL: cfg.PortalURL(),
		Catalog:         cfg.PlanCatalog,
	}
}

func ProvidePlanCatalog(cfg *config.Config) *config.PlanCatalog {
	if cfg.PlanCatalog == nil {
		return config.DefaultPlanCatalog()
	}
	return cfg.PlanCatalog
}

func ProvideChatConfig(cfg *config.Config) chat.Config {
	return chat.Config{HistoryLimit: cfg.ChatHistoryLimit}
}

func ProvideGalleryConfig(cfg *config.Config) gallery.Config {
	return gallery.Config{
		TrendingWindow: cfg.TrendingWindow,
		Candidates:     cfg.TrendingCandidates,
		LikeWeight:     cfg.TrendingLikeWeight,
		ViewWeight:     cfg.TrendingViewWeight,
		Gravity:        cfg.TrendingGravity,
		CacheTTL:       cfg.TrendingCacheTTL,
	}
}

func ProvideOAuthConnectionConfig(cfg *config.Config) oauthconnection.Config {
	return oauthconnection.Config{CallbackBaseURL: cfg.OAuthCallbackBaseURL}
}
