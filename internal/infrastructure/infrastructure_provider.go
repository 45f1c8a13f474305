package infrastructure

import (
	"context"
	"strings"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/chat"
	"sovereign-chat/internal/domain/oauthconnection"
	"sovereign-chat/internal/domain/subscription"
	"sovereign-chat/internal/infrastructure/billing"
	"sovereign-chat/internal/infrastructure/cache"
	"sovereign-chat/internal/infrastructure/crontab"
	"sovereign-chat/internal/infrastructure/database"
	"sovereign-chat/internal/infrastructure/database/repository"
	"sovereign-chat/internal/infrastructure/database/transaction"
	"sovereign-chat/internal/infrastructure/identity"
	"sovereign-chat/internal/infrastructure/inference"
	"sovereign-chat/internal/infrastructure/logger"
	"sovereign-chat/internal/infrastructure/oauthprovider"
	"sovereign-chat/internal/utils/crypto"
)

// ProvideConfig loads and provides the application configuration
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideLogger reconfigures the global logger from LOG_LEVEL and LOG_FORMAT.
func ProvideLogger(cfg *config.Config) (zerolog.Logger, error) {
	return logger.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
}

// ProvideDatabaseConfig maps the process configuration onto database.Config.
func ProvideDatabaseConfig(cfg *config.Config) database.Config {
	level := gormlogger.Warn
	if cfg.DBLogSQLQueries {
		level = gormlogger.Info
	}
	return database.Config{
		Driver:      cfg.DBDriver,
		DatabaseURL: cfg.DatabaseURL,
		Schema:      cfg.DBSchema,
		MaxIdle:     cfg.DBMaxIdle,
		MaxOpen:     cfg.DBMaxOpen,
		MaxLifetime: cfg.DBMaxLifetime,
		LogLevel:    level,
	}
}

// ProvideDatabase provides a database connection
func ProvideDatabase(cfg *config.Config, dbCfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, err
	}

	// Run migrations if AUTO_MIGRATE is enabled
	if cfg.AutoMigrate {
		log.Info().Str("driver", dbCfg.Driver).Msg("Running database migrations...")
		if err := database.Migrate(db, dbCfg); err != nil {
			log.Error().Err(err).Msg("Failed to run database migrations")
			return nil, err
		}
		log.Info().Msg("Database migrations completed successfully")
	}

	return db, nil
}

// ProvideTransactionDatabase provides a transaction database wrapper
func ProvideTransactionDatabase(db *gorm.DB) *transaction.Database {
	return transaction.NewDatabase(db)
}

// ProvideTokenCipher returns nil when OAUTH_TOKEN_ENCRYPTION_KEY is unset;
// connecting accounts then fails instead of storing plaintext tokens.
func ProvideTokenCipher(cfg *config.Config, log zerolog.Logger) (*crypto.TokenCipher, error) {
	if strings.TrimSpace(cfg.OAuthTokenEncryptionKey) == "" {
		log.Warn().Msg("OAUTH_TOKEN_ENCRYPTION_KEY is empty, account connections are disabled")
		return nil, nil
	}
	return crypto.NewTokenCipher(cfg.OAuthTokenEncryptionKey)
}

// ProvideIdentityVerifier selects the identity provider integration.
func ProvideIdentityVerifier(cfg *config.Config, log zerolog.Logger) (identity.Verifier, error) {
	return identity.NewVerifier(context.Background(), cfg, log)
}

// ProvidePaymentGateway wires the Stripe gateway.
func ProvidePaymentGateway(cfg *config.Config) subscription.PaymentGateway {
	return billing.NewStripeGateway(cfg)
}

// ProvideOAuthProviderClient wires the configured OAuth providers.
func ProvideOAuthProviderClient(cfg *config.Config) oauthconnection.ProviderClient {
	return oauthprovider.NewClient(cfg)
}

// Infrastructure holds the infrastructure dependencies the server needs
// directly, outside the handler graph.
type Infrastructure struct {
	DB      *gorm.DB
	Health  *inference.HealthMonitor
	Crontab *crontab.Crontab
	Logger  zerolog.Logger
}

// NewInfrastructure creates a new infrastructure instance
func NewInfrastructure(
	db *gorm.DB,
	health *inference.HealthMonitor,
	cron *crontab.Crontab,
	logger zerolog.Logger,
) *Infrastructure {
	return &Infrastructure{
		DB:      db,
		Health:  health,
		Crontab: cron,
		Logger:  logger,
	}
}

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	// Config
	ProvideConfig,
	ProvideLogger,

	// Database
	ProvideDatabaseConfig,
	ProvideDatabase,
	ProvideTransactionDatabase,
	ProvideTokenCipher,

	// Repositories
	repository.RepositoryProvider,

	// Identity provider
	ProvideIdentityVerifier,

	// Inference backends
	inference.NewInferenceProvider,
	inference.NewHealthMonitor,
	wire.Bind(new(chat.Completer), new(*inference.InferenceProvider)),
	wire.Bind(new(chat.HealthChecker), new(*inference.HealthMonitor)),

	// Billing and OAuth integrations
	ProvidePaymentGateway,
	ProvideOAuthProviderClient,

	// Gallery ranking cache
	cache.NewRankingCache,

	// Crontab for health probes and trending refresh
	crontab.NewCrontab,

	// Infrastructure struct
	NewInfrastructure,
)
