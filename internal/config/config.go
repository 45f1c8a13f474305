package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Global singleton for code paths that run outside dependency injection (crontab jobs).
var globalConfig *Config

// Upgrade policies for subscription checkout.
const (
	UpgradePolicyFreeOnly        = "free_only"
	UpgradePolicyAllowPlanChange = "allow_plan_change"
)

// Identity verification modes.
const (
	IdentityModeSession = "session"
	IdentityModeJWT     = "jwt"
)

// Config holds all environment backed configuration. It is built once by Load
// and handed to every integration client at construction.
type Config struct {
	// HTTP Server
	HTTPPort    int      `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int      `env:"METRICS_PORT" envDefault:"9091"`
	PprofPort   int      `env:"PPROF_PORT" envDefault:"6060"`
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	AppBaseURL  string   `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	// Database
	DBDriver        string        `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL     string        `env:"DATABASE_URL,notEmpty"`
	DBMaxIdle       int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBMaxOpen       int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxLifetime   time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	DBSchema        string        `env:"DB_SCHEMA" envDefault:"sovereign_chat"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	DBLogSQLQueries bool          `env:"DB_LOG_SQL" envDefault:"false"`

	// Identity provider
	IdentityMode        string        `env:"IDENTITY_MODE" envDefault:"session"`
	IdentityBaseURL     string        `env:"IDENTITY_BASE_URL"`
	IdentitySecretKey   string        `env:"IDENTITY_SECRET_KEY"`
	IdentityTimeout     time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"5s"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"__session"`
	JWKSURL             string        `env:"JWKS_URL"`
	Issuer              string        `env:"ISSUER"`
	Audience            string        `env:"AUDIENCE"`
	RefreshJWKSInterval time.Duration `env:"JWKS_REFRESH_INTERVAL" envDefault:"5m"`

	// Identity-provider id granted sovereign access.
	SovereignUserID string `env:"SOVEREIGN_USER_ID"`

	// Payment processor
	StripeSecretKey       string       `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret   string       `env:"STRIPE_WEBHOOK_SECRET"`
	StripePricePro        string       `env:"STRIPE_PRICE_PRO"`
	StripePriceEnterprise string       `env:"STRIPE_PRICE_ENTERPRISE"`
	CheckoutSuccessURL    string       `env:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL     string       `env:"CHECKOUT_CANCEL_URL"`
	PortalReturnURL       string       `env:"PORTAL_RETURN_URL"`
	UpgradePolicy         string       `env:"SUBSCRIPTION_UPGRADE_POLICY" envDefault:"free_only"`
	PlanCatalogFile       string       `env:"PLAN_CATALOG_FILE"`
	PlanCatalog           *PlanCatalog `env:"-"`

	// Inference backends
	InferencePrimaryURL       string        `env:"INFERENCE_PRIMARY_URL"`
	InferencePrimaryAPIKey    string        `env:"INFERENCE_PRIMARY_API_KEY"`
	InferencePrimaryModel     string        `env:"INFERENCE_PRIMARY_MODEL" envDefault:"gpt-4o-mini"`
	InferencePrimaryTimeout   time.Duration `env:"INFERENCE_PRIMARY_TIMEOUT" envDefault:"15s"`
	InferenceSecondaryURL     string        `env:"INFERENCE_SECONDARY_URL" envDefault:"http://localhost:11434/v1"`
	InferenceSecondaryAPIKey  string        `env:"INFERENCE_SECONDARY_API_KEY"`
	InferenceSecondaryModel   string        `env:"INFERENCE_SECONDARY_MODEL" envDefault:"llama3.1"`
	InferenceSecondaryTimeout time.Duration `env:"INFERENCE_SECONDARY_TIMEOUT" envDefault:"60s"`
	InferenceHealthTimeout    time.Duration `env:"INFERENCE_HEALTH_TIMEOUT" envDefault:"3s"`
	InferenceHealthInterval   int           `env:"INFERENCE_HEALTH_INTERVAL_MINUTES" envDefault:"1"`
	ChatHistoryLimit          int           `env:"CHAT_HISTORY_LIMIT" envDefault:"20"`
	ChatRateLimitPerMinute    float64       `env:"CHAT_RATE_LIMIT_PER_MINUTE" envDefault:"30"`

	// OAuth connections
	OAuthProvidersFile      string          `env:"OAUTH_PROVIDERS_FILE"`
	OAuthTokenEncryptionKey string          `env:"OAUTH_TOKEN_ENCRYPTION_KEY"`
	OAuthCallbackBaseURL    string          `env:"OAUTH_CALLBACK_BASE_URL" envDefault:"http://localhost:8080"`
	OAuthSuccessRedirectURL string          `env:"OAUTH_SUCCESS_REDIRECT_URL"`
	OAuthTimeout            time.Duration   `env:"OAUTH_TIMEOUT" envDefault:"10s"`
	OAuthProviders          []OAuthProvider `env:"-"`

	// Gallery trending policy
	TrendingWindow     time.Duration `env:"GALLERY_TRENDING_WINDOW" envDefault:"168h"`
	TrendingCandidates int           `env:"GALLERY_TRENDING_CANDIDATES" envDefault:"500"`
	TrendingLikeWeight float64       `env:"GALLERY_TRENDING_LIKE_WEIGHT" envDefault:"2"`
	TrendingViewWeight float64       `env:"GALLERY_TRENDING_VIEW_WEIGHT" envDefault:"1"`
	TrendingGravity    float64       `env:"GALLERY_TRENDING_GRAVITY" envDefault:"1.5"`
	TrendingCacheTTL   time.Duration `env:"GALLERY_TRENDING_CACHE_TTL" envDefault:"60s"`
	TrendingCacheSize  int           `env:"GALLERY_TRENDING_CACHE_SIZE" envDefault:"64"`
	RedisURL           string        `env:"REDIS_URL"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"sovereign-chat"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"sovereign"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`
	EnableSwagger    bool   `env:"ENABLE_SWAGGER" envDefault:"true"`

	EnvReloadedAt time.Time
}

// Load parses environment variables into Config, loads the YAML side files
// and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	globalConfig = cfg
	return cfg, nil
}

func (c *Config) finalize() error {
	c.IdentityMode = strings.ToLower(strings.TrimSpace(c.IdentityMode))
	c.UpgradePolicy = strings.ToLower(strings.TrimSpace(c.UpgradePolicy))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)

	if err := c.Validate(); err != nil {
		return err
	}

	catalog, err := LoadPlanCatalog(c.PlanCatalogFile)
	if err != nil {
		return fmt.Errorf("load plan catalog: %w", err)
	}
	catalog.OverridePrice(PlanPro, c.StripePricePro)
	catalog.OverridePrice(PlanEnterprise, c.StripePriceEnterprise)
	c.PlanCatalog = catalog

	if strings.TrimSpace(c.OAuthProvidersFile) != "" {
		providers, err := LoadOAuthProviders(c.OAuthProvidersFile)
		if err != nil {
			return fmt.Errorf("load oauth providers: %w", err)
		}
		c.OAuthProviders = providers
	}

	c.EnvReloadedAt = time.Now()
	return nil
}

// Validate checks cross-field requirements that env tags cannot express.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.IdentityMode {
	case IdentityModeSession:
		if c.IdentityBaseURL == "" {
			return errors.New("IDENTITY_BASE_URL is required when IDENTITY_MODE=session")
		}
		if _, err := url.ParseRequestURI(c.IdentityBaseURL); err != nil {
			return fmt.Errorf("invalid IDENTITY_BASE_URL: %w", err)
		}
	case IdentityModeJWT:
		if c.JWKSURL == "" || c.Issuer == "" {
			return errors.New("JWKS_URL and ISSUER are required when IDENTITY_MODE=jwt")
		}
		if _, err := url.ParseRequestURI(c.JWKSURL); err != nil {
			return fmt.Errorf("invalid JWKS_URL: %w", err)
		}
	default:
		return fmt.Errorf("unsupported IDENTITY_MODE %q", c.IdentityMode)
	}

	switch c.UpgradePolicy {
	case UpgradePolicyFreeOnly, UpgradePolicyAllowPlanChange:
	default:
		return fmt.Errorf("unsupported SUBSCRIPTION_UPGRADE_POLICY %q", c.UpgradePolicy)
	}

	if c.InferencePrimaryURL == "" && c.InferenceSecondaryURL == "" {
		return errors.New("at least one of INFERENCE_PRIMARY_URL or INFERENCE_SECONDARY_URL must be set")
	}
	if c.TrendingGravity < 0 {
		return errors.New("GALLERY_TRENDING_GRAVITY must not be negative")
	}
	return nil
}

// IsSovereign reports whether the identity-provider id is the designated sovereign user.
func (c *Config) IsSovereign(identityID string) bool {
	return c != nil && c.SovereignUserID != "" && identityID == c.SovereignUserID
}

// CheckoutURLs returns success/cancel URLs, defaulting to the app base URL.
func (c *Config) CheckoutURLs() (success, cancel string) {
	base := strings.TrimRight(c.AppBaseURL, "/")
	success = c.CheckoutSuccessURL
	if success == "" {
		success = base + "/billing?checkout=success"
	}
	cancel = c.CheckoutCancelURL
	if cancel == "" {
		cancel = base + "/billing?checkout=canceled"
	}
	return success, cancel
}

// PortalURL returns where the billing portal sends users back to.
func (c *Config) PortalURL() string {
	if c.PortalReturnURL != "" {
		return c.PortalReturnURL
	}
	return strings.TrimRight(c.AppBaseURL, "/") + "/billing"
}

// GetGlobal returns the config loaded by the last successful Load call.
func GetGlobal() *Config {
	return globalConfig
}

var Version = "dev"

func IsDev() bool {
	return strings.HasPrefix(Version, "dev")
}
