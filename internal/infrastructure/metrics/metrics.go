package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "sovereign"
	subsystem = "chat_api"
)

// Sovereign chat API metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Token counters
	TokensPromptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens_prompt_total",
			Help:      "Total prompt tokens consumed",
		},
		[]string{"model", "source"},
	)

	TokensCompletionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens_completion_total",
			Help:      "Total completion tokens generated",
		},
		[]string{"model", "source"},
	)

	// Inference backend calls by outcome
	InferenceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "inference_requests_total",
			Help:      "Inference backend calls by backend and outcome",
		},
		[]string{"source", "outcome"},
	)

	// Completions served by the secondary backend
	InferenceFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "inference_fallback_total",
			Help:      "Completions that fell back to the secondary backend",
		},
	)

	// LLM inference duration
	LLMDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "llm_duration_seconds",
			Help:      "LLM inference duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"source"},
	)

	// Backend health gauge
	BackendHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "inference_backend_health",
			Help:      "Inference backend health status (1=healthy, 0=unhealthy)",
		},
		[]string{"backend"},
	)

	// Auth requests
	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_requests_total",
			Help:      "Total authentication requests",
		},
		[]string{"auth_type", "status"},
	)

	// Billing
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "billing_webhook_events_total",
			Help:      "Payment webhook deliveries by outcome",
		},
		[]string{"outcome"},
	)

	CheckoutSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkout_sessions_total",
			Help:      "Checkout sessions created per plan",
		},
		[]string{"plan"},
	)

	// Sharing metrics
	SharesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "shares_total",
			Help:      "Share create/revoke attempts",
		},
		[]string{"action", "status"},
	)

	PublicShareRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "public_share_requests_total",
			Help:      "Public share fetch requests",
		},
		[]string{"status"},
	)

	// Gallery ranking cache
	RankingCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ranking_cache_total",
			Help:      "Trending ranking cache lookups",
		},
		[]string{"backend", "result"},
	)

	// User agent metrics (normalized to keep low cardinality)
	UserAgentFamilyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "user_agent_family_total",
			Help:      "Requests by user agent family (browser/cli/sdk/unknown)",
		},
		[]string{"family"},
	)
)

// RecordRequest records an HTTP request with all relevant labels
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint, status).Observe(durationSec)
}

// RecordTokens records token usage for a completion request
func RecordTokens(model, source string, promptTokens, completionTokens int) {
	TokensPromptTotal.WithLabelValues(model, source).Add(float64(promptTokens))
	TokensCompletionTotal.WithLabelValues(model, source).Add(float64(completionTokens))
}

// RecordInference records one backend call
func RecordInference(source string, ok bool, durationSec float64) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	InferenceRequestsTotal.WithLabelValues(source, outcome).Inc()
	LLMDuration.WithLabelValues(source).Observe(durationSec)
}

// SetBackendHealth sets the health status of an inference backend
func SetBackendHealth(backend string, healthy bool) {
	val := 0.0
	if healthy {
		val = 1.0
	}
	BackendHealth.WithLabelValues(backend).Set(val)
}

// RecordAuth records an authentication attempt
func RecordAuth(authType string, ok bool) {
	status := "success"
	if !ok {
		status = "failure"
	}
	AuthRequestsTotal.WithLabelValues(authType, status).Inc()
}

// RecordWebhook records a billing webhook outcome (processed, rejected, error)
func RecordWebhook(outcome string) {
	WebhookEventsTotal.WithLabelValues(outcome).Inc()
}

// RecordCheckoutSession counts a created checkout session
func RecordCheckoutSession(plan string) {
	if plan == "" {
		plan = "unknown"
	}
	CheckoutSessionsTotal.WithLabelValues(plan).Inc()
}

// RecordShare records a share create/revoke attempt
func RecordShare(action, status string) {
	if action == "" {
		action = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	SharesTotal.WithLabelValues(action, status).Inc()
}

// RecordPublicShareRequest records a public share read
func RecordPublicShareRequest(status string) {
	if status == "" {
		status = "unknown"
	}
	PublicShareRequestsTotal.WithLabelValues(status).Inc()
}

// RecordRankingCache records a ranking cache lookup
func RecordRankingCache(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	RankingCacheTotal.WithLabelValues(backend, result).Inc()
}

// RecordUserAgent records UA family metrics
func RecordUserAgent(ua string) {
	UserAgentFamilyTotal.WithLabelValues(userAgentFamily(normalizeUserAgent(ua))).Inc()
}

func normalizeUserAgent(ua string) string {
	ua = strings.TrimSpace(strings.ToLower(ua))
	if ua == "" {
		return "unknown"
	}
	parts := strings.Fields(ua)
	norm := parts[0]
	if len(norm) > 60 {
		norm = norm[:60]
	}
	return norm
}

func userAgentFamily(normUA string) string {
	switch {
	case strings.Contains(normUA, "mozilla") || strings.Contains(normUA, "chrome") || strings.Contains(normUA, "safari") || strings.Contains(normUA, "firefox") || strings.Contains(normUA, "edge"):
		return "browser"
	case strings.Contains(normUA, "curl") || strings.Contains(normUA, "wget") || strings.Contains(normUA, "httpie"):
		return "cli"
	case strings.Contains(normUA, "postman") || strings.Contains(normUA, "insomnia"):
		return "api_client"
	case strings.Contains(normUA, "okhttp") || strings.Contains(normUA, "cfnetwork"):
		return "mobile"
	case strings.Contains(normUA, "axios") || strings.Contains(normUA, "fetch") || strings.Contains(normUA, "python-requests") || strings.Contains(normUA, "go-http-client") || strings.Contains(normUA, "java"):
		return "sdk"
	default:
		return "unknown"
	}
}
