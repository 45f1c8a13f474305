package middlewares

import (
	"net"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/interfaces/httpserver/responses"
	"sovereign-chat/internal/utils/platformerrors"
)

// simple token bucket per key (principal or IP).
type rateBucket struct {
	tokens     float64
	lastRefill time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	limit   float64
	rate    float64
	now     func() time.Time
}

// RateLimitMiddleware allows limitPerMinute requests per caller, refilled
// continuously. A non-positive limit disables limiting.
func RateLimitMiddleware(limitPerMinute float64) gin.HandlerFunc {
	return newRateLimiter(limitPerMinute, time.Now).handle
}

func newRateLimiter(limitPerMinute float64, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		buckets: make(map[string]*rateBucket),
		limit:   limitPerMinute,
		rate:    limitPerMinute / 60.0,
		now:     now,
	}
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.limit <= 0 {
		c.Next()
		return
	}
	if !l.take(rateKey(c)) {
		c.Header("Retry-After", "60")
		responses.HandleNewError(c, platformerrors.ErrorTypeRateLimited, "too many requests", "5e6f7a8b-9c0d-4e1f-a2b3-c4d5e6f7a8b9")
		return
	}
	c.Next()
}

func (l *rateLimiter) take(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &rateBucket{tokens: l.limit, lastRefill: now}
		l.buckets[key] = bucket
	}

	elapsed := now.Sub(bucket.lastRefill).Seconds()
	bucket.tokens = min(l.limit, bucket.tokens+elapsed*l.rate)
	bucket.lastRefill = now

	if bucket.tokens < 1 {
		return false
	}
	bucket.tokens--
	return true
}

func rateKey(c *gin.Context) string {
	if principal, ok := PrincipalFromContext(c); ok && principal.ID != "" {
		return "pid:" + principal.ID
	}
	ip := clientIP(c.ClientIP())
	if ip != "" {
		return "ip:" + ip
	}
	return "anonymous"
}

// Normalize IPv6-mapped IPv4 etc.
func clientIP(raw string) string {
	if raw == "" {
		return ""
	}
	if ip := net.ParseIP(raw); ip != nil {
		return ip.String()
	}
	return raw
}
