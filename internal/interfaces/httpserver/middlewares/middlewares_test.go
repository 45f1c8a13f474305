package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain"
	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/utils/platformerrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticVerifier struct {
	token string
	err   error
}

func (v staticVerifier) Verify(ctx context.Context, token string) (*user.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	if token != v.token {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized, "invalid session", nil, "")
	}
	return &user.Identity{ID: "idp_1", Email: "a@example.com"}, nil
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := newRateLimiter(2, func() time.Time { return now })

	assert.True(t, limiter.take("pid:a"))
	assert.True(t, limiter.take("pid:a"))
	assert.False(t, limiter.take("pid:a"))
	assert.True(t, limiter.take("pid:b"), "buckets are per key")

	now = now.Add(30 * time.Second)
	assert.True(t, limiter.take("pid:a"))
	assert.False(t, limiter.take("pid:a"))

	now = now.Add(10 * time.Minute)
	assert.True(t, limiter.take("pid:a"))
	assert.True(t, limiter.take("pid:a"))
	assert.False(t, limiter.take("pid:a"), "refill is capped at the limit")
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	engine := gin.New()
	engine.GET("/limited", RateLimitMiddleware(1), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestRateLimitDisabled(t *testing.T) {
	engine := gin.New()
	engine.GET("/open", RateLimitMiddleware(0), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	var fromCtx string
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/id", func(c *gin.Context) {
		fromCtx, _ = c.Request.Context().Value(platformerrors.RequestIDKey{}).(string)
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	generated := w.Header().Get("X-Request-Id")
	require.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())
	assert.Equal(t, generated, fromCtx)

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-Id", "client-supplied")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "client-supplied", w.Header().Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-Id", strings.Repeat("x", 200))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get("X-Request-Id"), 36, "oversized ids are replaced")
}

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	engine := gin.New()
	engine.Use(CORSMiddleware([]string{"https://app.example.com/"}))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{IdentityMode: config.IdentityModeSession, SessionCookieName: "__session"}

	newEngine := func(v staticVerifier) *gin.Engine {
		engine := gin.New()
		engine.GET("/me", AuthMiddleware(v, cfg, zerolog.Nop()), func(c *gin.Context) {
			principal, ok := PrincipalFromContext(c)
			if !ok || principal.AuthMethod != domain.AuthMethodSession {
				c.Status(http.StatusTeapot)
				return
			}
			c.String(http.StatusOK, principal.ID)
		})
		return engine
	}

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		newEngine(staticVerifier{token: "good"}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		newEngine(staticVerifier{token: "good"}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "idp_1", w.Body.String())
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "__session", Value: "good"})
		w := httptest.NewRecorder()
		newEngine(staticVerifier{token: "good"}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer bad")
		w := httptest.NewRecorder()
		newEngine(staticVerifier{token: "good"}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("provider outage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		outage := platformerrors.NewError(context.Background(), platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "identity provider unavailable", nil, "")
		newEngine(staticVerifier{err: outage}).ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	engine := gin.New()
	engine.Use(RecoveryMiddleware(zerolog.Nop()))
	engine.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}
