package api_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v72"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/chat"
	"sovereign-chat/internal/domain/conversation"
	"sovereign-chat/internal/domain/gallery"
	"sovereign-chat/internal/domain/message"
	"sovereign-chat/internal/domain/oauthconnection"
	"sovereign-chat/internal/domain/subscription"
	"sovereign-chat/internal/domain/usage"
	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/infrastructure/billing"
	"sovereign-chat/internal/infrastructure/cache"
	"sovereign-chat/internal/infrastructure/database/databasetest"
	"sovereign-chat/internal/infrastructure/database/dbschema"
	"sovereign-chat/internal/infrastructure/database/repository/conversationrepo"
	"sovereign-chat/internal/infrastructure/database/repository/messagerepo"
	"sovereign-chat/internal/infrastructure/database/repository/oauthconnectionrepo"
	"sovereign-chat/internal/infrastructure/database/repository/subscriptionrepo"
	"sovereign-chat/internal/infrastructure/database/repository/userrepo"
	"sovereign-chat/internal/infrastructure/database/transaction"
	"sovereign-chat/internal/infrastructure/oauthprovider"
	"sovereign-chat/internal/interfaces/httpserver/handlers/authhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/chathandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/connectionhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/conversationhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/galleryhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/sharehandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/subscriptionhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/usagehandler"
	middleware "sovereign-chat/internal/interfaces/httpserver/middlewares"
	"sovereign-chat/internal/interfaces/httpserver/routes/api"
	"sovereign-chat/internal/interfaces/httpserver/routes/api/account"
	chatroute "sovereign-chat/internal/interfaces/httpserver/routes/api/chat"
	"sovereign-chat/internal/interfaces/httpserver/routes/api/connection"
	conversationroute "sovereign-chat/internal/interfaces/httpserver/routes/api/conversation"
	subscriptionroute "sovereign-chat/internal/interfaces/httpserver/routes/api/subscription"
	"sovereign-chat/internal/interfaces/httpserver/routes/public"
	"sovereign-chat/internal/utils/crypto"
	"sovereign-chat/internal/utils/platformerrors"
)

const testWebhookSecret = "whsec_route_test"

type fakeVerifier map[string]user.Identity

func (f fakeVerifier) Verify(ctx context.Context, token string) (*user.Identity, error) {
	identity, ok := f[token]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized, "invalid session", nil, "")
	}
	return &identity, nil
}

// testGateway verifies webhooks with the real Stripe signature check but
// never calls the Stripe API.
type testGateway struct {
	*billing.StripeGateway
	checkouts []subscription.CheckoutInput
}

func (g *testGateway) CreateCustomer(context.Context, subscription.CustomerInput) (string, error) {
	return "cus_route", nil
}

func (g *testGateway) CreateCheckoutSession(_ context.Context, input subscription.CheckoutInput) (*subscription.CheckoutSession, error) {
	g.checkouts = append(g.checkouts, input)
	return &subscription.CheckoutSession{ID: "cs_route", URL: "https://checkout.test/cs_route"}, nil
}

func (g *testGateway) CreatePortalSession(context.Context, string, string) (string, error) {
	return "https://billing.test/portal", nil
}

type stubCompleter struct {
	err error
}

func (s stubCompleter) Complete(_ context.Context, req chat.CompletionRequest) (*chat.CompletionResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &chat.CompletionResult{
		Content:          "hello back",
		Model:            "test-model",
		Source:           chat.SourcePrimary,
		PromptTokens:     len(req.Messages),
		CompletionTokens: 2,
	}, nil
}

type stubHealth struct{}

func (stubHealth) Check(context.Context) chat.HealthReport {
	return chat.HealthReport{Primary: chat.BackendHealth{Configured: true, Healthy: true}, CheckedAt: time.Now()}
}

type testServer struct {
	engine  *gin.Engine
	gateway *testGateway
	db      *transaction.Database
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := databasetest.NewSQLite(t)
	catalog := config.DefaultPlanCatalog()
	catalog.OverridePrice(config.PlanPro, "price_pro")
	cfg := &config.Config{
		SessionCookieName:    "__session",
		OAuthCallbackBaseURL: "http://localhost:8080",
		UpgradePolicy:        config.UpgradePolicyFreeOnly,
		PlanCatalog:          catalog,
	}
	logger := zerolog.Nop()

	gateway := &testGateway{StripeGateway: billing.NewStripeGatewayWithBackends("sk_test_route", testWebhookSecret, nil)}
	subscriptionService := subscription.NewService(subscriptionrepo.NewSubscriptionGormRepository(db), gateway, subscription.Config{
		UpgradePolicy:   cfg.UpgradePolicy,
		SuccessURL:      "http://app.test/billing?checkout=success",
		CancelURL:       "http://app.test/billing?checkout=canceled",
		PortalReturnURL: "http://app.test/billing",
		Catalog:         catalog,
	})
	userService := user.NewService(userrepo.NewUserGormRepository(db), subscriptionService, user.Config{})
	messageService := message.NewService(messagerepo.NewMessageGormRepository(db))
	conversationService := conversation.NewConversationService(conversationrepo.NewConversationGormRepository(db), messageService)
	usageService := usage.NewService(subscriptionService, messageService, catalog)

	rankingCache, err := cache.NewLRURankingCache(8)
	require.NoError(t, err)
	galleryService := gallery.NewService(conversationService, rankingCache, gallery.Config{
		TrendingWindow: 24 * time.Hour,
		Candidates:     50,
		LikeWeight:     2,
		ViewWeight:     1,
		Gravity:        1.5,
		CacheTTL:       time.Minute,
	})
	chatService := chat.NewService(conversationService, messageService, usageService, stubCompleter{}, stubHealth{}, chat.Config{HistoryLimit: 20})

	cipher, err := crypto.NewTokenCipher("route-test-secret")
	require.NoError(t, err)
	connectionService := oauthconnection.NewService(
		oauthconnectionrepo.NewOAuthConnectionGormRepository(db, cipher),
		oauthprovider.NewClientWithProviders(nil, time.Second),
		oauthconnection.Config{CallbackBaseURL: cfg.OAuthCallbackBaseURL},
	)

	verifier := fakeVerifier{
		"alice-token": {ID: "idp_alice", Email: "alice@example.com", Name: "Alice"},
		"bob-token":   {ID: "idp_bob", Email: "bob@example.com", Name: "Bob"},
	}
	authHandler := authhandler.NewAuthHandler(userService, verifier, cfg, logger)
	subscriptionHandler := subscriptionhandler.NewSubscriptionHandler(subscriptionService)
	shareHandler := sharehandler.NewShareHandler(conversationService, messageService)

	apiRoute := api.NewAPIRoute(
		account.NewAccountRoute(subscriptionHandler, usagehandler.NewUsageHandler(usageService), galleryhandler.NewGalleryHandler(galleryService), authHandler),
		subscriptionroute.NewSubscriptionRoute(subscriptionHandler, authHandler, logger),
		chatroute.NewChatRoute(chathandler.NewChatHandler(chatService), authHandler, cfg),
		conversationroute.NewConversationRoute(conversationhandler.NewConversationHandler(conversationService, messageService), shareHandler, authHandler),
		connection.NewConnectionRoute(connectionhandler.NewConnectionHandler(connectionService), authHandler, cfg),
		public.NewPublicShareRoute(shareHandler),
	)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	apiRoute.RegisterRouter(engine)
	return &testServer{engine: engine, gateway: gateway, db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) createConversation(t *testing.T, token string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/conversations", token, map[string]string{"title": "Trip planning"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)["id"].(string)
}

func signPayload(t *testing.T, payload []byte) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	_, err := mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	require.NoError(t, err)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func subscriptionEvent(customerID, status string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_route","object":"event","api_version":%q,"type":%q,"data":{"object":{
		"id":"sub_route","object":"subscription","customer":%q,"status":%q,"current_period_end":1767225600,
		"items":{"object":"list","data":[{"id":"si_1","object":"subscription_item","price":{"id":"price_pro","object":"price"}}]}}}}`,
		stripe.APIVersion, subscription.EventSubscriptionUpdated, customerID, status))
}

func (s *testServer) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.GetTx(context.Background()).Model(model).Count(&n).Error)
	return n
}

func TestAuthenticatedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	routes := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/me", nil},
		{http.MethodGet, "/api/usage", nil},
		{http.MethodGet, "/api/gallery", nil},
		{http.MethodGet, "/api/subscription", nil},
		{http.MethodPost, "/api/subscription/create", map[string]string{"plan": "PRO"}},
		{http.MethodPost, "/api/subscription/portal", nil},
		{http.MethodPost, "/api/ai/chat", map[string]string{"message": "hi"}},
		{http.MethodGet, "/api/ai/health", nil},
		{http.MethodGet, "/api/conversations", nil},
		{http.MethodPost, "/api/conversations", map[string]string{"title": "x"}},
		{http.MethodGet, "/api/conversations/conv_1", nil},
		{http.MethodPatch, "/api/conversations/conv_1", map[string]string{"title": "y"}},
		{http.MethodDelete, "/api/conversations/conv_1", nil},
		{http.MethodPost, "/api/conversations/conv_1/share", nil},
		{http.MethodDelete, "/api/conversations/conv_1/share", nil},
		{http.MethodPost, "/api/conversations/conv_1/like", nil},
		{http.MethodGet, "/api/conversations/conv_1/messages", nil},
		{http.MethodPost, "/api/conversations/conv_1/messages", map[string]string{"role": "user", "content": "hi"}},
		{http.MethodGet, "/api/connections", nil},
		{http.MethodDelete, "/api/connections/conn_1", nil},
		{http.MethodGet, "/api/oauth/github/authorize", nil},
		{http.MethodGet, "/api/oauth/github/callback?code=abc&state=xyz", nil},
	}

	for _, rt := range routes {
		for _, token := range []string{"", "unknown-token"} {
			t.Run(rt.method+" "+rt.path+" token="+token, func(t *testing.T) {
				w := s.do(t, rt.method, rt.path, token, rt.body)
				assert.Equal(t, http.StatusUnauthorized, w.Code)
				assert.NotEmpty(t, decode[map[string]any](t, w)["error"])
			})
		}
	}

	assert.Zero(t, s.countRows(t, &dbschema.User{}))
	assert.Zero(t, s.countRows(t, &dbschema.Subscription{}))
	assert.Zero(t, s.countRows(t, &dbschema.Conversation{}))
	assert.Zero(t, s.countRows(t, &dbschema.Message{}))
	assert.Empty(t, s.gateway.checkouts)
}

func TestSessionCookieAuthenticates(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: "alice-token"})
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, "alice@example.com", body["user"].(map[string]any)["email"])
	assert.Equal(t, "FREE", body["subscription"].(map[string]any)["plan"])
}

func TestForeignConversationIsForbidden(t *testing.T) {
	s := newTestServer(t)
	id := s.createConversation(t, "alice-token")

	w := s.do(t, http.MethodGet, "/api/conversations/"+id, "bob-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodDelete, "/api/conversations/"+id, "bob-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/conversations/"+id, "alice-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateConversationWithoutBodyUsesDefaultTitle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/conversations", "alice-token", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, conversation.DefaultTitle, decode[map[string]any](t, w)["title"])
}

func TestListConversationsValidatesPagination(t *testing.T) {
	s := newTestServer(t)
	s.createConversation(t, "alice-token")

	w := s.do(t, http.MethodGet, "/api/conversations?limit=0", "alice-token", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/conversations?sort=bogus", "alice-token", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/conversations?order=sideways", "alice-token", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/conversations?limit=1&sort=title&order=asc", "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 1, body["limit"])
	assert.Equal(t, false, body["has_more"])
}

func TestChatCreatesConversationAndReportsSource(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/ai/chat", "alice-token", map[string]any{"message": "Hello there"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, chat.SourcePrimary, body["source"])
	assert.Equal(t, "hello back", body["message"].(map[string]any)["content"])
	conversationID := body["conversation_id"].(string)
	require.NotEmpty(t, conversationID)

	w = s.do(t, http.MethodGet, "/api/conversations/"+conversationID+"/messages", "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	messages := decode[map[string]any](t, w)
	assert.EqualValues(t, 2, messages["total"])
	data := messages["data"].([]any)
	assert.Equal(t, "user", data[0].(map[string]any)["role"])
	assert.Equal(t, "assistant", data[1].(map[string]any)["role"])

	w = s.do(t, http.MethodPost, "/api/ai/chat", "bob-token", map[string]any{"conversation_id": conversationID, "message": "mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestChatRejectsInvalidBody(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/ai/chat", "alice-token", map[string]any{"model": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/ai/chat", "alice-token", map[string]any{"message": "hi", "temperature": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := s.createConversation(t, "alice-token")

	w := s.do(t, http.MethodPost, "/api/conversations/"+id+"/messages", "alice-token", map[string]string{"role": "user", "content": "public hello"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/conversations/"+id+"/like", "bob-token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "private conversations cannot be liked")

	w = s.do(t, http.MethodPost, "/api/conversations/"+id+"/share", "bob-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, "/api/conversations/"+id+"/share", "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	share := decode[map[string]any](t, w)
	assert.Equal(t, true, share["is_public"])
	shareID := share["share_id"].(string)
	assert.Equal(t, "/api/share/"+shareID, share["share_path"])

	w = s.do(t, http.MethodGet, "/api/share/"+shareID, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	shared := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, shared["total"])
	assert.Equal(t, "public hello", shared["messages"].([]any)[0].(map[string]any)["content"])

	w = s.do(t, http.MethodPost, "/api/conversations/"+id+"/like", "bob-token", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["like_count"])

	w = s.do(t, http.MethodDelete, "/api/conversations/"+id+"/share", "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, decode[map[string]any](t, w)["is_public"])

	w = s.do(t, http.MethodGet, "/api/share/"+shareID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckoutAndWebhookActivateSubscription(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/subscription/create", "alice-token", map[string]string{"plan": "pro"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "https://checkout.test/cs_route", decode[map[string]any](t, w)["url"])
	require.Len(t, s.gateway.checkouts, 1)
	assert.Equal(t, "price_pro", s.gateway.checkouts[0].PriceID)

	w = s.do(t, http.MethodGet, "/api/subscription", "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sub := decode[map[string]any](t, w)
	assert.Equal(t, "INCOMPLETE", sub["status"])
	assert.Equal(t, "FREE", sub["effective_plan"])

	payload := subscriptionEvent("cus_route", "active")
	req := httptest.NewRequest(http.MethodPost, "/api/subscription/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(t, payload))
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/subscription", "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sub = decode[map[string]any](t, w)
	assert.Equal(t, "ACTIVE", sub["status"])
	assert.Equal(t, "PRO", sub["plan"])
	assert.Equal(t, "PRO", sub["effective_plan"])

	w = s.do(t, http.MethodPost, "/api/subscription/create", "alice-token", map[string]string{"plan": "PRO"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "active paid subscriptions cannot check out again")
}

func TestWebhookSignatureAndUnknownCustomer(t *testing.T) {
	s := newTestServer(t)
	payload := subscriptionEvent("cus_nobody", "active")

	req := httptest.NewRequest(http.MethodPost, "/api/subscription/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/subscription/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(t, payload))
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckoutRejectsUnpurchasablePlan(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/subscription/create", "alice-token", map[string]string{"plan": "ENTERPRISE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/subscription/create", "alice-token", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.gateway.checkouts)
}

func TestUsageAndGallery(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/ai/chat", "alice-token", map[string]any{"message": "count me"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/usage", "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, report["messages_used"])
	assert.EqualValues(t, 50, report["messages_limit"])
	assert.EqualValues(t, 49, report["messages_remaining"])

	w = s.do(t, http.MethodGet, "/api/gallery?sort=trending", "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["total"])

	w = s.do(t, http.MethodGet, "/api/gallery?sort=loudest", "alice-token", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListConnectionsStartsEmpty(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/connections", "alice-token", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode[map[string]any](t, w)["data"])

	w = s.do(t, http.MethodGet, "/api/oauth/github/authorize", "alice-token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "unconfigured providers are rejected")
}
