package subscription

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sovereign-chat/internal/interfaces/httpserver/handlers/authhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/subscriptionhandler"
	subscriptionrequests "sovereign-chat/internal/interfaces/httpserver/requests/subscription"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	"sovereign-chat/internal/utils/platformerrors"
)

// maxWebhookBodyBytes caps webhook payloads read into memory.
const maxWebhookBodyBytes = 1 << 20

type SubscriptionRoute struct {
	handler     *subscriptionhandler.SubscriptionHandler
	authHandler *authhandler.AuthHandler
	logger      zerolog.Logger
}

func NewSubscriptionRoute(
	handler *subscriptionhandler.SubscriptionHandler,
	authHandler *authhandler.AuthHandler,
	logger zerolog.Logger,
) *SubscriptionRoute {
	return &SubscriptionRoute{
		handler:     handler,
		authHandler: authHandler,
		logger:      logger,
	}
}

func (route *SubscriptionRoute) RegisterRouter(router gin.IRouter) {
	subscriptions := router.Group("/subscription")
	subscriptions.GET("", route.authHandler.WithAppUserAuthChain(route.getSubscription)...)
	subscriptions.POST("/create", route.authHandler.WithAppUserAuthChain(route.createSubscription)...)
	subscriptions.POST("/portal", route.authHandler.WithAppUserAuthChain(route.createPortal)...)
}

// RegisterPublicRouter registers the signed webhook, which carries no session.
func (route *SubscriptionRoute) RegisterPublicRouter(router gin.IRouter) {
	router.POST("/subscription/webhook", route.webhook)
}

// getSubscription godoc
// @Summary Get the current subscription
// @Description Returns the plan, status and entitlements of the signed-in user's subscription.
// @Tags Subscription API
// @Security BearerAuth
// @Produce json
// @Success 200 {object} subscriptionresponses.SubscriptionResponse "Current subscription"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /api/subscription [get]
func (route *SubscriptionRoute) getSubscription(reqCtx *gin.Context) {
	user, _, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	resp, err := route.handler.GetSubscription(reqCtx.Request.Context(), user)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to load subscription")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// createSubscription godoc
// @Summary Start a checkout
// @Description Creates a payment-processor checkout session for a paid plan and marks the subscription INCOMPLETE until payment succeeds.
// @Description Rejected while an active paid subscription exists unless plan changes are enabled.
// @Tags Subscription API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body subscriptionrequests.CreateSubscriptionRequest true "Plan to purchase (PRO or ENTERPRISE)"
// @Success 200 {object} responses.URLResponse "Checkout URL"
// @Failure 400 {object} responses.ErrorResponse "Invalid plan or upgrade not allowed"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 500 {object} responses.ErrorResponse "Payment processor error"
// @Router /api/subscription/create [post]
func (route *SubscriptionRoute) createSubscription(reqCtx *gin.Context) {
	user, _, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	var req subscriptionrequests.CreateSubscriptionRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "plan is required", "6a5b4c3d-2e1f-4a0b-9c8d-7e6f5a4b3c2d")
		return
	}

	resp, err := route.handler.CreateCheckout(reqCtx.Request.Context(), user, req)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to create checkout session")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// createPortal godoc
// @Summary Open the billing portal
// @Description Creates a billing-portal session for users with a payment-processor customer.
// @Tags Subscription API
// @Security BearerAuth
// @Produce json
// @Success 200 {object} responses.URLResponse "Portal URL"
// @Failure 400 {object} responses.ErrorResponse "No billing account"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 500 {object} responses.ErrorResponse "Payment processor error"
// @Router /api/subscription/portal [post]
func (route *SubscriptionRoute) createPortal(reqCtx *gin.Context) {
	user, _, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	resp, err := route.handler.CreatePortal(reqCtx.Request.Context(), user)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to create portal session")
		return
	}
	reqCtx.JSON(http.StatusOK, resp)
}

// webhook godoc
// @Summary Payment-processor webhook
// @Description Verifies the Stripe-Signature header against the raw body and applies subscription state changes. Responds with an empty body.
// @Tags Subscription API
// @Accept json
// @Param Stripe-Signature header string true "Webhook signature"
// @Success 200 "Event processed or ignored"
// @Failure 400 "Invalid signature or payload"
// @Failure 500 "Processing failed"
// @Router /api/subscription/webhook [post]
func (route *SubscriptionRoute) webhook(reqCtx *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(reqCtx.Writer, reqCtx.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		route.logger.Warn().Err(err).Msg("failed to read webhook body")
		reqCtx.AbortWithStatus(http.StatusBadRequest)
		return
	}

	err = route.handler.HandleWebhook(reqCtx.Request.Context(), payload, reqCtx.GetHeader("Stripe-Signature"))
	switch {
	case err == nil:
		reqCtx.Status(http.StatusOK)
	case platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation):
		route.logger.Warn().Err(err).Msg("rejected webhook")
		reqCtx.AbortWithStatus(http.StatusBadRequest)
	default:
		route.logger.Error().Err(err).Msg("webhook processing failed")
		_ = reqCtx.Error(err)
		reqCtx.AbortWithStatus(http.StatusInternalServerError)
	}
}
