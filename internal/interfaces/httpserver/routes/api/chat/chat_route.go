package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/interfaces/httpserver/handlers/authhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/chathandler"
	"sovereign-chat/internal/interfaces/httpserver/middlewares"
	chatrequests "sovereign-chat/internal/interfaces/httpserver/requests/chat"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	"sovereign-chat/internal/utils/platformerrors"
)

type ChatRoute struct {
	chatHandler *chathandler.ChatHandler
	authHandler *authhandler.AuthHandler
	rateLimit   gin.HandlerFunc
}

func NewChatRoute(
	chatHandler *chathandler.ChatHandler,
	authHandler *authhandler.AuthHandler,
	cfg *config.Config,
) *ChatRoute {
	return &ChatRoute{
		chatHandler: chatHandler,
		authHandler: authHandler,
		rateLimit:   middlewares.RateLimitMiddleware(cfg.ChatRateLimitPerMinute),
	}
}

func (chatRoute *ChatRoute) RegisterRouter(router gin.IRouter) {
	ai := router.Group("/ai")
	ai.POST("/chat", chatRoute.authHandler.WithAppUserAuthChain(chatRoute.rateLimit, chatRoute.postChat)...)
	ai.GET("/health", chatRoute.authHandler.WithAppUserAuthChain(chatRoute.getHealth)...)
}

// postChat godoc
// @Summary Send a chat message
// @Description Stores the user message, runs the completion on the primary inference backend and falls back once to the secondary backend on timeout or error.
// @Description The reply is stored with the backend that produced it, reported as `source` ("primary" or "fallback").
// @Description Omit conversation_id to start a new conversation titled from the message.
// @Tags Chat API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body chatrequests.ChatRequest true "Chat message"
// @Success 200 {object} chatresponses.ChatResponse "Assistant reply"
// @Failure 400 {object} responses.ErrorResponse "Invalid request"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 403 {object} responses.ErrorResponse "Quota exceeded, model not in plan or conversation not owned"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Failure 429 {object} responses.ErrorResponse "Too many requests"
// @Failure 500 {object} responses.ErrorResponse "Both inference backends failed"
// @Router /api/ai/chat [post]
func (chatRoute *ChatRoute) postChat(reqCtx *gin.Context) {
	user, _, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	var request chatrequests.ChatRequest
	if err := reqCtx.ShouldBindJSON(&request); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid chat request: "+err.Error(), "cf237451-8932-48d1-9cf6-42c4db2d4805")
		return
	}

	resp, err := chatRoute.chatHandler.Send(reqCtx.Request.Context(), user, request)
	if err != nil {
		responses.HandleError(reqCtx, err, "Chat request failed")
		return
	}
	reqCtx.Set("model", resp.Message.Model)
	reqCtx.JSON(http.StatusOK, resp)
}

// getHealth godoc
// @Summary Inference backend health
// @Description Probes the primary and fallback inference backends.
// @Tags Chat API
// @Security BearerAuth
// @Produce json
// @Success 200 {object} chatresponses.HealthResponse "Backend health"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Router /api/ai/health [get]
func (chatRoute *ChatRoute) getHealth(reqCtx *gin.Context) {
	reqCtx.JSON(http.StatusOK, chatRoute.chatHandler.Health(reqCtx.Request.Context()))
}
