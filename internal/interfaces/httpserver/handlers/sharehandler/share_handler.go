package sharehandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/domain/conversation"
	"sovereign-chat/internal/domain/message"
	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/infrastructure/metrics"
	"sovereign-chat/internal/interfaces/httpserver/handlers/authhandler"
	"sovereign-chat/internal/interfaces/httpserver/requests"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	conversationresponses "sovereign-chat/internal/interfaces/httpserver/responses/conversation"
	shareresponses "sovereign-chat/internal/interfaces/httpserver/responses/share"
	"sovereign-chat/internal/utils/platformerrors"
)

// ShareHandler handles share-related HTTP requests
type ShareHandler struct {
	conversationService *conversation.ConversationService
	messageService      *message.Service
}

// NewShareHandler creates a new share handler
func NewShareHandler(
	conversationService *conversation.ConversationService,
	messageService *message.Service,
) *ShareHandler {
	return &ShareHandler{
		conversationService: conversationService,
		messageService:      messageService,
	}
}

// CreateShare handles POST /api/conversations/:conversation_id/share
// @Summary Share a conversation
// @Description Makes an owned conversation public and assigns a unique share id. Sharing twice returns the existing share.
// @Tags Shares API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation public ID"
// @Success 200 {object} shareresponses.ShareResponse "Conversation shared"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Failure 403 {object} responses.ErrorResponse "Forbidden"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Router /api/conversations/{conversation_id}/share [post]
func (h *ShareHandler) CreateShare(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	conv, err := h.conversationService.ShareConversation(reqCtx.Request.Context(), actor, reqCtx.Param("conversation_id"))
	if err != nil {
		metrics.RecordShare("create", "error")
		responses.HandleError(reqCtx, err, "Failed to share conversation")
		return
	}
	metrics.RecordShare("create", "ok")
	reqCtx.JSON(http.StatusOK, shareresponses.NewShareResponse(conv))
}

// RevokeShare handles DELETE /api/conversations/:conversation_id/share
// @Summary Unshare a conversation
// @Description Makes an owned conversation private and clears its share id.
// @Tags Shares API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation public ID"
// @Success 200 {object} shareresponses.ShareResponse "Conversation is private"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Failure 403 {object} responses.ErrorResponse "Forbidden"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Router /api/conversations/{conversation_id}/share [delete]
func (h *ShareHandler) RevokeShare(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	conv, err := h.conversationService.UnshareConversation(reqCtx.Request.Context(), actor, reqCtx.Param("conversation_id"))
	if err != nil {
		metrics.RecordShare("revoke", "error")
		responses.HandleError(reqCtx, err, "Failed to unshare conversation")
		return
	}
	metrics.RecordShare("revoke", "ok")
	reqCtx.JSON(http.StatusOK, shareresponses.NewShareResponse(conv))
}

// LikeConversation handles POST /api/conversations/:conversation_id/like
// @Summary Like a public conversation
// @Description Increments the like counter. Any signed-in user may like a public conversation; private ones are reported as missing.
// @Tags Shares API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation public ID"
// @Success 200 {object} shareresponses.LikeResponse "Like recorded"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Router /api/conversations/{conversation_id}/like [post]
func (h *ShareHandler) LikeConversation(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	conv, err := h.conversationService.LikeConversation(reqCtx.Request.Context(), actor, reqCtx.Param("conversation_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to like conversation")
		return
	}
	metrics.RecordShare("like", "ok")
	reqCtx.JSON(http.StatusOK, shareresponses.NewLikeResponse(conv))
}

// GetPublicShare handles GET /api/share/:share_id
// @Summary Read a shared conversation
// @Description Public read of a shared conversation and its messages in creation order. Each read counts as a view.
// @Tags Shares API
// @Produce json
// @Param share_id path string true "Share ID"
// @Param limit query int false "Maximum number of messages (default 20, max 100)"
// @Param offset query int false "Number of messages to skip"
// @Param order query string false "Message order (asc or desc, default asc)"
// @Success 200 {object} conversationresponses.SharedConversationResponse "Shared conversation"
// @Failure 400 {object} responses.ErrorResponse "Invalid request parameters"
// @Failure 404 {object} responses.ErrorResponse "Share not found"
// @Router /api/share/{share_id} [get]
func (h *ShareHandler) GetPublicShare(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	pagination, err := requests.GetPaginationFromQuery(reqCtx, query.OrderAsc)
	if err != nil {
		responses.HandleError(reqCtx, err, "Invalid pagination")
		return
	}

	conv, err := h.conversationService.GetSharedConversation(ctx, reqCtx.Param("share_id"))
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			metrics.RecordPublicShareRequest("not_found")
		} else {
			metrics.RecordPublicShareRequest("error")
		}
		responses.HandleError(reqCtx, err, "Failed to load shared conversation")
		return
	}

	page, err := h.messageService.List(ctx, conv.ID, pagination)
	if err != nil {
		metrics.RecordPublicShareRequest("error")
		responses.HandleError(reqCtx, err, "Failed to load shared messages")
		return
	}
	metrics.RecordPublicShareRequest("ok")
	reqCtx.JSON(http.StatusOK, conversationresponses.NewSharedConversationResponse(conv, page))
}
