package conversation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/interfaces/httpserver/handlers/authhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/conversationhandler"
	"sovereign-chat/internal/interfaces/httpserver/handlers/sharehandler"
	"sovereign-chat/internal/interfaces/httpserver/requests"
	conversationrequests "sovereign-chat/internal/interfaces/httpserver/requests/conversation"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	"sovereign-chat/internal/utils/platformerrors"
)

type ConversationRoute struct {
	handler      *conversationhandler.ConversationHandler
	shareHandler *sharehandler.ShareHandler
	authHandler  *authhandler.AuthHandler
}

func NewConversationRoute(
	handler *conversationhandler.ConversationHandler,
	shareHandler *sharehandler.ShareHandler,
	authHandler *authhandler.AuthHandler,
) *ConversationRoute {
	return &ConversationRoute{
		handler:      handler,
		shareHandler: shareHandler,
		authHandler:  authHandler,
	}
}

func (route *ConversationRoute) RegisterRouter(router gin.IRouter) {
	conversations := router.Group("/conversations")
	conversations.GET("", route.authHandler.WithAppUserAuthChain(route.listConversations)...)
	conversations.POST("", route.authHandler.WithAppUserAuthChain(route.createConversation)...)
	conversations.GET("/:conversation_id", route.authHandler.WithAppUserAuthChain(route.getConversation)...)
	conversations.PATCH("/:conversation_id", route.authHandler.WithAppUserAuthChain(route.updateConversation)...)
	conversations.DELETE("/:conversation_id", route.authHandler.WithAppUserAuthChain(route.deleteConversation)...)
	conversations.POST("/:conversation_id/share", route.authHandler.WithAppUserAuthChain(route.shareHandler.CreateShare)...)
	conversations.DELETE("/:conversation_id/share", route.authHandler.WithAppUserAuthChain(route.shareHandler.RevokeShare)...)
	conversations.POST("/:conversation_id/like", route.authHandler.WithAppUserAuthChain(route.shareHandler.LikeConversation)...)
	conversations.GET("/:conversation_id/messages", route.authHandler.WithAppUserAuthChain(route.listMessages)...)
	conversations.POST("/:conversation_id/messages", route.authHandler.WithAppUserAuthChain(route.appendMessage)...)
}

// listConversations godoc
// @Summary List conversations
// @Description List the signed-in user's conversations, pinned first.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param archived query bool false "List archived conversations instead of active ones"
// @Param limit query int false "Maximum number of conversations (default 20, max 100)"
// @Param offset query int false "Number of conversations to skip"
// @Param sort query string false "updated_at, created_at, title or last_message_at (default updated_at)"
// @Param order query string false "Sort order (asc or desc, default desc)"
// @Success 200 {object} responses.ListResponse[conversationresponses.ConversationResponse] "Successfully retrieved conversations"
// @Failure 400 {object} responses.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /api/conversations [get]
func (route *ConversationRoute) listConversations(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	var params conversationrequests.ListConversationsQueryParams
	if err := reqCtx.ShouldBindQuery(&params); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid query parameters", "f8a3d4e2-6b9c-4d7e-a1f3-2c5e8d9f0b4a")
		return
	}
	pagination, err := requests.GetPaginationFromQuery(reqCtx, query.OrderDesc)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to process pagination")
		return
	}

	response, err := route.handler.ListConversations(reqCtx.Request.Context(), actor, params.Archived, pagination)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list conversations")
		return
	}
	reqCtx.JSON(http.StatusOK, response)
}

// createConversation godoc
// @Summary Create a conversation
// @Description Creates an empty conversation. The title defaults to "New Conversation".
// @Tags Conversations API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body conversationrequests.CreateConversationRequest true "Conversation fields"
// @Success 201 {object} conversationresponses.ConversationResponse "Created conversation"
// @Failure 400 {object} responses.ErrorResponse "Invalid request"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 500 {object} responses.ErrorResponse "Internal server error"
// @Router /api/conversations [post]
func (route *ConversationRoute) createConversation(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	var request conversationrequests.CreateConversationRequest
	if reqCtx.Request.ContentLength != 0 {
		if err := reqCtx.ShouldBindJSON(&request); err != nil {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "0a6e0e5b-3f0c-4fd4-9a36-7a9b4f3d2c11")
			return
		}
	}

	response, err := route.handler.CreateConversation(reqCtx.Request.Context(), actor, request)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to create conversation")
		return
	}
	reqCtx.JSON(http.StatusCreated, response)
}

// getConversation godoc
// @Summary Get a conversation
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation public ID"
// @Success 200 {object} conversationresponses.ConversationResponse "Conversation"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 403 {object} responses.ErrorResponse "Conversation belongs to another user"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Router /api/conversations/{conversation_id} [get]
func (route *ConversationRoute) getConversation(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	response, err := route.handler.GetConversation(reqCtx.Request.Context(), actor, reqCtx.Param("conversation_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to get conversation")
		return
	}
	reqCtx.JSON(http.StatusOK, response)
}

// updateConversation godoc
// @Summary Update a conversation
// @Description Renames, pins or archives an owned conversation. Omitted fields are unchanged.
// @Tags Conversations API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation public ID"
// @Param request body conversationrequests.UpdateConversationRequest true "Fields to change"
// @Success 200 {object} conversationresponses.ConversationResponse "Updated conversation"
// @Failure 400 {object} responses.ErrorResponse "Invalid request"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 403 {object} responses.ErrorResponse "Conversation belongs to another user"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Router /api/conversations/{conversation_id} [patch]
func (route *ConversationRoute) updateConversation(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	var request conversationrequests.UpdateConversationRequest
	if err := reqCtx.ShouldBindJSON(&request); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "4e7c1d2a-8b3f-4a6e-9d5c-2f1b0a9e8d7c")
		return
	}

	response, err := route.handler.UpdateConversation(reqCtx.Request.Context(), actor, reqCtx.Param("conversation_id"), request)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to update conversation")
		return
	}
	reqCtx.JSON(http.StatusOK, response)
}

// deleteConversation godoc
// @Summary Delete a conversation
// @Description Deletes an owned conversation and all of its messages.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation public ID"
// @Success 200 {object} responses.DeletedResponse "Deleted"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 403 {object} responses.ErrorResponse "Conversation belongs to another user"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Router /api/conversations/{conversation_id} [delete]
func (route *ConversationRoute) deleteConversation(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	response, err := route.handler.DeleteConversation(reqCtx.Request.Context(), actor, reqCtx.Param("conversation_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to delete conversation")
		return
	}
	reqCtx.JSON(http.StatusOK, response)
}

// listMessages godoc
// @Summary List messages
// @Description Pages the messages of an owned conversation by creation time.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation public ID"
// @Param limit query int false "Maximum number of messages (default 20, max 100)"
// @Param offset query int false "Number of messages to skip"
// @Param order query string false "asc or desc (default asc)"
// @Success 200 {object} responses.ListResponse[conversationresponses.MessageResponse] "Messages"
// @Failure 400 {object} responses.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 403 {object} responses.ErrorResponse "Conversation belongs to another user"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Router /api/conversations/{conversation_id}/messages [get]
func (route *ConversationRoute) listMessages(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	pagination, err := requests.GetPaginationFromQuery(reqCtx, query.OrderAsc)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to process pagination")
		return
	}

	response, err := route.handler.ListMessages(reqCtx.Request.Context(), actor, reqCtx.Param("conversation_id"), pagination)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list messages")
		return
	}
	reqCtx.JSON(http.StatusOK, response)
}

// appendMessage godoc
// @Summary Append a message
// @Description Stores a message on an owned conversation without running inference.
// @Tags Conversations API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation public ID"
// @Param request body conversationrequests.AppendMessageRequest true "Message"
// @Success 201 {object} conversationresponses.MessageResponse "Stored message"
// @Failure 400 {object} responses.ErrorResponse "Invalid request"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized - missing or invalid session"
// @Failure 403 {object} responses.ErrorResponse "Conversation belongs to another user"
// @Failure 404 {object} responses.ErrorResponse "Conversation not found"
// @Router /api/conversations/{conversation_id}/messages [post]
func (route *ConversationRoute) appendMessage(reqCtx *gin.Context) {
	_, actor, ok := authhandler.RequireUser(reqCtx)
	if !ok {
		return
	}

	var request conversationrequests.AppendMessageRequest
	if err := reqCtx.ShouldBindJSON(&request); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "role and content are required; role must be user, assistant or system", "8c2e4a6f-1b3d-4e5f-a7c9-0d2f4b6e8a1c")
		return
	}

	response, err := route.handler.AppendMessage(reqCtx.Request.Context(), actor, reqCtx.Param("conversation_id"), request)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to append message")
		return
	}
	reqCtx.JSON(http.StatusCreated, response)
}
