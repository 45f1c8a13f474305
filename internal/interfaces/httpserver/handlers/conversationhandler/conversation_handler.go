package conversationhandler

import (
	"context"

	"sovereign-chat/internal/domain/authz"
	"sovereign-chat/internal/domain/conversation"
	"sovereign-chat/internal/domain/message"
	"sovereign-chat/internal/domain/query"
	conversationrequests "sovereign-chat/internal/interfaces/httpserver/requests/conversation"
	"sovereign-chat/internal/interfaces/httpserver/responses"
	conversationresponses "sovereign-chat/internal/interfaces/httpserver/responses/conversation"
	"sovereign-chat/internal/utils/platformerrors"
)

// ConversationHandler handles conversation-related HTTP requests
type ConversationHandler struct {
	conversationService *conversation.ConversationService
	messageService      *message.Service
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(
	conversationService *conversation.ConversationService,
	messageService *message.Service,
) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		messageService:      messageService,
	}
}

// CreateConversation creates a new conversation
func (h *ConversationHandler) CreateConversation(
	ctx context.Context,
	actor authz.Actor,
	req conversationrequests.CreateConversationRequest,
) (*conversationresponses.ConversationResponse, error) {
	conv, err := h.conversationService.CreateConversation(ctx, actor, conversation.CreateConversationInput{
		Title: req.Title,
		Model: req.Model,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to create conversation")
	}
	resp := conversationresponses.NewConversationResponse(conv)
	return &resp, nil
}

// GetConversation retrieves an owned conversation by public ID
func (h *ConversationHandler) GetConversation(
	ctx context.Context,
	actor authz.Actor,
	conversationID string,
) (*conversationresponses.ConversationResponse, error) {
	conv, err := h.conversationService.GetConversation(ctx, actor, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to get conversation")
	}
	resp := conversationresponses.NewConversationResponse(conv)
	return &resp, nil
}

// ListConversations lists the actor's conversations, pinned first
func (h *ConversationHandler) ListConversations(
	ctx context.Context,
	actor authz.Actor,
	archived *bool,
	pagination query.Pagination,
) (*responses.ListResponse[conversationresponses.ConversationResponse], error) {
	page, err := h.conversationService.ListConversations(ctx, actor, conversation.ListConversationsInput{
		Archived:   archived,
		Pagination: pagination,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to list conversations")
	}
	resp := responses.NewListResponse(page, conversationresponses.NewConversationResponse)
	return &resp, nil
}

// UpdateConversation applies title/pin/archive changes
func (h *ConversationHandler) UpdateConversation(
	ctx context.Context,
	actor authz.Actor,
	conversationID string,
	req conversationrequests.UpdateConversationRequest,
) (*conversationresponses.ConversationResponse, error) {
	conv, err := h.conversationService.UpdateConversation(ctx, actor, conversationID, conversation.UpdateConversationInput{
		Title:      req.Title,
		IsPinned:   req.IsPinned,
		IsArchived: req.IsArchived,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to update conversation")
	}
	resp := conversationresponses.NewConversationResponse(conv)
	return &resp, nil
}

// DeleteConversation deletes an owned conversation and its messages
func (h *ConversationHandler) DeleteConversation(
	ctx context.Context,
	actor authz.Actor,
	conversationID string,
) (*responses.DeletedResponse, error) {
	if err := h.conversationService.DeleteConversation(ctx, actor, conversationID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to delete conversation")
	}
	return &responses.DeletedResponse{ID: conversationID, Deleted: true}, nil
}

// ListMessages pages the messages of an owned conversation by creation time
func (h *ConversationHandler) ListMessages(
	ctx context.Context,
	actor authz.Actor,
	conversationID string,
	pagination query.Pagination,
) (*responses.ListResponse[conversationresponses.MessageResponse], error) {
	conv, err := h.conversationService.GetConversation(ctx, actor, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to get conversation")
	}

	page, err := h.messageService.List(ctx, conv.ID, pagination)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to list messages")
	}
	resp := responses.NewListResponse(page, func(msg *message.Message) conversationresponses.MessageResponse {
		return conversationresponses.NewMessageResponse(msg, conv.PublicID)
	})
	return &resp, nil
}

// AppendMessage stores a message on an owned conversation without running inference
func (h *ConversationHandler) AppendMessage(
	ctx context.Context,
	actor authz.Actor,
	conversationID string,
	req conversationrequests.AppendMessageRequest,
) (*conversationresponses.MessageResponse, error) {
	conv, err := h.conversationService.GetConversation(ctx, actor, conversationID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to get conversation")
	}

	msg, err := h.messageService.Append(ctx, message.AppendInput{
		ConversationID: conv.ID,
		UserID:         actor.UserID,
		Role:           message.Role(req.Role),
		Content:        req.Content,
		Model:          req.Model,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to append message")
	}
	if err := h.conversationService.RecordActivity(ctx, conv, msg.CreatedAt, req.Model); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "failed to update conversation")
	}

	resp := conversationresponses.NewMessageResponse(msg, conv.PublicID)
	return &resp, nil
}
