package chathandler

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"sovereign-chat/internal/domain/chat"
	"sovereign-chat/internal/domain/user"
	chatrequests "sovereign-chat/internal/interfaces/httpserver/requests/chat"
	chatresponses "sovereign-chat/internal/interfaces/httpserver/responses/chat"
	"sovereign-chat/internal/utils/platformerrors"
)

// ChatHandler runs chat exchanges through the inference proxy.
type ChatHandler struct {
	chatService *chat.Service
	validate    *validator.Validate
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *chat.Service) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Send stores the user message, runs the completion and returns the reply
// with the backend that produced it.
func (h *ChatHandler) Send(ctx context.Context, u *user.User, req chatrequests.ChatRequest) (*chatresponses.ChatResponse, error) {
	if err := h.validate.Struct(req); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, err.Error(), err, "5d1c7a3e-2b8f-4f0a-9c6e-1e4b7d2a9f30")
	}
	result, err := h.chatService.Send(ctx, u, chat.SendInput{
		ConversationID: strings.TrimSpace(req.ConversationID),
		Content:        req.Message,
		Model:          strings.TrimSpace(req.Model),
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err, "chat failed")
	}
	return chatresponses.NewChatResponse(result), nil
}

// Health probes both inference backends.
func (h *ChatHandler) Health(ctx context.Context) *chatresponses.HealthResponse {
	return chatresponses.NewHealthResponse(h.chatService.Health(ctx))
}
