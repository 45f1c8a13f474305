package chatresponses

import (
	"time"

	"sovereign-chat/internal/domain/chat"
	conversationresponses "sovereign-chat/internal/interfaces/httpserver/responses/conversation"
)

// ChatResponse is the stored exchange returned by the chat route.
type ChatResponse struct {
	ConversationID string                                `json:"conversation_id"`
	Title          string                                `json:"title"`
	Message        conversationresponses.MessageResponse `json:"message"`
	UserMessage    conversationresponses.MessageResponse `json:"user_message"`
	// Source is "primary" or "fallback".
	Source string `json:"source"`
}

// BackendHealthResponse is one backend probe.
type BackendHealthResponse struct {
	Configured bool   `json:"configured"`
	Healthy    bool   `json:"healthy"`
	LatencyMs  int64  `json:"latency_ms"`
	Error      string `json:"error,omitempty"`
}

// HealthResponse reports both inference backends.
type HealthResponse struct {
	Primary   BackendHealthResponse `json:"primary"`
	Fallback  BackendHealthResponse `json:"fallback"`
	CheckedAt time.Time             `json:"checked_at"`
}

// NewChatResponse creates the chat response from a domain result.
func NewChatResponse(result *chat.SendResult) *ChatResponse {
	convID := result.Conversation.PublicID
	return &ChatResponse{
		ConversationID: convID,
		Title:          result.Conversation.Title,
		Message:        conversationresponses.NewMessageResponse(result.AssistantMessage, convID),
		UserMessage:    conversationresponses.NewMessageResponse(result.UserMessage, convID),
		Source:         result.Source,
	}
}

// NewHealthResponse converts a health report.
func NewHealthResponse(report chat.HealthReport) *HealthResponse {
	return &HealthResponse{
		Primary:   newBackendHealth(report.Primary),
		Fallback:  newBackendHealth(report.Fallback),
		CheckedAt: report.CheckedAt,
	}
}

func newBackendHealth(h chat.BackendHealth) BackendHealthResponse {
	return BackendHealthResponse{
		Configured: h.Configured,
		Healthy:    h.Healthy,
		LatencyMs:  h.Latency.Milliseconds(),
		Error:      h.Error,
	}
}
