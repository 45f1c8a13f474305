package conversationresponses

import (
	"sovereign-chat/internal/domain/conversation"
	"sovereign-chat/internal/domain/message"
	"sovereign-chat/internal/domain/query"
)

// ConversationResponse is the API shape of a conversation.
type ConversationResponse struct {
	ID            string  `json:"id"`
	Object        string  `json:"object"`
	Title         string  `json:"title"`
	Model         string  `json:"model,omitempty"`
	IsPublic      bool    `json:"is_public"`
	ShareID       *string `json:"share_id,omitempty"`
	IsPinned      bool    `json:"is_pinned"`
	IsArchived    bool    `json:"is_archived"`
	ViewCount     int64   `json:"view_count"`
	LikeCount     int64   `json:"like_count"`
	LastMessageAt *int64  `json:"last_message_at,omitempty"`
	CreatedAt     int64   `json:"created_at"`
	UpdatedAt     int64   `json:"updated_at"`
}

// MessageResponse is the API shape of a message.
type MessageResponse struct {
	ID               string `json:"id"`
	Object           string `json:"object"`
	ConversationID   string `json:"conversation_id,omitempty"`
	Role             string `json:"role"`
	Content          string `json:"content"`
	Model            string `json:"model,omitempty"`
	Source           string `json:"source,omitempty"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
	CreatedAt        int64  `json:"created_at"`
}

// SharedConversationResponse is a public conversation with its messages.
// Owner identifiers are not exposed.
type SharedConversationResponse struct {
	Conversation ConversationResponse `json:"conversation"`
	Messages     []MessageResponse    `json:"messages"`
	Total        int64                `json:"total"`
	HasMore      bool                 `json:"has_more"`
}

// NewConversationResponse creates a response from a domain conversation
func NewConversationResponse(conv *conversation.Conversation) ConversationResponse {
	resp := ConversationResponse{
		ID:         conv.PublicID,
		Object:     "conversation",
		Title:      conv.Title,
		Model:      conv.Model,
		IsPublic:   conv.IsPublic,
		ShareID:    conv.ShareID,
		IsPinned:   conv.IsPinned,
		IsArchived: conv.IsArchived,
		ViewCount:  conv.ViewCount,
		LikeCount:  conv.LikeCount,
		CreatedAt:  conv.CreatedAt.Unix(),
		UpdatedAt:  conv.UpdatedAt.Unix(),
	}
	if conv.LastMessageAt != nil {
		ts := conv.LastMessageAt.Unix()
		resp.LastMessageAt = &ts
	}
	return resp
}

// NewMessageResponse creates a response from a domain message. conversationID
// is the public id of the owning conversation.
func NewMessageResponse(msg *message.Message, conversationID string) MessageResponse {
	return MessageResponse{
		ID:               msg.PublicID,
		Object:           "message",
		ConversationID:   conversationID,
		Role:             string(msg.Role),
		Content:          msg.Content,
		Model:            msg.Model,
		Source:           msg.Source,
		PromptTokens:     msg.PromptTokens,
		CompletionTokens: msg.CompletionTokens,
		CreatedAt:        msg.CreatedAt.Unix(),
	}
}

// NewSharedConversationResponse pairs a public conversation with its messages.
func NewSharedConversationResponse(conv *conversation.Conversation, messages query.Page[*message.Message]) *SharedConversationResponse {
	resp := &SharedConversationResponse{
		Conversation: NewConversationResponse(conv),
		Messages:     make([]MessageResponse, 0, len(messages.Items)),
		Total:        messages.Total,
		HasMore:      messages.HasMore(),
	}
	for _, msg := range messages.Items {
		resp.Messages = append(resp.Messages, NewMessageResponse(msg, conv.PublicID))
	}
	return resp
}
