package shareresponses

import (
	"sovereign-chat/internal/domain/conversation"
)

// ShareResponse reports the share state of a conversation.
type ShareResponse struct {
	ConversationID string  `json:"conversation_id"`
	Object         string  `json:"object"`
	IsPublic       bool    `json:"is_public"`
	ShareID        *string `json:"share_id,omitempty"`
	SharePath      string  `json:"share_path,omitempty"`
	ViewCount      int64   `json:"view_count"`
	LikeCount      int64   `json:"like_count"`
}

// LikeResponse is the like counter after a like.
type LikeResponse struct {
	ConversationID string `json:"conversation_id"`
	LikeCount      int64  `json:"like_count"`
}

// NewShareResponse creates a share response from a conversation.
func NewShareResponse(conv *conversation.Conversation) *ShareResponse {
	resp := &ShareResponse{
		ConversationID: conv.PublicID,
		Object:         "conversation.share",
		IsPublic:       conv.IsPublic,
		ShareID:        conv.ShareID,
		ViewCount:      conv.ViewCount,
		LikeCount:      conv.LikeCount,
	}
	if conv.ShareID != nil {
		resp.SharePath = "/api/share/" + *conv.ShareID
	}
	return resp
}

// NewLikeResponse creates a like response.
func NewLikeResponse(conv *conversation.Conversation) *LikeResponse {
	return &LikeResponse{ConversationID: conv.PublicID, LikeCount: conv.LikeCount}
}
