package conversationrequests

// CreateConversationRequest represents the request to create a conversation
type CreateConversationRequest struct {
	Title string `json:"title"`
	Model string `json:"model"`
}

// UpdateConversationRequest carries optional changes; omitted fields are left as is.
type UpdateConversationRequest struct {
	Title      *string `json:"title,omitempty"`
	IsPinned   *bool   `json:"is_pinned,omitempty"`
	IsArchived *bool   `json:"is_archived,omitempty"`
}

// ListConversationsQueryParams represents query parameters for listing conversations
type ListConversationsQueryParams struct {
	Archived *bool `form:"archived"`
}

// AppendMessageRequest stores a message without running inference.
type AppendMessageRequest struct {
	Role    string `json:"role" binding:"required,oneof=user assistant system"`
	Content string `json:"content" binding:"required"`
	Model   string `json:"model"`
}
