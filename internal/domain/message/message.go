// Package message holds the ordered messages of a conversation.
package message

import (
	"context"
	"time"

	"sovereign-chat/internal/domain/query"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// MaxContentLength is the longest accepted message body in characters.
const MaxContentLength = 100_000

// Message is one entry of a conversation, ordered by creation time.
type Message struct {
	ID             uint
	PublicID       string
	ConversationID uint
	UserID         uint
	Role           Role
	Content        string
	Model          string
	// Source is the inference backend that produced an assistant message.
	Source           string
	PromptTokens     int
	CompletionTokens int
	CreatedAt        time.Time
}

// OwnerID implements authz.Resource.
func (m *Message) OwnerID() uint {
	return m.UserID
}

// ModelUsage aggregates a user's messages per model tag.
type ModelUsage struct {
	Model            string
	Messages         int64
	PromptTokens     int64
	CompletionTokens int64
}

// Repository defines storage operations for messages.
type Repository interface {
	Create(ctx context.Context, msg *Message) error
	// FindByConversationID orders by created_at then id using pagination.Order.
	FindByConversationID(ctx context.Context, conversationID uint, pagination *query.Pagination) ([]*Message, error)
	CountByConversationID(ctx context.Context, conversationID uint) (int64, error)
	// Latest returns the newest limit messages in chronological order.
	Latest(ctx context.Context, conversationID uint, limit int) ([]*Message, error)
	CountByUserSince(ctx context.Context, userID uint, role Role, since time.Time) (int64, error)
	UsageByModel(ctx context.Context, userID uint, since time.Time) ([]ModelUsage, error)
	DeleteByConversationID(ctx context.Context, conversationID uint) error
}
