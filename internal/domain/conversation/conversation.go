package conversation

import (
	"context"
	"time"

	"sovereign-chat/internal/domain/query"
)

// ===============================================
// Conversation Structure
// ===============================================

type Conversation struct {
	ID            uint
	PublicID      string
	UserID        uint
	Title         string
	Model         string
	IsPublic      bool
	ShareID       *string
	IsPinned      bool
	IsArchived    bool
	ViewCount     int64
	LikeCount     int64
	LastMessageAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OwnerID implements authz.Resource.
func (c *Conversation) OwnerID() uint {
	return c.UserID
}

// DefaultTitle is used when no title is given and none can be derived.
const DefaultTitle = "New Conversation"

// ===============================================
// Sorting
// ===============================================

// SortField is a column conversations can be ordered by.
type SortField string

const (
	SortUpdatedAt     SortField = "updated_at"
	SortCreatedAt     SortField = "created_at"
	SortTitle         SortField = "title"
	SortLastMessageAt SortField = "last_message_at"
	SortViewCount     SortField = "view_count"
	SortLikeCount     SortField = "like_count"
)

// ListSortFields are the sort keys accepted by the conversation list route.
var ListSortFields = []SortField{SortUpdatedAt, SortCreatedAt, SortTitle, SortLastMessageAt}

// ParseListSort validates a list sort key; empty selects updated_at.
func ParseListSort(raw string) (SortField, bool) {
	if raw == "" {
		return SortUpdatedAt, true
	}
	for _, f := range ListSortFields {
		if string(f) == raw {
			return f, true
		}
	}
	return "", false
}

// ===============================================
// Conversation Repository
// ===============================================

type ConversationFilter struct {
	UserID       *uint
	IsArchived   *bool
	IsPublic     *bool
	UpdatedSince *time.Time
	// PinnedFirst orders pinned conversations ahead of the pagination sort.
	PinnedFirst bool
}

type ConversationRepository interface {
	Create(ctx context.Context, conversation *Conversation) error
	Update(ctx context.Context, conversation *Conversation) error
	Delete(ctx context.Context, id uint) error
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	FindByShareID(ctx context.Context, shareID string) (*Conversation, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*Conversation, error)
	FindByFilter(ctx context.Context, filter ConversationFilter, pagination *query.Pagination) ([]*Conversation, error)
	Count(ctx context.Context, filter ConversationFilter) (int64, error)

	// Counter updates are single UPDATE ... SET x = x + 1 statements.
	IncrementViewCount(ctx context.Context, id uint) error
	IncrementLikeCount(ctx context.Context, id uint) error
	TouchLastMessage(ctx context.Context, id uint, at time.Time, model string) error
}

// MessagePurger removes the messages of a conversation before it is deleted.
type MessagePurger interface {
	DeleteByConversationID(ctx context.Context, conversationID uint) error
}
