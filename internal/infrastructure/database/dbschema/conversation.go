package dbschema

import (
	"time"

	"sovereign-chat/internal/domain/conversation"
	"sovereign-chat/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Conversation{})
}

// Conversation represents the database schema for conversations
type Conversation struct {
	BaseModel
	PublicID      string  `gorm:"type:varchar(32);not null;uniqueIndex:ux_conversations_public_id"`
	UserID        uint    `gorm:"not null;index:idx_conversations_user_id"`
	Title         string  `gorm:"type:varchar(256);not null;default:''"`
	Model         string  `gorm:"type:varchar(128);not null;default:''"`
	IsPublic      bool    `gorm:"not null;default:false;index:idx_conversations_is_public"`
	ShareID       *string `gorm:"type:varchar(32);uniqueIndex:ux_conversations_share_id"`
	IsPinned      bool    `gorm:"not null;default:false"`
	IsArchived    bool    `gorm:"not null;default:false"`
	ViewCount     int64   `gorm:"not null;default:0"`
	LikeCount     int64   `gorm:"not null;default:0"`
	LastMessageAt *time.Time
}

// NewSchemaConversation converts a domain conversation into a schema instance.
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		BaseModel: BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		PublicID:      c.PublicID,
		UserID:        c.UserID,
		Title:         c.Title,
		Model:         c.Model,
		IsPublic:      c.IsPublic,
		ShareID:       c.ShareID,
		IsPinned:      c.IsPinned,
		IsArchived:    c.IsArchived,
		ViewCount:     c.ViewCount,
		LikeCount:     c.LikeCount,
		LastMessageAt: c.LastMessageAt,
	}
}

// EtoD converts a schema conversation back to the domain representation.
func (c *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:            c.ID,
		PublicID:      c.PublicID,
		UserID:        c.UserID,
		Title:         c.Title,
		Model:         c.Model,
		IsPublic:      c.IsPublic,
		ShareID:       c.ShareID,
		IsPinned:      c.IsPinned,
		IsArchived:    c.IsArchived,
		ViewCount:     c.ViewCount,
		LikeCount:     c.LikeCount,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
