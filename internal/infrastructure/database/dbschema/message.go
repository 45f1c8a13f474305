package dbschema

import (
	"sovereign-chat/internal/domain/message"
	"sovereign-chat/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Message{})
}

// Message represents the database schema for conversation messages
type Message struct {
	BaseModel
	PublicID         string `gorm:"type:varchar(32);not null;uniqueIndex:ux_messages_public_id"`
	ConversationID   uint   `gorm:"not null;index:idx_messages_conversation_id"`
	UserID           uint   `gorm:"not null;index:idx_messages_user_id"`
	Role             string `gorm:"type:varchar(16);not null"`
	Content          string `gorm:"type:text;not null"`
	Model            string `gorm:"type:varchar(128);not null;default:''"`
	Source           string `gorm:"type:varchar(16);not null;default:''"`
	PromptTokens     int    `gorm:"not null;default:0"`
	CompletionTokens int    `gorm:"not null;default:0"`
}

// NewSchemaMessage converts a domain message into a schema instance.
func NewSchemaMessage(m *message.Message) *Message {
	return &Message{
		BaseModel: BaseModel{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
		},
		PublicID:         m.PublicID,
		ConversationID:   m.ConversationID,
		UserID:           m.UserID,
		Role:             string(m.Role),
		Content:          m.Content,
		Model:            m.Model,
		Source:           m.Source,
		PromptTokens:     m.PromptTokens,
		CompletionTokens: m.CompletionTokens,
	}
}

// EtoD converts a schema message back to the domain representation.
func (m *Message) EtoD() *message.Message {
	return &message.Message{
		ID:               m.ID,
		PublicID:         m.PublicID,
		ConversationID:   m.ConversationID,
		UserID:           m.UserID,
		Role:             message.Role(m.Role),
		Content:          m.Content,
		Model:            m.Model,
		Source:           m.Source,
		PromptTokens:     m.PromptTokens,
		CompletionTokens: m.CompletionTokens,
		CreatedAt:        m.CreatedAt,
	}
}
