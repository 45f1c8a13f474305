package messagerepo

import (
	"context"
	"slices"
	"time"

	"gorm.io/gorm"

	"sovereign-chat/internal/domain/message"
	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/infrastructure/database/dbschema"
	"sovereign-chat/internal/infrastructure/database/transaction"
	"sovereign-chat/internal/utils/functional"
	"sovereign-chat/internal/utils/platformerrors"
)

type MessageGormRepository struct {
	db *transaction.Database
}

var _ message.Repository = (*MessageGormRepository)(nil)

func NewMessageGormRepository(db *transaction.Database) message.Repository {
	return &MessageGormRepository{db: db}
}

// Create implements message.Repository.
func (repo *MessageGormRepository) Create(ctx context.Context, msg *message.Message) error {
	model := dbschema.NewSchemaMessage(msg)
	if err := repo.getDB(ctx).Create(model).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to create message", "a1c2e3f4-5b6d-4e7f-8091-a2b3c4d5e6f7")
	}
	msg.ID = model.ID
	msg.CreatedAt = model.CreatedAt
	return nil
}

// FindByConversationID implements message.Repository.
func (repo *MessageGormRepository) FindByConversationID(ctx context.Context, conversationID uint, pagination *query.Pagination) ([]*message.Message, error) {
	direction := "ASC"
	db := repo.getDB(ctx).Where("conversation_id = ?", conversationID)
	if pagination != nil {
		if pagination.Order == query.OrderDesc {
			direction = "DESC"
		}
		if pagination.Limit > 0 {
			db = db.Limit(pagination.Limit)
		}
		if pagination.Offset > 0 {
			db = db.Offset(pagination.Offset)
		}
	}

	var rows []dbschema.Message
	if err := db.Order("created_at " + direction).Order("id " + direction).Find(&rows).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to list messages", "b2d3f4a5-6c7e-4f80-91a2-b3c4d5e6f7a8")
	}
	return functional.Map(rows, func(item dbschema.Message) *message.Message {
		return item.EtoD()
	}), nil
}

// CountByConversationID implements message.Repository.
func (repo *MessageGormRepository) CountByConversationID(ctx context.Context, conversationID uint) (int64, error) {
	var count int64
	if err := repo.getDB(ctx).Model(&dbschema.Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error; err != nil {
		return 0, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to count messages", "c3e4a5b6-7d8f-4091-a2b3-c4d5e6f7a8b9")
	}
	return count, nil
}

// Latest implements message.Repository.
func (repo *MessageGormRepository) Latest(ctx context.Context, conversationID uint, limit int) ([]*message.Message, error) {
	if limit <= 0 {
		return []*message.Message{}, nil
	}
	var rows []dbschema.Message
	if err := repo.getDB(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to load message history", "d4f5b6c7-8e90-41a2-b3c4-d5e6f7a8b9c0")
	}
	result := functional.Map(rows, func(item dbschema.Message) *message.Message {
		return item.EtoD()
	})
	slices.Reverse(result)
	return result, nil
}

// CountByUserSince implements message.Repository.
func (repo *MessageGormRepository) CountByUserSince(ctx context.Context, userID uint, role message.Role, since time.Time) (int64, error) {
	var count int64
	if err := repo.getDB(ctx).
		Model(&dbschema.Message{}).
		Where("user_id = ? AND role = ? AND created_at >= ?", userID, string(role), since).
		Count(&count).Error; err != nil {
		return 0, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to count user messages", "e5a6c7d8-9f01-42b3-c4d5-e6f7a8b9c0d1")
	}
	return count, nil
}

type modelUsageRow struct {
	Model            string
	Messages         int64
	PromptTokens     int64
	CompletionTokens int64
}

// UsageByModel implements message.Repository.
func (repo *MessageGormRepository) UsageByModel(ctx context.Context, userID uint, since time.Time) ([]message.ModelUsage, error) {
	var rows []modelUsageRow
	if err := repo.getDB(ctx).
		Model(&dbschema.Message{}).
		Select("model, COUNT(*) AS messages, COALESCE(SUM(prompt_tokens), 0) AS prompt_tokens, COALESCE(SUM(completion_tokens), 0) AS completion_tokens").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Group("model").
		Order("model ASC").
		Scan(&rows).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to aggregate usage", "f6b7d8e9-0a12-43c4-d5e6-f7a8b9c0d1e2")
	}
	return functional.Map(rows, func(item modelUsageRow) message.ModelUsage {
		return message.ModelUsage{
			Model:            item.Model,
			Messages:         item.Messages,
			PromptTokens:     item.PromptTokens,
			CompletionTokens: item.CompletionTokens,
		}
	}), nil
}

// DeleteByConversationID implements message.Repository.
func (repo *MessageGormRepository) DeleteByConversationID(ctx context.Context, conversationID uint) error {
	if err := repo.getDB(ctx).Where("conversation_id = ?", conversationID).Delete(&dbschema.Message{}).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to delete messages", "07c8e9f0-1b23-44d5-e6f7-a8b9c0d1e2f3")
	}
	return nil
}

func (repo *MessageGormRepository) getDB(ctx context.Context) *gorm.DB {
	return repo.db.GetTx(ctx)
}
