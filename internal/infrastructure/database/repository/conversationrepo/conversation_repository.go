package conversationrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sovereign-chat/internal/domain/conversation"
	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/infrastructure/database/dbschema"
	"sovereign-chat/internal/infrastructure/database/transaction"
	"sovereign-chat/internal/utils/functional"
	"sovereign-chat/internal/utils/platformerrors"
)

// sortColumns maps sort fields to trusted ORDER BY expressions.
var sortColumns = map[string]string{
	string(conversation.SortUpdatedAt):     "updated_at",
	string(conversation.SortCreatedAt):     "created_at",
	string(conversation.SortTitle):         "title",
	string(conversation.SortLastMessageAt): "COALESCE(last_message_at, created_at)",
	string(conversation.SortViewCount):     "view_count",
	string(conversation.SortLikeCount):     "like_count",
}

type ConversationGormRepository struct {
	db *transaction.Database
}

var _ conversation.ConversationRepository = (*ConversationGormRepository)(nil)

func NewConversationGormRepository(db *transaction.Database) conversation.ConversationRepository {
	return &ConversationGormRepository{db}
}

// Create implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	model := dbschema.NewSchemaConversation(conv)
	if err := repo.getDB(ctx).Create(model).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to create conversation", "6b7c8d9e-0f1a-4b2c-3d4e-5f6a7b8c9d0e")
	}
	// Update the domain object with generated ID and timestamps
	conv.ID = model.ID
	conv.CreatedAt = model.CreatedAt
	conv.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByFilter implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) FindByFilter(ctx context.Context, filter conversation.ConversationFilter, pagination *query.Pagination) ([]*conversation.Conversation, error) {
	db := repo.applyFilter(repo.getDB(ctx), filter)
	db = repo.applyPagination(db, filter, pagination)

	var rows []dbschema.Conversation
	if err := db.Find(&rows).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find conversations", "7c8d9e0f-1a2b-4c3d-4e5f-6a7b8c9d0e1f")
	}

	result := functional.Map(rows, func(item dbschema.Conversation) *conversation.Conversation {
		return item.EtoD()
	})
	return result, nil
}

// Count implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) Count(ctx context.Context, filter conversation.ConversationFilter) (int64, error) {
	var count int64
	db := repo.applyFilter(repo.getDB(ctx).Model(&dbschema.Conversation{}), filter)
	if err := db.Count(&count).Error; err != nil {
		return 0, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to count conversations", "8d9e0f1a-2b3c-4d4e-5f6a-7b8c9d0e1f2a")
	}
	return count, nil
}

// FindByPublicID implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	var row dbschema.Conversation
	if err := repo.getDB(ctx).Where("public_id = ?", publicID).First(&row).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find conversation by public ID", "9e0f1a2b-3c4d-4e5f-6a7b-8c9d0e1f2a3b")
	}
	return row.EtoD(), nil
}

// FindByShareID implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) FindByShareID(ctx context.Context, shareID string) (*conversation.Conversation, error) {
	var row dbschema.Conversation
	if err := repo.getDB(ctx).Where("share_id = ?", shareID).First(&row).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find conversation by share ID", "0f1a2b3c-4d5e-4f6a-7b8c-9d0e1f2a3b4c")
	}
	return row.EtoD(), nil
}

// FindByIDs implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) FindByIDs(ctx context.Context, ids []uint) ([]*conversation.Conversation, error) {
	var rows []dbschema.Conversation
	if err := repo.getDB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to find conversations by IDs", "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5e")
	}
	return functional.Map(rows, func(item dbschema.Conversation) *conversation.Conversation {
		return item.EtoD()
	}), nil
}

// Update implements conversation.ConversationRepository. Counters are left
// to the increment methods.
func (repo *ConversationGormRepository) Update(ctx context.Context, conv *conversation.Conversation) error {
	now := time.Now()
	if err := repo.getDB(ctx).
		Model(&dbschema.Conversation{}).
		Where("id = ?", conv.ID).
		Updates(map[string]any{
			"title":       conv.Title,
			"model":       conv.Model,
			"is_public":   conv.IsPublic,
			"share_id":    conv.ShareID,
			"is_pinned":   conv.IsPinned,
			"is_archived": conv.IsArchived,
			"updated_at":  now,
		}).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to update conversation", "2b3c4d5e-6f7a-4b8c-9d0e-1f2a3b4c5d6f")
	}
	conv.UpdatedAt = now
	return nil
}

// Delete implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) Delete(ctx context.Context, id uint) error {
	if err := repo.getDB(ctx).Where("id = ?", id).Delete(&dbschema.Conversation{}).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to delete conversation", "3c4d5e6f-7a8b-4c9d-0e1f-2a3b4c5d6e7a")
	}
	return nil
}

// IncrementViewCount implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) IncrementViewCount(ctx context.Context, id uint) error {
	if err := repo.getDB(ctx).
		Model(&dbschema.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to increment view count", "3d4e5f6a-7b8c-4d9e-0f1a-2b3c4d5e6f7a")
	}
	return nil
}

// IncrementLikeCount implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) IncrementLikeCount(ctx context.Context, id uint) error {
	if err := repo.getDB(ctx).
		Model(&dbschema.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to increment like count", "4e5f6a7b-8c9d-4e0f-1a2b-3c4d5e6f7a8c")
	}
	return nil
}

// TouchLastMessage implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) TouchLastMessage(ctx context.Context, id uint, at time.Time, model string) error {
	updates := map[string]any{
		"last_message_at": at,
		"updated_at":      at,
	}
	if model != "" {
		updates["model"] = model
	}
	if err := repo.getDB(ctx).Model(&dbschema.Conversation{}).Where("id = ?", id).UpdateColumns(updates).Error; err != nil {
		return platformerrors.AsErrorWithUUID(ctx, platformerrors.LayerRepository, err, "failed to touch conversation", "5f6a7b8c-9d0e-4f1a-2b3c-4d5e6f7a8b9d")
	}
	return nil
}

// getDB returns the database connection, checking for transaction context
func (repo *ConversationGormRepository) getDB(ctx context.Context) *gorm.DB {
	return repo.db.GetTx(ctx)
}

// applyFilter applies filter criteria to the query
func (repo *ConversationGormRepository) applyFilter(db *gorm.DB, filter conversation.ConversationFilter) *gorm.DB {
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.IsArchived != nil {
		db = db.Where("is_archived = ?", *filter.IsArchived)
	}
	if filter.IsPublic != nil {
		db = db.Where("is_public = ?", *filter.IsPublic)
	}
	if filter.UpdatedSince != nil {
		db = db.Where("updated_at >= ?", *filter.UpdatedSince)
	}
	return db
}

// applyPagination applies ordering and limit/offset to the query
func (repo *ConversationGormRepository) applyPagination(db *gorm.DB, filter conversation.ConversationFilter, pagination *query.Pagination) *gorm.DB {
	if filter.PinnedFirst {
		db = db.Order("is_pinned DESC")
	}
	if pagination == nil {
		return db.Order("updated_at DESC").Order("id DESC").Limit(query.DefaultLimit)
	}

	column, ok := sortColumns[pagination.SortBy]
	if !ok {
		column = "updated_at"
	}
	direction := "DESC"
	if pagination.Order == query.OrderAsc {
		direction = "ASC"
	}
	db = db.Order(column + " " + direction).Order("id " + direction)

	if pagination.Limit > 0 {
		db = db.Limit(pagination.Limit)
	}
	if pagination.Offset > 0 {
		db = db.Offset(pagination.Offset)
	}
	return db
}
