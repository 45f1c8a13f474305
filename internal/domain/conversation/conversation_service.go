package conversation

import (
	"context"
	"strings"
	"time"

	"sovereign-chat/internal/domain/authz"
	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/utils/idgen"
	"sovereign-chat/internal/utils/platformerrors"
)

const shareIDAttempts = 5

// ConversationService handles business logic for conversations
type ConversationService struct {
	repo   ConversationRepository
	purger MessagePurger
}

// NewConversationService creates a new conversation service
func NewConversationService(repo ConversationRepository, purger MessagePurger) *ConversationService {
	return &ConversationService{repo: repo, purger: purger}
}

// ===============================================
// Core CRUD Operations
// ===============================================

// CreateConversationInput represents the input for creating a conversation
type CreateConversationInput struct {
	Title string
	Model string
}

// CreateConversation creates a conversation owned by the actor.
func (s *ConversationService) CreateConversation(ctx context.Context, actor authz.Actor, input CreateConversationInput) (*Conversation, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = DefaultTitle
	}
	if err := validateTitle(title); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), err, "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d")
	}

	publicID, err := idgen.GenerateSecureID(idgen.PrefixConversation, idgen.DefaultLength)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate conversation id", err, "e7f8a9b0-c1d2-4e3f-a4b5-c6d7e8f9a0b1")
	}

	conv := &Conversation{
		PublicID: publicID,
		UserID:   actor.UserID,
		Title:    title,
		Model:    strings.TrimSpace(input.Model),
	}
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create conversation")
	}
	return conv, nil
}

// GetConversation loads a conversation by public id and requires ownership.
func (s *ConversationService) GetConversation(ctx context.Context, actor authz.Actor, publicID string) (*Conversation, error) {
	if err := ValidateConversationID(publicID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid conversation ID", err, "b2c3d4e5-f6a7-4b8c-9d0e-1f2a3b4c5d6e")
	}

	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	if err := authz.Require(ctx, actor, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// ListConversationsInput filters and pages the actor's conversations.
type ListConversationsInput struct {
	Archived   *bool
	Pagination query.Pagination
}

// ListConversations returns the actor's conversations, pinned first.
func (s *ConversationService) ListConversations(ctx context.Context, actor authz.Actor, input ListConversationsInput) (query.Page[*Conversation], error) {
	pagination := input.Pagination
	pagination.Normalize()
	sortField, ok := ParseListSort(pagination.SortBy)
	if !ok {
		return query.Page[*Conversation]{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "unsupported sort field", nil, "c3d4e5f6-a7b8-4c9d-0e1f-2a3b4c5d6e7f")
	}
	pagination.SortBy = string(sortField)

	userID := actor.UserID
	archived := false
	if input.Archived != nil {
		archived = *input.Archived
	}
	filter := ConversationFilter{UserID: &userID, IsArchived: &archived, PinnedFirst: true}

	conversations, err := s.repo.FindByFilter(ctx, filter, &pagination)
	if err != nil {
		return query.Page[*Conversation]{}, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return query.Page[*Conversation]{}, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count conversations")
	}
	return query.Page[*Conversation]{Items: conversations, Total: total, Limit: pagination.Limit, Offset: pagination.Offset}, nil
}

// UpdateConversationInput holds optional field changes.
type UpdateConversationInput struct {
	Title      *string
	IsPinned   *bool
	IsArchived *bool
}

// UpdateConversation applies the given changes to an owned conversation.
func (s *ConversationService) UpdateConversation(ctx context.Context, actor authz.Actor, publicID string, input UpdateConversationInput) (*Conversation, error) {
	conv, err := s.GetConversation(ctx, actor, publicID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := validateTitle(title); err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), err, "d4e5f6a7-b8c9-4d0e-1f2a-3b4c5d6e7f8a")
		}
		conv.Title = title
	}
	if input.IsPinned != nil {
		conv.IsPinned = *input.IsPinned
	}
	if input.IsArchived != nil {
		conv.IsArchived = *input.IsArchived
	}

	if err := s.repo.Update(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update conversation")
	}
	return conv, nil
}

// DeleteConversation removes an owned conversation and its messages.
func (s *ConversationService) DeleteConversation(ctx context.Context, actor authz.Actor, publicID string) error {
	conv, err := s.GetConversation(ctx, actor, publicID)
	if err != nil {
		return err
	}
	if s.purger != nil {
		if err := s.purger.DeleteByConversationID(ctx, conv.ID); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete conversation messages")
		}
	}
	if err := s.repo.Delete(ctx, conv.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete conversation")
	}
	return nil
}

// ===============================================
// Sharing
// ===============================================

// ShareConversation makes an owned conversation public under a unique share id.
// Sharing an already public conversation returns it unchanged.
func (s *ConversationService) ShareConversation(ctx context.Context, actor authz.Actor, publicID string) (*Conversation, error) {
	conv, err := s.GetConversation(ctx, actor, publicID)
	if err != nil {
		return nil, err
	}
	if conv.IsPublic && conv.ShareID != nil {
		return conv, nil
	}

	for attempt := 1; ; attempt++ {
		shareID, err := idgen.GenerateSecureID(idgen.PrefixShare, idgen.DefaultLength)
		if err != nil {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate share id", err, "f1a2b3c4-d5e6-4f7a-8b9c-0d1e2f3a4b5c")
		}
		conv.IsPublic = true
		conv.ShareID = &shareID

		err = s.repo.Update(ctx, conv)
		if err == nil {
			return conv, nil
		}
		if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) || attempt >= shareIDAttempts {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to share conversation")
		}
	}
}

// UnshareConversation makes an owned conversation private and clears its share id.
func (s *ConversationService) UnshareConversation(ctx context.Context, actor authz.Actor, publicID string) (*Conversation, error) {
	conv, err := s.GetConversation(ctx, actor, publicID)
	if err != nil {
		return nil, err
	}
	conv.IsPublic = false
	conv.ShareID = nil
	if err := s.repo.Update(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to unshare conversation")
	}
	return conv, nil
}

// GetSharedConversation reads a public conversation by share id and counts the view.
func (s *ConversationService) GetSharedConversation(ctx context.Context, shareID string) (*Conversation, error) {
	if err := ValidateShareID(shareID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "shared conversation not found", err, "a2b3c4d5-e6f7-4a8b-9c0d-1e2f3a4b5c6d")
	}
	conv, err := s.repo.FindByShareID(ctx, shareID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "shared conversation not found")
	}
	if !conv.IsPublic {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "shared conversation not found", nil, "b3c4d5e6-f7a8-4b9c-0d1e-2f3a4b5c6d7e")
	}
	if err := s.repo.IncrementViewCount(ctx, conv.ID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to record view")
	}
	conv.ViewCount++
	return conv, nil
}

// LikeConversation increments the like counter of a public conversation.
// Any authenticated user may like; private conversations are reported as missing.
func (s *ConversationService) LikeConversation(ctx context.Context, actor authz.Actor, publicID string) (*Conversation, error) {
	if err := ValidateConversationID(publicID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid conversation ID", err, "c4d5e6f7-a8b9-4c0d-1e2f-3a4b5c6d7e8f")
	}
	conv, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	if !conv.IsPublic {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"conversation not found", nil, "d5e6f7a8-b9c0-4d1e-2f3a-4b5c6d7e8f9a", map[string]any{"actor_id": actor.UserID})
	}
	if err := s.repo.IncrementLikeCount(ctx, conv.ID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to like conversation")
	}
	conv.LikeCount++
	return conv, nil
}

// ===============================================
// Chat support
// ===============================================

// RecordActivity stamps the last message time and model on a conversation.
func (s *ConversationService) RecordActivity(ctx context.Context, conv *Conversation, at time.Time, model string) error {
	if err := s.repo.TouchLastMessage(ctx, conv.ID, at, model); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update conversation activity")
	}
	conv.LastMessageAt = &at
	if model != "" {
		conv.Model = model
	}
	return nil
}

// FindByIDs loads conversations by internal id, used by ranking caches.
func (s *ConversationService) FindByIDs(ctx context.Context, ids []uint) ([]*Conversation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	conversations, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversations")
	}
	return conversations, nil
}

// FindPublic lists public conversations for the gallery.
func (s *ConversationService) FindPublic(ctx context.Context, since *time.Time, pagination *query.Pagination) ([]*Conversation, int64, error) {
	public := true
	filter := ConversationFilter{IsPublic: &public, UpdatedSince: since}
	conversations, err := s.repo.FindByFilter(ctx, filter, pagination)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list public conversations")
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count public conversations")
	}
	return conversations, total, nil
}
