package message

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/utils/idgen"
	"sovereign-chat/internal/utils/platformerrors"
)

// Service handles message persistence rules.
type Service struct {
	repo Repository
}

// NewService creates a message service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AppendInput is a message to add to a conversation.
type AppendInput struct {
	ConversationID   uint
	UserID           uint
	Role             Role
	Content          string
	Model            string
	Source           string
	PromptTokens     int
	CompletionTokens int
}

// Append validates and stores a message.
func (s *Service) Append(ctx context.Context, input AppendInput) (*Message, error) {
	if !input.Role.Valid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "role must be one of user, assistant, system", nil, "4e5f6a7b-8c9d-4e0f-a1b2-c3d4e5f6a7b8")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "content is required", nil, "5f6a7b8c-9d0e-4f1a-b2c3-d4e5f6a7b8c9")
	}
	if utf8.RuneCountInString(input.Content) > MaxContentLength {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "content is too long", nil, "6a7b8c9d-0e1f-4a2b-c3d4-e5f6a7b8c9d0")
	}

	publicID, err := idgen.GenerateSecureID(idgen.PrefixMessage, idgen.DefaultLength)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate message id", err, "7b8c9d0e-1f2a-4b3c-d4e5-f6a7b8c9d0e1")
	}

	msg := &Message{
		PublicID:         publicID,
		ConversationID:   input.ConversationID,
		UserID:           input.UserID,
		Role:             input.Role,
		Content:          input.Content,
		Model:            strings.TrimSpace(input.Model),
		Source:           input.Source,
		PromptTokens:     input.PromptTokens,
		CompletionTokens: input.CompletionTokens,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store message")
	}
	return msg, nil
}

// List pages the messages of a conversation in creation order.
func (s *Service) List(ctx context.Context, conversationID uint, pagination query.Pagination) (query.Page[*Message], error) {
	pagination.Normalize()
	pagination.SortBy = "created_at"

	messages, err := s.repo.FindByConversationID(ctx, conversationID, &pagination)
	if err != nil {
		return query.Page[*Message]{}, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list messages")
	}
	total, err := s.repo.CountByConversationID(ctx, conversationID)
	if err != nil {
		return query.Page[*Message]{}, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count messages")
	}
	return query.Page[*Message]{Items: messages, Total: total, Limit: pagination.Limit, Offset: pagination.Offset}, nil
}

// History returns the last limit messages of a conversation, oldest first.
func (s *Service) History(ctx context.Context, conversationID uint, limit int) ([]*Message, error) {
	messages, err := s.repo.Latest(ctx, conversationID, limit)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load conversation history")
	}
	return messages, nil
}

// CountUserMessagesSince counts messages the user authored since a point in time.
func (s *Service) CountUserMessagesSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	count, err := s.repo.CountByUserSince(ctx, userID, RoleUser, since)
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count messages")
	}
	return count, nil
}

// UsageByModel aggregates token usage of the user's messages since a point in time.
func (s *Service) UsageByModel(ctx context.Context, userID uint, since time.Time) ([]ModelUsage, error) {
	usage, err := s.repo.UsageByModel(ctx, userID, since)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to aggregate usage")
	}
	return usage, nil
}

// DeleteByConversationID implements conversation.MessagePurger.
func (s *Service) DeleteByConversationID(ctx context.Context, conversationID uint) error {
	if err := s.repo.DeleteByConversationID(ctx, conversationID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete messages")
	}
	return nil
}
