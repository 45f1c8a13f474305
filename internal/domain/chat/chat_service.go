package chat

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"sovereign-chat/internal/domain/authz"
	"sovereign-chat/internal/domain/conversation"
	"sovereign-chat/internal/domain/message"
	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/infrastructure/logger"
	"sovereign-chat/internal/utils/platformerrors"
	"sovereign-chat/internal/utils/stringutils"
)

const titleMaxLength = 60

// QuotaChecker decides whether the user may send another message.
type QuotaChecker interface {
	CheckQuota(ctx context.Context, u *user.User, model string) error
}

// Config carries chat settings taken from the process configuration.
type Config struct {
	// HistoryLimit is how many stored messages are sent as context.
	HistoryLimit int
}

// Service orchestrates a chat turn.
type Service struct {
	conversations *conversation.ConversationService
	messages      *message.Service
	quota         QuotaChecker
	completer     Completer
	health        HealthChecker
	cfg           Config
}

// NewService creates a chat service.
func NewService(
	conversations *conversation.ConversationService,
	messages *message.Service,
	quota QuotaChecker,
	completer Completer,
	health HealthChecker,
	cfg Config,
) *Service {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}
	return &Service{
		conversations: conversations,
		messages:      messages,
		quota:         quota,
		completer:     completer,
		health:        health,
		cfg:           cfg,
	}
}

// SendInput is a user message for a new or existing conversation.
type SendInput struct {
	ConversationID string
	Content        string
	Model          string
	Temperature    *float32
	MaxTokens      int
}

// SendResult is the stored exchange.
type SendResult struct {
	Conversation     *conversation.Conversation
	UserMessage      *message.Message
	AssistantMessage *message.Message
	Source           string
}

// Send resolves or creates the conversation, enforces plan limits, stores the
// user message, runs the completion with history and stores the reply.
func (s *Service) Send(ctx context.Context, u *user.User, input SendInput) (*SendResult, error) {
	log := logger.GetLogger()
	actor := authz.ActorFor(u)

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "message is required", nil, "0a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d")
	}
	if utf8.RuneCountInString(content) > message.MaxContentLength {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "message is too long", nil, "1b2c3d4e-5f6a-4b7c-9d8e-0f1a2b3c4d5e")
	}

	var conv *conversation.Conversation
	if input.ConversationID != "" {
		existing, err := s.conversations.GetConversation(ctx, actor, input.ConversationID)
		if err != nil {
			return nil, err
		}
		conv = existing
	}

	model := strings.TrimSpace(input.Model)
	if model == "" && conv != nil {
		model = conv.Model
	}

	if err := s.quota.CheckQuota(ctx, u, model); err != nil {
		return nil, err
	}

	if conv == nil {
		created, err := s.conversations.CreateConversation(ctx, actor, conversation.CreateConversationInput{
			Title: stringutils.ConversationTitle(content, titleMaxLength, conversation.DefaultTitle),
			Model: model,
		})
		if err != nil {
			return nil, err
		}
		conv = created
	}

	userMsg, err := s.messages.Append(ctx, message.AppendInput{
		ConversationID: conv.ID,
		UserID:         u.ID,
		Role:           message.RoleUser,
		Content:        content,
		Model:          model,
	})
	if err != nil {
		return nil, err
	}

	history, err := s.messages.History(ctx, conv.ID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, err
	}
	prompt := make([]PromptMessage, 0, len(history))
	for _, m := range history {
		prompt = append(prompt, PromptMessage{Role: string(m.Role), Content: m.Content})
	}

	result, err := s.completer.Complete(ctx, CompletionRequest{
		Model:       model,
		Messages:    prompt,
		Temperature: input.Temperature,
		MaxTokens:   input.MaxTokens,
		User:        u.PublicID,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "inference failed")
	}

	assistantMsg, err := s.messages.Append(ctx, message.AppendInput{
		ConversationID:   conv.ID,
		UserID:           u.ID,
		Role:             message.RoleAssistant,
		Content:          result.Content,
		Model:            result.Model,
		Source:           result.Source,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
	})
	if err != nil {
		return nil, err
	}

	if err := s.conversations.RecordActivity(ctx, conv, time.Now().UTC(), result.Model); err != nil {
		log.Warn().Err(err).Str("conversation_id", conv.PublicID).Msg("failed to record conversation activity")
	}

	log.Info().
		Uint("user_id", u.ID).
		Str("conversation_id", conv.PublicID).
		Str("model", result.Model).
		Str("source", result.Source).
		Int("prompt_tokens", result.PromptTokens).
		Int("completion_tokens", result.CompletionTokens).
		Msg("chat completion recorded")

	return &SendResult{
		Conversation:     conv,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Source:           result.Source,
	}, nil
}

// Health probes both inference backends.
func (s *Service) Health(ctx context.Context) HealthReport {
	return s.health.Check(ctx)
}
