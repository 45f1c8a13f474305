package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovereign-chat/internal/domain/authz"
	"sovereign-chat/internal/domain/chat"
	"sovereign-chat/internal/domain/conversation"
	"sovereign-chat/internal/domain/message"
	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/infrastructure/database/databasetest"
	"sovereign-chat/internal/infrastructure/database/repository/conversationrepo"
	"sovereign-chat/internal/infrastructure/database/repository/messagerepo"
	"sovereign-chat/internal/utils/platformerrors"
)

type stubCompleter struct {
	result   *chat.CompletionResult
	err      error
	requests []chat.CompletionRequest
}

func (s *stubCompleter) Complete(_ context.Context, req chat.CompletionRequest) (*chat.CompletionResult, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubQuota struct {
	err error
}

func (s stubQuota) CheckQuota(context.Context, *user.User, string) error {
	return s.err
}

type stubHealth struct{}

func (stubHealth) Check(context.Context) chat.HealthReport {
	return chat.HealthReport{Primary: chat.BackendHealth{Configured: true, Healthy: true}}
}

type fixture struct {
	service       *chat.Service
	conversations *conversation.ConversationService
	messages      *message.Service
	completer     *stubCompleter
}

func newFixture(t *testing.T, quota chat.QuotaChecker) fixture {
	t.Helper()
	db := databasetest.NewSQLite(t)
	messages := message.NewService(messagerepo.NewMessageGormRepository(db))
	conversations := conversation.NewConversationService(conversationrepo.NewConversationGormRepository(db), messages)
	completer := &stubCompleter{result: &chat.CompletionResult{
		Content:          "hello there",
		Model:            "llama3.1",
		Source:           chat.SourceFallback,
		PromptTokens:     12,
		CompletionTokens: 3,
	}}
	return fixture{
		service:       chat.NewService(conversations, messages, quota, completer, stubHealth{}, chat.Config{HistoryLimit: 2}),
		conversations: conversations,
		messages:      messages,
		completer:     completer,
	}
}

var alice = &user.User{ID: 1, PublicID: "usr_alice"}

func TestSend_CreatesConversation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stubQuota{})

	res, err := f.service.Send(ctx, alice, chat.SendInput{Content: "  What is the capital of France?  "})
	require.NoError(t, err)

	assert.Equal(t, chat.SourceFallback, res.Source)
	assert.Equal(t, "What is the capital of France", res.Conversation.Title)
	assert.Equal(t, "What is the capital of France?", res.UserMessage.Content)
	assert.Equal(t, message.RoleAssistant, res.AssistantMessage.Role)
	assert.Equal(t, chat.SourceFallback, res.AssistantMessage.Source)
	assert.Equal(t, 12, res.AssistantMessage.PromptTokens)
	require.NotNil(t, res.Conversation.LastMessageAt)

	require.Len(t, f.completer.requests, 1)
	assert.Equal(t, "usr_alice", f.completer.requests[0].User)
	require.Len(t, f.completer.requests[0].Messages, 1)
	assert.Equal(t, "user", f.completer.requests[0].Messages[0].Role)
}

func TestSend_ExistingConversationUsesHistoryWindow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stubQuota{})

	first, err := f.service.Send(ctx, alice, chat.SendInput{Content: "one"})
	require.NoError(t, err)
	_, err = f.service.Send(ctx, alice, chat.SendInput{ConversationID: first.Conversation.PublicID, Content: "two"})
	require.NoError(t, err)

	require.Len(t, f.completer.requests, 2)
	prompt := f.completer.requests[1].Messages
	require.Len(t, prompt, 2)
	assert.Equal(t, "hello there", prompt[0].Content)
	assert.Equal(t, "two", prompt[1].Content)
	// the conversation model is reused when the request names none
	assert.Equal(t, "llama3.1", f.completer.requests[1].Model)
}

func TestSend_ForeignConversation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stubQuota{})

	conv, err := f.conversations.CreateConversation(ctx, authz.Actor{UserID: 2}, conversation.CreateConversationInput{})
	require.NoError(t, err)

	_, err = f.service.Send(ctx, alice, chat.SendInput{ConversationID: conv.PublicID, Content: "hi"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
	assert.Empty(t, f.completer.requests)
}

func TestSend_QuotaExceeded(t *testing.T) {
	denied := platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "monthly message limit reached", nil, "")
	f := newFixture(t, stubQuota{err: denied})

	_, err := f.service.Send(context.Background(), alice, chat.SendInput{Content: "hi"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
	assert.Empty(t, f.completer.requests)
}

func TestSend_EmptyMessage(t *testing.T) {
	f := newFixture(t, stubQuota{})
	_, err := f.service.Send(context.Background(), alice, chat.SendInput{Content: " \n "})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestSend_InferenceFailureKeepsUserMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stubQuota{})
	f.completer.err = platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "all inference backends failed", errors.New("boom"), "")

	_, err := f.service.Send(ctx, alice, chat.SendInput{Content: "hi"})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))

	count, err := f.messages.CountUserMessagesSince(ctx, alice.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, stubQuota{})
	report := f.service.Health(context.Background())
	assert.True(t, report.Primary.Healthy)
}
