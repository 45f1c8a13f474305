package conversationrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovereign-chat/internal/domain/conversation"
	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/infrastructure/database/databasetest"
	"sovereign-chat/internal/infrastructure/database/repository/conversationrepo"
	"sovereign-chat/internal/utils/platformerrors"
	"sovereign-chat/internal/utils/ptr"
)

func seed(t *testing.T, repo conversation.ConversationRepository, userID uint, publicID, title string) *conversation.Conversation {
	t.Helper()
	conv := &conversation.Conversation{PublicID: publicID, UserID: userID, Title: title}
	require.NoError(t, repo.Create(context.Background(), conv))
	require.NotZero(t, conv.ID)
	return conv
}

func TestConversationRepository_FindByFilterPinnedFirst(t *testing.T) {
	ctx := context.Background()
	repo := conversationrepo.NewConversationGormRepository(databasetest.NewSQLite(t))

	a := seed(t, repo, 1, "conv_a", "alpha")
	b := seed(t, repo, 1, "conv_b", "bravo")
	seed(t, repo, 2, "conv_c", "other user")

	a.IsPinned = true
	require.NoError(t, repo.Update(ctx, a))

	userID := uint(1)
	filter := conversation.ConversationFilter{UserID: &userID, PinnedFirst: true}
	got, err := repo.FindByFilter(ctx, filter, &query.Pagination{Limit: 10, SortBy: "title", Order: query.OrderDesc})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.PublicID, got[0].PublicID)
	assert.Equal(t, b.PublicID, got[1].PublicID)

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestConversationRepository_Pagination(t *testing.T) {
	ctx := context.Background()
	repo := conversationrepo.NewConversationGormRepository(databasetest.NewSQLite(t))

	seed(t, repo, 1, "conv_1", "a")
	seed(t, repo, 1, "conv_2", "b")
	seed(t, repo, 1, "conv_3", "c")

	got, err := repo.FindByFilter(ctx, conversation.ConversationFilter{}, &query.Pagination{Limit: 2, Offset: 1, SortBy: "title", Order: query.OrderAsc})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Title)
	assert.Equal(t, "c", got[1].Title)
}

func TestConversationRepository_ShareIDConflict(t *testing.T) {
	ctx := context.Background()
	repo := conversationrepo.NewConversationGormRepository(databasetest.NewSQLite(t))

	a := seed(t, repo, 1, "conv_a", "a")
	b := seed(t, repo, 1, "conv_b", "b")

	a.IsPublic = true
	a.ShareID = ptr.ToString("shr_same")
	require.NoError(t, repo.Update(ctx, a))

	b.IsPublic = true
	b.ShareID = ptr.ToString("shr_same")
	err := repo.Update(ctx, b)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))

	found, err := repo.FindByShareID(ctx, "shr_same")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
}

func TestConversationRepository_Counters(t *testing.T) {
	ctx := context.Background()
	repo := conversationrepo.NewConversationGormRepository(databasetest.NewSQLite(t))

	conv := seed(t, repo, 1, "conv_a", "a")
	require.NoError(t, repo.IncrementViewCount(ctx, conv.ID))
	require.NoError(t, repo.IncrementViewCount(ctx, conv.ID))
	require.NoError(t, repo.IncrementLikeCount(ctx, conv.ID))

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.TouchLastMessage(ctx, conv.ID, at, "llama3.1"))

	got, err := repo.FindByPublicID(ctx, "conv_a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ViewCount)
	assert.Equal(t, int64(1), got.LikeCount)
	assert.Equal(t, "llama3.1", got.Model)
	require.NotNil(t, got.LastMessageAt)
	assert.True(t, got.LastMessageAt.Equal(at))
}

func TestConversationRepository_FindByIDsAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := conversationrepo.NewConversationGormRepository(databasetest.NewSQLite(t))

	a := seed(t, repo, 1, "conv_a", "a")
	b := seed(t, repo, 1, "conv_b", "b")

	got, err := repo.FindByIDs(ctx, []uint{a.ID, b.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.FindByPublicID(ctx, "conv_a")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}
