// Package gallery lists public conversations.
package gallery

import (
	"context"
	"math"
	"sort"
	"time"

	"sovereign-chat/internal/domain/conversation"
	"sovereign-chat/internal/domain/query"
	"sovereign-chat/internal/infrastructure/logger"
	"sovereign-chat/internal/utils/platformerrors"
)

// Sort selects the gallery ordering.
type Sort string

const (
	SortRecent   Sort = "recent"
	SortViews    Sort = "views"
	SortLikes    Sort = "likes"
	SortTrending Sort = "trending"
)

// ParseSort validates a gallery sort key; empty selects recent.
func ParseSort(raw string) (Sort, bool) {
	switch Sort(raw) {
	case "":
		return SortRecent, true
	case SortRecent, SortViews, SortLikes, SortTrending:
		return Sort(raw), true
	}
	return "", false
}

const trendingCacheKey = "gallery:trending:v1"

// RankingCache stores a ranked id list for a limited time.
type RankingCache interface {
	Get(ctx context.Context, key string) ([]uint, bool)
	Set(ctx context.Context, key string, ids []uint, ttl time.Duration)
}

// PublicConversations is the read side the gallery needs.
type PublicConversations interface {
	FindPublic(ctx context.Context, since *time.Time, pagination *query.Pagination) ([]*conversation.Conversation, int64, error)
	FindByIDs(ctx context.Context, ids []uint) ([]*conversation.Conversation, error)
}

// Config is the trending policy.
type Config struct {
	TrendingWindow time.Duration
	Candidates     int
	LikeWeight     float64
	ViewWeight     float64
	Gravity        float64
	CacheTTL       time.Duration
}

// Service lists the gallery.
type Service struct {
	conversations PublicConversations
	cache         RankingCache
	cfg           Config
	now           func() time.Time
}

// NewService creates a gallery service.
func NewService(conversations PublicConversations, cache RankingCache, cfg Config) *Service {
	if cfg.Candidates <= 0 {
		cfg.Candidates = 500
	}
	return &Service{conversations: conversations, cache: cache, cfg: cfg, now: time.Now}
}

// List returns one page of public conversations in the requested order.
func (s *Service) List(ctx context.Context, order Sort, pagination query.Pagination) (query.Page[*conversation.Conversation], error) {
	pagination.Normalize()
	pagination.Order = query.OrderDesc

	switch order {
	case SortTrending:
		return s.listTrending(ctx, pagination)
	case SortViews:
		pagination.SortBy = string(conversation.SortViewCount)
	case SortLikes:
		pagination.SortBy = string(conversation.SortLikeCount)
	default:
		pagination.SortBy = string(conversation.SortUpdatedAt)
	}

	items, total, err := s.conversations.FindPublic(ctx, nil, &pagination)
	if err != nil {
		return query.Page[*conversation.Conversation]{}, err
	}
	return query.Page[*conversation.Conversation]{Items: items, Total: total, Limit: pagination.Limit, Offset: pagination.Offset}, nil
}

func (s *Service) listTrending(ctx context.Context, pagination query.Pagination) (query.Page[*conversation.Conversation], error) {
	ids, err := s.trendingIDs(ctx)
	if err != nil {
		return query.Page[*conversation.Conversation]{}, err
	}

	page := query.Page[*conversation.Conversation]{Total: int64(len(ids)), Limit: pagination.Limit, Offset: pagination.Offset}
	if pagination.Offset >= len(ids) {
		return page, nil
	}
	end := min(pagination.Offset+pagination.Limit, len(ids))
	pageIDs := ids[pagination.Offset:end]

	found, err := s.conversations.FindByIDs(ctx, pageIDs)
	if err != nil {
		return query.Page[*conversation.Conversation]{}, err
	}
	byID := make(map[uint]*conversation.Conversation, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	// cached ranks may reference conversations made private since
	for _, id := range pageIDs {
		if c, ok := byID[id]; ok && c.IsPublic {
			page.Items = append(page.Items, c)
		}
	}
	return page, nil
}

func (s *Service) trendingIDs(ctx context.Context) ([]uint, error) {
	if s.cache != nil {
		if ids, ok := s.cache.Get(ctx, trendingCacheKey); ok {
			return ids, nil
		}
	}
	return s.computeTrending(ctx)
}

// RefreshTrending recomputes the trending ranking and stores it in the cache.
func (s *Service) RefreshTrending(ctx context.Context) error {
	_, err := s.computeTrending(ctx)
	return err
}

func (s *Service) computeTrending(ctx context.Context) ([]uint, error) {
	now := s.now()
	var since *time.Time
	if s.cfg.TrendingWindow > 0 {
		cutoff := now.Add(-s.cfg.TrendingWindow)
		since = &cutoff
	}
	candidates, _, err := s.conversations.FindPublic(ctx, since, &query.Pagination{
		Limit:  s.cfg.Candidates,
		SortBy: string(conversation.SortUpdatedAt),
		Order:  query.OrderDesc,
	})
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load trending candidates")
	}

	ids := Rank(candidates, s.cfg, now)
	if s.cache != nil {
		s.cache.Set(ctx, trendingCacheKey, ids, s.cfg.CacheTTL)
	}
	log := logger.GetLogger()
	log.Debug().Int("candidates", len(candidates)).Msg("trending ranking recomputed")
	return ids, nil
}

// Score is (likes*likeWeight + views*viewWeight) / (ageHours + 2)^gravity.
func Score(c *conversation.Conversation, cfg Config, now time.Time) float64 {
	ageHours := math.Max(now.Sub(c.UpdatedAt).Hours(), 0)
	points := float64(c.LikeCount)*cfg.LikeWeight + float64(c.ViewCount)*cfg.ViewWeight
	return points / math.Pow(ageHours+2, cfg.Gravity)
}

// Rank orders conversations by Score, newest first on ties, and returns their ids.
func Rank(conversations []*conversation.Conversation, cfg Config, now time.Time) []uint {
	type scored struct {
		c     *conversation.Conversation
		score float64
	}
	list := make([]scored, 0, len(conversations))
	for _, c := range conversations {
		list = append(list, scored{c: c, score: Score(c, cfg, now)})
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].c.UpdatedAt.After(list[j].c.UpdatedAt)
	})
	ids := make([]uint, len(list))
	for i, s := range list {
		ids[i] = s.c.ID
	}
	return ids
}
