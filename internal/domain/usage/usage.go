// Package usage reports monthly consumption and enforces plan quotas.
package usage

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/message"
	"sovereign-chat/internal/domain/subscription"
	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/utils/platformerrors"
)

// Period is a half-open [Start, End) usage window.
type Period struct {
	Start time.Time
	End   time.Time
}

// CurrentPeriod is the UTC calendar month containing now.
func CurrentPeriod(now time.Time) Period {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, 0)}
}

// ModelCost is usage and estimated cost for one model tag.
type ModelCost struct {
	Model            string
	Messages         int64
	PromptTokens     int64
	CompletionTokens int64
	EstimatedCost    decimal.Decimal
}

// Report summarizes the current period for one user.
type Report struct {
	Plan             subscription.Plan
	Period           Period
	MessagesUsed     int64
	MessagesLimit    int
	Unlimited        bool
	PromptTokens     int64
	CompletionTokens int64
	EstimatedCost    decimal.Decimal
	Models           []ModelCost
}

// Remaining is the number of messages left, or -1 when unlimited.
func (r Report) Remaining() int64 {
	if r.Unlimited || r.MessagesLimit == 0 {
		return -1
	}
	left := int64(r.MessagesLimit) - r.MessagesUsed
	if left < 0 {
		return 0
	}
	return left
}

// EntitlementSource resolves what a user's plan grants.
type EntitlementSource interface {
	Entitlements(ctx context.Context, u *user.User) (subscription.Entitlements, error)
}

// MessageStats reads message aggregates.
type MessageStats interface {
	CountUserMessagesSince(ctx context.Context, userID uint, since time.Time) (int64, error)
	UsageByModel(ctx context.Context, userID uint, since time.Time) ([]message.ModelUsage, error)
}

// Service computes usage reports and quota decisions.
type Service struct {
	entitlements EntitlementSource
	messages     MessageStats
	catalog      *config.PlanCatalog
	now          func() time.Time
}

// NewService creates a usage service.
func NewService(entitlements EntitlementSource, messages MessageStats, catalog *config.PlanCatalog) *Service {
	if catalog == nil {
		catalog = config.DefaultPlanCatalog()
	}
	return &Service{entitlements: entitlements, messages: messages, catalog: catalog, now: time.Now}
}

var thousand = decimal.NewFromInt(1000)

// Report builds the usage report for the current period.
func (s *Service) Report(ctx context.Context, u *user.User) (*Report, error) {
	ent, err := s.entitlements.Entitlements(ctx, u)
	if err != nil {
		return nil, err
	}
	period := CurrentPeriod(s.now())

	used, err := s.messages.CountUserMessagesSince(ctx, u.ID, period.Start)
	if err != nil {
		return nil, err
	}
	byModel, err := s.messages.UsageByModel(ctx, u.ID, period.Start)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Plan:          ent.Plan,
		Period:        period,
		MessagesUsed:  used,
		MessagesLimit: ent.MonthlyMessages,
		Unlimited:     ent.Unlimited,
		EstimatedCost: decimal.Zero,
	}
	for _, m := range byModel {
		cost := decimal.Zero
		if pricing, ok := s.catalog.Pricing(m.Model); ok {
			cost = pricing.InputPer1K.Mul(decimal.NewFromInt(m.PromptTokens)).
				Add(pricing.OutputPer1K.Mul(decimal.NewFromInt(m.CompletionTokens))).
				Div(thousand)
		}
		report.Models = append(report.Models, ModelCost{
			Model:            m.Model,
			Messages:         m.Messages,
			PromptTokens:     m.PromptTokens,
			CompletionTokens: m.CompletionTokens,
			EstimatedCost:    cost,
		})
		report.PromptTokens += m.PromptTokens
		report.CompletionTokens += m.CompletionTokens
		report.EstimatedCost = report.EstimatedCost.Add(cost)
	}
	sort.Slice(report.Models, func(i, j int) bool { return report.Models[i].Model < report.Models[j].Model })
	return report, nil
}

// CheckQuota returns FORBIDDEN when the user may not send another message
// with model. The sovereign user bypasses plan checks.
func (s *Service) CheckQuota(ctx context.Context, u *user.User, model string) error {
	ent, err := s.entitlements.Entitlements(ctx, u)
	if err != nil {
		return err
	}
	if ent.Unlimited {
		return nil
	}
	if !ent.AllowsModel(model) {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"model is not available on your plan", nil, "8c9d0e1f-2a3b-4c4d-e5f6-a7b8c9d0e1f2",
			map[string]any{"plan": ent.Plan, "model": model})
	}
	if ent.MonthlyMessages == 0 {
		return nil
	}
	used, err := s.messages.CountUserMessagesSince(ctx, u.ID, CurrentPeriod(s.now()).Start)
	if err != nil {
		return err
	}
	if used >= int64(ent.MonthlyMessages) {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden,
			"monthly message limit reached", nil, "9d0e1f2a-3b4c-4d5e-f6a7-b8c9d0e1f2a3",
			map[string]any{"plan": ent.Plan, "limit": ent.MonthlyMessages, "used": used})
	}
	return nil
}
