package usage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/message"
	"sovereign-chat/internal/domain/subscription"
	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/utils/platformerrors"
)

type fixedEntitlements subscription.Entitlements

func (f fixedEntitlements) Entitlements(context.Context, *user.User) (subscription.Entitlements, error) {
	return subscription.Entitlements(f), nil
}

type fakeStats struct {
	count int64
	since time.Time
	usage []message.ModelUsage
}

func (f *fakeStats) CountUserMessagesSince(_ context.Context, _ uint, since time.Time) (int64, error) {
	f.since = since
	return f.count, nil
}

func (f *fakeStats) UsageByModel(context.Context, uint, time.Time) ([]message.ModelUsage, error) {
	return f.usage, nil
}

func TestCurrentPeriod(t *testing.T) {
	p := CurrentPeriod(time.Date(2026, 12, 31, 23, 0, 0, 0, time.FixedZone("x", -3*3600)))
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC), p.End)
}

func TestCheckQuota(t *testing.T) {
	ctx := context.Background()
	u := &user.User{ID: 1}

	stats := &fakeStats{count: 50}
	svc := NewService(fixedEntitlements{Plan: subscription.PlanFree, MonthlyMessages: 50}, stats, nil)
	err := svc.CheckQuota(ctx, u, "")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))

	stats.count = 49
	assert.NoError(t, svc.CheckQuota(ctx, u, ""))

	svc = NewService(fixedEntitlements{Plan: subscription.PlanSovereign, Unlimited: true}, &fakeStats{count: 1_000_000}, nil)
	assert.NoError(t, svc.CheckQuota(ctx, u, "anything"))

	svc = NewService(fixedEntitlements{Plan: subscription.PlanFree, AllowedModels: []string{"small"}}, &fakeStats{}, nil)
	assert.NoError(t, svc.CheckQuota(ctx, u, "small"))
	err = svc.CheckQuota(ctx, u, "large")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
}

func TestReportEstimatesCost(t *testing.T) {
	catalog, err := config.ParsePlanCatalog([]byte(`
plans:
  FREE:
    monthly_messages: 10
models:
  gpt-4o-mini:
    input_per_1k: "0.15"
    output_per_1k: "0.60"
`))
	require.NoError(t, err)

	stats := &fakeStats{count: 4, usage: []message.ModelUsage{
		{Model: "gpt-4o-mini", Messages: 3, PromptTokens: 2000, CompletionTokens: 1000},
		{Model: "llama3.1", Messages: 1, PromptTokens: 500, CompletionTokens: 500},
	}}
	svc := NewService(fixedEntitlements{Plan: subscription.PlanFree, MonthlyMessages: 10}, stats, catalog)
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }

	report, err := svc.Report(context.Background(), &user.User{ID: 1})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), stats.since)
	assert.Equal(t, int64(4), report.MessagesUsed)
	assert.Equal(t, int64(6), report.Remaining())
	assert.Equal(t, int64(2500), report.PromptTokens)
	assert.Equal(t, int64(1500), report.CompletionTokens)
	assert.True(t, report.EstimatedCost.Equal(decimal.RequireFromString("0.9")), report.EstimatedCost.String())
	require.Len(t, report.Models, 2)
	assert.Equal(t, "gpt-4o-mini", report.Models[0].Model)
	assert.True(t, report.Models[1].EstimatedCost.IsZero())
}

func TestRemainingUnlimited(t *testing.T) {
	assert.Equal(t, int64(-1), Report{Unlimited: true}.Remaining())
	assert.Equal(t, int64(-1), Report{MessagesLimit: 0}.Remaining())
	assert.Equal(t, int64(0), Report{MessagesLimit: 5, MessagesUsed: 9}.Remaining())
}
