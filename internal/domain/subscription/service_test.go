package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sovereign-chat/internal/config"
	"sovereign-chat/internal/domain/user"
	"sovereign-chat/internal/utils/platformerrors"
)

type memoryRepo struct {
	byUser  map[uint]*Subscription
	updates int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byUser: map[uint]*Subscription{}}
}

func notFound(ctx context.Context) error {
	return platformerrors.AsError(ctx, platformerrors.LayerRepository, gorm.ErrRecordNotFound, "subscription not found")
}

func (r *memoryRepo) CreateIfAbsent(_ context.Context, sub *Subscription) (*Subscription, error) {
	if existing, ok := r.byUser[sub.UserID]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *sub
	cp.ID = uint(len(r.byUser) + 1)
	r.byUser[sub.UserID] = &cp
	out := cp
	return &out, nil
}

func (r *memoryRepo) FindByUserID(ctx context.Context, userID uint) (*Subscription, error) {
	sub, ok := r.byUser[userID]
	if !ok {
		return nil, notFound(ctx)
	}
	cp := *sub
	return &cp, nil
}

func (r *memoryRepo) FindByCustomerID(ctx context.Context, customerID string) (*Subscription, error) {
	for _, sub := range r.byUser {
		if sub.CustomerID() == customerID {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, notFound(ctx)
}

func (r *memoryRepo) Update(_ context.Context, sub *Subscription) error {
	cp := *sub
	r.byUser[sub.UserID] = &cp
	r.updates++
	return nil
}

type fakeGateway struct {
	customers    int
	checkouts    []CheckoutInput
	portalCalls  int
	event        *Event
	constructErr error
	checkoutErr  error
}

func (g *fakeGateway) CreateCustomer(_ context.Context, _ CustomerInput) (string, error) {
	g.customers++
	return "cus_test", nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, input CheckoutInput) (*CheckoutSession, error) {
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	g.checkouts = append(g.checkouts, input)
	return &CheckoutSession{ID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (g *fakeGateway) CreatePortalSession(_ context.Context, customerID, returnURL string) (string, error) {
	g.portalCalls++
	return "https://billing.example/" + customerID, nil
}

func (g *fakeGateway) ConstructEvent(_ []byte, _ string) (*Event, error) {
	if g.constructErr != nil {
		return nil, g.constructErr
	}
	return g.event, nil
}

func testCatalog() *config.PlanCatalog {
	catalog := config.DefaultPlanCatalog()
	catalog.OverridePrice(config.PlanPro, "price_pro")
	catalog.OverridePrice(config.PlanEnterprise, "price_ent")
	return catalog
}

func newTestService(policy string) (*Service, *memoryRepo, *fakeGateway) {
	repo := newMemoryRepo()
	gw := &fakeGateway{}
	svc := NewService(repo, gw, Config{
		UpgradePolicy:   policy,
		SuccessURL:      "https://app.example/ok",
		CancelURL:       "https://app.example/cancel",
		PortalReturnURL: "https://app.example/billing",
		Catalog:         testCatalog(),
	})
	return svc, repo, gw
}

func TestEnsureForUserCreatesFreeActive(t *testing.T) {
	svc, repo, _ := newTestService(config.UpgradePolicyFreeOnly)
	ctx := context.Background()
	u := &user.User{ID: 1}

	require.NoError(t, svc.EnsureForUser(ctx, u))
	require.NoError(t, svc.EnsureForUser(ctx, u))

	assert.Len(t, repo.byUser, 1)
	assert.Equal(t, PlanFree, repo.byUser[1].Plan)
	assert.Equal(t, StatusActive, repo.byUser[1].Status)
}

func TestEnsureForUserRestoresSovereign(t *testing.T) {
	svc, repo, _ := newTestService(config.UpgradePolicyFreeOnly)
	ctx := context.Background()
	repo.byUser[5] = &Subscription{ID: 1, UserID: 5, Plan: PlanFree, Status: StatusCanceled}

	require.NoError(t, svc.EnsureForUser(ctx, &user.User{ID: 5, Sovereign: true}))

	assert.Equal(t, PlanSovereign, repo.byUser[5].Plan)
	assert.Equal(t, StatusActive, repo.byUser[5].Status)
}

func TestRevokedSovereignFallsBackToFree(t *testing.T) {
	svc, repo, gw := newTestService(config.UpgradePolicyFreeOnly)
	ctx := context.Background()

	require.NoError(t, svc.EnsureForUser(ctx, &user.User{ID: 5, Sovereign: true}))
	require.Equal(t, PlanSovereign, repo.byUser[5].Plan)

	former := &user.User{ID: 5, PublicID: "usr_5", Email: "former@example.com"}
	ent, err := svc.Entitlements(ctx, former)
	require.NoError(t, err)
	assert.False(t, ent.Unlimited)
	assert.Equal(t, PlanFree, ent.Plan)
	assert.Equal(t, 50, ent.MonthlyMessages)
	assert.Equal(t, PlanFree, repo.byUser[5].Plan)
	assert.Equal(t, StatusActive, repo.byUser[5].Status)

	url, err := svc.CreateCheckout(ctx, former, PlanPro)
	require.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Len(t, gw.checkouts, 1)
}

func TestEnsureForUserDemotesRevokedSovereign(t *testing.T) {
	svc, repo, _ := newTestService(config.UpgradePolicyFreeOnly)
	ctx := context.Background()
	repo.byUser[5] = &Subscription{ID: 1, UserID: 5, Plan: PlanSovereign, Status: StatusActive}

	require.NoError(t, svc.EnsureForUser(ctx, &user.User{ID: 5}))

	assert.Equal(t, PlanFree, repo.byUser[5].Plan)
	assert.Equal(t, StatusActive, repo.byUser[5].Status)
	assert.Equal(t, PlanFree, EffectivePlan(&Subscription{Plan: PlanSovereign, Status: StatusActive}, false))
}

func TestCreateCheckoutForFreeUser(t *testing.T) {
	svc, repo, gw := newTestService(config.UpgradePolicyFreeOnly)
	ctx := context.Background()
	u := &user.User{ID: 1, PublicID: "usr_1", Email: "a@example.com"}

	url, err := svc.CreateCheckout(ctx, u, PlanPro)
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.example/cs_test", url)
	require.Len(t, gw.checkouts, 1)
	assert.Equal(t, "price_pro", gw.checkouts[0].PriceID)
	assert.Equal(t, "cus_test", gw.checkouts[0].CustomerID)
	assert.Equal(t, "usr_1", gw.checkouts[0].ClientReferenceID)

	stored := repo.byUser[1]
	assert.Equal(t, PlanPro, stored.Plan)
	assert.Equal(t, StatusIncomplete, stored.Status)
	assert.Equal(t, "cus_test", stored.CustomerID())

	_, err = svc.CreateCheckout(ctx, u, PlanPro)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.customers, "customer is reused")
}

func TestCreateCheckoutRejectsActivePaid(t *testing.T) {
	svc, repo, gw := newTestService(config.UpgradePolicyFreeOnly)
	ctx := context.Background()
	repo.byUser[1] = &Subscription{ID: 1, UserID: 1, Plan: PlanPro, Status: StatusActive}

	_, err := svc.CreateCheckout(ctx, &user.User{ID: 1}, PlanEnterprise)

	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	assert.Empty(t, gw.checkouts)
	assert.Equal(t, PlanPro, repo.byUser[1].Plan)
}

func TestCreateCheckoutAllowPlanChange(t *testing.T) {
	svc, repo, gw := newTestService(config.UpgradePolicyAllowPlanChange)
	ctx := context.Background()
	repo.byUser[1] = &Subscription{ID: 1, UserID: 1, Plan: PlanPro, Status: StatusActive}

	_, err := svc.CreateCheckout(ctx, &user.User{ID: 1}, PlanPro)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation), "same plan is still rejected")

	_, err = svc.CreateCheckout(ctx, &user.User{ID: 1}, PlanEnterprise)
	require.NoError(t, err)
	assert.Len(t, gw.checkouts, 1)
}

func TestCreateCheckoutRejectsUnpurchasablePlans(t *testing.T) {
	svc, _, gw := newTestService(config.UpgradePolicyFreeOnly)
	ctx := context.Background()

	for _, plan := range []Plan{PlanFree, PlanSovereign, Plan("GOLD")} {
		_, err := svc.CreateCheckout(ctx, &user.User{ID: 1}, plan)
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation), "plan %s", plan)
	}
	_, err := svc.CreateCheckout(ctx, &user.User{ID: 2, Sovereign: true}, PlanPro)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	assert.Empty(t, gw.checkouts)
}

func TestCreatePortalRequiresCustomer(t *testing.T) {
	svc, repo, gw := newTestService(config.UpgradePolicyFreeOnly)
	ctx := context.Background()

	_, err := svc.CreatePortal(ctx, &user.User{ID: 1})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	customer := "cus_1"
	repo.byUser[1].ExternalCustomerID = &customer
	url, err := svc.CreatePortal(ctx, &user.User{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "https://billing.example/cus_1", url)
	assert.Equal(t, 1, gw.portalCalls)
}

func seedCustomer(repo *memoryRepo, status Status, plan Plan) {
	customer := "cus_1"
	repo.byUser[1] = &Subscription{ID: 1, UserID: 1, Plan: plan, Status: status, ExternalCustomerID: &customer}
}

func TestHandleWebhookInvalidSignature(t *testing.T) {
	svc, repo, gw := newTestService(config.UpgradePolicyFreeOnly)
	seedCustomer(repo, StatusActive, PlanPro)
	gw.constructErr = platformerrors.NewError(context.Background(), platformerrors.LayerInfrastructure,
		platformerrors.ErrorTypeValidation, "invalid signature", errors.New("bad sig"), "")

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "t=1,v1=bad")

	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	assert.Zero(t, repo.updates)
}

func TestHandleWebhookTransitions(t *testing.T) {
	periodEnd := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		event      Event
		startPlan  Plan
		wantPlan   Plan
		wantStatus Status
	}{
		{
			name:       "subscription activated",
			event:      Event{Type: EventSubscriptionUpdated, ExternalStatus: "active", PriceID: "price_ent", SubscriptionID: "sub_x", CurrentPeriodEnd: &periodEnd},
			startPlan:  PlanPro,
			wantPlan:   PlanEnterprise,
			wantStatus: StatusActive,
		},
		{
			name:       "unknown price keeps plan",
			event:      Event{Type: EventSubscriptionCreated, ExternalStatus: "trialing", PriceID: "price_other"},
			startPlan:  PlanPro,
			wantPlan:   PlanPro,
			wantStatus: StatusActive,
		},
		{
			name:       "unpaid is past due",
			event:      Event{Type: EventSubscriptionUpdated, ExternalStatus: "unpaid", PriceID: "price_pro"},
			startPlan:  PlanPro,
			wantPlan:   PlanPro,
			wantStatus: StatusPastDue,
		},
		{
			name:       "deleted",
			event:      Event{Type: EventSubscriptionDeleted},
			startPlan:  PlanPro,
			wantPlan:   PlanPro,
			wantStatus: StatusCanceled,
		},
		{
			name:       "invoice paid",
			event:      Event{Type: EventInvoicePaymentSucceeded},
			startPlan:  PlanPro,
			wantPlan:   PlanPro,
			wantStatus: StatusActive,
		},
		{
			name:       "invoice failed",
			event:      Event{Type: EventInvoicePaymentFailed},
			startPlan:  PlanPro,
			wantPlan:   PlanPro,
			wantStatus: StatusPastDue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, gw := newTestService(config.UpgradePolicyFreeOnly)
			seedCustomer(repo, StatusIncomplete, tt.startPlan)
			ev := tt.event
			ev.ID = "evt_1"
			ev.CustomerID = "cus_1"
			gw.event = &ev

			require.NoError(t, svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

			stored := repo.byUser[1]
			assert.Equal(t, tt.wantPlan, stored.Plan)
			assert.Equal(t, tt.wantStatus, stored.Status)
			if tt.event.CurrentPeriodEnd != nil {
				require.NotNil(t, stored.CurrentPeriodEnd)
				assert.True(t, stored.CurrentPeriodEnd.Equal(periodEnd))
			}
		})
	}
}

func TestHandleWebhookIgnoresUnknownCustomerAndEvents(t *testing.T) {
	svc, repo, gw := newTestService(config.UpgradePolicyFreeOnly)
	seedCustomer(repo, StatusActive, PlanPro)

	gw.event = &Event{ID: "evt_1", Type: EventInvoicePaymentFailed, CustomerID: "cus_unknown"}
	require.NoError(t, svc.HandleWebhook(context.Background(), nil, "sig"))

	gw.event = &Event{ID: "evt_2", Type: "charge.refunded", CustomerID: "cus_1"}
	require.NoError(t, svc.HandleWebhook(context.Background(), nil, "sig"))

	assert.Zero(t, repo.updates)
	assert.Equal(t, StatusActive, repo.byUser[1].Status)
}

func TestHandleWebhookMalformedEvent(t *testing.T) {
	svc, repo, gw := newTestService(config.UpgradePolicyFreeOnly)
	seedCustomer(repo, StatusActive, PlanPro)

	gw.event = &Event{ID: "evt_1", Type: EventInvoicePaymentFailed}
	err := svc.HandleWebhook(context.Background(), nil, "sig")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	gw.event = &Event{ID: "evt_2", Type: EventSubscriptionUpdated, CustomerID: "cus_1", ExternalStatus: "paused_forever"}
	err = svc.HandleWebhook(context.Background(), nil, "sig")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	assert.Zero(t, repo.updates)
}

func TestEntitlements(t *testing.T) {
	svc, repo, _ := newTestService(config.UpgradePolicyFreeOnly)
	ctx := context.Background()

	ent, err := svc.Entitlements(ctx, &user.User{ID: 9, Sovereign: true})
	require.NoError(t, err)
	assert.True(t, ent.Unlimited)
	assert.Equal(t, PlanSovereign, ent.Plan)

	repo.byUser[1] = &Subscription{UserID: 1, Plan: PlanPro, Status: StatusPastDue}
	ent, err = svc.Entitlements(ctx, &user.User{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, PlanFree, ent.Plan)
	assert.Equal(t, 50, ent.MonthlyMessages)

	repo.byUser[1].Status = StatusActive
	ent, err = svc.Entitlements(ctx, &user.User{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, PlanPro, ent.Plan)
	assert.Equal(t, 2000, ent.MonthlyMessages)
}

func TestMapExternalStatus(t *testing.T) {
	for external, want := range map[string]Status{
		"active": StatusActive, "trialing": StatusActive,
		"incomplete": StatusIncomplete, "incomplete_expired": StatusIncomplete,
		"past_due": StatusPastDue, "unpaid": StatusPastDue,
		"canceled": StatusCanceled,
	} {
		got, ok := MapExternalStatus(external)
		assert.True(t, ok, external)
		assert.Equal(t, want, got, external)
	}
	_, ok := MapExternalStatus("paused")
	assert.False(t, ok)
}
