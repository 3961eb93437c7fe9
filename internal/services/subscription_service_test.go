package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
	"shiftwise/internal/repositories"
	"shiftwise/pkg/utils"
)

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

type subscriptionFixture struct {
	db       *gorm.DB
	svc      *subscriptionService
	gateway  *MockBillingGateway
	notifier *recordingNotifier
	agency   db_models.Agency
	owner    access.Identity
	plans    map[string]db_models.Plan
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()
	db := newTestDB(t)
	f := &subscriptionFixture{
		db:       db,
		gateway:  &MockBillingGateway{},
		notifier: &recordingNotifier{},
		plans:    map[string]db_models.Plan{},
	}

	for _, p := range []struct {
		name  string
		cycle db_models.BillingCycle
		price int64
	}{
		{"Basic", db_models.BillingMonthly, 1000},
		{"Pro", db_models.BillingMonthly, 3000},
		{"Enterprise", db_models.BillingMonthly, 9000},
		{"Pro", db_models.BillingYearly, 30000},
	} {
		priceID := "price_" + p.name + "_" + string(p.cycle)
		plan := db_models.Plan{
			Name:            p.name,
			BillingCycle:    p.cycle,
			StripePriceID:   &priceID,
			PriceMinor:      p.price,
			Currency:        "gbp",
			IsActive:        true,
			ShiftManagement: p.name != "Basic",
		}
		require.NoError(t, db.Create(&plan).Error)
		f.plans[priceID] = plan
	}

	customerID := "cus_owner"
	ownerAccount := db_models.Account{Username: "olivia", Email: "olivia@example.com", IsActive: true}
	require.NoError(t, db.Create(&ownerAccount).Error)

	f.agency = db_models.Agency{
		Name:             "Olivia Care",
		AgencyCode:       "AGY-00000001",
		OwnerID:          &ownerAccount.ID,
		Email:            "office@oliviacare.example",
		StripeCustomerID: &customerID,
		IsActive:         true,
	}
	require.NoError(t, db.Create(&f.agency).Error)

	profile := db_models.Profile{AccountID: ownerAccount.ID, AgencyID: &f.agency.ID}
	require.NoError(t, db.Create(&profile).Error)

	f.owner = access.Identity{
		AccountID:     ownerAccount.ID,
		Authenticated: true,
		Groups:        []access.Group{access.GroupAgencyOwners},
		AgencyID:      &f.agency.ID,
	}

	svc := NewSubscriptionService(
		db,
		repositories.NewSubscriptionRepository(db),
		repositories.NewPlanRepository(db),
		repositories.NewAgencyRepository(db),
		repositories.NewProfileRepository(db),
		f.gateway,
		f.notifier,
		discardLogger(),
		"https://app.example.com/",
	).(*subscriptionService)
	svc.now = func() time.Time { return fixedNow }
	f.svc = svc
	return f
}

func (f *subscriptionFixture) plan(priceID string) db_models.Plan {
	return f.plans[priceID]
}

// seedSubscription stores an active subscription for agencyID on plan.
func (f *subscriptionFixture) seedSubscription(t *testing.T, agencyID uuid.UUID, providerID string, plan db_models.Plan) db_models.Subscription {
	t.Helper()
	start := fixedNow.Add(-24 * time.Hour).Unix()
	end := fixedNow.Add(29 * 24 * time.Hour).Unix()
	sub := db_models.Subscription{
		AgencyID:             agencyID,
		PlanID:               &plan.ID,
		StripeSubscriptionID: providerID,
		IsActive:             true,
		Status:               db_models.SubStatusActive,
		CurrentPeriodStart:   &start,
		CurrentPeriodEnd:     &end,
	}
	require.NoError(t, f.db.Create(&sub).Error)
	return sub
}

func (f *subscriptionFixture) subscriptions(t *testing.T) []db_models.Subscription {
	t.Helper()
	var subs []db_models.Subscription
	require.NoError(t, f.db.Order("created_at").Find(&subs).Error)
	return subs
}

func (f *subscriptionFixture) otherAgency(t *testing.T) db_models.Agency {
	t.Helper()
	other := db_models.Agency{Name: "Other Staffing", AgencyCode: "AGY-00000002", IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)
	return other
}

func checkoutEvent(customerID, subscriptionID string) *BillingEvent {
	return &BillingEvent{
		ID:   "evt_checkout",
		Type: EventCheckoutCompleted,
		Checkout: &CompletedCheckout{
			SessionID:      "cs_test",
			CustomerID:     customerID,
			SubscriptionID: subscriptionID,
		},
	}
}

func TestHandleCheckoutCreatesSubscription(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	periodStart := fixedNow.Unix()
	periodEnd := fixedNow.Add(30 * 24 * time.Hour).Unix()

	f.gateway.On("RetrieveSubscription", mock.Anything, "sub_new").Return(&ProviderSubscription{
		ID:          "sub_new",
		CustomerID:  "cus_owner",
		Status:      "active",
		PriceID:     "price_Pro_monthly",
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}, nil)

	require.NoError(t, f.svc.HandleEvent(ctx, checkoutEvent("cus_owner", "sub_new")))

	subs := f.subscriptions(t)
	require.Len(t, subs, 1)
	sub := subs[0]
	assert.Equal(t, f.agency.ID, sub.AgencyID)
	assert.Equal(t, f.plan("price_Pro_monthly").ID, *sub.PlanID)
	assert.Equal(t, "sub_new", sub.StripeSubscriptionID)
	assert.True(t, sub.IsActive)
	assert.False(t, sub.IsExpired)
	assert.Equal(t, db_models.SubStatusActive, sub.Status)
	assert.Equal(t, periodStart, *sub.CurrentPeriodStart)
	assert.Equal(t, periodEnd, *sub.CurrentPeriodEnd)

	assert.Equal(t, []string{"Subscription Activated"}, f.notifier.subjects())
	f.gateway.AssertExpectations(t)
}

func TestHandleCheckoutOverwritesExistingRow(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	old := f.seedSubscription(t, f.agency.ID, "sub_old", f.plan("price_Basic_monthly"))

	f.gateway.On("RetrieveSubscription", mock.Anything, "sub_new").Return(&ProviderSubscription{
		ID:        "sub_new",
		Status:    "trialing",
		PriceID:   "price_Enterprise_monthly",
		PeriodEnd: fixedNow.Add(14 * 24 * time.Hour).Unix(),
	}, nil)

	require.NoError(t, f.svc.HandleEvent(ctx, checkoutEvent("cus_owner", "sub_new")))

	subs := f.subscriptions(t)
	require.Len(t, subs, 1)
	assert.Equal(t, old.ID, subs[0].ID)
	assert.Equal(t, "sub_new", subs[0].StripeSubscriptionID)
	assert.Equal(t, f.plan("price_Enterprise_monthly").ID, *subs[0].PlanID)
	assert.Equal(t, db_models.SubStatusTrialing, subs[0].Status)
	assert.True(t, subs[0].IsActive)
	assert.Nil(t, subs[0].CurrentPeriodStart)
}

func TestHandleCheckoutLookupMisses(t *testing.T) {
	t.Run("unknown customer", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		err := f.svc.HandleEvent(context.Background(), checkoutEvent("cus_nobody", "sub_x"))
		assert.ErrorIs(t, err, utils.ErrAgencyNotFound)
		assert.Empty(t, f.subscriptions(t))
		f.gateway.AssertNotCalled(t, "RetrieveSubscription", mock.Anything, mock.Anything)
	})

	t.Run("unknown price", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		f.gateway.On("RetrieveSubscription", mock.Anything, "sub_x").Return(&ProviderSubscription{
			ID: "sub_x", Status: "active", PriceID: "price_gone",
		}, nil)
		err := f.svc.HandleEvent(context.Background(), checkoutEvent("cus_owner", "sub_x"))
		assert.ErrorIs(t, err, utils.ErrPlanNotFound)
		assert.Empty(t, f.subscriptions(t))
	})

	t.Run("provider failure", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		f.gateway.On("RetrieveSubscription", mock.Anything, "sub_x").
			Return(nil, errors.Join(utils.ErrBillingProvider, errors.New("timeout")))
		err := f.svc.HandleEvent(context.Background(), checkoutEvent("cus_owner", "sub_x"))
		assert.ErrorIs(t, err, utils.ErrBillingProvider)
		assert.Empty(t, f.subscriptions(t))
	})

	t.Run("incomplete payload", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		err := f.svc.HandleEvent(context.Background(), checkoutEvent("cus_owner", ""))
		assert.ErrorIs(t, err, utils.ErrWebhookPayload)
	})
}

func TestHandleSubscriptionUpdated(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	f.seedSubscription(t, f.agency.ID, "sub_live", f.plan("price_Basic_monthly"))
	newEnd := fixedNow.Add(60 * 24 * time.Hour).Unix()

	err := f.svc.HandleEvent(ctx, &BillingEvent{
		ID:   "evt_upd",
		Type: EventSubscriptionUpdated,
		Subscription: &ProviderSubscription{
			ID:        "sub_live",
			Status:    "past_due",
			PriceID:   "price_Pro_monthly",
			PeriodEnd: newEnd,
		},
	})
	require.NoError(t, err)

	subs := f.subscriptions(t)
	require.Len(t, subs, 1)
	assert.False(t, subs[0].IsActive)
	assert.Equal(t, db_models.SubStatusPastDue, subs[0].Status)
	assert.Equal(t, f.plan("price_Pro_monthly").ID, *subs[0].PlanID)
	assert.Equal(t, newEnd, *subs[0].CurrentPeriodEnd)
	assert.Equal(t, []string{"Subscription Updated"}, f.notifier.subjects())
}

func TestHandleSubscriptionUpdatedUnknownPriceWritesNothing(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	seeded := f.seedSubscription(t, f.agency.ID, "sub_live", f.plan("price_Basic_monthly"))

	err := f.svc.HandleEvent(ctx, &BillingEvent{
		ID:   "evt_upd",
		Type: EventSubscriptionUpdated,
		Subscription: &ProviderSubscription{
			ID:        "sub_live",
			Status:    "canceled",
			PriceID:   "price_unknown",
			PeriodEnd: fixedNow.Add(90 * 24 * time.Hour).Unix(),
		},
	})
	assert.ErrorIs(t, err, utils.ErrPlanNotFound)

	subs := f.subscriptions(t)
	require.Len(t, subs, 1)
	assert.True(t, subs[0].IsActive)
	assert.Equal(t, db_models.SubStatusActive, subs[0].Status)
	assert.Equal(t, *seeded.PlanID, *subs[0].PlanID)
	assert.Equal(t, *seeded.CurrentPeriodEnd, *subs[0].CurrentPeriodEnd)
	assert.Empty(t, f.notifier.subjects())
}

func TestHandleSubscriptionUpdatedUnknownSubscription(t *testing.T) {
	f := newSubscriptionFixture(t)
	err := f.svc.HandleEvent(context.Background(), &BillingEvent{
		Type:         EventSubscriptionUpdated,
		Subscription: &ProviderSubscription{ID: "sub_ghost", Status: "active"},
	})
	assert.ErrorIs(t, err, utils.ErrSubscriptionNotFound)
}

func TestHandleSubscriptionDeletedLeavesOthersUntouched(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()
	other := f.otherAgency(t)
	f.seedSubscription(t, f.agency.ID, "sub_mine", f.plan("price_Pro_monthly"))
	f.seedSubscription(t, other.ID, "sub_theirs", f.plan("price_Basic_monthly"))

	err := f.svc.HandleEvent(ctx, &BillingEvent{
		ID:           "evt_del",
		Type:         EventSubscriptionDeleted,
		Subscription: &ProviderSubscription{ID: "sub_mine", Status: "canceled"},
	})
	require.NoError(t, err)

	var mine, theirs db_models.Subscription
	require.NoError(t, f.db.First(&mine, "stripe_subscription_id = ?", "sub_mine").Error)
	require.NoError(t, f.db.First(&theirs, "stripe_subscription_id = ?", "sub_theirs").Error)

	assert.False(t, mine.IsActive)
	assert.Equal(t, db_models.SubStatusCanceled, mine.Status)
	assert.True(t, theirs.IsActive)
	assert.Equal(t, db_models.SubStatusActive, theirs.Status)
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.seedSubscription(t, f.agency.ID, "sub_mine", f.plan("price_Pro_monthly"))
	before := f.subscriptions(t)

	for _, eventType := range []BillingEventType{"customer.created", EventInvoicePaid} {
		err := f.svc.HandleEvent(context.Background(), &BillingEvent{ID: "evt_x", Type: eventType})
		assert.NoError(t, err)
	}

	assert.Equal(t, before, f.subscriptions(t))
	f.gateway.AssertNotCalled(t, "RetrieveSubscription", mock.Anything, mock.Anything)
}

func TestSubscribe(t *testing.T) {
	t.Run("returns checkout url", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		plan := f.plan("price_Pro_monthly")
		f.gateway.On("RetrieveCustomer", mock.Anything, "cus_owner").Return(&BillingCustomer{ID: "cus_owner"}, nil)
		f.gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req CheckoutRequest) bool {
			return req.CustomerID == "cus_owner" &&
				req.PriceID == "price_Pro_monthly" &&
				req.SuccessURL == "https://app.example.com/subscriptions/success" &&
				req.CancelURL == "https://app.example.com/subscriptions/cancel" &&
				req.Metadata["agency_id"] == f.agency.ID.String() &&
				req.Metadata["plan_id"] == plan.ID.String()
		})).Return(&CheckoutSession{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil)

		url, err := f.svc.Subscribe(context.Background(), f.owner, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.example/cs_1", url)
		f.gateway.AssertExpectations(t)
	})

	t.Run("already subscribed", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		f.seedSubscription(t, f.agency.ID, "sub_mine", f.plan("price_Basic_monthly"))
		f.gateway.On("RetrieveCustomer", mock.Anything, "cus_owner").Return(&BillingCustomer{ID: "cus_owner"}, nil)

		_, err := f.svc.Subscribe(context.Background(), f.owner, f.plan("price_Pro_monthly").ID)
		assert.ErrorIs(t, err, utils.ErrAlreadySubscribed)
		f.gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("deleted customer", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		f.gateway.On("RetrieveCustomer", mock.Anything, "cus_owner").Return(&BillingCustomer{ID: "cus_owner", Deleted: true}, nil)

		_, err := f.svc.Subscribe(context.Background(), f.owner, f.plan("price_Pro_monthly").ID)
		assert.ErrorIs(t, err, utils.ErrBillingCustomerMissing)
	})

	t.Run("no billing customer", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		require.NoError(t, f.db.Model(&db_models.Agency{}).Where("id = ?", f.agency.ID).
			Update("stripe_customer_id", nil).Error)

		_, err := f.svc.Subscribe(context.Background(), f.owner, f.plan("price_Pro_monthly").ID)
		assert.ErrorIs(t, err, utils.ErrBillingCustomerMissing)
	})

	t.Run("unknown plan", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		_, err := f.svc.Subscribe(context.Background(), f.owner, uuid.New())
		assert.ErrorIs(t, err, utils.ErrPlanNotFound)
	})

	t.Run("no profile", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		stranger := access.Identity{AccountID: uuid.New(), Authenticated: true, Groups: []access.Group{access.GroupAgencyOwners}}
		_, err := f.svc.Subscribe(context.Background(), stranger, f.plan("price_Pro_monthly").ID)
		assert.ErrorIs(t, err, utils.ErrProfileMissing)
	})

	t.Run("not an owner", func(t *testing.T) {
		f := newSubscriptionFixture(t)
		manager := f.owner
		manager.Groups = []access.Group{access.GroupAgencyManagers}
		_, err := f.svc.Subscribe(context.Background(), manager, f.plan("price_Pro_monthly").ID)
		assert.ErrorIs(t, err, utils.ErrNotAgencyOwner)
	})
}

func TestChangeOptions(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.seedSubscription(t, f.agency.ID, "sub_mine", f.plan("price_Pro_monthly"))
	ctx := context.Background()

	up, err := f.svc.ChangeOptions(ctx, f.owner, repositories.Upgrade)
	require.NoError(t, err)
	assert.Equal(t, "Pro", up.CurrentPlan.Name)
	var upNames []string
	for _, c := range up.Candidates {
		upNames = append(upNames, c.Name+"/"+c.BillingCycle)
	}
	assert.Equal(t, []string{"Enterprise/monthly", "Pro/yearly"}, upNames)

	down, err := f.svc.ChangeOptions(ctx, f.owner, repositories.Downgrade)
	require.NoError(t, err)
	require.Len(t, down.Candidates, 1)
	assert.Equal(t, "Basic", down.Candidates[0].Name)
}

func TestChangeOptionsRequiresActiveSubscription(t *testing.T) {
	f := newSubscriptionFixture(t)
	_, err := f.svc.ChangeOptions(context.Background(), f.owner, repositories.Upgrade)
	assert.ErrorIs(t, err, utils.ErrNoActiveSubscription)
}

func TestChangePlan(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.seedSubscription(t, f.agency.ID, "sub_mine", f.plan("price_Pro_monthly"))
	ctx := context.Background()
	target := f.plan("price_Enterprise_monthly")

	f.gateway.On("ChangeSubscriptionPrice", mock.Anything, "sub_mine", "price_Enterprise_monthly").
		Return(&ProviderSubscription{ID: "sub_mine", Status: "active", PriceID: "price_Enterprise_monthly"}, nil)

	plan, err := f.svc.ChangePlan(ctx, f.owner, repositories.Upgrade, target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, plan.ID)

	subs := f.subscriptions(t)
	require.Len(t, subs, 1)
	assert.Equal(t, target.ID, *subs[0].PlanID)
	f.gateway.AssertExpectations(t)
}

func TestChangePlanRejectsNonCandidate(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.seedSubscription(t, f.agency.ID, "sub_mine", f.plan("price_Pro_monthly"))

	_, err := f.svc.ChangePlan(context.Background(), f.owner, repositories.Upgrade, f.plan("price_Basic_monthly").ID)
	assert.ErrorIs(t, err, utils.ErrInvalidPlanChange)
	f.gateway.AssertNotCalled(t, "ChangeSubscriptionPrice", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.seedSubscription(t, f.agency.ID, "sub_mine", f.plan("price_Pro_monthly"))
	ctx := context.Background()

	f.gateway.On("ListSubscriptions", mock.Anything, "cus_owner", "active", int64(0)).Return([]ProviderSubscription{
		{ID: "sub_mine", Status: "active"},
		{ID: "sub_orphan", Status: "active"},
	}, nil)
	f.gateway.On("CancelSubscription", mock.Anything, "sub_mine").Return(nil)
	f.gateway.On("CancelSubscription", mock.Anything, "sub_orphan").Return(nil)

	n, err := f.svc.Cancel(ctx, f.owner)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	subs := f.subscriptions(t)
	require.Len(t, subs, 1)
	assert.False(t, subs[0].IsActive)
	assert.Equal(t, db_models.SubStatusCanceled, subs[0].Status)
	f.gateway.AssertExpectations(t)
}

func TestOverviewGroupsPlans(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.seedSubscription(t, f.agency.ID, "sub_mine", f.plan("price_Pro_monthly"))

	home, err := f.svc.Overview(context.Background(), f.owner)
	require.NoError(t, err)
	require.NotNil(t, home.Subscription)

	var names []string
	for _, g := range home.AvailablePlans {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Basic", "Pro", "Enterprise"}, names)
	assert.NotNil(t, home.AvailablePlans[1].Monthly)
	assert.NotNil(t, home.AvailablePlans[1].Yearly)
	assert.Nil(t, home.AvailablePlans[0].Yearly)
}

func TestOverviewWithoutAgency(t *testing.T) {
	f := newSubscriptionFixture(t)
	stranger := access.Identity{AccountID: uuid.New(), Authenticated: true}

	home, err := f.svc.Overview(context.Background(), stranger)
	require.NoError(t, err)
	assert.Nil(t, home.Subscription)
	assert.Len(t, home.AvailablePlans, 3)
}

func TestManage(t *testing.T) {
	f := newSubscriptionFixture(t)
	f.seedSubscription(t, f.agency.ID, "sub_mine", f.plan("price_Pro_monthly"))
	ctx := context.Background()

	f.gateway.On("ListSubscriptions", mock.Anything, "cus_owner", "", int64(10)).Return([]ProviderSubscription{
		{ID: "sub_mine", Status: "active", PriceID: "price_Pro_monthly", PeriodEnd: fixedNow.Unix(), CancelAtPeriodEnd: true},
	}, nil)
	f.gateway.On("CreatePortalSession", mock.Anything, "cus_owner", "https://app.example.com/subscriptions/manage").
		Return("https://billing.example.com/p/session", nil)

	manage, err := f.svc.Manage(ctx, f.owner)
	require.NoError(t, err)
	require.NotNil(t, manage.Subscription)
	assert.True(t, manage.Subscription.IsCurrentlyActive)
	require.Len(t, manage.ProviderSubscriptions, 1)
	assert.True(t, manage.ProviderSubscriptions[0].CancelAtPeriodEnd)
	assert.Equal(t, "2026-06-15T12:00:00Z", manage.ProviderSubscriptions[0].CurrentPeriodEnd)
	assert.Equal(t, "https://billing.example.com/p/session", manage.BillingPortalURL)
}

func TestPaymentPortalURL(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	f.gateway.On("CreatePortalSession", mock.Anything, "cus_owner", "https://app.example.com/subscriptions/manage").
		Return("", utils.ErrBillingProvider).Once()
	_, err := f.svc.PaymentPortalURL(ctx, f.owner)
	assert.ErrorIs(t, err, utils.ErrBillingProvider)

	require.NoError(t, f.db.Model(&db_models.Agency{}).Where("id = ?", f.agency.ID).
		Update("stripe_customer_id", nil).Error)
	_, err = f.svc.PaymentPortalURL(ctx, f.owner)
	assert.ErrorIs(t, err, utils.ErrBillingCustomerMissing)
}
