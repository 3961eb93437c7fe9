package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
	"shiftwise/internal/models/response_models"
	"shiftwise/internal/repositories"
	"shiftwise/pkg/utils"
)

// SubscriptionService keeps the local subscription row of each agency in
// step with the billing provider, from webhooks and from owner actions.
type SubscriptionService interface {
	HandleEvent(ctx context.Context, event *BillingEvent) error

	Overview(ctx context.Context, id access.Identity) (*response_models.SubscriptionHome, error)
	Subscribe(ctx context.Context, id access.Identity, planID uuid.UUID) (string, error)
	ChangeOptions(ctx context.Context, id access.Identity, direction repositories.ChangeDirection) (*response_models.PlanChangeOptions, error)
	ChangePlan(ctx context.Context, id access.Identity, direction repositories.ChangeDirection, planID uuid.UUID) (*db_models.Plan, error)
	Cancel(ctx context.Context, id access.Identity) (int, error)
	Manage(ctx context.Context, id access.Identity) (*response_models.ManageSubscription, error)
	PaymentPortalURL(ctx context.Context, id access.Identity) (string, error)
	ListForAdmin(ctx context.Context, id access.Identity, search string) ([]response_models.SubscriptionView, error)
}

type subscriptionService struct {
	db            *gorm.DB
	subscriptions repositories.SubscriptionRepository
	plans         repositories.IPlanRepository
	agencies      repositories.AgencyRepository
	profiles      repositories.ProfileRepository
	gateway       BillingGateway
	notifier      NotificationService
	logger        *slog.Logger
	baseURL       string
	now           func() time.Time
}

func NewSubscriptionService(
	db *gorm.DB,
	subscriptions repositories.SubscriptionRepository,
	plans repositories.IPlanRepository,
	agencies repositories.AgencyRepository,
	profiles repositories.ProfileRepository,
	gateway BillingGateway,
	notifier NotificationService,
	logger *slog.Logger,
	baseURL string,
) SubscriptionService {
	return &subscriptionService{
		db:            db,
		subscriptions: subscriptions,
		plans:         plans,
		agencies:      agencies,
		profiles:      profiles,
		gateway:       gateway,
		notifier:      notifier,
		logger:        logger.With(slog.String("component", "subscriptions")),
		baseURL:       strings.TrimRight(baseURL, "/"),
		now:           time.Now,
	}
}

// ------------------- Webhook events -------------------

func (s *subscriptionService) HandleEvent(ctx context.Context, event *BillingEvent) error {
	log := s.logger.With(slog.String("event_id", event.ID), slog.String("event_type", string(event.Type)))

	switch event.Type {
	case EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, log, event.Checkout)
	case EventInvoicePaid:
		log.InfoContext(ctx, "invoice paid")
		return nil
	case EventSubscriptionUpdated:
		return s.handleSubscriptionUpdated(ctx, log, event.Subscription)
	case EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(ctx, log, event.Subscription)
	}

	log.InfoContext(ctx, "unhandled billing event")
	return nil
}

func (s *subscriptionService) handleCheckoutCompleted(ctx context.Context, log *slog.Logger, checkout *CompletedCheckout) error {
	if checkout == nil || checkout.CustomerID == "" || checkout.SubscriptionID == "" {
		log.ErrorContext(ctx, "checkout event without customer or subscription")
		return fmt.Errorf("%w: checkout session missing customer or subscription", utils.ErrWebhookPayload)
	}
	log = log.With(slog.String("customer_id", checkout.CustomerID), slog.String("subscription_id", checkout.SubscriptionID))

	agency, err := s.agencies.FindByCustomerID(ctx, checkout.CustomerID)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if agency == nil {
		log.ErrorContext(ctx, "no agency for billing customer")
		return fmt.Errorf("%w: customer %s", utils.ErrAgencyNotFound, checkout.CustomerID)
	}

	remote, err := s.gateway.RetrieveSubscription(ctx, checkout.SubscriptionID)
	if err != nil {
		return err
	}

	plan, err := s.plans.FindByPriceID(ctx, remote.PriceID)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if plan == nil {
		log.ErrorContext(ctx, "no plan for price", slog.String("price_id", remote.PriceID))
		return fmt.Errorf("%w: price %s", utils.ErrPlanNotFound, remote.PriceID)
	}

	status, err := db_models.ParseSubscriptionStatus(remote.Status)
	if err != nil {
		log.ErrorContext(ctx, "invalid provider status", slog.Any("error", err))
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subs := s.subscriptions.WithTx(tx)

		existing, err := subs.FindByAgencyID(ctx, agency.ID)
		if err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}

		sub := existing
		if sub == nil {
			sub = &db_models.Subscription{AgencyID: agency.ID}
		}
		sub.PlanID = &plan.ID
		sub.StripeSubscriptionID = remote.ID
		sub.Status = status
		sub.IsActive = true
		sub.IsExpired = false
		sub.CurrentPeriodStart = unixOrNil(remote.PeriodStart)
		sub.CurrentPeriodEnd = unixOrNil(remote.PeriodEnd)

		if err := sub.Validate(); err != nil {
			log.ErrorContext(ctx, "subscription failed validation", slog.Any("error", err))
			return fmt.Errorf("%w: %v", utils.ErrValidation, err)
		}

		if existing == nil {
			if err := subs.Create(ctx, sub); err != nil {
				return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
			}
			log.InfoContext(ctx, "subscription created", slog.String("agency_id", agency.ID.String()))
			return nil
		}
		if err := subs.Save(ctx, sub); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		log.InfoContext(ctx, "subscription replaced", slog.String("agency_id", agency.ID.String()))
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.NotifyAgencyOwner(ctx, agency,
		"Subscription Activated",
		fmt.Sprintf("Your %s (%s) subscription is now active.", plan.Name, plan.BillingCycle),
		"Manage subscription", s.baseURL+"/subscriptions/manage")
	return nil
}

func (s *subscriptionService) handleSubscriptionUpdated(ctx context.Context, log *slog.Logger, remote *ProviderSubscription) error {
	if remote == nil || remote.ID == "" {
		return fmt.Errorf("%w: subscription object missing", utils.ErrWebhookPayload)
	}
	log = log.With(slog.String("subscription_id", remote.ID))

	local, err := s.subscriptions.FindByProviderID(ctx, remote.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if local == nil {
		log.ErrorContext(ctx, "no local subscription for update")
		return fmt.Errorf("%w: %s", utils.ErrSubscriptionNotFound, remote.ID)
	}

	var newPlan *db_models.Plan
	if remote.PriceID != "" && (local.Plan == nil || local.Plan.PriceID() != remote.PriceID) {
		newPlan, err = s.plans.FindByPriceID(ctx, remote.PriceID)
		if err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if newPlan == nil {
			log.ErrorContext(ctx, "no plan for updated price", slog.String("price_id", remote.PriceID))
			return fmt.Errorf("%w: price %s", utils.ErrPlanNotFound, remote.PriceID)
		}
	}

	status, err := db_models.ParseSubscriptionStatus(remote.Status)
	if err != nil {
		log.ErrorContext(ctx, "invalid provider status", slog.Any("error", err))
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}

	local.Status = status
	local.IsActive = status == db_models.SubStatusActive
	if remote.PeriodStart > 0 {
		local.CurrentPeriodStart = unixOrNil(remote.PeriodStart)
	}
	if remote.PeriodEnd > 0 {
		local.CurrentPeriodEnd = unixOrNil(remote.PeriodEnd)
	}
	if newPlan != nil {
		local.PlanID = &newPlan.ID
		local.Plan = newPlan
	}

	if err := local.Validate(); err != nil {
		log.ErrorContext(ctx, "subscription failed validation", slog.Any("error", err))
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	if err := s.subscriptions.Save(ctx, local); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	log.InfoContext(ctx, "subscription updated", slog.String("status", string(status)))

	s.notifier.NotifyAgencyOwner(ctx, local.Agency,
		"Subscription Updated",
		fmt.Sprintf("Your subscription status is now %q.", status),
		"Manage subscription", s.baseURL+"/subscriptions/manage")
	return nil
}

func (s *subscriptionService) handleSubscriptionDeleted(ctx context.Context, log *slog.Logger, remote *ProviderSubscription) error {
	if remote == nil || remote.ID == "" {
		return fmt.Errorf("%w: subscription object missing", utils.ErrWebhookPayload)
	}
	log = log.With(slog.String("subscription_id", remote.ID))

	local, err := s.subscriptions.FindByProviderID(ctx, remote.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if local == nil {
		log.ErrorContext(ctx, "no local subscription for deletion")
		return fmt.Errorf("%w: %s", utils.ErrSubscriptionNotFound, remote.ID)
	}

	if err := s.deactivate(ctx, s.subscriptions, local); err != nil {
		return err
	}
	log.InfoContext(ctx, "subscription canceled by provider")
	return nil
}

func (s *subscriptionService) deactivate(ctx context.Context, subs repositories.SubscriptionRepository, local *db_models.Subscription) error {
	local.IsActive = false
	local.Status = db_models.SubStatusCanceled
	if err := subs.Save(ctx, local); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return nil
}

// ------------------- Owner actions -------------------

func (s *subscriptionService) Overview(ctx context.Context, id access.Identity) (*response_models.SubscriptionHome, error) {
	home := &response_models.SubscriptionHome{AvailablePlans: []response_models.PlanGroup{}}

	agency, err := resolveAgency(ctx, s.profiles, s.agencies, id)
	switch {
	case err == nil:
		sub, err := s.subscriptions.FindByAgencyID(ctx, agency.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if sub != nil && sub.IsActiveAt(s.now().Unix()) {
			view := response_models.NewSubscriptionView(*sub, s.now().Unix())
			home.Subscription = &view
		}
	case errors.Is(err, utils.ErrProfileMissing), errors.Is(err, utils.ErrAgencyMissing):
		s.logger.WarnContext(ctx, "subscription overview without agency", slog.String("account_id", id.AccountID.String()))
	default:
		return nil, err
	}

	plans, err := s.plans.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	home.AvailablePlans = groupPlans(plans)
	return home, nil
}

// groupPlans pairs monthly and yearly variants by plan name. Groups keep
// the order in which their first variant appears in plans.
func groupPlans(plans []db_models.Plan) []response_models.PlanGroup {
	index := map[string]int{}
	var groups []response_models.PlanGroup
	for _, p := range plans {
		i, ok := index[p.Name]
		if !ok {
			i = len(groups)
			index[p.Name] = i
			groups = append(groups, response_models.PlanGroup{Name: p.Name})
		}
		view := response_models.NewPlanView(p)
		switch p.BillingCycle {
		case db_models.BillingMonthly:
			groups[i].Monthly = &view
		case db_models.BillingYearly:
			groups[i].Yearly = &view
		}
		if groups[i].Description == "" || p.BillingCycle == db_models.BillingMonthly {
			groups[i].Description = p.Description
		}
	}

	out := make([]response_models.PlanGroup, 0, len(groups))
	for _, g := range groups {
		if g.Monthly != nil || g.Yearly != nil {
			out = append(out, g)
		}
	}
	return out
}

func (s *subscriptionService) Subscribe(ctx context.Context, id access.Identity, planID uuid.UUID) (string, error) {
	agency, err := resolveAgency(ctx, s.profiles, s.agencies, id)
	if err != nil {
		return "", err
	}
	if !id.IsAgencyOwner() {
		return "", utils.ErrNotAgencyOwner
	}

	plan, err := s.plans.FindActiveByID(ctx, planID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if plan == nil || plan.PriceID() == "" {
		return "", fmt.Errorf("%w: %s", utils.ErrPlanNotFound, planID)
	}

	customerID := agency.CustomerID()
	if customerID == "" {
		s.logger.ErrorContext(ctx, "agency has no billing customer", slog.String("agency_id", agency.ID.String()))
		return "", utils.ErrBillingCustomerMissing
	}
	customer, err := s.gateway.RetrieveCustomer(ctx, customerID)
	if err != nil {
		return "", err
	}
	if customer.Deleted {
		return "", fmt.Errorf("%w: customer %s was deleted", utils.ErrBillingCustomerMissing, customerID)
	}

	existing, err := s.subscriptions.FindByAgencyID(ctx, agency.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if existing != nil && existing.IsActiveAt(s.now().Unix()) {
		return "", utils.ErrAlreadySubscribed
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
		CustomerID: customerID,
		PriceID:    plan.PriceID(),
		SuccessURL: s.baseURL + "/subscriptions/success",
		CancelURL:  s.baseURL + "/subscriptions/cancel",
		Metadata: map[string]string{
			"agency_id": agency.ID.String(),
			"plan_id":   plan.ID.String(),
		},
	})
	if err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("agency_id", agency.ID.String()),
		slog.String("plan_id", plan.ID.String()),
		slog.String("session_id", session.ID))
	return session.URL, nil
}

// currentForChange loads the owner's agency and its current, unexpired
// subscription.
func (s *subscriptionService) currentForChange(ctx context.Context, id access.Identity) (*db_models.Subscription, error) {
	agency, err := resolveAgency(ctx, s.profiles, s.agencies, id)
	if err != nil {
		return nil, err
	}
	if !id.IsAgencyOwner() {
		return nil, utils.ErrNotAgencyOwner
	}

	sub, err := s.subscriptions.FindByAgencyID(ctx, agency.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if sub == nil || sub.IsExpired || !sub.IsActiveAt(s.now().Unix()) {
		return nil, utils.ErrNoActiveSubscription
	}
	if sub.Plan == nil {
		return nil, fmt.Errorf("%w: subscription %s has no plan", utils.ErrPlanNotFound, sub.ID)
	}
	return sub, nil
}

func (s *subscriptionService) ChangeOptions(ctx context.Context, id access.Identity, direction repositories.ChangeDirection) (*response_models.PlanChangeOptions, error) {
	sub, err := s.currentForChange(ctx, id)
	if err != nil {
		return nil, err
	}

	candidates, err := s.plans.ChangeCandidates(ctx, sub.Plan.PriceMinor, direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	return &response_models.PlanChangeOptions{
		Direction:   string(direction),
		CurrentPlan: response_models.NewPlanView(*sub.Plan),
		Candidates:  response_models.NewPlanViews(candidates),
	}, nil
}

func (s *subscriptionService) ChangePlan(ctx context.Context, id access.Identity, direction repositories.ChangeDirection, planID uuid.UUID) (*db_models.Plan, error) {
	sub, err := s.currentForChange(ctx, id)
	if err != nil {
		return nil, err
	}

	candidates, err := s.plans.ChangeCandidates(ctx, sub.Plan.PriceMinor, direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	var target *db_models.Plan
	for i := range candidates {
		if candidates[i].ID == planID {
			target = &candidates[i]
			break
		}
	}
	if target == nil || target.PriceID() == "" {
		return nil, fmt.Errorf("%w: plan %s for %s", utils.ErrInvalidPlanChange, planID, direction)
	}

	if _, err := s.gateway.ChangeSubscriptionPrice(ctx, sub.StripeSubscriptionID, target.PriceID()); err != nil {
		return nil, err
	}

	sub.PlanID = &target.ID
	sub.Plan = target
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	s.logger.InfoContext(ctx, "subscription plan changed",
		slog.String("agency_id", sub.AgencyID.String()),
		slog.String("direction", string(direction)),
		slog.String("plan_id", target.ID.String()))

	s.notifier.NotifyAgencyOwner(ctx, sub.Agency,
		"Subscription Updated",
		fmt.Sprintf("Your subscription now uses the %s (%s) plan.", target.Name, target.BillingCycle),
		"Manage subscription", s.baseURL+"/subscriptions/manage")
	return target, nil
}

// Cancel deletes every active provider subscription of the agency and
// deactivates the matching local rows. It returns how many were canceled.
func (s *subscriptionService) Cancel(ctx context.Context, id access.Identity) (int, error) {
	agency, err := resolveAgency(ctx, s.profiles, s.agencies, id)
	if err != nil {
		return 0, err
	}
	if !id.IsAgencyOwner() {
		return 0, utils.ErrNotAgencyOwner
	}
	customerID := agency.CustomerID()
	if customerID == "" {
		return 0, utils.ErrBillingCustomerMissing
	}

	remotes, err := s.gateway.ListSubscriptions(ctx, customerID, string(db_models.SubStatusActive), 0)
	if err != nil {
		return 0, err
	}

	canceled := 0
	for _, remote := range remotes {
		if err := s.gateway.CancelSubscription(ctx, remote.ID); err != nil {
			return canceled, err
		}
		canceled++

		local, err := s.subscriptions.FindByProviderID(ctx, remote.ID)
		if err != nil {
			return canceled, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if local == nil {
			s.logger.WarnContext(ctx, "canceled provider subscription has no local row", slog.String("subscription_id", remote.ID))
			continue
		}
		if err := s.deactivate(ctx, s.subscriptions, local); err != nil {
			return canceled, err
		}
		s.logger.InfoContext(ctx, "subscription canceled",
			slog.String("agency_id", agency.ID.String()),
			slog.String("subscription_id", remote.ID))
	}
	return canceled, nil
}

func (s *subscriptionService) Manage(ctx context.Context, id access.Identity) (*response_models.ManageSubscription, error) {
	agency, err := resolveAgency(ctx, s.profiles, s.agencies, id)
	if err != nil {
		return nil, err
	}
	customerID := agency.CustomerID()
	if customerID == "" {
		return nil, utils.ErrBillingCustomerMissing
	}

	out := &response_models.ManageSubscription{ProviderSubscriptions: []response_models.ProviderSubscriptionView{}}

	local, err := s.subscriptions.FindByAgencyID(ctx, agency.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if local != nil {
		view := response_models.NewSubscriptionView(*local, s.now().Unix())
		out.Subscription = &view
	}

	remotes, err := s.gateway.ListSubscriptions(ctx, customerID, "", 10)
	if err != nil {
		return nil, err
	}
	for _, r := range remotes {
		out.ProviderSubscriptions = append(out.ProviderSubscriptions, response_models.ProviderSubscriptionView{
			ID:                r.ID,
			Status:            r.Status,
			PriceID:           r.PriceID,
			CurrentPeriodEnd:  utils.UnixPtrToRFC3339(unixOrNil(r.PeriodEnd)),
			CancelAtPeriodEnd: r.CancelAtPeriodEnd,
		})
	}

	portalURL, err := s.gateway.CreatePortalSession(ctx, customerID, s.baseURL+"/subscriptions/manage")
	if err != nil {
		return nil, err
	}
	out.BillingPortalURL = portalURL
	return out, nil
}

func (s *subscriptionService) PaymentPortalURL(ctx context.Context, id access.Identity) (string, error) {
	agency, err := resolveAgency(ctx, s.profiles, s.agencies, id)
	if err != nil {
		return "", err
	}
	customerID := agency.CustomerID()
	if customerID == "" {
		return "", utils.ErrBillingCustomerMissing
	}
	return s.gateway.CreatePortalSession(ctx, customerID, s.baseURL+"/subscriptions/manage")
}

func (s *subscriptionService) ListForAdmin(ctx context.Context, id access.Identity, search string) ([]response_models.SubscriptionView, error) {
	subs, err := s.subscriptions.List(ctx, id, search)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	now := s.now().Unix()
	out := make([]response_models.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		out = append(out, response_models.NewSubscriptionView(sub, now))
	}
	return out, nil
}

func unixOrNil(t int64) *int64 {
	if t <= 0 {
		return nil
	}
	return &t
}
