package response_models

import (
	"github.com/google/uuid"
	"shiftwise/internal/models/db_models"
	"shiftwise/pkg/utils"
)

type SubscriptionView struct {
	ID                   uuid.UUID `json:"id"`
	AgencyID             uuid.UUID `json:"agency_id"`
	AgencyName           string    `json:"agency_name,omitempty"`
	Plan                 *PlanView `json:"plan,omitempty"`
	StripeSubscriptionID string    `json:"stripe_subscription_id,omitempty"`
	Status               string    `json:"status"`
	IsActive             bool      `json:"is_active"`
	IsCurrentlyActive    bool      `json:"is_currently_active"`
	CurrentPeriodStart   string    `json:"current_period_start,omitempty"`
	CurrentPeriodEnd     string    `json:"current_period_end,omitempty"`
}

func NewSubscriptionView(s db_models.Subscription, now int64) SubscriptionView {
	view := SubscriptionView{
		ID:                   s.ID,
		AgencyID:             s.AgencyID,
		StripeSubscriptionID: s.StripeSubscriptionID,
		Status:               string(s.Status),
		IsActive:             s.IsActive,
		IsCurrentlyActive:    s.IsActiveAt(now),
		CurrentPeriodStart:   utils.UnixPtrToRFC3339(s.CurrentPeriodStart),
		CurrentPeriodEnd:     utils.UnixPtrToRFC3339(s.CurrentPeriodEnd),
	}
	if s.Agency != nil {
		view.AgencyName = s.Agency.Name
	}
	if s.Plan != nil {
		plan := NewPlanView(*s.Plan)
		view.Plan = &plan
	}
	return view
}

type SubscriptionHome struct {
	Subscription   *SubscriptionView `json:"subscription"`
	AvailablePlans []PlanGroup       `json:"available_plans"`
}

type PlanChangeOptions struct {
	Direction   string     `json:"direction"`
	CurrentPlan PlanView   `json:"current_plan"`
	Candidates  []PlanView `json:"available_plans"`
}

type ProviderSubscriptionView struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	PriceID           string `json:"price_id,omitempty"`
	CurrentPeriodEnd  string `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

type ManageSubscription struct {
	Subscription          *SubscriptionView          `json:"subscription"`
	ProviderSubscriptions []ProviderSubscriptionView `json:"provider_subscriptions"`
	BillingPortalURL      string                     `json:"billing_portal_url,omitempty"`
}
