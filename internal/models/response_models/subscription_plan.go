package response_models

import (
	"encoding/json"

	"github.com/google/uuid"
	"shiftwise/internal/models/db_models"
)

type PlanView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	BillingCycle  string    `json:"billing_cycle"`
	Price         string    `json:"price"`
	PriceMinor    int64     `json:"price_minor"`
	Currency      string    `json:"currency"`
	ShiftLimit    *int      `json:"shift_limit,omitempty"`
	IsRecommended bool      `json:"is_recommended"`
	IsActive      bool      `json:"is_active"`
	Entitlements  []string  `json:"entitlements"`
	Features      []string  `json:"features,omitempty"`
}

// PlanGroup pairs the monthly and yearly variants of one plan name.
type PlanGroup struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Monthly     *PlanView `json:"monthly_plan,omitempty"`
	Yearly      *PlanView `json:"yearly_plan,omitempty"`
}

func NewPlanView(p db_models.Plan) PlanView {
	view := PlanView{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		BillingCycle:  string(p.BillingCycle),
		Price:         p.Price().StringFixed(2),
		PriceMinor:    p.PriceMinor,
		Currency:      p.Currency,
		ShiftLimit:    p.ShiftLimit,
		IsRecommended: p.IsRecommended,
		IsActive:      p.IsActive,
		Entitlements:  p.FeatureSet().Sorted(),
	}
	if len(p.Features) > 0 {
		_ = json.Unmarshal(p.Features, &view.Features)
	}
	return view
}

func NewPlanViews(plans []db_models.Plan) []PlanView {
	out := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		out = append(out, NewPlanView(p))
	}
	return out
}
