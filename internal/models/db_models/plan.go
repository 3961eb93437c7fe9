package db_models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"shiftwise/internal/access"
)

type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// BillingCycleFromInterval maps a provider recurring interval to a cycle.
func BillingCycleFromInterval(interval string) (BillingCycle, error) {
	switch interval {
	case "month":
		return BillingMonthly, nil
	case "year":
		return BillingYearly, nil
	}
	return "", fmt.Errorf("unsupported billing interval %q", interval)
}

type Plan struct {
	BaseModel
	Name            string       `gorm:"size:100;uniqueIndex:idx_plan_name_cycle;not null"`
	BillingCycle    BillingCycle `gorm:"size:10;uniqueIndex:idx_plan_name_cycle;not null"`
	Description     string
	StripeProductID *string `gorm:"size:255;index"`
	StripePriceID   *string `gorm:"size:255;uniqueIndex"`
	PriceMinor      int64   `gorm:"index"` // 999 = £9.99
	Currency        string  `gorm:"size:3"`
	IsActive        bool    `gorm:"index"`
	IsRecommended   bool
	// ShiftLimit caps shifts created per calendar month; nil is unlimited.
	ShiftLimit *int

	NotificationsEnabled bool
	AdvancedReporting    bool
	PrioritySupport      bool
	ShiftManagement      bool
	StaffPerformance     bool
	CustomIntegrations   bool

	// Features holds marketing bullet points shown on the plan list.
	Features datatypes.JSON `gorm:"type:jsonb"`
}

func (p Plan) Price() decimal.Decimal {
	return decimal.New(p.PriceMinor, -2)
}

func (p Plan) PriceID() string {
	if p.StripePriceID == nil {
		return ""
	}
	return *p.StripePriceID
}

func (p Plan) HasFeature(f access.Feature) bool {
	switch f {
	case access.FeatureNotifications:
		return p.NotificationsEnabled
	case access.FeatureAdvancedReporting:
		return p.AdvancedReporting
	case access.FeaturePrioritySupport:
		return p.PrioritySupport
	case access.FeatureShiftManagement:
		return p.ShiftManagement
	case access.FeatureStaffPerformance:
		return p.StaffPerformance
	case access.FeatureCustomIntegrations:
		return p.CustomIntegrations
	}
	return false
}

func (p Plan) FeatureSet() access.FeatureSet {
	set := access.FeatureSet{}
	for _, f := range access.AllFeatures() {
		if p.HasFeature(f) {
			set[f] = struct{}{}
		}
	}
	return set
}

// PriceMinorFromDecimal converts a provider unit_amount_decimal (minor
// units, possibly fractional) into whole minor units.
func PriceMinorFromDecimal(unitAmount decimal.Decimal) int64 {
	return unitAmount.Round(0).IntPart()
}
