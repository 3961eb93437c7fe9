package db_models

import (
	"fmt"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubStatusIncomplete        SubscriptionStatus = "incomplete"
	SubStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubStatusTrialing          SubscriptionStatus = "trialing"
	SubStatusActive            SubscriptionStatus = "active"
	SubStatusPastDue           SubscriptionStatus = "past_due"
	SubStatusCanceled          SubscriptionStatus = "canceled"
	SubStatusUnpaid            SubscriptionStatus = "unpaid"
	SubStatusPaused            SubscriptionStatus = "paused"
)

func ParseSubscriptionStatus(s string) (SubscriptionStatus, error) {
	switch st := SubscriptionStatus(s); st {
	case SubStatusIncomplete, SubStatusIncompleteExpired, SubStatusTrialing, SubStatusActive,
		SubStatusPastDue, SubStatusCanceled, SubStatusUnpaid, SubStatusPaused:
		return st, nil
	}
	return "", fmt.Errorf("unknown subscription status %q", s)
}

type Subscription struct {
	BaseModel
	AgencyID             uuid.UUID          `gorm:"type:uuid;uniqueIndex;not null"`
	PlanID               *uuid.UUID         `gorm:"type:uuid;index"`
	StripeSubscriptionID string             `gorm:"size:255;index"`
	IsActive             bool               `gorm:"index"`
	Status               SubscriptionStatus `gorm:"size:32"`
	CurrentPeriodStart   *int64
	CurrentPeriodEnd     *int64
	IsExpired            bool

	Agency *Agency `gorm:"foreignKey:AgencyID"`
	Plan   *Plan   `gorm:"foreignKey:PlanID"`
}

// IsActiveAt is the presented state: the flag is set and the period ends
// strictly after now (unix seconds).
func (s Subscription) IsActiveAt(now int64) bool {
	return s.IsActive && s.CurrentPeriodEnd != nil && *s.CurrentPeriodEnd > now
}

func (s Subscription) Validate() error {
	if s.AgencyID == uuid.Nil {
		return fmt.Errorf("agency is required")
	}
	if s.PlanID == nil || *s.PlanID == uuid.Nil {
		return fmt.Errorf("plan is required")
	}
	if s.Status != "" {
		if _, err := ParseSubscriptionStatus(string(s.Status)); err != nil {
			return err
		}
	}
	if s.IsActive && s.StripeSubscriptionID == "" {
		return fmt.Errorf("active subscription needs a provider subscription id")
	}
	if s.CurrentPeriodStart != nil && s.CurrentPeriodEnd != nil && *s.CurrentPeriodEnd < *s.CurrentPeriodStart {
		return fmt.Errorf("period end %d precedes period start %d", *s.CurrentPeriodEnd, *s.CurrentPeriodStart)
	}
	return nil
}
