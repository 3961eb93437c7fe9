package db_models

import (
	"fmt"

	"github.com/google/uuid"
)

type AgencyType string

const (
	AgencyTypeStaffing   AgencyType = "staffing"
	AgencyTypeHealthcare AgencyType = "healthcare"
	AgencyTypeTraining   AgencyType = "training"
	AgencyTypeEducation  AgencyType = "education"
	AgencyTypeOther      AgencyType = "other"
)

func ParseAgencyType(s string) (AgencyType, error) {
	switch t := AgencyType(s); t {
	case AgencyTypeStaffing, AgencyTypeHealthcare, AgencyTypeTraining, AgencyTypeEducation, AgencyTypeOther:
		return t, nil
	case "":
		return AgencyTypeStaffing, nil
	}
	return "", fmt.Errorf("unknown agency type %q", s)
}

type Agency struct {
	BaseModel
	Name       string     `gorm:"size:255;uniqueIndex;not null"`
	AgencyCode string     `gorm:"size:20;uniqueIndex;not null"`
	OwnerID    *uuid.UUID `gorm:"type:uuid;index"`
	Email      string
	Phone      string
	Address    string
	Postcode   string
	AgencyType AgencyType `gorm:"size:32"`
	Website    string
	// StripeCustomerID is nil until the billing customer has been created.
	StripeCustomerID *string `gorm:"size:255;uniqueIndex"`
	IsActive         bool
}

func (a Agency) CustomerID() string {
	if a.StripeCustomerID == nil {
		return ""
	}
	return *a.StripeCustomerID
}
