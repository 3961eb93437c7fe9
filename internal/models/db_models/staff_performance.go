package db_models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PerformanceStatus string

const (
	PerformanceExcellent PerformanceStatus = "Excellent"
	PerformanceGood      PerformanceStatus = "Good"
	PerformanceAverage   PerformanceStatus = "Average"
	PerformancePoor      PerformanceStatus = "Poor"
)

func ParsePerformanceStatus(s string) (PerformanceStatus, error) {
	switch st := PerformanceStatus(s); st {
	case PerformanceExcellent, PerformanceGood, PerformanceAverage, PerformancePoor:
		return st, nil
	case "":
		return PerformanceAverage, nil
	}
	return "", fmt.Errorf("unknown performance status %q", s)
}

var maxPerformanceRating = decimal.NewFromInt(5)

// StaffPerformance is a manager's review of a worker, optionally tied to
// one shift.
type StaffPerformance struct {
	BaseModel
	AgencyID          uuid.UUID         `gorm:"type:uuid;index;not null"`
	WorkerID          uuid.UUID         `gorm:"type:uuid;index;not null"`
	ShiftID           *uuid.UUID        `gorm:"type:uuid;index"`
	WellnessScore     int               `gorm:"not null"`
	PerformanceRating decimal.Decimal   `gorm:"type:numeric(3,2)"`
	Status            PerformanceStatus `gorm:"size:16"`
	Comments          string            `gorm:"type:text"`

	Worker *Account `gorm:"foreignKey:WorkerID"`
	Shift  *Shift   `gorm:"foreignKey:ShiftID"`
}

func (p StaffPerformance) Validate() error {
	if p.AgencyID == uuid.Nil || p.WorkerID == uuid.Nil {
		return fmt.Errorf("agency and worker are required")
	}
	if p.WellnessScore < 0 || p.WellnessScore > 100 {
		return fmt.Errorf("wellness score must be between 0 and 100")
	}
	if p.PerformanceRating.IsNegative() || p.PerformanceRating.GreaterThan(maxPerformanceRating) {
		return fmt.Errorf("performance rating must be between 0 and 5")
	}
	if _, err := ParsePerformanceStatus(string(p.Status)); err != nil {
		return err
	}
	return nil
}
