package db_models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ShiftType string

const (
	ShiftTypeRegular     ShiftType = "regular"
	ShiftTypeMorning     ShiftType = "morning_shift"
	ShiftTypeDay         ShiftType = "day_shift"
	ShiftTypeNight       ShiftType = "night_shift"
	ShiftTypeBankHoliday ShiftType = "bank_holiday"
	ShiftTypeEmergency   ShiftType = "emergency_shift"
	ShiftTypeOvertime    ShiftType = "overtime"
)

func ParseShiftType(s string) (ShiftType, error) {
	switch t := ShiftType(s); t {
	case ShiftTypeRegular, ShiftTypeMorning, ShiftTypeDay, ShiftTypeNight,
		ShiftTypeBankHoliday, ShiftTypeEmergency, ShiftTypeOvertime:
		return t, nil
	case "":
		return ShiftTypeRegular, nil
	}
	return "", fmt.Errorf("unknown shift type %q", s)
}

type ShiftStatus string

const (
	ShiftStatusAvailable ShiftStatus = "available"
	ShiftStatusBooked    ShiftStatus = "booked"
	ShiftStatusCompleted ShiftStatus = "completed"
	ShiftStatusCancelled ShiftStatus = "cancelled"
)

func ParseShiftStatus(s string) (ShiftStatus, error) {
	switch st := ShiftStatus(s); st {
	case ShiftStatusAvailable, ShiftStatusBooked, ShiftStatusCompleted, ShiftStatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown shift status %q", s)
}

// IsOpen reports whether workers can still be booked onto the shift.
func (s Shift) IsOpen() bool {
	return s.IsActive && (s.Status == ShiftStatusAvailable || s.Status == ShiftStatusBooked)
}

type Shift struct {
	BaseModel
	Name       string          `gorm:"size:255;not null"`
	ShiftCode  string          `gorm:"size:20;uniqueIndex;not null"`
	AgencyID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ShiftDate  datatypes.Date  `gorm:"index;not null"`
	StartTime  datatypes.Time  `gorm:"not null"`
	EndTime    datatypes.Time  `gorm:"not null"`
	Capacity   int             `gorm:"not null"`
	HourlyRate decimal.Decimal `gorm:"type:numeric(10,2)"`
	ShiftType  ShiftType       `gorm:"size:32"`
	Status     ShiftStatus     `gorm:"size:16;index"`

	AddressLine1 string
	AddressLine2 string
	City         string
	County       string
	Postcode     string
	Country      string `gorm:"size:64"`
	Latitude     *float64
	Longitude    *float64
	IsActive     bool
	CompletedAt  *int64

	Agency      *Agency           `gorm:"foreignKey:AgencyID"`
	Assignments []ShiftAssignment `gorm:"foreignKey:ShiftID"`
}

// Validate checks the invariants a shift must hold before it is stored.
func (s Shift) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.AgencyID == uuid.Nil {
		return fmt.Errorf("agency is required")
	}
	if time.Time(s.ShiftDate).IsZero() {
		return fmt.Errorf("shift date is required")
	}
	if s.EndTime <= s.StartTime {
		return fmt.Errorf("end time %s must be after start time %s", s.EndTime, s.StartTime)
	}
	if s.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1")
	}
	if s.HourlyRate.IsNegative() {
		return fmt.Errorf("hourly rate cannot be negative")
	}
	if _, err := ParseShiftType(string(s.ShiftType)); err != nil {
		return err
	}
	if s.Latitude != nil && (*s.Latitude < -90 || *s.Latitude > 90) {
		return fmt.Errorf("latitude %v out of range [-90, 90]", *s.Latitude)
	}
	if s.Longitude != nil && (*s.Longitude < -180 || *s.Longitude > 180) {
		return fmt.Errorf("longitude %v out of range [-180, 180]", *s.Longitude)
	}
	return nil
}

func (s Shift) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

func (s Shift) Duration() time.Duration {
	return time.Duration(s.EndTime - s.StartTime)
}

// Complete marks the shift done at the given unix time. Completed shifts no
// longer take bookings.
func (s *Shift) Complete(at int64) {
	s.Status = ShiftStatusCompleted
	s.CompletedAt = &at
}

// RefreshStatus flips an open shift between available and booked based on
// how many assignments it holds.
func (s *Shift) RefreshStatus(assigned int) {
	if s.Status == ShiftStatusCompleted || s.Status == ShiftStatusCancelled {
		return
	}
	if assigned >= s.Capacity {
		s.Status = ShiftStatusBooked
		return
	}
	s.Status = ShiftStatusAvailable
}
