package db_models

import (
	"fmt"

	"github.com/google/uuid"
)

type AssignmentRole string

const (
	AssignmentRoleStaff   AssignmentRole = "Staff"
	AssignmentRoleManager AssignmentRole = "Manager"
)

func ParseAssignmentRole(s string) (AssignmentRole, error) {
	switch r := AssignmentRole(s); r {
	case AssignmentRoleStaff, AssignmentRoleManager:
		return r, nil
	case "":
		return AssignmentRoleStaff, nil
	}
	return "", fmt.Errorf("unknown assignment role %q", s)
}

type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

type AttendanceStatus string

const (
	AttendanceAttended AttendanceStatus = "attended"
	AttendanceLate     AttendanceStatus = "late"
	AttendanceNoShow   AttendanceStatus = "no_show"
)

// ParseAttendanceStatus accepts an empty value, which leaves attendance
// unrecorded.
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	switch a := AttendanceStatus(s); a {
	case AttendanceAttended, AttendanceLate, AttendanceNoShow, "":
		return a, nil
	}
	return "", fmt.Errorf("unknown attendance status %q", s)
}

type ShiftAssignment struct {
	BaseModel
	ShiftID    uuid.UUID        `gorm:"type:uuid;uniqueIndex:idx_shift_worker;not null"`
	WorkerID   uuid.UUID        `gorm:"type:uuid;uniqueIndex:idx_shift_worker;index;not null"`
	Role       AssignmentRole   `gorm:"size:16"`
	Status     AssignmentStatus `gorm:"size:16"`
	AssignedAt int64            `gorm:"not null"`

	// Completion data, set once the worker signs off the shift.
	AttendanceStatus    AttendanceStatus `gorm:"size:16"`
	CompletedAt         *int64
	CompletionLatitude  *float64
	CompletionLongitude *float64
	Signature           []byte
	SignatureType       string `gorm:"size:64"`

	Shift  *Shift   `gorm:"foreignKey:ShiftID"`
	Worker *Account `gorm:"foreignKey:WorkerID"`
}
