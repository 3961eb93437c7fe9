package response_models

import (
	"time"

	"github.com/google/uuid"
	"shiftwise/internal/models/db_models"
	"shiftwise/pkg/utils"
)

type ShiftResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ShiftCode     string    `json:"shift_code"`
	AgencyID      uuid.UUID `json:"agency_id"`
	AgencyName    string    `json:"agency_name,omitempty"`
	ShiftDate     string    `json:"shift_date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	DurationHours float64   `json:"duration_hours"`
	Capacity      int       `json:"capacity"`
	Assigned      int       `json:"assigned"`
	IsFull        bool      `json:"is_full"`
	HourlyRate    string    `json:"hourly_rate"`
	ShiftType     string    `json:"shift_type"`
	Status        string    `json:"status"`
	AddressLine1  string    `json:"address_line1,omitempty"`
	AddressLine2  string    `json:"address_line2,omitempty"`
	City          string    `json:"city,omitempty"`
	County        string    `json:"county,omitempty"`
	Postcode      string    `json:"postcode,omitempty"`
	Country       string    `json:"country,omitempty"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	DistanceMiles *float64  `json:"distance_miles,omitempty"`
	IsActive      bool      `json:"is_active"`
	CompletedAt   string    `json:"completed_at,omitempty"`
	CreatedAt     string    `json:"created_at"`
}

func NewShiftResponse(s db_models.Shift) ShiftResponse {
	resp := ShiftResponse{
		ID:            s.ID,
		Name:          s.Name,
		ShiftCode:     s.ShiftCode,
		AgencyID:      s.AgencyID,
		ShiftDate:     time.Time(s.ShiftDate).Format(time.DateOnly),
		StartTime:     s.StartTime.String()[:5],
		EndTime:       s.EndTime.String()[:5],
		DurationHours: s.Duration().Hours(),
		Capacity:      s.Capacity,
		Assigned:      len(s.Assignments),
		IsFull:        len(s.Assignments) >= s.Capacity,
		HourlyRate:    s.HourlyRate.StringFixed(2),
		ShiftType:     string(s.ShiftType),
		Status:        string(s.Status),
		AddressLine1:  s.AddressLine1,
		AddressLine2:  s.AddressLine2,
		City:          s.City,
		County:        s.County,
		Postcode:      s.Postcode,
		Country:       s.Country,
		Latitude:      s.Latitude,
		Longitude:     s.Longitude,
		IsActive:      s.IsActive,
		CreatedAt:     utils.FormatRFC3339(utils.FromUnixSeconds(s.CreatedAt)),
	}
	if s.CompletedAt != nil {
		resp.CompletedAt = utils.FormatRFC3339(utils.FromUnixSeconds(*s.CompletedAt))
	}
	if s.Agency != nil {
		resp.AgencyName = s.Agency.Name
	}
	return resp
}

type ShiftPage struct {
	Items    []ShiftResponse `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

type AssignmentResponse struct {
	ID               uuid.UUID `json:"id"`
	ShiftID          uuid.UUID `json:"shift_id"`
	ShiftName        string    `json:"shift_name,omitempty"`
	ShiftDate        string    `json:"shift_date,omitempty"`
	WorkerID         uuid.UUID `json:"worker_id"`
	WorkerUsername   string    `json:"worker_username,omitempty"`
	Role             string    `json:"role"`
	Status           string    `json:"status"`
	AssignedAt       string    `json:"assigned_at"`
	AttendanceStatus string    `json:"attendance_status,omitempty"`
	CompletedAt      string    `json:"completed_at,omitempty"`
	Signed           bool      `json:"signed"`
}

func NewAssignmentResponse(a db_models.ShiftAssignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:         a.ID,
		ShiftID:    a.ShiftID,
		WorkerID:   a.WorkerID,
		Role:       string(a.Role),
		Status:     string(a.Status),
		AssignedAt: utils.FormatRFC3339(utils.FromUnixSeconds(a.AssignedAt)),

		AttendanceStatus: string(a.AttendanceStatus),
		Signed:           len(a.Signature) > 0,
	}
	if a.CompletedAt != nil {
		resp.CompletedAt = utils.FormatRFC3339(utils.FromUnixSeconds(*a.CompletedAt))
	}
	if a.Shift != nil {
		resp.ShiftName = a.Shift.Name
		resp.ShiftDate = time.Time(a.Shift.ShiftDate).Format(time.DateOnly)
	}
	if a.Worker != nil {
		resp.WorkerUsername = a.Worker.Username
	}
	return resp
}

func NewAssignmentResponses(assignments []db_models.ShiftAssignment) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, NewAssignmentResponse(a))
	}
	return out
}
