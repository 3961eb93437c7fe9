package response_models

import (
	"github.com/google/uuid"
	"shiftwise/internal/models/db_models"
	"shiftwise/pkg/utils"
)

type PerformanceResponse struct {
	ID                uuid.UUID  `json:"id"`
	AgencyID          uuid.UUID  `json:"agency_id"`
	WorkerID          uuid.UUID  `json:"worker_id"`
	WorkerUsername    string     `json:"worker_username,omitempty"`
	ShiftID           *uuid.UUID `json:"shift_id,omitempty"`
	ShiftName         string     `json:"shift_name,omitempty"`
	WellnessScore     int        `json:"wellness_score"`
	PerformanceRating string     `json:"performance_rating"`
	Status            string     `json:"status"`
	Comments          string     `json:"comments,omitempty"`
	CreatedAt         string     `json:"created_at"`
}

func NewPerformanceResponse(p db_models.StaffPerformance) PerformanceResponse {
	resp := PerformanceResponse{
		ID:                p.ID,
		AgencyID:          p.AgencyID,
		WorkerID:          p.WorkerID,
		ShiftID:           p.ShiftID,
		WellnessScore:     p.WellnessScore,
		PerformanceRating: p.PerformanceRating.StringFixed(2),
		Status:            string(p.Status),
		Comments:          p.Comments,
		CreatedAt:         utils.FormatRFC3339(utils.FromUnixSeconds(p.CreatedAt)),
	}
	if p.Worker != nil {
		resp.WorkerUsername = p.Worker.Username
	}
	if p.Shift != nil {
		resp.ShiftName = p.Shift.Name
	}
	return resp
}

type PerformancePage struct {
	Items    []PerformanceResponse `json:"items"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}
