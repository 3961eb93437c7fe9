package request_models

// ShiftRequest is used for both create and update. Dates are YYYY-MM-DD and
// times HH:MM, on the same calendar day.
type ShiftRequest struct {
	Name         string   `json:"name" form:"name" binding:"required,max=255"`
	ShiftDate    string   `json:"shift_date" form:"shift_date" binding:"required"`
	StartTime    string   `json:"start_time" form:"start_time" binding:"required"`
	EndTime      string   `json:"end_time" form:"end_time" binding:"required"`
	Capacity     int      `json:"capacity" form:"capacity" binding:"required,min=1"`
	HourlyRate   string   `json:"hourly_rate" form:"hourly_rate"`
	ShiftType    string   `json:"shift_type" form:"shift_type"`
	Status       string   `json:"status" form:"status"`
	AddressLine1 string   `json:"address_line1" form:"address_line1"`
	AddressLine2 string   `json:"address_line2" form:"address_line2"`
	City         string   `json:"city" form:"city"`
	County       string   `json:"county" form:"county"`
	Postcode     string   `json:"postcode" form:"postcode"`
	Country      string   `json:"country" form:"country"`
	Latitude     *float64 `json:"latitude" form:"latitude"`
	Longitude    *float64 `json:"longitude" form:"longitude"`
}

type AssignWorkerRequest struct {
	WorkerID string `json:"worker_id" form:"worker_id" binding:"required,uuid"`
	Role     string `json:"role" form:"role"`
}

type ShiftListQuery struct {
	Search   string `form:"q"`
	Status   string `form:"status"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CompleteShiftRequest carries the worker's sign-off. Signature is an image
// data URL ("data:image/png;base64,...").
type CompleteShiftRequest struct {
	Signature        string   `json:"signature" form:"signature"`
	Latitude         *float64 `json:"latitude" form:"latitude"`
	Longitude        *float64 `json:"longitude" form:"longitude"`
	AttendanceStatus string   `json:"attendance_status" form:"attendance_status"`
}

type PerformanceRequest struct {
	WellnessScore     int    `json:"wellness_score" form:"wellness_score" binding:"min=0,max=100"`
	PerformanceRating string `json:"performance_rating" form:"performance_rating" binding:"required"`
	Status            string `json:"status" form:"status"`
	Comments          string `json:"comments" form:"comments" binding:"max=4000"`
}

type CreatePerformanceRequest struct {
	WorkerID string `json:"worker_id" form:"worker_id" binding:"required,uuid"`
	ShiftID  string `json:"shift_id" form:"shift_id" binding:"omitempty,uuid"`
	PerformanceRequest
}

type PerformanceListQuery struct {
	WorkerID string `form:"worker_id" binding:"omitempty,uuid"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}
