package request_models

type ChangePlanRequest struct {
	PlanID string `json:"plan_id" form:"plan_id" binding:"required,uuid"`
}
