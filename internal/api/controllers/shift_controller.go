package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shiftwise/internal/models/request_models"
	"shiftwise/internal/services"
	"shiftwise/pkg/middleware"
	"shiftwise/pkg/utils"
)

type ShiftController struct {
	shiftService services.ShiftServiceInterface
}

func NewShiftController(shiftService services.ShiftServiceInterface) *ShiftController {
	return &ShiftController{shiftService: shiftService}
}

func shiftIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid shift id")
		return uuid.Nil, false
	}
	return id, true
}

// List godoc
// @Summary List shifts of the caller's agency
// @Description Includes distance_miles when the caller's profile has coordinates
// @Tags Shifts
// @Produce json
// @Param q query string false "Search by name, code, city or postcode"
// @Param status query string false "Shift status"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /shifts [get]
func (s *ShiftController) List(c *gin.Context) {
	var query request_models.ShiftListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	page, err := s.shiftService.List(c.Request.Context(), middleware.IdentityFrom(c), query)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, page, "")
}

func (s *ShiftController) Get(c *gin.Context) {
	shiftID, ok := shiftIDParam(c)
	if !ok {
		return
	}
	shift, err := s.shiftService.Get(c.Request.Context(), middleware.IdentityFrom(c), shiftID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, shift, "")
}

func (s *ShiftController) Create(c *gin.Context) {
	var req request_models.ShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	shift, err := s.shiftService.Create(c.Request.Context(), middleware.IdentityFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, shift, "Shift created")
}

func (s *ShiftController) Update(c *gin.Context) {
	shiftID, ok := shiftIDParam(c)
	if !ok {
		return
	}
	var req request_models.ShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	shift, err := s.shiftService.Update(c.Request.Context(), middleware.IdentityFrom(c), shiftID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, shift, "Shift updated")
}

func (s *ShiftController) Delete(c *gin.Context) {
	shiftID, ok := shiftIDParam(c)
	if !ok {
		return
	}
	if err := s.shiftService.Delete(c.Request.Context(), middleware.IdentityFrom(c), shiftID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Shift deleted")
}

func (s *ShiftController) Book(c *gin.Context) {
	shiftID, ok := shiftIDParam(c)
	if !ok {
		return
	}
	if err := s.shiftService.Book(c.Request.Context(), middleware.IdentityFrom(c), shiftID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Shift booked")
}

func (s *ShiftController) Unbook(c *gin.Context) {
	shiftID, ok := shiftIDParam(c)
	if !ok {
		return
	}
	if err := s.shiftService.Unbook(c.Request.Context(), middleware.IdentityFrom(c), shiftID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Booking removed")
}

func (s *ShiftController) Assign(c *gin.Context) {
	shiftID, ok := shiftIDParam(c)
	if !ok {
		return
	}
	var req request_models.AssignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := s.shiftService.Assign(c.Request.Context(), middleware.IdentityFrom(c), shiftID, req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Worker assigned")
}

func (s *ShiftController) Unassign(c *gin.Context) {
	shiftID, ok := shiftIDParam(c)
	if !ok {
		return
	}
	var req request_models.AssignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}
	workerID, _ := uuid.Parse(req.WorkerID)

	if err := s.shiftService.Unassign(c.Request.Context(), middleware.IdentityFrom(c), shiftID, workerID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Worker unassigned")
}

// Complete godoc
// @Summary Sign off the caller's assignment on a shift
// @Description The caller must be within 0.5 miles of the shift. Signature is an optional image data URL.
// @Tags Shifts
// @Accept json
// @Produce json
// @Param id path string true "Shift ID"
// @Param request body request_models.CompleteShiftRequest true "Completion data"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /shifts/{id}/complete [post]
func (s *ShiftController) Complete(c *gin.Context) {
	shiftID, ok := shiftIDParam(c)
	if !ok {
		return
	}
	var req request_models.CompleteShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	assignment, err := s.shiftService.Complete(c.Request.Context(), middleware.IdentityFrom(c), shiftID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, assignment, "Shift completed successfully.")
}

func (s *ShiftController) CompleteFor(c *gin.Context) {
	shiftID, ok := shiftIDParam(c)
	if !ok {
		return
	}
	workerID, err := uuid.Parse(c.Param("worker_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid worker id")
		return
	}
	var req request_models.CompleteShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	assignment, err := s.shiftService.CompleteFor(c.Request.Context(), middleware.IdentityFrom(c), shiftID, workerID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, assignment, "Shift completed for worker.")
}
