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

type PerformanceController struct {
	performanceService services.PerformanceServiceInterface
}

func NewPerformanceController(performanceService services.PerformanceServiceInterface) *PerformanceController {
	return &PerformanceController{performanceService: performanceService}
}

func recordIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid record id")
		return uuid.Nil, false
	}
	return id, true
}

// List godoc
// @Summary List staff performance records of the caller's agency
// @Tags Performance
// @Produce json
// @Param worker_id query string false "Only this worker"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /performance [get]
func (p *PerformanceController) List(c *gin.Context) {
	var query request_models.PerformanceListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	page, err := p.performanceService.List(c.Request.Context(), middleware.IdentityFrom(c), query)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, page, "")
}

func (p *PerformanceController) Get(c *gin.Context) {
	recordID, ok := recordIDParam(c)
	if !ok {
		return
	}
	record, err := p.performanceService.Get(c.Request.Context(), middleware.IdentityFrom(c), recordID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, record, "")
}

func (p *PerformanceController) Create(c *gin.Context) {
	var req request_models.CreatePerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	record, err := p.performanceService.Create(c.Request.Context(), middleware.IdentityFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondCreated(c, record, "Staff performance record created successfully.")
}

func (p *PerformanceController) Update(c *gin.Context) {
	recordID, ok := recordIDParam(c)
	if !ok {
		return
	}
	var req request_models.PerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	record, err := p.performanceService.Update(c.Request.Context(), middleware.IdentityFrom(c), recordID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, record, "Staff performance record updated successfully.")
}

func (p *PerformanceController) Delete(c *gin.Context) {
	recordID, ok := recordIDParam(c)
	if !ok {
		return
	}
	if err := p.performanceService.Delete(c.Request.Context(), middleware.IdentityFrom(c), recordID); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Staff performance record deleted successfully.")
}
