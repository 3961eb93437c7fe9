package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"shiftwise/internal/models/request_models"
	"shiftwise/internal/models/response_models"
	"shiftwise/internal/services"
	"shiftwise/pkg/middleware"
	"shiftwise/pkg/utils"
)

// AdminController serves the back-office lists. Every list is limited to the
// caller's agency unless the caller is a superuser.
type AdminController struct {
	shifts        services.ShiftServiceInterface
	subscriptions services.SubscriptionService
	agencies      services.AgencyServiceInterface
	plans         services.PlanServiceInterface
}

func NewAdminController(
	shifts services.ShiftServiceInterface,
	subscriptions services.SubscriptionService,
	agencies services.AgencyServiceInterface,
	plans services.PlanServiceInterface,
) *AdminController {
	return &AdminController{shifts: shifts, subscriptions: subscriptions, agencies: agencies, plans: plans}
}

func (a *AdminController) Shifts(c *gin.Context) {
	var query request_models.ShiftListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	page, err := a.shifts.List(c.Request.Context(), middleware.IdentityFrom(c), query)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, page, "")
}

func (a *AdminController) Assignments(c *gin.Context) {
	assignments, err := a.shifts.ListAssignments(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, assignments, "")
}

func (a *AdminController) Subscriptions(c *gin.Context) {
	subs, err := a.subscriptions.ListForAdmin(c.Request.Context(), middleware.IdentityFrom(c), c.Query("q"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, subs, "")
}

func (a *AdminController) Agencies(c *gin.Context) {
	agencies, err := a.agencies.ListForAdmin(c.Request.Context(), middleware.IdentityFrom(c), c.Query("q"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.NewAgencyResponses(agencies), "")
}

func (a *AdminController) Plans(c *gin.Context) {
	plans, err := a.plans.ListForAdmin(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, plans, "")
}
