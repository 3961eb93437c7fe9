package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
	"shiftwise/internal/models/request_models"
	"shiftwise/internal/services"
	"shiftwise/pkg/flash"
	"shiftwise/pkg/middleware"
	"shiftwise/pkg/utils"
)

type AgencyController struct {
	agencyService services.AgencyServiceInterface
}

func NewAgencyController(agencyService services.AgencyServiceInterface) *AgencyController {
	return &AgencyController{agencyService: agencyService}
}

func (a *AgencyController) CreatePage(c *gin.Context) {
	respondPage(c, gin.H{
		"agency_types": []db_models.AgencyType{
			db_models.AgencyTypeStaffing,
			db_models.AgencyTypeHealthcare,
			db_models.AgencyTypeTraining,
			db_models.AgencyTypeEducation,
			db_models.AgencyTypeOther,
		},
		"has_agency": middleware.IdentityFrom(c).AgencyID != nil,
	})
}

func (a *AgencyController) Create(c *gin.Context) {
	var req request_models.CreateAgencyRequest
	if err := c.ShouldBind(&req); err != nil {
		redirectWith(c, flash.LevelError, "Please check the agency details and try again.", routeCreateAgency)
		return
	}

	agency, err := a.agencyService.CreateAgency(c.Request.Context(), middleware.IdentityFrom(c), req)
	switch {
	case err == nil:
	case errors.Is(err, utils.ErrProfileMissing):
		redirectWith(c, flash.LevelError, "Please complete your profile before creating an agency.", routeUpdateProfile)
		return
	case errors.Is(err, utils.ErrAgencyAlreadyExists), errors.Is(err, utils.ErrValidation):
		_, message := utils.StatusFor(err)
		redirectWith(c, flash.LevelError, message, routeCreateAgency)
		return
	default:
		redirectForError(c, err)
		return
	}

	redirectWith(c, flash.LevelSuccess, "Agency "+agency.Name+" created. Choose a plan to get started.", access.RouteSubscriptionHome)
}

// AddMember godoc
// @Summary Attach an existing account to the caller's agency
// @Tags Agencies
// @Accept json
// @Produce json
// @Param request body request_models.AddMemberRequest true "Member"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /accounts/agency/members [post]
func (a *AgencyController) AddMember(c *gin.Context) {
	var req request_models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.agencyService.AddMember(c.Request.Context(), middleware.IdentityFrom(c), req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Member added")
}
