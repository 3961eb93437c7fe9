package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shiftwise/internal/access"
	"shiftwise/internal/models/request_models"
	"shiftwise/internal/models/response_models"
	"shiftwise/internal/services"
	"shiftwise/pkg/flash"
	"shiftwise/pkg/middleware"
	"shiftwise/pkg/utils"
)

type AccountController struct {
	accountService services.AccountServiceInterface
	tokens         *utils.TokenIssuer
	secureCookies  bool
}

func NewAccountController(accountService services.AccountServiceInterface, tokens *utils.TokenIssuer, secureCookies bool) *AccountController {
	return &AccountController{
		accountService: accountService,
		tokens:         tokens,
		secureCookies:  secureCookies,
	}
}

// Register godoc
// @Summary Register a new account
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.SignUpRequest true "Account registration payload"
// @Success 201 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /accounts/register [post]
func (a *AccountController) Register(c *gin.Context) {
	var req request_models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	account, err := a.accountService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondCreated(c, response_models.NewAccountResponse(*account), "Account created successfully")
}

// Login godoc
// @Summary Login to an account
// @Description Authenticate a user, return a token and set it as a cookie
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.LoginRequest true "Login payload"
// @Success 200 {object} utils.APIResponse
// @Failure 401 {object} utils.APIResponse
// @Router /accounts/login [post]
func (a *AccountController) Login(c *gin.Context) {
	var req request_models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	token, err := a.accountService.Login(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	ttl := int(a.tokens.TTL().Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, ttl, "/", "", a.secureCookies, true)
	utils.RespondSuccess(c, response_models.AccountLoginResponse{Token: token, ExpiresIn: int64(ttl)}, "Login successful")
}

// LoginPage is where unauthenticated users are sent by the access gate.
func (a *AccountController) LoginPage(c *gin.Context) {
	respondPage(c, gin.H{"authenticated": middleware.IdentityFrom(c).Authenticated})
}

func (a *AccountController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", a.secureCookies, true)
	utils.RespondSuccess(c, nil, "Logged out")
}

// ForgotPassword godoc
// @Summary Request a password reset
// @Description Sends a password reset link to the provided email if it exists
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.RequestForgotPassword true "Email payload"
// @Success 200 {object} utils.APIResponse
// @Router /accounts/forgot-password [post]
func (a *AccountController) ForgotPassword(c *gin.Context) {
	var req request_models.RequestForgotPassword
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "If the email is registered, a reset link has been sent")
}

func (a *AccountController) ResetPassword(c *gin.Context) {
	var req request_models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.ResetPassword(c.Request.Context(), req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Password has been reset")
}

func (a *AccountController) Home(c *gin.Context) {
	respondPage(c, response_models.NewIdentityResponse(middleware.IdentityFrom(c)))
}

// Me returns the resolved identity of the caller.
func (a *AccountController) Me(c *gin.Context) {
	utils.RespondSuccess(c, response_models.NewIdentityResponse(middleware.IdentityFrom(c)), "")
}

func (a *AccountController) ProfilePage(c *gin.Context) {
	profile, err := a.accountService.GetProfile(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		respondPage(c, gin.H{"profile": nil})
		return
	}
	respondPage(c, gin.H{"profile": response_models.NewProfileResponse(*profile)})
}

func (a *AccountController) UpdateProfile(c *gin.Context) {
	var req request_models.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		redirectWith(c, flash.LevelError, "Please check the profile details and try again.", routeUpdateProfile)
		return
	}

	if _, err := a.accountService.UpdateProfile(c.Request.Context(), middleware.IdentityFrom(c), req); err != nil {
		code, message := utils.StatusFor(err)
		if code >= http.StatusInternalServerError {
			message = "Your profile could not be saved. Please try again later."
		}
		redirectWith(c, flash.LevelError, message, routeUpdateProfile)
		return
	}
	redirectWith(c, flash.LevelSuccess, "Your profile has been updated.", access.RouteHome)
}

// SetGroups godoc
// @Summary Replace an account's groups
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body request_models.SetGroupsRequest true "Groups"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/accounts/{id}/groups [post]
func (a *AccountController) SetGroups(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid account id")
		return
	}
	var req request_models.SetGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	account, err := a.accountService.SetGroups(c.Request.Context(), middleware.IdentityFrom(c), accountID, req.Groups)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.NewAccountResponse(*account), "Groups updated")
}
