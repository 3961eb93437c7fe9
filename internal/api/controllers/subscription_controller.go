package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shiftwise/internal/access"
	"shiftwise/internal/models/request_models"
	"shiftwise/internal/repositories"
	"shiftwise/internal/services"
	"shiftwise/pkg/flash"
	"shiftwise/pkg/middleware"
)

// SubscriptionController serves the interactive subscription pages. POSTs
// finish with a flash message and a redirect.
type SubscriptionController struct {
	subscriptions services.SubscriptionService
}

func NewSubscriptionController(subscriptions services.SubscriptionService) *SubscriptionController {
	return &SubscriptionController{subscriptions: subscriptions}
}

func (s *SubscriptionController) Home(c *gin.Context) {
	home, err := s.subscriptions.Overview(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		redirectForError(c, err)
		return
	}
	respondPage(c, home)
}

func (s *SubscriptionController) Subscribe(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		redirectWith(c, flash.LevelError, "The selected plan does not exist.", access.RouteSubscriptionHome)
		return
	}

	checkoutURL, err := s.subscriptions.Subscribe(c.Request.Context(), middleware.IdentityFrom(c), planID)
	if err != nil {
		redirectForError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, checkoutURL)
}

func (s *SubscriptionController) UpgradePage(c *gin.Context) {
	s.changePage(c, repositories.Upgrade)
}

func (s *SubscriptionController) Upgrade(c *gin.Context) {
	s.change(c, repositories.Upgrade)
}

func (s *SubscriptionController) DowngradePage(c *gin.Context) {
	s.changePage(c, repositories.Downgrade)
}

func (s *SubscriptionController) Downgrade(c *gin.Context) {
	s.change(c, repositories.Downgrade)
}

func (s *SubscriptionController) changePage(c *gin.Context, direction repositories.ChangeDirection) {
	options, err := s.subscriptions.ChangeOptions(c.Request.Context(), middleware.IdentityFrom(c), direction)
	if err != nil {
		redirectForError(c, err)
		return
	}
	respondPage(c, options)
}

func (s *SubscriptionController) change(c *gin.Context, direction repositories.ChangeDirection) {
	var req request_models.ChangePlanRequest
	if err := c.ShouldBind(&req); err != nil {
		redirectWith(c, flash.LevelError, "Please choose a plan.", "/subscriptions/"+string(direction))
		return
	}
	planID, _ := uuid.Parse(req.PlanID)

	plan, err := s.subscriptions.ChangePlan(c.Request.Context(), middleware.IdentityFrom(c), direction, planID)
	if err != nil {
		redirectForError(c, err)
		return
	}

	verb := "upgraded"
	if direction == repositories.Downgrade {
		verb = "downgraded"
	}
	redirectWith(c, flash.LevelSuccess,
		fmt.Sprintf("Subscription %s to %s plan successfully.", verb, plan.Name),
		routeManageSubscription)
}

func (s *SubscriptionController) CancelSubscription(c *gin.Context) {
	if _, err := s.subscriptions.Cancel(c.Request.Context(), middleware.IdentityFrom(c)); err != nil {
		redirectForError(c, err)
		return
	}
	redirectWith(c, flash.LevelSuccess, "Your subscription has been cancelled.", access.RouteSubscriptionHome)
}

func (s *SubscriptionController) Manage(c *gin.Context) {
	manage, err := s.subscriptions.Manage(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		redirectForError(c, err)
		return
	}
	respondPage(c, manage)
}

func (s *SubscriptionController) PaymentMethod(c *gin.Context) {
	portalURL, err := s.subscriptions.PaymentPortalURL(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		redirectForError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, portalURL)
}

// Success is the checkout return page. The subscription itself is written by
// the checkout webhook.
func (s *SubscriptionController) Success(c *gin.Context) {
	flash.Success(c, "Your subscription was successful!")
	respondPage(c, gin.H{"route": routeSubscriptionDone})
}

func (s *SubscriptionController) Cancel(c *gin.Context) {
	flash.Info(c, "Your subscription was cancelled.")
	respondPage(c, gin.H{"route": routeSubscriptionCancel})
}
