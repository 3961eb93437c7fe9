package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"shiftwise/internal/access"
	"shiftwise/pkg/flash"
	"shiftwise/pkg/utils"
)

// Interactive routes redirect back to these after a POST.
const (
	routeManageSubscription = "/subscriptions/manage"
	routeCreateAgency       = "/accounts/agency/create"
	routeUpdateProfile      = "/accounts/profile"
	routeSubscriptionDone   = "/subscriptions/success"
	routeSubscriptionCancel = "/subscriptions/cancel"
)

// respondPage answers a GET on an interactive route with its data and any
// queued flash messages.
func respondPage(c *gin.Context, data interface{}) {
	utils.RespondSuccess(c, gin.H{
		"messages": flash.Pop(c),
		"page":     data,
	}, "")
}

func redirectWith(c *gin.Context, level flash.Level, message, route string) {
	flash.Add(c, level, message)
	c.Redirect(http.StatusFound, route)
}

// redirectForError turns a service error into a flash message and sends the
// user to the page that fixes it.
func redirectForError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrProfileMissing):
		redirectWith(c, flash.LevelError, "Please complete your profile before subscribing.", routeUpdateProfile)
	case errors.Is(err, utils.ErrAgencyMissing):
		redirectWith(c, flash.LevelError, "Please create an agency before subscribing.", routeCreateAgency)
	case errors.Is(err, utils.ErrNotAgencyOwner):
		redirectWith(c, flash.LevelError, "Only agency owners can subscribe.", access.RouteHome)
	case errors.Is(err, utils.ErrBillingCustomerMissing):
		redirectWith(c, flash.LevelError, "Stripe customer ID is missing. Please contact support.", access.RouteSubscriptionHome)
	case errors.Is(err, utils.ErrAlreadySubscribed):
		redirectWith(c, flash.LevelInfo, "You already have an active subscription. Manage your subscription instead.", routeManageSubscription)
	case errors.Is(err, utils.ErrNoActiveSubscription):
		redirectWith(c, flash.LevelError, "You do not have an active subscription.", access.RouteSubscriptionHome)
	default:
		code, message := utils.StatusFor(err)
		if code >= http.StatusInternalServerError || utils.IsLookupMiss(err) || errors.Is(err, utils.ErrBillingProvider) {
			slog.ErrorContext(c.Request.Context(), "interactive request failed",
				slog.String("trace_id", c.GetString("trace_id")),
				slog.String("path", c.FullPath()),
				slog.Any("error", err))
		}
		if code >= http.StatusInternalServerError {
			message = "An unexpected error occurred. Please try again later."
		}
		redirectWith(c, flash.LevelError, message, access.RouteSubscriptionHome)
	}
}
