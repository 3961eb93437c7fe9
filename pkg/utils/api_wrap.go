package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, APIResponse{
		Status:  "success",
		Code:    http.StatusCreated,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// StatusFor maps a service error to the HTTP status and the message shown
// to the caller. Provider and database details never reach the client.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrProfileMissing):
		return http.StatusBadRequest, "Please complete your profile first."
	case errors.Is(err, ErrAgencyMissing):
		return http.StatusBadRequest, "Please create or join an agency first."
	case errors.Is(err, ErrBillingCustomerMissing):
		return http.StatusBadRequest, "Your agency has no billing account yet."
	case errors.Is(err, ErrNoActiveSubscription):
		return http.StatusBadRequest, "You do not have an active subscription."
	case errors.Is(err, ErrNotAgencyOwner):
		return http.StatusForbidden, "Only agency owners can manage subscriptions."
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrAgencyMismatch):
		return http.StatusForbidden, "You do not have permission to perform this action."

	case errors.Is(err, ErrAccountNotFound):
		return http.StatusNotFound, "Account not found"
	case errors.Is(err, ErrAgencyNotFound):
		return http.StatusNotFound, "Agency not found"
	case errors.Is(err, ErrPlanNotFound):
		return http.StatusNotFound, "Plan not found"
	case errors.Is(err, ErrSubscriptionNotFound):
		return http.StatusNotFound, "Subscription not found"
	case errors.Is(err, ErrShiftNotFound):
		return http.StatusNotFound, "Shift not found"
	case errors.Is(err, ErrAssignmentNotFound):
		return http.StatusNotFound, "Assignment not found"
	case errors.Is(err, ErrPerformanceNotFound):
		return http.StatusNotFound, "Performance record not found"

	case errors.Is(err, ErrShiftFull):
		return http.StatusConflict, "This shift is already full."
	case errors.Is(err, ErrAlreadyAssigned):
		return http.StatusConflict, "This worker is already assigned to the shift."
	case errors.Is(err, ErrShiftCompleted):
		return http.StatusConflict, "This shift has already been completed."
	case errors.Is(err, ErrAlreadySubscribed):
		return http.StatusConflict, "Your agency already has an active subscription."
	case errors.Is(err, ErrEmailAlreadyExists):
		return http.StatusConflict, "Email already registered"
	case errors.Is(err, ErrUsernameTaken):
		return http.StatusConflict, "Username already taken"
	case errors.Is(err, ErrAgencyAlreadyExists):
		return http.StatusConflict, "An agency with that name already exists."
	case errors.Is(err, ErrOutsideTravelRadius):
		return http.StatusBadRequest, "This shift is outside your travel radius."
	case errors.Is(err, ErrTooFarFromShift):
		return http.StatusBadRequest, "You must be within 0.5 miles of the shift location to complete it."
	case errors.Is(err, ErrShiftLimitReached):
		return http.StatusBadRequest, "Your agency has reached its monthly shift limit. Please upgrade your subscription."
	case errors.Is(err, ErrInvalidPlanChange):
		return http.StatusBadRequest, "The selected plan is not available for this change."
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username or password"
	case errors.Is(err, ErrInvalidResetToken):
		return http.StatusBadRequest, "Invalid or expired reset token"
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, ErrBillingProvider):
		return http.StatusBadGateway, "An error occurred with the payment provider. Please try again later."
	case errors.Is(err, ErrGeocodingProvider):
		return http.StatusBadGateway, "Address lookup is unavailable. Please try again later."
	}
	return http.StatusInternalServerError, "Internal server error"
}

func HandleServiceError(c *gin.Context, err error) {
	code, message := StatusFor(err)
	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("trace_id", traceID(c)),
			slog.String("path", c.FullPath()),
			slog.Any("error", err))
	}
	RespondError(c, code, message)
}
