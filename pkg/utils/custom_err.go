package utils

import "errors"

// Missing prerequisites. The caller can fix these themselves.
var (
	ErrProfileMissing         = errors.New("profile missing")
	ErrAgencyMissing          = errors.New("agency missing")
	ErrBillingCustomerMissing = errors.New("billing customer missing")
	ErrNoActiveSubscription   = errors.New("no active subscription")
	ErrNotAgencyOwner         = errors.New("not an agency owner")
)

// Lookup misses.
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAgencyNotFound       = errors.New("agency not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrShiftNotFound        = errors.New("shift not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrPerformanceNotFound  = errors.New("performance record not found")
)

// External providers.
var (
	ErrBillingProvider   = errors.New("billing provider error")
	ErrGeocodingProvider = errors.New("geocoding provider error")
	ErrMailProvider      = errors.New("mail provider error")
)

// Validation and refusals.
var (
	ErrValidation          = errors.New("validation failed")
	ErrWebhookSignature    = errors.New("invalid webhook signature")
	ErrWebhookPayload      = errors.New("invalid webhook payload")
	ErrAlreadySubscribed   = errors.New("agency already has an active subscription")
	ErrInvalidPlanChange   = errors.New("plan is not a valid change target")
	ErrShiftFull           = errors.New("shift is full")
	ErrAlreadyAssigned     = errors.New("worker already assigned to shift")
	ErrOutsideTravelRadius = errors.New("shift is outside the travel radius")
	ErrTooFarFromShift     = errors.New("too far from the shift location")
	ErrShiftCompleted      = errors.New("shift already completed")
	ErrShiftLimitReached   = errors.New("monthly shift limit reached")
	ErrAgencyMismatch      = errors.New("resource belongs to another agency")
	ErrForbidden           = errors.New("forbidden")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrAgencyAlreadyExists = errors.New("agency already exists")
)

var ErrDatabaseError = errors.New("database error")

// IsLookupMiss reports whether err is one of the not-found errors.
func IsLookupMiss(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrAgencyNotFound) ||
		errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrSubscriptionNotFound) ||
		errors.Is(err, ErrShiftNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrPerformanceNotFound)
}
