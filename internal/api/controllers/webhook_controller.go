package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"shiftwise/internal/metrics"
	"shiftwise/internal/services"
	"shiftwise/pkg/utils"
)

const maxWebhookBody = int64(65536)

type WebhookController struct {
	gateway       services.BillingGateway
	subscriptions services.SubscriptionService
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewWebhookController(gateway services.BillingGateway, subscriptions services.SubscriptionService, m *metrics.Metrics, logger *slog.Logger) *WebhookController {
	return &WebhookController{
		gateway:       gateway,
		subscriptions: subscriptions,
		metrics:       m,
		logger:        logger.With(slog.String("component", "webhook")),
	}
}

// Handle godoc
// @Summary Billing provider webhook
// @Description Verifies the signature and reconciles the local subscription.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /subscriptions/webhook [post]
func (w *WebhookController) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		w.logger.WarnContext(ctx, "read webhook body", slog.Any("error", err))
		w.metrics.WebhookEvent("unknown", "invalid")
		utils.RespondError(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	event, err := w.gateway.ParseEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		w.logger.WarnContext(ctx, "rejected webhook", slog.Any("error", err))
		w.metrics.WebhookEvent("unknown", "invalid")
		message := "Invalid payload"
		if errors.Is(err, utils.ErrWebhookSignature) {
			message = "Invalid signature"
		}
		utils.RespondError(c, http.StatusBadRequest, message)
		return
	}

	eventType := string(event.Type)
	switch event.Type {
	case services.EventCheckoutCompleted, services.EventInvoicePaid,
		services.EventSubscriptionUpdated, services.EventSubscriptionDeleted:
	default:
		eventType = "other"
	}

	if err := w.subscriptions.HandleEvent(ctx, event); err != nil {
		// Database and provider failures answer 500, problems with the event
		// itself answer 400.
		if errors.Is(err, utils.ErrDatabaseError) || errors.Is(err, utils.ErrBillingProvider) {
			w.logger.ErrorContext(ctx, "webhook processing failed",
				slog.String("event_id", event.ID),
				slog.String("event_type", string(event.Type)),
				slog.Any("error", err))
			w.metrics.WebhookEvent(eventType, "error")
			utils.RespondError(c, http.StatusInternalServerError, "Event processing failed")
			return
		}
		w.logger.WarnContext(ctx, "webhook event rejected",
			slog.String("event_id", event.ID),
			slog.String("event_type", string(event.Type)),
			slog.Any("error", err))
		w.metrics.WebhookEvent(eventType, "rejected")
		utils.RespondError(c, http.StatusBadRequest, "Event could not be applied")
		return
	}

	outcome := "ok"
	if eventType == "other" {
		outcome = "ignored"
	}
	w.metrics.WebhookEvent(eventType, outcome)
	utils.RespondSuccess(c, gin.H{"received": true}, "")
}
