package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"shiftwise/internal/config"
	"shiftwise/internal/metrics"
	"shiftwise/internal/services"
	"shiftwise/pkg/utils"
)

const webhookSecret = "whsec_controller_test"

// stubSubscriptions records HandleEvent calls; every other method panics
// through the nil embedded interface.
type stubSubscriptions struct {
	services.SubscriptionService
	handled []*services.BillingEvent
	err     error
}

func (s *stubSubscriptions) HandleEvent(_ context.Context, event *services.BillingEvent) error {
	s.handled = append(s.handled, event)
	return s.err
}

func newWebhookRouter(subs services.SubscriptionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	gateway := services.NewStripeGateway(config.Stripe{SecretKey: "sk_test_123", WebhookSecret: webhookSecret}, nil, logger, m)

	r := gin.New()
	r.POST("/subscriptions/webhook", NewWebhookController(gateway, subs, m, logger).Handle)
	return r
}

func postEvent(t *testing.T, r http.Handler, eventType string, object map[string]any, sign bool) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":          "evt_ctrl",
		"object":      "event",
		"type":        eventType,
		"api_version": stripe.APIVersion,
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)

	signature := "t=1,v1=forged"
	if sign {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   raw,
			Secret:    webhookSecret,
			Timestamp: time.Now(),
		})
		raw, signature = signed.Payload, signed.Header
	}

	req := httptest.NewRequest(http.MethodPost, "/subscriptions/webhook", bytes.NewReader(raw))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookAcknowledgesHandledEvent(t *testing.T) {
	subs := &stubSubscriptions{}
	w := postEvent(t, newWebhookRouter(subs), "checkout.session.completed", map[string]any{
		"id": "cs_1", "object": "checkout.session", "customer": "cus_1", "subscription": "sub_1",
	}, true)

	require.Equal(t, http.StatusOK, w.Code)
	var body utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"received": true}, body.Data)

	require.Len(t, subs.handled, 1)
	assert.Equal(t, services.EventCheckoutCompleted, subs.handled[0].Type)
	assert.Equal(t, "sub_1", subs.handled[0].Checkout.SubscriptionID)
}

func TestWebhookAcknowledgesUnknownEvent(t *testing.T) {
	subs := &stubSubscriptions{}
	w := postEvent(t, newWebhookRouter(subs), "customer.created", map[string]any{"id": "cus_1", "object": "customer"}, true)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, subs.handled, 1)
	assert.Nil(t, subs.handled[0].Subscription)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	subs := &stubSubscriptions{}
	w := postEvent(t, newWebhookRouter(subs), "invoice.paid", map[string]any{"id": "in_1", "object": "invoice"}, false)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid signature")
	assert.Empty(t, subs.handled)
}

func TestWebhookErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"lookup miss", utils.ErrSubscriptionNotFound, http.StatusBadRequest},
		{"database", utils.ErrDatabaseError, http.StatusInternalServerError},
		{"provider", utils.ErrBillingProvider, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := &stubSubscriptions{err: tt.err}
			w := postEvent(t, newWebhookRouter(subs), "customer.subscription.deleted", map[string]any{
				"id": "sub_1", "object": "subscription", "customer": "cus_1", "status": "canceled",
			}, true)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
