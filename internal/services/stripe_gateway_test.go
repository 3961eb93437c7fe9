package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"shiftwise/internal/config"
	"shiftwise/internal/metrics"
	"shiftwise/pkg/utils"
)

const testWebhookSecret = "whsec_test_secret"

func newTestGateway(t *testing.T, handler http.Handler) BillingGateway {
	t.Helper()
	var backends *stripe.Backends
	if handler != nil {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(server.URL),
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
		})
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}
	cfg := config.Stripe{SecretKey: "sk_test_123", WebhookSecret: testWebhookSecret, Currency: "gbp"}
	return NewStripeGateway(cfg, backends, discardLogger(), metrics.New())
}

func signedEvent(t *testing.T, eventType string, object map[string]any) ([]byte, string) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":          "evt_123",
		"object":      "event",
		"type":        eventType,
		"api_version": stripe.APIVersion,
		"data":        map[string]any{"object": object},
	})
	require.NoError(t, err)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   raw,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestParseEventCheckoutCompleted(t *testing.T) {
	g := newTestGateway(t, nil)
	payload, header := signedEvent(t, "checkout.session.completed", map[string]any{
		"id":           "cs_1",
		"object":       "checkout.session",
		"customer":     "cus_1",
		"subscription": "sub_1",
	})

	event, err := g.ParseEvent(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_123", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	require.NotNil(t, event.Checkout)
	assert.Equal(t, "cs_1", event.Checkout.SessionID)
	assert.Equal(t, "cus_1", event.Checkout.CustomerID)
	assert.Equal(t, "sub_1", event.Checkout.SubscriptionID)
	assert.Nil(t, event.Subscription)
}

func TestParseEventSubscriptionUpdated(t *testing.T) {
	g := newTestGateway(t, nil)
	payload, header := signedEvent(t, "customer.subscription.updated", map[string]any{
		"id":       "sub_1",
		"object":   "subscription",
		"customer": "cus_1",
		"status":   "past_due",
		"items": map[string]any{
			"object": "list",
			"data": []any{map[string]any{
				"id":                   "si_1",
				"object":               "subscription_item",
				"current_period_start": 1700000000,
				"current_period_end":   1702592000,
				"price":                map[string]any{"id": "price_pro", "object": "price"},
			}},
		},
	})

	event, err := g.ParseEvent(payload, header)
	require.NoError(t, err)
	require.NotNil(t, event.Subscription)
	assert.Equal(t, "sub_1", event.Subscription.ID)
	assert.Equal(t, "cus_1", event.Subscription.CustomerID)
	assert.Equal(t, "past_due", event.Subscription.Status)
	assert.Equal(t, "si_1", event.Subscription.ItemID)
	assert.Equal(t, "price_pro", event.Subscription.PriceID)
	assert.Equal(t, int64(1700000000), event.Subscription.PeriodStart)
	assert.Equal(t, int64(1702592000), event.Subscription.PeriodEnd)
}

func TestParseEventUnknownType(t *testing.T) {
	g := newTestGateway(t, nil)
	payload, header := signedEvent(t, "customer.created", map[string]any{"id": "cus_1", "object": "customer"})

	event, err := g.ParseEvent(payload, header)
	require.NoError(t, err)
	assert.Equal(t, BillingEventType("customer.created"), event.Type)
	assert.Nil(t, event.Checkout)
	assert.Nil(t, event.Subscription)
}

func TestParseEventRejectsBadSignature(t *testing.T) {
	g := newTestGateway(t, nil)
	payload, _ := signedEvent(t, "invoice.paid", map[string]any{"id": "in_1", "object": "invoice"})

	_, err := g.ParseEvent(payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, utils.ErrWebhookSignature)

	_, err = g.ParseEvent(payload, "")
	assert.ErrorIs(t, err, utils.ErrWebhookSignature)
}

func TestRetrieveSubscription(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/subscriptions/sub_9", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "sub_9", "object": "subscription", "status": "active", "customer": "cus_9",
			"items": {"object": "list", "data": [{"id": "si_9", "object": "subscription_item",
				"current_period_start": 100, "current_period_end": 200,
				"price": {"id": "price_basic", "object": "price"}}]}
		}`)
	})
	g := newTestGateway(t, mux)

	sub, err := g.RetrieveSubscription(context.Background(), "sub_9")
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, "cus_9", sub.CustomerID)
	assert.Equal(t, "price_basic", sub.PriceID)
	assert.Equal(t, int64(200), sub.PeriodEnd)
}

func TestGatewayWrapsProviderErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/customers/cus_missing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": {"type": "invalid_request_error", "message": "No such customer"}}`)
	})
	g := newTestGateway(t, mux)

	_, err := g.RetrieveCustomer(context.Background(), "cus_missing")
	assert.ErrorIs(t, err, utils.ErrBillingProvider)
}

func TestListPrices(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/prices", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gbp", r.URL.Query().Get("currency"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object": "list", "has_more": false, "url": "/v1/prices", "data": [
			{"id": "price_m", "object": "price", "currency": "gbp", "unit_amount": 2999, "unit_amount_decimal": "2999",
			 "recurring": {"interval": "month"}, "product": {"id": "prod_1", "object": "product", "name": "Pro"}},
			{"id": "price_once", "object": "price", "currency": "gbp", "unit_amount": 500,
			 "product": {"id": "prod_2", "object": "product", "name": "Setup"}}
		]}`)
	})
	g := newTestGateway(t, mux)

	prices, err := g.ListPrices(context.Background(), "gbp")
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "price_m", prices[0].ID)
	assert.Equal(t, "Pro", prices[0].ProductName)
	assert.Equal(t, "month", prices[0].Interval)
	assert.True(t, decimal.NewFromInt(2999).Equal(prices[0].UnitAmount))
}

func TestChangeSubscriptionPrice(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/subscriptions/sub_9", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		price := "price_basic"
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "si_9", r.PostForm.Get("items[0][id]"))
			assert.Equal(t, "create_prorations", r.PostForm.Get("proration_behavior"))
			assert.Equal(t, "false", r.PostForm.Get("cancel_at_period_end"))
			price = r.PostForm.Get("items[0][price]")
		}
		fmt.Fprintf(w, `{
			"id": "sub_9", "object": "subscription", "status": "active",
			"items": {"object": "list", "data": [{"id": "si_9", "object": "subscription_item",
				"price": {"id": %q, "object": "price"}}]}
		}`, price)
	})
	g := newTestGateway(t, mux)

	sub, err := g.ChangeSubscriptionPrice(context.Background(), "sub_9", "price_pro")
	require.NoError(t, err)
	assert.Equal(t, "price_pro", sub.PriceID)
}
