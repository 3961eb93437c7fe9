package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
	"shiftwise/internal/config"
	"shiftwise/internal/metrics"
	"shiftwise/pkg/utils"
)

type stripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

// NewStripeGateway builds a gateway bound to cfg's credentials. backends
// may be nil for the SDK defaults.
func NewStripeGateway(cfg config.Stripe, backends *stripe.Backends, logger *slog.Logger, m *metrics.Metrics) BillingGateway {
	return &stripeGateway{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		logger:        logger.With(slog.String("component", "stripe_gateway")),
		metrics:       m,
	}
}

func (g *stripeGateway) done(ctx context.Context, op string, start time.Time, err error, attrs ...any) error {
	g.metrics.ObserveGatewayCall(op, start, err)
	if err == nil {
		return nil
	}
	g.logger.ErrorContext(ctx, "stripe call failed",
		append([]any{slog.String("operation", op), slog.Any("error", err)}, attrs...)...)
	return fmt.Errorf("%w: %s: %v", utils.ErrBillingProvider, op, err)
}

func (g *stripeGateway) RetrieveCustomer(ctx context.Context, customerID string) (*BillingCustomer, error) {
	start := time.Now()
	params := &stripe.CustomerParams{}
	params.Context = ctx
	c, err := g.api.Customers.Get(customerID, params)
	if err := g.done(ctx, "customer.retrieve", start, err, slog.String("customer_id", customerID)); err != nil {
		return nil, err
	}
	return toBillingCustomer(c), nil
}

// FindOrCreateCustomer reuses the first customer registered under email.
func (g *stripeGateway) FindOrCreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*BillingCustomer, error) {
	start := time.Now()
	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(1)
	iter := g.api.Customers.List(listParams)
	for iter.Next() {
		c := iter.Customer()
		if !c.Deleted {
			g.metrics.ObserveGatewayCall("customer.list", start, nil)
			return toBillingCustomer(c), nil
		}
	}
	if err := g.done(ctx, "customer.list", start, iter.Err(), slog.String("email", email)); err != nil {
		return nil, err
	}

	start = time.Now()
	params := &stripe.CustomerParams{
		Email:    stripe.String(email),
		Name:     stripe.String(name),
		Metadata: metadata,
	}
	params.Context = ctx
	c, err := g.api.Customers.New(params)
	if err := g.done(ctx, "customer.create", start, err, slog.String("email", email)); err != nil {
		return nil, err
	}
	return toBillingCustomer(c), nil
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	start := time.Now()
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(req.CustomerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata:   req.Metadata,
	}
	params.Context = ctx
	s, err := g.api.CheckoutSessions.New(params)
	if err := g.done(ctx, "checkout_session.create", start, err,
		slog.String("customer_id", req.CustomerID), slog.String("price_id", req.PriceID)); err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *stripeGateway) RetrieveSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	start := time.Now()
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	s, err := g.api.Subscriptions.Get(subscriptionID, params)
	if err := g.done(ctx, "subscription.retrieve", start, err, slog.String("subscription_id", subscriptionID)); err != nil {
		return nil, err
	}
	return toProviderSubscription(s), nil
}

func (g *stripeGateway) ListSubscriptions(ctx context.Context, customerID, status string, limit int64) ([]ProviderSubscription, error) {
	start := time.Now()
	params := &stripe.SubscriptionListParams{Customer: stripe.String(customerID)}
	if status != "" {
		params.Status = stripe.String(status)
	}
	params.Context = ctx
	if limit > 0 {
		params.Limit = stripe.Int64(limit)
	}

	var out []ProviderSubscription
	iter := g.api.Subscriptions.List(params)
	for iter.Next() {
		out = append(out, *toProviderSubscription(iter.Subscription()))
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	if err := g.done(ctx, "subscription.list", start, iter.Err(), slog.String("customer_id", customerID)); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeSubscriptionPrice swaps the first item to priceID with prorations
// and clears any pending cancellation.
func (g *stripeGateway) ChangeSubscriptionPrice(ctx context.Context, subscriptionID, priceID string) (*ProviderSubscription, error) {
	current, err := g.RetrieveSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if current.ItemID == "" {
		return nil, fmt.Errorf("%w: subscription %s has no items", utils.ErrBillingProvider, subscriptionID)
	}

	start := time.Now()
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(false),
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(current.ItemID),
				Price: stripe.String(priceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	}
	params.Context = ctx
	s, err := g.api.Subscriptions.Update(subscriptionID, params)
	if err := g.done(ctx, "subscription.update", start, err,
		slog.String("subscription_id", subscriptionID), slog.String("price_id", priceID)); err != nil {
		return nil, err
	}
	return toProviderSubscription(s), nil
}

func (g *stripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	start := time.Now()
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	_, err := g.api.Subscriptions.Cancel(subscriptionID, params)
	return g.done(ctx, "subscription.cancel", start, err, slog.String("subscription_id", subscriptionID))
}

func (g *stripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	start := time.Now()
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	s, err := g.api.BillingPortalSessions.New(params)
	if err := g.done(ctx, "billing_portal.create", start, err, slog.String("customer_id", customerID)); err != nil {
		return "", err
	}
	return s.URL, nil
}

func (g *stripeGateway) ListPrices(ctx context.Context, currency string) ([]ProviderPrice, error) {
	start := time.Now()
	params := &stripe.PriceListParams{
		Active:   stripe.Bool(true),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	params.AddExpand("data.product")

	var out []ProviderPrice
	iter := g.api.Prices.List(params)
	for iter.Next() {
		p := iter.Price()
		if p.Recurring == nil || p.Product == nil {
			continue
		}
		price := ProviderPrice{
			ID:         p.ID,
			ProductID:  p.Product.ID,
			Currency:   string(p.Currency),
			Interval:   string(p.Recurring.Interval),
			UnitAmount: decimal.NewFromFloat(p.UnitAmountDecimal),
		}
		if p.UnitAmountDecimal == 0 {
			price.UnitAmount = decimal.NewFromInt(p.UnitAmount)
		}
		price.ProductName = p.Product.Name
		price.ProductDescription = p.Product.Description
		out = append(out, price)
	}
	if err := g.done(ctx, "price.list", start, iter.Err(), slog.String("currency", currency)); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseEvent verifies the signature and decodes the handled event types.
// Unknown types come back with only ID and Type set.
func (g *stripeGateway) ParseEvent(payload []byte, signature string) (*BillingEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrWebhookSignature, err)
	}

	out := &BillingEvent{ID: event.ID, Type: BillingEventType(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("%w: checkout session: %v", utils.ErrWebhookPayload, err)
		}
		completed := &CompletedCheckout{SessionID: session.ID}
		if session.Customer != nil {
			completed.CustomerID = session.Customer.ID
		}
		if session.Subscription != nil {
			completed.SubscriptionID = session.Subscription.ID
		}
		out.Checkout = completed

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: subscription: %v", utils.ErrWebhookPayload, err)
		}
		out.Subscription = toProviderSubscription(&sub)
	}

	return out, nil
}

func toBillingCustomer(c *stripe.Customer) *BillingCustomer {
	return &BillingCustomer{ID: c.ID, Email: c.Email, Name: c.Name, Deleted: c.Deleted}
}

func toProviderSubscription(s *stripe.Subscription) *ProviderSubscription {
	out := &ProviderSubscription{
		ID:                s.ID,
		Status:            string(s.Status),
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Items != nil && len(s.Items.Data) > 0 {
		item := s.Items.Data[0]
		out.ItemID = item.ID
		out.PeriodStart = item.CurrentPeriodStart
		out.PeriodEnd = item.CurrentPeriodEnd
		if item.Price != nil {
			out.PriceID = item.Price.ID
		}
	}
	return out
}
