package services

import (
	"context"

	"github.com/shopspring/decimal"
)

type BillingEventType string

const (
	EventCheckoutCompleted   BillingEventType = "checkout.session.completed"
	EventInvoicePaid         BillingEventType = "invoice.paid"
	EventSubscriptionUpdated BillingEventType = "customer.subscription.updated"
	EventSubscriptionDeleted BillingEventType = "customer.subscription.deleted"
)

type BillingCustomer struct {
	ID      string
	Email   string
	Name    string
	Deleted bool
}

// ProviderSubscription is the provider's view of a subscription, reduced to
// the first subscription item.
type ProviderSubscription struct {
	ID                string
	CustomerID        string
	Status            string
	ItemID            string
	PriceID           string
	PeriodStart       int64
	PeriodEnd         int64
	CancelAtPeriodEnd bool
}

type CheckoutRequest struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type CompletedCheckout struct {
	SessionID      string
	CustomerID     string
	SubscriptionID string
}

type ProviderPrice struct {
	ID                 string
	ProductID          string
	ProductName        string
	ProductDescription string
	Currency           string
	Interval           string
	// UnitAmount is in minor units.
	UnitAmount decimal.Decimal
}

// BillingEvent is a verified webhook event. Exactly one of Checkout and
// Subscription is set for the handled types; both are nil otherwise.
type BillingEvent struct {
	ID           string
	Type         BillingEventType
	Checkout     *CompletedCheckout
	Subscription *ProviderSubscription
}

// BillingGateway is a stateless call-through to the payment provider.
// Every provider failure comes back wrapped in utils.ErrBillingProvider.
type BillingGateway interface {
	RetrieveCustomer(ctx context.Context, customerID string) (*BillingCustomer, error)
	FindOrCreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*BillingCustomer, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	RetrieveSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)
	ListSubscriptions(ctx context.Context, customerID, status string, limit int64) ([]ProviderSubscription, error)
	ChangeSubscriptionPrice(ctx context.Context, subscriptionID, priceID string) (*ProviderSubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	ListPrices(ctx context.Context, currency string) ([]ProviderPrice, error)
	ParseEvent(payload []byte, signature string) (*BillingEvent, error)
}
