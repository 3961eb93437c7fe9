package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"shiftwise/internal/infra"
	"shiftwise/internal/models/db_models"
)

// MockBillingGateway is a testify mock of BillingGateway.
type MockBillingGateway struct {
	mock.Mock
}

func (m *MockBillingGateway) RetrieveCustomer(ctx context.Context, customerID string) (*BillingCustomer, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BillingCustomer), args.Error(1)
}

func (m *MockBillingGateway) FindOrCreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*BillingCustomer, error) {
	args := m.Called(ctx, email, name, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BillingCustomer), args.Error(1)
}

func (m *MockBillingGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

func (m *MockBillingGateway) RetrieveSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProviderSubscription), args.Error(1)
}

func (m *MockBillingGateway) ListSubscriptions(ctx context.Context, customerID, status string, limit int64) ([]ProviderSubscription, error) {
	args := m.Called(ctx, customerID, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ProviderSubscription), args.Error(1)
}

func (m *MockBillingGateway) ChangeSubscriptionPrice(ctx context.Context, subscriptionID, priceID string) (*ProviderSubscription, error) {
	args := m.Called(ctx, subscriptionID, priceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProviderSubscription), args.Error(1)
}

func (m *MockBillingGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func (m *MockBillingGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

func (m *MockBillingGateway) ListPrices(ctx context.Context, currency string) ([]ProviderPrice, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ProviderPrice), args.Error(1)
}

func (m *MockBillingGateway) ParseEvent(payload []byte, signature string) (*BillingEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BillingEvent), args.Error(1)
}

type sentNotification struct {
	To      string
	Subject string
}

// recordingNotifier keeps every notification instead of mailing it.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (r *recordingNotifier) NotifyAgencyOwner(_ context.Context, agency *db_models.Agency, subject, _, _, _ string) {
	if agency == nil {
		return
	}
	r.record(agency.Email, subject)
}

func (r *recordingNotifier) NotifyAccount(_ context.Context, account *db_models.Account, subject, _, _, _ string) {
	if account == nil {
		return
	}
	r.record(account.Email, subject)
}

func (r *recordingNotifier) record(to, subject string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentNotification{To: to, Subject: subject})
}

func (r *recordingNotifier) subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sent))
	for _, n := range r.sent {
		out = append(out, n.Subject)
	}
	return out
}

// recordingMail is an IMailService that keeps what would have been sent.
type recordingMail struct {
	mu     sync.Mutex
	resets map[string]string
	err    error
}

func (r *recordingMail) SendMailToNotifyUser(context.Context, string, string, string, string, string) error {
	return r.err
}

func (r *recordingMail) SendMailToResetPassword(_ context.Context, to, token string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resets == nil {
		r.resets = map[string]string{}
	}
	r.resets[to] = token
	return nil
}

// staticGeocoder answers every address with the same result.
type staticGeocoder struct {
	result *GeocodeResult
	err    error
	calls  int
}

func (s *staticGeocoder) Geocode(context.Context, string) (*GeocodeResult, error) {
	s.calls++
	return s.result, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, infra.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
