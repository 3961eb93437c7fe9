package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
)

type SubscriptionRepository interface {
	WithTx(tx *gorm.DB) SubscriptionRepository
	FindByAgencyID(ctx context.Context, agencyID uuid.UUID) (*db_models.Subscription, error)
	FindByProviderID(ctx context.Context, providerID string) (*db_models.Subscription, error)
	Create(ctx context.Context, sub *db_models.Subscription) error
	Save(ctx context.Context, sub *db_models.Subscription) error
	List(ctx context.Context, id access.Identity, search string) ([]db_models.Subscription, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (s *subscriptionRepository) WithTx(tx *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: tx}
}

func (s *subscriptionRepository) first(ctx context.Context, query string, args ...interface{}) (*db_models.Subscription, error) {
	var sub db_models.Subscription
	err := s.db.WithContext(ctx).
		Preload("Plan").
		Preload("Agency").
		Where(query, args...).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *subscriptionRepository) FindByAgencyID(ctx context.Context, agencyID uuid.UUID) (*db_models.Subscription, error) {
	return s.first(ctx, "agency_id = ?", agencyID)
}

func (s *subscriptionRepository) FindByProviderID(ctx context.Context, providerID string) (*db_models.Subscription, error) {
	return s.first(ctx, "stripe_subscription_id = ?", providerID)
}

func (s *subscriptionRepository) Create(ctx context.Context, sub *db_models.Subscription) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(sub).Error
}

func (s *subscriptionRepository) Save(ctx context.Context, sub *db_models.Subscription) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(sub).Error
}

func (s *subscriptionRepository) List(ctx context.Context, id access.Identity, search string) ([]db_models.Subscription, error) {
	q := s.db.WithContext(ctx).
		Preload("Plan").
		Preload("Agency").
		Scopes(AgencyScope(id, "subscriptions.agency_id"))
	if search != "" {
		pattern := likePattern(search)
		q = q.Joins("JOIN agencies ON agencies.id = subscriptions.agency_id").
			Where("LOWER(agencies.name) LIKE ? OR LOWER(subscriptions.stripe_subscription_id) LIKE ?", pattern, pattern)
	}
	var subs []db_models.Subscription
	err := q.Order("subscriptions.created_at DESC").Find(&subs).Error
	return subs, err
}
