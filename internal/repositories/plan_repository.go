package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"shiftwise/internal/models/db_models"
)

type ChangeDirection string

const (
	Upgrade   ChangeDirection = "upgrade"
	Downgrade ChangeDirection = "downgrade"
)

type IPlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Plan, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*db_models.Plan, error)
	FindByPriceID(ctx context.Context, priceID string) (*db_models.Plan, error)
	FindByNameAndCycle(ctx context.Context, name string, cycle db_models.BillingCycle) (*db_models.Plan, error)
	ListActive(ctx context.Context) ([]db_models.Plan, error)
	ListAll(ctx context.Context) ([]db_models.Plan, error)
	ChangeCandidates(ctx context.Context, priceMinor int64, direction ChangeDirection) ([]db_models.Plan, error)
	Save(ctx context.Context, plan *db_models.Plan) error
}

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) IPlanRepository {
	return &PlanRepository{db: db}
}

func (p PlanRepository) first(ctx context.Context, query string, args ...interface{}) (*db_models.Plan, error) {
	var plan db_models.Plan
	err := p.db.WithContext(ctx).Where(query, args...).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (p PlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Plan, error) {
	return p.first(ctx, "id = ?", id)
}

func (p PlanRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*db_models.Plan, error) {
	return p.first(ctx, "id = ? AND is_active = ?", id, true)
}

func (p PlanRepository) FindByPriceID(ctx context.Context, priceID string) (*db_models.Plan, error) {
	return p.first(ctx, "stripe_price_id = ?", priceID)
}

func (p PlanRepository) FindByNameAndCycle(ctx context.Context, name string, cycle db_models.BillingCycle) (*db_models.Plan, error) {
	return p.first(ctx, "name = ? AND billing_cycle = ?", name, cycle)
}

func (p PlanRepository) ListActive(ctx context.Context) ([]db_models.Plan, error) {
	var plans []db_models.Plan
	err := p.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price_minor ASC").
		Order("name ASC").
		Find(&plans).Error
	return plans, err
}

func (p PlanRepository) ListAll(ctx context.Context) ([]db_models.Plan, error) {
	var plans []db_models.Plan
	err := p.db.WithContext(ctx).Order("name ASC").Order("billing_cycle ASC").Find(&plans).Error
	return plans, err
}

// ChangeCandidates lists active plans priced strictly above (upgrade,
// cheapest first) or strictly below (downgrade, dearest first) priceMinor.
func (p PlanRepository) ChangeCandidates(ctx context.Context, priceMinor int64, direction ChangeDirection) ([]db_models.Plan, error) {
	q := p.db.WithContext(ctx).Where("is_active = ?", true)
	switch direction {
	case Upgrade:
		q = q.Where("price_minor > ?", priceMinor).Order("price_minor ASC")
	case Downgrade:
		q = q.Where("price_minor < ?", priceMinor).Order("price_minor DESC")
	default:
		return nil, errors.New("unknown change direction " + string(direction))
	}

	var plans []db_models.Plan
	err := q.Order("name ASC").Find(&plans).Error
	return plans, err
}

func (p PlanRepository) Save(ctx context.Context, plan *db_models.Plan) error {
	return p.db.WithContext(ctx).Save(plan).Error
}
