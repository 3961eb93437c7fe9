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

type AgencyRepository interface {
	WithTx(tx *gorm.DB) AgencyRepository
	Insert(ctx context.Context, agency *db_models.Agency) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Agency, error)
	FindByName(ctx context.Context, name string) (*db_models.Agency, error)
	FindByCustomerID(ctx context.Context, customerID string) (*db_models.Agency, error)
	SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	List(ctx context.Context, id access.Identity, search string) ([]db_models.Agency, error)
}

type agencyRepository struct {
	db *gorm.DB
}

func NewAgencyRepository(db *gorm.DB) AgencyRepository {
	return &agencyRepository{db: db}
}

func (a *agencyRepository) WithTx(tx *gorm.DB) AgencyRepository {
	return &agencyRepository{db: tx}
}

func (a *agencyRepository) Insert(ctx context.Context, agency *db_models.Agency) error {
	return a.db.WithContext(ctx).Omit(clause.Associations).Create(agency).Error
}

func (a *agencyRepository) first(ctx context.Context, query string, args ...interface{}) (*db_models.Agency, error) {
	var agency db_models.Agency
	err := a.db.WithContext(ctx).Where(query, args...).First(&agency).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agency, nil
}

func (a *agencyRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Agency, error) {
	return a.first(ctx, "id = ?", id)
}

func (a *agencyRepository) FindByName(ctx context.Context, name string) (*db_models.Agency, error) {
	return a.first(ctx, "LOWER(name) = LOWER(?)", name)
}

func (a *agencyRepository) FindByCustomerID(ctx context.Context, customerID string) (*db_models.Agency, error) {
	return a.first(ctx, "stripe_customer_id = ?", customerID)
}

func (a *agencyRepository) SetCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	return a.db.WithContext(ctx).
		Model(&db_models.Agency{}).
		Where("id = ?", id).
		Update("stripe_customer_id", customerID).Error
}

func (a *agencyRepository) List(ctx context.Context, id access.Identity, search string) ([]db_models.Agency, error) {
	q := a.db.WithContext(ctx).Scopes(AgencyScope(id, "id"))
	if search != "" {
		pattern := likePattern(search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(agency_code) LIKE ?", pattern, pattern, pattern)
	}
	var agencies []db_models.Agency
	err := q.Order("name ASC").Find(&agencies).Error
	return agencies, err
}
