package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"shiftwise/internal/models/db_models"
)

type ProfileRepository interface {
	WithTx(tx *gorm.DB) ProfileRepository
	FindByAccountID(ctx context.Context, accountID uuid.UUID) (*db_models.Profile, error)
	Save(ctx context.Context, profile *db_models.Profile) error
	ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]db_models.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (p *profileRepository) WithTx(tx *gorm.DB) ProfileRepository {
	return &profileRepository{db: tx}
}

func (p *profileRepository) FindByAccountID(ctx context.Context, accountID uuid.UUID) (*db_models.Profile, error) {
	var profile db_models.Profile
	err := p.db.WithContext(ctx).Preload("Agency").First(&profile, "account_id = ?", accountID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (p *profileRepository) Save(ctx context.Context, profile *db_models.Profile) error {
	return p.db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error
}

func (p *profileRepository) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]db_models.Profile, error) {
	var profiles []db_models.Profile
	err := p.db.WithContext(ctx).Where("agency_id = ?", agencyID).Find(&profiles).Error
	return profiles, err
}
