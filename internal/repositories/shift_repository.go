package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
)

type ShiftFilter struct {
	Search   string
	Status   db_models.ShiftStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

type ShiftRepository interface {
	WithTx(tx *gorm.DB) ShiftRepository
	Insert(ctx context.Context, shift *db_models.Shift) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Shift, error)
	Save(ctx context.Context, shift *db_models.Shift) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, id access.Identity, filter ShiftFilter) ([]db_models.Shift, int64, error)
	CountCreatedSince(ctx context.Context, agencyID uuid.UUID, since int64) (int64, error)
}

type shiftRepository struct {
	db *gorm.DB
}

func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

func (s *shiftRepository) WithTx(tx *gorm.DB) ShiftRepository {
	return &shiftRepository{db: tx}
}

func (s *shiftRepository) Insert(ctx context.Context, shift *db_models.Shift) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(shift).Error
}

func (s *shiftRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Shift, error) {
	var shift db_models.Shift
	err := s.db.WithContext(ctx).
		Preload("Agency").
		Preload("Assignments").
		First(&shift, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shift, nil
}

func (s *shiftRepository) Save(ctx context.Context, shift *db_models.Shift) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(shift).Error
}

func (s *shiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shift_id = ?", id).Delete(&db_models.ShiftAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db_models.Shift{}, "id = ?", id).Error
	})
}

func (s *shiftRepository) List(ctx context.Context, id access.Identity, filter ShiftFilter) ([]db_models.Shift, int64, error) {
	q := s.db.WithContext(ctx).Model(&db_models.Shift{}).Scopes(AgencyScope(id, "agency_id"))
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(shift_code) LIKE ? OR LOWER(city) LIKE ? OR LOWER(postcode) LIKE ?",
			pattern, pattern, pattern, pattern)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		q = q.Where("shift_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("shift_date <= ?", *filter.DateTo)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shifts []db_models.Shift
	err := q.Preload("Assignments").
		Scopes(Paginate(filter.Page, filter.PageSize)).
		Order("shift_date ASC").
		Order("start_time ASC").
		Find(&shifts).Error
	return shifts, total, err
}

func (s *shiftRepository) CountCreatedSince(ctx context.Context, agencyID uuid.UUID, since int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&db_models.Shift{}).
		Where("agency_id = ? AND created_at >= ?", agencyID, since).
		Count(&n).Error
	return n, err
}
