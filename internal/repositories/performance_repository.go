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

type PerformanceFilter struct {
	WorkerID *uuid.UUID
	Page     int
	PageSize int
}

type PerformanceRepository interface {
	Insert(ctx context.Context, record *db_models.StaffPerformance) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.StaffPerformance, error)
	Save(ctx context.Context, record *db_models.StaffPerformance) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, id access.Identity, filter PerformanceFilter) ([]db_models.StaffPerformance, int64, error)
}

type performanceRepository struct {
	db *gorm.DB
}

func NewPerformanceRepository(db *gorm.DB) PerformanceRepository {
	return &performanceRepository{db: db}
}

func (p *performanceRepository) Insert(ctx context.Context, record *db_models.StaffPerformance) error {
	return p.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error
}

func (p *performanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.StaffPerformance, error) {
	var record db_models.StaffPerformance
	err := p.db.WithContext(ctx).
		Preload("Worker").
		Preload("Shift").
		First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (p *performanceRepository) Save(ctx context.Context, record *db_models.StaffPerformance) error {
	return p.db.WithContext(ctx).Omit(clause.Associations).Save(record).Error
}

func (p *performanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return p.db.WithContext(ctx).Delete(&db_models.StaffPerformance{}, "id = ?", id).Error
}

// List returns the records visible to id, newest first.
func (p *performanceRepository) List(ctx context.Context, id access.Identity, filter PerformanceFilter) ([]db_models.StaffPerformance, int64, error) {
	q := p.db.WithContext(ctx).Model(&db_models.StaffPerformance{}).Scopes(AgencyScope(id, "agency_id"))
	if filter.WorkerID != nil {
		q = q.Where("worker_id = ?", *filter.WorkerID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []db_models.StaffPerformance
	err := q.Preload("Worker").
		Preload("Shift").
		Scopes(Paginate(filter.Page, filter.PageSize)).
		Order("created_at DESC").
		Find(&records).Error
	return records, total, err
}
