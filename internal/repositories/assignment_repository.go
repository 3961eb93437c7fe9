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

type AssignmentRepository interface {
	WithTx(tx *gorm.DB) AssignmentRepository
	Insert(ctx context.Context, assignment *db_models.ShiftAssignment) error
	Find(ctx context.Context, shiftID, workerID uuid.UUID) (*db_models.ShiftAssignment, error)
	Save(ctx context.Context, assignment *db_models.ShiftAssignment) error
	Delete(ctx context.Context, assignment *db_models.ShiftAssignment) error
	CountForShift(ctx context.Context, shiftID uuid.UUID) (int64, error)
	List(ctx context.Context, id access.Identity) ([]db_models.ShiftAssignment, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (a *assignmentRepository) WithTx(tx *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: tx}
}

func (a *assignmentRepository) Insert(ctx context.Context, assignment *db_models.ShiftAssignment) error {
	return a.db.WithContext(ctx).Omit(clause.Associations).Create(assignment).Error
}

func (a *assignmentRepository) Find(ctx context.Context, shiftID, workerID uuid.UUID) (*db_models.ShiftAssignment, error) {
	var assignment db_models.ShiftAssignment
	err := a.db.WithContext(ctx).
		Where("shift_id = ? AND worker_id = ?", shiftID, workerID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

func (a *assignmentRepository) Save(ctx context.Context, assignment *db_models.ShiftAssignment) error {
	return a.db.WithContext(ctx).Omit(clause.Associations).Save(assignment).Error
}

// Delete removes the row for good so the worker can be assigned again.
func (a *assignmentRepository) Delete(ctx context.Context, assignment *db_models.ShiftAssignment) error {
	return a.db.WithContext(ctx).Unscoped().Delete(assignment).Error
}

func (a *assignmentRepository) CountForShift(ctx context.Context, shiftID uuid.UUID) (int64, error) {
	var n int64
	err := a.db.WithContext(ctx).
		Model(&db_models.ShiftAssignment{}).
		Where("shift_id = ?", shiftID).
		Count(&n).Error
	return n, err
}

// List returns every assignment for superusers, the agency's assignments
// for owners and managers, and a worker's own assignments otherwise.
func (a *assignmentRepository) List(ctx context.Context, id access.Identity) ([]db_models.ShiftAssignment, error) {
	q := a.db.WithContext(ctx).
		Preload("Shift").
		Preload("Worker").
		Joins("JOIN shifts ON shifts.id = shift_assignments.shift_id AND shifts.deleted_at IS NULL")

	switch {
	case id.Superuser:
	case id.IsAgencyManager() && id.AgencyID != nil:
		q = q.Where("shifts.agency_id = ?", *id.AgencyID)
	case id.Authenticated:
		q = q.Where("shift_assignments.worker_id = ?", id.AccountID)
	default:
		q = q.Where("1 = 0")
	}

	var assignments []db_models.ShiftAssignment
	err := q.Order("shift_assignments.assigned_at DESC").Find(&assignments).Error
	return assignments, err
}
