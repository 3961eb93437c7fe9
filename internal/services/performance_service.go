package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
	"shiftwise/internal/models/request_models"
	"shiftwise/internal/models/response_models"
	"shiftwise/internal/repositories"
	"shiftwise/pkg/utils"
)

type PerformanceServiceInterface interface {
	List(ctx context.Context, id access.Identity, query request_models.PerformanceListQuery) (*response_models.PerformancePage, error)
	Get(ctx context.Context, id access.Identity, recordID uuid.UUID) (*response_models.PerformanceResponse, error)
	Create(ctx context.Context, id access.Identity, req request_models.CreatePerformanceRequest) (*response_models.PerformanceResponse, error)
	Update(ctx context.Context, id access.Identity, recordID uuid.UUID, req request_models.PerformanceRequest) (*response_models.PerformanceResponse, error)
	Delete(ctx context.Context, id access.Identity, recordID uuid.UUID) error
}

type PerformanceService struct {
	records  repositories.PerformanceRepository
	accounts repositories.AccountRepository
	shifts   repositories.ShiftRepository
	logger   *slog.Logger
}

func NewPerformanceService(
	records repositories.PerformanceRepository,
	accounts repositories.AccountRepository,
	shifts repositories.ShiftRepository,
	logger *slog.Logger,
) PerformanceServiceInterface {
	return &PerformanceService{
		records:  records,
		accounts: accounts,
		shifts:   shifts,
		logger:   logger.With(slog.String("component", "performance")),
	}
}

func (p *PerformanceService) List(ctx context.Context, id access.Identity, query request_models.PerformanceListQuery) (*response_models.PerformancePage, error) {
	if !id.IsAgencyManager() {
		return nil, utils.ErrForbidden
	}
	filter := repositories.PerformanceFilter{Page: query.Page, PageSize: query.PageSize}
	if query.WorkerID != "" {
		workerID, err := uuid.Parse(query.WorkerID)
		if err != nil {
			return nil, fmt.Errorf("%w: worker_id", utils.ErrValidation)
		}
		filter.WorkerID = &workerID
	}

	records, total, err := p.records.List(ctx, id, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	items := make([]response_models.PerformanceResponse, 0, len(records))
	for _, r := range records {
		items = append(items, response_models.NewPerformanceResponse(r))
	}

	page := &response_models.PerformancePage{Items: items, Total: total, Page: query.Page, PageSize: query.PageSize}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 || page.PageSize > 100 {
		page.PageSize = 20
	}
	return page, nil
}

func (p *PerformanceService) Get(ctx context.Context, id access.Identity, recordID uuid.UUID) (*response_models.PerformanceResponse, error) {
	record, err := p.managedRecord(ctx, id, recordID)
	if err != nil {
		return nil, err
	}
	resp := response_models.NewPerformanceResponse(*record)
	return &resp, nil
}

// managedRecord loads a record of the caller's agency. Records of other
// agencies are reported as missing.
func (p *PerformanceService) managedRecord(ctx context.Context, id access.Identity, recordID uuid.UUID) (*db_models.StaffPerformance, error) {
	if !id.IsAgencyManager() {
		return nil, utils.ErrForbidden
	}
	record, err := p.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if record == nil || (!id.Superuser && !id.BelongsTo(record.AgencyID)) {
		return nil, utils.ErrPerformanceNotFound
	}
	return record, nil
}

// Create records a review of a worker in the worker's own agency. The
// optional shift must belong to that agency too.
func (p *PerformanceService) Create(ctx context.Context, id access.Identity, req request_models.CreatePerformanceRequest) (*response_models.PerformanceResponse, error) {
	if !id.IsAgencyManager() {
		return nil, utils.ErrForbidden
	}
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("%w: worker_id", utils.ErrValidation)
	}
	worker, err := p.accounts.FindByID(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if worker == nil || !worker.IsActive {
		return nil, utils.ErrAccountNotFound
	}
	if worker.Profile == nil || worker.Profile.AgencyID == nil {
		return nil, utils.ErrAgencyMismatch
	}
	agencyID := *worker.Profile.AgencyID
	if !id.Superuser && !id.BelongsTo(agencyID) {
		return nil, utils.ErrAgencyMismatch
	}

	record := &db_models.StaffPerformance{AgencyID: agencyID, WorkerID: worker.ID}
	if req.ShiftID != "" {
		shiftID, err := uuid.Parse(req.ShiftID)
		if err != nil {
			return nil, fmt.Errorf("%w: shift_id", utils.ErrValidation)
		}
		shift, err := p.shifts.FindByID(ctx, shiftID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if shift == nil || shift.AgencyID != agencyID {
			return nil, utils.ErrShiftNotFound
		}
		record.ShiftID = &shift.ID
		record.Shift = shift
	}
	if err := applyPerformance(record, req.PerformanceRequest); err != nil {
		return nil, err
	}

	if err := p.records.Insert(ctx, record); err != nil {
		p.logger.ErrorContext(ctx, "insert performance record", slog.String("worker_id", worker.ID.String()), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	p.logger.InfoContext(ctx, "performance recorded",
		slog.String("record_id", record.ID.String()),
		slog.String("worker_id", worker.ID.String()),
		slog.String("by", id.AccountID.String()))

	record.Worker = worker
	resp := response_models.NewPerformanceResponse(*record)
	return &resp, nil
}

func (p *PerformanceService) Update(ctx context.Context, id access.Identity, recordID uuid.UUID, req request_models.PerformanceRequest) (*response_models.PerformanceResponse, error) {
	record, err := p.managedRecord(ctx, id, recordID)
	if err != nil {
		return nil, err
	}
	if err := applyPerformance(record, req); err != nil {
		return nil, err
	}
	if err := p.records.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	resp := response_models.NewPerformanceResponse(*record)
	return &resp, nil
}

func (p *PerformanceService) Delete(ctx context.Context, id access.Identity, recordID uuid.UUID) error {
	record, err := p.managedRecord(ctx, id, recordID)
	if err != nil {
		return err
	}
	if err := p.records.Delete(ctx, record.ID); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	p.logger.InfoContext(ctx, "performance record deleted", slog.String("record_id", record.ID.String()))
	return nil
}

func applyPerformance(record *db_models.StaffPerformance, req request_models.PerformanceRequest) error {
	rating, err := decimal.NewFromString(strings.TrimSpace(req.PerformanceRating))
	if err != nil {
		return fmt.Errorf("%w: performance_rating %q is not a number", utils.ErrValidation, req.PerformanceRating)
	}
	status, err := db_models.ParsePerformanceStatus(req.Status)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}

	record.WellnessScore = req.WellnessScore
	record.PerformanceRating = rating.Round(2)
	record.Status = status
	record.Comments = strings.TrimSpace(req.Comments)
	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	return nil
}
