package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
	"shiftwise/internal/models/request_models"
	"shiftwise/internal/repositories"
	"shiftwise/pkg/utils"
)

func newPerformanceService(f *shiftFixture) PerformanceServiceInterface {
	return NewPerformanceService(
		repositories.NewPerformanceRepository(f.db),
		repositories.NewAccountRepository(f.db),
		repositories.NewShiftRepository(f.db),
		discardLogger())
}

func TestPerformanceRecordLifecycle(t *testing.T) {
	f := newShiftFixture(t, nil)
	svc := newPerformanceService(f)
	ctx := context.Background()

	shift, err := f.svc.Create(ctx, f.manager, shiftRequest("Reviewed", 1))
	require.NoError(t, err)
	worker := f.person(t, "pia", &f.agency.ID, access.GroupAgencyStaff, nil)

	created, err := svc.Create(ctx, f.manager, request_models.CreatePerformanceRequest{
		WorkerID: worker.AccountID.String(),
		ShiftID:  shift.ID.String(),
		PerformanceRequest: request_models.PerformanceRequest{
			WellnessScore:     85,
			PerformanceRating: "4.25",
			Status:            "Excellent",
			Comments:          "  Great handover  ",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "4.25", created.PerformanceRating)
	assert.Equal(t, "Excellent", created.Status)
	assert.Equal(t, "Great handover", created.Comments)
	assert.Equal(t, "pia", created.WorkerUsername)
	assert.Equal(t, "Reviewed", created.ShiftName)
	assert.Equal(t, f.agency.ID, created.AgencyID)

	page, err := svc.List(ctx, f.manager, request_models.PerformanceListQuery{WorkerID: worker.AccountID.String()})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 20, page.PageSize)

	updated, err := svc.Update(ctx, f.manager, created.ID, request_models.PerformanceRequest{WellnessScore: 60, PerformanceRating: "3"})
	require.NoError(t, err)
	assert.Equal(t, "3.00", updated.PerformanceRating)
	assert.Equal(t, string(db_models.PerformanceAverage), updated.Status)

	for _, bad := range []request_models.PerformanceRequest{
		{WellnessScore: 60, PerformanceRating: "6"},
		{WellnessScore: 60, PerformanceRating: "great"},
		{WellnessScore: 120, PerformanceRating: "3"},
		{WellnessScore: 60, PerformanceRating: "3", Status: "Stellar"},
	} {
		_, err := svc.Update(ctx, f.manager, created.ID, bad)
		assert.ErrorIs(t, err, utils.ErrValidation)
	}

	got, err := svc.Get(ctx, f.manager, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.WellnessScore)

	require.NoError(t, svc.Delete(ctx, f.manager, created.ID))
	_, err = svc.Get(ctx, f.manager, created.ID)
	assert.ErrorIs(t, err, utils.ErrPerformanceNotFound)
}

func TestPerformanceRecordsStayInAgency(t *testing.T) {
	f := newShiftFixture(t, nil)
	svc := newPerformanceService(f)
	ctx := context.Background()

	worker := f.person(t, "ray", &f.agency.ID, access.GroupAgencyStaff, nil)
	record, err := svc.Create(ctx, f.manager, request_models.CreatePerformanceRequest{
		WorkerID:           worker.AccountID.String(),
		PerformanceRequest: request_models.PerformanceRequest{WellnessScore: 70, PerformanceRating: "4"},
	})
	require.NoError(t, err)

	other := db_models.Agency{Name: "Rival Care", AgencyCode: "AGY-RIVAL", IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)
	outsider := f.person(t, "rex", &other.ID, access.GroupAgencyManagers, nil)

	_, err = svc.Get(ctx, outsider, record.ID)
	assert.ErrorIs(t, err, utils.ErrPerformanceNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, outsider, record.ID), utils.ErrPerformanceNotFound)

	_, err = svc.Create(ctx, outsider, request_models.CreatePerformanceRequest{
		WorkerID:           worker.AccountID.String(),
		PerformanceRequest: request_models.PerformanceRequest{PerformanceRating: "1"},
	})
	assert.ErrorIs(t, err, utils.ErrAgencyMismatch)

	page, err := svc.List(ctx, outsider, request_models.PerformanceListQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	elsewhere, err := f.svc.Create(ctx, outsider, shiftRequest("Rival shift", 1))
	require.NoError(t, err)
	_, err = svc.Create(ctx, f.manager, request_models.CreatePerformanceRequest{
		WorkerID:           worker.AccountID.String(),
		ShiftID:            elsewhere.ID.String(),
		PerformanceRequest: request_models.PerformanceRequest{PerformanceRating: "2"},
	})
	assert.ErrorIs(t, err, utils.ErrShiftNotFound)

	_, err = svc.Create(ctx, f.manager, request_models.CreatePerformanceRequest{
		WorkerID:           uuid.NewString(),
		PerformanceRequest: request_models.PerformanceRequest{PerformanceRating: "2"},
	})
	assert.ErrorIs(t, err, utils.ErrAccountNotFound)

	_, err = svc.List(ctx, worker, request_models.PerformanceListQuery{})
	assert.ErrorIs(t, err, utils.ErrForbidden)

	super := access.Identity{AccountID: uuid.New(), Authenticated: true, Superuser: true}
	page, err = svc.List(ctx, super, request_models.PerformanceListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}
