package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
	"shiftwise/internal/models/request_models"
	"shiftwise/internal/models/response_models"
	"shiftwise/internal/repositories"
	"shiftwise/pkg/utils"
)

type ShiftServiceInterface interface {
	List(ctx context.Context, id access.Identity, query request_models.ShiftListQuery) (*response_models.ShiftPage, error)
	Get(ctx context.Context, id access.Identity, shiftID uuid.UUID) (*response_models.ShiftResponse, error)
	Create(ctx context.Context, id access.Identity, req request_models.ShiftRequest) (*response_models.ShiftResponse, error)
	Update(ctx context.Context, id access.Identity, shiftID uuid.UUID, req request_models.ShiftRequest) (*response_models.ShiftResponse, error)
	Delete(ctx context.Context, id access.Identity, shiftID uuid.UUID) error

	Book(ctx context.Context, id access.Identity, shiftID uuid.UUID) error
	Unbook(ctx context.Context, id access.Identity, shiftID uuid.UUID) error
	Assign(ctx context.Context, id access.Identity, shiftID uuid.UUID, req request_models.AssignWorkerRequest) error
	Unassign(ctx context.Context, id access.Identity, shiftID, workerID uuid.UUID) error
	ListAssignments(ctx context.Context, id access.Identity) ([]response_models.AssignmentResponse, error)

	Complete(ctx context.Context, id access.Identity, shiftID uuid.UUID, req request_models.CompleteShiftRequest) (*response_models.AssignmentResponse, error)
	CompleteFor(ctx context.Context, id access.Identity, shiftID, workerID uuid.UUID, req request_models.CompleteShiftRequest) (*response_models.AssignmentResponse, error)
}

type ShiftService struct {
	db            *gorm.DB
	shifts        repositories.ShiftRepository
	assignments   repositories.AssignmentRepository
	profiles      repositories.ProfileRepository
	agencies      repositories.AgencyRepository
	accounts      repositories.AccountRepository
	subscriptions repositories.SubscriptionRepository
	geocoder      GeocodingService
	notifier      NotificationService
	logger        *slog.Logger
	baseURL       string
	now           func() time.Time
}

func NewShiftService(
	db *gorm.DB,
	shifts repositories.ShiftRepository,
	assignments repositories.AssignmentRepository,
	profiles repositories.ProfileRepository,
	agencies repositories.AgencyRepository,
	accounts repositories.AccountRepository,
	subscriptions repositories.SubscriptionRepository,
	geocoder GeocodingService,
	notifier NotificationService,
	logger *slog.Logger,
	baseURL string,
) ShiftServiceInterface {
	return &ShiftService{
		db:            db,
		shifts:        shifts,
		assignments:   assignments,
		profiles:      profiles,
		agencies:      agencies,
		accounts:      accounts,
		subscriptions: subscriptions,
		geocoder:      geocoder,
		notifier:      notifier,
		logger:        logger.With(slog.String("component", "shifts")),
		baseURL:       strings.TrimRight(baseURL, "/"),
		now:           time.Now,
	}
}

// ------------------- Reads -------------------

func (s *ShiftService) List(ctx context.Context, id access.Identity, query request_models.ShiftListQuery) (*response_models.ShiftPage, error) {
	filter := repositories.ShiftFilter{
		Search:   query.Search,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status, err := db_models.ParseShiftStatus(query.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrValidation, err)
		}
		filter.Status = status
	}
	for _, bound := range []struct {
		raw string
		dst **time.Time
	}{{query.DateFrom, &filter.DateFrom}, {query.DateTo, &filter.DateTo}} {
		if bound.raw == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, bound.raw)
		if err != nil {
			return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", utils.ErrValidation, bound.raw)
		}
		*bound.dst = &t
	}

	shifts, total, err := s.shifts.List(ctx, id, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	origin := s.origin(ctx, id)
	items := make([]response_models.ShiftResponse, 0, len(shifts))
	for _, shift := range shifts {
		items = append(items, annotate(shift, origin))
	}

	page := &response_models.ShiftPage{Items: items, Total: total, Page: query.Page, PageSize: query.PageSize}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 || page.PageSize > 100 {
		page.PageSize = 20
	}
	return page, nil
}

func (s *ShiftService) Get(ctx context.Context, id access.Identity, shiftID uuid.UUID) (*response_models.ShiftResponse, error) {
	shift, err := s.visibleShift(ctx, id, shiftID)
	if err != nil {
		return nil, err
	}
	resp := annotate(*shift, s.origin(ctx, id))
	return &resp, nil
}

// origin is the caller's profile location, nil when it is unknown.
func (s *ShiftService) origin(ctx context.Context, id access.Identity) *db_models.Profile {
	profile, err := s.profiles.FindByAccountID(ctx, id.AccountID)
	if err != nil {
		s.logger.WarnContext(ctx, "load profile for distance", slog.Any("error", err))
		return nil
	}
	if profile == nil || !profile.HasCoordinates() {
		return nil
	}
	return profile
}

func annotate(shift db_models.Shift, origin *db_models.Profile) response_models.ShiftResponse {
	resp := response_models.NewShiftResponse(shift)
	if origin != nil && shift.HasCoordinates() {
		d := utils.Distance(*origin.Latitude, *origin.Longitude, *shift.Latitude, *shift.Longitude, utils.Miles)
		d = decimal.NewFromFloat(d).Round(2).InexactFloat64()
		resp.DistanceMiles = &d
	}
	return resp
}

// visibleShift loads a shift the identity is allowed to see. Shifts of other
// agencies are reported as missing.
func (s *ShiftService) visibleShift(ctx context.Context, id access.Identity, shiftID uuid.UUID) (*db_models.Shift, error) {
	shift, err := s.shifts.FindByID(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if shift == nil || (!id.Superuser && !id.BelongsTo(shift.AgencyID)) {
		return nil, utils.ErrShiftNotFound
	}
	return shift, nil
}

func (s *ShiftService) managedShift(ctx context.Context, id access.Identity, shiftID uuid.UUID) (*db_models.Shift, error) {
	if !id.IsAgencyManager() {
		return nil, utils.ErrForbidden
	}
	return s.visibleShift(ctx, id, shiftID)
}

// ------------------- Writes -------------------

func (s *ShiftService) Create(ctx context.Context, id access.Identity, req request_models.ShiftRequest) (*response_models.ShiftResponse, error) {
	if !id.IsAgencyManager() {
		return nil, utils.ErrForbidden
	}
	agency, err := resolveAgency(ctx, s.profiles, s.agencies, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkShiftLimit(ctx, agency.ID); err != nil {
		return nil, err
	}

	code, err := utils.GenerateCode("SHIFT")
	if err != nil {
		return nil, err
	}
	shift := &db_models.Shift{
		ShiftCode: code,
		AgencyID:  agency.ID,
		Status:    db_models.ShiftStatusAvailable,
		IsActive:  true,
	}
	if err := s.apply(ctx, shift, req); err != nil {
		return nil, err
	}

	if err := s.shifts.Insert(ctx, shift); err != nil {
		s.logger.ErrorContext(ctx, "insert shift", slog.String("agency_id", agency.ID.String()), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	s.logger.InfoContext(ctx, "shift created",
		slog.String("agency_id", agency.ID.String()),
		slog.String("shift_id", shift.ID.String()),
		slog.String("code", code))

	shift.Agency = agency
	resp := response_models.NewShiftResponse(*shift)
	return &resp, nil
}

// checkShiftLimit enforces the plan's monthly shift cap. Agencies without an
// active subscription or on an uncapped plan are not limited here.
func (s *ShiftService) checkShiftLimit(ctx context.Context, agencyID uuid.UUID) error {
	sub, err := s.subscriptions.FindByAgencyID(ctx, agencyID)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if sub == nil || sub.Plan == nil || sub.Plan.ShiftLimit == nil || !sub.IsActiveAt(s.now().Unix()) {
		return nil
	}

	since := utils.MonthStartUTC(s.now()).Unix()
	count, err := s.shifts.CountCreatedSince(ctx, agencyID, since)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if count >= int64(*sub.Plan.ShiftLimit) {
		return fmt.Errorf("%w: %d of %d this month", utils.ErrShiftLimitReached, count, *sub.Plan.ShiftLimit)
	}
	return nil
}

func (s *ShiftService) Update(ctx context.Context, id access.Identity, shiftID uuid.UUID, req request_models.ShiftRequest) (*response_models.ShiftResponse, error) {
	shift, err := s.managedShift(ctx, id, shiftID)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, shift, req); err != nil {
		return nil, err
	}
	if req.Capacity < len(shift.Assignments) {
		return nil, fmt.Errorf("%w: capacity %d is below the %d assigned workers", utils.ErrValidation, req.Capacity, len(shift.Assignments))
	}
	if req.Status != "" {
		status, err := db_models.ParseShiftStatus(req.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrValidation, err)
		}
		shift.Status = status
	}
	shift.RefreshStatus(len(shift.Assignments))

	if err := s.shifts.Save(ctx, shift); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	resp := response_models.NewShiftResponse(*shift)
	return &resp, nil
}

// apply copies the request onto shift, geocoding the address when no
// coordinates were given, and validates the result.
func (s *ShiftService) apply(ctx context.Context, shift *db_models.Shift, req request_models.ShiftRequest) error {
	date, err := time.Parse(time.DateOnly, req.ShiftDate)
	if err != nil {
		return fmt.Errorf("%w: shift_date must be YYYY-MM-DD", utils.ErrValidation)
	}
	start, err := parseClock(req.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start_time: %v", utils.ErrValidation, err)
	}
	end, err := parseClock(req.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end_time: %v", utils.ErrValidation, err)
	}
	rate := decimal.Zero
	if req.HourlyRate != "" {
		rate, err = decimal.NewFromString(req.HourlyRate)
		if err != nil {
			return fmt.Errorf("%w: hourly_rate %q is not a number", utils.ErrValidation, req.HourlyRate)
		}
	}
	shiftType, err := db_models.ParseShiftType(req.ShiftType)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}

	before := shiftAddress(*shift)
	shift.Name = strings.TrimSpace(req.Name)
	shift.ShiftDate = datatypes.Date(date)
	shift.StartTime = start
	shift.EndTime = end
	shift.Capacity = req.Capacity
	shift.HourlyRate = rate.Round(2)
	shift.ShiftType = shiftType
	shift.AddressLine1 = req.AddressLine1
	shift.AddressLine2 = req.AddressLine2
	shift.City = req.City
	shift.County = req.County
	shift.Postcode = req.Postcode
	shift.Country = req.Country

	switch {
	case req.Latitude != nil && req.Longitude != nil:
		shift.Latitude, shift.Longitude = req.Latitude, req.Longitude
	case shiftAddress(*shift) != before || !shift.HasCoordinates():
		shift.Latitude, shift.Longitude = nil, nil
		s.geocodeShift(ctx, shift)
	}

	if err := shift.Validate(); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	return nil
}

func (s *ShiftService) geocodeShift(ctx context.Context, shift *db_models.Shift) {
	address := shiftAddress(*shift)
	if address == "" {
		return
	}
	res, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.logger.WarnContext(ctx, "geocode shift address", slog.String("shift_code", shift.ShiftCode), slog.Any("error", err))
		return
	}
	if res == nil {
		s.logger.InfoContext(ctx, "no geocode result", slog.String("shift_code", shift.ShiftCode))
		return
	}
	shift.Latitude, shift.Longitude = &res.Latitude, &res.Longitude
}

func shiftAddress(s db_models.Shift) string {
	return joinAddress(s.AddressLine1, s.AddressLine2, s.City, s.County, s.Postcode, s.Country)
}

func parseClock(v string) (datatypes.Time, error) {
	layout := "15:04"
	if strings.Count(v, ":") == 2 {
		layout = time.TimeOnly
	}
	t, err := time.Parse(layout, v)
	if err != nil {
		return 0, fmt.Errorf("%q must be HH:MM", v)
	}
	return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
}

func (s *ShiftService) Delete(ctx context.Context, id access.Identity, shiftID uuid.UUID) error {
	shift, err := s.managedShift(ctx, id, shiftID)
	if err != nil {
		return err
	}
	if err := s.shifts.Delete(ctx, shift.ID); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	s.logger.InfoContext(ctx, "shift deleted", slog.String("shift_id", shift.ID.String()))
	return nil
}

// ------------------- Booking and assignment -------------------

func (s *ShiftService) Book(ctx context.Context, id access.Identity, shiftID uuid.UUID) error {
	if !id.IsAgencyStaff() {
		return utils.ErrForbidden
	}
	shift, err := s.visibleShift(ctx, id, shiftID)
	if err != nil {
		return err
	}

	profile, err := s.profiles.FindByAccountID(ctx, id.AccountID)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if profile == nil {
		return utils.ErrProfileMissing
	}
	if err := withinRadius(*profile, *shift); err != nil {
		return err
	}

	_, err = s.addAssignment(ctx, shift, id.AccountID, db_models.AssignmentRoleStaff)
	return err
}

// withinRadius only applies when both sides have coordinates and the worker
// set a positive radius.
func withinRadius(profile db_models.Profile, shift db_models.Shift) error {
	if profile.TravelRadius <= 0 || !profile.HasCoordinates() || !shift.HasCoordinates() {
		return nil
	}
	d := utils.Distance(*profile.Latitude, *profile.Longitude, *shift.Latitude, *shift.Longitude, utils.Miles)
	if d > profile.TravelRadius {
		return fmt.Errorf("%w: %.1f miles away, radius %.1f", utils.ErrOutsideTravelRadius, d, profile.TravelRadius)
	}
	return nil
}

// addAssignment checks capacity and inserts the assignment, recalculating
// the shift status in the same transaction.
func (s *ShiftService) addAssignment(ctx context.Context, shift *db_models.Shift, workerID uuid.UUID, role db_models.AssignmentRole) (*db_models.ShiftAssignment, error) {
	if !shift.IsOpen() {
		return nil, fmt.Errorf("%w: shift is %s", utils.ErrValidation, shift.Status)
	}

	assignment := &db_models.ShiftAssignment{
		ShiftID:    shift.ID,
		WorkerID:   workerID,
		Role:       role,
		Status:     db_models.AssignmentStatusAssigned,
		AssignedAt: s.now().Unix(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignments := s.assignments.WithTx(tx)

		existing, err := assignments.Find(ctx, shift.ID, workerID)
		if err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if existing != nil {
			return utils.ErrAlreadyAssigned
		}
		count, err := assignments.CountForShift(ctx, shift.ID)
		if err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if int(count) >= shift.Capacity {
			return utils.ErrShiftFull
		}

		if err := assignments.Insert(ctx, assignment); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		shift.RefreshStatus(int(count) + 1)
		if err := s.shifts.WithTx(tx).Save(ctx, shift); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "worker assigned",
		slog.String("shift_id", shift.ID.String()),
		slog.String("worker_id", workerID.String()),
		slog.String("role", string(role)))
	return assignment, nil
}

func (s *ShiftService) removeAssignment(ctx context.Context, shift *db_models.Shift, workerID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignments := s.assignments.WithTx(tx)

		existing, err := assignments.Find(ctx, shift.ID, workerID)
		if err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if existing == nil {
			return utils.ErrAssignmentNotFound
		}
		if err := assignments.Delete(ctx, existing); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		count, err := assignments.CountForShift(ctx, shift.ID)
		if err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		shift.RefreshStatus(int(count))
		if err := s.shifts.WithTx(tx).Save(ctx, shift); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		return nil
	})
}

func (s *ShiftService) Unbook(ctx context.Context, id access.Identity, shiftID uuid.UUID) error {
	shift, err := s.visibleShift(ctx, id, shiftID)
	if err != nil {
		return err
	}
	return s.removeAssignment(ctx, shift, id.AccountID)
}

func (s *ShiftService) Assign(ctx context.Context, id access.Identity, shiftID uuid.UUID, req request_models.AssignWorkerRequest) error {
	shift, err := s.managedShift(ctx, id, shiftID)
	if err != nil {
		return err
	}
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return fmt.Errorf("%w: worker_id", utils.ErrValidation)
	}
	role, err := db_models.ParseAssignmentRole(req.Role)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}

	worker, err := s.accounts.FindByID(ctx, workerID)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if worker == nil || !worker.IsActive {
		return utils.ErrAccountNotFound
	}
	if worker.Profile == nil || worker.Profile.AgencyID == nil || *worker.Profile.AgencyID != shift.AgencyID {
		return utils.ErrAgencyMismatch
	}

	if _, err := s.addAssignment(ctx, shift, worker.ID, role); err != nil {
		return err
	}

	s.notifier.NotifyAccount(ctx, worker,
		"New Shift Assignment",
		fmt.Sprintf("You have been assigned to %s on %s, %s to %s.",
			shift.Name,
			time.Time(shift.ShiftDate).Format("Monday 2 January 2006"),
			shift.StartTime.String()[:5],
			shift.EndTime.String()[:5]),
		"View shift", fmt.Sprintf("%s/shifts/%s", s.baseURL, shift.ID))
	return nil
}

func (s *ShiftService) Unassign(ctx context.Context, id access.Identity, shiftID, workerID uuid.UUID) error {
	shift, err := s.managedShift(ctx, id, shiftID)
	if err != nil {
		return err
	}
	return s.removeAssignment(ctx, shift, workerID)
}

func (s *ShiftService) ListAssignments(ctx context.Context, id access.Identity) ([]response_models.AssignmentResponse, error) {
	assignments, err := s.assignments.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return response_models.NewAssignmentResponses(assignments), nil
}

// ------------------- Completion -------------------

const (
	// Workers sign off a shift on site.
	completionRadiusMiles = 0.5
	maxSignatureBytes     = 512 << 10
)

// Complete signs off the caller's own assignment and closes the shift.
// Superusers skip the location check.
func (s *ShiftService) Complete(ctx context.Context, id access.Identity, shiftID uuid.UUID, req request_models.CompleteShiftRequest) (*response_models.AssignmentResponse, error) {
	if !id.IsAgencyStaff() {
		return nil, utils.ErrForbidden
	}
	shift, err := s.visibleShift(ctx, id, shiftID)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, shift, id.AccountID, req, !id.Superuser)
}

// CompleteFor lets a manager sign off on behalf of an assigned worker. A
// missing location falls back to the shift's own coordinates.
func (s *ShiftService) CompleteFor(ctx context.Context, id access.Identity, shiftID, workerID uuid.UUID, req request_models.CompleteShiftRequest) (*response_models.AssignmentResponse, error) {
	shift, err := s.managedShift(ctx, id, shiftID)
	if err != nil {
		return nil, err
	}
	if (req.Latitude == nil || req.Longitude == nil) && shift.HasCoordinates() {
		req.Latitude, req.Longitude = shift.Latitude, shift.Longitude
	}
	return s.complete(ctx, shift, workerID, req, !id.Superuser)
}

func (s *ShiftService) complete(ctx context.Context, shift *db_models.Shift, workerID uuid.UUID, req request_models.CompleteShiftRequest, checkDistance bool) (*response_models.AssignmentResponse, error) {
	switch shift.Status {
	case db_models.ShiftStatusCompleted:
		return nil, utils.ErrShiftCompleted
	case db_models.ShiftStatusCancelled:
		return nil, fmt.Errorf("%w: shift is cancelled", utils.ErrValidation)
	}
	attendance, err := db_models.ParseAttendanceStatus(req.AttendanceStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	var signature []byte
	var signatureType string
	if req.Signature != "" {
		signature, signatureType, err = decodeSignature(req.Signature)
		if err != nil {
			return nil, fmt.Errorf("%w: signature: %v", utils.ErrValidation, err)
		}
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) ||
		req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		return nil, fmt.Errorf("%w: location out of range", utils.ErrValidation)
	}
	if checkDistance {
		if err := withinCompletionRadius(*shift, req.Latitude, req.Longitude); err != nil {
			return nil, err
		}
	}

	at := s.now().Unix()
	var assignment *db_models.ShiftAssignment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assignments := s.assignments.WithTx(tx)

		found, err := assignments.Find(ctx, shift.ID, workerID)
		if err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if found == nil {
			return utils.ErrAssignmentNotFound
		}
		assignment = found

		assignment.Status = db_models.AssignmentStatusCompleted
		assignment.CompletedAt = &at
		assignment.CompletionLatitude, assignment.CompletionLongitude = req.Latitude, req.Longitude
		if attendance != "" {
			assignment.AttendanceStatus = attendance
		}
		if signature != nil {
			assignment.Signature, assignment.SignatureType = signature, signatureType
		}
		if err := assignments.Save(ctx, assignment); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}

		shift.Complete(at)
		if err := s.shifts.WithTx(tx).Save(ctx, shift); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "shift completed",
		slog.String("shift_id", shift.ID.String()),
		slog.String("worker_id", workerID.String()),
		slog.String("attendance", string(assignment.AttendanceStatus)),
		slog.Bool("signed", len(assignment.Signature) > 0))

	assignment.Shift = shift
	resp := response_models.NewAssignmentResponse(*assignment)
	return &resp, nil
}

func withinCompletionRadius(shift db_models.Shift, lat, lng *float64) error {
	if lat == nil || lng == nil {
		return fmt.Errorf("%w: your location is required to complete a shift", utils.ErrValidation)
	}
	if !shift.HasCoordinates() {
		return fmt.Errorf("%w: shift location is not set", utils.ErrValidation)
	}
	d := utils.Distance(*lat, *lng, *shift.Latitude, *shift.Longitude, utils.Miles)
	if d > completionRadiusMiles {
		return fmt.Errorf("%w: %.2f miles away", utils.ErrTooFarFromShift, d)
	}
	return nil
}

// decodeSignature unpacks an image data URL. The declared type is ignored in
// favour of the sniffed one.
func decodeSignature(dataURL string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(dataURL, ";base64,")
	if !ok || !strings.HasPrefix(header, "data:") {
		return nil, "", fmt.Errorf("not a base64 data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode: %v", err)
	}
	if len(raw) == 0 || len(raw) > maxSignatureBytes {
		return nil, "", fmt.Errorf("size %d out of range", len(raw))
	}
	kind := mimetype.Detect(raw)
	if !strings.HasPrefix(kind.String(), "image/") {
		return nil, "", fmt.Errorf("%s is not an image", kind.String())
	}
	return raw, kind.String(), nil
}
