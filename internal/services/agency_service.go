package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
	"shiftwise/internal/models/request_models"
	"shiftwise/internal/repositories"
	"shiftwise/pkg/utils"
)

type AgencyServiceInterface interface {
	CreateAgency(ctx context.Context, id access.Identity, req request_models.CreateAgencyRequest) (*db_models.Agency, error)
	AddMember(ctx context.Context, id access.Identity, req request_models.AddMemberRequest) error
	ListForAdmin(ctx context.Context, id access.Identity, search string) ([]db_models.Agency, error)
}

type AgencyService struct {
	db       *gorm.DB
	agencies repositories.AgencyRepository
	profiles repositories.ProfileRepository
	accounts repositories.AccountRepository
	gateway  BillingGateway
	logger   *slog.Logger
}

func NewAgencyService(
	db *gorm.DB,
	agencies repositories.AgencyRepository,
	profiles repositories.ProfileRepository,
	accounts repositories.AccountRepository,
	gateway BillingGateway,
	logger *slog.Logger,
) AgencyServiceInterface {
	return &AgencyService{
		db:       db,
		agencies: agencies,
		profiles: profiles,
		accounts: accounts,
		gateway:  gateway,
		logger:   logger.With(slog.String("component", "agencies")),
	}
}

// resolveAgency walks identity -> profile -> agency and reports the first
// missing prerequisite.
func resolveAgency(ctx context.Context, profiles repositories.ProfileRepository, agencies repositories.AgencyRepository, id access.Identity) (*db_models.Agency, error) {
	profile, err := profiles.FindByAccountID(ctx, id.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if profile == nil {
		return nil, utils.ErrProfileMissing
	}
	if profile.AgencyID == nil {
		return nil, utils.ErrAgencyMissing
	}
	if profile.Agency != nil {
		return profile.Agency, nil
	}

	agency, err := agencies.FindByID(ctx, *profile.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if agency == nil {
		return nil, utils.ErrAgencyMissing
	}
	return agency, nil
}

func (a *AgencyService) CreateAgency(ctx context.Context, id access.Identity, req request_models.CreateAgencyRequest) (*db_models.Agency, error) {
	profile, err := a.profiles.FindByAccountID(ctx, id.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if profile == nil {
		return nil, utils.ErrProfileMissing
	}
	if profile.AgencyID != nil {
		return nil, fmt.Errorf("%w: account already belongs to an agency", utils.ErrAgencyAlreadyExists)
	}

	agencyType, err := db_models.ParseAgencyType(req.AgencyType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}

	name := strings.TrimSpace(req.Name)
	existing, err := a.agencies.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if existing != nil {
		return nil, utils.ErrAgencyAlreadyExists
	}

	email := req.Email
	if email == "" {
		email = id.Email
	}
	code, err := utils.GenerateCode("AGY")
	if err != nil {
		return nil, err
	}
	owner := id.AccountID
	agency := &db_models.Agency{
		Name:       name,
		AgencyCode: code,
		OwnerID:    &owner,
		Email:      email,
		Phone:      req.Phone,
		Address:    req.Address,
		Postcode:   req.Postcode,
		AgencyType: agencyType,
		Website:    req.Website,
		IsActive:   true,
	}

	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := a.agencies.WithTx(tx).Insert(ctx, agency); err != nil {
			return err
		}
		profile.AgencyID = &agency.ID
		profile.Agency = nil
		if err := a.profiles.WithTx(tx).Save(ctx, profile); err != nil {
			return err
		}
		return a.accounts.WithTx(tx).AddGroup(ctx, id.AccountID, access.GroupAgencyOwners)
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "create agency", slog.String("name", name), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	a.logger.InfoContext(ctx, "agency created", slog.String("agency_id", agency.ID.String()), slog.String("code", code))

	a.ensureCustomer(ctx, agency)
	return agency, nil
}

// ensureCustomer links the agency to a billing customer. A provider failure
// leaves the agency without one; subscribing then reports it as missing.
func (a *AgencyService) ensureCustomer(ctx context.Context, agency *db_models.Agency) {
	if agency.CustomerID() != "" || agency.Email == "" {
		return
	}
	customer, err := a.gateway.FindOrCreateCustomer(ctx, agency.Email, agency.Name, map[string]string{
		"agency_id": agency.ID.String(),
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "create billing customer", slog.String("agency_id", agency.ID.String()), slog.Any("error", err))
		return
	}
	if err := a.agencies.SetCustomerID(ctx, agency.ID, customer.ID); err != nil {
		a.logger.ErrorContext(ctx, "store billing customer",
			slog.String("agency_id", agency.ID.String()),
			slog.String("customer_id", customer.ID),
			slog.Any("error", err))
		return
	}
	agency.StripeCustomerID = &customer.ID
}

func (a *AgencyService) AddMember(ctx context.Context, id access.Identity, req request_models.AddMemberRequest) error {
	if !id.IsAgencyManager() {
		return utils.ErrForbidden
	}
	agency, err := resolveAgency(ctx, a.profiles, a.agencies, id)
	if err != nil {
		return err
	}

	group, err := access.ParseGroup(req.Group)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}
	switch group {
	case access.GroupAgencyStaff:
	case access.GroupAgencyManagers:
		if !id.IsAgencyOwner() {
			return utils.ErrNotAgencyOwner
		}
	case access.GroupAgencyOwners:
		return fmt.Errorf("%w: agencies have a single owner", utils.ErrValidation)
	}

	account, err := a.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if account == nil {
		return utils.ErrAccountNotFound
	}

	profile := account.Profile
	if profile == nil {
		profile = &db_models.Profile{AccountID: account.ID}
	}
	if profile.AgencyID != nil && *profile.AgencyID != agency.ID {
		return utils.ErrAgencyMismatch
	}
	profile.AgencyID = &agency.ID
	profile.Agency = nil

	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := a.profiles.WithTx(tx).Save(ctx, profile); err != nil {
			return err
		}
		return a.accounts.WithTx(tx).AddGroup(ctx, account.ID, group)
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "add agency member", slog.String("agency_id", agency.ID.String()), slog.Any("error", err))
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	a.logger.InfoContext(ctx, "agency member added",
		slog.String("agency_id", agency.ID.String()),
		slog.String("account_id", account.ID.String()),
		slog.String("group", group.String()))
	return nil
}

func (a *AgencyService) ListForAdmin(ctx context.Context, id access.Identity, search string) ([]db_models.Agency, error) {
	agencies, err := a.agencies.List(ctx, id, search)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return agencies, nil
}
