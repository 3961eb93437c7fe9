package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
	"shiftwise/internal/models/request_models"
	"shiftwise/internal/repositories"
	"shiftwise/pkg/memcache"
	"shiftwise/pkg/utils"
)

const resetTokenTTL = time.Hour

type AccountServiceInterface interface {
	Login(ctx context.Context, request request_models.LoginRequest) (string, error)
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*db_models.Account, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, request request_models.ResetPasswordRequest) error
	GetProfile(ctx context.Context, id access.Identity) (*db_models.Profile, error)
	UpdateProfile(ctx context.Context, id access.Identity, request request_models.UpdateProfileRequest) (*db_models.Profile, error)
	SetGroups(ctx context.Context, actor access.Identity, accountID uuid.UUID, groups []string) (*db_models.Account, error)
}

type AccountService struct {
	db          *gorm.DB
	accountRepo repositories.AccountRepository
	profileRepo repositories.ProfileRepository
	tokens      *utils.TokenIssuer
	resetStore  memcache.Store
	mail        IMailService
	geocoder    GeocodingService
	logger      *slog.Logger
}

func NewAccountService(
	db *gorm.DB,
	accountRepo repositories.AccountRepository,
	profileRepo repositories.ProfileRepository,
	tokens *utils.TokenIssuer,
	resetStore memcache.Store,
	mail IMailService,
	geocoder GeocodingService,
	logger *slog.Logger,
) AccountServiceInterface {
	return &AccountService{
		db:          db,
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		tokens:      tokens,
		resetStore:  resetStore,
		mail:        mail,
		geocoder:    geocoder,
		logger:      logger.With(slog.String("component", "accounts")),
	}
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (string, error) {
	startTime := time.Now()

	account, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if account == nil || !account.IsActive {
		return "", utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return "", utils.ErrInvalidCredentials
	}

	token, err := a.tokens.CreateToken(account.ID, account.IsSuperuser)
	if err != nil {
		return "", err
	}

	a.logger.DebugContext(ctx, "login", slog.String("account_id", account.ID.String()), slog.Duration("took", time.Since(startTime)))
	return token, nil
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*db_models.Account, error) {
	existing, err := a.accountRepo.FindByEmail(ctx, request.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if existing != nil {
		return nil, utils.ErrEmailAlreadyExists
	}
	existing, err = a.accountRepo.FindByUsername(ctx, request.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if existing != nil {
		return nil, utils.ErrUsernameTaken
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	account := &db_models.Account{
		Username:     strings.TrimSpace(request.Username),
		Email:        strings.ToLower(strings.TrimSpace(request.Email)),
		PasswordHash: hashedPassword,
		IsActive:     true,
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := a.accountRepo.WithTx(tx).Insert(ctx, account); err != nil {
			return err
		}
		return a.profileRepo.WithTx(tx).Save(ctx, &db_models.Profile{AccountID: account.ID})
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "create account", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}

	a.logger.InfoContext(ctx, "account created", slog.String("account_id", account.ID.String()))
	return account, nil
}

func resetTokenKey(token string) string {
	return "reset_" + token
}

// RequestPasswordReset mails a single-use token. Unknown emails succeed
// silently so the endpoint cannot reveal which emails have accounts.
func (a *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if account == nil || !account.IsActive {
		a.logger.InfoContext(ctx, "password reset for unknown email")
		return nil
	}

	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return err
	}
	if err := a.resetStore.Set(ctx, resetTokenKey(token), account.ID.String(), resetTokenTTL); err != nil {
		a.logger.ErrorContext(ctx, "store reset token", slog.Any("error", err))
		return err
	}

	if err := a.mail.SendMailToResetPassword(ctx, account.Email, token); err != nil {
		a.logger.ErrorContext(ctx, "send reset mail", slog.String("account_id", account.ID.String()), slog.Any("error", err))
		return fmt.Errorf("%w: %v", utils.ErrMailProvider, err)
	}
	return nil
}

func (a *AccountService) ResetPassword(ctx context.Context, request request_models.ResetPasswordRequest) error {
	raw, err := a.resetStore.Consume(ctx, resetTokenKey(request.Token))
	if err != nil {
		if errors.Is(err, memcache.ErrMiss) {
			return utils.ErrInvalidResetToken
		}
		return err
	}
	accountID, err := uuid.Parse(raw)
	if err != nil {
		return utils.ErrInvalidResetToken
	}

	hashedPassword, err := utils.HashPassword(request.NewPassword)
	if err != nil {
		return err
	}
	if err := a.accountRepo.UpdatePassword(ctx, accountID, hashedPassword); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	a.logger.InfoContext(ctx, "password reset", slog.String("account_id", accountID.String()))
	return nil
}

func (a *AccountService) GetProfile(ctx context.Context, id access.Identity) (*db_models.Profile, error) {
	profile, err := a.profileRepo.FindByAccountID(ctx, id.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if profile == nil {
		return nil, utils.ErrProfileMissing
	}
	return profile, nil
}

// UpdateProfile creates the profile on first save. Explicit coordinates win;
// otherwise a changed address is geocoded and a failed lookup clears them.
func (a *AccountService) UpdateProfile(ctx context.Context, id access.Identity, request request_models.UpdateProfileRequest) (*db_models.Profile, error) {
	profile, err := a.profileRepo.FindByAccountID(ctx, id.AccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if profile == nil {
		profile = &db_models.Profile{AccountID: id.AccountID}
	}

	before := profileAddress(*profile)
	profile.AddressLine1 = request.AddressLine1
	profile.AddressLine2 = request.AddressLine2
	profile.City = request.City
	profile.County = request.County
	profile.Postcode = request.Postcode
	profile.Country = request.Country
	profile.TravelRadius = request.TravelRadius

	switch {
	case request.Latitude != nil && request.Longitude != nil:
		profile.Latitude, profile.Longitude = request.Latitude, request.Longitude
	case profileAddress(*profile) != before || !profile.HasCoordinates():
		profile.Latitude, profile.Longitude = nil, nil
		if res := a.geocode(ctx, profileAddress(*profile)); res != nil {
			profile.Latitude, profile.Longitude = &res.Latitude, &res.Longitude
		}
	}

	if err := a.profileRepo.Save(ctx, profile); err != nil {
		a.logger.ErrorContext(ctx, "save profile", slog.String("account_id", id.AccountID.String()), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return profile, nil
}

func (a *AccountService) geocode(ctx context.Context, address string) *GeocodeResult {
	if address == "" {
		return nil
	}
	res, err := a.geocoder.Geocode(ctx, address)
	if err != nil {
		a.logger.WarnContext(ctx, "geocode profile address", slog.Any("error", err))
		return nil
	}
	return res
}

func profileAddress(p db_models.Profile) string {
	return joinAddress(p.AddressLine1, p.AddressLine2, p.City, p.County, p.Postcode, p.Country)
}

func joinAddress(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func (a *AccountService) SetGroups(ctx context.Context, actor access.Identity, accountID uuid.UUID, groups []string) (*db_models.Account, error) {
	if !actor.Superuser {
		return nil, utils.ErrForbidden
	}

	parsed := make([]access.Group, 0, len(groups))
	for _, g := range groups {
		group, err := access.ParseGroup(g)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", utils.ErrValidation, err)
		}
		parsed = append(parsed, group)
	}

	account, err := a.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}

	if err := a.accountRepo.SetGroups(ctx, accountID, parsed); err != nil {
		a.logger.ErrorContext(ctx, "set groups", slog.String("account_id", accountID.String()), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	a.logger.InfoContext(ctx, "groups updated",
		slog.String("account_id", accountID.String()),
		slog.String("actor_id", actor.AccountID.String()),
		slog.Any("groups", groups))

	return a.accountRepo.FindByID(ctx, accountID)
}
