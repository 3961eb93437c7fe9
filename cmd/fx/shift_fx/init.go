package shift_fx

import (
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"shiftwise/internal/config"
	"shiftwise/internal/repositories"
	"shiftwise/internal/services"
)

var Module = fx.Provide(
	provideShiftRepo,
	provideAssignmentRepo,
	provideShiftService,
	providePerformanceRepo,
	providePerformanceService,
)

func provideShiftRepo(db *gorm.DB) repositories.ShiftRepository {
	return repositories.NewShiftRepository(db)
}

func provideAssignmentRepo(db *gorm.DB) repositories.AssignmentRepository {
	return repositories.NewAssignmentRepository(db)
}

type shiftDeps struct {
	fx.In

	Config        config.Config
	DB            *gorm.DB
	Shifts        repositories.ShiftRepository
	Assignments   repositories.AssignmentRepository
	Profiles      repositories.ProfileRepository
	Agencies      repositories.AgencyRepository
	Accounts      repositories.AccountRepository
	Subscriptions repositories.SubscriptionRepository
	Geocoder      services.GeocodingService
	Notifier      services.NotificationService
	Logger        *slog.Logger
}

func provideShiftService(d shiftDeps) services.ShiftServiceInterface {
	return services.NewShiftService(d.DB, d.Shifts, d.Assignments, d.Profiles, d.Agencies, d.Accounts,
		d.Subscriptions, d.Geocoder, d.Notifier, d.Logger, d.Config.AppBaseURL)
}

func providePerformanceRepo(db *gorm.DB) repositories.PerformanceRepository {
	return repositories.NewPerformanceRepository(db)
}

func providePerformanceService(records repositories.PerformanceRepository, accounts repositories.AccountRepository,
	shifts repositories.ShiftRepository, logger *slog.Logger) services.PerformanceServiceInterface {
	return services.NewPerformanceService(records, accounts, shifts, logger)
}
