package account_fx

import (
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"shiftwise/internal/config"
	"shiftwise/internal/repositories"
	"shiftwise/internal/services"
	mem "shiftwise/pkg/memcache"
	"shiftwise/pkg/utils"
)

var Module = fx.Provide(
	provideAccountRepo,
	provideProfileRepo,
	provideAgencyRepo,
	provideTokenIssuer,
	provideAccountService,
	provideIdentityService,
	provideAgencyService,
)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideProfileRepo(db *gorm.DB) repositories.ProfileRepository {
	return repositories.NewProfileRepository(db)
}

func provideAgencyRepo(db *gorm.DB) repositories.AgencyRepository {
	return repositories.NewAgencyRepository(db)
}

func provideTokenIssuer(cfg config.Config) *utils.TokenIssuer {
	return utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
}

func provideAccountService(
	db *gorm.DB,
	accountRepo repositories.AccountRepository,
	profileRepo repositories.ProfileRepository,
	tokens *utils.TokenIssuer,
	store mem.Store,
	mailService services.IMailService,
	geocoder services.GeocodingService,
	logger *slog.Logger,
) services.AccountServiceInterface {
	return services.NewAccountService(db, accountRepo, profileRepo, tokens, store, mailService, geocoder, logger)
}

func provideIdentityService(accountRepo repositories.AccountRepository, subscriptionRepo repositories.SubscriptionRepository, logger *slog.Logger) services.IdentityService {
	return services.NewIdentityService(accountRepo, subscriptionRepo, logger)
}

func provideAgencyService(
	db *gorm.DB,
	agencyRepo repositories.AgencyRepository,
	profileRepo repositories.ProfileRepository,
	accountRepo repositories.AccountRepository,
	gateway services.BillingGateway,
	logger *slog.Logger,
) services.AgencyServiceInterface {
	return services.NewAgencyService(db, agencyRepo, profileRepo, accountRepo, gateway, logger)
}
