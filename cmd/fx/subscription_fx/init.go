package subscription_fx

import (
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"
	"shiftwise/internal/config"
	"shiftwise/internal/repositories"
	"shiftwise/internal/services"
)

var Module = fx.Provide(
	providePlanRepo,
	provideSubscriptionRepo,
	providePlanService,
	provideSubscriptionService,
)

func providePlanRepo(db *gorm.DB) repositories.IPlanRepository {
	return repositories.NewPlanRepository(db)
}

func provideSubscriptionRepo(db *gorm.DB) repositories.SubscriptionRepository {
	return repositories.NewSubscriptionRepository(db)
}

func providePlanService(planRepo repositories.IPlanRepository, gateway services.BillingGateway, logger *slog.Logger) services.PlanServiceInterface {
	return services.NewPlanService(planRepo, gateway, logger)
}

func provideSubscriptionService(
	cfg config.Config,
	db *gorm.DB,
	subscriptionRepo repositories.SubscriptionRepository,
	planRepo repositories.IPlanRepository,
	agencyRepo repositories.AgencyRepository,
	profileRepo repositories.ProfileRepository,
	gateway services.BillingGateway,
	notifier services.NotificationService,
	logger *slog.Logger,
) services.SubscriptionService {
	return services.NewSubscriptionService(db, subscriptionRepo, planRepo, agencyRepo, profileRepo, gateway, notifier, logger, cfg.AppBaseURL)
}
