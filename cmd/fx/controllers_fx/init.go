package controllers_fx

import (
	"go.uber.org/fx"
	"shiftwise/internal/api/controllers"
	"shiftwise/internal/config"
	"shiftwise/internal/services"
	"shiftwise/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(provideAccountController),
	fx.Provide(controllers.NewAgencyController),
	fx.Provide(controllers.NewSubscriptionController),
	fx.Provide(controllers.NewWebhookController),
	fx.Provide(controllers.NewShiftController),
	fx.Provide(controllers.NewPerformanceController),
	fx.Provide(controllers.NewAdminController),
	fx.Provide(controllers.NewHealthController))

func provideAccountController(accountService services.AccountServiceInterface, tokens *utils.TokenIssuer, cfg config.Config) *controllers.AccountController {
	return controllers.NewAccountController(accountService, tokens, cfg.IsProduction())
}
