package billing_fx

import (
	"log/slog"

	"go.uber.org/fx"
	"shiftwise/internal/config"
	"shiftwise/internal/metrics"
	"shiftwise/internal/services"
)

var Module = fx.Provide(provideBillingGateway)

func provideBillingGateway(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) services.BillingGateway {
	if cfg.Stripe.SecretKey == "" {
		logger.Warn("STRIPE_SECRET_KEY is empty, billing calls will fail")
	}
	return services.NewStripeGateway(cfg.Stripe, nil, logger, m)
}
