// Command syncplans imports the active recurring prices from the billing
// provider as local plans.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"shiftwise/internal/config"
	"shiftwise/internal/infra"
	"shiftwise/internal/metrics"
	"shiftwise/internal/repositories"
	"shiftwise/internal/services"
)

func main() {
	currency := flag.String("currency", "", "price currency to import, defaults to STRIPE_CURRENCY")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg)

	if cfg.Stripe.SecretKey == "" {
		logger.Error("STRIPE_SECRET_KEY is required")
		os.Exit(1)
	}
	if *currency == "" {
		*currency = cfg.Stripe.Currency
	}

	db, err := infra.InitPostgresql(cfg, logger)
	if err != nil {
		logger.Error("open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer infra.ClosePostgresql(db, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	gateway := services.NewStripeGateway(cfg.Stripe, nil, logger, metrics.New())
	plans := services.NewPlanService(repositories.NewPlanRepository(db), gateway, logger)

	result, err := plans.SyncFromProvider(ctx, *currency)
	if err != nil {
		logger.Error("plan sync failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("plan sync finished",
		slog.String("currency", *currency),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", len(result.Skipped)))
}
