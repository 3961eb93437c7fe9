package config_fx

import (
	"log/slog"

	"go.uber.org/fx"
	"shiftwise/internal/config"
	"shiftwise/internal/infra"
	"shiftwise/internal/metrics"
)

var Module = fx.Provide(
	config.Load,
	provideLogger,
	metrics.New,
)

func provideLogger(cfg config.Config) *slog.Logger {
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	return logger
}
