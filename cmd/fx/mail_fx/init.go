package mail_fx

import (
	"log/slog"

	"go.uber.org/fx"
	"shiftwise/internal/config"
	"shiftwise/internal/repositories"
	"shiftwise/internal/services"
)

var Module = fx.Provide(provideMailService, provideNotificationService)

// provideMailService prefers Postmark, then SMTP, and otherwise only logs
// outgoing mail.
func provideMailService(cfg config.Config, logger *slog.Logger) services.IMailService {
	if cfg.Postmark.ServerToken != "" {
		mailService, err := services.NewPostmarkMailService(cfg.Postmark, cfg.AppName, cfg.AppBaseURL)
		if err == nil {
			return mailService
		}
		logger.Error("failed to initialize postmark mail service", slog.Any("error", err))
	}
	if cfg.SMTP.Host != "" {
		return services.NewSMTPMailService(cfg.SMTP, cfg.AppName, cfg.AppBaseURL)
	}
	logger.Warn("no mail transport configured, emails will only be logged")
	return services.NewLogMailService(logger, cfg.AppName, cfg.AppBaseURL)
}

func provideNotificationService(mail services.IMailService, accounts repositories.AccountRepository, logger *slog.Logger) services.NotificationService {
	return services.NewNotificationService(mail, accounts, logger)
}
