package services

import (
	"context"
	"log/slog"

	"shiftwise/internal/models/db_models"
	"shiftwise/internal/repositories"
)

// NotificationService mails users about subscription and shift events.
// Delivery failures are logged and never returned to the caller.
type NotificationService interface {
	NotifyAgencyOwner(ctx context.Context, agency *db_models.Agency, subject, body, ctaText, ctaURL string)
	NotifyAccount(ctx context.Context, account *db_models.Account, subject, body, ctaText, ctaURL string)
}

type notificationService struct {
	mail     IMailService
	accounts repositories.AccountRepository
	logger   *slog.Logger
}

func NewNotificationService(mail IMailService, accounts repositories.AccountRepository, logger *slog.Logger) NotificationService {
	return &notificationService{mail: mail, accounts: accounts, logger: logger}
}

func (n *notificationService) NotifyAgencyOwner(ctx context.Context, agency *db_models.Agency, subject, body, ctaText, ctaURL string) {
	if agency == nil {
		return
	}
	to := agency.Email
	if agency.OwnerID != nil {
		owner, err := n.accounts.FindByID(ctx, *agency.OwnerID)
		if err != nil {
			n.logger.ErrorContext(ctx, "load agency owner", slog.String("agency_id", agency.ID.String()), slog.Any("error", err))
		} else if owner != nil {
			to = owner.Email
		}
	}
	if to == "" {
		n.logger.WarnContext(ctx, "agency has no contact email", slog.String("agency_id", agency.ID.String()))
		return
	}
	n.send(ctx, to, subject, body, ctaText, ctaURL)
}

func (n *notificationService) NotifyAccount(ctx context.Context, account *db_models.Account, subject, body, ctaText, ctaURL string) {
	if account == nil || account.Email == "" {
		return
	}
	n.send(ctx, account.Email, subject, body, ctaText, ctaURL)
}

func (n *notificationService) send(ctx context.Context, to, subject, body, ctaText, ctaURL string) {
	if err := n.mail.SendMailToNotifyUser(ctx, to, subject, body, ctaText, ctaURL); err != nil {
		n.logger.ErrorContext(ctx, "send notification",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.Any("error", err))
	}
}
