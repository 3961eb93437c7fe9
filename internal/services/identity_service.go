package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"shiftwise/internal/access"
	"shiftwise/internal/repositories"
	"shiftwise/pkg/utils"
)

// IdentityService builds the access.Identity every gate decision and
// agency-scoped query runs against.
type IdentityService interface {
	Resolve(ctx context.Context, accountID uuid.UUID) (access.Identity, error)
}

type identityService struct {
	accounts      repositories.AccountRepository
	subscriptions repositories.SubscriptionRepository
	logger        *slog.Logger
	now           func() time.Time
}

func NewIdentityService(accounts repositories.AccountRepository, subscriptions repositories.SubscriptionRepository, logger *slog.Logger) IdentityService {
	return &identityService{
		accounts:      accounts,
		subscriptions: subscriptions,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *identityService) Resolve(ctx context.Context, accountID uuid.UUID) (access.Identity, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return access.Anonymous(), fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if account == nil || !account.IsActive {
		return access.Anonymous(), utils.ErrAccountNotFound
	}

	id := access.Identity{
		AccountID:     account.ID,
		Username:      account.Username,
		Email:         account.Email,
		Authenticated: true,
		Superuser:     account.IsSuperuser,
		Groups:        account.GroupNames(),
		Features:      access.FeatureSet{},
	}
	if account.Profile != nil {
		id.AgencyID = account.Profile.AgencyID
	}

	if id.AgencyID != nil {
		sub, err := s.subscriptions.FindByAgencyID(ctx, *id.AgencyID)
		if err != nil {
			s.logger.ErrorContext(ctx, "load agency subscription",
				slog.String("agency_id", id.AgencyID.String()),
				slog.Any("error", err))
		} else if sub != nil && sub.IsActiveAt(s.now().Unix()) {
			id.HasActiveSubscription = true
			if sub.Plan != nil {
				id.Features = sub.Plan.FeatureSet()
			}
		}
	}

	if id.Superuser {
		id.Features = access.NewFeatureSet(access.AllFeatures()...)
	}
	return id, nil
}
