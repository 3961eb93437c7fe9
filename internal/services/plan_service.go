package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"shiftwise/internal/models/db_models"
	"shiftwise/internal/models/response_models"
	"shiftwise/internal/repositories"
	"shiftwise/pkg/utils"
)

type PlanServiceInterface interface {
	ListForAdmin(ctx context.Context) ([]response_models.PlanView, error)
	SyncFromProvider(ctx context.Context, currency string) (*SyncResult, error)
}

// SyncResult summarises one plan sync run.
type SyncResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped []string `json:"skipped,omitempty"`
}

func NewPlanService(planRepo repositories.IPlanRepository, gateway BillingGateway, logger *slog.Logger) PlanServiceInterface {
	return &PlanService{
		planRepo: planRepo,
		gateway:  gateway,
		logger:   logger.With(slog.String("component", "plans")),
	}
}

type PlanService struct {
	planRepo repositories.IPlanRepository
	gateway  BillingGateway
	logger   *slog.Logger
}

func (p *PlanService) ListForAdmin(ctx context.Context) ([]response_models.PlanView, error) {
	plans, err := p.planRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return response_models.NewPlanViews(plans), nil
}

// SyncFromProvider upserts a local plan for every active provider price in
// currency, keyed by product name and billing cycle. Feature flags and shift
// limits are left as configured locally.
func (p *PlanService) SyncFromProvider(ctx context.Context, currency string) (*SyncResult, error) {
	prices, err := p.gateway.ListPrices(ctx, currency)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	for _, price := range prices {
		name := strings.TrimSpace(price.ProductName)
		if name == "" {
			result.Skipped = append(result.Skipped, price.ID)
			p.logger.WarnContext(ctx, "price has no product name", slog.String("price_id", price.ID))
			continue
		}
		cycle, err := db_models.BillingCycleFromInterval(price.Interval)
		if err != nil {
			result.Skipped = append(result.Skipped, price.ID)
			p.logger.WarnContext(ctx, "skipping price", slog.String("price_id", price.ID), slog.Any("error", err))
			continue
		}

		plan, err := p.planRepo.FindByPriceID(ctx, price.ID)
		if err != nil {
			return result, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if plan == nil {
			plan, err = p.planRepo.FindByNameAndCycle(ctx, name, cycle)
			if err != nil {
				return result, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
			}
		}
		created := plan == nil
		if created {
			plan = &db_models.Plan{Name: name, BillingCycle: cycle}
		}

		priceID, productID := price.ID, price.ProductID
		plan.Name = name
		plan.BillingCycle = cycle
		plan.Description = price.ProductDescription
		plan.StripePriceID = &priceID
		if productID != "" {
			plan.StripeProductID = &productID
		}
		plan.PriceMinor = db_models.PriceMinorFromDecimal(price.UnitAmount)
		plan.Currency = strings.ToLower(price.Currency)
		plan.IsActive = true

		if err := p.planRepo.Save(ctx, plan); err != nil {
			return result, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
		p.logger.InfoContext(ctx, "plan synced",
			slog.String("plan", name),
			slog.String("cycle", string(cycle)),
			slog.String("price_id", price.ID),
			slog.Bool("created", created))
	}
	return result, nil
}
