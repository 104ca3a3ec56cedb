package repository

import (
	"context"

	"github.com/MartinT518/MomentumTracker-sub004/internal/models"
)

type SubscriptionPlanRepository struct {
	db DBTX
}

func NewSubscriptionPlanRepository(db DBTX) *SubscriptionPlanRepository {
	return &SubscriptionPlanRepository{db: db}
}

const subscriptionPlanColumns = `id, tier, name, price_cents, currency, billing_interval, stripe_price_id,
	features, created_at`

func scanSubscriptionPlan(row interface{ Scan(...any) error }) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := row.Scan(
		&plan.ID,
		&plan.Tier,
		&plan.Name,
		&plan.PriceCents,
		&plan.Currency,
		&plan.Interval,
		&plan.StripePriceID,
		&plan.Features,
		&plan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionPlanRepository) ListAll(ctx context.Context) ([]models.SubscriptionPlan, error) {
	query := `
		SELECT ` + subscriptionPlanColumns + `
		FROM subscription_plans
		ORDER BY price_cents
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]models.SubscriptionPlan, 0)
	for rows.Next() {
		plan, err := scanSubscriptionPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

func (r *SubscriptionPlanRepository) GetByTier(ctx context.Context, tier string) (*models.SubscriptionPlan, error) {
	query := `SELECT ` + subscriptionPlanColumns + ` FROM subscription_plans WHERE tier = $1`
	return scanSubscriptionPlan(r.db.QueryRow(ctx, query, tier))
}
