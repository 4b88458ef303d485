package postgres

import (
	"context"

	"github.com/hirelane/billing/internal/cache"
	"github.com/hirelane/billing/internal/domain/plan"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/postgres"
	"github.com/hirelane/billing/internal/types"
)

type planRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewPlanRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) plan.Repository {
	return &planRepository{db: db, logger: logger, cache: cache}
}

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO plans (
			id,
			name,
			description,
			price,
			billing_cycle,
			credits,
			tenant_id,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:name,
			:description,
			:price,
			:billing_cycle,
			:credits,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)`

	r.logger.Debugw("creating plan",
		"plan_id", p.ID,
		"tier", p.Name,
	)

	_, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create plan").
			Mark(ierr.ErrDatabase)
	}

	r.cache.DeleteByPrefix(ctx, cache.PrefixPlan)
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	if cached := r.getCache(ctx, "id", id); cached != nil {
		return cached, nil
	}

	query := `
		SELECT * FROM plans
		WHERE id = :id
		AND status = :status`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query plan").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("plan not found").
			WithHint("Plan does not exist").
			WithReportableDetails(map[string]any{
				"plan_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var p plan.Plan
	if err := rows.StructScan(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan plan").
			Mark(ierr.ErrDatabase)
	}

	r.setCache(ctx, &p)
	return &p, nil
}

func (r *planRepository) GetByTier(ctx context.Context, tier types.PlanTier) (*plan.Plan, error) {
	if cached := r.getCache(ctx, "tier", tier); cached != nil {
		return cached, nil
	}

	query := `
		SELECT * FROM plans
		WHERE name = :name
		AND status = :status`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"name":   tier,
		"status": types.StatusPublished,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query plan").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("plan not found").
			WithHint("No plan exists for this tier").
			WithReportableDetails(map[string]any{
				"tier": tier,
			}).
			Mark(ierr.ErrNotFound)
	}

	var p plan.Plan
	if err := rows.StructScan(&p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan plan").
			Mark(ierr.ErrDatabase)
	}

	r.setCache(ctx, &p)
	return &p, nil
}

func (r *planRepository) List(ctx context.Context, filter types.Filter) ([]*plan.Plan, error) {
	filter.Sanitize()

	query := `
		SELECT * FROM plans
		WHERE status = :status
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"status": types.StatusPublished,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list plans").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var plans []*plan.Plan
	for rows.Next() {
		var p plan.Plan
		if err := rows.StructScan(&p); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan plan").
				Mark(ierr.ErrDatabase)
		}
		plans = append(plans, &p)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating plan rows").
			Mark(ierr.ErrDatabase)
	}

	return plans, nil
}

// getCache fetches a plan from the cache by lookup kind ("id" or "tier")
func (r *planRepository) getCache(ctx context.Context, kind string, value interface{}) *plan.Plan {
	key := cache.GenerateKey(cache.PrefixPlan, kind, value)
	if v, found := r.cache.Get(ctx, key); found {
		if p, ok := v.(*plan.Plan); ok {
			return p
		}
	}
	return nil
}

// setCache stores a plan under both its id and tier keys. The catalog is
// read-mostly, so a stale window of DefaultExpiration is acceptable; Create
// invalidates the whole prefix anyway.
func (r *planRepository) setCache(ctx context.Context, p *plan.Plan) {
	r.cache.Set(ctx, cache.GenerateKey(cache.PrefixPlan, "id", p.ID), p, cache.DefaultExpiration)
	r.cache.Set(ctx, cache.GenerateKey(cache.PrefixPlan, "tier", p.Name), p, cache.DefaultExpiration)
}
