package testutil

import (
	"context"
	"sync"

	"github.com/hirelane/billing/internal/domain/plan"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
)

type InMemoryPlanStore struct {
	mu    sync.RWMutex
	plans map[string]*plan.Plan
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		plans: make(map[string]*plan.Plan),
	}
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[p.ID]; exists {
		return ierr.NewError("plan already exists").
			WithHint("A plan with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	for _, existing := range s.plans {
		if existing.Name == p.Name {
			return ierr.NewError("plan tier already exists").
				WithHint("A plan for this tier already exists").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	cp := *p
	s.plans[p.ID] = &cp
	return nil
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, exists := s.plans[id]; exists {
		cp := *p
		return &cp, nil
	}
	return nil, ierr.NewError("plan not found").
		WithHint("Plan does not exist").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPlanStore) GetByTier(ctx context.Context, tier types.PlanTier) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.plans {
		if p.Name == tier {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ierr.NewError("plan not found").
		WithHint("Plan does not exist").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPlanStore) List(ctx context.Context, filter types.Filter) ([]*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*plan.Plan
	for _, p := range s.plans {
		cp := *p
		result = append(result, &cp)
	}
	return result, nil
}

func (s *InMemoryPlanStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = make(map[string]*plan.Plan)
}
