package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/hirelane/billing/internal/domain/creditusage"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
)

type InMemoryCreditUsageStore struct {
	mu     sync.RWMutex
	usages map[string]*creditusage.CreditUsage
}

func NewInMemoryCreditUsageStore() *InMemoryCreditUsageStore {
	return &InMemoryCreditUsageStore{
		usages: make(map[string]*creditusage.CreditUsage),
	}
}

func (s *InMemoryCreditUsageStore) Create(ctx context.Context, usage *creditusage.CreditUsage) error {
	if err := usage.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usages[usage.ID]; exists {
		return ierr.NewError("credit usage already exists").
			WithHint("A usage entry with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	cp := *usage
	s.usages[usage.ID] = &cp
	return nil
}

func (s *InMemoryCreditUsageStore) ListBySubscription(ctx context.Context, subscriptionID string, filter types.Filter) ([]*creditusage.CreditUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*creditusage.CreditUsage
	for _, u := range s.usages {
		if u.SubscriptionID != subscriptionID || u.TenantID != types.GetTenantID(ctx) {
			continue
		}
		cp := *u
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UsedAt.After(result[j].UsedAt)
	})
	return result, nil
}

func (s *InMemoryCreditUsageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usages = make(map[string]*creditusage.CreditUsage)
}
