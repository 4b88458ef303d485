package testutil

import (
	"context"
	"sync"

	"github.com/hirelane/billing/internal/domain/subscription"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
)

// InMemorySubscriptionStore copies rows on every read and write, so a
// service mutating a returned model affects nothing until it calls back into
// the store. That mirrors how an aborted transaction leaves the database
// untouched.
type InMemorySubscriptionStore struct {
	mu   sync.RWMutex
	subs map[string]*subscription.Subscription
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subs: make(map[string]*subscription.Subscription),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subs[sub.ID]; exists {
		return ierr.NewError("subscription already exists").
			WithHint("A subscription with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	cp := *sub
	s.subs[sub.ID] = &cp
	return nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.subs[id]
	if !exists || sub.TenantID != types.GetTenantID(ctx) {
		return nil, notFoundSubscription()
	}
	cp := *sub
	return &cp, nil
}

func (s *InMemorySubscriptionStore) GetByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, exists := s.subs[id]
	if !exists {
		return nil, notFoundSubscription()
	}
	cp := *sub
	return &cp, nil
}

func (s *InMemorySubscriptionStore) GetForUpdate(ctx context.Context, id string) (*subscription.Subscription, error) {
	return s.Get(ctx, id)
}

func (s *InMemorySubscriptionStore) FindByTenant(ctx context.Context, tenantID string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *subscription.Subscription
	for _, sub := range s.subs {
		if sub.TenantID != tenantID {
			continue
		}
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, notFoundSubscription()
	}
	cp := *latest
	return &cp, nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.subs[sub.ID]
	if !exists {
		return notFoundSubscription()
	}

	stored.PaymentMethod = sub.PaymentMethod
	stored.PaymentID = sub.PaymentID
	stored.SubStatus = sub.SubStatus
	stored.AutoRenew = sub.AutoRenew
	stored.EndDate = sub.EndDate
	return nil
}

func (s *InMemorySubscriptionStore) UpdateBalances(ctx context.Context, sub *subscription.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.subs[sub.ID]
	if !exists {
		return notFoundSubscription()
	}

	stored.DailyCredits = sub.DailyCredits
	stored.ReferralCredits = sub.ReferralCredits
	stored.LastReset = sub.LastReset
	return nil
}

func (s *InMemorySubscriptionStore) IncrementReferralCredits(ctx context.Context, id string, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.subs[id]
	if !exists {
		return notFoundSubscription()
	}

	stored.ReferralCredits += amount
	return nil
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter types.Filter) ([]*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*subscription.Subscription
	for _, sub := range s.subs {
		if sub.TenantID != types.GetTenantID(ctx) {
			continue
		}
		cp := *sub
		result = append(result, &cp)
	}
	return result, nil
}

func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = make(map[string]*subscription.Subscription)
}

func notFoundSubscription() error {
	return ierr.NewError("subscription not found").
		WithHint("Subscription does not exist").
		Mark(ierr.ErrNotFound)
}
