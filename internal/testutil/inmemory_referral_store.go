package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/hirelane/billing/internal/domain/referral"
	ierr "github.com/hirelane/billing/internal/errors"
)

type InMemoryReferralStore struct {
	mu        sync.RWMutex
	referrals map[string]*referral.Referral
}

func NewInMemoryReferralStore() *InMemoryReferralStore {
	return &InMemoryReferralStore{
		referrals: make(map[string]*referral.Referral),
	}
}

func (s *InMemoryReferralStore) Create(ctx context.Context, ref *referral.Referral) error {
	if err := ref.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.referrals {
		if existing.ReferrerSubscriptionID == ref.ReferrerSubscriptionID &&
			existing.ReferredSubscriptionID == ref.ReferredSubscriptionID {
			return ierr.NewError("referral already exists for this pair").
				WithHint("This referral has already been recorded").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	cp := *ref
	s.referrals[ref.ID] = &cp
	return nil
}

func (s *InMemoryReferralStore) Get(ctx context.Context, id string) (*referral.Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, exists := s.referrals[id]
	if !exists {
		return nil, notFoundReferral()
	}
	cp := *ref
	return &cp, nil
}

func (s *InMemoryReferralStore) GetByPair(ctx context.Context, referrerID, referredID string) (*referral.Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ref := range s.referrals {
		if ref.ReferrerSubscriptionID == referrerID && ref.ReferredSubscriptionID == referredID {
			cp := *ref
			return &cp, nil
		}
	}
	return nil, notFoundReferral()
}

func (s *InMemoryReferralStore) ListByReferred(ctx context.Context, referredSubscriptionID string) ([]*referral.Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*referral.Referral
	for _, ref := range s.referrals {
		if ref.ReferredSubscriptionID != referredSubscriptionID {
			continue
		}
		cp := *ref
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *InMemoryReferralStore) IncrementInterviews(ctx context.Context, id string, amount int) (*referral.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, exists := s.referrals[id]
	if !exists {
		return nil, notFoundReferral()
	}

	ref.InterviewsCompleted += amount
	cp := *ref
	return &cp, nil
}

func (s *InMemoryReferralStore) MarkRewardGranted(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, exists := s.referrals[id]
	if !exists {
		return false, notFoundReferral()
	}

	if ref.RewardGranted {
		return false, nil
	}
	ref.RewardGranted = true
	return true, nil
}

func (s *InMemoryReferralStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referrals = make(map[string]*referral.Referral)
}

func notFoundReferral() error {
	return ierr.NewError("referral not found").
		WithHint("Referral does not exist").
		Mark(ierr.ErrNotFound)
}
