package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/hirelane/billing/internal/domain/auditlog"
	"github.com/hirelane/billing/internal/types"
)

type InMemoryAuditLogStore struct {
	mu      sync.RWMutex
	entries []*auditlog.AuditLog
}

func NewInMemoryAuditLogStore() *InMemoryAuditLogStore {
	return &InMemoryAuditLogStore{}
}

func (s *InMemoryAuditLogStore) Create(ctx context.Context, entry *auditlog.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *InMemoryAuditLogStore) List(ctx context.Context, filter types.Filter) ([]*auditlog.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*auditlog.AuditLog
	for _, entry := range s.entries {
		if entry.TenantID != types.GetTenantID(ctx) {
			continue
		}
		cp := *entry
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Actions returns every recorded action name in insertion order
func (s *InMemoryAuditLogStore) Actions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	actions := make([]string, 0, len(s.entries))
	for _, entry := range s.entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

func (s *InMemoryAuditLogStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
