package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/hirelane/billing/internal/domain/invoice"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
)

type InMemoryInvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]*invoice.Invoice
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		invoices: make(map[string]*invoice.Invoice),
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; exists {
		return ierr.NewError("invoice already exists").
			WithHint("An invoice with this ID already exists").
			Mark(ierr.ErrAlreadyExists)
	}

	cp := *inv
	s.invoices[inv.ID] = &cp
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, exists := s.invoices[id]
	if !exists || inv.TenantID != types.GetTenantID(ctx) {
		return nil, notFoundInvoice()
	}
	cp := *inv
	return &cp, nil
}

func (s *InMemoryInvoiceStore) GetUnpaidBySubscription(ctx context.Context, subscriptionID string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var oldest *invoice.Invoice
	for _, inv := range s.invoices {
		if inv.SubscriptionID != subscriptionID || inv.InvoiceStatus != types.InvoiceStatusUnpaid {
			continue
		}
		if oldest == nil || inv.InvoiceDate.Before(oldest.InvoiceDate) {
			oldest = inv
		}
	}
	if oldest == nil {
		return nil, notFoundInvoice()
	}
	cp := *oldest
	return &cp, nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.invoices[inv.ID]
	if !exists {
		return notFoundInvoice()
	}

	stored.InvoiceStatus = inv.InvoiceStatus
	stored.PaymentID = inv.PaymentID
	return nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter types.Filter) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*invoice.Invoice
	for _, inv := range s.invoices {
		if inv.TenantID != types.GetTenantID(ctx) {
			continue
		}
		cp := *inv
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].InvoiceDate.After(result[j].InvoiceDate)
	})
	return result, nil
}

func (s *InMemoryInvoiceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = make(map[string]*invoice.Invoice)
}

func notFoundInvoice() error {
	return ierr.NewError("invoice not found").
		WithHint("Invoice does not exist").
		Mark(ierr.ErrNotFound)
}
