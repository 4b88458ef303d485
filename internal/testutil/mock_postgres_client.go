package testutil

import (
	"context"
	"sync"

	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/postgres"
)

// MockPostgresClient stands in for the real client in service tests. WithTx
// sections run under a single mutex, which models the row lock the real
// implementation takes on the subscription: concurrent transactional
// sections execute one at a time.
type MockPostgresClient struct {
	mu     sync.Mutex
	logger *logger.Logger
}

func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{logger: logger}
}

func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(ctx)
}
