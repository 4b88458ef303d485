package testutil

import (
	"context"
	"time"

	"github.com/hirelane/billing/internal/config"
	"github.com/hirelane/billing/internal/domain/auditlog"
	"github.com/hirelane/billing/internal/domain/creditusage"
	"github.com/hirelane/billing/internal/domain/invoice"
	"github.com/hirelane/billing/internal/domain/plan"
	"github.com/hirelane/billing/internal/domain/referral"
	"github.com/hirelane/billing/internal/domain/subscription"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/postgres"
	"github.com/hirelane/billing/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	PlanRepo         plan.Repository
	SubscriptionRepo subscription.Repository
	CreditUsageRepo  creditusage.Repository
	ReferralRepo     referral.Repository
	InvoiceRepo      invoice.Repository
	AuditLogRepo     auditlog.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	db      postgres.IClient
	gateway *FakeGateway
	logger  *logger.Logger
	config  *config.Configuration
	now     time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := &config.Configuration{
		Deployment: config.DeploymentConfig{Mode: types.ModeLocal},
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
	}
	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		PlanRepo:         NewInMemoryPlanStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		CreditUsageRepo:  NewInMemoryCreditUsageStore(),
		ReferralRepo:     NewInMemoryReferralStore(),
		InvoiceRepo:      NewInMemoryInvoiceStore(),
		AuditLogRepo:     NewInMemoryAuditLogStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.gateway = NewFakeGateway()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.PlanRepo.(*InMemoryPlanStore).Clear()
	s.stores.SubscriptionRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.CreditUsageRepo.(*InMemoryCreditUsageStore).Clear()
	s.stores.ReferralRepo.(*InMemoryReferralStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.AuditLogRepo.(*InMemoryAuditLogStore).Clear()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) SetContext(ctx context.Context) {
	s.ctx = ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
