package service

import (
	"context"

	"github.com/hirelane/billing/internal/api/dto"
	"github.com/hirelane/billing/internal/domain/auditlog"
	"github.com/hirelane/billing/internal/domain/plan"
	"github.com/hirelane/billing/internal/types"
	"github.com/samber/lo"
)

type PlanService interface {
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
	ListPlans(ctx context.Context, filter types.Filter) (*dto.ListPlansResponse, error)
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{ServiceParams: params}
}

func (s *planService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToPlan(ctx)
	if err := s.PlanRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.audit(ctx, auditlog.ActionCreatePlan, types.Metadata{
		"plan_id": p.ID,
		"name":    p.Name.String(),
	})

	return &dto.PlanResponse{Plan: p}, nil
}

func (s *planService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PlanResponse{Plan: p}, nil
}

func (s *planService) ListPlans(ctx context.Context, filter types.Filter) (*dto.ListPlansResponse, error) {
	plans, err := s.PlanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(plans, func(p *plan.Plan, _ int) *dto.PlanResponse {
		return &dto.PlanResponse{Plan: p}
	})

	return &dto.ListPlansResponse{
		Items: items,
		Total: len(items),
	}, nil
}

// audit writes a best-effort audit entry. Audit failures on read-mostly
// paths are logged and swallowed so they never fail the request.
func (s *planService) audit(ctx context.Context, action string, details types.Metadata) {
	entry := &auditlog.AuditLog{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_LOG),
		UserID:    types.GetUserID(ctx),
		Action:    action,
		Details:   details,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := s.AuditRepo.Create(ctx, entry); err != nil {
		s.Logger.Errorw("failed to write audit log", "action", action, "error", err)
	}
}
