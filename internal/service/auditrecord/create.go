package auditrecord

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Create runs the audit record create action: a fresh draft record bound from
// the submitted fields under a code audit the auditor owns.
func (s *Service) Create(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &createHandler{svc: s, req: req}, req)
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "audit record created", "actor_id", req.Principal.ActorID)
	}
	return res, nil
}

type createHandler struct {
	svc *Service
	req *pipeline.Request
}

func (h *createHandler) Authorise(ctx context.Context, req *pipeline.Request) (bool, error) {
	return req.Principal.HasRole(domain.RoleAuditor), nil
}

func (h *createHandler) Load(ctx context.Context, req *pipeline.Request) (domain.AuditRecord, error) {
	now := time.Now().UTC()
	return domain.AuditRecord{
		ID:        uuid.New(),
		DraftMode: true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (h *createHandler) Bind(req *pipeline.Request, form *pipeline.Form, rec domain.AuditRecord) domain.AuditRecord {
	return bindRecord(form, rec)
}

func (h *createHandler) Validate(ctx context.Context, rec domain.AuditRecord, errs *pipeline.ErrorSet) error {
	return h.svc.validateRecord(ctx, h.req.Principal, rec, errs)
}

func (h *createHandler) Perform(ctx context.Context, rec domain.AuditRecord) (domain.AuditRecord, error) {
	if err := h.svc.records.Insert(ctx, rec); err != nil {
		return domain.AuditRecord{}, err
	}
	return rec, nil
}

func (h *createHandler) Unbind(ctx context.Context, rec domain.AuditRecord) (pipeline.Dataset, error) {
	return h.svc.recordDataset(ctx, h.req.Principal, rec)
}
