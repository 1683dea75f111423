package auditrecord

import (
	"context"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Show runs the audit record display action. The owner sees both draft and
// published records.
func (s *Service) Show(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	return pipeline.Run(ctx, &showHandler{svc: s, req: req}, req)
}

type showHandler struct {
	svc *Service
	req *pipeline.Request
}

func (h *showHandler) Authorise(ctx context.Context, req *pipeline.Request) (bool, error) {
	return h.svc.owned(ctx, req.Principal, req.ID, false)
}

func (h *showHandler) Load(ctx context.Context, req *pipeline.Request) (domain.AuditRecord, error) {
	return h.svc.records.FindByID(ctx, req.ID)
}

func (h *showHandler) Bind(req *pipeline.Request, form *pipeline.Form, rec domain.AuditRecord) domain.AuditRecord {
	return rec
}

func (h *showHandler) Validate(ctx context.Context, rec domain.AuditRecord, errs *pipeline.ErrorSet) error {
	return nil
}

func (h *showHandler) Perform(ctx context.Context, rec domain.AuditRecord) (domain.AuditRecord, error) {
	return rec, nil
}

func (h *showHandler) Unbind(ctx context.Context, rec domain.AuditRecord) (pipeline.Dataset, error) {
	return h.svc.recordDataset(ctx, h.req.Principal, rec)
}
