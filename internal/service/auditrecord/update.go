package auditrecord

import (
	"context"
	"time"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Update runs the audit record update action. Only draft records owned by
// the requesting auditor are eligible.
func (s *Service) Update(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &updateHandler{svc: s, req: req}, req)
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "audit record updated", "record_id", req.ID)
	}
	return res, nil
}

type updateHandler struct {
	svc *Service
	req *pipeline.Request
}

func (h *updateHandler) Authorise(ctx context.Context, req *pipeline.Request) (bool, error) {
	return h.svc.owned(ctx, req.Principal, req.ID, true)
}

func (h *updateHandler) Load(ctx context.Context, req *pipeline.Request) (domain.AuditRecord, error) {
	return h.svc.records.FindByID(ctx, req.ID)
}

func (h *updateHandler) Bind(req *pipeline.Request, form *pipeline.Form, rec domain.AuditRecord) domain.AuditRecord {
	return bindRecord(form, rec)
}

func (h *updateHandler) Validate(ctx context.Context, rec domain.AuditRecord, errs *pipeline.ErrorSet) error {
	return h.svc.validateRecord(ctx, h.req.Principal, rec, errs)
}

func (h *updateHandler) Perform(ctx context.Context, rec domain.AuditRecord) (domain.AuditRecord, error) {
	rec.UpdatedAt = time.Now().UTC()
	if err := h.svc.records.Update(ctx, rec); err != nil {
		return domain.AuditRecord{}, err
	}
	return rec, nil
}

func (h *updateHandler) Unbind(ctx context.Context, rec domain.AuditRecord) (pipeline.Dataset, error) {
	return h.svc.recordDataset(ctx, h.req.Principal, rec)
}
