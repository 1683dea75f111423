package auditrecord

import (
	"context"
	"time"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Publish runs the audit record publish action: the submitted fields are
// re-bound and re-validated, and on success the record leaves draft mode for
// good.
func (s *Service) Publish(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &publishHandler{svc: s, req: req}, req)
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "audit record published", "record_id", req.ID)
	}
	return res, nil
}

type publishHandler struct {
	svc *Service
	req *pipeline.Request
}

func (h *publishHandler) Authorise(ctx context.Context, req *pipeline.Request) (bool, error) {
	return h.svc.owned(ctx, req.Principal, req.ID, true)
}

func (h *publishHandler) Load(ctx context.Context, req *pipeline.Request) (domain.AuditRecord, error) {
	return h.svc.records.FindByID(ctx, req.ID)
}

func (h *publishHandler) Bind(req *pipeline.Request, form *pipeline.Form, rec domain.AuditRecord) domain.AuditRecord {
	return bindRecord(form, rec)
}

func (h *publishHandler) Validate(ctx context.Context, rec domain.AuditRecord, errs *pipeline.ErrorSet) error {
	return h.svc.validateRecord(ctx, h.req.Principal, rec, errs)
}

func (h *publishHandler) Perform(ctx context.Context, rec domain.AuditRecord) (domain.AuditRecord, error) {
	rec.DraftMode = false
	rec.UpdatedAt = time.Now().UTC()
	if err := h.svc.records.Update(ctx, rec); err != nil {
		return domain.AuditRecord{}, err
	}
	return rec, nil
}

func (h *publishHandler) Unbind(ctx context.Context, rec domain.AuditRecord) (pipeline.Dataset, error) {
	return h.svc.recordDataset(ctx, h.req.Principal, rec)
}
