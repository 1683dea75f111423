package auditrecord

import (
	"context"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// List runs the audit record list action: every record hanging off one of the
// auditor's code audits, optionally filtered by draft state.
func (s *Service) List(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	return pipeline.Run(ctx, &listHandler{svc: s, req: req}, req)
}

type listHandler struct {
	svc *Service
	req *pipeline.Request
}

func (h *listHandler) Authorise(ctx context.Context, req *pipeline.Request) (bool, error) {
	return req.Principal.HasRole(domain.RoleAuditor), nil
}

func (h *listHandler) Load(ctx context.Context, req *pipeline.Request) ([]domain.AuditRecord, error) {
	return h.svc.records.ListByAuditor(ctx, req.Principal.ActorID, listFilter(req))
}

func (h *listHandler) Bind(req *pipeline.Request, form *pipeline.Form, records []domain.AuditRecord) []domain.AuditRecord {
	return records
}

func (h *listHandler) Validate(ctx context.Context, records []domain.AuditRecord, errs *pipeline.ErrorSet) error {
	return nil
}

func (h *listHandler) Perform(ctx context.Context, records []domain.AuditRecord) ([]domain.AuditRecord, error) {
	return records, nil
}

func (h *listHandler) Unbind(ctx context.Context, records []domain.AuditRecord) (pipeline.Dataset, error) {
	rows := make([]pipeline.Dataset, len(records))
	for i, rec := range records {
		rows[i] = pipeline.Dataset{}.
			Put("id", rec.ID.String()).
			Put("code", rec.Code).
			PutTime("initialPeriod", rec.InitialPeriod).
			PutOptionalTime("finalPeriod", rec.FinalPeriod).
			Put("mark", rec.Mark.String()).
			Put("draftMode", rec.DraftMode)
	}
	return pipeline.Dataset{}.Put("records", rows), nil
}
