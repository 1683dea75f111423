// Package auditrecord implements the auditor-facing actions on audit
// records: create, update, publish, list and show. Every action runs through
// the pipeline stages; this package supplies the per-action handlers and the
// shared validation rules.
package auditrecord

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
	"github.com/rmarrand/sponsorhub-backend/pkg/moment"
)

type recordRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.AuditRecord, error)
	FindByCode(ctx context.Context, code string) (domain.AuditRecord, error)
	ListByAuditor(ctx context.Context, auditorID uuid.UUID, f domain.ListFilter) ([]domain.AuditRecord, error)
	Insert(ctx context.Context, rec domain.AuditRecord) error
	Update(ctx context.Context, rec domain.AuditRecord) error
}

type codeAuditRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.CodeAudit, error)
	ListByAuditor(ctx context.Context, auditorID uuid.UUID) ([]domain.CodeAudit, error)
}

// Service provides the audit record actions.
type Service struct {
	records recordRepo
	audits  codeAuditRepo
	log     *slog.Logger
}

// NewService creates a new audit record service.
func NewService(log *slog.Logger, records recordRepo, audits codeAuditRepo) *Service {
	return &Service{
		records: records,
		audits:  audits,
		log:     log.With("service", "audit_record"),
	}
}

// owned resolves the record's owner chain (record → code audit → auditor) and
// reports whether the principal may act on it. Fails closed on a missing
// record via domain.ErrNotFound, which the pipeline renders as forbidden.
func (s *Service) owned(ctx context.Context, p domain.Principal, id uuid.UUID, requireDraft bool) (bool, error) {
	if !p.HasRole(domain.RoleAuditor) {
		return false, nil
	}

	rec, err := s.records.FindByID(ctx, id)
	if err != nil {
		return false, err
	}

	audit, err := s.audits.FindByID(ctx, rec.CodeAuditID)
	if err != nil {
		return false, err
	}

	if audit.AuditorID != p.ActorID {
		return false, nil
	}
	if requireDraft && !rec.DraftMode {
		return false, nil
	}

	return true, nil
}

// bindRecord copies the whitelisted submitted fields onto the record.
// Conversion failures are recorded by the form and leave prior values alone.
// An explicitly empty finalPeriod or optionalLink clears the value.
func bindRecord(form *pipeline.Form, rec domain.AuditRecord) domain.AuditRecord {
	if v, ok := form.String("code"); ok {
		rec.Code = v
	}
	if v, ok := form.Time("initialPeriod"); ok {
		rec.InitialPeriod = v
	}
	if raw, ok := form.String("finalPeriod"); ok {
		if raw == "" {
			rec.FinalPeriod = nil
		} else if v, ok := form.Time("finalPeriod"); ok {
			rec.FinalPeriod = &v
		}
	}
	if v, ok := form.String("mark"); ok {
		rec.Mark = domain.Mark(v)
	}
	if v, ok := form.String("optionalLink"); ok {
		if v == "" {
			rec.OptionalLink = nil
		} else {
			rec.OptionalLink = &v
		}
	}
	if v, ok := form.UUID("codeAudit"); ok {
		rec.CodeAuditID = v
	}
	return rec
}

// validateRecord runs the audit record rule set. Rules for a field already
// flagged by binding are skipped; first error wins.
func (s *Service) validateRecord(ctx context.Context, p domain.Principal, rec domain.AuditRecord, errs *pipeline.ErrorSet) error {
	if !errs.Has("code") {
		errs.State(rec.Code != "", "code", "required")
	}
	if !errs.Has("code") {
		existing, err := s.records.FindByCode(ctx, rec.Code)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return err
		default:
			errs.State(existing.ID == rec.ID, "code", "duplicated")
		}
	}

	if !errs.Has("initialPeriod") {
		errs.State(!rec.InitialPeriod.IsZero(), "initialPeriod", "required")
	}
	if !errs.Has("finalPeriod") && rec.FinalPeriod != nil {
		errs.State(moment.After(*rec.FinalPeriod, rec.InitialPeriod), "finalPeriod", "invalid-final-period")
	}

	if !errs.Has("mark") {
		errs.State(rec.Mark.IsValid(), "mark", "invalid-choice")
	}

	if !errs.Has("codeAudit") {
		if rec.CodeAuditID == uuid.Nil {
			errs.Add("codeAudit", "invalid-reference")
			return nil
		}
		audit, err := s.audits.FindByID(ctx, rec.CodeAuditID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			errs.Add("codeAudit", "invalid-reference")
		case err != nil:
			return err
		default:
			errs.State(audit.AuditorID == p.ActorID, "codeAudit", "invalid-reference")
		}
	}

	return nil
}

// recordDataset builds the re-display dataset: the record's fields plus the
// mark and code audit choice lists.
func (s *Service) recordDataset(ctx context.Context, p domain.Principal, rec domain.AuditRecord) (pipeline.Dataset, error) {
	audits, err := s.audits.ListByAuditor(ctx, p.ActorID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(audits))
	labels := make([]string, len(audits))
	for i, a := range audits {
		keys[i] = a.ID.String()
		labels[i] = a.Code
	}
	auditChoices := pipeline.ChoicesFrom(keys, labels, rec.CodeAuditID.String())

	markKeys := make([]string, 0, len(domain.AllMarks()))
	for _, m := range domain.AllMarks() {
		markKeys = append(markKeys, m.String())
	}
	markChoices := pipeline.ChoicesFrom(markKeys, markKeys, rec.Mark.String())

	optionalLink := ""
	if rec.OptionalLink != nil {
		optionalLink = *rec.OptionalLink
	}

	ds := pipeline.Dataset{}.
		Put("id", rec.ID.String()).
		Put("code", rec.Code).
		PutTime("initialPeriod", rec.InitialPeriod).
		PutOptionalTime("finalPeriod", rec.FinalPeriod).
		Put("mark", markChoices.Selected()).
		Put("marks", markChoices).
		Put("optionalLink", optionalLink).
		Put("draftMode", rec.DraftMode).
		Put("codeAudit", auditChoices.Selected()).
		Put("codeAudits", auditChoices)

	return ds, nil
}

// listFilter reads the optional draft filter from the submitted fields.
func listFilter(req *pipeline.Request) domain.ListFilter {
	if v, ok := req.Fields["draft"]; ok && v != "" {
		d := v == "true"
		return domain.ListFilter{Draft: &d}
	}
	return domain.ListFilter{}
}
