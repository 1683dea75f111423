// Package progresslog implements the client-facing actions on progress logs:
// create, update, publish, list and show. A progress log always hangs off a
// contract the client owns.
package progresslog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

type logRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.ProgressLog, error)
	FindByRecordID(ctx context.Context, recordID string) (domain.ProgressLog, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, f domain.ListFilter) ([]domain.ProgressLog, error)
	Insert(ctx context.Context, log domain.ProgressLog) error
	Update(ctx context.Context, log domain.ProgressLog) error
}

type contractRepo interface {
	FindContract(ctx context.Context, id uuid.UUID) (domain.Contract, error)
	ListContractsByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Contract, error)
}

// Service provides the progress log actions.
type Service struct {
	logs      logRepo
	contracts contractRepo
	log       *slog.Logger
}

// NewService creates a new progress log service.
func NewService(log *slog.Logger, logs logRepo, contracts contractRepo) *Service {
	return &Service{
		logs:      logs,
		contracts: contracts,
		log:       log.With("service", "progress_log"),
	}
}

// owned resolves the log's owner chain (log → contract → client) and reports
// whether the principal may act on it.
func (s *Service) owned(ctx context.Context, p domain.Principal, id uuid.UUID, requireDraft bool) (bool, error) {
	if !p.HasRole(domain.RoleClient) {
		return false, nil
	}

	log, err := s.logs.FindByID(ctx, id)
	if err != nil {
		return false, err
	}

	contract, err := s.contracts.FindContract(ctx, log.ContractID)
	if err != nil {
		return false, err
	}

	if contract.ClientID != p.ActorID {
		return false, nil
	}
	if requireDraft && !log.DraftMode {
		return false, nil
	}

	return true, nil
}

// bindLog copies the whitelisted submitted fields onto the log.
func bindLog(form *pipeline.Form, log domain.ProgressLog) domain.ProgressLog {
	if v, ok := form.String("recordId"); ok {
		log.RecordID = v
	}
	if v, ok := form.Float("completeness"); ok {
		log.Completeness = v
	}
	if v, ok := form.String("comment"); ok {
		log.Comment = v
	}
	if v, ok := form.Time("registrationMoment"); ok {
		log.RegistrationMoment = v
	}
	if v, ok := form.String("responsiblePerson"); ok {
		log.ResponsiblePerson = v
	}
	if v, ok := form.UUID("contract"); ok {
		log.ContractID = v
	}
	return log
}

// validateLog runs the progress log rule set.
func (s *Service) validateLog(ctx context.Context, p domain.Principal, log domain.ProgressLog, errs *pipeline.ErrorSet) error {
	if !errs.Has("recordId") {
		errs.State(log.RecordID != "", "recordId", "required")
	}
	if !errs.Has("recordId") {
		existing, err := s.logs.FindByRecordID(ctx, log.RecordID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return err
		default:
			errs.State(existing.ID == log.ID, "recordId", "duplicated")
		}
	}

	if !errs.Has("completeness") {
		errs.State(log.Completeness >= 0 && log.Completeness <= 100, "completeness", "out-of-range")
	}

	if !errs.Has("registrationMoment") {
		errs.State(!log.RegistrationMoment.IsZero(), "registrationMoment", "required")
	}
	if !errs.Has("responsiblePerson") {
		errs.State(log.ResponsiblePerson != "", "responsiblePerson", "required")
	}

	if !errs.Has("contract") {
		if log.ContractID == uuid.Nil {
			errs.Add("contract", "invalid-reference")
			return nil
		}
		contract, err := s.contracts.FindContract(ctx, log.ContractID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			errs.Add("contract", "invalid-reference")
		case err != nil:
			return err
		default:
			errs.State(contract.ClientID == p.ActorID, "contract", "invalid-reference")
		}
	}

	return nil
}

// logDataset builds the re-display dataset: the log's fields plus the
// contract choice list.
func (s *Service) logDataset(ctx context.Context, p domain.Principal, log domain.ProgressLog) (pipeline.Dataset, error) {
	contracts, err := s.contracts.ListContractsByClient(ctx, p.ActorID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(contracts))
	labels := make([]string, len(contracts))
	for i, c := range contracts {
		keys[i] = c.ID.String()
		labels[i] = c.Code
	}
	contractChoices := pipeline.ChoicesFrom(keys, labels, log.ContractID.String())

	ds := pipeline.Dataset{}.
		Put("id", log.ID.String()).
		Put("recordId", log.RecordID).
		Put("completeness", strconv.FormatFloat(log.Completeness, 'f', -1, 64)).
		Put("comment", log.Comment).
		PutTime("registrationMoment", log.RegistrationMoment).
		Put("responsiblePerson", log.ResponsiblePerson).
		Put("draftMode", log.DraftMode).
		Put("contract", contractChoices.Selected()).
		Put("contracts", contractChoices)

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
