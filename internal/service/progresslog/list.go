package progresslog

import (
	"context"
	"strconv"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// List runs the progress log list action: every log hanging off one of the
// client's contracts, optionally filtered by draft state.
func (s *Service) List(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	return pipeline.Run(ctx, &listHandler{svc: s, req: req}, req)
}

type listHandler struct {
	svc *Service
	req *pipeline.Request
}

func (h *listHandler) Authorise(ctx context.Context, req *pipeline.Request) (bool, error) {
	return req.Principal.HasRole(domain.RoleClient), nil
}

func (h *listHandler) Load(ctx context.Context, req *pipeline.Request) ([]domain.ProgressLog, error) {
	return h.svc.logs.ListByClient(ctx, req.Principal.ActorID, listFilter(req))
}

func (h *listHandler) Bind(req *pipeline.Request, form *pipeline.Form, logs []domain.ProgressLog) []domain.ProgressLog {
	return logs
}

func (h *listHandler) Validate(ctx context.Context, logs []domain.ProgressLog, errs *pipeline.ErrorSet) error {
	return nil
}

func (h *listHandler) Perform(ctx context.Context, logs []domain.ProgressLog) ([]domain.ProgressLog, error) {
	return logs, nil
}

func (h *listHandler) Unbind(ctx context.Context, logs []domain.ProgressLog) (pipeline.Dataset, error) {
	rows := make([]pipeline.Dataset, len(logs))
	for i, log := range logs {
		rows[i] = pipeline.Dataset{}.
			Put("id", log.ID.String()).
			Put("recordId", log.RecordID).
			Put("completeness", strconv.FormatFloat(log.Completeness, 'f', -1, 64)).
			PutTime("registrationMoment", log.RegistrationMoment).
			Put("responsiblePerson", log.ResponsiblePerson).
			Put("draftMode", log.DraftMode)
	}
	return pipeline.Dataset{}.Put("records", rows), nil
}
