package progresslog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Create runs the progress log create action: a fresh draft log bound from
// the submitted fields under a contract the client owns.
func (s *Service) Create(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &createHandler{svc: s, req: req}, req)
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "progress log created", "actor_id", req.Principal.ActorID)
	}
	return res, nil
}

type createHandler struct {
	svc *Service
	req *pipeline.Request
}

func (h *createHandler) Authorise(ctx context.Context, req *pipeline.Request) (bool, error) {
	return req.Principal.HasRole(domain.RoleClient), nil
}

func (h *createHandler) Load(ctx context.Context, req *pipeline.Request) (domain.ProgressLog, error) {
	now := time.Now().UTC()
	return domain.ProgressLog{
		ID:        uuid.New(),
		DraftMode: true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (h *createHandler) Bind(req *pipeline.Request, form *pipeline.Form, log domain.ProgressLog) domain.ProgressLog {
	return bindLog(form, log)
}

func (h *createHandler) Validate(ctx context.Context, log domain.ProgressLog, errs *pipeline.ErrorSet) error {
	return h.svc.validateLog(ctx, h.req.Principal, log, errs)
}

func (h *createHandler) Perform(ctx context.Context, log domain.ProgressLog) (domain.ProgressLog, error) {
	if err := h.svc.logs.Insert(ctx, log); err != nil {
		return domain.ProgressLog{}, err
	}
	return log, nil
}

func (h *createHandler) Unbind(ctx context.Context, log domain.ProgressLog) (pipeline.Dataset, error) {
	return h.svc.logDataset(ctx, h.req.Principal, log)
}
