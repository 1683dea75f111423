package progresslog

import (
	"context"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Show runs the progress log display action. The owner sees both draft and
// published logs.
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

func (h *showHandler) Load(ctx context.Context, req *pipeline.Request) (domain.ProgressLog, error) {
	return h.svc.logs.FindByID(ctx, req.ID)
}

func (h *showHandler) Bind(req *pipeline.Request, form *pipeline.Form, log domain.ProgressLog) domain.ProgressLog {
	return log
}

func (h *showHandler) Validate(ctx context.Context, log domain.ProgressLog, errs *pipeline.ErrorSet) error {
	return nil
}

func (h *showHandler) Perform(ctx context.Context, log domain.ProgressLog) (domain.ProgressLog, error) {
	return log, nil
}

func (h *showHandler) Unbind(ctx context.Context, log domain.ProgressLog) (pipeline.Dataset, error) {
	return h.svc.logDataset(ctx, h.req.Principal, log)
}
