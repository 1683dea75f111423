package progresslog

import (
	"context"
	"time"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Publish runs the progress log publish action: the submitted fields are
// re-bound and re-validated, and on success the log leaves draft mode for
// good.
func (s *Service) Publish(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &publishHandler{svc: s, req: req}, req)
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "progress log published", "log_id", req.ID)
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

func (h *publishHandler) Load(ctx context.Context, req *pipeline.Request) (domain.ProgressLog, error) {
	return h.svc.logs.FindByID(ctx, req.ID)
}

func (h *publishHandler) Bind(req *pipeline.Request, form *pipeline.Form, log domain.ProgressLog) domain.ProgressLog {
	return bindLog(form, log)
}

func (h *publishHandler) Validate(ctx context.Context, log domain.ProgressLog, errs *pipeline.ErrorSet) error {
	return h.svc.validateLog(ctx, h.req.Principal, log, errs)
}

func (h *publishHandler) Perform(ctx context.Context, log domain.ProgressLog) (domain.ProgressLog, error) {
	log.DraftMode = false
	log.UpdatedAt = time.Now().UTC()
	if err := h.svc.logs.Update(ctx, log); err != nil {
		return domain.ProgressLog{}, err
	}
	return log, nil
}

func (h *publishHandler) Unbind(ctx context.Context, log domain.ProgressLog) (pipeline.Dataset, error) {
	return h.svc.logDataset(ctx, h.req.Principal, log)
}
