package progresslog

import (
	"context"
	"time"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Update runs the progress log update action. Only draft logs owned by the
// requesting client are eligible.
func (s *Service) Update(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &updateHandler{svc: s, req: req}, req)
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "progress log updated", "log_id", req.ID)
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

func (h *updateHandler) Load(ctx context.Context, req *pipeline.Request) (domain.ProgressLog, error) {
	return h.svc.logs.FindByID(ctx, req.ID)
}

func (h *updateHandler) Bind(req *pipeline.Request, form *pipeline.Form, log domain.ProgressLog) domain.ProgressLog {
	return bindLog(form, log)
}

func (h *updateHandler) Validate(ctx context.Context, log domain.ProgressLog, errs *pipeline.ErrorSet) error {
	return h.svc.validateLog(ctx, h.req.Principal, log, errs)
}

func (h *updateHandler) Perform(ctx context.Context, log domain.ProgressLog) (domain.ProgressLog, error) {
	log.UpdatedAt = time.Now().UTC()
	if err := h.svc.logs.Update(ctx, log); err != nil {
		return domain.ProgressLog{}, err
	}
	return log, nil
}

func (h *updateHandler) Unbind(ctx context.Context, log domain.ProgressLog) (pipeline.Dataset, error) {
	return h.svc.logDataset(ctx, h.req.Principal, log)
}
