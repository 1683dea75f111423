package sponsorship

import (
	"context"
	"time"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Update runs the sponsorship update action. Only draft sponsorships owned by
// the requesting sponsor are eligible.
func (s *Service) Update(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &updateHandler{svc: s, req: req}, req)
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "sponsorship updated", "sponsorship_id", req.ID)
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

func (h *updateHandler) Load(ctx context.Context, req *pipeline.Request) (domain.Sponsorship, error) {
	return h.svc.sponsorships.FindByID(ctx, req.ID)
}

func (h *updateHandler) Bind(req *pipeline.Request, form *pipeline.Form, sp domain.Sponsorship) domain.Sponsorship {
	return bindSponsorship(req, form, sp)
}

func (h *updateHandler) Validate(ctx context.Context, sp domain.Sponsorship, errs *pipeline.ErrorSet) error {
	return h.svc.validateSponsorship(ctx, sp, errs)
}

func (h *updateHandler) Perform(ctx context.Context, sp domain.Sponsorship) (domain.Sponsorship, error) {
	sp.UpdatedAt = time.Now().UTC()
	if err := h.svc.sponsorships.Update(ctx, sp); err != nil {
		return domain.Sponsorship{}, err
	}
	return sp, nil
}

func (h *updateHandler) Unbind(ctx context.Context, sp domain.Sponsorship) (pipeline.Dataset, error) {
	return h.svc.sponsorshipDataset(ctx, sp)
}
