package sponsorship

import (
	"context"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Show runs the sponsorship display action. The owner sees both draft and
// published sponsorships.
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

func (h *showHandler) Load(ctx context.Context, req *pipeline.Request) (domain.Sponsorship, error) {
	return h.svc.sponsorships.FindByID(ctx, req.ID)
}

func (h *showHandler) Bind(req *pipeline.Request, form *pipeline.Form, sp domain.Sponsorship) domain.Sponsorship {
	return sp
}

func (h *showHandler) Validate(ctx context.Context, sp domain.Sponsorship, errs *pipeline.ErrorSet) error {
	return nil
}

func (h *showHandler) Perform(ctx context.Context, sp domain.Sponsorship) (domain.Sponsorship, error) {
	return sp, nil
}

func (h *showHandler) Unbind(ctx context.Context, sp domain.Sponsorship) (pipeline.Dataset, error) {
	return h.svc.sponsorshipDataset(ctx, sp)
}
