package sponsorship

import (
	"context"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// List runs the sponsorship list action: every sponsorship owned by the
// requesting sponsor, optionally filtered by draft state.
func (s *Service) List(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	return pipeline.Run(ctx, &listHandler{svc: s, req: req}, req)
}

type listHandler struct {
	svc *Service
	req *pipeline.Request
}

func (h *listHandler) Authorise(ctx context.Context, req *pipeline.Request) (bool, error) {
	return req.Principal.HasRole(domain.RoleSponsor), nil
}

func (h *listHandler) Load(ctx context.Context, req *pipeline.Request) ([]domain.Sponsorship, error) {
	return h.svc.sponsorships.ListBySponsor(ctx, req.Principal.ActorID, listFilter(req))
}

func (h *listHandler) Bind(req *pipeline.Request, form *pipeline.Form, sponsorships []domain.Sponsorship) []domain.Sponsorship {
	return sponsorships
}

func (h *listHandler) Validate(ctx context.Context, sponsorships []domain.Sponsorship, errs *pipeline.ErrorSet) error {
	return nil
}

func (h *listHandler) Perform(ctx context.Context, sponsorships []domain.Sponsorship) ([]domain.Sponsorship, error) {
	return sponsorships, nil
}

func (h *listHandler) Unbind(ctx context.Context, sponsorships []domain.Sponsorship) (pipeline.Dataset, error) {
	rows := make([]pipeline.Dataset, len(sponsorships))
	for i, sp := range sponsorships {
		rows[i] = pipeline.Dataset{}.
			Put("id", sp.ID.String()).
			Put("code", sp.Code).
			PutTime("moment", sp.Moment).
			PutMoney("amount", sp.Amount).
			Put("type", sp.Type.String()).
			Put("draftMode", sp.DraftMode)
	}
	return pipeline.Dataset{}.Put("records", rows), nil
}
