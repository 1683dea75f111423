package sponsorship

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Create runs the sponsorship create action: a fresh draft sponsorship bound
// from the submitted fields, owned by the requesting sponsor.
func (s *Service) Create(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &createHandler{svc: s, req: req}, req)
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "sponsorship created", "actor_id", req.Principal.ActorID)
	}
	return res, nil
}

type createHandler struct {
	svc *Service
	req *pipeline.Request
}

func (h *createHandler) Authorise(ctx context.Context, req *pipeline.Request) (bool, error) {
	return req.Principal.HasRole(domain.RoleSponsor), nil
}

func (h *createHandler) Load(ctx context.Context, req *pipeline.Request) (domain.Sponsorship, error) {
	now := time.Now().UTC()
	return domain.Sponsorship{
		ID:        uuid.New(),
		SponsorID: req.Principal.ActorID,
		DraftMode: true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (h *createHandler) Bind(req *pipeline.Request, form *pipeline.Form, sp domain.Sponsorship) domain.Sponsorship {
	return bindSponsorship(req, form, sp)
}

func (h *createHandler) Validate(ctx context.Context, sp domain.Sponsorship, errs *pipeline.ErrorSet) error {
	return h.svc.validateSponsorship(ctx, sp, errs)
}

func (h *createHandler) Perform(ctx context.Context, sp domain.Sponsorship) (domain.Sponsorship, error) {
	if err := h.svc.sponsorships.Insert(ctx, sp); err != nil {
		return domain.Sponsorship{}, err
	}
	return sp, nil
}

func (h *createHandler) Unbind(ctx context.Context, sp domain.Sponsorship) (pipeline.Dataset, error) {
	return h.svc.sponsorshipDataset(ctx, sp)
}
