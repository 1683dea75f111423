package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Create runs the invoice create action: a fresh draft invoice bound from
// the submitted fields under a draft sponsorship the sponsor owns. The run is
// serializable so a concurrent sibling write cannot help it past the
// aggregate ceiling.
func (s *Service) Create(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &createHandler{svc: s, req: req}, req, pipeline.InTx(s.tx))
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "invoice created", "actor_id", req.Principal.ActorID)
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

func (h *createHandler) Load(ctx context.Context, req *pipeline.Request) (domain.Invoice, error) {
	now := time.Now().UTC()
	return domain.Invoice{
		ID:        uuid.New(),
		DraftMode: true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (h *createHandler) Bind(req *pipeline.Request, form *pipeline.Form, inv domain.Invoice) domain.Invoice {
	return bindInvoice(form, inv, true)
}

func (h *createHandler) Validate(ctx context.Context, inv domain.Invoice, errs *pipeline.ErrorSet) error {
	return h.svc.validateInvoice(ctx, h.req.Principal, inv, true, errs)
}

func (h *createHandler) Perform(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	if err := h.svc.invoices.Insert(ctx, inv); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (h *createHandler) Unbind(ctx context.Context, inv domain.Invoice) (pipeline.Dataset, error) {
	return invoiceDataset(inv), nil
}
