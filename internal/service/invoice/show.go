package invoice

import (
	"context"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Show runs the invoice display action. The owner sees both draft and
// published invoices.
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

func (h *showHandler) Load(ctx context.Context, req *pipeline.Request) (domain.Invoice, error) {
	return h.svc.invoices.FindByID(ctx, req.ID)
}

func (h *showHandler) Bind(req *pipeline.Request, form *pipeline.Form, inv domain.Invoice) domain.Invoice {
	return inv
}

func (h *showHandler) Validate(ctx context.Context, inv domain.Invoice, errs *pipeline.ErrorSet) error {
	return nil
}

func (h *showHandler) Perform(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	return inv, nil
}

func (h *showHandler) Unbind(ctx context.Context, inv domain.Invoice) (pipeline.Dataset, error) {
	return invoiceDataset(inv), nil
}
