package invoice

import (
	"context"
	"time"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Update runs the invoice update action. Only draft invoices owned by the
// requesting sponsor are eligible. The run is serializable for the same
// reason create is: the aggregate ceiling reads the siblings.
func (s *Service) Update(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &updateHandler{svc: s, req: req}, req, pipeline.InTx(s.tx))
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "invoice updated", "invoice_id", req.ID)
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

func (h *updateHandler) Load(ctx context.Context, req *pipeline.Request) (domain.Invoice, error) {
	return h.svc.invoices.FindByID(ctx, req.ID)
}

func (h *updateHandler) Bind(req *pipeline.Request, form *pipeline.Form, inv domain.Invoice) domain.Invoice {
	return bindInvoice(form, inv, false)
}

func (h *updateHandler) Validate(ctx context.Context, inv domain.Invoice, errs *pipeline.ErrorSet) error {
	return h.svc.validateInvoice(ctx, h.req.Principal, inv, false, errs)
}

func (h *updateHandler) Perform(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	inv.UpdatedAt = time.Now().UTC()
	if err := h.svc.invoices.Update(ctx, inv); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (h *updateHandler) Unbind(ctx context.Context, inv domain.Invoice) (pipeline.Dataset, error) {
	return invoiceDataset(inv), nil
}
