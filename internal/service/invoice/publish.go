package invoice

import (
	"context"
	"time"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Publish runs the invoice publish action: the submitted fields are re-bound
// and re-validated (they may still change the quantity, so the aggregate
// ceiling applies), and on success the invoice leaves draft mode for good.
func (s *Service) Publish(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &publishHandler{svc: s, req: req}, req, pipeline.InTx(s.tx))
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "invoice published", "invoice_id", req.ID)
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

func (h *publishHandler) Load(ctx context.Context, req *pipeline.Request) (domain.Invoice, error) {
	return h.svc.invoices.FindByID(ctx, req.ID)
}

func (h *publishHandler) Bind(req *pipeline.Request, form *pipeline.Form, inv domain.Invoice) domain.Invoice {
	return bindInvoice(form, inv, false)
}

func (h *publishHandler) Validate(ctx context.Context, inv domain.Invoice, errs *pipeline.ErrorSet) error {
	return h.svc.validateInvoice(ctx, h.req.Principal, inv, false, errs)
}

func (h *publishHandler) Perform(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	inv.DraftMode = false
	inv.UpdatedAt = time.Now().UTC()
	if err := h.svc.invoices.Update(ctx, inv); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (h *publishHandler) Unbind(ctx context.Context, inv domain.Invoice) (pipeline.Dataset, error) {
	return invoiceDataset(inv), nil
}
