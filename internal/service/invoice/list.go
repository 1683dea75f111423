package invoice

import (
	"context"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// List runs the invoice list action: every invoice hanging off one of the
// sponsor's sponsorships, optionally filtered by draft state.
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

func (h *listHandler) Load(ctx context.Context, req *pipeline.Request) ([]domain.Invoice, error) {
	return h.svc.invoices.ListBySponsor(ctx, req.Principal.ActorID, listFilter(req))
}

func (h *listHandler) Bind(req *pipeline.Request, form *pipeline.Form, invoices []domain.Invoice) []domain.Invoice {
	return invoices
}

func (h *listHandler) Validate(ctx context.Context, invoices []domain.Invoice, errs *pipeline.ErrorSet) error {
	return nil
}

func (h *listHandler) Perform(ctx context.Context, invoices []domain.Invoice) ([]domain.Invoice, error) {
	return invoices, nil
}

func (h *listHandler) Unbind(ctx context.Context, invoices []domain.Invoice) (pipeline.Dataset, error) {
	rows := make([]pipeline.Dataset, len(invoices))
	for i, inv := range invoices {
		rows[i] = pipeline.Dataset{}.
			Put("id", inv.ID.String()).
			Put("code", inv.Code).
			PutTime("dueDate", inv.DueDate).
			PutMoney("quantity", inv.Quantity).
			PutMoney("totalAmount", inv.Total()).
			Put("draftMode", inv.DraftMode)
	}
	return pipeline.Dataset{}.Put("records", rows), nil
}
