package sponsorship

import (
	"context"
	"time"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

// Publish runs the sponsorship publish action. On top of the shared rule set
// it checks the aggregate invariant: the sponsorship must have at least one
// invoice, all invoices must themselves be published, and the converted sum
// of their totals must equal the converted declared amount. The whole
// load-validate-write sequence runs in one serializable transaction so a
// concurrent invoice write cannot slip between the sum check and the draft
// flip.
func (s *Service) Publish(ctx context.Context, req *pipeline.Request) (*pipeline.Result, error) {
	res, err := pipeline.Run(ctx, &publishHandler{svc: s, req: req}, req, pipeline.InTx(s.tx))
	if err != nil {
		return nil, err
	}
	if res.Status == pipeline.StatusOK {
		s.log.InfoContext(ctx, "sponsorship published", "sponsorship_id", req.ID)
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

func (h *publishHandler) Load(ctx context.Context, req *pipeline.Request) (domain.Sponsorship, error) {
	return h.svc.sponsorships.FindByID(ctx, req.ID)
}

func (h *publishHandler) Bind(req *pipeline.Request, form *pipeline.Form, sp domain.Sponsorship) domain.Sponsorship {
	return bindSponsorship(req, form, sp)
}

func (h *publishHandler) Validate(ctx context.Context, sp domain.Sponsorship, errs *pipeline.ErrorSet) error {
	if err := h.svc.validateSponsorship(ctx, sp, errs); err != nil {
		return err
	}

	sum, invoices, err := h.svc.invoiceTotalsInSystemCurrency(ctx, sp.ID)
	if err != nil {
		return err
	}

	errs.State(len(invoices) > 0, domain.WildcardField, "none-invoices")

	allPublished := true
	for _, inv := range invoices {
		if inv.DraftMode {
			allPublished = false
			break
		}
	}
	errs.State(allPublished, domain.WildcardField, "publish-invoices")

	if !errs.Has("amount") {
		converted, ok := h.svc.settings.ToSystem(sp.Amount)
		if ok {
			errs.State(domain.RoundMoney(converted).Equal(sum), "amount", "invoices-amount")
		}
	}

	return nil
}

func (h *publishHandler) Perform(ctx context.Context, sp domain.Sponsorship) (domain.Sponsorship, error) {
	sp.DraftMode = false
	sp.UpdatedAt = time.Now().UTC()
	if err := h.svc.sponsorships.Update(ctx, sp); err != nil {
		return domain.Sponsorship{}, err
	}
	return sp, nil
}

func (h *publishHandler) Unbind(ctx context.Context, sp domain.Sponsorship) (pipeline.Dataset, error) {
	return h.svc.sponsorshipDataset(ctx, sp)
}
