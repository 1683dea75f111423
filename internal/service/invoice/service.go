// Package invoice implements the sponsor-facing actions on invoices: create,
// update, publish, list and show. Invoice writes are the other half of the
// aggregate invariant on sponsorships: the converted sum of a sponsorship's
// invoice totals must never exceed its declared amount, so every mutating
// action validates the sum with the candidate's submitted values substituted
// for its stored row, inside one serializable transaction.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
	"github.com/rmarrand/sponsorhub-backend/pkg/moment"
)

// dueDateMinDays is the minimum number of days between an invoice's
// registration time and its due date.
const dueDateMinDays = 30

type invoiceRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Invoice, error)
	FindByCode(ctx context.Context, code string) (domain.Invoice, error)
	ListBySponsorship(ctx context.Context, sponsorshipID uuid.UUID) ([]domain.Invoice, error)
	ListBySponsor(ctx context.Context, sponsorID uuid.UUID, f domain.ListFilter) ([]domain.Invoice, error)
	Insert(ctx context.Context, inv domain.Invoice) error
	Update(ctx context.Context, inv domain.Invoice) error
}

type sponsorshipRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Sponsorship, error)
}

// Service provides the invoice actions.
type Service struct {
	invoices     invoiceRepo
	sponsorships sponsorshipRepo
	settings     domain.FinanceSettings
	tx           pipeline.TxRunner
	log          *slog.Logger
}

// NewService creates a new invoice service.
func NewService(
	log *slog.Logger,
	invoices invoiceRepo,
	sponsorships sponsorshipRepo,
	settings domain.FinanceSettings,
	tx pipeline.TxRunner,
) *Service {
	return &Service{
		invoices:     invoices,
		sponsorships: sponsorships,
		settings:     settings,
		tx:           tx,
		log:          log.With("service", "invoice"),
	}
}

// owned resolves the invoice's owner chain (invoice → sponsorship → sponsor)
// and reports whether the principal may act on it.
func (s *Service) owned(ctx context.Context, p domain.Principal, id uuid.UUID, requireDraft bool) (bool, error) {
	if !p.HasRole(domain.RoleSponsor) {
		return false, nil
	}

	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return false, err
	}

	sp, err := s.sponsorships.FindByID(ctx, inv.SponsorshipID)
	if err != nil {
		return false, err
	}

	if sp.SponsorID != p.ActorID {
		return false, nil
	}
	if requireDraft && !inv.DraftMode {
		return false, nil
	}

	return true, nil
}

// bindInvoice copies the whitelisted submitted fields onto the invoice. The
// sponsorship binding is create-only; updates never move an invoice.
func bindInvoice(form *pipeline.Form, inv domain.Invoice, bindSponsorship bool) domain.Invoice {
	if v, ok := form.String("code"); ok {
		inv.Code = v
	}
	if v, ok := form.Time("registrationTime"); ok {
		inv.RegistrationTime = v
	}
	if v, ok := form.Time("dueDate"); ok {
		inv.DueDate = v
	}
	if v, ok := form.Money("quantity"); ok {
		inv.Quantity = v
	}
	if v, ok := form.Decimal("tax"); ok {
		inv.Tax = v
	}
	if v, ok := form.String("link"); ok {
		inv.Link = v
	}
	if bindSponsorship {
		if v, ok := form.UUID("sponsorship"); ok {
			inv.SponsorshipID = v
		}
	}
	return inv
}

// validateInvoice runs the invoice rule set: code uniqueness, the due date
// window, the quantity sign and accepted-currency check, the sponsorship
// reference (create only) and the aggregate ceiling.
func (s *Service) validateInvoice(ctx context.Context, p domain.Principal, inv domain.Invoice, checkReference bool, errs *pipeline.ErrorSet) error {
	if !errs.Has("code") {
		errs.State(inv.Code != "", "code", "required")
	}
	if !errs.Has("code") {
		existing, err := s.invoices.FindByCode(ctx, inv.Code)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return err
		default:
			errs.State(existing.ID == inv.ID, "code", "duplicated")
		}
	}

	if !errs.Has("registrationTime") {
		errs.State(!inv.RegistrationTime.IsZero(), "registrationTime", "required")
	}
	if !errs.Has("dueDate") {
		errs.State(!inv.DueDate.IsZero(), "dueDate", "required")
	}
	if !errs.Has("dueDate") && !inv.RegistrationTime.IsZero() {
		minimumDeadline := moment.DeltaDays(inv.RegistrationTime, dueDateMinDays)
		errs.State(moment.After(inv.DueDate, minimumDeadline), "dueDate", "too-close-from-registration")
	}

	if !errs.Has("quantity") {
		if inv.Quantity.Currency == "" {
			errs.Add("quantity", "required")
		} else {
			errs.State(inv.Quantity.IsPositive(), "quantity", "negative-quantity")
			errs.State(s.settings.IsAccepted(inv.Quantity.Currency), "quantity", "wrong-currency")
		}
	}

	if checkReference {
		if err := s.validateSponsorshipRef(ctx, p, inv, errs); err != nil {
			return err
		}
	}

	if !errs.Has("quantity") && !errs.Has("sponsorship") {
		if err := s.validateAggregate(ctx, inv, errs); err != nil {
			return err
		}
	}

	return nil
}

// validateSponsorshipRef checks that the bound sponsorship exists, belongs to
// the principal and is still a draft.
func (s *Service) validateSponsorshipRef(ctx context.Context, p domain.Principal, inv domain.Invoice, errs *pipeline.ErrorSet) error {
	if errs.Has("sponsorship") {
		return nil
	}
	if inv.SponsorshipID == uuid.Nil {
		errs.Add("sponsorship", "invalid-reference")
		return nil
	}

	sp, err := s.sponsorships.FindByID(ctx, inv.SponsorshipID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		errs.Add("sponsorship", "invalid-reference")
		return nil
	case err != nil:
		return err
	}

	errs.State(sp.SponsorID == p.ActorID && sp.DraftMode, "sponsorship", "invalid-reference")
	return nil
}

// validateAggregate checks the ceiling rule: the converted sum of the
// sponsorship's invoice totals, with the candidate's submitted values in
// place of its stored row, must not exceed the converted declared amount.
func (s *Service) validateAggregate(ctx context.Context, inv domain.Invoice, errs *pipeline.ErrorSet) error {
	sp, err := s.sponsorships.FindByID(ctx, inv.SponsorshipID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			errs.Add("sponsorship", "invalid-reference")
			return nil
		}
		return err
	}

	siblings, err := s.invoices.ListBySponsorship(ctx, sp.ID)
	if err != nil {
		return err
	}

	sum, ok := s.settings.ToSystem(inv.Total())
	if !ok {
		return fmt.Errorf("no conversion rate for currency %q", inv.Quantity.Currency)
	}
	for _, sib := range siblings {
		if sib.ID == inv.ID {
			continue
		}
		converted, ok := s.settings.ToSystem(sib.Total())
		if !ok {
			return fmt.Errorf("no conversion rate for currency %q", sib.Quantity.Currency)
		}
		sum = sum.Add(converted)
	}

	declared, ok := s.settings.ToSystem(sp.Amount)
	if !ok {
		return fmt.Errorf("no conversion rate for currency %q", sp.Amount.Currency)
	}

	errs.State(
		domain.RoundMoney(sum).LessThanOrEqual(domain.RoundMoney(declared)),
		domain.WildcardField, "bad-total-amount")

	return nil
}

// invoiceDataset builds the re-display dataset.
func invoiceDataset(inv domain.Invoice) pipeline.Dataset {
	return pipeline.Dataset{}.
		Put("id", inv.ID.String()).
		Put("code", inv.Code).
		PutTime("registrationTime", inv.RegistrationTime).
		PutTime("dueDate", inv.DueDate).
		PutMoney("quantity", inv.Quantity).
		PutDecimal("tax", inv.Tax).
		PutMoney("totalAmount", inv.Total()).
		Put("link", inv.Link).
		Put("draftMode", inv.DraftMode).
		Put("sponsorship", inv.SponsorshipID.String())
}

// listFilter reads the optional draft filter from the submitted fields.
func listFilter(req *pipeline.Request) domain.ListFilter {
	if v, ok := req.Fields["draft"]; ok && v != "" {
		d := v == "true"
		return domain.ListFilter{Draft: &d}
	}
	return domain.ListFilter{}
}
