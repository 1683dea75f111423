// Package sponsorship implements the sponsor-facing actions on sponsorships:
// create, update, publish, list and show. Publishing is the interesting one:
// it re-validates the aggregate invariant that the converted sum of the
// sponsorship's invoice totals equals its declared amount, inside one
// serializable transaction so sibling invoice writes cannot race it.
package sponsorship

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
	"github.com/rmarrand/sponsorhub-backend/pkg/moment"
)

type sponsorshipRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Sponsorship, error)
	FindByCode(ctx context.Context, code string) (domain.Sponsorship, error)
	ListBySponsor(ctx context.Context, sponsorID uuid.UUID, f domain.ListFilter) ([]domain.Sponsorship, error)
	Insert(ctx context.Context, s domain.Sponsorship) error
	Update(ctx context.Context, s domain.Sponsorship) error
}

type invoiceRepo interface {
	ListBySponsorship(ctx context.Context, sponsorshipID uuid.UUID) ([]domain.Invoice, error)
}

type projectRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Project, error)
	ListPublished(ctx context.Context) ([]domain.Project, error)
}

// Service provides the sponsorship actions.
type Service struct {
	sponsorships sponsorshipRepo
	invoices     invoiceRepo
	projects     projectRepo
	settings     domain.FinanceSettings
	tx           pipeline.TxRunner
	log          *slog.Logger
}

// NewService creates a new sponsorship service.
func NewService(
	log *slog.Logger,
	sponsorships sponsorshipRepo,
	invoices invoiceRepo,
	projects projectRepo,
	settings domain.FinanceSettings,
	tx pipeline.TxRunner,
) *Service {
	return &Service{
		sponsorships: sponsorships,
		invoices:     invoices,
		projects:     projects,
		settings:     settings,
		tx:           tx,
		log:          log.With("service", "sponsorship"),
	}
}

// owned reports whether the sponsorship exists, belongs to the principal's
// sponsor role and, when required, is still a draft.
func (s *Service) owned(ctx context.Context, p domain.Principal, id uuid.UUID, requireDraft bool) (bool, error) {
	if !p.HasRole(domain.RoleSponsor) {
		return false, nil
	}

	sp, err := s.sponsorships.FindByID(ctx, id)
	if err != nil {
		return false, err
	}

	if sp.SponsorID != p.ActorID {
		return false, nil
	}
	if requireDraft && !sp.DraftMode {
		return false, nil
	}

	return true, nil
}

// bindSponsorship copies the whitelisted submitted fields onto the
// sponsorship. An explicitly empty startDate/endDate clears the value.
func bindSponsorship(req *pipeline.Request, form *pipeline.Form, sp domain.Sponsorship) domain.Sponsorship {
	if v, ok := form.String("code"); ok {
		sp.Code = v
	}
	if v, ok := form.Time("moment"); ok {
		sp.Moment = v
	}
	if raw, ok := form.String("startDate"); ok {
		if raw == "" {
			sp.StartDate = nil
		} else if v, ok := form.Time("startDate"); ok {
			sp.StartDate = &v
		}
	}
	if raw, ok := form.String("endDate"); ok {
		if raw == "" {
			sp.EndDate = nil
		} else if v, ok := form.Time("endDate"); ok {
			sp.EndDate = &v
		}
	}
	if v, ok := form.Money("amount"); ok {
		sp.Amount = v
	}
	if v, ok := form.String("email"); ok {
		sp.Email = v
	}
	if v, ok := form.String("link"); ok {
		sp.Link = v
	}
	if v, ok := form.String("type"); ok {
		sp.Type = domain.SponsorshipType(v)
	}
	if v, ok := form.UUID("project"); ok {
		sp.ProjectID = v
	}
	return sp
}

// validateSponsorship runs the rule set shared by create, update and publish:
// code uniqueness, the temporal window around the reference moment (with the
// end date strictly after the start date), the amount sign and currency
// whitelist, and the published-project reference.
func (s *Service) validateSponsorship(ctx context.Context, sp domain.Sponsorship, errs *pipeline.ErrorSet) error {
	if !errs.Has("code") {
		errs.State(sp.Code != "", "code", "required")
	}
	if !errs.Has("code") {
		existing, err := s.sponsorships.FindByCode(ctx, sp.Code)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return err
		default:
			errs.State(existing.ID == sp.ID, "code", "duplicated")
		}
	}

	if !errs.Has("moment") {
		errs.State(!sp.Moment.IsZero(), "moment", "required")
	}

	if !errs.Has("startDate") && sp.StartDate != nil {
		errs.State(moment.AfterOrEqual(*sp.StartDate, sp.Moment), "startDate", "too-close-moment")
		if sp.EndDate != nil {
			errs.State(moment.BeforeOrEqual(*sp.EndDate, moment.DeltaMonths(*sp.StartDate, 1)), "startDate", "duration-more-time")
		}
	}
	if !errs.Has("endDate") && sp.EndDate != nil {
		errs.State(moment.AfterOrEqual(*sp.EndDate, sp.Moment), "endDate", "too-close-moment")
		if sp.StartDate != nil {
			errs.State(moment.After(*sp.EndDate, *sp.StartDate), "endDate", "invalid-end-date")
			errs.State(moment.BeforeOrEqual(*sp.EndDate, moment.DeltaMonths(*sp.StartDate, 1)), "endDate", "duration-more-time")
		}
	}

	if !errs.Has("type") {
		errs.State(sp.Type.IsValid(), "type", "invalid-choice")
	}

	if !errs.Has("amount") {
		if sp.Amount.Currency == "" {
			errs.Add("amount", "required")
		} else {
			errs.State(!sp.Amount.IsNegative(), "amount", "negative-amount")
			errs.State(domain.IsHardCurrency(sp.Amount.Currency), "amount", "wrong-currency")
		}
	}

	if !errs.Has("project") {
		if sp.ProjectID == uuid.Nil {
			errs.Add("project", "invalid-reference")
			return nil
		}
		project, err := s.projects.FindByID(ctx, sp.ProjectID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			errs.Add("project", "invalid-reference")
		case err != nil:
			return err
		default:
			errs.State(project.Published, "project", "invalid-reference")
		}
	}

	return nil
}

// invoiceTotalsInSystemCurrency sums the totals of every invoice of the
// sponsorship converted into the system currency, rounded to 2 decimals.
func (s *Service) invoiceTotalsInSystemCurrency(ctx context.Context, sponsorshipID uuid.UUID) (decimal.Decimal, []domain.Invoice, error) {
	invoices, err := s.invoices.ListBySponsorship(ctx, sponsorshipID)
	if err != nil {
		return decimal.Decimal{}, nil, err
	}

	sum := decimal.Decimal{}
	for _, inv := range invoices {
		converted, ok := s.settings.ToSystem(inv.Total())
		if !ok {
			return decimal.Decimal{}, nil, fmt.Errorf("no conversion rate for currency %q", inv.Quantity.Currency)
		}
		sum = sum.Add(converted)
	}

	return domain.RoundMoney(sum), invoices, nil
}

// sponsorshipDataset builds the re-display dataset: the sponsorship's fields
// plus the type and published-project choice lists.
func (s *Service) sponsorshipDataset(ctx context.Context, sp domain.Sponsorship) (pipeline.Dataset, error) {
	projects, err := s.projects.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(projects))
	labels := make([]string, len(projects))
	for i, p := range projects {
		keys[i] = p.ID.String()
		labels[i] = p.Code
	}
	projectChoices := pipeline.ChoicesFrom(keys, labels, sp.ProjectID.String())

	typeKeys := make([]string, 0, len(domain.AllSponsorshipTypes()))
	for _, t := range domain.AllSponsorshipTypes() {
		typeKeys = append(typeKeys, t.String())
	}
	typeChoices := pipeline.ChoicesFrom(typeKeys, typeKeys, sp.Type.String())

	ds := pipeline.Dataset{}.
		Put("id", sp.ID.String()).
		Put("code", sp.Code).
		PutTime("moment", sp.Moment).
		PutOptionalTime("startDate", sp.StartDate).
		PutOptionalTime("endDate", sp.EndDate).
		PutMoney("amount", sp.Amount).
		Put("email", sp.Email).
		Put("link", sp.Link).
		Put("type", typeChoices.Selected()).
		Put("types", typeChoices).
		Put("draftMode", sp.DraftMode).
		Put("project", projectChoices.Selected()).
		Put("projects", projectChoices)

	return ds, nil
}

// listFilter reads the optional draft filter from the submitted fields.
func listFilter(req *pipeline.Request) domain.ListFilter {
	if v, ok := req.Fields["draft"]; ok && v != "" {
		d := v == "true"
		return domain.ListFilter{Draft: &d}
	}
	return domain.ListFilter{}
}
