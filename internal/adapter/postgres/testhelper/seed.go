package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting
// test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// SeedActor creates an actor with the given role.
func SeedActor(t *testing.T, pool *pgxpool.Pool, role domain.Role) domain.Actor {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	actor := domain.Actor{
		ID:        uuid.New(),
		Username:  "actor-" + suffix,
		Email:     "actor-" + suffix + "@example.com",
		Role:      role,
		CreatedAt: now(),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO actors (id, username, email, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		actor.ID, actor.Username, actor.Email, actor.Role.String(), actor.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedActor insert: %v", err)
	}

	return actor
}

// SeedProject creates a project. Published controls whether sponsorships may
// reference it.
func SeedProject(t *testing.T, pool *pgxpool.Pool, published bool) domain.Project {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	project := domain.Project{
		ID:        uuid.New(),
		Code:      "PRJ-" + suffix,
		Title:     "Project " + suffix,
		Summary:   "Summary for project " + suffix,
		Published: published,
		CreatedAt: now(),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO projects (id, code, title, summary, published, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		project.ID, project.Code, project.Title, project.Summary, project.Published, project.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProject insert: %v", err)
	}

	return project
}

// SeedContract creates a contract binding a client to a project.
func SeedContract(t *testing.T, pool *pgxpool.Pool, clientID, projectID uuid.UUID) domain.Contract {
	t.Helper()
	ctx := context.Background()

	contract := domain.Contract{
		ID:        uuid.New(),
		Code:      "CTR-" + uniqueSuffix(),
		ClientID:  clientID,
		ProjectID: projectID,
		CreatedAt: now(),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO contracts (id, code, client_id, project_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		contract.ID, contract.Code, contract.ClientID, contract.ProjectID, contract.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedContract insert: %v", err)
	}

	return contract
}

// SeedCodeAudit creates a code audit owned by an auditor.
func SeedCodeAudit(t *testing.T, pool *pgxpool.Pool, auditorID uuid.UUID) domain.CodeAudit {
	t.Helper()
	ctx := context.Background()

	audit := domain.CodeAudit{
		ID:        uuid.New(),
		Code:      "AUD-" + uniqueSuffix(),
		AuditorID: auditorID,
		CreatedAt: now(),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO code_audits (id, code, auditor_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		audit.ID, audit.Code, audit.AuditorID, audit.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCodeAudit insert: %v", err)
	}

	return audit
}

// SeedAuditRecord creates a draft audit record under a code audit.
func SeedAuditRecord(t *testing.T, pool *pgxpool.Pool, codeAuditID uuid.UUID) domain.AuditRecord {
	t.Helper()
	ctx := context.Background()

	ts := now()
	record := domain.AuditRecord{
		ID:            uuid.New(),
		Code:          "REC-" + uniqueSuffix(),
		InitialPeriod: ts.AddDate(0, 0, -14),
		Mark:          domain.MarkB,
		DraftMode:     true,
		CodeAuditID:   codeAuditID,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO audit_records (id, code, initial_period, final_period, mark,
			optional_link, draft_mode, code_audit_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		record.ID, record.Code, record.InitialPeriod, record.FinalPeriod, record.Mark.String(),
		record.OptionalLink, record.DraftMode, record.CodeAuditID, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedAuditRecord insert: %v", err)
	}

	return record
}

// SeedProgressLog creates a draft progress log under a contract.
func SeedProgressLog(t *testing.T, pool *pgxpool.Pool, contractID uuid.UUID) domain.ProgressLog {
	t.Helper()
	ctx := context.Background()

	ts := now()
	log := domain.ProgressLog{
		ID:                 uuid.New(),
		RecordID:           "LOG-" + uniqueSuffix(),
		Completeness:       50,
		Comment:            "Halfway there",
		RegistrationMoment: ts.AddDate(0, 0, -1),
		ResponsiblePerson:  "Jordan Reyes",
		DraftMode:          true,
		ContractID:         contractID,
		CreatedAt:          ts,
		UpdatedAt:          ts,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO progress_logs (id, record_id, completeness, comment,
			registration_moment, responsible_person, draft_mode, contract_id,
			created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		log.ID, log.RecordID, log.Completeness, log.Comment, log.RegistrationMoment,
		log.ResponsiblePerson, log.DraftMode, log.ContractID, log.CreatedAt, log.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProgressLog insert: %v", err)
	}

	return log
}

// SeedSponsorship creates a draft sponsorship for a sponsor and project with
// the given amount.
func SeedSponsorship(t *testing.T, pool *pgxpool.Pool, sponsorID, projectID uuid.UUID, amount domain.Money) domain.Sponsorship {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	ts := now()
	s := domain.Sponsorship{
		ID:        uuid.New(),
		Code:      "SPO-" + suffix,
		Moment:    ts.AddDate(0, 0, -7),
		Amount:    amount,
		Email:     "sponsor-" + suffix + "@example.com",
		Link:      "https://example.com/sponsorships/" + suffix,
		Type:      domain.SponsorshipFinancial,
		ProjectID: projectID,
		SponsorID: sponsorID,
		DraftMode: true,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO sponsorships (id, code, moment, start_date, end_date, amount,
			amount_currency, email, link, type, project_id, sponsor_id, draft_mode,
			created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		s.ID, s.Code, s.Moment, s.StartDate, s.EndDate, s.Amount.Amount.String(),
		s.Amount.Currency, s.Email, s.Link, s.Type.String(), s.ProjectID,
		s.SponsorID, s.DraftMode, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSponsorship insert: %v", err)
	}

	return s
}

// SeedInvoice creates an invoice under a sponsorship. Draft controls its
// draft flag; quantity and tax define its total.
func SeedInvoice(t *testing.T, pool *pgxpool.Pool, sponsorshipID uuid.UUID, quantity domain.Money, tax decimal.Decimal, draft bool) domain.Invoice {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	ts := now()
	inv := domain.Invoice{
		ID:               uuid.New(),
		Code:             "INV-" + suffix,
		RegistrationTime: ts.AddDate(0, 0, -3),
		DueDate:          ts.AddDate(0, 2, 0),
		Quantity:         quantity,
		Tax:              tax,
		Link:             "https://example.com/invoices/" + suffix,
		DraftMode:        draft,
		SponsorshipID:    sponsorshipID,
		CreatedAt:        ts,
		UpdatedAt:        ts,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO invoices (id, code, registration_time, due_date, quantity,
			quantity_currency, tax, link, draft_mode, sponsorship_id, created_at,
			updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inv.ID, inv.Code, inv.RegistrationTime, inv.DueDate, inv.Quantity.Amount.String(),
		inv.Quantity.Currency, inv.Tax.String(), inv.Link, inv.DraftMode,
		inv.SponsorshipID, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedInvoice insert: %v", err)
	}

	return inv
}
