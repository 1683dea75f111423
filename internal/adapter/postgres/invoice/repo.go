// Package invoice implements the Invoice repository using PostgreSQL.
// Quantity and tax are stored as NUMERIC and travel as strings on the wire,
// so no precision is lost to float conversion.
package invoice

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	postgres "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres"
	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// Repo provides invoice persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new invoice repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const columns = `id, code, registration_time, due_date, quantity::text,
	quantity_currency, tax::text, link, draft_mode, sponsorship_id,
	created_at, updated_at`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

const findByIDSQL = `
SELECT ` + columns + `
FROM invoices
WHERE id = $1`

// FindByID returns an invoice by primary key.
func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (domain.Invoice, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	inv, err := scanInvoice(q.QueryRow(ctx, findByIDSQL, id))
	if err != nil {
		return domain.Invoice{}, mapError(err, "invoice", id)
	}

	return inv, nil
}

const findByCodeSQL = `
SELECT ` + columns + `
FROM invoices
WHERE code = $1`

// FindByCode returns an invoice by its business code. Duplicate checks
// compare the returned invoice's id against the one being written, so an
// invoice never collides with itself.
func (r *Repo) FindByCode(ctx context.Context, code string) (domain.Invoice, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	inv, err := scanInvoice(q.QueryRow(ctx, findByCodeSQL, code))
	if err != nil {
		return domain.Invoice{}, mapError(err, "invoice", uuid.Nil)
	}

	return inv, nil
}

const listBySponsorshipSQL = `
SELECT ` + columns + `
FROM invoices
WHERE sponsorship_id = $1
ORDER BY registration_time ASC`

// ListBySponsorship returns every invoice of a sponsorship, oldest first.
// The aggregate amount checks run over this set, so it must be complete.
func (r *Repo) ListBySponsorship(ctx context.Context, sponsorshipID uuid.UUID) ([]domain.Invoice, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listBySponsorshipSQL, sponsorshipID)
	if err != nil {
		return nil, fmt.Errorf("list invoices by sponsorship: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

// ListBySponsor returns the invoices whose sponsorship belongs to the
// sponsor, newest registration first.
func (r *Repo) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, f domain.ListFilter) ([]domain.Invoice, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := sq.Select(
		"i.id", "i.code", "i.registration_time", "i.due_date", "i.quantity::text",
		"i.quantity_currency", "i.tax::text", "i.link", "i.draft_mode",
		"i.sponsorship_id", "i.created_at", "i.updated_at").
		From("invoices i").
		Join("sponsorships s ON s.id = i.sponsorship_id").
		Where(sq.Eq{"s.sponsor_id": sponsorID}).
		OrderBy("i.registration_time DESC").
		PlaceholderFormat(sq.Dollar)
	if f.Draft != nil {
		query = query.Where(sq.Eq{"i.draft_mode": *f.Draft})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list invoices: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices by sponsor: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const insertSQL = `
INSERT INTO invoices (id, code, registration_time, due_date, quantity,
	quantity_currency, tax, link, draft_mode, sponsorship_id, created_at,
	updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// Insert persists a new invoice.
func (r *Repo) Insert(ctx context.Context, inv domain.Invoice) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertSQL,
		inv.ID, inv.Code, inv.RegistrationTime, inv.DueDate, inv.Quantity.Amount.String(),
		inv.Quantity.Currency, inv.Tax.String(), inv.Link, inv.DraftMode,
		inv.SponsorshipID, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return mapError(err, "invoice", inv.ID)
	}

	return nil
}

const updateSQL = `
UPDATE invoices
SET code = $2, registration_time = $3, due_date = $4, quantity = $5,
	quantity_currency = $6, tax = $7, link = $8, draft_mode = $9,
	updated_at = $10
WHERE id = $1`

// Update rewrites the mutable columns of an existing invoice. The sponsorship
// binding never changes after creation.
func (r *Repo) Update(ctx context.Context, inv domain.Invoice) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, updateSQL,
		inv.ID, inv.Code, inv.RegistrationTime, inv.DueDate, inv.Quantity.Amount.String(),
		inv.Quantity.Currency, inv.Tax.String(), inv.Link, inv.DraftMode, inv.UpdatedAt)
	if err != nil {
		return mapError(err, "invoice", inv.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice %s: %w", inv.ID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func collect(rows pgx.Rows) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	return invoices, nil
}

func scanInvoice(row pgx.Row) (domain.Invoice, error) {
	var inv domain.Invoice
	var quantity, currency, tax string
	err := row.Scan(
		&inv.ID, &inv.Code, &inv.RegistrationTime, &inv.DueDate, &quantity,
		&currency, &tax, &inv.Link, &inv.DraftMode, &inv.SponsorshipID,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return domain.Invoice{}, err
	}

	qty, err := decimal.NewFromString(quantity)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("parse quantity %q: %w", quantity, err)
	}
	taxRate, err := decimal.NewFromString(tax)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("parse tax %q: %w", tax, err)
	}
	inv.Quantity = domain.Money{Amount: qty, Currency: currency}
	inv.Tax = taxRate

	return inv, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	// pgx.ErrNoRows -> domain.ErrNotFound
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	// PgError codes
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	// Everything else: wrap with context
	return fmt.Errorf("%s %s: %w", entity, id, err)
}
