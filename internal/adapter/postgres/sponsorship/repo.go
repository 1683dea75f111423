// Package sponsorship implements the Sponsorship repository using PostgreSQL.
// Monetary amounts are stored as NUMERIC plus a currency column and travel as
// strings on the wire, so no precision is lost to float conversion.
package sponsorship

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

// Repo provides sponsorship persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new sponsorship repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const columns = `id, code, moment, start_date, end_date, amount::text,
	amount_currency, email, link, type, project_id, sponsor_id, draft_mode,
	created_at, updated_at`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

const findByIDSQL = `
SELECT ` + columns + `
FROM sponsorships
WHERE id = $1`

// FindByID returns a sponsorship by primary key.
func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (domain.Sponsorship, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	s, err := scanSponsorship(q.QueryRow(ctx, findByIDSQL, id))
	if err != nil {
		return domain.Sponsorship{}, mapError(err, "sponsorship", id)
	}

	return s, nil
}

const findByCodeSQL = `
SELECT ` + columns + `
FROM sponsorships
WHERE code = $1`

// FindByCode returns a sponsorship by its business code. Duplicate checks
// compare the returned sponsorship's id against the one being written, so a
// sponsorship never collides with itself.
func (r *Repo) FindByCode(ctx context.Context, code string) (domain.Sponsorship, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	s, err := scanSponsorship(q.QueryRow(ctx, findByCodeSQL, code))
	if err != nil {
		return domain.Sponsorship{}, mapError(err, "sponsorship", uuid.Nil)
	}

	return s, nil
}

// ListBySponsor returns the sponsorships owned by a sponsor, newest moment
// first.
func (r *Repo) ListBySponsor(ctx context.Context, sponsorID uuid.UUID, f domain.ListFilter) ([]domain.Sponsorship, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := sq.Select(
		"id", "code", "moment", "start_date", "end_date", "amount::text",
		"amount_currency", "email", "link", "type", "project_id", "sponsor_id",
		"draft_mode", "created_at", "updated_at").
		From("sponsorships").
		Where(sq.Eq{"sponsor_id": sponsorID}).
		OrderBy("moment DESC").
		PlaceholderFormat(sq.Dollar)
	if f.Draft != nil {
		query = query.Where(sq.Eq{"draft_mode": *f.Draft})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list sponsorships: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list sponsorships by sponsor: %w", err)
	}
	defer rows.Close()

	var sponsorships []domain.Sponsorship
	for rows.Next() {
		s, err := scanSponsorship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sponsorship: %w", err)
		}
		sponsorships = append(sponsorships, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sponsorships: %w", err)
	}

	return sponsorships, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const insertSQL = `
INSERT INTO sponsorships (id, code, moment, start_date, end_date, amount,
	amount_currency, email, link, type, project_id, sponsor_id, draft_mode,
	created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

// Insert persists a new sponsorship.
func (r *Repo) Insert(ctx context.Context, s domain.Sponsorship) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertSQL,
		s.ID, s.Code, s.Moment, s.StartDate, s.EndDate, s.Amount.Amount.String(),
		s.Amount.Currency, s.Email, s.Link, s.Type.String(), s.ProjectID,
		s.SponsorID, s.DraftMode, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return mapError(err, "sponsorship", s.ID)
	}

	return nil
}

const updateSQL = `
UPDATE sponsorships
SET code = $2, moment = $3, start_date = $4, end_date = $5, amount = $6,
	amount_currency = $7, email = $8, link = $9, type = $10, project_id = $11,
	draft_mode = $12, updated_at = $13
WHERE id = $1`

// Update rewrites the mutable columns of an existing sponsorship. The sponsor
// binding never changes after creation.
func (r *Repo) Update(ctx context.Context, s domain.Sponsorship) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, updateSQL,
		s.ID, s.Code, s.Moment, s.StartDate, s.EndDate, s.Amount.Amount.String(),
		s.Amount.Currency, s.Email, s.Link, s.Type.String(), s.ProjectID,
		s.DraftMode, s.UpdatedAt)
	if err != nil {
		return mapError(err, "sponsorship", s.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sponsorship %s: %w", s.ID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanSponsorship(row pgx.Row) (domain.Sponsorship, error) {
	var s domain.Sponsorship
	var amount, currency, typ string
	err := row.Scan(
		&s.ID, &s.Code, &s.Moment, &s.StartDate, &s.EndDate, &amount,
		&currency, &s.Email, &s.Link, &typ, &s.ProjectID, &s.SponsorID,
		&s.DraftMode, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.Sponsorship{}, err
	}

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Sponsorship{}, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	s.Amount = domain.Money{Amount: amt, Currency: currency}
	s.Type = domain.SponsorshipType(typ)

	return s, nil
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
