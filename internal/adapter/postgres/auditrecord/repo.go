// Package auditrecord implements the AuditRecord repository using PostgreSQL.
package auditrecord

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres"
	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// Repo provides audit record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit record repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const columns = `id, code, initial_period, final_period, mark, optional_link,
	draft_mode, code_audit_id, created_at, updated_at`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

const findByIDSQL = `
SELECT ` + columns + `
FROM audit_records
WHERE id = $1`

// FindByID returns an audit record by primary key.
func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rec, err := scanRecord(q.QueryRow(ctx, findByIDSQL, id))
	if err != nil {
		return domain.AuditRecord{}, mapError(err, "audit_record", id)
	}

	return rec, nil
}

const findByCodeSQL = `
SELECT ` + columns + `
FROM audit_records
WHERE code = $1`

// FindByCode returns an audit record by its business code. Duplicate checks
// compare the returned record's id against the one being written, so a record
// never collides with itself.
func (r *Repo) FindByCode(ctx context.Context, code string) (domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rec, err := scanRecord(q.QueryRow(ctx, findByCodeSQL, code))
	if err != nil {
		return domain.AuditRecord{}, mapError(err, "audit_record", uuid.Nil)
	}

	return rec, nil
}

// ListByAuditor returns the audit records whose code audit belongs to the
// auditor, newest period first.
func (r *Repo) ListByAuditor(ctx context.Context, auditorID uuid.UUID, f domain.ListFilter) ([]domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := sq.Select(
		"ar.id", "ar.code", "ar.initial_period", "ar.final_period", "ar.mark",
		"ar.optional_link", "ar.draft_mode", "ar.code_audit_id", "ar.created_at", "ar.updated_at").
		From("audit_records ar").
		Join("code_audits ca ON ca.id = ar.code_audit_id").
		Where(sq.Eq{"ca.auditor_id": auditorID}).
		OrderBy("ar.initial_period DESC").
		PlaceholderFormat(sq.Dollar)
	if f.Draft != nil {
		query = query.Where(sq.Eq{"ar.draft_mode": *f.Draft})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit records: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit records by auditor: %w", err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}

	return records, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const insertSQL = `
INSERT INTO audit_records (id, code, initial_period, final_period, mark,
	optional_link, draft_mode, code_audit_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Insert persists a new audit record.
func (r *Repo) Insert(ctx context.Context, rec domain.AuditRecord) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertSQL,
		rec.ID, rec.Code, rec.InitialPeriod, rec.FinalPeriod, rec.Mark.String(),
		rec.OptionalLink, rec.DraftMode, rec.CodeAuditID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return mapError(err, "audit_record", rec.ID)
	}

	return nil
}

const updateSQL = `
UPDATE audit_records
SET code = $2, initial_period = $3, final_period = $4, mark = $5,
	optional_link = $6, draft_mode = $7, updated_at = $8
WHERE id = $1`

// Update rewrites the mutable columns of an existing audit record.
func (r *Repo) Update(ctx context.Context, rec domain.AuditRecord) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, updateSQL,
		rec.ID, rec.Code, rec.InitialPeriod, rec.FinalPeriod, rec.Mark.String(),
		rec.OptionalLink, rec.DraftMode, rec.UpdatedAt)
	if err != nil {
		return mapError(err, "audit_record", rec.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("audit_record %s: %w", rec.ID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanRecord(row pgx.Row) (domain.AuditRecord, error) {
	var rec domain.AuditRecord
	var mark string
	err := row.Scan(
		&rec.ID, &rec.Code, &rec.InitialPeriod, &rec.FinalPeriod, &mark,
		&rec.OptionalLink, &rec.DraftMode, &rec.CodeAuditID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return domain.AuditRecord{}, err
	}
	rec.Mark = domain.Mark(mark)

	return rec, nil
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
