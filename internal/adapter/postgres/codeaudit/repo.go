// Package codeaudit implements the CodeAudit repository using PostgreSQL.
package codeaudit

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

// Repo provides code audit persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new code audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const findByIDSQL = `
SELECT id, code, auditor_id, created_at
FROM code_audits
WHERE id = $1`

// FindByID returns a code audit by primary key. The audit record pipeline
// resolves ownership through it.
func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (domain.CodeAudit, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var ca domain.CodeAudit
	err := q.QueryRow(ctx, findByIDSQL, id).
		Scan(&ca.ID, &ca.Code, &ca.AuditorID, &ca.CreatedAt)
	if err != nil {
		return domain.CodeAudit{}, mapError(err, "code_audit", id)
	}

	return ca, nil
}

// ListByAuditor returns the code audits owned by an auditor, ordered by code.
// Audit record forms offer these as the code audit choice list.
func (r *Repo) ListByAuditor(ctx context.Context, auditorID uuid.UUID) ([]domain.CodeAudit, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := sq.Select("id", "code", "auditor_id", "created_at").
		From("code_audits").
		Where(sq.Eq{"auditor_id": auditorID}).
		OrderBy("code ASC").
		PlaceholderFormat(sq.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list code audits: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list code audits by auditor: %w", err)
	}
	defer rows.Close()

	var audits []domain.CodeAudit
	for rows.Next() {
		var ca domain.CodeAudit
		if err := rows.Scan(&ca.ID, &ca.Code, &ca.AuditorID, &ca.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan code audit: %w", err)
		}
		audits = append(audits, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate code audits: %w", err)
	}

	return audits, nil
}

const insertSQL = `
INSERT INTO code_audits (id, code, auditor_id, created_at)
VALUES ($1, $2, $3, $4)`

// Insert persists a new code audit. Used by provisioning and test fixtures.
func (r *Repo) Insert(ctx context.Context, ca domain.CodeAudit) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertSQL, ca.ID, ca.Code, ca.AuditorID, ca.CreatedAt)
	if err != nil {
		return mapError(err, "code_audit", ca.ID)
	}

	return nil
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
