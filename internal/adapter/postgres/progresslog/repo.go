// Package progresslog implements the ProgressLog repository using PostgreSQL.
package progresslog

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

// Repo provides progress log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new progress log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const columns = `id, record_id, completeness, comment, registration_moment,
	responsible_person, draft_mode, contract_id, created_at, updated_at`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

const findByIDSQL = `
SELECT ` + columns + `
FROM progress_logs
WHERE id = $1`

// FindByID returns a progress log by primary key.
func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (domain.ProgressLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	log, err := scanLog(q.QueryRow(ctx, findByIDSQL, id))
	if err != nil {
		return domain.ProgressLog{}, mapError(err, "progress_log", id)
	}

	return log, nil
}

const findByRecordIDSQL = `
SELECT ` + columns + `
FROM progress_logs
WHERE record_id = $1`

// FindByRecordID returns a progress log by its human-readable record id.
// Duplicate checks compare the returned log's id against the one being
// written, so a log never collides with itself.
func (r *Repo) FindByRecordID(ctx context.Context, recordID string) (domain.ProgressLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	log, err := scanLog(q.QueryRow(ctx, findByRecordIDSQL, recordID))
	if err != nil {
		return domain.ProgressLog{}, mapError(err, "progress_log", uuid.Nil)
	}

	return log, nil
}

// ListByClient returns the progress logs whose contract belongs to the
// client, newest registration first.
func (r *Repo) ListByClient(ctx context.Context, clientID uuid.UUID, f domain.ListFilter) ([]domain.ProgressLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := sq.Select(
		"pl.id", "pl.record_id", "pl.completeness", "pl.comment", "pl.registration_moment",
		"pl.responsible_person", "pl.draft_mode", "pl.contract_id", "pl.created_at", "pl.updated_at").
		From("progress_logs pl").
		Join("contracts c ON c.id = pl.contract_id").
		Where(sq.Eq{"c.client_id": clientID}).
		OrderBy("pl.registration_moment DESC").
		PlaceholderFormat(sq.Dollar)
	if f.Draft != nil {
		query = query.Where(sq.Eq{"pl.draft_mode": *f.Draft})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list progress logs: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress logs by client: %w", err)
	}
	defer rows.Close()

	var logs []domain.ProgressLog
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress logs: %w", err)
	}

	return logs, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const insertSQL = `
INSERT INTO progress_logs (id, record_id, completeness, comment,
	registration_moment, responsible_person, draft_mode, contract_id,
	created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// Insert persists a new progress log.
func (r *Repo) Insert(ctx context.Context, log domain.ProgressLog) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertSQL,
		log.ID, log.RecordID, log.Completeness, log.Comment, log.RegistrationMoment,
		log.ResponsiblePerson, log.DraftMode, log.ContractID, log.CreatedAt, log.UpdatedAt)
	if err != nil {
		return mapError(err, "progress_log", log.ID)
	}

	return nil
}

const updateSQL = `
UPDATE progress_logs
SET record_id = $2, completeness = $3, comment = $4, registration_moment = $5,
	responsible_person = $6, draft_mode = $7, updated_at = $8
WHERE id = $1`

// Update rewrites the mutable columns of an existing progress log.
func (r *Repo) Update(ctx context.Context, log domain.ProgressLog) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, updateSQL,
		log.ID, log.RecordID, log.Completeness, log.Comment, log.RegistrationMoment,
		log.ResponsiblePerson, log.DraftMode, log.UpdatedAt)
	if err != nil {
		return mapError(err, "progress_log", log.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("progress_log %s: %w", log.ID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

func scanLog(row pgx.Row) (domain.ProgressLog, error) {
	var log domain.ProgressLog
	err := row.Scan(
		&log.ID, &log.RecordID, &log.Completeness, &log.Comment, &log.RegistrationMoment,
		&log.ResponsiblePerson, &log.DraftMode, &log.ContractID, &log.CreatedAt, &log.UpdatedAt)
	if err != nil {
		return domain.ProgressLog{}, err
	}

	return log, nil
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
