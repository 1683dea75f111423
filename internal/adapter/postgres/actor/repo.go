// Package actor implements the Actor repository using PostgreSQL.
package actor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres"
	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// Repo provides actor persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new actor repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const findByIDSQL = `
SELECT id, username, email, role, created_at
FROM actors
WHERE id = $1`

// FindByID returns an actor by primary key.
func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (domain.Actor, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var a domain.Actor
	var role string
	err := q.QueryRow(ctx, findByIDSQL, id).
		Scan(&a.ID, &a.Username, &a.Email, &role, &a.CreatedAt)
	if err != nil {
		return domain.Actor{}, mapError(err, "actor", id)
	}
	a.Role = domain.Role(role)

	return a, nil
}

const insertSQL = `
INSERT INTO actors (id, username, email, role, created_at)
VALUES ($1, $2, $3, $4, $5)`

// Insert persists a new actor. Used by provisioning and test fixtures; the
// request path never creates actors.
func (r *Repo) Insert(ctx context.Context, a domain.Actor) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertSQL, a.ID, a.Username, a.Email, a.Role.String(), a.CreatedAt)
	if err != nil {
		return mapError(err, "actor", a.ID)
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
