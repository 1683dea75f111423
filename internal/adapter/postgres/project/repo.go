// Package project implements the Project and Contract repositories using
// PostgreSQL. Contracts live here rather than in their own package because
// every query that touches a contract also touches its project.
package project

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

// Repo provides project and contract persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new project repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

const findProjectSQL = `
SELECT id, code, title, summary, published, created_at
FROM projects
WHERE id = $1`

// FindByID returns a project by primary key.
func (r *Repo) FindByID(ctx context.Context, id uuid.UUID) (domain.Project, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var p domain.Project
	err := q.QueryRow(ctx, findProjectSQL, id).
		Scan(&p.ID, &p.Code, &p.Title, &p.Summary, &p.Published, &p.CreatedAt)
	if err != nil {
		return domain.Project{}, mapError(err, "project", id)
	}

	return p, nil
}

// ListPublished returns all published projects ordered by title. Sponsorship
// forms offer these as the project choice list.
func (r *Repo) ListPublished(ctx context.Context) ([]domain.Project, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := sq.Select("id", "code", "title", "summary", "published", "created_at").
		From("projects").
		Where(sq.Eq{"published": true}).
		OrderBy("title ASC").
		PlaceholderFormat(sq.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list published projects: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list published projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Code, &p.Title, &p.Summary, &p.Published, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

const insertProjectSQL = `
INSERT INTO projects (id, code, title, summary, published, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// Insert persists a new project. Used by provisioning and test fixtures.
func (r *Repo) Insert(ctx context.Context, p domain.Project) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertProjectSQL,
		p.ID, p.Code, p.Title, p.Summary, p.Published, p.CreatedAt)
	if err != nil {
		return mapError(err, "project", p.ID)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Contracts
// ---------------------------------------------------------------------------

const findContractSQL = `
SELECT id, code, client_id, project_id, created_at
FROM contracts
WHERE id = $1`

// FindContract returns a contract by primary key. The progress log pipeline
// resolves ownership through it.
func (r *Repo) FindContract(ctx context.Context, id uuid.UUID) (domain.Contract, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var c domain.Contract
	err := q.QueryRow(ctx, findContractSQL, id).
		Scan(&c.ID, &c.Code, &c.ClientID, &c.ProjectID, &c.CreatedAt)
	if err != nil {
		return domain.Contract{}, mapError(err, "contract", id)
	}

	return c, nil
}

// ListContractsByClient returns the contracts owned by a client, ordered by
// code. Progress log forms offer these as the contract choice list.
func (r *Repo) ListContractsByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Contract, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query := sq.Select("id", "code", "client_id", "project_id", "created_at").
		From("contracts").
		Where(sq.Eq{"client_id": clientID}).
		OrderBy("code ASC").
		PlaceholderFormat(sq.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list contracts: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list contracts by client: %w", err)
	}
	defer rows.Close()

	var contracts []domain.Contract
	for rows.Next() {
		var c domain.Contract
		if err := rows.Scan(&c.ID, &c.Code, &c.ClientID, &c.ProjectID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contracts: %w", err)
	}

	return contracts, nil
}

const insertContractSQL = `
INSERT INTO contracts (id, code, client_id, project_id, created_at)
VALUES ($1, $2, $3, $4, $5)`

// InsertContract persists a new contract. Used by provisioning and test
// fixtures.
func (r *Repo) InsertContract(ctx context.Context, c domain.Contract) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertContractSQL, c.ID, c.Code, c.ClientID, c.ProjectID, c.CreatedAt)
	if err != nil {
		return mapError(err, "contract", c.ID)
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
