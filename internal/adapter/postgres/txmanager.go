package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// TxManager manages database transactions using the context pattern.
// Nested Run* calls are NOT supported: calling one inside a callback will
// create a second independent transaction, which is a bug.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// RunInTx executes fn within a Read Committed transaction (PostgreSQL default).
// On success: commits. On error from fn: rolls back and returns the error.
// On panic from fn: rolls back and re-panics.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, pgx.TxOptions{}, fn)
}

// RunSerializable executes fn within a Serializable transaction. The actions
// that validate an aggregate over sibling records and then write one of them
// run through this, so two concurrent runs cannot both pass validation against
// the same snapshot and jointly break the aggregate invariant. A serialization
// failure (SQLSTATE 40001) is returned as domain.ErrConflict; callers surface
// it as a retryable conflict rather than retrying internally.
func (m *TxManager) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	err := m.run(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return fmt.Errorf("serialization failure: %w", domain.ErrConflict)
	}
	return err
}

func (m *TxManager) run(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context) error) (err error) {
	tx, err := m.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	txCtx := withTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
