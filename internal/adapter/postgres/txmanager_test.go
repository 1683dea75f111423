package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres"
	"github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/testhelper"
	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// actorExists checks whether an actor row with the given ID exists.
func actorExists(t *testing.T, pool *pgxpool.Pool, actorID uuid.UUID) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(
		context.Background(),
		`SELECT EXISTS(SELECT 1 FROM actors WHERE id = $1)`,
		actorID,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("actorExists query: %v", err)
	}
	return exists
}

func insertActor(ctx context.Context, pool *pgxpool.Pool, actorID uuid.UUID, suffix string) error {
	q := postgres.QuerierFromCtx(ctx, pool)
	_, err := q.Exec(ctx,
		`INSERT INTO actors (id, username, email, role, created_at)
		 VALUES ($1, $2, $3, $4, now())`,
		actorID, "tx-"+suffix, "tx-"+suffix+"@example.com", domain.RoleSponsor.String(),
	)
	return err
}

func TestRunInTx_Commit(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	actorID := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return insertActor(ctx, pool, actorID, "commit-"+actorID.String()[:8])
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !actorExists(t, pool, actorID) {
		t.Fatal("expected actor to exist after committed transaction")
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	actorID := uuid.New()
	sentinel := errors.New("business logic error")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if execErr := insertActor(ctx, pool, actorID, "rollback-"+actorID.String()[:8]); execErr != nil {
			t.Fatalf("insert inside tx failed: %v", execErr)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}

	if actorExists(t, pool, actorID) {
		t.Fatal("expected actor NOT to exist after rolled-back transaction")
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	actorID := uuid.New()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic to be re-raised")
		}
		if r != "test panic" {
			t.Fatalf("expected panic value %q, got %v", "test panic", r)
		}

		if actorExists(t, pool, actorID) {
			t.Fatal("expected actor NOT to exist after panic-rolled-back transaction")
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if execErr := insertActor(ctx, pool, actorID, "panic-"+actorID.String()[:8]); execErr != nil {
			t.Fatalf("insert inside tx failed: %v", execErr)
		}
		panic("test panic")
	})
}

// TestRunSerializable_ConflictMapsToErrConflict drives two serializable
// transactions into a classic write-skew pattern: both read the same
// sponsorship's invoice set, then both write. One commits; the loser's
// SQLSTATE 40001 must surface as domain.ErrConflict.
func TestRunSerializable_ConflictMapsToErrConflict(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)
	ctx := context.Background()

	sponsor := testhelper.SeedActor(t, pool, domain.RoleSponsor)
	project := testhelper.SeedProject(t, pool, true)
	amount, err := domain.NewMoney("100.00", "EUR")
	if err != nil {
		t.Fatalf("NewMoney: %v", err)
	}
	sp := testhelper.SeedSponsorship(t, pool, sponsor.ID, project.ID, amount)

	barrier := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, 2)

	worker := func(i int) {
		defer wg.Done()
		errs[i] = tm.RunSerializable(ctx, func(txCtx context.Context) error {
			q := postgres.QuerierFromCtx(txCtx, pool)

			var count int
			if err := q.QueryRow(txCtx,
				`SELECT count(*) FROM invoices WHERE sponsorship_id = $1`, sp.ID,
			).Scan(&count); err != nil {
				return err
			}

			// Hold until both transactions have taken their snapshot.
			<-barrier

			_, err := q.Exec(txCtx,
				`INSERT INTO invoices (id, code, registration_time, due_date, quantity,
					quantity_currency, tax, link, draft_mode, sponsorship_id,
					created_at, updated_at)
				 VALUES ($1, $2, now(), now() + interval '60 days', '50.00', 'EUR',
					'0', '', true, $3, now(), now())`,
				uuid.New(), "INV-conflict-"+uuid.New().String()[:8], sp.ID,
			)
			return err
		})
	}

	wg.Add(2)
	go worker(0)
	go worker(1)
	close(barrier)
	wg.Wait()

	conflicts := 0
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("expected ErrConflict, got: %v", err)
		}
		conflicts++
	}
	if conflicts > 1 {
		t.Fatalf("expected at most one conflict, got %d", conflicts)
	}
}
