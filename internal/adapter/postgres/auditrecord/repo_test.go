package auditrecord_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/auditrecord"
	"github.com/rmarrand/sponsorhub-backend/internal/adapter/postgres/testhelper"
	"github.com/rmarrand/sponsorhub-backend/internal/domain"
)

// newRepo sets up a test DB and returns a ready Repo + pool.
func newRepo(t *testing.T) (*auditrecord.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return auditrecord.New(pool), pool
}

// seedAudit creates an auditor with one code audit.
func seedAudit(t *testing.T, pool *pgxpool.Pool) domain.CodeAudit {
	t.Helper()
	auditor := testhelper.SeedActor(t, pool, domain.RoleAuditor)
	return testhelper.SeedCodeAudit(t, pool, auditor.ID)
}

func TestRepo_FindByID_HappyPath(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	audit := seedAudit(t, pool)
	seeded := testhelper.SeedAuditRecord(t, pool, audit.ID)

	got, err := repo.FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID: unexpected error: %v", err)
	}

	if got.ID != seeded.ID {
		t.Errorf("ID mismatch: got %s, want %s", got.ID, seeded.ID)
	}
	if got.Code != seeded.Code {
		t.Errorf("Code mismatch: got %q, want %q", got.Code, seeded.Code)
	}
	if !got.InitialPeriod.Equal(seeded.InitialPeriod) {
		t.Errorf("InitialPeriod mismatch: got %s, want %s", got.InitialPeriod, seeded.InitialPeriod)
	}
	if got.FinalPeriod != nil {
		t.Errorf("FinalPeriod should be nil, got %v", got.FinalPeriod)
	}
	if got.Mark != seeded.Mark {
		t.Errorf("Mark mismatch: got %s, want %s", got.Mark, seeded.Mark)
	}
	if !got.DraftMode {
		t.Error("DraftMode should be true for a seeded record")
	}
	if got.CodeAuditID != audit.ID {
		t.Errorf("CodeAuditID mismatch: got %s, want %s", got.CodeAuditID, audit.ID)
	}
}

func TestRepo_FindByID_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.FindByID(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepo_FindByCode(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	audit := seedAudit(t, pool)
	seeded := testhelper.SeedAuditRecord(t, pool, audit.ID)

	got, err := repo.FindByCode(ctx, seeded.Code)
	if err != nil {
		t.Fatalf("FindByCode: unexpected error: %v", err)
	}
	if got.ID != seeded.ID {
		t.Errorf("ID mismatch: got %s, want %s", got.ID, seeded.ID)
	}

	if _, err := repo.FindByCode(ctx, "REC-missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown code, got %v", err)
	}
}

func TestRepo_ListByAuditor_OrderAndFilter(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	auditor := testhelper.SeedActor(t, pool, domain.RoleAuditor)
	audit := testhelper.SeedCodeAudit(t, pool, auditor.ID)

	older := testhelper.SeedAuditRecord(t, pool, audit.ID)
	newer := testhelper.SeedAuditRecord(t, pool, audit.ID)

	// Move one record's period forward and publish it.
	newer.InitialPeriod = newer.InitialPeriod.Add(48 * time.Hour)
	newer.DraftMode = false
	newer.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	if err := repo.Update(ctx, newer); err != nil {
		t.Fatalf("Update: unexpected error: %v", err)
	}

	all, err := repo.ListByAuditor(ctx, auditor.ID, domain.ListFilter{})
	if err != nil {
		t.Fatalf("ListByAuditor: unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 records, got %d", len(all))
	}
	if all[0].ID != newer.ID || all[1].ID != older.ID {
		t.Errorf("expected newest period first, got %s then %s", all[0].ID, all[1].ID)
	}

	draft := true
	drafts, err := repo.ListByAuditor(ctx, auditor.ID, domain.ListFilter{Draft: &draft})
	if err != nil {
		t.Fatalf("ListByAuditor drafts: unexpected error: %v", err)
	}
	if len(drafts) != 1 || drafts[0].ID != older.ID {
		t.Errorf("expected only the draft record, got %d records", len(drafts))
	}
}

func TestRepo_ListByAuditor_ExcludesOtherAuditors(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	mine := seedAudit(t, pool)
	testhelper.SeedAuditRecord(t, pool, mine.ID)

	other := seedAudit(t, pool)
	testhelper.SeedAuditRecord(t, pool, other.ID)

	records, err := repo.ListByAuditor(ctx, mine.AuditorID, domain.ListFilter{})
	if err != nil {
		t.Fatalf("ListByAuditor: unexpected error: %v", err)
	}
	for _, rec := range records {
		if rec.CodeAuditID != mine.ID {
			t.Errorf("record %s belongs to a foreign code audit", rec.ID)
		}
	}
}

func TestRepo_Insert_DuplicateCode(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	audit := seedAudit(t, pool)
	seeded := testhelper.SeedAuditRecord(t, pool, audit.ID)

	dup := seeded
	dup.ID = uuid.New()

	err := repo.Insert(ctx, dup)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestRepo_Update_HappyPath(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	audit := seedAudit(t, pool)
	rec := testhelper.SeedAuditRecord(t, pool, audit.ID)

	final := rec.InitialPeriod.Add(72 * time.Hour)
	link := "https://example.com/reports/1"
	rec.FinalPeriod = &final
	rec.OptionalLink = &link
	rec.Mark = domain.MarkAPlus
	rec.DraftMode = false
	rec.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	if err := repo.Update(ctx, rec); err != nil {
		t.Fatalf("Update: unexpected error: %v", err)
	}

	got, err := repo.FindByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("FindByID after update: unexpected error: %v", err)
	}
	if got.FinalPeriod == nil || !got.FinalPeriod.Equal(final) {
		t.Errorf("FinalPeriod mismatch: got %v, want %s", got.FinalPeriod, final)
	}
	if got.OptionalLink == nil || *got.OptionalLink != link {
		t.Errorf("OptionalLink mismatch: got %v, want %q", got.OptionalLink, link)
	}
	if got.Mark != domain.MarkAPlus {
		t.Errorf("Mark mismatch: got %s, want %s", got.Mark, domain.MarkAPlus)
	}
	if got.DraftMode {
		t.Error("DraftMode should be false after the update")
	}
}

func TestRepo_Update_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	missing := domain.AuditRecord{
		ID:            uuid.New(),
		Code:          "REC-ghost",
		InitialPeriod: time.Now().UTC(),
		Mark:          domain.MarkB,
		UpdatedAt:     time.Now().UTC(),
	}

	err := repo.Update(context.Background(), missing)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
