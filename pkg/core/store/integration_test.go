//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"financial_statements/pkg/core/ingest"
	"financial_statements/pkg/core/statements"
)

func TestStatementRepo_RoundTrip(t *testing.T) {
	dsn := os.Getenv("FS_DATABASE_DSN")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		t.Skip("FS_DATABASE_DSN not set")
	}

	if err := Migrate(dsn, Up); err != nil {
		t.Fatalf("Migrate(up) error = %v", err)
	}

	ctx := context.Background()
	pool, err := InitDB(ctx, dsn)
	if err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	defer pool.Close()

	repo := NewStatementRepo(pool)
	record := ingest.FilingRecord{CIK: "320193", AccessionNumber: "test-0000320193-24-000123"}
	filing := statements.NewReconstructor().Reconstruct(balanceHTML)

	runID, err := repo.SaveHistory(ctx, "AAPL", "0000320193", []ingest.FilingResult{{Record: record, Filing: filing}})
	if err != nil {
		t.Fatalf("SaveHistory() error = %v", err)
	}
	t.Logf("run %s", runID)

	// saving again upserts instead of failing on the key
	if n, err := repo.SaveFiling(ctx, runID, record, filing); err != nil || n != 1 {
		t.Fatalf("SaveFiling() = %d, %v", n, err)
	}

	table, err := repo.Load(ctx, record.AccessionNumber, statements.BalanceSheet)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if v, ok := table.Value("Cash", "September 28, 2024"); !ok || v.IntPart() != 29943 {
		t.Errorf("expected Cash 29943, got %s (%v)", v, ok)
	}

	if _, err := repo.Load(ctx, record.AccessionNumber, statements.CashFlows); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for an absent statement, got %v", err)
	}
}
