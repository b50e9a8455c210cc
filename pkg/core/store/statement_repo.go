package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"financial_statements/pkg/core/ingest"
	"financial_statements/pkg/core/statements"
	"financial_statements/pkg/core/tables"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound means no stored table matches the query.
var ErrNotFound = errors.New("statement table not found")

// StatementRepo stores one row per (filing, statement) in statement_tables.
type StatementRepo struct {
	pool *pgxpool.Pool
}

// NewStatementRepo creates a repository on pool.
func NewStatementRepo(pool *pgxpool.Pool) *StatementRepo {
	return &StatementRepo{pool: pool}
}

// statementRow is one statement_tables row before insertion.
type statementRow struct {
	statement string
	periods   []string
	tableJSON []byte
}

// statementRows encodes the present statements of a filing.
func statementRows(filing *statements.ReconstructedFiling) ([]statementRow, error) {
	var rows []statementRow
	for _, st := range filing.Present() {
		table, _ := filing.Table(st)
		data, err := json.Marshal(table)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", st, err)
		}
		rows = append(rows, statementRow{statement: st.Key(), periods: table.Periods, tableJSON: data})
	}
	return rows, nil
}

// SaveFiling upserts every present statement of filing, keyed on accession number
// and statement. Absent statements are not written. Returns the number of rows written.
func (r *StatementRepo) SaveFiling(ctx context.Context, runID uuid.UUID, record ingest.FilingRecord, filing *statements.ReconstructedFiling) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("database pool not initialized")
	}

	rows, err := statementRows(filing)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO statement_tables (run_id, cik, accession_number, statement, periods, table_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (accession_number, statement)
		DO UPDATE SET
			run_id = EXCLUDED.run_id,
			periods = EXCLUDED.periods,
			table_json = EXCLUDED.table_json,
			created_at = EXCLUDED.created_at;
	`

	batch := &pgx.Batch{}
	now := time.Now()
	for _, row := range rows {
		batch.Queue(query, runID.String(), record.CIK, record.AccessionNumber, row.statement, row.periods, row.tableJSON, now)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("failed to save filing %s: %w", record.AccessionNumber, err)
	}
	return len(rows), nil
}

// SaveHistory records a walk run and saves each reconstructed filing under one run ID.
func (r *StatementRepo) SaveHistory(ctx context.Context, ticker, cik string, results []ingest.FilingResult) (uuid.UUID, error) {
	if r.pool == nil {
		return uuid.Nil, fmt.Errorf("database pool not initialized")
	}

	runID := uuid.New()
	absent := 0
	for _, res := range results {
		if res.Absent() {
			absent++
		}
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO walk_runs (run_id, ticker, cik, filings, absent, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		runID.String(), ticker, cik, len(results), absent, time.Now())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record run: %w", err)
	}

	for _, res := range results {
		if res.Absent() {
			continue
		}
		if _, err := r.SaveFiling(ctx, runID, res.Record, res.Filing); err != nil {
			return runID, err
		}
	}
	return runID, nil
}

// Load returns a stored statement table.
func (r *StatementRepo) Load(ctx context.Context, accession string, st statements.Statement) (*tables.StatementTable, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var data []byte
	err := r.pool.QueryRow(ctx,
		`SELECT table_json FROM statement_tables WHERE accession_number = $1 AND statement = $2`,
		accession, st.Key()).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", accession, st, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", accession, st, err)
	}

	var table tables.StatementTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal table: %w", err)
	}
	return &table, nil
}
