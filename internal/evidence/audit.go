// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

const auditDBFile = "audit.db"

// Ledger is the per-version validation audit trail: every validator run
// appends its per-record report rows, so retention decisions remain
// reviewable after the CSV reports are superseded.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens or creates the audit database under the version
// directory's .mswrite/ folder.
func OpenLedger(versionDir string) (*Ledger, error) {
	dir := filepath.Join(versionDir, ".mswrite")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(dir, auditDBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			validated_at TEXT NOT NULL,
			total INTEGER NOT NULL,
			kept INTEGER NOT NULL,
			needs_review INTEGER NOT NULL,
			to_remove INTEGER NOT NULL,
			unchecked INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS findings (
			run_id TEXT NOT NULL REFERENCES runs(id),
			doi TEXT,
			citation_key TEXT NOT NULL,
			doi_status TEXT NOT NULL,
			freshness TEXT NOT NULL,
			action TEXT NOT NULL,
			reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_findings_key ON findings(citation_key)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun appends one validation run and its per-record rows, returning
// the run ID.
func (l *Ledger) RecordRun(ctx context.Context, summary types.ValidationSummary, records []types.EvidenceRecord) (string, error) {
	runID := uuid.NewString()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning audit transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, validated_at, total, kept, needs_review, to_remove, unchecked)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, summary.ValidatedAt.Format(time.RFC3339),
		summary.Total, summary.Kept, summary.NeedsReview, summary.ToRemove, summary.Unchecked)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO findings (run_id, doi, citation_key, doi_status, freshness, action, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing findings insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, runID, r.DOI, r.CitationKey,
			string(r.DOIStatus), string(r.Freshness), string(r.Action), r.Reason); err != nil {
			return "", fmt.Errorf("inserting finding for %s: %w", r.CitationKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing audit run: %w", err)
	}
	return runID, nil
}

// RunSummary is one recorded run in the ledger.
type RunSummary struct {
	ID          string    `json:"id"`
	ValidatedAt time.Time `json:"validated_at"`
	Total       int       `json:"total"`
	Kept        int       `json:"kept"`
	NeedsReview int       `json:"needs_review"`
	ToRemove    int       `json:"to_remove"`
	Unchecked   int       `json:"unchecked"`
}

// Runs lists recorded runs, newest first.
func (l *Ledger) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, validated_at, total, kept, needs_review, to_remove, unchecked
		 FROM runs ORDER BY validated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var ts string
		if err := rows.Scan(&r.ID, &ts, &r.Total, &r.Kept, &r.NeedsReview, &r.ToRemove, &r.Unchecked); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.ValidatedAt, _ = time.Parse(time.RFC3339, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// History returns every recorded decision for one citation key, newest
// run first.
func (l *Ledger) History(ctx context.Context, citationKey string) ([]types.EvidenceRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT f.doi, f.citation_key, f.doi_status, f.freshness, f.action, f.reason
		 FROM findings f JOIN runs r ON r.id = f.run_id
		 WHERE f.citation_key = ?
		 ORDER BY r.validated_at DESC`, citationKey)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []types.EvidenceRecord
	for rows.Next() {
		var r types.EvidenceRecord
		var status, freshness, action string
		if err := rows.Scan(&r.DOI, &r.CitationKey, &status, &freshness, &action, &r.Reason); err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		r.DOIStatus = types.DOIStatus(status)
		r.Freshness = types.Freshness(freshness)
		r.Action = types.Action(action)
		out = append(out, r)
	}
	return out, rows.Err()
}
