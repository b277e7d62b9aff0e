package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/smalter/autodoc/internal/common"
	"github.com/smalter/autodoc/internal/pipeline"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS outcomes (
	document_id       TEXT PRIMARY KEY,
	file_name         TEXT NOT NULL,
	status            TEXT NOT NULL,
	rejected_at_gate  INTEGER NOT NULL,
	rejection_reason  TEXT NOT NULL DEFAULT '',
	confidence        REAL NOT NULL DEFAULT 0,
	extraction_method TEXT NOT NULL DEFAULT '',
	payload           TEXT NOT NULL,
	created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_outcomes_status ON outcomes(status);
`

// SQLiteStore journals outcomes into an embedded database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenSQLite(dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = "autodoc.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite")
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, common.WrapError(err, "init schema")
	}
	logger.Info("repository.sqlite_opened", "dsn", dsn)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) SaveOutcome(ctx context.Context, out pipeline.Outcome) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	rec := recordFromOutcome(out, payload)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO outcomes
			(document_id, file_name, status, rejected_at_gate, rejection_reason, confidence, extraction_method, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.DocumentID, rec.FileName, string(rec.Status), rec.RejectedAtGate,
		string(rec.RejectionReason), rec.Confidence, string(rec.ExtractionMethod), string(rec.Payload))
	if err != nil {
		return fmt.Errorf("insert outcome %s: %w", rec.DocumentID, err)
	}
	return nil
}

func (s *SQLiteStore) ListOutcomes(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, file_name, status, rejected_at_gate, rejection_reason,
		       confidence, extraction_method, payload, created_at
		FROM outcomes ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var payload string
		if err := rows.Scan(&rec.DocumentID, &rec.FileName, &rec.Status, &rec.RejectedAtGate,
			&rec.RejectionReason, &rec.Confidence, &rec.ExtractionMethod, &payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		rec.Payload = []byte(payload)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
