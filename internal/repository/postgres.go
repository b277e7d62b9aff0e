package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smalter/autodoc/constants"
	"github.com/smalter/autodoc/internal/common"
	"github.com/smalter/autodoc/internal/pipeline"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS outcomes (
	document_id       TEXT PRIMARY KEY,
	file_name         TEXT NOT NULL,
	status            TEXT NOT NULL,
	rejected_at_gate  INTEGER NOT NULL,
	rejection_reason  TEXT NOT NULL DEFAULT '',
	confidence        DOUBLE PRECISION NOT NULL DEFAULT 0,
	extraction_method TEXT NOT NULL DEFAULT '',
	payload           JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_outcomes_status ON outcomes(status);
`

// PostgresStore journals outcomes into a shared PostgreSQL database.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, common.WrapError(err, "connect postgres")
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, common.WrapError(err, "init schema")
	}
	logger.Info("repository.postgres_opened")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) SaveOutcome(ctx context.Context, out pipeline.Outcome) error {
	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	rec := recordFromOutcome(out, payload)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO outcomes
			(document_id, file_name, status, rejected_at_gate, rejection_reason, confidence, extraction_method, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.DocumentID, rec.FileName, string(rec.Status), rec.RejectedAtGate,
		string(rec.RejectionReason), rec.Confidence, string(rec.ExtractionMethod), rec.Payload)
	if err != nil {
		return fmt.Errorf("insert outcome %s: %w", rec.DocumentID, err)
	}
	return nil
}

func (s *PostgresStore) ListOutcomes(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT document_id, file_name, status, rejected_at_gate, rejection_reason,
		       confidence, extraction_method, payload, created_at
		FROM outcomes ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var status, reason, method string
		if err := rows.Scan(&rec.DocumentID, &rec.FileName, &status, &rec.RejectedAtGate,
			&reason, &rec.Confidence, &method, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		rec.Status = constants.PipelineStatus(status)
		rec.RejectionReason = constants.RejectionReason(reason)
		rec.ExtractionMethod = constants.ExtractionMethod(method)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
