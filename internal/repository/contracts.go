// Package repository journals pipeline outcomes for audit. Two backends
// exist: an embedded SQLite file for single-host runs and PostgreSQL for
// shared deployments.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smalter/autodoc/constants"
	"github.com/smalter/autodoc/internal/common"
	"github.com/smalter/autodoc/internal/pipeline"
)

// Record is one journaled pipeline run.
type Record struct {
	DocumentID       string
	FileName         string
	Status           constants.PipelineStatus
	RejectedAtGate   int
	RejectionReason  constants.RejectionReason
	Confidence       float64
	ExtractionMethod constants.ExtractionMethod
	Payload          []byte // full Outcome as JSON
	CreatedAt        time.Time
}

// Store is the audit journal surface.
type Store interface {
	SaveOutcome(ctx context.Context, out pipeline.Outcome) error
	ListOutcomes(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Open selects a backend from the audit configuration. An empty driver
// means journaling is disabled and a no-op store is returned.
func Open(ctx context.Context, cfg common.AuditConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "":
		return noopStore{}, nil
	case "sqlite":
		return OpenSQLite(cfg.DSN, logger)
	case "postgres":
		return OpenPostgres(ctx, cfg.DSN, logger)
	default:
		return nil, common.NewAppError("AUDIT",
			fmt.Sprintf("unknown audit driver %q", cfg.Driver), common.ErrInvalidInput)
	}
}

type noopStore struct{}

func (noopStore) SaveOutcome(context.Context, pipeline.Outcome) error { return nil }
func (noopStore) ListOutcomes(context.Context, int) ([]Record, error) { return nil, nil }
func (noopStore) Close() error                                        { return nil }

func recordFromOutcome(out pipeline.Outcome, payload []byte) Record {
	rec := Record{
		DocumentID:      out.DocumentID,
		FileName:        out.FileName,
		Status:          out.Status,
		RejectedAtGate:  out.RejectedAtGate,
		RejectionReason: out.RejectionReason,
		Payload:         payload,
	}
	if out.Result != nil {
		rec.Confidence = out.Result.ConfidenceScore
		rec.ExtractionMethod = out.Result.ExtractionMethod
	}
	return rec
}
