package repository

import (
	"io"
	"log/slog"

	"github.com/smalter/autodoc/internal/common"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func configWithDriver(driver string) common.AuditConfig {
	return common.AuditConfig{Driver: driver}
}
