// Package export produces XLSX summaries of batch processing runs.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/smalter/autodoc/internal/pipeline"
)

// Service turns a slice of pipeline outcomes into XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// OutcomesXLSX writes one row per processed document: terminal status,
// rejection details and the key extracted fields.
func (s *Service) OutcomesXLSX(outcomes []pipeline.Outcome) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Document ID",
		"File",
		"Status",
		"Gate",
		"Rejection Reason",
		"Agent",
		"Method",
		"Confidence",
		"Invoice Number",
		"Date",
		"Amount (incl. tax)",
		"Supplier",
		"Message",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, out := range outcomes {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, out.DocumentID)
		write(2, out.FileName)
		write(3, string(out.Status))
		if out.RejectedAtGate >= 0 {
			write(4, out.RejectedAtGate)
		}
		write(5, string(out.RejectionReason))

		if r := out.Result; r != nil {
			write(6, r.AgentName)
			write(7, string(r.ExtractionMethod))
			write(8, r.ConfidenceScore)
			write(9, stringField(r.ExtractedData, "numero_facture"))
			write(10, stringField(r.ExtractedData, "date_facture"))
			if v, ok := r.ExtractedData["montant_ttc"]; ok {
				write(11, v)
			}
			write(12, stringField(r.ExtractedData, "fournisseur"))
		}
		write(13, truncate(out.Message, 140))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 38) // uuid
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "E", 18)
	_ = f.SetColWidth(sheet, "F", "H", 14)
	_ = f.SetColWidth(sheet, "I", "L", 22)
	_ = f.SetColWidth(sheet, "M", "M", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(outcomes),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key]; ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
