// Package textextract unifies the two text acquisition strategies: direct
// extraction of a native PDF text layer and OCR over a raster page.
package textextract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smalter/autodoc/internal/common"
	"github.com/smalter/autodoc/internal/ocr"
	"github.com/smalter/autodoc/internal/pdftext"
)

// Method tags how the text was produced.
type Method string

const (
	MethodDirect Method = "DIRECT"
	MethodOCR    Method = "OCR"
)

// Result carries the extracted text and its statistics. OCRQuality is set
// exactly when Method is OCR.
type Result struct {
	Text       string
	Method     Method
	CharCount  int
	WordCount  int
	Pages      int
	OCRQuality *ocr.QualityScore
}

type Service struct {
	engine *ocr.Engine
	minOCR float64
	logger *slog.Logger
}

func NewService(cfg common.OCRConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine: ocr.NewEngine(cfg, logger),
		minOCR: cfg.MinConfidence,
		logger: logger,
	}
}

// ExtractNative reads the text layer of a native PDF. Fast and exact, no
// quality score applies.
func (s *Service) ExtractNative(pdfPath string) (Result, error) {
	text, pages, err := pdftext.ExtractText(pdfPath)
	if err != nil {
		return Result{}, fmt.Errorf("native extraction: %w", err)
	}

	res := Result{
		Text:      text,
		Method:    MethodDirect,
		CharCount: len(text),
		WordCount: len(strings.Fields(text)),
		Pages:     pages,
	}
	s.logger.Info("textextract.direct",
		"path", pdfPath, "chars", res.CharCount, "words", res.WordCount, "pages", pages)
	return res, nil
}

// ExtractOCR recognizes an image page and grades the recognition. A low
// quality score is reported, not turned into an error: the gate decides.
func (s *Service) ExtractOCR(ctx context.Context, imagePath string) (Result, error) {
	rec, err := s.engine.Recognize(ctx, imagePath)
	if err != nil {
		return Result{}, fmt.Errorf("ocr extraction: %w", err)
	}

	score := ocr.ScoreQuality(rec, s.minOCR)
	res := Result{
		Text:       rec.Text,
		Method:     MethodOCR,
		CharCount:  len(rec.Text),
		WordCount:  len(strings.Fields(rec.Text)),
		Pages:      1,
		OCRQuality: &score,
	}
	s.logger.Info("textextract.ocr",
		"path", imagePath,
		"chars", res.CharCount,
		"words", res.WordCount,
		"quality", score.Overall,
		"passed", score.Passed)
	return res, nil
}
