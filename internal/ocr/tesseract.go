// Package ocr wraps the tesseract binary: one plain-text pass for the
// recognized text, one TSV pass for per-word confidences.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/smalter/autodoc/internal/common"
)

// Recognition is the raw output of one OCR pass over an image.
type Recognition struct {
	Text        string
	Confidences []float64 // per-word Tesseract scores, 0..100
}

type Engine struct {
	cfg    common.OCRConfig
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg common.OCRConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "fra"
	}
	return &Engine{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// Recognize runs both passes over imagePath. The text pass failing is an
// error; the confidence pass failing only degrades the quality score.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (Recognition, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	text, err := e.plainText(ctx, imagePath)
	if err != nil {
		return Recognition{}, err
	}

	confs, err := e.wordConfidences(ctx, imagePath)
	if err != nil {
		e.logger.Warn("ocr.tsv_failed", "path", imagePath, "error", err)
		confs = nil
	}

	e.logger.Info("ocr.recognized",
		"path", imagePath,
		"chars", len(text),
		"words_scored", len(confs))
	return Recognition{Text: text, Confidences: confs}, nil
}

func (e *Engine) plainText(ctx context.Context, imagePath string) (string, error) {
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(imagePath)...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil
}

// wordConfidences runs tesseract in TSV mode and collects the conf column
// (index 10) of every detected word. -1 marks layout rows, not words.
func (e *Engine) wordConfidences(ctx context.Context, imagePath string) ([]float64, error) {
	args := append(e.args(imagePath), "tsv")
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract tsv: %w", err)
	}

	var confs []float64
	for i, line := range strings.Split(string(out), "\n") {
		if i == 0 || line == "" { // skip header
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			confs = append(confs, v)
		}
	}
	return confs, nil
}

func (e *Engine) args(imagePath string) []string {
	args := []string{imagePath, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}
