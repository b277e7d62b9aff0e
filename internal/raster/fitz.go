// Package raster converts the first page of a PDF into a JPEG for the
// quality gate and the OCR engine.
package raster

import (
	"fmt"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

const jpegQuality = 95

type Converter struct {
	dpi    int
	logger *slog.Logger
}

func NewConverter(dpi int, logger *slog.Logger) *Converter {
	if dpi <= 0 {
		dpi = 300
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{dpi: dpi, logger: logger}
}

// FirstPage renders page one of pdfPath into outDir and returns the JPEG
// path. One page is enough for the gates: quality and OCR both judge the
// document by its opening page.
func (c *Converter) FirstPage(pdfPath, outDir string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	img, err := doc.ImageDPI(0, float64(c.dpi))
	if err != nil {
		return "", fmt.Errorf("render page 1: %w", err)
	}

	outPath := filepath.Join(outDir, "page_001.jpg")
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", outPath, err)
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		out.Close()
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", outPath, err)
	}

	bounds := img.Bounds()
	c.logger.Info("raster.first_page",
		"pdf", pdfPath,
		"out", outPath,
		"dpi", c.dpi,
		"width", bounds.Dx(),
		"height", bounds.Dy())
	return outPath, nil
}
