// Package classify implements the file type gate: magic-byte sniffing plus,
// for PDFs, a text-layer ratio that separates native documents from scans.
package classify

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/smalter/autodoc/constants"
	"github.com/smalter/autodoc/internal/pdftext"
)

var pdfMagic = []byte("%PDF")

// nativeTextRatio separates a native PDF (even a sparse one stays well
// above it) from a scan (a few parasite glyphs stay well below).
const nativeTextRatio = 0.10

// Result carries the detected class and per-class metadata.
type Result struct {
	Class    constants.FileClass
	Metadata map[string]any
}

type Classifier struct {
	logger *slog.Logger
}

func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger}
}

// Detect sniffs the file content, ignoring the filename extension.
func (c *Classifier) Detect(path string) Result {
	head, err := readHead(path, 512)
	if err != nil {
		c.logger.Error("classify.read_failed", "path", path, "error", err)
		return Result{Class: constants.FileClassUnsupported, Metadata: map[string]any{"error": err.Error()}}
	}

	if bytes.HasPrefix(head, pdfMagic) {
		return c.analyzePDF(path)
	}
	if cfg, format, err := decodeImageConfig(path); err == nil {
		c.logger.Info("classify.image", "path", path, "format", format, "width", cfg.Width, "height", cfg.Height)
		return Result{
			Class: constants.FileClassImage,
			Metadata: map[string]any{
				"width":  cfg.Width,
				"height": cfg.Height,
				"format": format,
			},
		}
	}

	c.logger.Warn("classify.unsupported", "path", path)
	return Result{
		Class:    constants.FileClassUnsupported,
		Metadata: map[string]any{"reason": "format non pris en charge"},
	}
}

// analyzePDF extracts the text layer and classifies by its density. When
// the text layer cannot be parsed at all the file is treated as a scan,
// with the page count taken from the PDF structure instead.
func (c *Classifier) analyzePDF(path string) Result {
	text, pages, err := pdftext.ExtractText(path)
	if err != nil {
		pages, cntErr := api.PageCountFile(path)
		if cntErr != nil {
			c.logger.Error("classify.pdf_unreadable", "path", path, "error", cntErr)
			return Result{
				Class:    constants.FileClassUnsupported,
				Metadata: map[string]any{"error": fmt.Sprintf("pdf illisible: %v", cntErr)},
			}
		}
		c.logger.Warn("classify.pdf_text_layer_unreadable", "path", path, "pages", pages, "error", err)
		return Result{
			Class: constants.FileClassPDFImage,
			Metadata: map[string]any{
				"pages":    pages,
				"has_text": false,
			},
		}
	}

	ratio := pdftext.TextRatio(text)
	hasText := ratio > nativeTextRatio

	c.logger.Info("classify.pdf", "path", path, "pages", pages,
		"text_length", len(text), "text_ratio", ratio, "has_text", hasText)

	meta := map[string]any{
		"pages":       pages,
		"has_text":    hasText,
		"text_length": len(text),
		"text_ratio":  ratio,
	}
	if hasText {
		if len(text) > 200 {
			meta["sample_text"] = text[:200]
		} else {
			meta["sample_text"] = text
		}
		return Result{Class: constants.FileClassPDFNativeText, Metadata: meta}
	}
	return Result{Class: constants.FileClassPDFImage, Metadata: meta}
}

func readHead(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.Read(buf)
	if read == 0 && err != nil {
		return nil, err
	}
	return buf[:read], nil
}

func decodeImageConfig(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer f.Close()
	return image.DecodeConfig(f)
}
