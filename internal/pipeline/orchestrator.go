// Package pipeline runs one document through the gate sequence: file type,
// image quality, text extraction and substantiality, type consistency,
// agent extraction and required-field validation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/smalter/autodoc/constants"
	"github.com/smalter/autodoc/internal/agents"
	"github.com/smalter/autodoc/internal/classify"
	"github.com/smalter/autodoc/internal/common"
	"github.com/smalter/autodoc/internal/patterns"
	"github.com/smalter/autodoc/internal/quality"
	"github.com/smalter/autodoc/internal/raster"
	"github.com/smalter/autodoc/internal/textextract"
	"github.com/smalter/autodoc/internal/typecheck"
)

// minSubstantialText is the floor below which a document is considered to
// carry no exploitable content.
const minSubstantialText = 50

// watermarkOnlyLimit bounds the length under which a known scanner
// watermark can plausibly be the whole text layer.
const watermarkOnlyLimit = 100

var watermarks = []string{
	"onlinephotoscanner", "camscanner", "adobe scan",
	"evaluation", "demo", "trial",
}

// Narrow collaborator views, concrete implementations wired in New.
type classifier interface {
	Detect(path string) classify.Result
}

type qualityChecker interface {
	Check(path string) quality.Score
}

type rasterizer interface {
	FirstPage(pdfPath, outDir string) (string, error)
}

type textExtractor interface {
	ExtractNative(pdfPath string) (textextract.Result, error)
	ExtractOCR(ctx context.Context, imagePath string) (textextract.Result, error)
}

type agentRouter interface {
	Resolve(docType constants.DocumentType, language string) (*agents.Agent, bool)
}

// Request describes one document to process. FilePath is never modified or
// deleted; the pipeline works on its own copy.
type Request struct {
	FilePath     string
	FileName     string // defaults to base of FilePath
	DeclaredType constants.DocumentType
	Language     string // ISO code or "auto"
}

type Orchestrator struct {
	cfg       *common.Config
	classify  classifier
	quality   qualityChecker
	raster    rasterizer
	text      textExtractor
	validator *typecheck.Validator
	router    agentRouter
	logger    *slog.Logger
}

func New(cfg *common.Config, router *agents.Router, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if router == nil {
		router = agents.NewRouter(cfg.LLM, logger)
	}
	return &Orchestrator{
		cfg:       cfg,
		classify:  classify.NewClassifier(logger),
		quality:   quality.NewChecker(cfg.Quality, logger),
		raster:    raster.NewConverter(cfg.Quality.RasterDPI, logger),
		text:      textextract.NewService(cfg.OCR, logger),
		validator: typecheck.NewValidator(logger),
		router:    router,
		logger:    logger,
	}
}

// Process runs the full gate sequence over one document. Every exit path,
// terminal or not, releases the run's temp artifacts.
func (o *Orchestrator) Process(ctx context.Context, req Request) Outcome {
	docID := uuid.New().String()
	fileName := req.FileName
	if fileName == "" {
		fileName = filepath.Base(req.FilePath)
	}
	out := Outcome{DocumentID: docID, FileName: fileName, RejectedAtGate: -1}

	log := o.logger.With("document_id", docID, "file", fileName)

	// upload constraints, checked before any gate runs
	info, err := os.Stat(req.FilePath)
	if err != nil {
		return o.reject(out, constants.GateFileType, constants.ReasonUnsupportedFileType,
			fmt.Sprintf("fichier illisible : %v", err),
			[]string{"Vérifiez que le fichier existe et est lisible"})
	}
	if appErr := o.checkUpload(fileName, info.Size()); appErr != nil {
		suggestions := []string{"Formats acceptés : pdf, jpg, jpeg, png, tiff, bmp"}
		if errors.Is(appErr, common.ErrTooLarge) {
			suggestions = []string{fmt.Sprintf("Réduisez le fichier sous %dMB", o.cfg.Upload.MaxFileSizeMB)}
		}
		return o.reject(out, constants.GateFileType, constants.ReasonUnsupportedFileType,
			appErr.Message, suggestions)
	}

	workDir, err := os.MkdirTemp(o.cfg.Upload.TempDir, "autodoc-*")
	if err != nil {
		return o.reject(out, constants.GateFileType, constants.ReasonUnsupportedFileType,
			fmt.Sprintf("espace de travail indisponible : %v", err),
			[]string{"Réessayez plus tard"})
	}
	workPath := filepath.Join(workDir, docID+"_"+fileName)

	var rasterPath string
	defer func() {
		// rasterized intermediate goes first, then the working copy
		if rasterPath != "" {
			if err := os.Remove(rasterPath); err != nil && !os.IsNotExist(err) {
				log.Warn("pipeline.cleanup_raster_failed", "error", err)
			}
		}
		if err := os.Remove(workPath); err != nil && !os.IsNotExist(err) {
			log.Warn("pipeline.cleanup_work_failed", "error", err)
		}
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("pipeline.cleanup_dir_failed", "error", err)
		}
	}()

	if err := copyFile(req.FilePath, workPath); err != nil {
		return o.reject(out, constants.GateFileType, constants.ReasonUnsupportedFileType,
			fmt.Sprintf("copie du fichier impossible : %v", err),
			[]string{"Vérifiez que le fichier existe et est lisible"})
	}

	log.Info("pipeline.start", "size_bytes", info.Size(), "declared_type", req.DeclaredType)

	// gate 0: file class
	detection := o.classify.Detect(workPath)
	out.FileClass = detection.Class
	out.mergeMetadata(detection.Metadata)

	if detection.Class == constants.FileClassUnsupported {
		return o.reject(out, constants.GateFileType, constants.ReasonUnsupportedFileType,
			"type de fichier non supporté",
			[]string{"Soumettez un PDF ou une image (JPG, PNG, TIFF, BMP)"})
	}
	log.Info("pipeline.gate0", "file_class", detection.Class)

	// gate 1: image quality (raster inputs only)
	imagePath := ""
	switch detection.Class {
	case constants.FileClassPDFImage:
		rasterPath, err = o.raster.FirstPage(workPath, workDir)
		if err != nil {
			return o.reject(out, constants.GateImageQuality, constants.ReasonPDFConversionFailed,
				fmt.Sprintf("impossible d'extraire l'image du PDF : %v", err),
				[]string{"Vérifiez que le PDF n'est pas corrompu ou protégé"})
		}
		imagePath = rasterPath
	case constants.FileClassImage:
		imagePath = workPath
	}

	if imagePath != "" {
		score := o.quality.Check(imagePath)
		out.QualityScore = &score
		if !score.Passed {
			return o.reject(out, constants.GateImageQuality, constants.ReasonImageQualityLow,
				fmt.Sprintf("qualité image insuffisante : %.1f%%", score.Overall),
				score.Suggestions)
		}
		log.Info("pipeline.gate1", "quality", score.Overall)
	}

	// gate 2: text extraction
	var textRes textextract.Result
	if detection.Class == constants.FileClassPDFNativeText {
		textRes, err = o.text.ExtractNative(workPath)
	} else {
		textRes, err = o.text.ExtractOCR(ctx, imagePath)
	}
	if err != nil {
		return o.reject(out, constants.GateTextExtract, constants.ReasonTextExtractionFailed,
			fmt.Sprintf("impossible d'extraire le texte : %v", err),
			[]string{"Vérifiez que le document n'est pas corrompu"})
	}
	if textRes.OCRQuality != nil && !textRes.OCRQuality.Passed {
		out.mergeMetadata(map[string]any{"ocr_quality": *textRes.OCRQuality})
		return o.reject(out, constants.GateTextExtract, constants.ReasonOCRQualityLow,
			fmt.Sprintf("qualité OCR insuffisante : %.1f%%", textRes.OCRQuality.Overall),
			[]string{
				"Améliorez la qualité du scan (netteté, résolution)",
				"Vérifiez que le document n'est pas trop dégradé",
				"Réessayez avec un document de meilleure qualité",
			})
	}
	log.Info("pipeline.gate2", "method", textRes.Method, "chars", textRes.CharCount)

	// gate 2, substantiality: a native PDF whose text layer is empty or a
	// known scanner watermark gets exactly one rasterize-and-OCR retry.
	textRes, reject := o.recoverSubstantiality(ctx, log, &out, detection.Class, workPath, workDir, textRes)
	if reject != nil {
		return *reject
	}

	finalLen := len(strings.TrimSpace(textRes.Text))
	if finalLen < minSubstantialText {
		out.mergeMetadata(map[string]any{
			"extracted_text": head(textRes.Text, 200),
			"text_length":    finalLen,
		})
		return o.reject(out, constants.GateTextExtract, constants.ReasonTextExtractionFailed,
			fmt.Sprintf("le document ne contient pas assez de texte exploitable (%d caractères)", finalLen),
			[]string{
				"Le document semble vide ou ne contenir qu'un watermark",
				"Vérifiez que le fichier contient bien une image scannée",
				"Rescannez le document original en meilleure qualité",
			})
	}

	// gate 3: declared type vs content
	validation := o.validator.Validate(textRes.Text, req.DeclaredType)
	out.mergeMetadata(map[string]any{"type_validation": validation})
	if !validation.Supported {
		return o.reject(out, constants.GateTypeCheck, constants.ReasonUnknownDocumentType,
			fmt.Sprintf("type de document non supporté : %q", req.DeclaredType),
			[]string{fmt.Sprintf("Types supportés : %v", constants.SupportedDocumentTypes)})
	}
	if !validation.Valid {
		return o.reject(out, constants.GateTypeCheck, constants.ReasonTypeMismatch,
			validation.Reason,
			[]string{
				fmt.Sprintf("Type détecté : %s", validation.DetectedType),
				fmt.Sprintf("Type déclaré : %s", validation.DeclaredType),
				"Vérifiez le type de document avant de le soumettre à nouveau",
			})
	}

	language := strings.ToLower(strings.TrimSpace(req.Language))
	if language == "" || language == "auto" {
		language = patterns.Detect(textRes.Text).LanguageCode()
		log.Info("pipeline.language_detected", "language", language)
	}

	// gate 4: agent selection never rejects on its own past gate 3
	agent, ok := o.router.Resolve(req.DeclaredType, language)
	if !ok {
		return o.reject(out, constants.GateTypeCheck, constants.ReasonUnknownDocumentType,
			fmt.Sprintf("type de document non supporté : %q", req.DeclaredType),
			[]string{fmt.Sprintf("Types supportés : %v", constants.SupportedDocumentTypes)})
	}
	log.Info("pipeline.gate4", "agent", agent.Name(), "language", language)

	// gates 4 and 5: structured extraction plus required-field validation
	result := agent.Process(ctx, textRes.Text)
	out.Result = &result
	out.mergeMetadata(map[string]any{
		"text_extraction": map[string]any{
			"method":     string(textRes.Method),
			"char_count": textRes.CharCount,
			"word_count": textRes.WordCount,
		},
	})

	if !result.Success {
		return o.reject(out, constants.GateValidation, constants.ReasonValidationFailed,
			"validation échouée : champs obligatoires manquants",
			append(append([]string{}, result.Errors...), result.Warnings...))
	}

	out.Status = constants.StatusCompleted
	out.Message = fmt.Sprintf("document traité avec succès (confiance : %.1f%%)", result.ConfidenceScore)
	log.Info("pipeline.completed", "confidence", result.ConfidenceScore, "method", result.ExtractionMethod)
	return out
}

// checkUpload enforces the upload constraints ahead of gate 0, classifying
// each fault so callers can branch on the cause.
func (o *Orchestrator) checkUpload(fileName string, size int64) *common.AppError {
	ext := constants.NormalizeExt(filepath.Ext(fileName))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return common.NewAppError("UPLOAD",
			fmt.Sprintf("extension .%s non supportée", ext), common.ErrInvalidInput)
	}
	maxBytes := int64(o.cfg.Upload.MaxFileSizeMB) << 20
	if maxBytes > 0 && size > maxBytes {
		return common.NewAppError("UPLOAD",
			fmt.Sprintf("fichier trop volumineux : %.1fMB (max %dMB)",
				float64(size)/(1<<20), o.cfg.Upload.MaxFileSizeMB),
			common.ErrTooLarge)
	}
	return nil
}

// recoverSubstantiality implements the bounded gate 2 retry: when a native
// PDF yields almost no text, or only a known watermark, rasterize the first
// page once and keep whichever text is longer.
func (o *Orchestrator) recoverSubstantiality(
	ctx context.Context,
	log *slog.Logger,
	out *Outcome,
	class constants.FileClass,
	workPath, workDir string,
	textRes textextract.Result,
) (textextract.Result, *Outcome) {
	if class != constants.FileClassPDFNativeText {
		return textRes, nil
	}

	stripped := len(strings.TrimSpace(textRes.Text))
	retry := stripped < minSubstantialText
	if !retry && stripped < watermarkOnlyLimit && containsWatermark(textRes.Text) {
		log.Warn("pipeline.watermark_detected", "text_length", stripped)
		retry = true
	}
	if !retry {
		return textRes, nil
	}

	log.Info("pipeline.substantiality_retry", "text_length", stripped)

	imgPath, err := o.raster.FirstPage(workPath, workDir)
	if err != nil {
		rej := o.reject(*out, constants.GateTextExtract, constants.ReasonTextExtractionFailed,
			fmt.Sprintf("texte insuffisant (%d caractères) et conversion échouée : %v", stripped, err),
			[]string{
				"Le document ne contient pas assez de texte exploitable",
				"Vérifiez que le scan est complet",
				"Rescannez le document en meilleure qualité",
			})
		return textRes, &rej
	}
	defer func() {
		if err := os.Remove(imgPath); err != nil && !os.IsNotExist(err) {
			log.Warn("pipeline.cleanup_retry_raster_failed", "error", err)
		}
	}()

	ocrRes, err := o.text.ExtractOCR(ctx, imgPath)
	if err != nil {
		rej := o.reject(*out, constants.GateTextExtract, constants.ReasonTextExtractionFailed,
			fmt.Sprintf("texte insuffisant (%d caractères) et OCR échoué : %v", stripped, err),
			[]string{
				"Le document ne contient pas assez de texte exploitable",
				"Vérifiez que le scan est complet",
				"Rescannez le document en meilleure qualité",
			})
		return textRes, &rej
	}

	if ocrRes.CharCount > stripped {
		log.Info("pipeline.substantiality_recovered", "before", stripped, "after", ocrRes.CharCount)
		return ocrRes, nil
	}
	log.Warn("pipeline.substantiality_not_improved", "ocr_chars", ocrRes.CharCount)
	return textRes, nil
}

func (o *Orchestrator) reject(
	out Outcome,
	gate int,
	reason constants.RejectionReason,
	message string,
	suggestions []string,
) Outcome {
	out.Status = constants.StatusRejected
	out.RejectedAtGate = gate
	out.RejectionReason = reason
	out.Message = message
	out.Suggestions = suggestions
	o.logger.Warn("pipeline.rejected",
		"document_id", out.DocumentID,
		"gate", gate,
		"reason", reason,
		"message", message)
	return out
}

func containsWatermark(text string) bool {
	lower := strings.ToLower(text)
	for _, wm := range watermarks {
		if strings.Contains(lower, wm) {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	return tmp.Close()
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
