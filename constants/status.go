package constants

// PipelineStatus is the terminal status of one pipeline run.
type PipelineStatus string

const (
	StatusCompleted PipelineStatus = "COMPLETED"
	StatusRejected  PipelineStatus = "REJECTED"
)

// RejectionReason classifies why a gate terminated processing.
type RejectionReason string

const (
	ReasonUnsupportedFileType  RejectionReason = "UNSUPPORTED_FILE_TYPE"
	ReasonPDFConversionFailed  RejectionReason = "PDF_CONVERSION_FAILED"
	ReasonImageQualityLow      RejectionReason = "IMAGE_QUALITY_LOW"
	ReasonOCRQualityLow        RejectionReason = "OCR_QUALITY_LOW"
	ReasonTextExtractionFailed RejectionReason = "TEXT_EXTRACTION_FAILED"
	ReasonTypeMismatch         RejectionReason = "TYPE_MISMATCH"
	ReasonUnknownDocumentType  RejectionReason = "UNKNOWN_DOCUMENT_TYPE"
	ReasonValidationFailed     RejectionReason = "VALIDATION_FAILED"
)

// Gate indices carried on rejections. Gate 4 (agent execution) never rejects
// on its own: its failures surface as gate 3 or gate 5.
const (
	GateFileType     = 0
	GateImageQuality = 1
	GateTextExtract  = 2
	GateTypeCheck    = 3
	GateAgent        = 4
	GateValidation   = 5
)

// ExtractionMethod tags how the final field set was produced.
type ExtractionMethod string

const (
	MethodRegex  ExtractionMethod = "REGEX"
	MethodHybrid ExtractionMethod = "HYBRID"
)
