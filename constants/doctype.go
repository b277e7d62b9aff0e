package constants

import "strings"

// DocumentType is the declared type of an uploaded document.
type DocumentType string

// Stable values (these exact strings appear in API payloads and the audit journal).
const (
	DocTypeInvoice       DocumentType = "FACTURE"
	DocTypeBankStatement DocumentType = "RELEVE_BANCAIRE"
	DocTypeCashReport    DocumentType = "TICKET_Z"
)

// SupportedDocumentTypes lists every type a pipeline agent exists for.
var SupportedDocumentTypes = []DocumentType{
	DocTypeInvoice,
	DocTypeBankStatement,
	DocTypeCashReport,
}

// NormalizeDocumentType uppercases and trims a declared type string.
func NormalizeDocumentType(s string) DocumentType {
	return DocumentType(strings.ToUpper(strings.TrimSpace(s)))
}

// FileClass is the detected class of the uploaded bytes, independent of filename.
type FileClass string

const (
	FileClassPDFNativeText FileClass = "PDF_NATIVE_TEXT" // container with extractable text
	FileClassPDFImage      FileClass = "PDF_IMAGE"       // container wrapping a scan
	FileClassImage         FileClass = "IMAGE_PURE"      // plain raster image
	FileClassUnsupported   FileClass = "UNSUPPORTED"
)

// AllowedExtensions holds the upload extensions accepted before gate 0 runs.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tiff": {},
	"bmp":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
