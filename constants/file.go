package constants

import "strings"

// DocumentFormat is the coarse format class of an ingested document.
type DocumentFormat string

const (
	FormatPDF   DocumentFormat = "PDF"
	FormatImage DocumentFormat = "IMAGE"
	FormatText  DocumentFormat = "TEXT"
)

// AllowedExtensions are the file extensions the ingestion layer accepts.
// Keys are lowercase without the leading dot.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"heic": {},
	"tif":  {},
	"tiff": {},
	"txt":  {},
}

// NormalizeExt lowercases an extension and strips the leading dot.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsAllowedExt reports whether the extension is accepted for ingestion.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// FormatForExt classifies an extension into a DocumentFormat.
func FormatForExt(ext string) DocumentFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return FormatPDF
	case "txt":
		return FormatText
	default:
		return FormatImage
	}
}

// ContentTypeForExt returns the MIME type used when storing and
// submitting a document for structuring.
func ContentTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "heic":
		return "image/heic"
	case "tif", "tiff":
		return "image/tiff"
	case "txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// IsPlainText reports whether the stored content type can skip document
// structuring and go straight to extraction.
func IsPlainText(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return ct == "text/plain" || strings.HasPrefix(ct, "text/plain;")
}
