package constants

import "strings"

// AllowedImageExtensions holds the file extensions accepted for flyer ingestion.
var AllowedImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ExtForMIME maps an image MIME type to a file extension. Unknown types fall
// back to "jpg", which is what the messaging gateway delivers in practice.
func ExtForMIME(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

// MIMEForExt is the inverse mapping, used by the batch ingestor.
func MIMEForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
