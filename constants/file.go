package constants

import "strings"

// FileFormat selects the text-extraction strategy.
type FileFormat string

const (
	PDF   FileFormat = "PDF"
	IMAGE FileFormat = "IMAGE"
)

// AllowedExtensions holds the file extensions accepted at upload.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a (normalized or raw) extension to a FileFormat.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png":
		return IMAGE
	}
	return ""
}
