package constants

import "strings"

// Media. Each medium has its own extraction and redaction strategy.
const (
	TXT   = "TXT"
	PDF   = "PDF"
	IMAGE = "IMAGE"
)

// FileTypes holds the allowed media for the format field in a pipeline run.
var FileTypes = []string{TXT, PDF, IMAGE}

// AllowedExtensions holds the default supported file extensions.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat maps an extension to its medium. Returns "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "txt":
		return TXT
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "gif", "bmp":
		return IMAGE
	default:
		return ""
	}
}
