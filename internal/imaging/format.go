package imaging

import (
	"fmt"
	"net/http"
	"strings"
)

// DetectMIME sniffs the MIME type of image bytes from their leading magic
// bytes. Falls back to "image/png" for unrecognized content, which matches
// the provider's default output format.
func DetectMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "image/png"
	}
	return mime
}

// ExtensionForMIME maps an image MIME type to a download file extension.
func ExtensionForMIME(mime string) string {
	if mime == "image/png" {
		return "png"
	}
	return "jpg"
}

// FormatForMIME maps an image MIME type to a re-encode output Format.
func FormatForMIME(mime string) Format {
	if mime == "image/png" {
		return FormatPNG
	}
	return FormatJPEG
}

// FormatBytes formats a byte count in a short human-readable form (e.g. "1.2 MB").
func FormatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := int64(n) / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
