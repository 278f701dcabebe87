package export

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a rendered QR image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, "":
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want png or svg)", s)
	}
}

func (f Format) MIME() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Filename suggests a download name for a rendered code. The order id is
// optional; without it the name falls back to the survey code alone.
// Identifiers are whitespace-trimmed to match the URL builder's tolerance.
func Filename(surveyCode, orderID string, f Format) string {
	surveyCode = strings.TrimSpace(surveyCode)
	orderID = strings.TrimSpace(orderID)
	if orderID != "" {
		return fmt.Sprintf("qr_%s_%s.%s", surveyCode, orderID, f)
	}
	return fmt.Sprintf("qr_%s.%s", surveyCode, f)
}

// WriteFile stores image bytes under dir with the suggested filename and
// returns the full path.
func WriteFile(dir, surveyCode, orderID string, f Format, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, Filename(surveyCode, orderID, f))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// WriteHTTP offers image bytes as a download over HTTP.
func WriteHTTP(w http.ResponseWriter, surveyCode, orderID string, f Format, data []byte) {
	w.Header().Set("Content-Type", f.MIME())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", Filename(surveyCode, orderID, f)))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	_, _ = w.Write(data)
}
