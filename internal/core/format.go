package core

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a tabular file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatPDF  Format = "pdf" // export only
)

// DefaultFormat is the export format selected for a new session.
const DefaultFormat = FormatXLSX

// Formats lists every export format in selector order.
var Formats = []Format{FormatXLSX, FormatXLS, FormatCSV, FormatPDF}

// FormatFromFilename returns the input format implied by a file's extension.
// Only csv, xlsx and xls files can be loaded.
func FormatFromFilename(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	f := Format(ext)
	if !f.Readable() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, filepath.Ext(name))
	}
	return f, nil
}

// ParseFormat parses a format name such as "xlsx", ".CSV" or "pdf".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case FormatCSV, FormatXLSX, FormatXLS, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, s)
}

// Readable reports whether files of this format can be parsed.
func (f Format) Readable() bool {
	return f == FormatCSV || f == FormatXLSX || f == FormatXLS
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type used when downloading an export.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatXLS:
		return "application/vnd.ms-excel"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Label returns the save button caption for the format.
func (f Format) Label() string {
	return "Save as " + strings.ToUpper(string(f))
}
