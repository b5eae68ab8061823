package core

import "errors"

// Error kinds surfaced by parsing, grouping and exporting. Callers match
// them with errors.Is; the wrapped message carries the detail.
var (
	// ErrEmptyInput is returned when a file yields zero data rows.
	ErrEmptyInput = errors.New("empty file")

	// ErrUnsupportedExtension is returned for files other than csv, xlsx and xls.
	ErrUnsupportedExtension = errors.New("unsupported file format")

	// ErrInvalidGroupSize is returned when the group size is outside 1..len(dataset).
	ErrInvalidGroupSize = errors.New("invalid group size")

	// ErrNoDataToExport is returned when saving before groups were created.
	ErrNoDataToExport = errors.New("no grouped data to export")

	// ErrFileRead wraps any failure while decoding or parsing a file.
	ErrFileRead = errors.New("error reading file")

	// ErrNoDataLoaded is returned when grouping before a file was loaded.
	ErrNoDataLoaded = errors.New("no file loaded")

	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
)
