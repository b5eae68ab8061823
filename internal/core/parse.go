package core

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse reads a roster file of the given format into a Dataset.
//
// Decoding failures are wrapped with ErrFileRead; a file without data rows
// fails with ErrEmptyInput.
func Parse(r io.Reader, format Format) (*Dataset, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatXLSX, FormatXLS:
		return ParseSpreadsheet(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, format)
}

// ParseFile picks the format from name's extension and parses r.
func ParseFile(name string, r io.Reader) (*Dataset, error) {
	format, err := FormatFromFilename(name)
	if err != nil {
		return nil, err
	}
	return Parse(r, format)
}

// ParseCSV parses comma-separated text.
//
// Lines are split on '\n' and blank lines dropped. The first line is the
// header. A data line whose field count differs from the header's is
// skipped. Quoted commas are not supported: every comma separates fields.
func ParseCSV(r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(textReader(r))

	var (
		ds     *Dataset
		header []string
	)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrFileRead, err)
		}

		if strings.TrimSpace(line) != "" {
			fields := splitCSVLine(line)
			switch {
			case header == nil:
				header = fields
				ds = newDataset(header)
			case len(fields) == len(header):
				rec := Record{Values: make(map[string]string, len(header))}
				for i, h := range header {
					rec.Values[h] = fields[i]
				}
				ds.Records = append(ds.Records, rec)
			}
		}

		if err != nil {
			break
		}
	}

	if ds == nil || len(ds.Records) == 0 {
		return nil, ErrEmptyInput
	}
	return ds, nil
}

// splitCSVLine splits on every comma and cleans each field.
func splitCSVLine(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = cleanField(p)
	}
	return parts
}

// cleanField trims whitespace and strips surrounding double quotes.
func cleanField(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}
