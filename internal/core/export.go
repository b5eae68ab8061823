package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportSheetName is the sheet name of exported workbooks.
const ExportSheetName = "Groups"

// exportTimeLayout is an ISO-8601 instant without sub-seconds, with the
// colons replaced so the name is valid on every file system.
const exportTimeLayout = "2006-01-02T15-04-05"

// Export is a serialized dataset ready for download.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportFilename returns grouped_<timestamp><ext> for an export made at now.
func ExportFilename(now time.Time, format Format) string {
	return "grouped_" + now.UTC().Format(exportTimeLayout) + format.Extension()
}

// ExportDataset serializes a grouped dataset in the given format.
// It fails with ErrNoDataToExport unless ds has been grouped.
func ExportDataset(ds *Dataset, format Format, now time.Time) (*Export, error) {
	if ds == nil || !ds.Grouped || ds.Len() == 0 {
		return nil, ErrNoDataToExport
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data = encodeCSV(ds)
	case FormatXLSX, FormatXLS:
		data, err = encodeWorkbook(ds)
	case FormatPDF:
		data, err = encodePDF(ds)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, format)
	}
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}

	return &Export{
		Filename:    ExportFilename(now, format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

// encodeCSV writes the header line unquoted and every value in double
// quotes. Embedded quotes and newlines are written as-is.
func encodeCSV(ds *Dataset) []byte {
	grid := Render(ds)

	lines := make([]string, 0, len(grid.Rows)+1)
	lines = append(lines, strings.Join(grid.Headers, ","))

	quoted := make([]string, len(grid.Headers))
	for _, row := range grid.Rows {
		for i, v := range row {
			quoted[i] = `"` + v + `"`
		}
		lines = append(lines, strings.Join(quoted, ","))
	}
	return []byte(strings.Join(lines, "\n"))
}

// workbookHeaders returns every column any record has, in column order.
func workbookHeaders(ds *Dataset) []string {
	var headers []string
	for _, col := range ds.Headers() {
		for _, rec := range ds.Records {
			if _, ok := rec.Get(col); ok {
				headers = append(headers, col)
				break
			}
		}
	}
	return headers
}

// encodeWorkbook builds a single-sheet workbook. GROUP is written as a
// number; all other cells as text.
func encodeWorkbook(ds *Dataset) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ExportSheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	headers := workbookHeaders(ds)
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(ExportSheetName, "A1", &headerRow); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	groupIdx := slices.Index(headers, GroupColumn)
	for r, rec := range ds.Records {
		row := make([]any, len(headers))
		for i, col := range headers {
			if i == groupIdx && rec.Group > 0 {
				row[i] = rec.Group
				continue
			}
			if v, ok := rec.Get(col); ok {
				row[i] = v
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ExportSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
