package core

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	zipMagic  = []byte("PK\x03\x04")
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ParseSpreadsheet reads the first sheet of an xlsx or xls workbook.
//
// The first non-empty row is the header. Blank header cells are named
// __EMPTY, __EMPTY_1, ...; repeated names get _1, _2, ... suffixes. Blank
// rows are skipped and blank cells are left out of the record.
func ParseSpreadsheet(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileRead, err)
	}

	var rows [][]string
	if bytes.HasPrefix(data, ole2Magic) {
		rows, err = readBIFFRows(data)
	} else {
		rows, err = readOOXMLRows(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileRead, err)
	}

	return datasetFromRows(rows)
}

// readOOXMLRows returns the cell text of the first sheet of an xlsx file.
// Some tools write OOXML with an .xls name, so this also serves .xls.
func readOOXMLRows(data []byte) ([][]string, error) {
	if !bytes.HasPrefix(data, zipMagic) {
		return nil, fmt.Errorf("not a spreadsheet workbook")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readBIFFRows returns the cell text of the first sheet of a legacy
// (Excel 97-2003) workbook.
//
// The decoder panics on some malformed files; that is reported as an error.
func readBIFFRows(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("malformed workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// datasetFromRows converts sheet rows (header first) into a Dataset.
func datasetFromRows(rows [][]string) (*Dataset, error) {
	start := slices.IndexFunc(rows, func(row []string) bool { return !blankRow(row) })
	if start < 0 {
		return nil, ErrEmptyInput
	}

	width := 0
	for _, row := range rows[start:] {
		width = max(width, len(row))
	}

	header := sheetHeader(rows[start], width)
	ds := &Dataset{Columns: header}
	for _, row := range rows[start+1:] {
		if blankRow(row) {
			continue
		}
		rec := Record{Values: make(map[string]string, len(row))}
		for i, v := range row {
			if v != "" {
				rec.Values[header[i]] = v
			}
		}
		ds.Records = append(ds.Records, rec)
	}

	if len(ds.Records) == 0 {
		return nil, ErrEmptyInput
	}
	return ds, nil
}

// sheetHeader names width columns from the header row cells.
func sheetHeader(cells []string, width int) []string {
	header := make([]string, width)
	for i := range header {
		name := "__EMPTY"
		if i < len(cells) && cells[i] != "" {
			name = cells[i]
		}

		unique := name
		for n := 1; slices.Contains(header[:i], unique); n++ {
			unique = fmt.Sprintf("%s_%d", name, n)
		}
		header[i] = unique
	}
	return header
}

func blankRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
