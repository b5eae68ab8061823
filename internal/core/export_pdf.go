package core

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

// PDFTitle heads the exported document.
const PDFTitle = "Student Groups"

const (
	pdfRowHeight    = 7.0
	pdfHeaderHeight = 9.0
)

// encodePDF renders the grouped roster as a single table on Letter pages,
// repeating the header row on every page.
//
// Text is set in the core Helvetica font, so cells are translated to
// cp1252 first. Latin-1 names such as "Zoë" render as typed; runes outside
// cp1252 (CJK, Cyrillic, emoji) are replaced with '.'.
func encodePDF(ds *Dataset) ([]byte, error) {
	grid := Render(ds)

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(grid.Headers))

	header := func() {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetFillColor(128, 128, 128)
		pdf.SetTextColor(245, 245, 245)
		for _, h := range grid.Headers {
			pdf.CellFormat(colW, pdfHeaderHeight, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetFillColor(245, 245, 220)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, PDFTitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetDrawColor(0, 0, 0)
	header()

	for _, row := range grid.Rows {
		if pdf.GetY()+pdfRowHeight > pageH-bottom {
			pdf.AddPage()
			header()
		}
		for _, v := range row {
			pdf.CellFormat(colW, pdfRowHeight, tr(v), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
