package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfContentWidth = 190.0

// PDFExporter renders tables as an A4 portrait document.
type PDFExporter struct {
	footer string
}

// NewPDFExporter constructs a PDF exporter. footer is printed on every page next to the page number.
func NewPDFExporter(footer string) *PDFExporter {
	return &PDFExporter{footer: footer}
}

// ContentType returns the MIME type of rendered output.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension returns the file extension of rendered output.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render lays out the title, the heading fields and a bordered table.
func (e *PDFExporter) Render(t Table) ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("%s  Page %d/{nb}", e.footer, pdf.PageNo())), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()

	if t.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(t.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	if len(t.Fields) > 0 {
		for _, field := range t.Fields {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(45, 6, tr(field.Label), "", 0, "", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(0, 6, tr(field.Value), "", 1, "", false, 0, "")
		}
		pdf.Ln(4)
	}

	widths := columnWidths(t)
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, column := range t.Columns {
			pdf.CellFormat(widths[i], 8, tr(column), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range t.Rows {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, tr(cell), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(t Table) []float64 {
	widths := make([]float64, len(t.Columns))
	if t.Widths == nil {
		for i := range widths {
			widths[i] = pdfContentWidth / float64(len(t.Columns))
		}
		return widths
	}
	var total float64
	for _, w := range t.Widths {
		total += w
	}
	for i, w := range t.Widths {
		widths[i] = pdfContentWidth * w / total
	}
	return widths
}
