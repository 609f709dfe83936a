package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets and claim slips as PDF documents.
type PDFExporter struct {
	institution string
}

// NewPDFExporter constructs a PDF exporter; institution heads every page.
func NewPDFExporter(institution string) *PDFExporter {
	if institution == "" {
		institution = "Office of the Registrar"
	}
	return &PDFExporter{institution: institution}
}

// ContentType is the MIME type of the rendered output.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension is the file extension of the rendered output.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates a landscape PDF table with an optional title.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, tr(e.institution), "", 1, "L", false, 0, "")
	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(title)), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (width - left - right) / float64(len(data.Headers))

	pdf.SetFont("Arial", "B", 9)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return output(pdf)
}

// ClaimSlipSheet carries the printable claim slip fields.
type ClaimSlipSheet struct {
	ClaimNumber  string
	DateReady    string
	StudentName  string
	StudentID    string
	DocumentName string
	Copies       int
	IssuedBy     string
}

// RenderClaimSlip lays out a half-page claim slip for pickup at the counter.
func (e *PDFExporter) RenderClaimSlip(slip ClaimSlipSheet) ([]byte, error) {
	if slip.ClaimNumber == "" {
		return nil, fmt.Errorf("claim slip requires a claim number")
	}
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, tr(e.institution), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "CLAIM SLIP", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	fields := [][2]string{
		{"Claim Number", slip.ClaimNumber},
		{"Date Ready", slip.DateReady},
		{"Student Name", slip.StudentName},
		{"Student ID", slip.StudentID},
		{"Document", slip.DocumentName},
		{"Copies", fmt.Sprintf("%d", slip.Copies)},
	}
	if slip.IssuedBy != "" {
		fields = append(fields, [2]string{"Issued By", slip.IssuedBy})
	}
	for _, f := range fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 8, f[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 8, tr(f[1]), "1", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, "Present this slip to the Registrar's Office to claim your document. Only the requester can claim the document.", "", "L", false)

	return output(pdf)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
