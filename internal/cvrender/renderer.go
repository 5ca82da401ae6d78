package cvrender

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres
const (
	pageMargin  = 20.0
	lineHeight  = 5.5
	headerLineH = 7.0
	infoLabelW  = 0.3
)

var (
	brandColor  = [3]int{0, 61, 121}
	headerFill  = [3]int{220, 230, 241}
	borderColor = [3]int{120, 120, 120}
)

// Renderer produces the bytes of a standardized CV
type Renderer interface {
	Render(layout Layout, generatedAt time.Time) ([]byte, error)
}

// RenderError reports a PDF generation failure
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return "failed to render standardized CV: " + e.Err.Error()
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// PDFRenderer renders layouts as A4 PDFs with the core fonts
type PDFRenderer struct {
	compress bool
}

// RendererOption configures a PDFRenderer
type RendererOption func(*PDFRenderer)

// WithCompression toggles content stream compression (on by default)
func WithCompression(enabled bool) RendererOption {
	return func(r *PDFRenderer) {
		r.compress = enabled
	}
}

// NewPDFRenderer creates a PDF renderer
func NewPDFRenderer(options ...RendererOption) *PDFRenderer {
	r := &PDFRenderer{compress: true}
	for _, option := range options {
		option(r)
	}
	return r
}

// Render lays out the brand title, the personal-info table, the centered title, the
// summary and then every section table in order.
func (r *PDFRenderer) Render(layout Layout, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCompression(r.compress)
	pdf.SetCreationDate(generatedAt)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(fmt.Sprintf("CV %s %s", layout.FirstName, layout.LastName), true)
	pdf.SetAuthor("Richat Partners", true)
	pdf.SetCreator("Richat Partners staffing", true)
	pdf.AliasNbPages("")

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pageW, _ := pdf.GetPageSize()
	d.width = pageW - 2*pageMargin

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, d.tr(fmt.Sprintf("Généré le %s - page %d/{nb}", generatedAt.Format("02/01/2006"), pdf.PageNo())),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	d.brand(layout.BrandTitle)
	d.info(layout.Info)
	d.title(layout.ProfessionalTitle)
	d.summary(layout.Summary)
	for _, t := range layout.Sections {
		d.table(t)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Err: err}
	}
	return buf.Bytes(), nil
}

type document struct {
	pdf   *fpdf.Fpdf
	tr    func(string) string
	width float64
}

func (d *document) brand(title string) {
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.SetTextColor(brandColor[0], brandColor[1], brandColor[2])
	d.pdf.CellFormat(d.width, 10, d.tr(title), "B", 1, "C", false, 0, "")
	d.pdf.Ln(6)
}

func (d *document) info(rows []InfoRow) {
	if len(rows) == 0 {
		return
	}
	widths := []float64{infoLabelW, 1 - infoLabelW}
	for _, r := range rows {
		d.row([]string{r.Label, r.Value}, widths, []string{"B", ""}, false)
	}
	d.pdf.Ln(6)
}

func (d *document) title(text string) {
	if text == "" {
		return
	}
	d.pdf.SetFont("Helvetica", "B", 13)
	d.pdf.SetTextColor(brandColor[0], brandColor[1], brandColor[2])
	d.pdf.MultiCell(d.width, headerLineH, d.tr(text), "", "C", false)
	d.pdf.Ln(4)
}

func (d *document) summary(text string) {
	if text == "" {
		return
	}
	d.heading("PROFIL")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.MultiCell(d.width, lineHeight, d.tr(text), "", "J", false)
	d.pdf.Ln(4)
}

func (d *document) heading(text string) {
	_, pageH := d.pdf.GetPageSize()
	if d.pdf.GetY()+headerLineH+2*lineHeight > pageH-pageMargin {
		d.pdf.AddPage()
	}
	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.SetTextColor(brandColor[0], brandColor[1], brandColor[2])
	d.pdf.CellFormat(d.width, headerLineH, d.tr(text), "", 1, "L", false, 0, "")
	d.pdf.Ln(1)
}

func (d *document) table(t Table) {
	if len(t.Rows) == 0 {
		return
	}
	d.heading(t.Title)

	headerStyles := make([]string, len(t.Headers))
	bodyStyles := make([]string, len(t.Headers))
	for i := range headerStyles {
		headerStyles[i] = "B"
	}
	d.row(t.Headers, t.Widths, headerStyles, true)
	for _, r := range t.Rows {
		d.row(r, t.Widths, bodyStyles, false)
	}
	d.pdf.Ln(5)
}

// row draws one bordered row whose height fits the tallest wrapped cell
func (d *document) row(cells []string, widths []float64, styles []string, fill bool) {
	pdf := d.pdf
	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(borderColor[0], borderColor[1], borderColor[2])
	pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])

	lines := 1
	for i, cell := range cells {
		pdf.SetFont("Helvetica", styles[i], 10)
		if n := len(pdf.SplitLines([]byte(d.tr(cell)), widths[i]*d.width)); n > lines {
			lines = n
		}
	}
	h := float64(lines) * lineHeight

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+h > pageH-pageMargin {
		pdf.AddPage()
	}

	x, y := pdf.GetX(), pdf.GetY()
	style := "D"
	if fill {
		style = "FD"
	}
	for i, cell := range cells {
		w := widths[i] * d.width
		pdf.Rect(x, y, w, h, style)
		pdf.SetFont("Helvetica", styles[i], 10)
		pdf.SetXY(x, y)
		pdf.MultiCell(w, lineHeight, d.tr(cell), "", "L", false)
		x += w
	}
	pdf.SetXY(pageMargin, y+h)
}
