package render

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	billing "billing-cloud/internal/billing/domain"
	"billing-cloud/internal/observability/metrics"
)

const (
	pageWidth  = 210.0
	pageHeight = 297.0
	margin     = 15.0

	headerHeight = 45.0
	footerHeight = 13.0

	logoX      = 15.0
	logoY      = 8.5
	logoWidth  = 62.0
	logoHeight = 28.0

	rowHeight = 8.0
)

// Column widths of the item table, left to right: row number,
// description, unit price, quantity, line total.
var columnWidths = [5]float64{10, 95, 30, 15, 30}

var columnTitles = [5]string{"#", "Descripción", "Precio Unit.", "Cant.", "Total"}

// Engine renders invoices and quotes as PDF documents. It is safe for
// concurrent use: every Render builds a fresh page tree.
type Engine struct {
	profile Profile
	logo    *Logo
}

// NewEngine builds a layout engine from a brand profile and an optional
// logo handle.
func NewEngine(profile Profile, logo *Logo) *Engine {
	return &Engine{profile: profile, logo: logo}
}

// Render produces the PDF bytes for a document. Totals are painted
// verbatim from the document, never recomputed here.
func (e *Engine) Render(doc *billing.Document) ([]byte, error) {
	if doc == nil {
		return nil, billing.ErrNilDocument
	}
	pdf, err := e.layout(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s %s: %w", doc.Kind, doc.Number, err)
	}
	metrics.AddRenderedPages(pdf.PageCount())
	return buf.Bytes(), nil
}

func (e *Engine) layout(doc *billing.Document) (*gofpdf.Fpdf, error) {
	cfg, ok := ConfigFor(doc.Kind)
	if !ok {
		return nil, billing.ErrUnknownKind
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(cfg.Title+" "+doc.Number), true)
	// Pin the metadata date so rendering the same document twice yields
	// identical bytes.
	pdf.SetCreationDate(doc.IssueDate)
	pdf.AliasNbPages("")
	// Page breaks are driven by the per-kind threshold, not the default
	// bottom margin.
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFooterFunc(func() {
		e.drawFooter(pdf, tr)
	})
	pdf.AddPage()

	e.drawHeader(pdf, tr, cfg, doc)
	e.drawDates(pdf, tr, cfg, doc)
	e.drawParties(pdf, tr, doc)
	e.drawItems(pdf, tr, cfg, doc)
	e.drawTotals(pdf, tr, cfg, doc)
	e.drawNotes(pdf, tr, cfg, doc)

	if pdf.Err() {
		return nil, fmt.Errorf("render %s %s: %w", doc.Kind, doc.Number, pdf.Error())
	}
	return pdf, nil
}

// drawHeader paints the brand band, the logo or its wordmark fallback,
// and the right-aligned document title.
func (e *Engine) drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, cfg KindConfig, doc *billing.Document) {
	primary := e.profile.PrimaryColor
	accent := e.profile.AccentColor

	pdf.SetFillColor(primary.R, primary.G, primary.B)
	pdf.Rect(0, 0, pageWidth, headerHeight, "F")

	pdf.SetFillColor(accent.R, accent.G, accent.B)
	pdf.Polygon([]gofpdf.PointType{
		{X: pageWidth - 60, Y: 0},
		{X: pageWidth, Y: 0},
		{X: pageWidth, Y: 32},
	}, "F")

	if e.logo != nil {
		name := "brand-logo"
		pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: e.logo.Format()}, e.logo.Reader())
		pdf.ImageOptions(name, logoX, logoY, logoWidth, logoHeight, false, gofpdf.ImageOptions{ImageType: e.logo.Format()}, 0, "")
	} else {
		e.drawWordmark(pdf, tr)
	}

	pdf.SetFont("Arial", "B", 26)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(margin, 12)
	pdf.CellFormat(pageWidth-2*margin, 10, tr(cfg.Title), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.SetX(margin)
	pdf.CellFormat(pageWidth-2*margin, 7, tr("N° "+doc.Number), "", 1, "R", false, 0, "")
	if cfg.ShowExternalRef && doc.ExternalRef != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.SetX(margin)
		pdf.CellFormat(pageWidth-2*margin, 5, tr("Folio SII: "+doc.ExternalRef), "", 1, "R", false, 0, "")
	}
}

// drawWordmark is the two-color text fallback used when no logo asset
// is available.
func (e *Engine) drawWordmark(pdf *gofpdf.Fpdf, tr func(string) string) {
	accent := e.profile.AccentColor
	pdf.SetFont("Arial", "B", 22)
	pdf.SetXY(logoX, logoY+logoHeight/2-5)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(pdf.GetStringWidth(tr(e.profile.WordmarkLeft))+1, 10, tr(e.profile.WordmarkLeft), "", 0, "L", false, 0, "")
	pdf.SetTextColor(accent.R, accent.G, accent.B)
	pdf.CellFormat(logoWidth, 10, tr(e.profile.WordmarkRight), "", 1, "L", false, 0, "")
}

func (e *Engine) drawDates(pdf *gofpdf.Fpdf, tr func(string) string, cfg KindConfig, doc *billing.Document) {
	pdf.SetTextColor(60, 60, 60)
	pdf.SetFont("Arial", "", 10)
	pdf.SetXY(margin, headerHeight+6)
	pdf.CellFormat(90, 6, tr("Fecha emisión: "+formatDate(doc.IssueDate)), "", 0, "L", false, 0, "")
	pdf.CellFormat(pageWidth-2*margin-90, 6, tr(cfg.DueLabel+": "+formatDate(doc.DueDate)), "", 1, "R", false, 0, "")
}

// drawParties paints the recipient and issuer columns. Missing optional
// fields render as N/A; a document without recipient data still renders
// with a placeholder.
func (e *Engine) drawParties(pdf *gofpdf.Fpdf, tr func(string) string, doc *billing.Document) {
	primary := e.profile.PrimaryColor
	top := headerHeight + 18.0
	colWidth := (pageWidth - 2*margin) / 2

	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(primary.R, primary.G, primary.B)
	pdf.SetXY(margin, top)
	pdf.CellFormat(colWidth, 5, tr("CLIENTE"), "", 0, "L", false, 0, "")
	pdf.CellFormat(colWidth, 5, tr("EMISOR"), "", 1, "L", false, 0, "")

	name := doc.Party.DisplayName()
	if name == "" {
		name = "(sin destinatario)"
	}
	leftLines := []string{
		name,
		"RUT: " + orNA(doc.Party.TaxID()),
		orNA(doc.Party.Email()),
	}
	rightLines := []string{
		e.profile.CompanyName,
		"RUT: " + orNA(e.profile.CompanyTaxID),
		orNA(e.profile.CompanyEmail),
		orNA(e.profile.CompanyPhone),
	}
	if e.profile.CompanyAddress != "" {
		rightLines = append(rightLines, e.profile.CompanyAddress)
	}

	pdf.SetTextColor(40, 40, 40)
	for i := 0; i < len(leftLines) || i < len(rightLines); i++ {
		y := top + 6 + float64(i)*5
		style := ""
		if i == 0 {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		if i < len(leftLines) {
			pdf.SetXY(margin, y)
			pdf.CellFormat(colWidth-5, 5, tr(leftLines[i]), "", 0, "L", false, 0, "")
		}
		if i < len(rightLines) {
			pdf.SetXY(margin+colWidth, y)
			pdf.CellFormat(colWidth, 5, tr(rightLines[i]), "", 1, "L", false, 0, "")
		}
	}
}

func (e *Engine) drawItems(pdf *gofpdf.Fpdf, tr func(string) string, cfg KindConfig, doc *billing.Document) {
	pdf.SetY(headerHeight + 55)
	e.drawTableHeader(pdf, tr)

	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Arial", "", 9)
	for i, item := range doc.Items {
		if pdf.GetY() > cfg.PageBreakY {
			pdf.AddPage()
			pdf.SetY(margin)
			e.drawTableHeader(pdf, tr)
			pdf.SetTextColor(40, 40, 40)
			pdf.SetFont("Arial", "", 9)
		}
		fill := i%2 == 1
		if fill {
			pdf.SetFillColor(245, 246, 248)
		}
		pdf.SetX(margin)
		pdf.CellFormat(columnWidths[0], rowHeight, strconv.Itoa(i+1), "", 0, "C", fill, 0, "")
		pdf.CellFormat(columnWidths[1], rowHeight, tr(e.clip(pdf, item.Description, columnWidths[1]-2)), "", 0, "L", fill, 0, "")
		pdf.CellFormat(columnWidths[2], rowHeight, formatCLP(item.UnitPrice), "", 0, "R", fill, 0, "")
		pdf.CellFormat(columnWidths[3], rowHeight, strconv.FormatInt(item.Quantity, 10), "", 0, "C", fill, 0, "")
		pdf.CellFormat(columnWidths[4], rowHeight, formatCLP(item.Total()), "", 1, "R", fill, 0, "")
	}
}

func (e *Engine) drawTableHeader(pdf *gofpdf.Fpdf, tr func(string) string) {
	primary := e.profile.PrimaryColor
	pdf.SetFillColor(primary.R, primary.G, primary.B)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetX(margin)
	aligns := [5]string{"C", "L", "R", "C", "R"}
	for i, title := range columnTitles {
		pdf.CellFormat(columnWidths[i], rowHeight, tr(title), "", 0, aligns[i], true, 0, "")
	}
	pdf.Ln(rowHeight)
}

// clip trims a description to a single table line, appending an
// ellipsis when it does not fit the column.
func (e *Engine) clip(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"…") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// drawTotals paints the totals stack. Amounts come straight from the
// stored document totals.
func (e *Engine) drawTotals(pdf *gofpdf.Fpdf, tr func(string) string, cfg KindConfig, doc *billing.Document) {
	if pdf.GetY() > cfg.PageBreakY {
		pdf.AddPage()
		pdf.SetY(margin)
	}
	primary := e.profile.PrimaryColor
	x := pageWidth - margin - 70
	labelWidth, valueWidth := 35.0, 35.0

	pdf.Ln(4)
	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Arial", "", 10)
	pdf.SetX(x)
	pdf.CellFormat(labelWidth, 7, tr("Subtotal"), "", 0, "L", false, 0, "")
	pdf.CellFormat(valueWidth, 7, formatCLP(doc.Totals.Subtotal), "", 1, "R", false, 0, "")
	pdf.SetX(x)
	pdf.CellFormat(labelWidth, 7, tr("IVA (19%)"), "", 0, "L", false, 0, "")
	pdf.CellFormat(valueWidth, 7, formatCLP(doc.Totals.Tax), "", 1, "R", false, 0, "")

	pdf.SetFillColor(primary.R, primary.G, primary.B)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 11)
	pdf.SetX(x)
	pdf.CellFormat(labelWidth, 9, tr("TOTAL"), "", 0, "L", true, 0, "")
	pdf.CellFormat(valueWidth, 9, formatCLP(doc.Totals.Total), "", 1, "R", true, 0, "")
}

// drawNotes paints the per-kind closing block: invoices show notes only
// when present, quotes always show the boilerplate terms plus any
// custom note.
func (e *Engine) drawNotes(pdf *gofpdf.Fpdf, tr func(string) string, cfg KindConfig, doc *billing.Document) {
	if !cfg.AlwaysTerms && doc.Notes == "" {
		return
	}
	if pdf.GetY() > cfg.PageBreakY {
		pdf.AddPage()
		pdf.SetY(margin)
	}
	primary := e.profile.PrimaryColor

	heading := "Observaciones"
	if cfg.AlwaysTerms {
		heading = "Condiciones"
	}
	pdf.Ln(6)
	pdf.SetTextColor(primary.R, primary.G, primary.B)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetX(margin)
	pdf.CellFormat(pageWidth-2*margin, 5, tr(heading), "", 1, "L", false, 0, "")

	pdf.SetTextColor(60, 60, 60)
	pdf.SetFont("Arial", "", 9)
	if cfg.AlwaysTerms {
		pdf.SetX(margin)
		pdf.MultiCell(pageWidth-2*margin, 4.5, tr(cfg.Boilerplate), "", "L", false)
	}
	if doc.Notes != "" {
		pdf.SetX(margin)
		pdf.MultiCell(pageWidth-2*margin, 4.5, tr(doc.Notes), "", "L", false)
	}
}

// drawFooter paints the contact band on every page with the two-pass
// page count placeholder.
func (e *Engine) drawFooter(pdf *gofpdf.Fpdf, tr func(string) string) {
	primary := e.profile.PrimaryColor
	pdf.SetFillColor(primary.R, primary.G, primary.B)
	pdf.Rect(0, pageHeight-footerHeight, pageWidth, footerHeight, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "", 8)
	pdf.SetXY(margin, pageHeight-footerHeight+3.5)
	pdf.CellFormat(pageWidth-2*margin-40, 6, tr(e.contactLine()), "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, tr(fmt.Sprintf("Página %d de {nb}", pdf.PageNo())), "", 0, "R", false, 0, "")
}

func (e *Engine) contactLine() string {
	line := e.profile.CompanyName
	if e.profile.CompanyEmail != "" {
		line += " · " + e.profile.CompanyEmail
	}
	if e.profile.CompanyPhone != "" {
		line += " · " + e.profile.CompanyPhone
	}
	return line
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("02-01-2006")
}

// formatCLP formats minor currency units with dot thousand separators.
func formatCLP(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}
	return sign + "$" + string(out)
}
