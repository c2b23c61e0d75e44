// Package export renders printable artifacts from in-memory inventory
// data: the monthly withdrawal report and the expiration report as PDF,
// and medicine labels as QR code PNGs.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	marginLeft   = 14.0
	marginRight  = 14.0
	marginTop    = 25.0
	marginBottom = 20.0

	fontFamily = "report"
	coreFont   = "Helvetica"
)

// Renderer builds PDF reports. The zero value uses the built-in Latin font.
type Renderer struct {
	// FontPath is an optional UTF-8 TrueType font used for every text run,
	// needed when medicine names are not Latin-1.
	FontPath string
	// Now returns the generation time. Defaults to time.Now.
	Now func() time.Time
}

// NewRenderer returns a Renderer using the font at fontPath, or the
// built-in font when fontPath is empty.
func NewRenderer(fontPath string) *Renderer {
	return &Renderer{FontPath: fontPath, Now: time.Now}
}

func (r *Renderer) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

type column struct {
	title string
	width float64 // 0 takes the remaining width
	align string
}

type rgb struct{ r, g, b int }

var (
	blue  = rgb{59, 130, 246}
	red   = rgb{239, 68, 68}
	amber = rgb{245, 158, 11}
	grey  = rgb{245, 245, 245}
)

// document wraps an fpdf document with the shared page layout.
type document struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
}

func (r *Renderer) newDocument(title string, generated time.Time) *document {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(title, true)
	pdf.SetCreationDate(generated)
	pdf.AliasNbPages("")

	d := &document{pdf: pdf, family: coreFont, tr: func(s string) string { return s }}
	if r.FontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", r.FontPath)
		d.family = fontFamily
	} else {
		d.tr = pdf.UnicodeTranslatorFromDescriptor("")
	}

	stamp := "Generated: " + generated.Format("2 January 2006 15:04")
	pdf.SetHeaderFunc(func() {
		w, _ := pdf.GetPageSize()
		d.font(14)
		pdf.SetXY(marginLeft, 10)
		pdf.CellFormat(0, 7, d.tr(title), "", 0, "L", false, 0, "")
		d.font(10)
		pdf.SetXY(marginLeft, 10)
		pdf.CellFormat(w-marginLeft-marginRight, 7, d.tr(stamp), "", 0, "R", false, 0, "")
		pdf.SetLineWidth(0.2)
		pdf.Line(marginLeft, 18, w-marginRight, 18)
		pdf.SetY(marginTop)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		d.font(10)
		pdf.CellFormat(0, 6, d.tr("Medicine inventory system"), "", 0, "L", false, 0, "")
		pdf.SetX(marginLeft)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()
	return d
}

func (d *document) font(size float64) {
	d.pdf.SetFont(d.family, "", size)
}

func (d *document) centered(size float64, text string) {
	d.font(size)
	d.pdf.CellFormat(0, size/2+2, d.tr(text), "", 1, "C", false, 0, "")
}

func (d *document) heading(text string) {
	d.pdf.Ln(6)
	d.font(16)
	d.pdf.CellFormat(0, 9, d.tr(text), "", 1, "L", false, 0, "")
}

// keyValues draws an unbordered two-column label/value table.
func (d *document) keyValues(rows [][2]string) {
	d.font(13)
	for _, row := range rows {
		d.pdf.CellFormat(80, 8, d.tr(row[0]), "", 0, "L", false, 0, "")
		d.pdf.CellFormat(0, 8, d.tr(row[1]), "", 1, "L", false, 0, "")
	}
}

// table draws a grid table, repeating the header row on every new page.
func (d *document) table(cols []column, rows [][]string, head rgb) {
	w, h := d.pdf.GetPageSize()
	widths := make([]float64, len(cols))
	rest, flex := w-marginLeft-marginRight, 0
	for i, c := range cols {
		widths[i] = c.width
		rest -= c.width
		if c.width == 0 {
			flex++
		}
	}
	for i := range widths {
		if widths[i] == 0 && flex > 0 {
			widths[i] = rest / float64(flex)
		}
	}

	const rowHeight = 8.0
	header := func() {
		d.font(12)
		d.pdf.SetFillColor(head.r, head.g, head.b)
		d.pdf.SetTextColor(255, 255, 255)
		for i, c := range cols {
			d.pdf.CellFormat(widths[i], rowHeight, d.tr(c.title), "1", 0, "C", true, 0, "")
		}
		d.pdf.Ln(-1)
		d.pdf.SetTextColor(0, 0, 0)
		d.font(11)
	}

	header()
	if len(rows) == 0 {
		d.pdf.CellFormat(w-marginLeft-marginRight, rowHeight, "-", "1", 1, "C", false, 0, "")
		return
	}
	d.pdf.SetFillColor(grey.r, grey.g, grey.b)
	for n, row := range rows {
		if d.pdf.GetY()+rowHeight > h-marginBottom {
			d.pdf.AddPage()
			header()
			d.pdf.SetFillColor(grey.r, grey.g, grey.b)
		}
		for i, c := range cols {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			align := c.align
			if align == "" {
				align = "L"
			}
			d.pdf.CellFormat(widths[i], rowHeight, d.tr(cell), "1", 0, align, n%2 == 1, 0, "")
		}
		d.pdf.Ln(-1)
	}
}

func (d *document) output(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
