package report

import (
	"strings"

	"github.com/go-pdf/fpdf"
)

// writer wraps the fpdf calls used by the report layout.
type writer struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
}

func (w *writer) title(text string) {
	w.pdf.SetFont(w.family, "B", 18)
	w.pdf.CellFormat(0, 12, w.tr(text), "", 1, "C", false, 0, "")
	w.pdf.SetFont(w.family, "", 11)
}

func (w *writer) heading(text string) {
	w.pdf.Ln(4)
	w.pdf.SetFont(w.family, "B", 14)
	w.pdf.CellFormat(0, 10, w.tr(text), "", 1, "L", false, 0, "")
	w.pdf.SetFont(w.family, "", 11)
}

func (w *writer) line(text string) {
	w.pdf.CellFormat(0, 7, w.tr(text), "", 1, "L", false, 0, "")
}

func (w *writer) table(rows [][2]string) {
	const colW, rowH = 60.0, 8.0

	w.pdf.SetFont(w.family, "B", 11)
	w.pdf.SetFillColor(230, 230, 230)
	w.pdf.CellFormat(colW, rowH, "Metric", "1", 0, "C", true, 0, "")
	w.pdf.CellFormat(colW, rowH, "Value", "1", 1, "C", true, 0, "")

	w.pdf.SetFont(w.family, "", 11)
	w.pdf.SetFillColor(255, 255, 255)
	for _, row := range rows {
		w.pdf.CellFormat(colW, rowH, w.tr(row[0]), "1", 0, "L", false, 0, "")
		w.pdf.CellFormat(colW, rowH, w.tr(row[1]), "1", 1, "R", false, 0, "")
	}
}

func (w *writer) image(path string) {
	left, _, right, _ := w.pdf.GetMargins()
	pageW, _ := w.pdf.GetPageSize()
	x := left + (pageW-left-right-chartW)/2
	w.pdf.ImageOptions(path, x, 0, chartW, chartH, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	w.pdf.Ln(2)
}

func (w *writer) paragraph(text string) {
	w.pdf.MultiCell(0, 6, w.tr(stripMarkdown(text)), "", "L", false)
	w.pdf.Ln(3)
}

// stripMarkdown removes the emphasis and heading markers models like to emit.
func stripMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		l = strings.TrimLeft(l, "# ")
		l = strings.ReplaceAll(l, "**", "")
		l = strings.ReplaceAll(l, "__", "")
		lines[i] = l
	}
	return strings.Join(lines, "\n")
}
