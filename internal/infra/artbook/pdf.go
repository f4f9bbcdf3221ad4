// Package artbook renders a printable PDF book of artworks.
package artbook

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-pdf/fpdf"
)

const (
	pageW   = 210.0
	margin  = 20.0
	boxW    = pageW - 2*margin
	boxH    = 200.0
	imageY  = 30.0
	caption = imageY + boxH + 8
)

type Page struct {
	Title   string
	Caption string
	Image   []byte
}

type Book struct {
	Title    string
	Subtitle string
	Pages    []Page
}

// Render writes the book as A4 PDF. Pages whose image cannot be embedded keep
// their caption and show a placeholder.
func Render(w io.Writer, b Book) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(b.Title, true)
	pdf.SetCreator("KidCanvas", true)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 32)
	pdf.SetY(110)
	pdf.CellFormat(0, 16, tr(b.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 10, tr(b.Subtitle), "", 1, "C", false, 0, "")

	for i, p := range b.Pages {
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 18)
		pdf.SetXY(margin, margin)
		pdf.CellFormat(boxW, 8, tr(p.Title), "", 1, "C", false, 0, "")

		if !placeImage(pdf, fmt.Sprintf("art-%d", i), p.Image) {
			pdf.SetFont("Helvetica", "I", 12)
			pdf.SetXY(margin, imageY+boxH/2)
			pdf.CellFormat(boxW, 8, "(image unavailable)", "", 1, "C", false, 0, "")
		}

		pdf.SetFont("Helvetica", "", 12)
		pdf.SetXY(margin, caption)
		pdf.MultiCell(boxW, 6, tr(p.Caption), "", "C", false)

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(margin, 280)
		pdf.CellFormat(boxW, 5, fmt.Sprintf("%d", i+1), "", 0, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("artbook - Render - Output: %w", err)
	}
	return nil
}

func placeImage(pdf *fpdf.Fpdf, name string, data []byte) bool {
	if len(data) == 0 {
		return false
	}

	var imgType string
	switch http.DetectContentType(data) {
	case "image/jpeg":
		imgType = "JPG"
	case "image/png":
		imgType = "PNG"
	default:
		return false
	}

	opts := fpdf.ImageOptions{ImageType: imgType}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if !pdf.Ok() || info == nil {
		pdf.ClearError()
		return false
	}

	w, h := fit(info.Width(), info.Height(), boxW, boxH)
	x := margin + (boxW-w)/2
	y := imageY + (boxH-h)/2
	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return pdf.Ok()
}

// fit scales w x h to fit inside maxW x maxH keeping the aspect ratio.
func fit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
