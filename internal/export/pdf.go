package export

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// Margin is the page margin in millimetres.
const Margin = 10.0

// placement is where an image lands on an A4 page, in millimetres.
type placement struct {
	orientation string
	x, y, w, h  float64
}

// a4 is the A4 page size in millimetres, portrait.
var a4 = [2]float64{210, 297}

// place fits an image of pw×ph pixels inside the page margins, centred.
// Wide images get a landscape page.
func place(pw, ph int) placement {
	p := placement{orientation: "P"}
	pageW, pageH := a4[0], a4[1]
	if pw > ph {
		p.orientation = "L"
		pageW, pageH = pageH, pageW
	}
	availW, availH := pageW-2*Margin, pageH-2*Margin
	scale := min(availW/float64(pw), availH/float64(ph))
	p.w, p.h = float64(pw)*scale, float64(ph)*scale
	p.x = (pageW - p.w) / 2
	p.y = (pageH - p.h) / 2
	return p
}

// PDF writes img onto a single A4 page, scaled to fit the margins.
func PDF(w io.Writer, img image.Image, title string) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("export pdf: empty image")
	}
	var buf bytes.Buffer
	if err := PNG(&buf, img); err != nil {
		return err
	}

	p := place(b.Dx(), b.Dy())
	pdf := gofpdf.New(p.orientation, "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("colorbook", true)
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("page", opts, &buf)
	pdf.ImageOptions("page", p.x, p.y, p.w, p.h, false, opts, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}
	return nil
}

// PDFDataURL renders img as PDF and wraps it in a data URL.
func PDFDataURL(img image.Image, title string) (string, error) {
	var buf bytes.Buffer
	if err := PDF(&buf, img, title); err != nil {
		return "", err
	}
	return DataURL("application/pdf", buf.Bytes()), nil
}
