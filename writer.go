package dashpdf

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"codeberg.org/go-pdf/fpdf"
)

// A DocumentWriter assembles page images into an output document. The
// export pipeline drives it page by page: AddPage, then AddImage with the
// placement in points, and finally Output once.
//
// The default implementation ([NewPDFWriter]) writes PDF via fpdf; it is
// replaceable with [WithDocumentWriter], which is how tests inject write
// failures.
type DocumentWriter interface {
	// AddPage starts a new blank page.
	AddPage()

	// AddImage places an encoded page image on the current page at the
	// given position and size in points.
	AddImage(img image.Image, format string, quality float64, x, y, w, h float64) error

	// Output serializes the document.
	Output(w io.Writer) error
}

// pdfWriter is the fpdf-backed DocumentWriter.
type pdfWriter struct {
	doc   *fpdf.Fpdf
	pages int
}

// NewPDFWriter returns the standard PDF writer for the given page format.
func NewPDFWriter(format PageFormat) DocumentWriter {
	r := format.resolved()
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: r.Width, Ht: r.Height},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	doc.SetCreator("go-dash-pdf", true)
	return &pdfWriter{doc: doc}
}

func (w *pdfWriter) AddPage() {
	w.doc.AddPage()
	w.pages++
}

func (w *pdfWriter) AddImage(img image.Image, format string, quality float64, x, y, wd, ht float64) error {
	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("dashpdf: encoding page image: %w", err)
		}
	case FormatJPEG, "":
		format = FormatJPEG
		q := int(quality * 100)
		if q <= 0 || q > 100 {
			q = 100
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return fmt.Errorf("dashpdf: encoding page image: %w", err)
		}
	default:
		return fmt.Errorf("dashpdf: unsupported image format %q", format)
	}

	name := fmt.Sprintf("page-%d", w.pages)
	opts := fpdf.ImageOptions{ImageType: strings.ToUpper(format)}
	w.doc.RegisterImageOptionsReader(name, opts, &buf)
	w.doc.ImageOptions(name, x, y, wd, ht, false, opts, 0, "")
	if err := w.doc.Error(); err != nil {
		return fmt.Errorf("dashpdf: placing page image: %w", err)
	}
	return nil
}

func (w *pdfWriter) Output(out io.Writer) error {
	if err := w.doc.Output(out); err != nil {
		return fmt.Errorf("dashpdf: writing document: %w", err)
	}
	return nil
}
