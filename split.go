package dashpdf

import (
	"image"
	"image/color"
	"image/draw"
)

// RasterPage is one fixed-height window into the full-height raster,
// corresponding to one physical output page.
type RasterPage struct {
	// Index is the page's slice position in the source image, before blank
	// pages are dropped.
	Index int

	// SourceYOffset is the slice's top edge in the source image.
	SourceYOffset int

	// Image holds the page pixels at the full page size; a short final
	// slice is padded with the page background color.
	Image *image.NRGBA
}

// splitPages slices src into pageHeight-tall strips. Every strip is drawn
// onto a full-size, background-filled page image so a partial last slice
// does not leak uninitialized pixels.
func splitPages(src image.Image, pageHeight int, background color.Color) []RasterPage {
	b := src.Bounds()
	if pageHeight <= 0 || b.Dx() <= 0 || b.Dy() <= 0 {
		return nil
	}
	if background == nil {
		background = color.White
	}

	count := (b.Dy() + pageHeight - 1) / pageHeight
	pages := make([]RasterPage, 0, count)
	for i := 0; i < count; i++ {
		yOff := i * pageHeight
		page := image.NewNRGBA(image.Rect(0, 0, b.Dx(), pageHeight))
		draw.Draw(page, page.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

		sliceHeight := pageHeight
		if rest := b.Dy() - yOff; rest < sliceHeight {
			sliceHeight = rest
		}
		draw.Draw(page, image.Rect(0, 0, b.Dx(), sliceHeight), src, image.Pt(b.Min.X, b.Min.Y+yOff), draw.Src)

		pages = append(pages, RasterPage{Index: i, SourceYOffset: yOff, Image: page})
	}
	return pages
}

// isBlank reports whether every pixel is either fully white-opaque or fully
// transparent. Any other color or alpha value proves content.
func isBlank(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		row := img.Pix[off : off+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			if row[x+3] == 0 {
				continue // fully transparent
			}
			if row[x] == 0xff && row[x+1] == 0xff && row[x+2] == 0xff && row[x+3] == 0xff {
				continue // white-opaque
			}
			return false
		}
	}
	return true
}

// placement positions a page image inside the printable area, in points.
type placement struct {
	X, Y, W, H float64
}

// placeOnPage fits a page image of imgW×imgH pixels into the format's
// printable area: scaled to the printable width with aspect ratio preserved,
// top-aligned below the top margin.
func placeOnPage(format PageFormat, imgW, imgH int) placement {
	r := format.resolved()
	w := r.PrintableWidth()
	h := w * float64(imgH) / float64(imgW)
	if max := r.PrintableHeight(); h > max {
		h = max
	}
	return placement{X: r.Margin, Y: r.Margin, W: w, H: h}
}
