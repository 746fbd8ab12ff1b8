package dashpdf

import "math"

// PageFormat describes the physical output page in points (1/72 inch):
// paper dimensions plus a uniform margin. The printable area is the paper
// minus the margin on every side.
type PageFormat struct {
	Width  float64 // Paper width in points.
	Height float64 // Paper height in points.
	Margin float64 // Uniform margin in points.
}

// Standard paper sizes in points. Margins default to [DefaultMarginPt]
// unless set explicitly or via [WithMargin].
var (
	A3     = PageFormat{Width: 841.89, Height: 1190.55}
	A4     = PageFormat{Width: 595.28, Height: 841.89}
	A5     = PageFormat{Width: 419.53, Height: 595.28}
	Letter = PageFormat{Width: 612.00, Height: 792.00}
	Legal  = PageFormat{Width: 612.00, Height: 1008.00}
)

// DefaultMarginPt is the default page margin in points.
const DefaultMarginPt = 10

// resolved returns the format with zero values replaced by defaults:
// A4 paper and the default margin. A margin too large for the paper is
// clamped back to the default.
func (f PageFormat) resolved() PageFormat {
	r := f
	if r.Width <= 0 || r.Height <= 0 {
		r.Width, r.Height = A4.Width, A4.Height
	}
	if r.Margin <= 0 {
		r.Margin = DefaultMarginPt
	}
	if r.Margin*2 >= r.Width || r.Margin*2 >= r.Height {
		r.Margin = DefaultMarginPt
	}
	return r
}

// PrintableWidth returns the width of the printable area in points.
func (f PageFormat) PrintableWidth() float64 {
	r := f.resolved()
	return r.Width - 2*r.Margin
}

// PrintableHeight returns the height of the printable area in points.
func (f PageFormat) PrintableHeight() float64 {
	r := f.resolved()
	return r.Height - 2*r.Margin
}

// PageHeightPx converts the printable page height into CSS pixels for a
// content container of the given pixel width. The pixel-per-point scale is
// the ratio of the container's actual width to the printable width, so
// pageHeightPx × printableWidth ≈ printableHeight × containerWidth, floored
// to whole pixels.
//
// The value must be recomputed whenever the container's rendered width
// changes — in particular after staged content is restyled for export.
func (f PageFormat) PageHeightPx(containerWidthPx float64) float64 {
	if containerWidthPx <= 0 {
		return 0
	}
	scale := containerWidthPx / f.PrintableWidth()
	return math.Floor(f.PrintableHeight() * scale)
}
