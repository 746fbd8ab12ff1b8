package dashpdf

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/porticus-lab/go-dash-pdf/dom"
)

// RasterOptions parameterize one rasterization of a staged subtree.
type RasterOptions struct {
	// BackgroundColor fills the output before any content is painted.
	BackgroundColor color.Color

	// ExcludeClasses and ExcludeTags name elements to leave out of the
	// output entirely (subtree included).
	ExcludeClasses []string
	ExcludeTags    []string

	// Scale multiplies the output pixel dimensions. 0 means 1.
	Scale float64

	// Quality in 0..1 is a hint for rasterizers with lossy capture paths.
	Quality float64

	// PixelWidth and PixelHeight fix the output size in unscaled CSS
	// pixels, overriding the subtree's natural layout size.
	PixelWidth  int
	PixelHeight int
}

// scale returns the effective scale factor.
func (o RasterOptions) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// excluded reports whether the node filter rejects e.
func (o RasterOptions) excluded(e *dom.Element) bool {
	for _, t := range o.ExcludeTags {
		if e.Tag == t {
			return true
		}
	}
	for _, c := range o.ExcludeClasses {
		if e.HasClass(c) {
			return true
		}
	}
	return false
}

// A Rasterizer turns a staged DOM subtree into a single bitmap. It is the
// one collaborator the export pipeline suspends on; implementations must
// honor ctx cancellation.
//
// Two implementations ship with the library: [SoftwareRasterizer], a pure-Go
// painter over the dom package's block layout, and [ChromeRasterizer], a
// full-fidelity path through a headless browser.
type Rasterizer interface {
	Rasterize(ctx context.Context, root *dom.Element, opts RasterOptions) (image.Image, error)
}

// SoftwareRasterizer paints the reflowed tree directly: element background
// colors as filled rects and canvas pixel buffers scaled into their boxes.
// It renders no text or borders — charts on a dashboard live in canvases,
// which is what this path is for — but it is hermetic, fast, and needs no
// browser.
type SoftwareRasterizer struct{}

// Rasterize implements [Rasterizer].
func (SoftwareRasterizer) Rasterize(ctx context.Context, root *dom.Element, opts RasterOptions) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("dashpdf: rasterizing: %w", err)
	}

	w := opts.PixelWidth
	h := opts.PixelHeight
	if w <= 0 {
		w = int(root.Bounds().Width)
	}
	dom.Reflow(root, float64(w))
	if h <= 0 {
		h = int(math.Ceil(root.Bounds().Height))
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("dashpdf: rasterizing: content has no size")
	}

	s := opts.scale()
	out := image.NewNRGBA(image.Rect(0, 0, int(math.Round(float64(w)*s)), int(math.Round(float64(h)*s))))
	bg := opts.BackgroundColor
	if bg == nil {
		bg = color.White
	}
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	paint(out, root, opts, s)
	return out, nil
}

func paint(dst *image.NRGBA, e *dom.Element, opts RasterOptions, s float64) {
	if opts.excluded(e) || !e.Rendered() {
		return
	}
	box := scaledBox(e.Bounds(), s)
	if bg, ok := e.BackgroundColor(); ok && bg.A > 0 {
		draw.Draw(dst, box, image.NewUniform(bg), image.Point{}, draw.Over)
	}
	if img := e.CanvasImage(); img != nil {
		xdraw.ApproxBiLinear.Scale(dst, box, img, img.Bounds(), xdraw.Over, nil)
	}
	for _, c := range e.Children() {
		paint(dst, c, opts, s)
	}
}

func scaledBox(r dom.Rect, s float64) image.Rectangle {
	return image.Rect(
		int(math.Round(r.Left*s)),
		int(math.Round(r.Top*s)),
		int(math.Round((r.Left+r.Width)*s)),
		int(math.Round((r.Top+r.Height)*s)),
	)
}
