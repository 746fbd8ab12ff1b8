package dashpdf

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestIsBlank(t *testing.T) {
	tests := []struct {
		name string
		img  *image.NRGBA
		want bool
	}{
		{"all white opaque", solidImage(8, 8, color.NRGBA{255, 255, 255, 255}), true},
		{"all transparent", solidImage(8, 8, color.NRGBA{0, 0, 0, 0}), true},
		{"single gray pixel", func() *image.NRGBA {
			img := solidImage(8, 8, color.NRGBA{255, 255, 255, 255})
			img.SetNRGBA(3, 5, color.NRGBA{200, 200, 200, 255})
			return img
		}(), false},
		{"semi-transparent white", solidImage(8, 8, color.NRGBA{255, 255, 255, 128}), false},
		{"solid color", solidImage(8, 8, color.NRGBA{51, 102, 204, 255}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBlank(tt.img); got != tt.want {
				t.Errorf("isBlank = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitPages_SliceCountAndOffsets(t *testing.T) {
	src := solidImage(100, 250, color.NRGBA{51, 102, 204, 255})
	pages := splitPages(src, 100, color.White)

	if len(pages) != 3 {
		t.Fatalf("len(pages) = %d, want 3", len(pages))
	}
	for i, p := range pages {
		if p.Index != i {
			t.Errorf("page %d has index %d", i, p.Index)
		}
		if p.SourceYOffset != i*100 {
			t.Errorf("page %d offset = %d, want %d", i, p.SourceYOffset, i*100)
		}
		if b := p.Image.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
			t.Errorf("page %d size = %v, want 100x100", i, b)
		}
	}
}

func TestSplitPages_PartialLastSliceBackgroundFilled(t *testing.T) {
	// 250px of content over 100px pages: the last slice covers only 50px;
	// the rest must be background, not junk.
	src := solidImage(100, 250, color.NRGBA{51, 102, 204, 255})
	pages := splitPages(src, 100, color.White)

	last := pages[2].Image
	if got := last.NRGBAAt(50, 25); got != (color.NRGBA{51, 102, 204, 255}) {
		t.Errorf("covered region = %v, want content color", got)
	}
	if got := last.NRGBAAt(50, 75); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("uncovered region = %v, want white background", got)
	}
}

func TestSplitPages_InvalidInputs(t *testing.T) {
	src := solidImage(10, 10, color.White)
	if pages := splitPages(src, 0, color.White); pages != nil {
		t.Errorf("zero page height produced %d pages", len(pages))
	}
	empty := image.NewNRGBA(image.Rect(0, 0, 0, 0))
	if pages := splitPages(empty, 100, color.White); pages != nil {
		t.Errorf("empty source produced %d pages", len(pages))
	}
}

func TestPlaceOnPage_FitsPrintableWidth(t *testing.T) {
	format := PageFormat{Width: 595.28, Height: 841.89, Margin: 10}
	pl := placeOnPage(format, 1200, 600)

	if pl.X != 10 || pl.Y != 10 {
		t.Errorf("origin = (%v, %v), want (10, 10)", pl.X, pl.Y)
	}
	wantW := 595.28 - 20
	if pl.W != wantW {
		t.Errorf("width = %v, want %v", pl.W, wantW)
	}
	wantH := wantW * 600 / 1200
	if pl.H != wantH {
		t.Errorf("height = %v, want %v", pl.H, wantH)
	}
}

func TestPlaceOnPage_TallImageClampedToPrintableHeight(t *testing.T) {
	format := PageFormat{Width: 595.28, Height: 841.89, Margin: 10}
	pl := placeOnPage(format, 100, 10000)
	if max := format.PrintableHeight(); pl.H != max {
		t.Errorf("height = %v, want clamped to %v", pl.H, max)
	}
}
