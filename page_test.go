package dashpdf

import (
	"math"
	"testing"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestPageFormatResolved_Defaults(t *testing.T) {
	var f PageFormat
	r := f.resolved()
	if r.Width != A4.Width || r.Height != A4.Height {
		t.Errorf("zero format resolved to %vx%v, want A4", r.Width, r.Height)
	}
	if r.Margin != DefaultMarginPt {
		t.Errorf("zero margin resolved to %v, want %v", r.Margin, DefaultMarginPt)
	}
}

func TestPageFormatResolved_ClampsAbsurdMargin(t *testing.T) {
	f := PageFormat{Width: 100, Height: 200, Margin: 60}
	r := f.resolved()
	if r.Margin != DefaultMarginPt {
		t.Errorf("margin = %v, want clamped to %v", r.Margin, DefaultMarginPt)
	}
}

func TestPrintableArea(t *testing.T) {
	f := PageFormat{Width: 595.28, Height: 841.89, Margin: 10}
	if got := f.PrintableWidth(); !almostEqual(got, 575.28, 1e-9) {
		t.Errorf("PrintableWidth = %v, want 575.28", got)
	}
	if got := f.PrintableHeight(); !almostEqual(got, 821.89, 1e-9) {
		t.Errorf("PrintableHeight = %v, want 821.89", got)
	}
}

func TestPageHeightPx_ScalesWithContainer(t *testing.T) {
	f := PageFormat{Width: 595.28, Height: 841.89, Margin: 10}

	// The printable aspect ratio carries over to pixel space: pageHeight ×
	// printableWidth ≈ printableHeight × containerWidth within the 1px
	// floor.
	for _, width := range []float64{400, 575.28, 800, 1200, 1920} {
		got := f.PageHeightPx(width)
		exact := f.PrintableHeight() * width / f.PrintableWidth()
		if got > exact || got < exact-1 {
			t.Errorf("PageHeightPx(%v) = %v, want within [%v, %v]", width, got, exact-1, exact)
		}
		if got != math.Floor(got) {
			t.Errorf("PageHeightPx(%v) = %v, want whole pixels", width, got)
		}
	}
}

func TestPageHeightPx_Monotonic(t *testing.T) {
	formats := []PageFormat{A4, Letter, Legal, A3, A5, {Width: 300, Height: 500, Margin: 25}}
	for _, f := range formats {
		prev := -1.0
		for width := 50.0; width <= 3000; width += 37.5 {
			got := f.PageHeightPx(width)
			if got < prev {
				t.Fatalf("PageHeightPx not monotonic for %+v: f(%v)=%v after %v", f, width, got, prev)
			}
			prev = got
		}
	}
}

func TestPageHeightPx_ZeroWidth(t *testing.T) {
	if got := A4.PageHeightPx(0); got != 0 {
		t.Errorf("PageHeightPx(0) = %v, want 0", got)
	}
}

func TestStandardSizes_Portrait(t *testing.T) {
	for name, f := range map[string]PageFormat{
		"A3": A3, "A4": A4, "A5": A5, "Letter": Letter, "Legal": Legal,
	} {
		if f.Width >= f.Height {
			t.Errorf("%s is not portrait: %vx%v", name, f.Width, f.Height)
		}
	}
}
