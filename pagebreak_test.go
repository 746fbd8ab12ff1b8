package dashpdf

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/porticus-lab/go-dash-pdf/dom"
)

func testBreakConfig() breakConfig {
	return breakConfig{
		pageHeight:     700,
		topPadding:     32,
		containerWidth: 800,
		minUnitHeight:  4,
		minCut:         4,
		unitClasses:    defaultUnitClasses,
	}
}

// newRowContainer builds a container of grid-row units with the given pixel
// heights.
func newRowContainer(heights ...float64) *dom.Element {
	c := dom.NewElement("div")
	for _, h := range heights {
		row := dom.NewElement("div")
		row.AddClass("grid-row")
		row.SetHeightPx(h)
		c.AppendChild(row)
	}
	return c
}

func quiet() *log.Logger { return log.New(io.Discard) }

// rowRects reflows and returns the container-relative tops and bottoms of
// the grid-row units, in document order.
func rowRects(t *testing.T, c *dom.Element, width float64) []dom.Rect {
	t.Helper()
	dom.Reflow(c, width)
	var rects []dom.Rect
	for _, u := range c.FindByClass("grid-row") {
		r := u.Bounds()
		r.Top -= c.Bounds().Top
		rects = append(rects, r)
	}
	return rects
}

func TestInsertPageBreaks_StraddlingUnitPushed(t *testing.T) {
	// Heights 200, 600, 150 with a 700px page: unit 2 would span 200..800,
	// crossing the boundary at 700, and must be pushed to the next page.
	c := newRowContainer(200, 600, 150)
	cfg := testBreakConfig()
	dom.Reflow(c, cfg.containerWidth)

	breaks := insertPageBreaks(c, cfg, quiet())
	if breaks != 2 {
		t.Fatalf("breaks = %d, want 2", breaks)
	}

	rects := rowRects(t, c, cfg.containerWidth)
	wants := []struct{ top, bottom float64 }{
		{0, 200},     // unit 1 untouched on page 0
		{732, 1332},  // unit 2: fill to 700, then 32px padding
		{1432, 1582}, // unit 3: fill to 1400, then 32px padding
	}
	for i, want := range wants {
		got := rects[i]
		if got.Top != want.top || got.Bottom() != want.bottom {
			t.Errorf("unit %d = [%v, %v), want [%v, %v)",
				i+1, got.Top, got.Bottom(), want.top, want.bottom)
		}
	}

	// No-straddle invariant: every unit's top and bottom land on the same
	// page index.
	for i, r := range rects {
		pTop := int(r.Top / cfg.pageHeight)
		pBottom := int((r.Bottom() - 1) / cfg.pageHeight)
		if pTop != pBottom {
			t.Errorf("unit %d straddles pages %d and %d", i+1, pTop, pBottom)
		}
	}
}

func TestInsertPageBreaks_SpacerHeights(t *testing.T) {
	c := newRowContainer(200, 600, 150)
	cfg := testBreakConfig()
	dom.Reflow(c, cfg.containerWidth)
	insertPageBreaks(c, cfg, quiet())

	fills := c.FindByClass(spacerFillClass)
	pads := c.FindByClass(spacerPadClass)
	if len(fills) != 2 || len(pads) != 2 {
		t.Fatalf("got %d fill and %d pad spacers, want 2 and 2", len(fills), len(pads))
	}
	if h := fills[0].HeightPx(); h != 500 {
		t.Errorf("first fill spacer height = %v, want 500", h)
	}
	if h := fills[1].HeightPx(); h != 68 {
		t.Errorf("second fill spacer height = %v, want 68", h)
	}
	for _, p := range pads {
		if h := p.HeightPx(); h != 32 {
			t.Errorf("pad spacer height = %v, want 32", h)
		}
	}
}

func TestInsertPageBreaks_Idempotent(t *testing.T) {
	c := newRowContainer(200, 600, 150)
	cfg := testBreakConfig()
	dom.Reflow(c, cfg.containerWidth)

	insertPageBreaks(c, cfg, quiet())
	before := len(c.FindByClass(SpacerClass))

	if breaks := insertPageBreaks(c, cfg, quiet()); breaks != 0 {
		t.Errorf("second pass inserted %d breaks, want 0", breaks)
	}
	if after := len(c.FindByClass(SpacerClass)); after != before {
		t.Errorf("second pass changed spacer count from %d to %d", before, after)
	}
}

func TestInsertPageBreaks_OversizedUnitNotPushed(t *testing.T) {
	// A 900px unit cannot fit any 700px page: it must be left to split
	// rather than pushed.
	c := newRowContainer(200, 900, 100)
	cfg := testBreakConfig()
	dom.Reflow(c, cfg.containerWidth)

	insertPageBreaks(c, cfg, quiet())

	rects := rowRects(t, c, cfg.containerWidth)
	if rects[1].Top != 200 {
		t.Errorf("oversized unit moved to %v, want 200", rects[1].Top)
	}
}

func TestInsertPageBreaks_SkipsHiddenAndTinyUnits(t *testing.T) {
	c := newRowContainer(650, 2, 600)
	rows := c.FindByClass("grid-row")
	rows[1].SetStyle("display", "none") // hidden, and also under min height

	cfg := testBreakConfig()
	dom.Reflow(c, cfg.containerWidth)
	breaks := insertPageBreaks(c, cfg, quiet())

	// Only the 600px unit (spanning 650..1250) needed a push.
	if breaks != 1 {
		t.Fatalf("breaks = %d, want 1", breaks)
	}
	rects := rowRects(t, c, cfg.containerWidth)
	if rects[2].Top != 732 {
		t.Errorf("pushed unit top = %v, want 732", rects[2].Top)
	}
}

func TestInsertPageBreaks_TrivialOverflowSuppressed(t *testing.T) {
	// The second unit overflows the boundary by 2px, under the minimum
	// cut: pushing would churn pagination to rescue a shadow's worth of
	// pixels.
	c := newRowContainer(600, 102, 100)
	cfg := testBreakConfig()
	dom.Reflow(c, cfg.containerWidth)

	if breaks := insertPageBreaks(c, cfg, quiet()); breaks != 0 {
		t.Errorf("breaks = %d, want 0 for trivial overflow", breaks)
	}
}

func TestInsertPageBreaks_FallbackToChildren(t *testing.T) {
	// No recognizable unit classes: direct children are the units.
	c := dom.NewElement("div")
	for _, h := range []float64{200, 600} {
		item := dom.NewElement("div")
		item.SetHeightPx(h)
		c.AppendChild(item)
	}
	cfg := testBreakConfig()
	dom.Reflow(c, cfg.containerWidth)

	if breaks := insertPageBreaks(c, cfg, quiet()); breaks != 1 {
		t.Errorf("breaks = %d, want 1", breaks)
	}
}

func TestCollectLayoutUnits_OneGranularity(t *testing.T) {
	// A row with nested unit-classed children must be selected alone;
	// selecting both granularities would double-space every break.
	c := dom.NewElement("div")
	row := dom.NewElement("div")
	row.AddClass("grid-row")
	inner := dom.NewElement("div")
	inner.AddClass("dashboard-markdown")
	row.AppendChild(inner)
	c.AppendChild(row)

	units := collectLayoutUnits(c, defaultUnitClasses)
	if len(units) != 1 || units[0] != row {
		t.Fatalf("got %d units, want just the outer row", len(units))
	}
}
