package dom

// Reflow recomputes the bounding rect of every element under root, stacking
// block children vertically inside their parent's content box. root is laid
// out at (0,0) with the given pixel width.
//
// The model is the dashboard block model, not full CSS: an element's height
// is its explicit pixel height when set, otherwise the sum of its children's
// heights. display:none subtrees collapse to nothing; visibility:hidden
// elements keep their box but report as not rendered (see [Element.Rendered]).
func Reflow(root *Element, width float64) {
	layout(root, 0, 0, width)
}

func layout(e *Element, top, left, width float64) float64 {
	if e.Style("display") == "none" || e.Tag == "script" || e.Tag == "style" {
		e.rect = Rect{}
		return 0
	}

	w := width
	if ew := e.WidthPx(); ew > 0 && ew < width {
		w = ew
	}

	childTop := top
	var childrenHeight float64
	for _, c := range e.children {
		h := layout(c, childTop, left, w)
		childTop += h
		childrenHeight += h
	}

	h := e.HeightPx()
	if h == 0 {
		h = childrenHeight
	}
	e.rect = Rect{Top: top, Left: left, Width: w, Height: h}
	return h
}

// Rendered reports whether the element occupies visible space as of the most
// recent reflow: it is displayed, not visibility-hidden, and has a non-zero
// box.
func (e *Element) Rendered() bool {
	if e.Style("display") == "none" {
		return false
	}
	if e.Style("visibility") == "hidden" {
		return false
	}
	return e.rect.Height > 0
}
