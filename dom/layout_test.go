package dom

import "testing"

func newBlock(parent *Element, class string, height float64) *Element {
	e := NewElement("div")
	if class != "" {
		e.AddClass(class)
	}
	if height > 0 {
		e.SetHeightPx(height)
	}
	if parent != nil {
		parent.AppendChild(e)
	}
	return e
}

func TestReflow_StacksBlocks(t *testing.T) {
	root := NewElement("div")
	a := newBlock(root, "grid-row", 200)
	b := newBlock(root, "grid-row", 600)
	c := newBlock(root, "grid-row", 150)

	Reflow(root, 1200)

	want := []struct {
		e   *Element
		top float64
	}{{a, 0}, {b, 200}, {c, 800}}
	for i, tt := range want {
		if got := tt.e.Bounds().Top; got != tt.top {
			t.Errorf("block %d top = %v, want %v", i, got, tt.top)
		}
	}
	if got := root.Bounds().Height; got != 950 {
		t.Errorf("root height = %v, want children sum 950", got)
	}
	if got := a.Bounds().Width; got != 1200 {
		t.Errorf("block width = %v, want container width", got)
	}
}

func TestReflow_ExplicitHeightWins(t *testing.T) {
	root := NewElement("div")
	root.SetHeightPx(400)
	newBlock(root, "", 700)

	Reflow(root, 800)
	if got := root.Bounds().Height; got != 400 {
		t.Errorf("explicit height = %v, want 400", got)
	}
}

func TestReflow_DisplayNoneCollapses(t *testing.T) {
	root := NewElement("div")
	hidden := newBlock(root, "", 300)
	hidden.SetStyle("display", "none")
	below := newBlock(root, "", 100)

	Reflow(root, 800)

	if hidden.Bounds().Height != 0 {
		t.Error("display:none element should collapse to zero height")
	}
	if got := below.Bounds().Top; got != 0 {
		t.Errorf("sibling below collapsed element at top %v, want 0", got)
	}
	if hidden.Rendered() {
		t.Error("display:none element reports rendered")
	}
}

func TestReflow_VisibilityHiddenKeepsBox(t *testing.T) {
	root := NewElement("div")
	ghost := newBlock(root, "", 300)
	ghost.SetStyle("visibility", "hidden")
	below := newBlock(root, "", 100)

	Reflow(root, 800)

	if ghost.Bounds().Height != 300 {
		t.Error("visibility:hidden element should keep its box")
	}
	if got := below.Bounds().Top; got != 300 {
		t.Errorf("sibling top = %v, want 300 (box preserved)", got)
	}
	if ghost.Rendered() {
		t.Error("visibility:hidden element reports rendered")
	}
}

func TestReflow_MutationShiftsSiblings(t *testing.T) {
	root := NewElement("div")
	a := newBlock(root, "", 200)
	b := newBlock(root, "", 150)
	Reflow(root, 800)
	if b.Bounds().Top != 200 {
		t.Fatalf("precondition: b top = %v", b.Bounds().Top)
	}

	spacer := NewElement("div")
	spacer.SetHeightPx(500)
	root.InsertBefore(spacer, b)
	Reflow(root, 800)

	if got := b.Bounds().Top; got != 700 {
		t.Errorf("b top after spacer insertion = %v, want 700", got)
	}
	if a.Bounds().Top != 0 {
		t.Error("element above insertion point moved")
	}
}

func TestReflow_ScriptAndStyleIgnored(t *testing.T) {
	root := NewElement("div")
	script := NewElement("script")
	script.SetHeightPx(999)
	root.AppendChild(script)
	newBlock(root, "", 50)

	Reflow(root, 800)
	if got := root.Bounds().Height; got != 50 {
		t.Errorf("root height = %v, want 50 (script contributes nothing)", got)
	}
}

func TestRendered_ZeroHeight(t *testing.T) {
	root := NewElement("div")
	empty := newBlock(root, "", 0)
	Reflow(root, 800)
	if empty.Rendered() {
		t.Error("zero-height element reports rendered")
	}
}
