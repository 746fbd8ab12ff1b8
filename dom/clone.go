package dom

import (
	"fmt"
	"image"
	"image/draw"
	"io"

	"github.com/charmbracelet/log"
)

// CloneForExport deep-copies the subtree rooted at src into a detached tree
// suitable for offline rasterization. Beyond the structural copy it
// transplants the widget state a naive clone would drop:
//
//   - canvas elements are repainted by drawing the original's current pixel
//     buffer onto a fresh buffer;
//   - textarea elements get their live value injected as rendered content;
//   - select controls keep their selected option index.
//
// Script elements are never copied; the clone must not carry executable
// content. Per-element fidelity failures (for example a canvas with no
// drawable surface) are logged on logger and skipped, never propagated:
// partial fidelity is acceptable, losing the whole clone is not. A nil
// logger discards.
func CloneForExport(src *Element, logger *log.Logger) *Element {
	if logger == nil {
		logger = discardLogger
	}
	return cloneElement(src, logger)
}

var discardLogger = log.New(io.Discard)

func cloneElement(src *Element, logger *log.Logger) *Element {
	dst := NewElement(src.Tag)
	dst.Text = src.Text
	for k, v := range src.attrs {
		if dst.attrs == nil {
			dst.attrs = make(map[string]string, len(src.attrs))
		}
		dst.attrs[k] = v
	}
	for p, v := range src.style {
		dst.SetStyle(p, v)
	}

	switch src.Tag {
	case "canvas":
		if err := repaintCanvas(dst, src); err != nil {
			logger.Warn("canvas repaint failed, content dropped", "err", err)
		}
	case "textarea":
		// The live value, not the initial markup text, is what the user
		// sees on screen.
		dst.Text = src.value
		dst.value = src.value
	case "select":
		dst.selected = src.selected
	}

	for _, c := range src.children {
		if c.Tag == "script" {
			continue
		}
		dst.AppendChild(cloneElement(c, logger))
	}
	if src.Tag == "select" {
		syncSelectedOption(dst, src.selected)
	}
	return dst
}

// repaintCanvas copies src's pixel buffer onto a fresh buffer owned by dst.
// A canvas with no buffer or an empty surface has nothing to repaint.
func repaintCanvas(dst, src *Element) error {
	if src.canvas == nil {
		return nil
	}
	b := src.canvas.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("dom: canvas has empty drawable surface")
	}
	buf := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(buf, buf.Bounds(), src.canvas, b.Min, draw.Src)
	dst.canvas = buf
	return nil
}

// syncSelectedOption mirrors the selected index onto the cloned option
// elements so serialization shows the same choice the user made.
func syncSelectedOption(sel *Element, index int) {
	options := sel.FindByTag("option")
	for i, opt := range options {
		if i == index {
			opt.SetAttr("selected", "selected")
		} else {
			delete(opt.attrs, "selected")
		}
	}
}
