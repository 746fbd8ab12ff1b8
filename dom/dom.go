// Package dom models a dashboard DOM snapshot as a mutable element tree.
//
// The tree is deliberately much simpler than a browser DOM: elements carry a
// tag name, attributes, an inline-style subset and the live widget state that
// a structural serialization would lose (canvas pixel buffers, textarea
// values, select indices). Trees are built either programmatically by the
// host application or by parsing a serialized snapshot with [Parse].
//
// Geometry is computed by [Reflow], which stacks block elements vertically
// the way a dashboard grid lays out its rows. Bounding rects are recomputed
// from scratch on every call, so structural mutations (such as inserting
// pagination spacers) shift the measured position of everything below them —
// exactly the reflow behavior the pagination algorithm depends on.
package dom

import (
	"fmt"
	"image"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Rect is an element's bounding box, in CSS pixels, relative to the root
// passed to the most recent [Reflow].
type Rect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// Bottom returns the rect's bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Element is one node of the snapshot tree. Text content is held directly on
// the element (dashboard snapshots are structural; mixed inline content is
// not modeled).
type Element struct {
	// Tag is the lower-case tag name ("div", "canvas", "textarea", ...).
	Tag string

	// Text is the element's direct text content.
	Text string

	attrs    map[string]string
	style    map[string]string
	parent   *Element
	children []*Element

	// Live widget state, not representable as plain markup.
	canvas   image.Image
	value    string // textarea current value
	selected int    // select current option index

	rect Rect
}

// NewElement returns a detached element with the given tag.
func NewElement(tag string) *Element {
	return &Element{Tag: strings.ToLower(tag)}
}

// Parent returns the element's parent, or nil for a detached root.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the element's children in document order. The returned
// slice is the element's own; callers must not mutate it directly.
func (e *Element) Children() []*Element { return e.children }

// AppendChild detaches c from its current parent and appends it to e.
func (e *Element) AppendChild(c *Element) {
	c.Remove()
	c.parent = e
	e.children = append(e.children, c)
}

// InsertBefore detaches c from its current parent and inserts it into e's
// children immediately before ref. If ref is not a child of e, c is appended.
func (e *Element) InsertBefore(c, ref *Element) {
	c.Remove()
	c.parent = e
	for i, ch := range e.children {
		if ch == ref {
			e.children = append(e.children[:i], append([]*Element{c}, e.children[i:]...)...)
			return
		}
	}
	e.children = append(e.children, c)
}

// Remove detaches e from its parent. Removing a detached element is a no-op.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	for i, ch := range p.children {
		if ch == e {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(name string) string {
	return e.attrs[strings.ToLower(name)]
}

// SetAttr sets an attribute. The class and style attributes are parsed into
// their structured forms as they are in a browser.
func (e *Element) SetAttr(name, value string) {
	name = strings.ToLower(name)
	if name == "style" {
		e.style = parseInlineStyle(value)
		return
	}
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
}

// Classes returns the element's class list.
func (e *Element) Classes() []string {
	return strings.Fields(e.attrs["class"])
}

// HasClass reports whether the element's class list contains name.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the element's class list if not already present.
func (e *Element) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	cur := e.attrs["class"]
	if cur == "" {
		e.SetAttr("class", name)
		return
	}
	e.SetAttr("class", cur+" "+name)
}

// Style returns the value of an inline-style property, or "".
func (e *Element) Style(prop string) string {
	return e.style[strings.ToLower(prop)]
}

// SetStyle sets one inline-style property.
func (e *Element) SetStyle(prop, value string) {
	if e.style == nil {
		e.style = make(map[string]string)
	}
	e.style[strings.ToLower(prop)] = value
}

// RemoveStyle deletes one inline-style property.
func (e *Element) RemoveStyle(prop string) {
	delete(e.style, strings.ToLower(prop))
}

// HeightPx returns the element's explicit pixel height, or 0 when the height
// is auto.
func (e *Element) HeightPx() float64 { return stylePx(e.style["height"]) }

// SetHeightPx sets an explicit pixel height.
func (e *Element) SetHeightPx(h float64) {
	e.SetStyle("height", fmt.Sprintf("%gpx", h))
}

// WidthPx returns the element's explicit pixel width, or 0 for auto.
func (e *Element) WidthPx() float64 { return stylePx(e.style["width"]) }

// CanvasImage returns the element's current canvas pixel buffer, or nil.
// Only meaningful for canvas elements.
func (e *Element) CanvasImage() image.Image { return e.canvas }

// SetCanvasImage attaches a pixel buffer to a canvas element, the way a chart
// library paints into a live canvas.
func (e *Element) SetCanvasImage(img image.Image) { e.canvas = img }

// Value returns a textarea's current text value (which, as in a browser, is
// distinct from its markup text content).
func (e *Element) Value() string { return e.value }

// SetValue sets a textarea's current text value.
func (e *Element) SetValue(v string) { e.value = v }

// SelectedIndex returns a select control's current option index.
func (e *Element) SelectedIndex() int { return e.selected }

// SetSelectedIndex sets a select control's current option index.
func (e *Element) SetSelectedIndex(i int) { e.selected = i }

// Bounds returns the rect computed by the most recent [Reflow]. The rect is
// not cached across mutations; callers that mutate the tree must reflow
// before measuring again.
func (e *Element) Bounds() Rect { return e.rect }

// Walk visits e and every descendant in document order. Returning false from
// fn prunes the subtree below the current element.
func (e *Element) Walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.children {
		c.Walk(fn)
	}
}

// FindByClass returns all descendants (including e itself) carrying the
// given class, in document order.
func (e *Element) FindByClass(name string) []*Element {
	var out []*Element
	e.Walk(func(el *Element) bool {
		if el.HasClass(name) {
			out = append(out, el)
		}
		return true
	})
	return out
}

// FindByTag returns all descendants (including e itself) with the given tag.
func (e *Element) FindByTag(tag string) []*Element {
	tag = strings.ToLower(tag)
	var out []*Element
	e.Walk(func(el *Element) bool {
		if el.Tag == tag {
			out = append(out, el)
		}
		return true
	})
	return out
}

// ByID returns the first descendant (including e) with the given id, or nil.
func (e *Element) ByID(id string) *Element {
	var found *Element
	e.Walk(func(el *Element) bool {
		if found != nil {
			return false
		}
		if el.Attr("id") == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// styleAttr serializes the inline-style map back to an attribute value with
// deterministic property order.
func (e *Element) styleAttr() string {
	if len(e.style) == 0 {
		return ""
	}
	props := make([]string, 0, len(e.style))
	for p := range e.style {
		props = append(props, p)
	}
	sort.Strings(props)
	var b strings.Builder
	for _, p := range props {
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(p)
		b.WriteString(": ")
		b.WriteString(e.style[p])
	}
	return b.String()
}

// Document is a parsed snapshot: a root html element with head and body.
type Document struct {
	Root *Element
}

// NewDocument returns an empty document with html > body scaffolding.
func NewDocument() *Document {
	root := NewElement("html")
	root.AppendChild(NewElement("head"))
	root.AppendChild(NewElement("body"))
	return &Document{Root: root}
}

// Body returns the document's body element, or nil for a malformed tree.
func (d *Document) Body() *Element {
	for _, c := range d.Root.children {
		if c.Tag == "body" {
			return c
		}
	}
	return nil
}

// Parse reads a serialized dashboard snapshot. Canvas elements carrying a
// data-content attribute with an image data URI get their pixel buffers
// decoded; see [Element.CanvasImage].
func Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parsing snapshot: %w", err)
	}
	root := convert(node)
	if root == nil {
		return nil, fmt.Errorf("dom: snapshot has no document element")
	}
	return &Document{Root: root}, nil
}

// ParseString parses a snapshot held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// convert maps an x/net/html node onto our element model. Text nodes are
// folded into their parent's Text field; comments and doctypes are dropped.
func convert(n *html.Node) *Element {
	if n.Type == html.DocumentNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				return convert(c)
			}
		}
		return nil
	}
	if n.Type != html.ElementNode {
		return nil
	}

	e := NewElement(n.Data)
	for _, a := range n.Attr {
		e.SetAttr(a.Key, a.Val)
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			text.WriteString(c.Data)
		case html.ElementNode:
			if child := convert(c); child != nil {
				e.AppendChild(child)
			}
		}
	}
	e.Text = strings.TrimSpace(text.String())

	if e.Tag == "canvas" {
		if uri := e.Attr("data-content"); uri != "" {
			if img, err := decodeDataURI(uri); err == nil {
				e.canvas = img
			}
		}
	}
	return e
}

// Render serializes the subtree rooted at e back to HTML. Canvas pixel
// buffers are emitted as data-content data URIs so a round trip preserves
// them.
func (e *Element) Render(w io.Writer) error {
	node, err := e.toHTML(false, nil)
	if err != nil {
		return err
	}
	if err := html.Render(w, node); err != nil {
		return fmt.Errorf("dom: rendering: %w", err)
	}
	return nil
}

// RenderString is Render into a string.
func (e *Element) RenderString() (string, error) {
	var b strings.Builder
	if err := e.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// toHTML builds an x/net/html node tree for serialization. In raster mode
// canvas elements become img tags with their pixel buffer inlined as a PNG
// data URI (an external renderer cannot repaint a canvas), and elements
// rejected by skip are dropped.
func (e *Element) toHTML(rasterMode bool, skip func(*Element) bool) (*html.Node, error) {
	tag := e.Tag
	if rasterMode && tag == "canvas" && e.canvas != nil {
		uri, err := encodeDataURI(e.canvas)
		if err != nil {
			return nil, err
		}
		img := &html.Node{Type: html.ElementNode, Data: "img"}
		img.Attr = append(img.Attr, html.Attribute{Key: "src", Val: uri})
		for k, v := range e.attrs {
			if k != "data-content" {
				img.Attr = append(img.Attr, html.Attribute{Key: k, Val: v})
			}
		}
		if s := e.styleAttr(); s != "" {
			img.Attr = append(img.Attr, html.Attribute{Key: "style", Val: s})
		}
		return img, nil
	}

	node := &html.Node{Type: html.ElementNode, Data: tag}
	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == "data-content" && tag == "canvas" && e.canvas != nil {
			continue // re-encoded below from the live buffer
		}
		node.Attr = append(node.Attr, html.Attribute{Key: k, Val: e.attrs[k]})
	}
	if s := e.styleAttr(); s != "" {
		node.Attr = append(node.Attr, html.Attribute{Key: "style", Val: s})
	}
	if !rasterMode && tag == "canvas" && e.canvas != nil {
		uri, err := encodeDataURI(e.canvas)
		if err != nil {
			return nil, err
		}
		node.Attr = append(node.Attr, html.Attribute{Key: "data-content", Val: uri})
	}

	text := e.Text
	if tag == "textarea" && e.value != "" {
		text = e.value
	}
	if text != "" {
		node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	for _, c := range e.children {
		if skip != nil && skip(c) {
			continue
		}
		child, err := c.toHTML(rasterMode, skip)
		if err != nil {
			return nil, err
		}
		node.AppendChild(child)
	}
	return node, nil
}

// RenderForRaster serializes the subtree as a standalone HTML page suitable
// for rasterization by a browser: canvases are replaced by inline images and
// elements rejected by skip (nil means keep everything) are omitted.
func (e *Element) RenderForRaster(w io.Writer, skip func(*Element) bool) error {
	node, err := e.toHTML(true, skip)
	if err != nil {
		return err
	}
	page := &html.Node{Type: html.ElementNode, Data: "html"}
	body := &html.Node{Type: html.ElementNode, Data: "body"}
	body.Attr = append(body.Attr, html.Attribute{Key: "style", Val: "margin: 0"})
	page.AppendChild(&html.Node{Type: html.ElementNode, Data: "head"})
	page.AppendChild(body)
	body.AppendChild(node)
	if err := html.Render(w, page); err != nil {
		return fmt.Errorf("dom: rendering raster page: %w", err)
	}
	return nil
}
