package dashpdf

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"math"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/porticus-lab/go-dash-pdf/dom"
)

// StagingClass marks the off-screen staging container an export attaches to
// the document body. It exists only for the lifetime of one export.
const StagingClass = "dashpdf-staging"

// Classes recognized as the dashboard's main content container by
// [Exporter.ExportHTML].
var contentClasses = []string{"grid-content", "dashboard-grid", "dashboard-content"}

// exportState tracks the pipeline position of one export, mostly for
// debug logging and failure reports.
type exportState int

const (
	stateIdle exportState = iota
	stateStagingCreated
	stateCloned
	stateStyled
	stateBreaksInserted
	stateRasterizing
	stateSplitting
	stateAssembling
	stateSaved
	stateFailed
)

var stateNames = map[exportState]string{
	stateIdle:           "idle",
	stateStagingCreated: "staging-created",
	stateCloned:         "cloned",
	stateStyled:         "styled",
	stateBreaksInserted: "breaks-inserted",
	stateRasterizing:    "rasterizing",
	stateSplitting:      "splitting",
	stateAssembling:     "assembling",
	stateSaved:          "saved",
	stateFailed:         "failed",
}

func (s exportState) String() string { return stateNames[s] }

// Exporter turns a live dashboard DOM into a paginated PDF.
//
// An Exporter owns no DOM of its own: each export clones the caller's
// target subtree into a transient staging container, annotates the clone
// with page-break spacers, rasterizes it, slices the raster into pages and
// assembles the non-blank ones into a PDF. The caller's tree is never
// mutated beyond attaching and removing the staging container.
//
// One Exporter runs one export at a time; a second call while the first is
// in flight fails with [ErrBusy]. Call [Exporter.Close] when finished if
// the configured rasterizer holds resources (the Chrome rasterizer does).
type Exporter struct {
	cfg    exporterConfig
	raster Rasterizer

	mu     sync.Mutex
	busy   bool
	closed bool
}

// NewExporter creates an Exporter with the given options, using the
// hermetic [SoftwareRasterizer]. Pair with [NewChromeRasterizer] via
// [NewExporterWith] for browser-fidelity output.
func NewExporter(opts ...Option) *Exporter {
	return NewExporterWith(SoftwareRasterizer{}, opts...)
}

// NewExporterWith creates an Exporter backed by the given rasterizer.
func NewExporterWith(r Rasterizer, opts ...Option) *Exporter {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Exporter{cfg: cfg, raster: r}
}

// Close releases the exporter and, when the rasterizer is closeable, its
// resources. Close is idempotent.
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if c, ok := e.raster.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// acquire reserves the exporter for one export.
func (e *Exporter) acquire() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.busy {
		return ErrBusy
	}
	e.busy = true
	return nil
}

func (e *Exporter) release() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

// Export runs the full pipeline against target, an element inside doc, and
// returns the assembled PDF.
//
// Failure semantics follow the pipeline stage: per-element cloning glitches
// degrade output and are only logged; a rasterizer error, a document-write
// error, or an all-blank raster ([ErrNoContent]) fail the export. The
// staging container is removed from doc on every exit path.
func (e *Exporter) Export(ctx context.Context, doc *dom.Document, target *dom.Element) (*Result, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	if doc == nil || doc.Body() == nil || target == nil {
		return nil, fmt.Errorf("dashpdf: export needs a document with a body and a target element")
	}
	if e.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.timeout)
		defer cancel()
	}

	log := e.cfg.logger
	st := stateIdle
	step := func(next exportState) {
		st = next
		log.Debug("export state", "state", st)
	}
	fail := func(err error) (*Result, error) {
		step(stateFailed)
		return nil, err
	}

	// Staging container: off-screen, inert, attached to the body because
	// rasterizing a fully detached subtree is unreliable. Removal is
	// unconditional — the one resource this pipeline acquires.
	staging := dom.NewElement("div")
	staging.AddClass(StagingClass)
	staging.SetAttr("id", StagingClass+"-"+uuid.NewString())
	staging.SetAttr("aria-hidden", "true")
	staging.SetStyle("position", "absolute")
	staging.SetStyle("left", "-10000px")
	staging.SetStyle("opacity", "0")
	staging.SetStyle("pointer-events", "none")
	doc.Body().AppendChild(staging)
	defer func() {
		staging.Remove()
		log.Debug("staging container removed")
	}()
	step(stateStagingCreated)

	clone := dom.CloneForExport(target, log)
	staging.AppendChild(clone)
	step(stateCloned)

	styleForExpansion(clone, e.cfg.unitClasses)
	step(stateStyled)

	// Page height derives from the staged clone's actual rendered width —
	// styling may have changed it from the live element's.
	width := clone.WidthPx()
	if width <= 0 {
		width = e.cfg.fallbackWidth
	}
	staging.SetStyle("width", fmt.Sprintf("%gpx", width))
	dom.Reflow(staging, width)

	format := e.cfg.format.resolved()
	pageHeightPx := format.PageHeightPx(width)
	breaks := insertPageBreaks(clone, breakConfig{
		pageHeight:     pageHeightPx,
		topPadding:     e.cfg.topPaddingPx,
		containerWidth: width,
		minUnitHeight:  e.cfg.minUnitHeight,
		minCut:         e.cfg.minCutPx,
		slack:          e.cfg.slackPx,
		unitClasses:    e.cfg.unitClasses,
	}, log)
	step(stateBreaksInserted)
	log.Debug("pagination computed", "pageHeightPx", pageHeightPx, "breaks", breaks)

	dom.Reflow(staging, width)
	totalHeight := int(math.Ceil(clone.Bounds().Height))

	step(stateRasterizing)
	raster, err := e.raster.Rasterize(ctx, clone, RasterOptions{
		BackgroundColor: color.White,
		ExcludeClasses:  e.cfg.excludeClasses,
		ExcludeTags:     e.cfg.excludeTags,
		Scale:           e.cfg.rasterScale,
		Quality:         e.cfg.imageQuality,
		PixelWidth:      int(width),
		PixelHeight:     totalHeight,
	})
	if err != nil {
		return fail(fmt.Errorf("dashpdf: rasterization failed: %w", err))
	}

	step(stateSplitting)
	scaledPageHeight := int(math.Round(pageHeightPx * e.cfg.rasterScale))
	pages := splitPages(raster, scaledPageHeight, color.White)

	step(stateAssembling)
	writer := e.cfg.newWriter(format)
	accepted := 0
	for _, p := range pages {
		if isBlank(p.Image) {
			log.Debug("blank page dropped", "slice", p.Index)
			continue
		}
		writer.AddPage()
		b := p.Image.Bounds()
		pl := placeOnPage(format, b.Dx(), b.Dy())
		if err := writer.AddImage(p.Image, e.cfg.imageFormat, e.cfg.imageQuality, pl.X, pl.Y, pl.W, pl.H); err != nil {
			return fail(err)
		}
		accepted++
	}
	if accepted == 0 {
		return fail(ErrNoContent)
	}

	var buf bytes.Buffer
	if err := writer.Output(&buf); err != nil {
		return fail(err)
	}
	step(stateSaved)
	log.Debug("export complete", "pages", accepted, "bytes", buf.Len())
	return &Result{data: buf.Bytes(), pages: accepted}, nil
}

// ExportHTML parses a serialized dashboard snapshot, locates its grid
// content element and exports it.
func (e *Exporter) ExportHTML(ctx context.Context, snapshot string) (*Result, error) {
	doc, err := dom.ParseString(snapshot)
	if err != nil {
		return nil, err
	}
	target := findExportRoot(doc)
	if target == nil {
		return nil, fmt.Errorf("dashpdf: snapshot has no exportable content")
	}
	return e.Export(ctx, doc, target)
}

// ExportFile reads a serialized dashboard snapshot from disk and exports it.
func (e *Exporter) ExportFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dashpdf: reading snapshot: %w", err)
	}
	return e.ExportHTML(ctx, string(data))
}

// findExportRoot picks the dashboard's content container: the first element
// with a known content class, else the body itself.
func findExportRoot(doc *dom.Document) *dom.Element {
	body := doc.Body()
	if body == nil {
		return nil
	}
	for _, cls := range contentClasses {
		if els := body.FindByClass(cls); len(els) > 0 {
			return els[0]
		}
	}
	return body
}

// styleForExpansion prepares the clone for full-height rasterization:
// wrappers above layout units lose their growth constraints so the content
// expands to its natural height, and the clone gets a known background.
func styleForExpansion(clone *dom.Element, unitClasses []string) {
	clone.Walk(func(e *dom.Element) bool {
		if e != clone && isUnit(e, unitClasses) {
			return false
		}
		if hasUnitBelow(e, unitClasses) || e == clone {
			e.RemoveStyle("height")
			e.RemoveStyle("max-height")
			e.SetStyle("overflow", "visible")
		}
		return true
	})
	if _, ok := clone.BackgroundColor(); !ok {
		clone.SetStyle("background-color", "#ffffff")
	}
}

func isUnit(e *dom.Element, unitClasses []string) bool {
	for _, cls := range unitClasses {
		if e.HasClass(cls) {
			return true
		}
	}
	return false
}

func hasUnitBelow(e *dom.Element, unitClasses []string) bool {
	for _, c := range e.Children() {
		found := false
		c.Walk(func(d *dom.Element) bool {
			if isUnit(d, unitClasses) {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// --- Package-level convenience functions ---

// Export runs a one-shot export with a temporary [Exporter].
func Export(ctx context.Context, doc *dom.Document, target *dom.Element, opts ...Option) (*Result, error) {
	e := NewExporter(opts...)
	defer e.Close()
	return e.Export(ctx, doc, target)
}

// ExportHTML runs a one-shot export of a serialized snapshot.
func ExportHTML(ctx context.Context, snapshot string, opts ...Option) (*Result, error) {
	e := NewExporter(opts...)
	defer e.Close()
	return e.ExportHTML(ctx, snapshot)
}
