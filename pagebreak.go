package dashpdf

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/porticus-lab/go-dash-pdf/dom"
)

// Marker classes for pagination spacers. Spacers exist only in the staged
// clone and are recognized (and skipped) by every later pass, which is what
// makes break insertion idempotent.
const (
	SpacerClass     = "dashpdf-spacer"
	spacerFillClass = "dashpdf-spacer-fill"
	spacerPadClass  = "dashpdf-spacer-pad"
)

// breakConfig parameterizes one page-break pass. Derived from the exporter
// config plus the page height computed for the staged container's width.
type breakConfig struct {
	pageHeight     float64 // usable page height in CSS pixels
	topPadding     float64 // padding at the top of each pushed-to page
	containerWidth float64 // reflow width for re-measurement
	minUnitHeight  float64 // units shorter than this are decorative
	minCut         float64 // suppress pushes that rescue less than this
	slack          float64 // extra room demanded before the boundary
	unitClasses    []string
}

// insertPageBreaks walks the layout units inside container and inserts
// invisible spacers so that, after rasterization, no unit straddles a page
// boundary. The container is mutated in place; the number of breaks
// inserted is returned.
//
// The algorithm is a cursor over the unit sequence, not a single measuring
// pass: every iteration reflows the tree and measures the current unit
// fresh, because each inserted spacer shifts everything below it. After a
// push the same unit is reconsidered at its new position; a pushed unit
// lands flush at the top padding of the next page, where (having already
// passed the oversize gate) it fits, so each unit is resolved at most one
// push after it is first reached and the loop terminates.
//
// A unit taller than the usable page height is never pushed: no page could
// hold it, so it is the one case allowed to split across pages.
func insertPageBreaks(container *dom.Element, cfg breakConfig, logger *log.Logger) int {
	if cfg.pageHeight <= 0 {
		return 0
	}

	units := collectLayoutUnits(container, cfg.unitClasses)
	breaks := 0

	for i := 0; i < len(units); {
		u := units[i]
		if u.HasClass(SpacerClass) {
			i++
			continue
		}

		// Fresh geometry: prior insertions have moved this unit, and
		// wrappers may have grown. Never trust a stale rect.
		dom.Reflow(container, cfg.containerWidth)
		cTop := container.Bounds().Top
		rect := u.Bounds()

		if !u.Rendered() || rect.Height < cfg.minUnitHeight {
			i++
			continue
		}

		relTop := rect.Top - cTop
		relBottom := relTop + rect.Height
		pageTop := math.Floor(relTop / cfg.pageHeight)
		pageBottom := math.Floor((relBottom - 1e-6) / cfg.pageHeight)
		remaining := cfg.pageHeight - math.Mod(relTop, cfg.pageHeight)

		straddles := pageBottom > pageTop
		tooTight := cfg.slack > 0 && remaining < rect.Height+cfg.slack
		if !straddles && !tooTight {
			i++
			continue
		}

		if rect.Height > cfg.pageHeight-cfg.topPadding-cfg.slack {
			// Oversized: allowed to split, pushing would only waste a page.
			logger.Debug("unit exceeds page height, left to split",
				"height", rect.Height, "pageHeight", cfg.pageHeight)
			i++
			continue
		}
		if cut := relBottom - (pageTop+1)*cfg.pageHeight; straddles && cut < cfg.minCut {
			// Trivial overflow (shadows, borders): not worth a page.
			i++
			continue
		}

		parent := u.Parent()
		if parent == nil {
			i++
			continue
		}
		parent.InsertBefore(newSpacer(remaining, spacerFillClass), u)
		parent.InsertBefore(newSpacer(cfg.topPadding, spacerPadClass), u)
		breaks++
		logger.Debug("page break inserted",
			"unitTop", relTop, "fill", remaining, "padding", cfg.topPadding)
		// Re-process the same unit at its new position.
	}
	return breaks
}

// collectLayoutUnits returns the elements treated as atomic for pagination.
// Elements matching a unit class are taken whole — their descendants are
// never selected too, since operating on two granularities at once would
// double-space every break. When the container has no recognizable units,
// its direct children serve as the fallback granularity.
func collectLayoutUnits(container *dom.Element, unitClasses []string) []*dom.Element {
	var units []*dom.Element
	for _, c := range container.Children() {
		collectUnits(c, unitClasses, &units)
	}
	if len(units) > 0 {
		return units
	}
	return container.Children()
}

func collectUnits(e *dom.Element, unitClasses []string, out *[]*dom.Element) {
	for _, cls := range unitClasses {
		if e.HasClass(cls) {
			*out = append(*out, e)
			return // atomic: do not descend
		}
	}
	for _, c := range e.Children() {
		collectUnits(c, unitClasses, out)
	}
}

// newSpacer builds an invisible block element of fixed pixel height.
func newSpacer(heightPx float64, kind string) *dom.Element {
	s := dom.NewElement("div")
	s.AddClass(SpacerClass)
	s.AddClass(kind)
	s.SetStyle("height", fmt.Sprintf("%dpx", int(math.Round(heightPx))))
	s.SetStyle("width", "100%")
	return s
}
