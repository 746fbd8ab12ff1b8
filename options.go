package dashpdf

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Default layout-unit selectors: the class names of the dashboard grid's
// row/section-level components. Pagination operates on these so no chart,
// header, divider, markdown block or tab panel is cut in half.
var defaultUnitClasses = []string{
	"grid-row",
	"dashboard-header",
	"dashboard-divider",
	"dashboard-markdown",
	"dashboard-tabs",
}

// Default tags excluded from rasterization. Interactive chrome has no place
// on paper.
var defaultExcludeTags = []string{"script", "style", "button", "input", "select"}

// exporterConfig holds internal configuration for an Exporter.
type exporterConfig struct {
	format         PageFormat
	imageFormat    string  // "jpeg" or "png"
	imageQuality   float64 // 0..1, jpeg only
	rasterScale    float64
	topPaddingPx   float64
	minUnitHeight  float64
	minCutPx       float64
	slackPx        float64
	fallbackWidth  float64
	unitClasses    []string
	excludeClasses []string
	excludeTags    []string
	timeout        time.Duration
	logger         *log.Logger
	newWriter      func(PageFormat) DocumentWriter
}

func defaultConfig() exporterConfig {
	return exporterConfig{
		format:        A4,
		imageFormat:   FormatJPEG,
		imageQuality:  1,
		rasterScale:   1,
		topPaddingPx:  32,
		minUnitHeight: 4,
		minCutPx:      4,
		fallbackWidth: 1200,
		unitClasses:   defaultUnitClasses,
		excludeTags:   defaultExcludeTags,
		timeout:       30 * time.Second,
		logger:        log.New(io.Discard),
		newWriter:     NewPDFWriter,
	}
}

// Image formats accepted by [WithImageFormat].
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// Option configures an [Exporter].
type Option func(*exporterConfig)

// WithPageFormat sets the physical page format. Defaults to A4 with the
// default margin.
func WithPageFormat(f PageFormat) Option {
	return func(c *exporterConfig) {
		c.format = f
	}
}

// WithMargin sets the page margin in points. Defaults to [DefaultMarginPt].
func WithMargin(pt float64) Option {
	return func(c *exporterConfig) {
		c.format.Margin = pt
	}
}

// WithImageFormat selects the page image encoding, [FormatJPEG] (default)
// or [FormatPNG].
func WithImageFormat(format string) Option {
	return func(c *exporterConfig) {
		if format == FormatJPEG || format == FormatPNG {
			c.imageFormat = format
		}
	}
}

// WithImageQuality sets the JPEG quality between 0 and 1. Defaults to 1.
func WithImageQuality(q float64) Option {
	return func(c *exporterConfig) {
		if q > 0 && q <= 1 {
			c.imageQuality = q
		}
	}
}

// WithRasterScale sets the rasterization scale factor. Values above 1
// produce sharper page images at the cost of memory. Defaults to 1.
func WithRasterScale(scale float64) Option {
	return func(c *exporterConfig) {
		if scale > 0 {
			c.rasterScale = scale
		}
	}
}

// WithTopPadding sets the pixel padding inserted at the start of every page
// created by a break. Defaults to 32.
func WithTopPadding(px float64) Option {
	return func(c *exporterConfig) {
		if px >= 0 {
			c.topPaddingPx = px
		}
	}
}

// WithBreakSlack sets a safety buffer in pixels: a unit whose remaining room
// before the page boundary is smaller than its height plus the slack is
// pushed even if it does not strictly straddle the boundary yet. Guards
// against rounding-induced slivers. Defaults to 0 (strict straddle test).
func WithBreakSlack(px float64) Option {
	return func(c *exporterConfig) {
		if px >= 0 {
			c.slackPx = px
		}
	}
}

// WithUnitClasses replaces the class names used to identify layout units
// (the atomic blocks pagination will not split). Defaults to the dashboard
// grid component classes.
func WithUnitClasses(classes ...string) Option {
	return func(c *exporterConfig) {
		c.unitClasses = classes
	}
}

// WithExcludeClasses adds class names whose elements are omitted from the
// rasterized output.
func WithExcludeClasses(classes ...string) Option {
	return func(c *exporterConfig) {
		c.excludeClasses = append(c.excludeClasses, classes...)
	}
}

// WithExcludeTags replaces the tag names omitted from the rasterized output.
// Defaults to script, style, button, input and select.
func WithExcludeTags(tags ...string) Option {
	return func(c *exporterConfig) {
		c.excludeTags = tags
	}
}

// WithFallbackWidth sets the container width in pixels assumed when the
// staged content has no measurable width of its own. Defaults to 1200.
func WithFallbackWidth(px float64) Option {
	return func(c *exporterConfig) {
		if px > 0 {
			c.fallbackWidth = px
		}
	}
}

// WithTimeout bounds a single export, rasterization included. Defaults to
// 30 seconds. A zero or negative value disables the timeout; cleanup of the
// staging container still runs if the export is abandoned.
func WithTimeout(d time.Duration) Option {
	return func(c *exporterConfig) {
		c.timeout = d
	}
}

// WithLogger directs the exporter's structured log output. Clone-fidelity
// degradations are logged at Warn, pipeline state transitions at Debug.
// By default all output is discarded.
func WithLogger(l *log.Logger) Option {
	return func(c *exporterConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDocumentWriter replaces the PDF document writer used to assemble page
// images. The default writes PDFs via fpdf; tests substitute failing or
// recording writers.
func WithDocumentWriter(factory func(PageFormat) DocumentWriter) Option {
	return func(c *exporterConfig) {
		if factory != nil {
			c.newWriter = factory
		}
	}
}
