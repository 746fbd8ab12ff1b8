package dashpdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/porticus-lab/go-dash-pdf/dom"
)

// ChromeRasterizer rasterizes staged content by loading it into a headless
// browser and capturing a full-page screenshot. It is the full-fidelity
// path: real CSS layout, fonts and filters; canvas pixel buffers travel as
// inlined images.
//
// The browser instance is reused across rasterizations. Call
// [ChromeRasterizer.Close] to release it.
type ChromeRasterizer struct {
	cfg           chromeConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// chromeConfig holds internal configuration for a ChromeRasterizer.
type chromeConfig struct {
	chromePath   string
	noSandbox    bool
	autoDownload bool
	headless     string
}

// ChromeOption configures a [ChromeRasterizer].
type ChromeOption func(*chromeConfig)

// WithChromePath sets the path to the Chrome or Chromium executable.
// By default the library searches standard locations automatically.
func WithChromePath(path string) ChromeOption {
	return func(c *chromeConfig) {
		c.chromePath = path
	}
}

// WithNoSandbox disables the Chrome sandbox. This is required when
// running as root, for example inside Docker containers.
func WithNoSandbox() ChromeOption {
	return func(c *chromeConfig) {
		c.noSandbox = true
	}
}

// WithAutoDownload downloads a compatible Chromium binary when no local
// browser is found. The binary is cached in the user cache directory.
func WithAutoDownload() ChromeOption {
	return func(c *chromeConfig) {
		c.autoDownload = true
	}
}

// NewChromeRasterizer starts a headless browser for screenshot capture.
// The caller must call [ChromeRasterizer.Close] when finished.
func NewChromeRasterizer(opts ...ChromeOption) (*ChromeRasterizer, error) {
	cfg := chromeConfig{headless: "new"}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("headless", cfg.headless),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("dashpdf: starting browser: %w", err)
	}

	return &ChromeRasterizer{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases the browser process. Close is idempotent.
func (r *ChromeRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.browserCancel()
	r.allocCancel()
	return nil
}

// Rasterize implements [Rasterizer]: it serializes the staged subtree to a
// standalone page (canvases inlined as images, filtered nodes dropped),
// loads it in a browser tab sized to the requested pixel width, and decodes
// the full-page screenshot.
func (r *ChromeRasterizer) Rasterize(ctx context.Context, root *dom.Element, opts RasterOptions) (image.Image, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	f, err := os.CreateTemp("", "dashpdf-*.html")
	if err != nil {
		return nil, fmt.Errorf("dashpdf: creating temp file: %w", err)
	}
	name := f.Name()
	defer os.Remove(name)

	if err := root.RenderForRaster(f, opts.excluded); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("dashpdf: closing temp file: %w", err)
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("dashpdf: resolving path: %w", err)
	}

	width := int64(opts.PixelWidth)
	height := int64(opts.PixelHeight)
	if width <= 0 {
		width = int64(math.Ceil(root.Bounds().Width))
	}
	if height <= 0 {
		height = int64(math.Ceil(root.Bounds().Height))
	}
	quality := int(opts.Quality * 100)
	if quality <= 0 || quality > 100 {
		quality = 100
	}

	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx)
	defer tabCancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithDeadline(tabCtx, deadline)
		defer cancel()
	}

	var buf []byte
	if err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(width, height, chromedp.EmulateScale(opts.scale())),
		chromedp.Navigate("file://"+abs),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params := page.CaptureScreenshot().WithCaptureBeyondViewport(true)
			if quality < 100 {
				params = params.WithFormat(page.CaptureScreenshotFormatJpeg).WithQuality(int64(quality))
			} else {
				params = params.WithFormat(page.CaptureScreenshotFormatPng)
			}
			var err error
			buf, err = params.Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("dashpdf: screenshot capture failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("dashpdf: decoding screenshot: %w", err)
	}
	return img, nil
}

// resolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable.
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("dashpdf: downloading browser: %w", err)
	}
	return path, nil
}
