// Package dashpdf exports a live dashboard DOM snapshot to a paginated PDF
// without server-side rendering or a print-capable browser API.
//
// The pipeline clones the dashboard's content subtree into an off-screen
// staging container (transplanting canvas pixel buffers, textarea values and
// select state that a structural clone would drop), injects invisible spacer
// elements so no layout unit straddles a physical page boundary, rasterizes
// the annotated clone to one tall bitmap, slices it into page-sized strips,
// drops blank pages, and assembles the rest into a PDF.
//
// # Exporting
//
// For one-off exports use the package-level helpers:
//
//	res, err := dashpdf.ExportHTML(ctx, snapshotHTML)
//
// For repeated exports create an [Exporter]:
//
//	e := dashpdf.NewExporter(
//	    dashpdf.WithPageFormat(dashpdf.A4),
//	    dashpdf.WithMargin(10),
//	)
//	defer e.Close()
//
//	res, err := e.Export(ctx, doc, doc.Body().FindByClass("grid-content")[0])
//	res, err  = e.ExportHTML(ctx, snapshotHTML)
//	res, err  = e.ExportFile(ctx, "dashboard.html")
//
// A [Result] gives flexible access to the generated PDF bytes:
//
//	res.Bytes()                       // []byte
//	res.Pages()                       // accepted page count
//	res.Base64()                      // base64 string (RFC 4648)
//	res.WriteToFile("out.pdf", 0o644) // write to disk
//
// # Rasterizers
//
// Rasterization is pluggable. The default [SoftwareRasterizer] paints the
// dom package's block layout directly (backgrounds and canvas buffers) and
// needs no external processes, which makes it suitable for servers and
// tests. [ChromeRasterizer] captures a headless-browser screenshot of the
// serialized clone for full CSS fidelity:
//
//	cr, err := dashpdf.NewChromeRasterizer(dashpdf.WithNoSandbox())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cr.Close()
//
//	e := dashpdf.NewExporterWith(cr)
//	defer e.Close()
//
// # Pagination
//
// Page breaks are computed against layout units — row and section level
// dashboard components identified by class ([WithUnitClasses]). A unit is
// never split across pages unless it is taller than a page by itself.
// Blank pages are dropped; if every page is blank the export fails with
// [ErrNoContent].
package dashpdf
