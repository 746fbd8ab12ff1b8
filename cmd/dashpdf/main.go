// dashpdf exports dashboard DOM snapshots to paginated PDF files.
//
// Usage:
//
//	dashpdf export [options] <snapshot.html>
//	dashpdf inspect <file.pdf>
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"

	dashpdf "github.com/porticus-lab/go-dash-pdf"
	"github.com/porticus-lab/go-dash-pdf/internal/pdfinfo"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		if err := runExport(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "inspect":
		if err := runInspect(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`dashpdf - dashboard snapshot to PDF exporter

Usage:
  dashpdf export [options] <snapshot.html>
  dashpdf inspect <file.pdf>

Commands:
  export    Export a serialized dashboard snapshot to PDF
  inspect   Display page count and paper size of a PDF

Export options:
  -o <file>       Output path (default: out.pdf)
  -margin <pt>    Page margin in points (default: 10)
  -format <fmt>   Page image format: jpeg, png (default: jpeg)
  -quality <q>    JPEG quality 0..1 (default: 1)
  -scale <s>      Rasterization scale factor (default: 1)
  -chrome         Rasterize via headless Chrome instead of the built-in painter
  -no-sandbox     Disable the Chrome sandbox (Docker, root)
  -v              Verbose logging

Examples:
  dashpdf export dashboard.html
  dashpdf export -o weekly.pdf -margin 20 -scale 2 dashboard.html
  dashpdf export -chrome -no-sandbox dashboard.html
  dashpdf inspect weekly.pdf
`)
}

// runExport implements the "export" command.
func runExport(args []string) error {
	var (
		output    = "out.pdf"
		format    = dashpdf.FormatJPEG
		margin    = float64(dashpdf.DefaultMarginPt)
		quality   = 1.0
		scale     = 1.0
		useChrome bool
		noSandbox bool
		verbose   bool
		input     string
	)

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o":
			i++
			if i >= len(args) {
				return fmt.Errorf("-o requires an argument")
			}
			output = args[i]
		case "-margin":
			i++
			if i >= len(args) {
				return fmt.Errorf("-margin requires an argument")
			}
			v, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return fmt.Errorf("invalid margin %q", args[i])
			}
			margin = v
		case "-format":
			i++
			if i >= len(args) {
				return fmt.Errorf("-format requires an argument")
			}
			format = args[i]
		case "-quality":
			i++
			if i >= len(args) {
				return fmt.Errorf("-quality requires an argument")
			}
			v, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return fmt.Errorf("invalid quality %q", args[i])
			}
			quality = v
		case "-scale":
			i++
			if i >= len(args) {
				return fmt.Errorf("-scale requires an argument")
			}
			v, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				return fmt.Errorf("invalid scale %q", args[i])
			}
			scale = v
		case "-chrome":
			useChrome = true
		case "-no-sandbox":
			noSandbox = true
		case "-v":
			verbose = true
		default:
			if len(args[i]) > 0 && args[i][0] == '-' {
				return fmt.Errorf("unknown option: %s", args[i])
			}
			input = args[i]
		}
	}
	if input == "" {
		return fmt.Errorf("no snapshot file specified")
	}

	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	opts := []dashpdf.Option{
		dashpdf.WithMargin(margin),
		dashpdf.WithImageFormat(format),
		dashpdf.WithImageQuality(quality),
		dashpdf.WithRasterScale(scale),
		dashpdf.WithLogger(logger),
	}

	var exporter *dashpdf.Exporter
	if useChrome {
		copts := []dashpdf.ChromeOption{dashpdf.WithAutoDownload()}
		if noSandbox {
			copts = append(copts, dashpdf.WithNoSandbox())
		}
		cr, err := dashpdf.NewChromeRasterizer(copts...)
		if err != nil {
			return err
		}
		exporter = dashpdf.NewExporterWith(cr, opts...)
	} else {
		exporter = dashpdf.NewExporter(opts...)
	}
	defer exporter.Close()

	res, err := exporter.ExportFile(context.Background(), input)
	if err != nil {
		return err
	}
	if err := res.WriteToFile(output, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s: %d pages, %d bytes\n", output, res.Pages(), res.Len())
	return nil
}

// runInspect implements the "inspect" command.
func runInspect(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("inspect takes exactly one PDF file")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	count, err := pdfinfo.PageCount(data)
	if err != nil {
		return err
	}
	w, h, err := pdfinfo.MediaBox(data)
	if err != nil {
		return err
	}
	fmt.Printf("pages: %d\nsize:  %.2f x %.2f pt\n", count, w, h)
	return nil
}
