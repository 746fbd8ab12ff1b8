package dashpdf

import "errors"

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Exporter].
	ErrClosed = errors.New("dashpdf: exporter is closed")

	// ErrBusy is returned when an export is started while another export on
	// the same Exporter is still in flight. Exports are never queued.
	ErrBusy = errors.New("dashpdf: export already in progress")

	// ErrNoContent is returned when every candidate page rasterized blank,
	// so there is nothing to put in the document. It is distinct from a
	// rendering failure: the pipeline ran to completion and found no ink.
	ErrNoContent = errors.New("dashpdf: no content to export")
)
