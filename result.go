package dashpdf

import (
	"bytes"
	"encoding/base64"
	"io"
	"os"

	"github.com/porticus-lab/go-dash-pdf/internal/pdfinfo"
)

// Result holds a generated PDF and provides helpers for common output
// formats such as raw bytes, base64 encoding, and streaming readers.
//
// A Result is returned by every successful export. It is safe to call its
// methods multiple times — the underlying data is never modified.
type Result struct {
	data  []byte
	pages int
}

// Bytes returns the raw PDF content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Base64 returns the PDF encoded as a standard base64 string (RFC 4648).
// This is useful for embedding in JSON payloads or uploading to services
// that accept base64-encoded content.
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the PDF content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full PDF content to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the PDF to the file at path, creating it if needed.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, r.data, perm)
}

// Len returns the size of the PDF in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// Pages returns the number of pages accepted into the document. Blank pages
// never count; the first accepted page is page one regardless of its slice
// position in the raster.
func (r *Result) Pages() int {
	return r.pages
}

// VerifyPageCount re-reads the page count from the serialized PDF itself.
// It exists for integrity checks on the output container and may disagree
// with [Result.Pages] only if the document bytes are corrupt.
func (r *Result) VerifyPageCount() (int, error) {
	return pdfinfo.PageCount(r.data)
}
