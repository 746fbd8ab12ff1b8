// Package pdfinfo provides minimal introspection of generated PDF files:
// enough to verify that an export produced a well-formed container with the
// expected page count and paper size, and no more. It is not a general PDF
// parser — it reads the classic uncompressed page-tree dictionaries that
// fpdf emits.
package pdfinfo

import (
	"bytes"
	"fmt"
	"strconv"
)

var (
	pdfMagic   = []byte("%PDF-")
	pagesType  = []byte("/Type /Pages")
	pageType   = []byte("/Type /Page")
	countKey   = []byte("/Count")
	mediaBoxKy = []byte("/MediaBox")
)

// IsPDF reports whether data starts with the PDF magic number.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// PageCount returns the document's page count, read from the page tree's
// /Count entry, falling back to counting /Type /Page leaf dictionaries.
func PageCount(data []byte) (int, error) {
	if !IsPDF(data) {
		return 0, fmt.Errorf("pdfinfo: not a PDF")
	}

	if i := bytes.Index(data, pagesType); i >= 0 {
		if n, ok := intAfter(data[i:], countKey); ok && n > 0 {
			return n, nil
		}
	}

	// Leaf fallback: count page objects, excluding the /Type /Pages node.
	count := 0
	for rest := data; ; {
		i := bytes.Index(rest, pageType)
		if i < 0 {
			break
		}
		tail := rest[i+len(pageType):]
		if len(tail) == 0 || tail[0] != 's' {
			count++
		}
		rest = tail
	}
	if count == 0 {
		return 0, fmt.Errorf("pdfinfo: no page objects found")
	}
	return count, nil
}

// MediaBox returns the page-tree MediaBox dimensions in points.
func MediaBox(data []byte) (width, height float64, err error) {
	if !IsPDF(data) {
		return 0, 0, fmt.Errorf("pdfinfo: not a PDF")
	}
	i := bytes.Index(data, mediaBoxKy)
	if i < 0 {
		return 0, 0, fmt.Errorf("pdfinfo: no MediaBox found")
	}
	rest := data[i+len(mediaBoxKy):]
	open := bytes.IndexByte(rest, '[')
	closing := bytes.IndexByte(rest, ']')
	if open < 0 || closing < open {
		return 0, 0, fmt.Errorf("pdfinfo: malformed MediaBox")
	}
	fields := bytes.Fields(rest[open+1 : closing])
	if len(fields) != 4 {
		return 0, 0, fmt.Errorf("pdfinfo: malformed MediaBox")
	}
	nums := make([]float64, 4)
	for j, f := range fields {
		v, perr := strconv.ParseFloat(string(f), 64)
		if perr != nil {
			return 0, 0, fmt.Errorf("pdfinfo: malformed MediaBox: %w", perr)
		}
		nums[j] = v
	}
	return nums[2] - nums[0], nums[3] - nums[1], nil
}

// intAfter parses the integer following key in data.
func intAfter(data, key []byte) (int, bool) {
	i := bytes.Index(data, key)
	if i < 0 {
		return 0, false
	}
	rest := data[i+len(key):]
	j := 0
	for j < len(rest) && (rest[j] == ' ' || rest[j] == '\n' || rest[j] == '\r') {
		j++
	}
	k := j
	for k < len(rest) && rest[k] >= '0' && rest[k] <= '9' {
		k++
	}
	if k == j {
		return 0, false
	}
	n, err := strconv.Atoi(string(rest[j:k]))
	if err != nil {
		return 0, false
	}
	return n, true
}
