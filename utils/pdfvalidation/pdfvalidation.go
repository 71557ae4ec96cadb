// Package pdfvalidation checks documents students attach to applications.
package pdfvalidation

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	pdfHeader = []byte("%PDF-")
	eofMarker = []byte("%%EOF")
)

// Limits bounds an uploaded document.
type Limits struct {
	MaxBytes int64
	MaxPages int
	// Label names the document in rejection messages.
	Label string
}

// ApplicationDocument applies to files attached to an application.
var ApplicationDocument = Limits{
	MaxBytes: 10 << 20,
	MaxPages: 30,
	Label:    "application document",
}

// Document describes an accepted PDF.
type Document struct {
	Size  int64
	Pages int
}

// RejectedError is returned when a file is readable but not acceptable.
// Its message is safe to show to the uploader.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return e.Reason }

func reject(format string, args ...any) error {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}

// ReadUpload checks a multipart file and returns its bytes so the caller does
// not open it twice. Failures to read the upload are returned as plain errors.
func ReadUpload(file *multipart.FileHeader, limits Limits) (Document, []byte, error) {
	if file.Size > limits.MaxBytes {
		return Document{}, nil, tooLarge(limits)
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return Document{}, nil, reject("Only PDF files are supported")
	}

	f, err := file.Open()
	if err != nil {
		return Document{}, nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, limits.MaxBytes+1))
	if err != nil {
		return Document{}, nil, fmt.Errorf("read upload: %w", err)
	}

	doc, err := Inspect(content, limits)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, content, nil
}

// Inspect checks raw PDF content against limits.
func Inspect(content []byte, limits Limits) (Document, error) {
	doc := Document{Size: int64(len(content))}

	if doc.Size > limits.MaxBytes {
		return doc, tooLarge(limits)
	}
	if !bytes.HasPrefix(content, pdfHeader) {
		return doc, reject("Invalid PDF file: missing PDF header")
	}

	trimmed := trimTrailer(content)
	r, err := pdf.NewReader(bytes.NewReader(trimmed), int64(len(trimmed)))
	if err != nil {
		return doc, reject("Failed to read PDF: %v", err)
	}
	doc.Pages = r.NumPage()

	switch {
	case doc.Pages == 0:
		return doc, reject("PDF has no pages")
	case doc.Pages > limits.MaxPages:
		return doc, reject("PDF has %d pages, which exceeds the maximum of %d pages for an %s",
			doc.Pages, limits.MaxPages, limits.Label)
	}
	return doc, nil
}

func tooLarge(limits Limits) error {
	return reject("File size exceeds maximum allowed size of %dMB", limits.MaxBytes>>20)
}

// trimTrailer drops bytes after the last %%EOF marker and its line ending.
// Some scanners append padding there that the parser rejects.
func trimTrailer(content []byte) []byte {
	end := bytes.LastIndex(content, eofMarker)
	if end < 0 {
		return content
	}
	end += len(eofMarker)
	for end < len(content) && (content[end] == '\n' || content[end] == '\r') {
		end++
	}
	return content[:end]
}
