// Package docextract defines the document text-extraction contract used by
// the document skill. The [local] subpackage implements it for the upload
// formats the assistant accepts.
package docextract

import "context"

// Document is the extracted text of one uploaded file.
type Document struct {
	// Filename is the original upload name.
	Filename string

	// Text is the extracted plain text.
	Text string

	// WordCount is the number of whitespace-separated words in Text.
	WordCount int
}

// Provider extracts plain text from an uploaded file.
type Provider interface {
	// Extract returns the text content of the named file. Unsupported or
	// unparseable formats are reported with an error wrapping
	// fault.ErrInvalidInput.
	Extract(ctx context.Context, filename string, data []byte) (*Document, error)
}
