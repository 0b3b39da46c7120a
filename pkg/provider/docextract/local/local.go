// Package local implements docextract.Provider for the upload formats the
// assistant accepts: plain text, PDF, and Word documents.
package local

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/voxaura-ai/voxaura/internal/fault"
	"github.com/voxaura-ai/voxaura/pkg/provider/docextract"
)

// MaxUploadBytes is the largest file Extract accepts.
const MaxUploadBytes = 10 << 20

// Provider implements docextract.Provider with in-process parsers.
type Provider struct{}

var _ docextract.Provider = (*Provider)(nil)

// New creates a local extraction Provider.
func New() *Provider {
	return &Provider{}
}

// Extract implements docextract.Provider. The format is chosen by file
// extension: .txt is read directly, .pdf through the PDF parser, .docx
// through the OOXML document body. Legacy binary .doc files are rejected
// with an error telling the user to convert them; their proprietary
// container is not parseable here.
func (p *Provider) Extract(_ context.Context, filename string, data []byte) (*docextract.Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("docextract: %w: file is empty", fault.ErrInvalidInput)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("docextract: %w: file exceeds %d bytes", fault.ErrInvalidInput, MaxUploadBytes)
	}

	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt":
		text, err = extractText(data)
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDocx(data)
	case ".doc":
		err = fmt.Errorf("docextract: %w: legacy .doc files are not supported, convert to .docx or .txt", fault.ErrInvalidInput)
	default:
		err = fmt.Errorf("docextract: %w: unsupported file type %q", fault.ErrInvalidInput, ext)
	}
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("docextract: %w: no text could be extracted from %s", fault.ErrInvalidInput, filename)
	}
	return &docextract.Document{
		Filename:  filename,
		Text:      text,
		WordCount: len(strings.Fields(text)),
	}, nil
}

func extractText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("docextract: %w: text file is not valid UTF-8", fault.ErrInvalidInput)
	}
	return string(data), nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docextract: %w: parse pdf: %v", fault.ErrInvalidInput, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("docextract: %w: extract pdf text: %v", fault.ErrInvalidInput, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("docextract: %w: read pdf text: %v", fault.ErrInvalidInput, err)
	}
	return buf.String(), nil
}

// docxBody mirrors the OOXML structure just deep enough to pull paragraph
// text runs out of word/document.xml.
type docxBody struct {
	Paragraphs []struct {
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"body>p"`
}

func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docextract: %w: open docx archive: %v", fault.ErrInvalidInput, err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("docextract: %w: open document.xml: %v", fault.ErrInvalidInput, err)
		}
		defer rc.Close()

		var body docxBody
		if err := xml.NewDecoder(rc).Decode(&body); err != nil {
			return "", fmt.Errorf("docextract: %w: parse document.xml: %v", fault.ErrInvalidInput, err)
		}
		var lines []string
		for _, para := range body.Paragraphs {
			var sb strings.Builder
			for _, run := range para.Runs {
				sb.WriteString(run.Text)
			}
			if s := sb.String(); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", fmt.Errorf("docextract: %w: docx archive has no document body", fault.ErrInvalidInput)
}
