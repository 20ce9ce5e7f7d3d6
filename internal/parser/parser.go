package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/banksplit/internal/document"
)

// Parser converts raw document bytes into flattened text ready for
// segmentation. Embedded tables are normalized to pipe-delimited rows so
// the splitter sees one table shape regardless of source format.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.RawDocument, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options controls parser construction.
type Options struct {
	// PDFFallbackPdftotext shells out to pdftotext when the native PDF
	// reader extracts no text.
	PDFFallbackPdftotext bool
}

// DefaultOptions enables the pdftotext fallback.
func DefaultOptions() Options {
	return Options{PDFFallbackPdftotext: true}
}

// ForFile returns the appropriate parser for a filename, built with
// default options.
func ForFile(filename string) (Parser, error) {
	return DefaultOptions().ForFile(filename)
}

// ForFile returns the appropriate parser for a filename.
func (o Options) ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: o.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFromFilename strips the extension to derive a document title.
func titleFromFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
