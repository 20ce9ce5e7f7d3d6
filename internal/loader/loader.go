package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/banksplit/internal/document"
	"github.com/dgallion1/banksplit/internal/parser"
	"github.com/dgallion1/banksplit/internal/splitter"
)

// Loader reads banking documents from a directory, splits them with the
// table-aware splitter and attaches document-level metadata to every chunk.
type Loader struct {
	dir      string
	splitter *splitter.Splitter
	mapping  Mapping
	logger   *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

func New(dir string, sp *splitter.Splitter, mapping Mapping, logger *slog.Logger) *Loader {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dir:      dir,
		splitter: sp,
		mapping:  mapping,
		logger:   logger,
		now:      time.Now,
	}
}

// LoadAll loads every supported file in the directory, in filename order.
// Per-file failures are logged and skipped so one bad file cannot sink a
// whole load.
func (l *Loader) LoadAll() ([]document.Chunk, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read documents directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !parser.IsSupportedExtension(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var all []document.Chunk
	for _, name := range names {
		path := filepath.Join(l.dir, name)
		chunks, err := l.LoadFile(path)
		if err != nil {
			l.logger.Error("failed to load document", "file", name, "error", err)
			continue
		}
		l.logger.Info("loaded document", "file", name, "chunks", len(chunks))
		all = append(all, chunks...)
	}

	l.logger.Info("load complete", "files", len(names), "total_chunks", len(all))
	return all, nil
}

// LoadFile parses and splits a single file, attaching source metadata and
// per-chunk content type tags.
func (l *Loader) LoadFile(path string) ([]document.Chunk, error) {
	name := filepath.Base(path)

	p, err := parser.ForFile(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	raw, err := p.Parse(f, name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	info := l.mapping.Identify(name)
	meta := map[string]string{
		"source_file":     name,
		"file_path":       path,
		"document_type":   info.Type,
		"contains_topics": strings.Join(info.Contains, ", "),
		"priority_level":  info.Priority,
		"load_timestamp":  l.now().Format(time.RFC3339),
	}

	chunks := l.splitter.Split(raw.Text, meta)
	for i := range chunks {
		types := ClassifyContent(&chunks[i])
		if len(types) > 0 {
			chunks[i].Metadata["content_types"] = strings.Join(types, ", ")
		}
	}
	return chunks, nil
}

// Content type keyword sets. Matching is on lowercased chunk content.
var contentTypeTerms = []struct {
	name  string
	terms []string
}{
	{"loan_products", []string{"apr", "loan", "mortgage", "rate", "payment"}},
	{"rates_pricing", []string{"%", "rate", "apr", "fee", "cost", "price"}},
	{"regulatory", []string{"compliance", "regulation", "fdic", "requirement"}},
	{"calculations", []string{"amortization", "payment", "principal", "interest"}},
}

// ClassifyContent tags a chunk with the banking content classes its text
// mentions. Table chunks additionally get tabular_data.
func ClassifyContent(c *document.Chunk) []string {
	content := strings.ToLower(c.Content)

	var types []string
	for _, ct := range contentTypeTerms {
		for _, term := range ct.terms {
			if strings.Contains(content, term) {
				types = append(types, ct.name)
				break
			}
		}
	}
	if c.Kind.IsTable() {
		types = append(types, "tabular_data")
	}
	return types
}

// Summary aggregates counts over a loaded chunk set.
type Summary struct {
	TotalChunks           int                   `json:"total_chunks"`
	DocumentTypes         map[string]int        `json:"document_types"`
	ContentTypes          map[string]int        `json:"content_types"`
	Tables                document.TableSummary `json:"table_summary"`
	FilesLoaded           int                   `json:"files_loaded"`
	ChunksWithNumericData int                   `json:"chunks_with_numerical_data"`
}

func (l *Loader) Summarize(chunks []document.Chunk) Summary {
	s := Summary{
		TotalChunks:   len(chunks),
		DocumentTypes: map[string]int{},
		ContentTypes:  map[string]int{},
		Tables:        splitter.TableSummary(chunks),
	}

	files := map[string]bool{}
	for _, c := range chunks {
		docType := c.Metadata["document_type"]
		if docType == "" {
			docType = "unknown"
		}
		s.DocumentTypes[docType]++

		for _, ct := range strings.Split(c.Metadata["content_types"], ", ") {
			if ct = strings.TrimSpace(ct); ct != "" {
				s.ContentTypes[ct]++
			}
		}

		if f := c.Metadata["source_file"]; f != "" {
			files[f] = true
		}
		if !c.Numeric.Empty() {
			s.ChunksWithNumericData++
		}
	}
	s.FilesLoaded = len(files)
	return s
}

// ByType filters chunks by document type.
func ByType(chunks []document.Chunk, docType string) []document.Chunk {
	var out []document.Chunk
	for _, c := range chunks {
		if c.Metadata["document_type"] == docType {
			out = append(out, c)
		}
	}
	return out
}

// WithTables returns chunks holding tabular content.
func WithTables(chunks []document.Chunk) []document.Chunk {
	var out []document.Chunk
	for _, c := range chunks {
		if c.Kind.IsTable() {
			out = append(out, c)
		}
	}
	return out
}

// WithCrossReferences returns chunks that resolved at least one table
// reference.
func WithCrossReferences(chunks []document.Chunk) []document.Chunk {
	var out []document.Chunk
	for _, c := range chunks {
		if len(c.CrossReferences) > 0 {
			out = append(out, c)
		}
	}
	return out
}
