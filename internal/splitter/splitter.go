package splitter

import (
	"fmt"

	"github.com/dgallion1/banksplit/internal/document"
)

// Config controls segmentation behavior.
type Config struct {
	MaxChunkSize         int  // Chunk size budget in characters.
	ChunkOverlap         int  // Trailing characters repeated into the next text chunk.
	PreserveTableContext bool // Route table sections through the table-aware chunker.
}

// DefaultConfig returns the defaults used for banking documents.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize:         1000,
		ChunkOverlap:         200,
		PreserveTableContext: true,
	}
}

// Splitter segments raw document text into retrieval-sized chunks,
// keeping tables intact where possible and resolving textual
// cross-references against the document's own tables.
type Splitter struct {
	cfg Config
}

// New validates cfg and returns a Splitter. Overlap must be strictly
// smaller than the chunk budget or the text splitter cannot make progress;
// that is rejected here rather than discovered mid-split.
func New(cfg Config) (*Splitter, error) {
	if cfg.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("splitter: max chunk size must be positive, got %d", cfg.MaxChunkSize)
	}
	if cfg.ChunkOverlap < 0 {
		return nil, fmt.Errorf("splitter: chunk overlap must not be negative, got %d", cfg.ChunkOverlap)
	}
	if cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("splitter: chunk overlap %d must be smaller than max chunk size %d", cfg.ChunkOverlap, cfg.MaxChunkSize)
	}
	return &Splitter{cfg: cfg}, nil
}

// Config returns the active configuration.
func (s *Splitter) Config() Config {
	return s.cfg
}

// Split segments text into chunks and runs both enrichment passes.
// The result is a pure function of (text, cfg): identical input yields a
// byte-identical chunk sequence. sourceMeta is copied onto every chunk.
func (s *Splitter) Split(text string, sourceMeta map[string]string) []document.Chunk {
	boundaries := DetectTables(text)
	sections := partitionSections(text, boundaries)

	var chunks []document.Chunk
	for _, sec := range sections {
		if sec.Kind == sectionTable && s.cfg.PreserveTableContext {
			chunks = append(chunks, s.splitTable(sec)...)
			continue
		}
		pieces := s.splitText(sec.Content)
		for i, piece := range pieces {
			c := document.Chunk{
				Content: piece,
				Kind:    document.KindText,
				Context: sec.Context,
			}
			if len(pieces) > 1 {
				c.PartIndex = i + 1
			}
			chunks = append(chunks, c)
		}
	}

	for i := range chunks {
		chunks[i].Metadata = cloneMeta(sourceMeta)
	}

	// Enrichment passes over the full chunk sequence. The index build
	// must complete before any mention is resolved.
	s.resolveCrossReferences(chunks)
	for i := range chunks {
		annotateNumeric(&chunks[i])
	}

	return chunks
}

// TableSummary aggregates the tables present in a chunk sequence.
func TableSummary(chunks []document.Chunk) document.TableSummary {
	index := BuildTableIndex(chunks)
	summary := document.TableSummary{
		TotalTables: len(index),
		Tables:      map[string]document.TableStats(index),
	}
	for _, c := range chunks {
		if len(c.CrossReferences) > 0 {
			summary.CrossReferencesFound++
		}
	}
	return summary
}

func cloneMeta(meta map[string]string) map[string]string {
	if meta == nil {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
