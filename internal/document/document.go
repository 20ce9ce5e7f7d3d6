package document

// ChunkKind classifies a chunk's content.
type ChunkKind string

const (
	KindText      ChunkKind = "text"
	KindTable     ChunkKind = "table"
	KindTablePart ChunkKind = "table_part"
)

// IsTable reports whether the kind carries table content.
func (k ChunkKind) IsTable() bool {
	return k == KindTable || k == KindTablePart
}

// CrossReference is a resolved textual mention of a table in a chunk.
type CrossReference struct {
	TableID       string `json:"referenced_table"`
	TableTitle    string `json:"table_title"`
	ReferenceText string `json:"reference_text"`
}

// NumericData holds literal numeric fields extracted from chunk content.
// Extraction is pattern capture only; no type inference on the values.
type NumericData struct {
	Rates         []float64 `json:"rates,omitempty"`
	DollarAmounts []float64 `json:"dollar_amounts,omitempty"`
	Terms         []int     `json:"terms,omitempty"`
}

// Empty reports whether no field captured anything.
func (n *NumericData) Empty() bool {
	return n == nil || (len(n.Rates) == 0 && len(n.DollarAmounts) == 0 && len(n.Terms) == 0)
}

// Chunk is the persisted unit of segmented document content.
// It is created once by the splitter, enriched in place by the
// cross-reference and numeric passes, then never mutated again.
type Chunk struct {
	Content    string
	Kind       ChunkKind
	TableID    string // Set for table and table_part kinds.
	TableTitle string
	PartIndex  int    // 1-based for table parts and multi-part text, 0 otherwise.
	Context    string // Traceability label, e.g. "Table 2.1: Mortgage Rates".

	CrossReferences []CrossReference
	Numeric         *NumericData // Nil unless at least one field is non-empty.

	// Metadata is pass-through source metadata from the loader
	// (source file, document type, priority). Scalar values only;
	// typed fields above are serialized at the store boundary, not here.
	Metadata map[string]string
}

// TableStats aggregates the chunks belonging to one table id.
type TableStats struct {
	Title              string `json:"title"`
	Parts              int    `json:"parts"`
	TotalContentLength int    `json:"total_content_length"`
}

// TableSummary describes all tables found in a document's chunk sequence.
type TableSummary struct {
	TotalTables          int                   `json:"total_tables"`
	Tables               map[string]TableStats `json:"tables"`
	CrossReferencesFound int                   `json:"cross_references_found"`
}

// RawDocument is a parsed source file before segmentation.
type RawDocument struct {
	Title string // From metadata or filename.
	Text  string // Flattened text; embedded tables are pipe-delimited rows.
}
