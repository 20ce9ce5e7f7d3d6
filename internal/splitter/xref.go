package splitter

import (
	"regexp"

	"github.com/dgallion1/banksplit/internal/document"
)

// Mention patterns for textual table references. Alternation order puts the
// prefixed forms first so a bare "Table x.y" nested inside a longer mention
// is consumed by the longer match and never counted twice; the scan itself
// is a single ordered, non-overlapping pass.
var (
	crossRefPattern = regexp.MustCompile(`(?i)see Table [A-Z]?\d+\.\d+|refer to Table [A-Z]?\d+\.\d+|Table [A-Z]?\d+\.\d+`)
	refIDPattern    = regexp.MustCompile(`(?i)Table ([A-Z]?\d+\.\d+)`)
)

// TableIndex maps table id to aggregate stats for one document's chunks.
type TableIndex map[string]document.TableStats

// BuildTableIndex scans every table chunk of a document once. The first
// occurrence of an id supplies the title; all chunks sharing an id carry
// the same title by construction.
func BuildTableIndex(chunks []document.Chunk) TableIndex {
	index := make(TableIndex)
	for _, c := range chunks {
		if !c.Kind.IsTable() || c.TableID == "" {
			continue
		}
		st, ok := index[c.TableID]
		if !ok {
			st.Title = c.TableTitle
		}
		st.Parts++
		st.TotalContentLength += len(c.Content)
		index[c.TableID] = st
	}
	return index
}

// resolveCrossReferences is the second pass over the full chunk sequence:
// the table index is built from all chunks before any mention is resolved.
// Mentions whose id is not in the index are dropped silently; classifying
// broken references belongs to the evaluation layer downstream.
func (s *Splitter) resolveCrossReferences(chunks []document.Chunk) {
	index := BuildTableIndex(chunks)
	if len(index) == 0 {
		return
	}
	for i := range chunks {
		for _, mention := range crossRefPattern.FindAllString(chunks[i].Content, -1) {
			m := refIDPattern.FindStringSubmatch(mention)
			if m == nil {
				continue
			}
			st, ok := index[m[1]]
			if !ok {
				continue
			}
			chunks[i].CrossReferences = append(chunks[i].CrossReferences, document.CrossReference{
				TableID:       m[1],
				TableTitle:    st.Title,
				ReferenceText: mention,
			})
		}
	}
}
