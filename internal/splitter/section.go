package splitter

import (
	"fmt"
	"strings"
)

type sectionKind int

const (
	sectionText sectionKind = iota
	sectionTable
)

// Section is an ephemeral slice of the document: either a table block or the
// text between tables. Sections exist only during partitioning and are
// discarded after chunking.
type Section struct {
	Kind       sectionKind
	Content    string
	Context    string
	TableID    string
	TableTitle string
}

// partitionSections walks the sorted boundaries in order, emitting a text
// section for every non-empty gap, a table section per boundary, and a
// trailing text section. Concatenating section contents reproduces the
// source text modulo the per-section whitespace trim.
func partitionSections(text string, tables []TableBoundary) []Section {
	var sections []Section
	lastEnd := 0

	for _, t := range tables {
		if t.Start > lastEnd {
			if pre := strings.TrimSpace(text[lastEnd:t.Start]); pre != "" {
				sections = append(sections, Section{
					Kind:    sectionText,
					Content: pre,
					Context: "Text before " + t.ID,
				})
			}
		}
		sections = append(sections, Section{
			Kind:       sectionTable,
			Content:    t.Content,
			Context:    fmt.Sprintf("Table %s: %s", t.ID, t.Title),
			TableID:    t.ID,
			TableTitle: t.Title,
		})
		lastEnd = t.End
	}

	if lastEnd < len(text) {
		if rest := strings.TrimSpace(text[lastEnd:]); rest != "" {
			sections = append(sections, Section{
				Kind:    sectionText,
				Content: rest,
				Context: "Text after tables",
			})
		}
	}

	return sections
}
