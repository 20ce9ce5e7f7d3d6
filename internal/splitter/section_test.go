package splitter

import (
	"strings"
	"testing"
)

const sectionedDoc = "Opening remarks about lending.\n\n### Table 1.1: Rates\n|A|B|\n|---|---|\n|1|2|\n\nBetween tables.\n\n### Table 2.1: Fees\n|C|D|\n|---|---|\n|3|4|\n\nClosing remarks."

func TestPartitionSections_OrderAndLabels(t *testing.T) {
	tables := DetectTables(sectionedDoc)
	sections := partitionSections(sectionedDoc, tables)

	if len(sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(sections))
	}

	wantKinds := []sectionKind{sectionText, sectionTable, sectionText, sectionTable, sectionText}
	wantContexts := []string{
		"Text before 1.1",
		"Table 1.1: Rates",
		"Text before 2.1",
		"Table 2.1: Fees",
		"Text after tables",
	}
	for i, sec := range sections {
		if sec.Kind != wantKinds[i] {
			t.Errorf("section %d: expected kind %v, got %v", i, wantKinds[i], sec.Kind)
		}
		if sec.Context != wantContexts[i] {
			t.Errorf("section %d: expected context %q, got %q", i, wantContexts[i], sec.Context)
		}
	}

	if sections[1].TableID != "1.1" || sections[3].TableID != "2.1" {
		t.Errorf("table sections carry wrong ids: %q, %q", sections[1].TableID, sections[3].TableID)
	}
}

func TestPartitionSections_ConcatenationRoundTrip(t *testing.T) {
	tables := DetectTables(sectionedDoc)
	sections := partitionSections(sectionedDoc, tables)

	var joined strings.Builder
	for _, sec := range sections {
		joined.WriteString(sec.Content)
		joined.WriteString("\n")
	}

	if collapseWhitespace(joined.String()) != collapseWhitespace(sectionedDoc) {
		t.Errorf("joined sections do not reproduce the source text:\n%q\nvs\n%q",
			joined.String(), sectionedDoc)
	}
}

func TestPartitionSections_NoTables(t *testing.T) {
	text := "Only prose, no tables at all."
	sections := partitionSections(text, nil)

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Kind != sectionText || sections[0].Content != text {
		t.Errorf("expected a single text section with the full content, got %+v", sections[0])
	}
}

func TestPartitionSections_EmptyGapsAreSkipped(t *testing.T) {
	// Table starts at offset 0: no leading text section should be emitted.
	text := "### Table 1.1: Rates\n|A|B|\n|---|---|\n|1|2|\n"
	sections := partitionSections(text, DetectTables(text))

	if len(sections) != 1 {
		t.Fatalf("expected only the table section, got %d sections", len(sections))
	}
	if sections[0].Kind != sectionTable {
		t.Errorf("expected table section, got kind %v", sections[0].Kind)
	}
}

// collapseWhitespace makes comparisons insensitive to the per-section trim.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
