package splitter

import (
	"testing"

	"github.com/dgallion1/banksplit/internal/document"
)

func tableChunk(id, title, content string, kind document.ChunkKind) document.Chunk {
	return document.Chunk{Content: content, Kind: kind, TableID: id, TableTitle: title}
}

func TestBuildTableIndex_Completeness(t *testing.T) {
	chunks := []document.Chunk{
		tableChunk("1.1", "Rates", "### Table 1.1: Rates\n|A|B|\n", document.KindTable),
		tableChunk("2.1", "Fees", "part one", document.KindTablePart),
		tableChunk("2.1", "Fees", "part two", document.KindTablePart),
		{Content: "plain text", Kind: document.KindText},
	}

	index := BuildTableIndex(chunks)
	if len(index) != 2 {
		t.Fatalf("expected 2 index entries, got %d", len(index))
	}

	st, ok := index["2.1"]
	if !ok {
		t.Fatal("table 2.1 missing from index")
	}
	if st.Parts != 2 {
		t.Errorf("expected 2 parts for table 2.1, got %d", st.Parts)
	}
	if st.Title != "Fees" {
		t.Errorf("expected title Fees, got %q", st.Title)
	}
	if st.TotalContentLength != len("part one")+len("part two") {
		t.Errorf("unexpected total content length %d", st.TotalContentLength)
	}
}

func TestResolveCrossReferences_ResolvedAgainstIndex(t *testing.T) {
	s := mustNew(t, DefaultConfig())
	chunks := []document.Chunk{
		tableChunk("1.1", "Personal Loan Rates", "rows", document.KindTable),
		{Content: "See Table 1.1 for current pricing.", Kind: document.KindText},
	}

	s.resolveCrossReferences(chunks)

	refs := chunks[1].CrossReferences
	if len(refs) != 1 {
		t.Fatalf("expected 1 cross reference, got %d", len(refs))
	}
	if refs[0].TableID != "1.1" {
		t.Errorf("expected referenced table 1.1, got %q", refs[0].TableID)
	}
	if refs[0].TableTitle != "Personal Loan Rates" {
		t.Errorf("expected resolved title, got %q", refs[0].TableTitle)
	}
	if refs[0].ReferenceText != "See Table 1.1" {
		t.Errorf("expected mention text 'See Table 1.1', got %q", refs[0].ReferenceText)
	}
}

func TestResolveCrossReferences_NestedMentionNotDoubleCounted(t *testing.T) {
	s := mustNew(t, DefaultConfig())
	chunks := []document.Chunk{
		tableChunk("1.1", "Rates", "rows", document.KindTable),
		{Content: "Please refer to Table 1.1 before quoting.", Kind: document.KindText},
	}

	s.resolveCrossReferences(chunks)

	refs := chunks[1].CrossReferences
	if len(refs) != 1 {
		t.Fatalf("the bare 'Table 1.1' inside the longer mention must not be counted separately, got %d refs", len(refs))
	}
	if refs[0].ReferenceText != "refer to Table 1.1" {
		t.Errorf("expected the longest match, got %q", refs[0].ReferenceText)
	}
}

func TestResolveCrossReferences_UnresolvedMentionsDropped(t *testing.T) {
	s := mustNew(t, DefaultConfig())
	chunks := []document.Chunk{
		tableChunk("1.1", "Rates", "rows", document.KindTable),
		{Content: "See Table 9.9 which does not exist here.", Kind: document.KindText},
	}

	s.resolveCrossReferences(chunks)

	if len(chunks[1].CrossReferences) != 0 {
		t.Errorf("mention of an absent table must be dropped, got %v", chunks[1].CrossReferences)
	}
}

func TestResolveCrossReferences_OrderOfFirstAppearance(t *testing.T) {
	s := mustNew(t, DefaultConfig())
	chunks := []document.Chunk{
		tableChunk("1.1", "Rates", "rows", document.KindTable),
		tableChunk("2.1", "Fees", "rows", document.KindTable),
		{Content: "Compare Table 2.1 with Table 1.1 and see Table 2.1 again.", Kind: document.KindText},
	}

	s.resolveCrossReferences(chunks)

	refs := chunks[2].CrossReferences
	if len(refs) != 3 {
		t.Fatalf("expected 3 references in content order, got %d", len(refs))
	}
	wantIDs := []string{"2.1", "1.1", "2.1"}
	for i, want := range wantIDs {
		if refs[i].TableID != want {
			t.Errorf("ref %d: expected table %s, got %s", i, want, refs[i].TableID)
		}
	}
}

func TestResolveCrossReferences_CaseInsensitiveMentions(t *testing.T) {
	s := mustNew(t, DefaultConfig())
	chunks := []document.Chunk{
		tableChunk("3.2", "Escrow", "rows", document.KindTable),
		{Content: "see table 3.2 for the escrow schedule.", Kind: document.KindText},
	}

	s.resolveCrossReferences(chunks)

	if len(chunks[1].CrossReferences) != 1 {
		t.Fatalf("lowercase mention should resolve, got %d refs", len(chunks[1].CrossReferences))
	}
}
