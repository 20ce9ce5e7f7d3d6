package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParserHeadings(t *testing.T) {
	input := "# Title\n\nSome intro text.\n\n## Section\n\nMore text here.\n"

	doc, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !strings.Contains(doc.Text, "# Title") {
		t.Errorf("missing h1 line in output:\n%s", doc.Text)
	}
	if !strings.Contains(doc.Text, "## Section") {
		t.Errorf("missing h2 line in output:\n%s", doc.Text)
	}
	if !strings.Contains(doc.Text, "Some intro text.") {
		t.Errorf("missing paragraph text in output:\n%s", doc.Text)
	}
}

func TestMarkdownParserPreservesPipeTable(t *testing.T) {
	input := "### Table 2.1: Fees\n\n|Fee|Amount|\n|---|---|\n|Origination|$500|\n|Appraisal|$350|\n"

	doc, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "fees.md")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !strings.Contains(doc.Text, "### Table 2.1: Fees") {
		t.Errorf("table title line lost:\n%s", doc.Text)
	}
	for _, row := range []string{"|Fee|Amount|", "|Origination|$500|", "|Appraisal|$350|"} {
		if !strings.Contains(doc.Text, row) {
			t.Errorf("pipe row %q lost:\n%s", row, doc.Text)
		}
	}
	// Rows must stay on consecutive lines for boundary detection.
	idx := strings.Index(doc.Text, "|Fee|Amount|")
	if idx < 0 {
		t.Fatal("header row missing")
	}
	rest := doc.Text[idx:]
	lines := strings.SplitN(rest, "\n", 4)
	if len(lines) < 3 || !strings.HasPrefix(lines[2], "|Origination") {
		t.Errorf("rows not consecutive:\n%s", rest)
	}
}

func TestMarkdownParserEmpty(t *testing.T) {
	doc, err := (&MarkdownParser{}).Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Text != "" {
		t.Errorf("expected empty text, got %q", doc.Text)
	}
}
