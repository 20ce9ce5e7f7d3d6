package splitter

import (
	"strings"
	"testing"
)

func TestDetectTables_SingleTable(t *testing.T) {
	text := "Intro paragraph.\n\n### Table 1.1: Personal Loan Rates\n|Term|APR|\n|---|---|\n|12mo|7.5%|\n|24mo|8.0%|\n\nTrailing text."

	tables := DetectTables(text)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}

	tb := tables[0]
	if tb.ID != "1.1" {
		t.Errorf("expected id 1.1, got %q", tb.ID)
	}
	if tb.Title != "Personal Loan Rates" {
		t.Errorf("expected title 'Personal Loan Rates', got %q", tb.Title)
	}
	if tb.Start >= tb.End {
		t.Errorf("expected start < end, got %d >= %d", tb.Start, tb.End)
	}
	if !strings.HasPrefix(tb.Content, "### Table 1.1:") {
		t.Errorf("content should start with the title line, got %q", tb.Content)
	}
	if !strings.Contains(tb.Content, "|24mo|8.0%|") {
		t.Errorf("content should include the last row, got %q", tb.Content)
	}
	if strings.Contains(tb.Content, "Trailing text") {
		t.Errorf("content should stop at the last pipe row, got %q", tb.Content)
	}
}

func TestDetectTables_LetterPrefixedID(t *testing.T) {
	text := "### Table M4.2: Mortgage Margins\n|Product|Margin|\n|---|---|\n|ARM|2.25%|\n"

	tables := DetectTables(text)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if tables[0].ID != "M4.2" {
		t.Errorf("expected id M4.2, got %q", tables[0].ID)
	}
}

func TestDetectTables_TitleWithoutRowsIsPlainText(t *testing.T) {
	text := "### Table 3.1: Fees\nThis heading has no rows below it.\n"

	if tables := DetectTables(text); len(tables) != 0 {
		t.Fatalf("expected no tables for a title with zero pipe rows, got %d", len(tables))
	}
}

func TestDetectTables_NoTablesIsNotAnError(t *testing.T) {
	if tables := DetectTables("Just prose about loan servicing."); len(tables) != 0 {
		t.Fatalf("expected empty result, got %d tables", len(tables))
	}
}

func TestDetectTables_MultipleTablesSortedAndDisjoint(t *testing.T) {
	text := "### Table 1.1: Rates\n|A|B|\n|---|---|\n|1|2|\n\nMiddle text.\n\n### Table 2.1: Fees\n|C|D|\n|---|---|\n|3|4|\n"

	tables := DetectTables(text)
	if len(tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tables))
	}
	if tables[0].ID != "1.1" || tables[1].ID != "2.1" {
		t.Errorf("expected ids 1.1, 2.1 in order, got %q, %q", tables[0].ID, tables[1].ID)
	}
	if tables[0].End > tables[1].Start {
		t.Errorf("boundaries overlap: first ends %d, second starts %d", tables[0].End, tables[1].Start)
	}
}

func TestDetectTables_TableAtEndOfInputWithoutNewline(t *testing.T) {
	text := "### Table 5.5: CD Rates\n|Term|Rate|\n|---|---|\n|6mo|4.1%|"

	tables := DetectTables(text)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if !strings.HasSuffix(tables[0].Content, "|6mo|4.1%|") {
		t.Errorf("expected content to include the final unterminated row, got %q", tables[0].Content)
	}
}
