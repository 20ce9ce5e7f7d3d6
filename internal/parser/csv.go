package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/banksplit/internal/document"
)

// CSVParser handles CSV files (rate sheets are commonly distributed as
// CSV). The whole file is rendered as one pipe-delimited table block with
// a generated title line, so the table-aware chunker keeps rows together
// and splits by row with header repetition when the file is large.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*document.RawDocument, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := titleFromFilename(filename)
	doc := &document.RawDocument{Title: title}
	if len(records) == 0 {
		return doc, nil
	}

	headers := records[0]

	var text strings.Builder
	fmt.Fprintf(&text, "### Table 1.1: %s\n", title)
	writePipeRow(&text, headers)
	text.WriteString("|")
	for range headers {
		text.WriteString("---|")
	}
	text.WriteString("\n")
	for _, row := range records[1:] {
		writePipeRow(&text, row)
	}

	doc.Text = text.String()
	return doc, nil
}

func writePipeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, cell := range cells {
		sb.WriteString(strings.ReplaceAll(cell, "|", "/"))
		sb.WriteString("|")
	}
	sb.WriteString("\n")
}
