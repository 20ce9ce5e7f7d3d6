package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/banksplit/internal/document"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Heading-styled paragraphs become
// "#"-prefixed lines; Word tables are rendered as pipe-delimited rows.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*document.RawDocument, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "banksplit-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var blocks []string
	for _, item := range doc.Document.Body.Items {
		switch t := item.(type) {
		case *docx.Paragraph:
			text := docxParagraphText(t)
			if text == "" {
				continue
			}
			if level := docxHeadingLevel(t); level > 0 {
				blocks = append(blocks, strings.Repeat("#", level)+" "+text)
			} else {
				blocks = append(blocks, text)
			}
		case *docx.Table:
			if rows := docxTableRows(t); rows != "" {
				blocks = append(blocks, rows)
			}
		}
	}

	return &document.RawDocument{
		Title: titleFromFilename(filename),
		Text:  strings.Join(blocks, "\n\n"),
	}, nil
}

// docxTableRows renders a Word table as pipe-delimited rows with a
// separator row after the first.
func docxTableRows(t *docx.Table) string {
	lines := strings.Split(t.String(), "\n")

	var sb strings.Builder
	first := true
	for _, line := range lines {
		cells := strings.Split(line, "\t")
		var cleaned []string
		for _, c := range cells {
			if c = strings.TrimSpace(c); c != "" {
				cleaned = append(cleaned, c)
			}
		}
		if len(cleaned) == 0 {
			continue
		}
		writePipeRow(&sb, cleaned)
		if first {
			sb.WriteString("|")
			for range cleaned {
				sb.WriteString("---|")
			}
			sb.WriteString("\n")
			first = false
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	switch {
	case strings.EqualFold(style, "Heading1") || strings.EqualFold(style, "heading 1"):
		return 1
	case strings.EqualFold(style, "Heading2") || strings.EqualFold(style, "heading 2"):
		return 2
	case strings.EqualFold(style, "Heading3") || strings.EqualFold(style, "heading 3"):
		return 3
	case strings.EqualFold(style, "Heading4") || strings.EqualFold(style, "heading 4"):
		return 4
	case strings.EqualFold(style, "Heading5") || strings.EqualFold(style, "heading 5"):
		return 5
	case strings.EqualFold(style, "Heading6") || strings.EqualFold(style, "heading 6"):
		return 6
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
