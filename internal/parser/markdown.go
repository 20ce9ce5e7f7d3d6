package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/banksplit/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
//
// Headings are re-emitted as "#"-prefixed lines so table title lines like
// "### Table 2.1: ..." survive flattening; every other block is emitted as
// its verbatim source bytes, which keeps pipe-delimited rows intact.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.RawDocument, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			title := string(h.Text(src))
			if title != "" {
				blocks = append(blocks, strings.Repeat("#", h.Level)+" "+title)
			}
			continue
		}
		if raw := blockSource(n, src); raw != "" {
			blocks = append(blocks, raw)
		}
	}

	return &document.RawDocument{
		Title: titleFromFilename(filename),
		Text:  strings.Join(blocks, "\n\n"),
	}, nil
}

// blockSource returns a block's verbatim source text by spanning the first
// and last line segments of its subtree. Slicing the source preserves
// internal newlines that the per-line segments may not carry.
func blockSource(n ast.Node, src []byte) string {
	start, stop := -1, -1
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if n.Type() == ast.TypeBlock {
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				if start < 0 || seg.Start < start {
					start = seg.Start
				}
				if seg.Stop > stop {
					stop = seg.Stop
				}
			}
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	if start < 0 || stop <= start {
		return ""
	}
	return strings.TrimRight(string(src[start:stop]), "\n")
}
