package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/banksplit/internal/document"
)

// TextParser handles plain text files. Content passes through with newline
// normalization only: banking text files already carry their tables as
// pipe-delimited rows, and reflowing would destroy them.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.RawDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	return &document.RawDocument{
		Title: titleFromFilename(filename),
		Text:  text,
	}, nil
}
