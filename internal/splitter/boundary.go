package splitter

import (
	"regexp"
	"strings"
)

// A table block is a "### Table <id>:" title line immediately followed by
// one or more pipe-delimited rows. A title line with zero rows is plain text.
var (
	tableBlockPattern = regexp.MustCompile(`### Table [A-Z]?\d+\.\d+:[^\n]*\n(?:\|[^\n]*\|[^\n]*(?:\n|$))+`)
	tableIDPattern    = regexp.MustCompile(`Table ([A-Z]?\d+\.\d+)`)
	tableTitlePattern = regexp.MustCompile(`### Table [A-Z]?\d+\.\d+: ([^\n]+)`)
)

// TableBoundary is the detected span of one table: its title line plus rows.
// Boundaries are sorted by Start and never overlap within one document.
type TableBoundary struct {
	ID      string
	Title   string
	Content string
	Start   int
	End     int
}

// DetectTables locates table blocks in raw text. An empty result means the
// document simply has no tables; it is not an error.
func DetectTables(text string) []TableBoundary {
	var tables []TableBoundary
	for _, loc := range tableBlockPattern.FindAllStringIndex(text, -1) {
		content := text[loc[0]:loc[1]]

		id := "Unknown"
		if m := tableIDPattern.FindStringSubmatch(content); m != nil {
			id = m[1]
		}
		title := "Untitled Table"
		if m := tableTitlePattern.FindStringSubmatch(content); m != nil {
			if t := strings.TrimSpace(m[1]); t != "" {
				title = t
			}
		}

		tables = append(tables, TableBoundary{
			ID:      id,
			Title:   title,
			Content: content,
			Start:   loc[0],
			End:     loc[1],
		})
	}
	return tables
}
