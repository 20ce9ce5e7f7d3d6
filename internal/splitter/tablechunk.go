package splitter

import (
	"fmt"
	"strings"

	"github.com/dgallion1/banksplit/internal/document"
)

// splitTable chunks a table section. A table within the size budget is
// emitted as a single chunk and never truncated; a larger table is split by
// data row, with the full header block repeated into every part so each
// part stays independently interpretable.
func (s *Splitter) splitTable(sec Section) []document.Chunk {
	if len(sec.Content) <= s.cfg.MaxChunkSize {
		return []document.Chunk{{
			Content:    sec.Content,
			Kind:       document.KindTable,
			TableID:    sec.TableID,
			TableTitle: sec.TableTitle,
			Context:    sec.Context,
		}}
	}
	return s.splitTableRows(sec)
}

func (s *Splitter) splitTableRows(sec Section) []document.Chunk {
	header, data := classifyTableLines(sec.Content)
	headerText := strings.Join(header, "\n")

	var parts []document.Chunk
	var cur []string
	size := len(headerText)

	flush := func() {
		if len(cur) == 0 {
			return
		}
		idx := len(parts) + 1
		parts = append(parts, document.Chunk{
			Content:    headerText + "\n" + strings.Join(cur, "\n"),
			Kind:       document.KindTablePart,
			TableID:    sec.TableID,
			TableTitle: sec.TableTitle,
			PartIndex:  idx,
			Context:    fmt.Sprintf("%s (Part %d)", sec.Context, idx),
		})
		cur = nil
		size = len(headerText)
	}

	for _, line := range data {
		lineSize := len(line) + 1 // +1 for the joining newline
		if size+lineSize > s.cfg.MaxChunkSize && len(cur) > 0 {
			flush()
		}
		cur = append(cur, line)
		size += lineSize
	}
	// A trailing partial part is expected, not an error.
	flush()

	return parts
}

// classifyTableLines splits a table block into header and data lines.
// Everything up to and including the dash separator row is header; later
// pipe lines are data. A non-pipe line follows whichever mode is current.
func classifyTableLines(content string) (header, data []string) {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	inHeader := true
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "###"):
			header = append(header, line)
		case strings.HasPrefix(line, "|") && strings.Contains(line, "---"):
			header = append(header, line)
			inHeader = false
		case strings.HasPrefix(line, "|") && inHeader:
			header = append(header, line)
		case strings.HasPrefix(line, "|"):
			data = append(data, line)
		case inHeader:
			header = append(header, line)
		default:
			data = append(data, line)
		}
	}
	return header, data
}
