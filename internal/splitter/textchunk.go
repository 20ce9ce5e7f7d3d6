package splitter

import (
	"strings"
	"unicode/utf8"
)

// Separator ladder for text sections, coarsest first. The empty string is
// the last resort: a run it reaches is emitted whole. Truncating would
// corrupt banking text, so oversized indivisible runs pass through as-is.
var textSeparators = []string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}

// splitText splits a text section into chunks of at most MaxChunkSize
// characters, repeating ChunkOverlap trailing characters into the next
// chunk's leading edge.
func (s *Splitter) splitText(text string) []string {
	return s.splitAtLevel(text, 0)
}

func (s *Splitter) splitAtLevel(text string, level int) []string {
	if len(text) <= s.cfg.MaxChunkSize {
		return []string{text}
	}
	sep := textSeparators[level]
	if sep == "" {
		return []string{text}
	}

	parts := strings.Split(text, sep)

	var out []string
	var cur strings.Builder

	flush := func() {
		c := cur.String()
		cur.Reset()
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}

	for _, part := range parts {
		// A part that alone exceeds the budget goes one separator finer.
		if len(part) > s.cfg.MaxChunkSize {
			flush()
			out = append(out, s.splitAtLevel(part, level+1)...)
			continue
		}

		if cur.Len() > 0 && cur.Len()+len(sep)+len(part) > s.cfg.MaxChunkSize {
			prev := cur.String()
			flush()
			// Seed the next chunk with trailing context, unless that
			// would push it over budget.
			if ov := overlapTail(prev, s.cfg.ChunkOverlap); ov != "" &&
				len(ov)+len(sep)+len(part) <= s.cfg.MaxChunkSize {
				cur.WriteString(ov)
			}
		}

		if cur.Len() > 0 {
			cur.WriteString(sep)
		}
		cur.WriteString(part)
	}
	flush()

	return out
}

// overlapTail returns the last n bytes of text, snapped forward to a rune
// boundary. Empty when the whole text would be repeated.
func overlapTail(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return ""
	}
	tail := text[len(text)-n:]
	for len(tail) > 0 && !utf8.RuneStart(tail[0]) {
		tail = tail[1:]
	}
	return tail
}
