package splitter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/banksplit/internal/document"
)

// Literal pattern capture for downstream accuracy checks. No type
// inference: a rate is whatever sits in front of a percent sign.
var (
	ratePattern   = regexp.MustCompile(`(\d+\.?\d*)\s*%`)
	dollarPattern = regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
	termPattern   = regexp.MustCompile(`(?i)(\d+)\s*(?:month|year)s?`)
)

// annotateNumeric extracts rates, dollar amounts and loan terms from a
// chunk. NumericData is attached only when at least one list is non-empty.
func annotateNumeric(c *document.Chunk) {
	var data document.NumericData

	for _, m := range ratePattern.FindAllStringSubmatch(c.Content, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			data.Rates = append(data.Rates, v)
		}
	}
	for _, m := range dollarPattern.FindAllStringSubmatch(c.Content, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			data.DollarAmounts = append(data.DollarAmounts, v)
		}
	}
	for _, m := range termPattern.FindAllStringSubmatch(c.Content, -1) {
		if v, err := strconv.Atoi(m[1]); err == nil {
			data.Terms = append(data.Terms, v)
		}
	}

	if !data.Empty() {
		c.Numeric = &data
	}
}
