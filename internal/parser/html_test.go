package parser

import (
	"strings"
	"testing"
)

func TestHTMLParserHeadingsAndText(t *testing.T) {
	input := `<html><head><title>Policy Manual</title></head><body>
<h1>Lending Policy</h1>
<p>All loans require approval.</p>
<h2>Exceptions</h2>
<p>See Table 3.1 for thresholds.</p>
</body></html>`

	doc, err := (&HTMLParser{}).Parse(strings.NewReader(input), "policy.html")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Title != "Policy Manual" {
		t.Errorf("Title = %q, want Policy Manual", doc.Title)
	}
	if !strings.Contains(doc.Text, "# Lending Policy") {
		t.Errorf("missing h1 line:\n%s", doc.Text)
	}
	if !strings.Contains(doc.Text, "## Exceptions") {
		t.Errorf("missing h2 line:\n%s", doc.Text)
	}
	if !strings.Contains(doc.Text, "See Table 3.1 for thresholds.") {
		t.Errorf("missing paragraph:\n%s", doc.Text)
	}
}

func TestHTMLParserTable(t *testing.T) {
	input := `<body><table>
<tr><th>Tier</th><th>Rate</th></tr>
<tr><td>A</td><td>7.5%</td></tr>
<tr><td>B</td><td>8.0%</td></tr>
</table></body>`

	doc, err := (&HTMLParser{}).Parse(strings.NewReader(input), "rates.html")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, row := range []string{"|Tier|Rate|", "|---|---|", "|A|7.5%|", "|B|8.0%|"} {
		if !strings.Contains(doc.Text, row) {
			t.Errorf("missing row %q:\n%s", row, doc.Text)
		}
	}
}

func TestHTMLParserSkipsChrome(t *testing.T) {
	input := `<body>
<nav>Home | About</nav>
<script>alert("hi")</script>
<p>Real content.</p>
<footer>Copyright</footer>
</body>`

	doc, err := (&HTMLParser{}).Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if strings.Contains(doc.Text, "Home | About") {
		t.Error("nav content should be skipped")
	}
	if strings.Contains(doc.Text, "alert") {
		t.Error("script content should be skipped")
	}
	if strings.Contains(doc.Text, "Copyright") {
		t.Error("footer content should be skipped")
	}
	if !strings.Contains(doc.Text, "Real content.") {
		t.Errorf("body paragraph lost:\n%s", doc.Text)
	}
}
