package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/secpolicy/internal/mdtable"
)

const policyHTML = `<html>
<head><title>Acme Security Policy</title><style>h2 { color: red; }</style></head>
<body>
<nav>Home | Policies</nav>
<h2>2.5 Algorithms</h2>
<p>Approved Algorithms</p>
<table>
<tr><th>Algorithm</th><th>CAVP Cert</th></tr>
<tr><td>AES-CBC</td><td>A3548</td></tr>
</table>
<script>var tracking = true;</script>
<footer>Page 12</footer>
</body>
</html>`

func TestHTMLParser(t *testing.T) {
	p := NewHTMLParser()
	doc, err := p.Parse(strings.NewReader(policyHTML), "4282.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Acme Security Policy" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Name != "4282" {
		t.Errorf("name = %q", doc.Name)
	}
	if !strings.Contains(doc.Text, "## 2.5 Algorithms") {
		t.Errorf("heading missing: %q", doc.Text)
	}
	for _, banned := range []string{"tracking", "Policies", "Page 12", "color"} {
		if strings.Contains(doc.Text, banned) {
			t.Errorf("text should not contain %q: %q", banned, doc.Text)
		}
	}

	tables := mdtable.NewReader().Read(doc.Text)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d in %q", len(tables), doc.Text)
	}
	if !tables[0].Header.Equal(mdtable.Row{"Algorithm", "CAVP Cert"}) {
		t.Errorf("header = %q", tables[0].Header)
	}
	if len(tables[0].Rows) != 1 || tables[0].Rows[0][0] != "AES-CBC" {
		t.Errorf("rows = %q", tables[0].Rows)
	}
}
