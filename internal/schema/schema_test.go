package schema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/secpolicy/internal/doctree"
	"github.com/dgallion1/secpolicy/internal/records"
)

func TestDefault(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(s.Sections.Chapters); got != 12 {
		t.Errorf("expected 12 chapters, got %d", got)
	}
	if n := s.Sections.At(doctree.Position{Chapter: 2, Sub: 5}); n == nil || n.Title != "Algorithms" {
		t.Errorf("2.5 = %+v, want Algorithms", n)
	}
	if n := s.Sections.At(doctree.Position{Chapter: 2, Sub: 12}); n == nil || !n.Optional {
		t.Errorf("2.12 should be optional: %+v", n)
	}
	if got, want := len(s.Tables), len(records.DefaultRegistry()); got != want {
		t.Errorf("expected %d tables, got %d", want, got)
	}
	for i, entry := range records.DefaultRegistry() {
		if s.Tables[i] != entry {
			t.Errorf("table %d = %+v, want %+v", i, s.Tables[i], entry)
		}
	}
}

func TestNewTree_Independent(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, b := s.NewTree(), s.NewTree()
	a.At(doctree.Position{Chapter: 1, Sub: 1}).Content = "x"
	if b.At(doctree.Position{Chapter: 1, Sub: 1}).Content != "" {
		t.Error("trees share nodes")
	}
	if s.Sections.At(doctree.Position{Chapter: 1, Sub: 1}).Content != "" {
		t.Error("template mutated")
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"no chapters", "title: x\n"},
		{"unknown field", "chapters:\n  - title: A\n    color: red\n"},
		{"unknown kind", "chapters:\n  - title: A\n    subchapters:\n      - title: B\ntables:\n  - {kind: widget, chapter: 1, subchapter: 1}\n"},
		{"bad position", "chapters:\n  - title: A\ntables:\n  - {kind: role, chapter: 2, subchapter: 1}\n"},
		{"negative sub", "chapters:\n  - title: A\ntables:\n  - {kind: role, chapter: 1, subchapter: -1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmpl.json")
	doc := `{
  "title": "Mini",
  "chapters": [
    {"title": "General", "subchapters": [{"title": "Overview"}, {"title": "Notes", "optional": true}]}
  ],
  "tables": [{"kind": "security_level", "chapter": 1, "subchapter": 1}]
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Sections.Title != "Mini" || len(s.Sections.Chapters) != 1 {
		t.Errorf("unexpected sections: %+v", s.Sections)
	}
	if !s.Sections.At(doctree.Position{Chapter: 1, Sub: 2}).Optional {
		t.Error("expected Notes to be optional")
	}
	if len(s.Tables) != 1 || s.Tables[0].Kind != records.KindSecurityLevel {
		t.Errorf("unexpected tables: %+v", s.Tables)
	}
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Sections.Chapters) != 12 {
		t.Errorf("expected default schema")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestMarshal_Reloads(t *testing.T) {
	s, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := s.Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "multi_page: true") {
		t.Errorf("expected multi_page in output")
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(again.Tables) != len(s.Tables) || len(again.Sections.Positions()) != len(s.Sections.Positions()) {
		t.Error("reparsed schema differs in size")
	}
}
