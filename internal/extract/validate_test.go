package extract

import (
	"testing"

	"github.com/dgallion1/secpolicy/internal/doctree"
)

func validationTree() *doctree.Tree {
	return &doctree.Tree{Chapters: []*doctree.Node{
		{Title: "General", Found: true, Children: []*doctree.Node{
			{Title: "Overview", Found: true, Content: "text"},
			{Title: "Security Levels"},
			{Title: "Additional Information", Optional: true},
		}},
		{Title: "Cryptographic Module Specification", Found: true, Children: []*doctree.Node{
			{Title: "Description", Found: true},
			{Title: "Industry Protocols", Optional: true, Found: true, Content: "TLS"},
		}},
		{Title: "Cryptographic Module Interfaces", Children: []*doctree.Node{
			{Title: "Ports and Interfaces", Found: true, Content: "ports"},
		}},
	}}
}

func TestValidate(t *testing.T) {
	r := Validate(validationTree())

	// 1.2 not found, 2.1 empty, chapter 3 not found.
	if r.Errors != 3 {
		t.Errorf("expected 3 errors, got %d: %+v", r.Errors, r.Issues)
	}
	// 1.2, 1.3 and 2.1 have no content.
	if r.Empty != 3 {
		t.Errorf("expected 3 empty subchapters, got %d", r.Empty)
	}
	if r.Warnings() != 1 {
		t.Errorf("expected 1 warning, got %d", r.Warnings())
	}

	want := map[string]Severity{
		"1.2": SeverityError,
		"1.3": SeverityWarning,
		"2.1": SeverityError,
		"3":   SeverityError,
	}
	for _, is := range r.Issues {
		sev, ok := want[is.Position]
		if !ok {
			t.Errorf("unexpected issue: %+v", is)
			continue
		}
		if is.Severity != sev {
			t.Errorf("%s: severity %s, want %s", is.Position, is.Severity, sev)
		}
	}
}

func TestValidate_MissingRequiredVsOptional(t *testing.T) {
	base := func(optional bool) *doctree.Tree {
		return &doctree.Tree{Chapters: []*doctree.Node{
			{Title: "General", Found: true, Children: []*doctree.Node{
				{Title: "Overview", Found: true, Content: "x"},
				{Title: "Notes", Optional: optional},
			}},
		}}
	}

	if got := Validate(base(false)).Errors; got != 1 {
		t.Errorf("missing required subchapter: %d errors, want 1", got)
	}
	if got := Validate(base(true)).Errors; got != 0 {
		t.Errorf("missing optional subchapter: %d errors, want 0", got)
	}
}

func TestValidate_MissingChapterIsAlwaysAnError(t *testing.T) {
	tree := &doctree.Tree{Chapters: []*doctree.Node{{Title: "Appendix", Optional: true}}}
	r := Validate(tree)
	if r.Errors != 1 || r.Warnings() != 0 {
		t.Errorf("got %+v", r)
	}
	if len(r.Issues) != 1 || r.Issues[0].Severity != SeverityError || r.Issues[0].Position != "1" {
		t.Errorf("issues = %+v", r.Issues)
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	tree := validationTree()
	before := tree.Clone()
	Validate(tree)
	for _, p := range tree.Positions() {
		a, b := tree.At(p), before.At(p)
		if a.Found != b.Found || a.Content != b.Content {
			t.Errorf("node %s changed", p)
		}
	}
}
