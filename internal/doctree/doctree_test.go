package doctree

import (
	"bytes"
	"testing"
)

func sampleTree() *Tree {
	return &Tree{Chapters: []*Node{
		{Title: "General", Children: []*Node{
			{Title: "Overview"},
			{Title: "Security Levels"},
		}},
		{Title: "Cryptographic Module Specification", Children: []*Node{
			{Title: "Description"},
		}},
	}}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    Position
		wantErr bool
	}{
		{"2", Position{Chapter: 2}, false},
		{"2.5", Position{Chapter: 2, Sub: 5}, false},
		{" 10.4 ", Position{Chapter: 10, Sub: 4}, false},
		{"0.1", Position{}, true},
		{"x.1", Position{}, true},
		{"2.y", Position{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePosition(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if got.String() != trimmed(tt.in) {
				t.Errorf("String() = %q, want %q", got.String(), trimmed(tt.in))
			}
		})
	}
}

func trimmed(s string) string {
	return string(bytes.TrimSpace([]byte(s)))
}

func TestTree_PositionsOrder(t *testing.T) {
	got := sampleTree().Positions()
	want := []Position{{1, 0}, {1, 1}, {1, 2}, {2, 0}, {2, 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %d positions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTree_At(t *testing.T) {
	tree := sampleTree()
	if n := tree.At(Position{Chapter: 1, Sub: 2}); n == nil || n.Title != "Security Levels" {
		t.Errorf("At(1.2) = %+v", n)
	}
	if n := tree.At(Position{Chapter: 2}); n == nil || n.Title != "Cryptographic Module Specification" {
		t.Errorf("At(2) = %+v", n)
	}
	for _, p := range []Position{{0, 0}, {3, 0}, {1, 3}} {
		if n := tree.At(p); n != nil {
			t.Errorf("At(%v) = %+v, want nil", p, n)
		}
	}
}

func TestTree_CloneIsDeep(t *testing.T) {
	orig := sampleTree()
	c := orig.Clone()
	c.At(Position{Chapter: 1, Sub: 1}).Content = "changed"
	c.At(Position{Chapter: 1, Sub: 1}).Found = true

	if n := orig.At(Position{Chapter: 1, Sub: 1}); n.Content != "" || n.Found {
		t.Errorf("clone mutation leaked into original: %+v", n)
	}
}

func TestTree_JSON(t *testing.T) {
	tree := sampleTree()
	tree.At(Position{Chapter: 1, Sub: 1}).Content = "line one\nline two"
	tree.At(Position{Chapter: 1, Sub: 1}).Found = true

	var buf bytes.Buffer
	if err := tree.WriteJSON(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"subchapters"`)) {
		t.Errorf("expected subchapters key in %s", buf.String())
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := got.At(Position{Chapter: 1, Sub: 1})
	if !n.Found || n.Content != "line one\nline two" {
		t.Errorf("unexpected node after decode: %+v", n)
	}
}

func TestReadJSON_Empty(t *testing.T) {
	if _, err := ReadJSON(bytes.NewBufferString(`{"chapters":[]}`)); err == nil {
		t.Fatal("expected error for tree without chapters")
	}
}
