package doctree

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Position addresses a chapter (Sub == 0) or one of its subchapters.
type Position struct {
	Chapter int // 1-based chapter index
	Sub     int // 1-based subchapter index, 0 for the chapter itself
}

func (p Position) String() string {
	if p.Sub == 0 {
		return strconv.Itoa(p.Chapter)
	}
	return strconv.Itoa(p.Chapter) + "." + strconv.Itoa(p.Sub)
}

// IsChapter reports whether p addresses a chapter node.
func (p Position) IsChapter() bool { return p.Sub == 0 }

func (p Position) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePosition parses "2" or "2.5".
func ParsePosition(s string) (Position, error) {
	chStr, subStr, hasSub := strings.Cut(strings.TrimSpace(s), ".")
	ch, err := strconv.Atoi(chStr)
	if err != nil || ch < 1 {
		return Position{}, fmt.Errorf("invalid position %q", s)
	}
	p := Position{Chapter: ch}
	if hasSub {
		sub, err := strconv.Atoi(subStr)
		if err != nil || sub < 0 {
			return Position{}, fmt.Errorf("invalid position %q", s)
		}
		p.Sub = sub
	}
	return p, nil
}

// Node is a chapter or subchapter. Both levels share the same shape.
type Node struct {
	Title    string  `json:"title"`
	Optional bool    `json:"optional"`
	Found    bool    `json:"found"`
	Content  string  `json:"content"`
	Children []*Node `json:"subchapters,omitempty"`
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := &Node{
		Title:    n.Title,
		Optional: n.Optional,
		Found:    n.Found,
		Content:  n.Content,
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Tree is the section hierarchy of one document.
type Tree struct {
	Title    string  `json:"title,omitempty"`
	Chapters []*Node `json:"chapters"`
}

// Clone returns a deep copy of t.
func (t *Tree) Clone() *Tree {
	c := &Tree{Title: t.Title, Chapters: make([]*Node, len(t.Chapters))}
	for i, ch := range t.Chapters {
		c.Chapters[i] = ch.Clone()
	}
	return c
}

// At returns the node at p, or nil if p is outside the tree.
func (t *Tree) At(p Position) *Node {
	if p.Chapter < 1 || p.Chapter > len(t.Chapters) {
		return nil
	}
	ch := t.Chapters[p.Chapter-1]
	if p.Sub == 0 {
		return ch
	}
	if p.Sub < 0 || p.Sub > len(ch.Children) {
		return nil
	}
	return ch.Children[p.Sub-1]
}

// Positions lists every position in document order: each chapter followed
// by its subchapters.
func (t *Tree) Positions() []Position {
	var out []Position
	for i, ch := range t.Chapters {
		out = append(out, Position{Chapter: i + 1})
		for j := range ch.Children {
			out = append(out, Position{Chapter: i + 1, Sub: j + 1})
		}
	}
	return out
}

// Walk calls fn for every node in document order.
func (t *Tree) Walk(fn func(Position, *Node)) {
	for _, p := range t.Positions() {
		fn(p, t.At(p))
	}
}

// WriteJSON writes t as indented JSON.
func (t *Tree) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(t)
}

// ReadJSON decodes a tree previously written by WriteJSON.
func ReadJSON(r io.Reader) (*Tree, error) {
	var t Tree
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	if len(t.Chapters) == 0 {
		return nil, fmt.Errorf("decode tree: no chapters")
	}
	return &t, nil
}
