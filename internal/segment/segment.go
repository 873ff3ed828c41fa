// Package segment assigns the lines of a document to the sections of a
// fixed chapter template.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/secpolicy/internal/doctree"
	"github.com/dgallion1/secpolicy/internal/fuzzy"
)

// DefaultMaxLineLength caps the length of lines considered as headings.
const DefaultMaxLineLength = 200

// Heading is a recognized section heading.
type Heading struct {
	Line int              `json:"line"` // 1-based input line number
	Pos  doctree.Position `json:"position"`
	Text string           `json:"text"`
}

// Result is the outcome of one segmentation run.
type Result struct {
	Tree     *doctree.Tree
	Headings []Heading
}

// Engine segments documents against a template tree. The template is
// never modified; each run works on its own clone.
type Engine struct {
	template *doctree.Tree
	patterns []fuzzy.Pattern

	// MaxLineLength is the longest line, in runes, still tested as a heading.
	MaxLineLength int
}

// NewEngine compiles one heading pattern per template position.
func NewEngine(template *doctree.Tree, m fuzzy.Matcher) *Engine {
	e := &Engine{template: template, MaxLineLength: DefaultMaxLineLength}
	for _, p := range template.Positions() {
		e.patterns = append(e.patterns, m.Compile(p, template.At(p).Title))
	}
	return e
}

// Segment runs the line state machine over text.
func (e *Engine) Segment(text string) *Result {
	tree := e.template.Clone()
	res := &Result{Tree: tree}

	var (
		cur    doctree.Position
		inside bool
		body   = make(map[*doctree.Node][]string)
	)

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if e.isCandidate(trimmed) {
			if p, ok := e.match(trimmed, cur.Chapter); ok {
				tree.At(p).Found = true
				cur = p
				inside = true
				res.Headings = append(res.Headings, Heading{Line: i + 1, Pos: p, Text: trimmed})
				continue
			}
		}

		if !inside {
			continue
		}
		node := tree.At(cur)
		body[node] = append(body[node], strings.TrimRightFunc(line, unicode.IsSpace))
	}

	for node, lines := range body {
		node.Content = strings.Join(lines, "\n")
	}
	return res
}

// match returns the first position, in document order, whose title matches
// line. Positions in chapters before minChapter are not considered.
func (e *Engine) match(line string, minChapter int) (doctree.Position, bool) {
	for _, p := range e.patterns {
		if p.Pos.Chapter < minChapter {
			continue
		}
		if _, ok := p.Match(line); ok {
			return p.Pos, true
		}
	}
	return doctree.Position{}, false
}

// isCandidate reports whether a trimmed line may be a heading: it starts
// with '#' or with something other than a letter, such as "2.3".
func (e *Engine) isCandidate(trimmed string) bool {
	limit := e.MaxLineLength
	if limit <= 0 {
		limit = DefaultMaxLineLength
	}
	if utf8.RuneCountInString(trimmed) > limit {
		return false
	}
	if trimmed[0] == '#' {
		return true
	}
	r, _ := utf8.DecodeRuneInString(trimmed)
	return !unicode.IsLetter(r)
}
