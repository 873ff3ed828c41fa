// Package fuzzy decides whether a noisy heading line denotes an expected
// template title, within a bounded number of character edits.
package fuzzy

import (
	"strings"
	"unicode"

	"github.com/dgallion1/secpolicy/internal/doctree"
)

// DefaultMaxEdits is the tolerance used when a Matcher is left at zero.
const DefaultMaxEdits = 1

// Matcher holds the edit tolerance. It is stateless and safe for concurrent use.
type Matcher struct {
	MaxEdits int
}

func (m Matcher) budget() int {
	if m.MaxEdits <= 0 {
		return DefaultMaxEdits
	}
	return m.MaxEdits
}

// Squash lowercases s and drops whitespace and every dash variant
// (hyphen, en dash, em dash, figure dash).
func Squash(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isSquashed(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func isDash(r rune) bool {
	switch r {
	case '-', '‒', '–', '—':
		return true
	}
	return false
}

// Distance returns the Levenshtein distance between a and b over runes.
// Once the distance is known to exceed limit it returns limit+1.
func Distance(a, b string, limit int) int {
	ra, rb := []rune(a), []rune(b)
	if abs(len(ra)-len(rb)) > limit {
		return limit + 1
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			rowMin = min(rowMin, cur[j])
		}
		if rowMin > limit {
			return limit + 1
		}
		prev, cur = cur, prev
	}
	if prev[len(rb)] > limit {
		return limit + 1
	}
	return prev[len(rb)]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Pattern is a heading title prepared once per position.
type Pattern struct {
	Pos   doctree.Position
	label string
	title string
	max   int
}

// Compile prepares title at pos for repeated matching.
func (m Matcher) Compile(pos doctree.Position, title string) Pattern {
	return Pattern{
		Pos:   pos,
		label: pos.String(),
		title: trimPunct(Squash(title)),
		max:   m.budget(),
	}
}

// MatchHeading is Compile followed by Match.
func (m Matcher) MatchHeading(line string, pos doctree.Position, title string) (int, bool) {
	return m.Compile(pos, title).Match(line)
}

// Match reports whether line is a heading for the pattern's title, and the
// number of edits it took. The match is anchored at the start of the line.
// Text after the title is allowed when it begins at a word boundary, unless
// it is a dot leader as in a table of contents. The numeric label, when
// present, counts against the same budget as the title. Table rows never
// match.
func (p Pattern) Match(line string) (int, bool) {
	n := stripMarkers(normalize(line, isSquashed))
	if n.startsWith('|') {
		return p.max + 1, false
	}

	label, rest := splitLabel(n)
	cost := 0
	if label != "" {
		cost = Distance(strings.TrimRight(label, "."), p.label, p.max)
		if cost > p.max {
			return cost, false
		}
	}

	rest = rest.trimLeft(".:)")
	left := p.max - cost
	d, tail := matchPrefix(rest, p.title, left)
	if d > left {
		return cost + d, false
	}
	if isLeader(tail) {
		return cost + d, false
	}
	return cost + d, true
}

// NameMatch describes how a caption line matched a table name.
type NameMatch struct {
	Distance int
	// Trailing is set when words follow the name on the line.
	Trailing bool
}

// MatchName reports whether line starts with a caption for a named table
// inside a section. Commas, markdown emphasis and a leading "Table N:" are
// ignored.
func (m Matcher) MatchName(line, name string) (NameMatch, bool) {
	limit := m.budget()
	n := normalize(line, func(r rune) bool { return isSquashed(r) || r == ',' })
	n = n.trimLeft("#*_>")
	if n.startsWith('|') {
		return NameMatch{Distance: limit + 1}, false
	}
	n = stripTableCaption(n).trimLeft("*_")

	want := trimPunct(dropCommas(Squash(name)))
	d, tail := matchPrefix(n, want, limit)
	if d > limit {
		return NameMatch{Distance: d}, false
	}
	return NameMatch{Distance: d, Trailing: hasWord(tail)}, true
}

// normalized is a squashed line that remembers where the words of its
// source ended, so a prefix match can stop on a word boundary.
type normalized struct {
	runes []rune
	cut   []bool // cut[i]: runes[:i] ends on a word boundary
}

func normalize(s string, drop func(rune) bool) normalized {
	src := []rune(s)
	n := normalized{cut: []bool{true}}
	for i, r := range src {
		if drop(r) {
			continue
		}
		n.runes = append(n.runes, unicode.ToLower(r))
		boundary := i+1 == len(src) || !isWordRune(r) || !isWordRune(src[i+1])
		n.cut = append(n.cut, boundary)
	}
	return n
}

func (n normalized) from(i int) normalized {
	return normalized{runes: n.runes[i:], cut: n.cut[i:]}
}

func (n normalized) startsWith(r rune) bool {
	return len(n.runes) > 0 && n.runes[0] == r
}

func (n normalized) trimLeft(set string) normalized {
	i := 0
	for i < len(n.runes) && strings.ContainsRune(set, n.runes[i]) {
		i++
	}
	return n.from(i)
}

func (n normalized) cutPrefix(prefix string) (normalized, bool) {
	p := []rune(prefix)
	if len(p) > len(n.runes) || string(n.runes[:len(p)]) != prefix {
		return n, false
	}
	return n.from(len(p)), true
}

// matchPrefix returns the smallest distance between want and a prefix of n
// ending on a word boundary, and the text left after that prefix.
func matchPrefix(n normalized, want string, limit int) (int, string) {
	w := len([]rune(want))
	best, bestK := limit+1, -1
	for k := max(0, w-limit); k <= min(len(n.runes), w+limit); k++ {
		if !n.cut[k] {
			continue
		}
		if d := Distance(string(n.runes[:k]), want, limit); d < best {
			best, bestK = d, k
		}
	}
	if bestK < 0 {
		return limit + 1, ""
	}
	return best, string(n.runes[bestK:])
}

func isSquashed(r rune) bool { return unicode.IsSpace(r) || isDash(r) }

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func isLeader(tail string) bool {
	return strings.Contains(tail, "...") || strings.Contains(tail, "…")
}

func hasWord(s string) bool {
	return strings.IndexFunc(s, isWordRune) >= 0
}

func stripMarkers(n normalized) normalized {
	n = n.trimLeft("#")
	if rest, ok := n.cutPrefix("section"); ok && len(rest.runes) > 0 && isDigitRune(rest.runes[0]) {
		return rest
	}
	return n
}

func splitLabel(n normalized) (string, normalized) {
	i := 0
	for i < len(n.runes) && (isDigitRune(n.runes[i]) || n.runes[i] == '.') {
		i++
	}
	return string(n.runes[:i]), n.from(i)
}

func stripTableCaption(n normalized) normalized {
	rest, ok := n.cutPrefix("table")
	if !ok {
		return n
	}
	i := 0
	for i < len(rest.runes) && isDigitRune(rest.runes[i]) {
		i++
	}
	if i == 0 {
		return n
	}
	return rest.from(i).trimLeft(":.")
}

func dropCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

func trimPunct(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func isDigitRune(r rune) bool { return r >= '0' && r <= '9' }
