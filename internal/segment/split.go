package segment

import (
	"sort"
	"strings"

	"github.com/dgallion1/secpolicy/internal/fuzzy"
)

// Split is the named sub-ranges carved out of one section's text.
type Split struct {
	Sections map[string]string
	Found    []string // names in order of appearance
}

// Splitter locates named table captions that are not part of the section
// template, such as the several tables listed under "Algorithms".
type Splitter struct {
	Matcher       fuzzy.Matcher
	MaxLineLength int
}

type anchor struct {
	name      string
	distance  int
	trailing  bool // words follow the name on the caption line
	start     int  // offset of the caption line
	bodyStart int  // offset just past the caption's line break
}

// outranks orders two caption lines found for the same name: fewer edits,
// then a line holding only the name, then the earlier line.
func (a anchor) outranks(b anchor) bool {
	if a.distance != b.distance {
		return a.distance < b.distance
	}
	if a.trailing != b.trailing {
		return !a.trailing
	}
	return a.start < b.start
}

// claims orders names competing for one caption line: a line holding only
// the name beats one with more words after it, then fewer edits win. This
// keeps "Allowed Algorithms" off the "Allowed Algorithms with No Security
// Claimed" caption.
func (a anchor) claims(b anchor) bool {
	if a.trailing != b.trailing {
		return !a.trailing
	}
	return a.distance < b.distance
}

// Split finds the best caption line for each name and returns the text
// between it and the next caption found. Captions are anchored at the
// start of a line and may carry trailing words.
func (s Splitter) Split(text string, names []string) Split {
	limit := s.MaxLineLength
	if limit <= 0 {
		limit = DefaultMaxLineLength
	}

	best := make(map[string]anchor, len(names))
	offset := 0
	for offset < len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		next := len(text)
		if end >= 0 {
			end += offset
			next = end + 1
		} else {
			end = len(text)
		}

		line := strings.TrimSpace(text[offset:end])
		if line != "" && len([]rune(line)) <= limit {
			for _, a := range s.lineAnchors(line, names, offset, next) {
				if prev, seen := best[a.name]; seen && !a.outranks(prev) {
					continue
				}
				best[a.name] = a
			}
		}
		offset = next
	}

	anchors := make([]anchor, 0, len(best))
	for _, a := range best {
		anchors = append(anchors, a)
	}
	sort.SliceStable(anchors, func(i, j int) bool {
		if anchors[i].start != anchors[j].start {
			return anchors[i].start < anchors[j].start
		}
		return indexOf(names, anchors[i].name) < indexOf(names, anchors[j].name)
	})

	out := Split{Sections: make(map[string]string, len(anchors))}
	for i, a := range anchors {
		stop := len(text)
		if i+1 < len(anchors) {
			stop = max(anchors[i+1].start, a.bodyStart)
		}
		start := min(a.bodyStart, stop)
		out.Sections[a.name] = strings.TrimSpace(text[start:stop])
		out.Found = append(out.Found, a.name)
	}
	return out
}

// lineAnchors matches line against every name and keeps the names with the
// strongest claim on it.
func (s Splitter) lineAnchors(line string, names []string, start, bodyStart int) []anchor {
	var found []anchor
	for _, name := range names {
		m, ok := s.Matcher.MatchName(line, name)
		if !ok {
			continue
		}
		found = append(found, anchor{
			name:      name,
			distance:  m.Distance,
			trailing:  m.Trailing,
			start:     start,
			bodyStart: bodyStart,
		})
	}
	if len(found) < 2 {
		return found
	}
	top := found[0]
	for _, a := range found[1:] {
		if a.claims(top) {
			top = a
		}
	}
	kept := found[:0]
	for _, a := range found {
		if !top.claims(a) {
			kept = append(kept, a)
		}
	}
	return kept
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return len(names)
}
