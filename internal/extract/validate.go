package extract

import (
	"github.com/dgallion1/secpolicy/internal/doctree"
)

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one missing or empty section.
type Issue struct {
	Position string   `json:"position"`
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Report aggregates validation results for one document tree.
type Report struct {
	Errors int     `json:"errors"`
	Empty  int     `json:"empty"` // subchapters with no content, optional or not
	Issues []Issue `json:"issues,omitempty"`
}

// Warnings counts the warning-level issues.
func (r Report) Warnings() int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// Validate walks a segmented tree and reports missing chapters and missing
// or empty subchapters. A chapter that was not found is an error even when
// it is marked optional; optional only relaxes subchapters. It never
// modifies the tree.
func Validate(tree *doctree.Tree) Report {
	var r Report
	add := func(p doctree.Position, n *doctree.Node, sev Severity, msg string) {
		if sev == SeverityError {
			r.Errors++
		}
		r.Issues = append(r.Issues, Issue{Position: p.String(), Title: n.Title, Severity: sev, Message: msg})
	}

	tree.Walk(func(p doctree.Position, n *doctree.Node) {
		if p.IsChapter() {
			if !n.Found {
				add(p, n, SeverityError, "chapter not found")
			}
			return
		}

		empty := n.Content == ""
		if empty {
			r.Empty++
		}
		switch {
		case !n.Optional && !n.Found:
			add(p, n, SeverityError, "subchapter not found")
		case !n.Optional && empty:
			add(p, n, SeverityError, "subchapter is empty")
		case n.Optional && empty:
			add(p, n, SeverityWarning, "optional subchapter is empty")
		}
	})
	return r
}
