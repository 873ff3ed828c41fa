// Package extract runs the per-document pipeline: segmentation, table
// construction and validation.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/secpolicy/internal/doctree"
	"github.com/dgallion1/secpolicy/internal/fuzzy"
	"github.com/dgallion1/secpolicy/internal/mdtable"
	"github.com/dgallion1/secpolicy/internal/schema"
	"github.com/dgallion1/secpolicy/internal/segment"
)

// ErrInvalidEncoding is returned for input that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("input is not valid UTF-8")

// Options tune matching. Zero values select the defaults.
type Options struct {
	MaxEdits         int
	MaxHeadingLength int
}

// Result is everything recovered from one document.
type Result struct {
	Name     string            `json:"name"`
	Tree     *doctree.Tree     `json:"tree"`
	Headings []segment.Heading `json:"headings"`
	Tables   []TableResult     `json:"tables"`
	Report   Report            `json:"report"`
}

// TablesFound counts registry entries with at least one data row.
func (r *Result) TablesFound() int {
	n := 0
	for _, t := range r.Tables {
		if t.Found {
			n++
		}
	}
	return n
}

// RecordCount totals constructed records across all tables.
func (r *Result) RecordCount() int {
	n := 0
	for _, t := range r.Tables {
		n += len(t.Records)
	}
	return n
}

// SkippedRows totals rows that failed record construction.
func (r *Result) SkippedRows() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Skipped
	}
	return n
}

// Extractor is safe for concurrent use; every Run works on its own tree.
type Extractor struct {
	schema *schema.Schema
	engine *segment.Engine
	tables *tableBuilder
	log    *slog.Logger
}

// New builds an Extractor for the given template.
func New(s *schema.Schema, opts Options, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	m := fuzzy.Matcher{MaxEdits: opts.MaxEdits}
	engine := segment.NewEngine(s.Sections, m)
	if opts.MaxHeadingLength > 0 {
		engine.MaxLineLength = opts.MaxHeadingLength
	}
	return &Extractor{
		schema: s,
		engine: engine,
		tables: &tableBuilder{
			reader:   mdtable.NewReader(),
			splitter: segment.Splitter{Matcher: m, MaxLineLength: engine.MaxLineLength},
		},
		log: log,
	}
}

// Run segments text, builds its tables and validates the tree.
func (e *Extractor) Run(ctx context.Context, name, text string) (*Result, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%s: %w", name, ErrInvalidEncoding)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	seg := e.engine.Segment(text)
	for _, h := range seg.Headings {
		e.log.Debug("heading matched", "name", name, "line", h.Line, "position", h.Pos.String(), "text", h.Text)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seg.Tree.Title = name

	res, err := e.RunTree(ctx, name, seg.Tree)
	if err != nil {
		return nil, err
	}
	res.Headings = seg.Headings
	return res, nil
}

// RunTree builds tables and validates an already segmented tree, such as
// one read back from an export.
func (e *Extractor) RunTree(ctx context.Context, name string, tree *doctree.Tree) (*Result, error) {
	tables := e.tables.build(tree, e.schema.Tables)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Name:   name,
		Tree:   tree,
		Tables: tables,
		Report: Validate(tree),
	}
	e.log.Info("document extracted",
		"name", name,
		"errors", res.Report.Errors,
		"empty", res.Report.Empty,
		"tables_found", res.TablesFound(),
		"records", res.RecordCount(),
		"skipped_rows", res.SkippedRows(),
	)
	return res, nil
}
