// Package mdtable reads pipe-delimited tables out of section text.
package mdtable

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Row is the trimmed cell text of one table row, in column order.
type Row []string

// Equal reports whether two rows have the same cells.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i] != o[i] {
			return false
		}
	}
	return true
}

// IsSeparator reports whether every cell is non-empty and consists only of
// '-', ':' and spaces.
func (r Row) IsSeparator() bool {
	if len(r) == 0 {
		return false
	}
	for _, c := range r {
		if c == "" || strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

// Table is one logical table. The header is kept apart from the data rows.
type Table struct {
	Header Row   `json:"header"`
	Rows   []Row `json:"rows"`
}

// All returns the header followed by the data rows.
func (t Table) All() []Row {
	return append([]Row{t.Header}, t.Rows...)
}

// Reader parses GFM pipe tables with goldmark.
type Reader struct {
	md goldmark.Markdown
}

// NewReader returns a Reader with the GFM table extension enabled.
func NewReader() *Reader {
	return &Reader{md: goldmark.New(goldmark.WithExtensions(extension.Table))}
}

// Read returns one Table per pipe block in text. A repeated header or
// separator inside a block is dropped.
func (r *Reader) Read(s string) []Table {
	src := []byte(isolateBlocks(s))
	doc := r.md.Parser().Parse(text.NewReader(src))

	var tables []Table
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		tbl, ok := n.(*east.Table)
		if !ok {
			continue
		}
		tables = append(tables, collect(tbl, src))
	}
	return tables
}

func collect(tbl *east.Table, src []byte) Table {
	var out Table
	haveHeader := false
	for n := tbl.FirstChild(); n != nil; n = n.NextSibling() {
		switch n.Kind() {
		case east.KindTableHeader:
			row := cells(n, src)
			if !haveHeader {
				out.Header = row
				haveHeader = true
			}
			// A second header-styled row is a page-break repeat.
		case east.KindTableRow:
			row := cells(n, src)
			if row.Equal(out.Header) || row.IsSeparator() {
				continue
			}
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// cells reads the raw text of each cell. goldmark pads short rows with
// cells that carry no source segment and drops cells beyond the header
// width. Both are undone here so the caller sees the real column count.
func cells(row ast.Node, src []byte) Row {
	var out Row
	lineStart := -1
	for c := row.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() != east.KindTableCell {
			continue
		}
		lines := c.Lines()
		if lines.Len() == 0 {
			continue
		}
		if lineStart < 0 {
			lineStart = lines.At(0).Start
		}
		out = append(out, strings.TrimSpace(string(lines.Value(src))))
	}
	if lineStart < 0 {
		return out
	}
	if line := sourceLine(src, lineStart); countCells(line) > len(out) {
		return splitCells(line)
	}
	return out
}

// sourceLine returns the line of src that contains offset.
func sourceLine(src []byte, offset int) string {
	start := bytes.LastIndexByte(src[:offset], '\n') + 1
	end := bytes.IndexByte(src[offset:], '\n')
	if end < 0 {
		return string(src[start:])
	}
	return string(src[start : offset+end])
}

// Merge groups tables with identical headers and concatenates their data
// rows in encounter order. Groups keep the order their header was first seen.
func Merge(tables []Table) []Table {
	var out []Table
	index := make(map[string]int)
	for _, t := range tables {
		key := strings.Join(t.Header, "\x00")
		if i, ok := index[key]; ok {
			out[i].Rows = append(out[i].Rows, t.Rows...)
			continue
		}
		index[key] = len(out)
		out = append(out, Table{Header: t.Header, Rows: append([]Row(nil), t.Rows...)})
	}
	return out
}

// isolateBlocks keeps only runs of pipe lines, separated by blank lines so
// surrounding prose cannot fuse into a table. A block starts at a line
// beginning with '|', or at a line with a pipe directly above a delimiter
// row; once open, any line with an unescaped pipe continues it. Rows get a
// leading pipe so markdown block syntax inside a cell cannot end the table.
// The line after the header is replaced by a delimiter row sized to the
// header, synthesizing one when the source has none.
func isolateBlocks(s string) string {
	var b strings.Builder
	var block []string

	flush := func() {
		defer func() { block = block[:0] }()
		for len(block) > 0 && isDelimiterLine(block[0]) {
			block = block[1:]
		}
		if len(block) == 0 {
			return
		}
		n := countCells(block[0])
		if n == 0 {
			return
		}
		b.WriteString(block[0])
		b.WriteByte('\n')
		b.WriteString("|" + strings.Repeat(" --- |", n))
		b.WriteByte('\n')
		rest := block[1:]
		if len(rest) > 0 && isDelimiterLine(rest[0]) {
			rest = rest[1:]
		}
		for _, line := range rest {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		var isRow bool
		switch {
		case strings.HasPrefix(trimmed, "|"):
			isRow = true
		case !hasPipe(trimmed):
		case len(block) > 0:
			isRow = true
		case isDelimiterLine(trimmed):
			isRow = true
		case i+1 < len(lines):
			next := strings.TrimSpace(lines[i+1])
			isRow = isDelimiterLine(next) && hasPipe(next)
		}
		if !isRow {
			flush()
			continue
		}
		if !strings.HasPrefix(trimmed, "|") {
			trimmed = "| " + trimmed
		}
		block = append(block, trimmed)
	}
	flush()
	return b.String()
}

// hasPipe reports whether line contains a pipe not escaped by a backslash.
func hasPipe(line string) bool {
	for i := 0; i < len(line); i++ {
		if line[i] == '|' && (i == 0 || line[i-1] != '\\') {
			return true
		}
	}
	return false
}

// countCells counts cells the way the GFM table parser splits a row: on
// pipes not escaped by a backslash, ignoring one leading and one trailing
// pipe.
func countCells(line string) int {
	return len(splitCells(line))
}

// splitCells splits a row into trimmed cells using the countCells rules.
func splitCells(line string) Row {
	pos, limit := 0, len(line)
	if limit > 0 && line[0] == '|' {
		pos++
	}
	if limit > pos && line[limit-1] == '|' && (limit < 2 || line[limit-2] != '\\') {
		limit--
	}
	var out Row
	for pos < limit {
		end := pos
		for ; end < limit; end++ {
			if line[end] == '|' && (end == 0 || line[end-1] != '\\') {
				break
			}
		}
		out = append(out, strings.TrimSpace(line[pos:end]))
		pos = end + 1
	}
	return out
}

func isDelimiterLine(line string) bool {
	if !strings.Contains(line, "-") {
		return false
	}
	return strings.Trim(line, "|-: \t") == ""
}
