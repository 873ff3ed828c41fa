package extract

import (
	"encoding/json"

	"github.com/dgallion1/secpolicy/internal/doctree"
	"github.com/dgallion1/secpolicy/internal/mdtable"
	"github.com/dgallion1/secpolicy/internal/records"
	"github.com/dgallion1/secpolicy/internal/segment"
)

// TableResult is the typed content of one registry entry.
type TableResult struct {
	Kind     records.Kind
	Position doctree.Position
	Name     string
	Found    bool
	Records  []records.Record
	Skipped  int // rows that did not fit the record shape
}

type tableJSON struct {
	Kind       records.Kind     `json:"kind"`
	Section    int              `json:"section"`
	Subsection int              `json:"subsection"`
	Name       string           `json:"name,omitempty"`
	Found      bool             `json:"found"`
	Skipped    int              `json:"skipped"`
	Fields     []string         `json:"fields"`
	Entries    []records.Record `json:"entries"`
}

func (t TableResult) MarshalJSON() ([]byte, error) {
	entries := t.Records
	if entries == nil {
		entries = []records.Record{}
	}
	return json.Marshal(tableJSON{
		Kind:       t.Kind,
		Section:    t.Position.Chapter,
		Subsection: t.Position.Sub,
		Name:       t.Name,
		Found:      t.Found,
		Skipped:    t.Skipped,
		Fields:     t.Kind.Fields(),
		Entries:    entries,
	})
}

// Values returns each record's fields in shape order.
func (t TableResult) Values() [][]string {
	out := make([][]string, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Values()
	}
	return out
}

// tableBuilder resolves registry entries against a segmented tree.
type tableBuilder struct {
	reader   *mdtable.Reader
	splitter segment.Splitter
}

func (b *tableBuilder) build(tree *doctree.Tree, reg records.Registry) []TableResult {
	// Split each multi-table section once.
	splits := make(map[doctree.Position]segment.Split)
	for _, s := range reg {
		if s.Name == "" {
			continue
		}
		if _, done := splits[s.Position]; done {
			continue
		}
		text := ""
		if n := tree.At(s.Position); n != nil {
			text = n.Content
		}
		splits[s.Position] = b.splitter.Split(text, reg.Names(s.Position))
	}

	out := make([]TableResult, 0, len(reg))
	for _, s := range reg {
		var text string
		if s.Name == "" {
			if n := tree.At(s.Position); n != nil {
				text = n.Content
			}
		} else {
			text = splits[s.Position].Sections[s.Name]
		}
		out = append(out, b.construct(s, text))
	}
	return out
}

func (b *tableBuilder) construct(s records.Schema, text string) TableResult {
	res := TableResult{Kind: s.Kind, Position: s.Position, Name: s.Name}
	if text == "" {
		return res
	}

	tables := b.reader.Read(text)
	if s.MultiPage {
		tables = mdtable.Merge(tables)
	}
	for _, tbl := range tables {
		if len(tbl.Rows) > 0 {
			res.Found = true
		}
		for _, row := range tbl.Rows {
			rec, err := records.Construct(s.Kind, row)
			if err != nil {
				res.Skipped++
				continue
			}
			res.Records = append(res.Records, rec)
		}
	}
	return res
}
