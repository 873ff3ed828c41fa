// Package schema loads the document template: the expected chapter tree and
// the tables expected inside it.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/secpolicy/internal/doctree"
	"github.com/dgallion1/secpolicy/internal/records"
)

//go:embed default.yaml
var defaultYAML []byte

//go:embed schema.json
var schemaJSON []byte

// Schema is the process-wide template. Treat it as read-only once loaded.
type Schema struct {
	Sections *doctree.Tree
	Tables   records.Registry
}

// NewTree returns a fresh copy of the section tree for one document.
func (s *Schema) NewTree() *doctree.Tree {
	return s.Sections.Clone()
}

type file struct {
	Title    string    `yaml:"title" json:"title"`
	Chapters []chapter `yaml:"chapters" json:"chapters"`
	Tables   []table   `yaml:"tables,omitempty" json:"tables"`
}

type section struct {
	Title    string `yaml:"title" json:"title"`
	Optional bool   `yaml:"optional,omitempty" json:"optional"`
}

type chapter struct {
	Title       string    `yaml:"title" json:"title"`
	Optional    bool      `yaml:"optional,omitempty" json:"optional"`
	Subchapters []section `yaml:"subchapters,omitempty" json:"subchapters"`
}

type table struct {
	Kind       string `yaml:"kind" json:"kind"`
	Chapter    int    `yaml:"chapter" json:"chapter"`
	Subchapter int    `yaml:"subchapter" json:"subchapter"`
	Name       string `yaml:"name,omitempty" json:"name"`
	MultiPage  bool   `yaml:"multi_page,omitempty" json:"multi_page"`
}

// Default returns the embedded FIPS 140-3 security policy template.
func Default() (*Schema, error) {
	s, err := parse(defaultYAML, false)
	if err != nil {
		return nil, fmt.Errorf("embedded schema: %w", err)
	}
	return s, nil
}

// Load reads a template from a YAML or JSON file. An empty path returns
// the default template.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	isJSON := strings.EqualFold(filepath.Ext(path), ".json")
	s, err := parse(data, isJSON)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

// Parse reads a template from YAML (a JSON document is valid YAML too).
func Parse(data []byte) (*Schema, error) {
	return parse(data, false)
}

func parse(data []byte, isJSON bool) (*Schema, error) {
	var raw any
	if isJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if err := validate(raw); err != nil {
		return nil, err
	}

	var f file
	if isJSON {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return build(f)
}

func validate(doc any) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("load template schema: %w", err)
	}
	sch, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile template schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("template does not match schema: %w", err)
	}
	return nil
}

func build(f file) (*Schema, error) {
	tree := &doctree.Tree{Title: f.Title}
	for _, ch := range f.Chapters {
		node := &doctree.Node{Title: ch.Title, Optional: ch.Optional}
		for _, sub := range ch.Subchapters {
			node.Children = append(node.Children, &doctree.Node{Title: sub.Title, Optional: sub.Optional})
		}
		tree.Chapters = append(tree.Chapters, node)
	}

	reg := make(records.Registry, 0, len(f.Tables))
	for _, t := range f.Tables {
		kind, err := records.ParseKind(t.Kind)
		if err != nil {
			return nil, err
		}
		reg = append(reg, records.Schema{
			Kind:      kind,
			Position:  doctree.Position{Chapter: t.Chapter, Sub: t.Subchapter},
			Name:      t.Name,
			MultiPage: t.MultiPage,
		})
	}
	if err := reg.Validate(tree); err != nil {
		return nil, err
	}
	return &Schema{Sections: tree, Tables: reg}, nil
}

// Marshal renders s in the YAML file format Load accepts.
func (s *Schema) Marshal() ([]byte, error) {
	f := file{Title: s.Sections.Title}
	for _, ch := range s.Sections.Chapters {
		c := chapter{Title: ch.Title, Optional: ch.Optional}
		for _, sub := range ch.Children {
			c.Subchapters = append(c.Subchapters, section{Title: sub.Title, Optional: sub.Optional})
		}
		f.Chapters = append(f.Chapters, c)
	}
	for _, t := range s.Tables {
		f.Tables = append(f.Tables, table{
			Kind:       t.Kind.String(),
			Chapter:    t.Position.Chapter,
			Subchapter: t.Position.Sub,
			Name:       t.Name,
			MultiPage:  t.MultiPage,
		})
	}
	return yaml.Marshal(f)
}
