// Package export writes extraction results to disk: the section tree and
// tables as JSON, and the tables as an XLSX workbook.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dgallion1/secpolicy/internal/doctree"
	"github.com/dgallion1/secpolicy/internal/extract"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "summary"

// Files lists the paths written by WriteDir.
type Files struct {
	Tree     string `json:"tree"`
	Tables   string `json:"tables"`
	Workbook string `json:"workbook"`
}

// WriteTree writes the chapter tree as indented JSON.
func WriteTree(w io.Writer, tree *doctree.Tree) error {
	return tree.WriteJSON(w)
}

// WriteTables writes every table result, found or not, as indented JSON.
func WriteTables(w io.Writer, tables []extract.TableResult) error {
	if tables == nil {
		tables = []extract.TableResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(tables)
}

// WriteWorkbook writes one sheet per found table plus a summary sheet.
func WriteWorkbook(w io.Writer, tables []extract.TableResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	for i, h := range []string{"kind", "section", "name", "found", "records", "skipped"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(summarySheet, cell, h)
	}

	for i, t := range tables {
		row := i + 2
		for col, v := range []any{t.Kind.String(), t.Position.String(), t.Name, t.Found, len(t.Records), t.Skipped} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(summarySheet, cell, v)
		}
		if !t.Found {
			continue
		}
		if err := writeTableSheet(f, sheetName(f, t.Kind.String()), t); err != nil {
			return err
		}
	}

	idx, _ := f.GetSheetIndex(summarySheet)
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 28)
	_ = f.SetColWidth(summarySheet, "C", "C", 48)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTableSheet(f *excelize.File, sheet string, t extract.TableResult) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	for i, h := range t.Kind.Fields() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, values := range t.Values() {
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	return nil
}

// sheetName fits name into the 31 character sheet limit and keeps it
// unique within f.
func sheetName(f *excelize.File, name string) string {
	const maxLen = 31
	if len(name) > maxLen {
		name = name[:maxLen]
	}
	candidate := name
	for n := 2; ; n++ {
		if idx, _ := f.GetSheetIndex(candidate); idx == -1 {
			return candidate
		}
		suffix := fmt.Sprintf("_%d", n)
		if len(name)+len(suffix) > maxLen {
			candidate = name[:maxLen-len(suffix)] + suffix
		} else {
			candidate = name + suffix
		}
	}
}

// WriteDir writes <name>.json, <name>_tables.json and <name>.xlsx into dir.
func WriteDir(dir string, res *extract.Result) (Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	files := Files{
		Tree:     filepath.Join(dir, res.Name+".json"),
		Tables:   filepath.Join(dir, res.Name+"_tables.json"),
		Workbook: filepath.Join(dir, res.Name+".xlsx"),
	}

	if err := writeFile(files.Tree, func(w io.Writer) error { return WriteTree(w, res.Tree) }); err != nil {
		return Files{}, err
	}
	if err := writeFile(files.Tables, func(w io.Writer) error { return WriteTables(w, res.Tables) }); err != nil {
		return Files{}, err
	}
	if err := writeFile(files.Workbook, func(w io.Writer) error { return WriteWorkbook(w, res.Tables) }); err != nil {
		return Files{}, err
	}
	return files, nil
}

// writeFile writes through a temp file and renames it into place.
func writeFile(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
