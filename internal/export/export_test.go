package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/secpolicy/internal/doctree"
	"github.com/dgallion1/secpolicy/internal/extract"
	"github.com/dgallion1/secpolicy/internal/records"
	"github.com/xuri/excelize/v2"
)

func sampleTables(t *testing.T) []extract.TableResult {
	t.Helper()
	aes, err := records.Construct(records.KindApprovedAlgorithm, []string{"AES-CBC", "A3548", "-", "SP 800-38A"})
	if err != nil {
		t.Fatal(err)
	}
	return []extract.TableResult{
		{
			Kind:     records.KindApprovedAlgorithm,
			Position: doctree.Position{Chapter: 2, Sub: 5},
			Name:     "Approved Algorithms",
			Found:    true,
			Records:  []records.Record{aes},
			Skipped:  1,
		},
		{Kind: records.KindRole, Position: doctree.Position{Chapter: 4, Sub: 2}},
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, sampleTables(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := strings.Join(f.GetSheetList(), ",")
	if !strings.Contains(sheets, "summary") || !strings.Contains(sheets, "approved_algorithm") {
		t.Errorf("sheets = %s", sheets)
	}
	if strings.Contains(sheets, "role") || strings.Contains(sheets, "Sheet1") {
		t.Errorf("unexpected sheet in %s", sheets)
	}

	rows, err := f.GetRows("approved_algorithm")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %v", rows)
	}
	if rows[0][1] != "cavpCertName" || rows[1][0] != "AES-CBC" || rows[1][3] != "SP 800-38A" {
		t.Errorf("rows = %v", rows)
	}

	summary, _ := f.GetRows("summary")
	if len(summary) != 3 {
		t.Fatalf("summary rows = %v", summary)
	}
	if summary[1][0] != "approved_algorithm" || summary[1][1] != "2.5" || summary[1][4] != "1" {
		t.Errorf("summary[1] = %v", summary[1])
	}
	if summary[2][3] != "FALSE" {
		t.Errorf("summary[2] = %v", summary[2])
	}
}

func TestSheetName(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	long := strings.Repeat("x", 40)
	first := sheetName(f, long)
	if len(first) != 31 {
		t.Fatalf("len = %d", len(first))
	}
	if _, err := f.NewSheet(first); err != nil {
		t.Fatal(err)
	}
	second := sheetName(f, long)
	if second == first || len(second) != 31 || !strings.HasSuffix(second, "_2") {
		t.Errorf("second = %q", second)
	}
}

func TestWriteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	tree := &doctree.Tree{Title: "4282", Chapters: []*doctree.Node{{Title: "General", Found: true}}}
	res := &extract.Result{Name: "4282", Tree: tree, Tables: sampleTables(t)}

	files, err := WriteDir(dir, res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(files.Tree)
	if err != nil {
		t.Fatal(err)
	}
	back, err := doctree.ReadJSON(f)
	f.Close()
	if err != nil {
		t.Fatalf("read tree: %v", err)
	}
	if back.Title != "4282" || !back.Chapters[0].Found {
		t.Errorf("tree = %+v", back)
	}

	data, err := os.ReadFile(files.Tables)
	if err != nil {
		t.Fatal(err)
	}
	var tables []map[string]any
	if err := json.Unmarshal(data, &tables); err != nil {
		t.Fatal(err)
	}
	if len(tables) != 2 || tables[0]["kind"] != "approved_algorithm" {
		t.Errorf("tables json = %s", data)
	}

	if _, err := os.Stat(files.Workbook); err != nil {
		t.Errorf("workbook missing: %v", err)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}
