package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Label,Width,Depth,Height,Count\nCrate,600,300,200,2\nTube,400,100,800,1\n")
	got := DetectCSVDelimiter(data)
	if got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Label;Width;Depth;Height;Count\nCrate;600;300;200;2\nTube;400;100;800;1\n")
	got := DetectCSVDelimiter(data)
	if got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Label\tWidth\tDepth\tHeight\tCount\nCrate\t600\t300\t200\t2\n")
	got := DetectCSVDelimiter(data)
	if got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Pipe(t *testing.T) {
	data := []byte("Label|Width|Depth|Height|Count\nCrate|600|300|200|2\n")
	got := DetectCSVDelimiter(data)
	if got != '|' {
		t.Errorf("expected pipe delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Label", "Width", "Depth", "Height", "Count"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Label != 0 {
		t.Errorf("expected Label at 0, got %d", mapping.Label)
	}
	if mapping.Width != 1 {
		t.Errorf("expected Width at 1, got %d", mapping.Width)
	}
	if mapping.Depth != 2 {
		t.Errorf("expected Depth at 2, got %d", mapping.Depth)
	}
	if mapping.Height != 3 {
		t.Errorf("expected Height at 3, got %d", mapping.Height)
	}
	if mapping.Count != 4 {
		t.Errorf("expected Count at 4, got %d", mapping.Count)
	}
}

func TestDetectColumns_CaseInsensitive(t *testing.T) {
	row := []string{"NAME", "WIDTH", "DEPTH", "HEIGHT", "QTY"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Label != 0 {
		t.Errorf("expected Label at 0, got %d", mapping.Label)
	}
	if mapping.Count != 4 {
		t.Errorf("expected Count at 4, got %d", mapping.Count)
	}
}

func TestDetectColumns_AlternativeNames(t *testing.T) {
	row := []string{"Item", "len_x", "len_y", "len_z", "Pcs"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Label != 0 {
		t.Errorf("expected Label at 0, got %d", mapping.Label)
	}
	if mapping.Width != 1 {
		t.Errorf("expected Width at 1, got %d", mapping.Width)
	}
	if mapping.Depth != 2 {
		t.Errorf("expected Depth at 2, got %d", mapping.Depth)
	}
	if mapping.Height != 3 {
		t.Errorf("expected Height at 3, got %d", mapping.Height)
	}
	if mapping.Count != 4 {
		t.Errorf("expected Count at 4, got %d", mapping.Count)
	}
}

func TestDetectColumns_ReorderedColumns(t *testing.T) {
	row := []string{"Qty", "Height", "Depth", "Width", "Label"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	if mapping.Count != 0 {
		t.Errorf("expected Count at 0, got %d", mapping.Count)
	}
	if mapping.Height != 1 {
		t.Errorf("expected Height at 1, got %d", mapping.Height)
	}
	if mapping.Depth != 2 {
		t.Errorf("expected Depth at 2, got %d", mapping.Depth)
	}
	if mapping.Width != 3 {
		t.Errorf("expected Width at 3, got %d", mapping.Width)
	}
	if mapping.Label != 4 {
		t.Errorf("expected Label at 4, got %d", mapping.Label)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	row := []string{"600", "300", "200", "2"}
	mapping, isHeader := DetectColumns(row)

	if isHeader {
		t.Error("expected no header detection for numeric data")
	}
	// Should fall back to positional width, depth, height, count
	if mapping.Width != 0 || mapping.Depth != 1 || mapping.Height != 2 || mapping.Count != 3 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
	if mapping.Label != -1 {
		t.Errorf("headerless rows carry no label column, got index %d", mapping.Label)
	}
}

// ─── CSV Import Tests ──────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "Label,Width,Depth,Height,Count\nCrate,600,300,200,2\nTube,400,100,800,1\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(result.Groups))
	}

	g := result.Groups[0]
	if g.Label != "Crate" {
		t.Errorf("expected label 'Crate', got '%s'", g.Label)
	}
	if g.Width != 600 || g.Depth != 300 || g.Height != 200 {
		t.Errorf("unexpected dimensions %dx%dx%d", g.Width, g.Depth, g.Height)
	}
	if g.Count != 2 {
		t.Errorf("expected count 2, got %d", g.Count)
	}

	if result.Groups[1].Count != 1 {
		t.Errorf("expected count 1, got %d", result.Groups[1].Count)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	data := "600,300,200,2\n400,100,800,1\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d (errors: %v)", len(result.Groups), result.Errors)
	}
	if result.Groups[0].Label != "Box 1" {
		t.Errorf("expected auto-generated label 'Box 1', got '%s'", result.Groups[0].Label)
	}
	if result.Groups[0].Width != 600 {
		t.Errorf("expected width 600, got %d", result.Groups[0].Width)
	}
	if result.Groups[1].Label != "Box 2" {
		t.Errorf("expected auto-generated label 'Box 2', got '%s'", result.Groups[1].Label)
	}
}

func TestImportCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	data := "first,second,third,fourth\n600,300,200,2\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d (errors: %v)", len(result.Groups), result.Errors)
	}
	if result.Groups[0].Width != 600 {
		t.Errorf("expected width 600, got %d", result.Groups[0].Width)
	}
	hasSkipWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "header") {
			hasSkipWarning = true
		}
	}
	if !hasSkipWarning {
		t.Error("expected warning about skipped header row")
	}
}

func TestImportCSVFromReader_ReorderedColumns(t *testing.T) {
	data := "Qty,Height,Depth,Width,Name\n2,200,300,600,Crate\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(result.Groups))
	}
	g := result.Groups[0]
	if g.Label != "Crate" {
		t.Errorf("expected label 'Crate', got '%s'", g.Label)
	}
	if g.Width != 600 || g.Depth != 300 || g.Height != 200 || g.Count != 2 {
		t.Errorf("unexpected group %+v", g)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	_, err := ImportCSVFromReader(strings.NewReader(""), ',')
	if err == nil {
		t.Error("expected error for empty input")
	}
}

func TestImportCSVFromReader_InvalidWidth(t *testing.T) {
	data := "Label,Width,Depth,Height,Count\nCrate,abc,300,200,2\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err == nil {
		t.Fatal("expected error when no row is usable")
	}
	if result != nil {
		t.Errorf("expected nil result, got %+v", result)
	}
}

func TestImportCSVFromReader_FractionalDimensionRejected(t *testing.T) {
	data := "Label,Width,Depth,Height,Count\nGood,600,300,200,2\nBad,600.5,300,200,2\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 1 {
		t.Errorf("expected 1 valid group, got %d", len(result.Groups))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Invalid width") {
		t.Errorf("expected invalid width error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_NegativeValues(t *testing.T) {
	data := "Label,Width,Depth,Height,Count\nGood,600,300,200,2\nCrate,-600,300,200,2\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Errors) == 0 {
		t.Error("expected error for negative width")
	}
}

func TestImportCSVFromReader_ZeroCount(t *testing.T) {
	data := "Label,Width,Depth,Height,Count\nGood,600,300,200,2\nCrate,600,300,200,0\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Errors) == 0 {
		t.Error("expected error for zero count")
	}
}

func TestImportCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	data := "Label,Width,Depth,Height,Count\nGood,600,300,200,2\nBad,abc,300,200,2\nAlsoGood,400,100,800,1\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 2 {
		t.Errorf("expected 2 valid groups, got %d", len(result.Groups))
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %d", len(result.Errors))
	}
}

func TestImportCSVFromReader_EmptyRows(t *testing.T) {
	data := "Label,Width,Depth,Height,Count\nCrate,600,300,200,2\n\n\nTube,400,100,800,1\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 2 {
		t.Errorf("expected 2 groups (skipping empty rows), got %d (errors: %v)", len(result.Groups), result.Errors)
	}
}

func TestImportCSVFromReader_EmptyLabel(t *testing.T) {
	data := "Label,Width,Depth,Height,Count\n,600,300,200,2\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(result.Groups))
	}
	if result.Groups[0].Label != "Box 1" {
		t.Errorf("expected auto-generated label 'Box 1', got '%s'", result.Groups[0].Label)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	data := "Label,Width,Count\nCrate,600,2\n"
	_, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err == nil {
		t.Fatal("expected error for missing Depth and Height columns")
	}
	if !strings.Contains(err.Error(), "required columns not found") {
		t.Errorf("expected 'required columns not found' error, got: %v", err)
	}
}

func TestImportCSVFromReader_OnlyHeaders(t *testing.T) {
	data := "Label,Width,Depth,Height,Count\n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 0 {
		t.Errorf("expected 0 groups for header-only file, got %d", len(result.Groups))
	}
	if len(result.Errors) != 0 {
		t.Errorf("header-only file is not an error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_WhitespaceInValues(t *testing.T) {
	data := "Label , Width , Depth , Height , Count\n Crate , 600 , 300 , 200 , 2 \n"
	result, err := ImportCSVFromReader(strings.NewReader(data), ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d (errors: %v)", len(result.Groups), result.Errors)
	}
	if result.Groups[0].Width != 600 {
		t.Errorf("expected width 600, got %d", result.Groups[0].Width)
	}
}

// ─── CSV File Import Tests ─────────────────────────────────

func TestImportCSV_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boxes.csv")
	content := "Label,Width,Depth,Height,Count\nCrate,600,300,200,2\nTube,400,100,800,1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result, err := ImportCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(result.Groups))
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boxes.csv")
	content := "Label;Width;Depth;Height;Count\nCrate;600;300;200;2\nTube;400;100;800;1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result, err := ImportCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 2 {
		t.Errorf("expected 2 groups, got %d (errors: %v)", len(result.Groups), result.Errors)
	}

	hasSemicolonWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			hasSemicolonWarning = true
		}
	}
	if !hasSemicolonWarning {
		t.Error("expected warning about semicolon delimiter detection")
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	_, err := ImportCSV("/nonexistent/path/file.csv")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := ImportCSV(path)
	if err == nil {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "boxes.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportXLSX_WithHeaders(t *testing.T) {
	path := createTestXLSX(t, [][]interface{}{
		{"Label", "Width", "Depth", "Height", "Count"},
		{"Crate", 600, 300, 200, 2},
		{"Tube", 400, 100, 800, 1},
	})

	result, err := ImportXLSX(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(result.Groups))
	}

	g := result.Groups[0]
	if g.Label != "Crate" {
		t.Errorf("expected 'Crate', got '%s'", g.Label)
	}
	if g.Width != 600 || g.Depth != 300 || g.Height != 200 {
		t.Errorf("unexpected dimensions %dx%dx%d", g.Width, g.Depth, g.Height)
	}
}

func TestImportXLSX_WithoutHeaders(t *testing.T) {
	path := createTestXLSX(t, [][]interface{}{
		{600, 300, 200, 2},
		{400, 100, 800, 1},
	})

	result, err := ImportXLSX(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d (errors: %v)", len(result.Groups), result.Errors)
	}
}

func TestImportXLSX_MissingRequiredColumn(t *testing.T) {
	path := createTestXLSX(t, [][]interface{}{
		{"Label", "Width", "Count"},
		{"Crate", 600, 2},
	})

	_, err := ImportXLSX(path)
	if err == nil {
		t.Fatal("expected error for missing Depth and Height columns")
	}
	if !strings.Contains(err.Error(), "Depth") {
		t.Errorf("expected missing Depth in error, got: %v", err)
	}
}

func TestImportXLSX_FileNotFound(t *testing.T) {
	_, err := ImportXLSX("/nonexistent/file.xlsx")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportXLSX_InvalidData(t *testing.T) {
	path := createTestXLSX(t, [][]interface{}{
		{"Label", "Width", "Depth", "Height", "Count"},
		{"Good", 600, 300, 200, 2},
		{"Crate", "abc", 300, 200, 2},
	})

	result, err := ImportXLSX(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Errors) == 0 {
		t.Error("expected row error for invalid width")
	}
	if len(result.Groups) != 1 {
		t.Errorf("expected 1 valid group, got %d", len(result.Groups))
	}
}
