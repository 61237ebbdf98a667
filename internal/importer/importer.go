// Package importer provides CSV and Excel import functionality for box lists.
// It supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bobotu/kaosu-packer/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation. Errors collects
// rows that could not be parsed; they never abort the import.
type ImportResult struct {
	Groups   []model.ItemGroup
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label  int
	Width  int
	Depth  int
	Height int
	Count  int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":  {"label", "name", "item", "box", "part", "description", "desc"},
	"width":  {"width", "w", "x", "len_x", "length_x"},
	"depth":  {"depth", "d", "y", "len_y", "length_y"},
	"height": {"height", "h", "z", "len_z", "length_z"},
	"count":  {"count", "qty", "quantity", "num", "amount", "pcs", "pieces"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV
// delimiter. It tries comma, semicolon, tab, and pipe. The delimiter that
// produces the most consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1 // Allow variable field counts

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Score: count how many rows have the same column count as the
		// first row. Only consider delimiters that produce more than 1 column.
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// It performs case-insensitive matching against known aliases for each column
// role. Returns the mapping and true if a header was detected, or a default
// positional mapping (width, depth, height, count) and false if no header was
// found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Label:  -1,
		Width:  -1,
		Depth:  -1,
		Height: -1,
		Count:  -1,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					switch role {
					case "label":
						if mapping.Label == -1 {
							mapping.Label = i
						}
					case "width":
						if mapping.Width == -1 {
							mapping.Width = i
						}
					case "depth":
						if mapping.Depth == -1 {
							mapping.Depth = i
						}
					case "height":
						if mapping.Height == -1 {
							mapping.Height = i
						}
					case "count":
						if mapping.Count == -1 {
							mapping.Count = i
						}
					}
				}
			}
		}
	}

	if !isHeader {
		// Fall back to positional mapping: Width, Depth, Height, Count.
		// Headerless lists carry no label column.
		return ColumnMapping{
			Label:  -1,
			Width:  0,
			Depth:  1,
			Height: 2,
			Count:  3,
		}, false
	}

	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts an ItemGroup from a row using the given column mapping.
// Returns the group and any error message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, groupCount int) (model.ItemGroup, string) {
	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Box %d", groupCount+1)
	}

	dims := [3]int{}
	for i, col := range []struct {
		name string
		idx  int
	}{
		{"width", mapping.Width},
		{"depth", mapping.Depth},
		{"height", mapping.Height},
	} {
		str := getCell(row, col.idx)
		if str == "" {
			return model.ItemGroup{}, fmt.Sprintf("%s: Missing %s value", rowLabel, col.name)
		}
		v, err := strconv.Atoi(str)
		if err != nil {
			return model.ItemGroup{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, col.name, str)
		}
		dims[i] = v
	}

	countStr := getCell(row, mapping.Count)
	if countStr == "" {
		return model.ItemGroup{}, fmt.Sprintf("%s: Missing count value", rowLabel)
	}
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return model.ItemGroup{}, fmt.Sprintf("%s: Invalid count '%s'", rowLabel, countStr)
	}

	if dims[0] <= 0 || dims[1] <= 0 || dims[2] <= 0 || count <= 0 {
		return model.ItemGroup{}, fmt.Sprintf("%s: Width, depth, height, and count must be positive", rowLabel)
	}

	return model.ItemGroup{
		Label:  label,
		Width:  dims[0],
		Depth:  dims[1],
		Height: dims[2],
		Count:  count,
	}, ""
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports box groups from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters. Unreadable files and
// inputs with no usable rows return an error; individual bad rows are
// collected in the result instead.
func ImportCSV(path string) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read box list: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: file is empty", path)
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}

	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports box groups from a CSV reader with a specific
// delimiter. This is useful for testing or when the delimiter is already known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) (*ImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}

	return importFromRows(records, "Line", nil)
}

// ImportXLSX imports box groups from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportXLSX(path string) (*ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read Excel data: %w", err)
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into box groups.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) (*ImportResult, error) {
	result := &ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		return nil, errors.New("no data rows found")
	}

	// Detect columns from first row
	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Depth == -1 {
			missing = append(missing, "Depth")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if mapping.Count == -1 {
			missing = append(missing, "Count")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("required columns not found in header: %s", strings.Join(missing, ", "))
		}
	} else if len(rows[0]) >= 4 {
		// No recognized header: if the first row is not numeric it might
		// be an unknown header. Skip it but keep the positional mapping.
		if _, err := strconv.Atoi(strings.TrimSpace(rows[0][0])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		group, errMsg := parseRow(row, mapping, rowLabel, len(result.Groups))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		result.Groups = append(result.Groups, group)
	}

	if len(result.Groups) == 0 && len(result.Errors) > 0 {
		return nil, fmt.Errorf("no usable rows: %s", result.Errors[0])
	}

	return result, nil
}
