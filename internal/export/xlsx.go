package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bobotu/kaosu-packer/internal/model"
)

const (
	summarySheet    = "Summary"
	placementsSheet = "Placements"
	unplacedSheet   = "Unplaced"
)

// WriteXLSXManifest writes a packing solution as an Excel workbook: a summary
// sheet with overall statistics and a per-bin breakdown, a placements sheet
// with one row per packed box, and an unplaced sheet when boxes were left out.
func WriteXLSXManifest(path string, problem model.Problem, sol model.Solution) error {
	if sol.BinsUsed() == 0 {
		return fmt.Errorf("no bins to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the summary
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	if err := writeSummarySheet(f, problem, sol); err != nil {
		return err
	}
	if err := writePlacementsSheet(f, problem, sol); err != nil {
		return err
	}
	if len(sol.Unplaced) > 0 {
		if err := writeUnplacedSheet(f, problem, sol); err != nil {
			return err
		}
	}

	idx, err := f.GetSheetIndex(summarySheet)
	if err != nil {
		return fmt.Errorf("failed to look up summary sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}

// writeSummarySheet fills the summary sheet with overall statistics and a
// per-bin breakdown table.
func writeSummarySheet(f *excelize.File, problem model.Problem, sol model.Solution) error {
	rows := [][]interface{}{
		{"Bin Size", fmt.Sprintf("%d x %d x %d", sol.BinSpec.Width, sol.BinSpec.Depth, sol.BinSpec.Height)},
		{"Mode", problem.Mode.String()},
		{"Rotation", problem.Rotation.String()},
		{"Bins Used", sol.BinsUsed()},
		{"Boxes Placed", sol.PlacedCount()},
		{"Boxes Unplaced", len(sol.Unplaced)},
		{"Overall Utilization", fmt.Sprintf("%.1f%%", sol.TotalUtilization())},
		{"Fitness", sol.Fitness},
		{"Seed", fmt.Sprintf("%d", sol.Seed)},
		{"Generations", sol.Generations},
	}
	if problem.Mode == model.ModeFixedBins {
		rows = append(rows, []interface{}{"Max Bins", problem.MaxBins})
	}

	row := 1
	for _, r := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &r); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", row, err)
		}
		row++
	}

	// Per-bin breakdown
	row++
	header := []interface{}{"Bin", "Boxes", "Load", "Bin Volume", "Utilization"}
	if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &header); err != nil {
		return fmt.Errorf("failed to write bin table header: %w", err)
	}
	row++

	util := sol.Utilization()
	for bin := range sol.Bins {
		r := []interface{}{
			bin + 1,
			len(sol.Bins[bin]),
			sol.BinLoad(bin),
			sol.BinSpec.Volume(),
			fmt.Sprintf("%.1f%%", util[bin]),
		}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", row), &r); err != nil {
			return fmt.Errorf("failed to write bin row %d: %w", bin+1, err)
		}
		row++
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 20); err != nil {
		return fmt.Errorf("failed to size summary columns: %w", err)
	}
	return nil
}

// writePlacementsSheet fills one row per placed box.
func writePlacementsSheet(f *excelize.File, problem model.Problem, sol model.Solution) error {
	if _, err := f.NewSheet(placementsSheet); err != nil {
		return fmt.Errorf("failed to create placements sheet: %w", err)
	}

	header := []interface{}{"Bin", "Box", "Label", "ID", "X", "Y", "Z", "Width", "Depth", "Height", "Volume"}
	if err := f.SetSheetRow(placementsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write placements header: %w", err)
	}

	row := 2
	for bin, placements := range sol.Bins {
		for _, p := range placements {
			item := problem.Items[p.BoxIndex]
			size := p.Space.Size()
			r := []interface{}{
				bin + 1,
				p.BoxIndex,
				item.Label,
				item.ID,
				p.Space.Min.X,
				p.Space.Min.Y,
				p.Space.Min.Z,
				size.Width,
				size.Depth,
				size.Height,
				size.Volume(),
			}
			if err := f.SetSheetRow(placementsSheet, fmt.Sprintf("A%d", row), &r); err != nil {
				return fmt.Errorf("failed to write placement row %d: %w", row, err)
			}
			row++
		}
	}
	return nil
}

// writeUnplacedSheet lists the boxes a fixed bin budget left out.
func writeUnplacedSheet(f *excelize.File, problem model.Problem, sol model.Solution) error {
	if _, err := f.NewSheet(unplacedSheet); err != nil {
		return fmt.Errorf("failed to create unplaced sheet: %w", err)
	}

	header := []interface{}{"Box", "Label", "ID", "Width", "Depth", "Height", "Volume"}
	if err := f.SetSheetRow(unplacedSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write unplaced header: %w", err)
	}

	for i, idx := range sol.Unplaced {
		item := problem.Items[idx]
		r := []interface{}{
			idx,
			item.Label,
			item.ID,
			item.Width,
			item.Depth,
			item.Height,
			item.Volume(),
		}
		if err := f.SetSheetRow(unplacedSheet, fmt.Sprintf("A%d", i+2), &r); err != nil {
			return fmt.Errorf("failed to write unplaced row %d: %w", i+2, err)
		}
	}
	return nil
}
