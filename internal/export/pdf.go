// Package export provides functionality for exporting packing results
// to various file formats.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/bobotu/kaosu-packer/internal/model"
)

// groupColor represents an RGB fill color for a placed box.
type groupColor struct {
	R, G, B int
}

// groupColors is cycled per input row, so every copy of a box shares a color.
var groupColors = []groupColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// WritePDFReport generates a PDF document for a packing solution. Each bin
// is rendered on its own page as a top view (width across, depth down) with
// per-group colors and stacking annotations, followed by a summary page with
// overall statistics.
func WritePDFReport(path string, problem model.Problem, sol model.Solution) error {
	if sol.BinsUsed() == 0 {
		return fmt.Errorf("no bins to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for bin := range sol.Bins {
		pdf.AddPage()
		renderBinPage(pdf, problem, sol, bin)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, problem, sol)

	return pdf.OutputFileAndClose(path)
}

// renderBinPage draws a single bin on the current PDF page.
func renderBinPage(pdf *fpdf.Fpdf, problem model.Problem, sol model.Solution, bin int) {
	spec := sol.BinSpec

	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Bin %d of %d (%d x %d x %d)", bin+1, sol.BinsUsed(), spec.Width, spec.Depth, spec.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats line
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Boxes: %d | Load: %d | Bin volume: %d | Utilization: %.1f%%",
		len(sol.Bins[bin]), sol.BinLoad(bin), spec.Volume(), sol.Utilization()[bin])
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	// Calculate drawing area
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	// Scale the bin footprint (width along X, depth along Z) to fit
	scaleX := drawWidth / float64(spec.Width)
	scaleY := drawHeight / float64(spec.Depth)
	scale := math.Min(scaleX, scaleY)

	canvasW := float64(spec.Width) * scale
	canvasH := float64(spec.Depth) * scale

	// Center the drawing horizontally
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Draw bin floor
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Draw boxes bottom layer first, so stacked boxes overlay the ones
	// below them in the top view.
	order := make([]int, len(sol.Bins[bin]))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sol.Bins[bin][order[a]].Space.Min.Y < sol.Bins[bin][order[b]].Space.Min.Y
	})

	for _, i := range order {
		p := sol.Bins[bin][i]
		item := problem.Items[p.BoxIndex]
		col := groupColors[item.Group%len(groupColors)]

		pw := float64(p.Space.Width()) * scale
		ph := float64(p.Space.Depth()) * scale
		px := offsetX + float64(p.Space.Min.X)*scale
		py := offsetY + float64(p.Space.Min.Z)*scale

		// Box fill
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		// Box label (only if the footprint is large enough)
		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := item.Label
			dims := fmt.Sprintf("%dx%dx%d", p.Space.Width(), p.Space.Depth(), p.Space.Height())
			elev := fmt.Sprintf("y %d-%d", p.Space.Min.Y, p.Space.Max.Y)

			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)
			elevW := pdf.GetStringWidth(elev)

			// First line: label
			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-6)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}

			// Second line: oriented dimensions
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2-2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}

			// Third line: vertical extent, the stacking annotation
			if ph > 20 && elevW < pw-2 {
				pdf.SetXY(px+(pw-elevW)/2, py+ph/2+2)
				pdf.CellFormat(elevW, 4, elev, "", 0, "C", false, 0, "")
			}
		}
	}

	// Dimension annotations along the edges
	drawDimensionAnnotations(pdf, spec, offsetX, offsetY, canvasW, canvasH)

	// Group legend at bottom of page
	drawGroupLegend(pdf, problem, sol, bin, offsetY+canvasH+5)
}

// drawDimensionAnnotations adds width and depth labels outside the bin rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, spec model.Dimension, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	// Width annotation (below the bin)
	widthLabel := fmt.Sprintf("W = %d", spec.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	// Depth annotation (to the left of the bin, rotated)
	depthLabel := fmt.Sprintf("D = %d", spec.Depth)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	dLabelW := pdf.GetStringWidth(depthLabel)
	pdf.SetXY(offsetX-3-dLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(dLabelW, 4, depthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	// Reset text color
	pdf.SetTextColor(0, 0, 0)
}

// drawGroupLegend renders a compact legend of the box groups present in one bin.
func drawGroupLegend(pdf *fpdf.Fpdf, problem model.Problem, sol model.Solution, bin int, startY float64) {
	if len(sol.Bins[bin]) == 0 {
		return
	}

	// Count boxes per input group, keeping group order
	counts := map[int]int{}
	var groups []int
	for _, p := range sol.Bins[bin] {
		g := problem.Items[p.BoxIndex].Group
		if counts[g] == 0 {
			groups = append(groups, g)
		}
		counts[g]++
	}
	sort.Ints(groups)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Boxes packed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for _, g := range groups {
		col := groupColors[g%len(groupColors)]
		var sample model.Item
		for _, p := range sol.Bins[bin] {
			if problem.Items[p.BoxIndex].Group == g {
				sample = problem.Items[p.BoxIndex]
				break
			}
		}
		label := fmt.Sprintf("%s (%dx%dx%d) x%d", sample.Label, sample.Width, sample.Depth, sample.Height, counts[g])
		labelW := pdf.GetStringWidth(label) + 6

		// Wrap to next line if needed
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		// Color swatch
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		// Label text
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, problem model.Problem, sol model.Solution) {
	// Title
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	// Separator line
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	// Overall statistics
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Bins Used", fmt.Sprintf("%d", sol.BinsUsed())},
		{"Boxes Placed", fmt.Sprintf("%d", sol.PlacedCount())},
		{"Boxes Unplaced", fmt.Sprintf("%d", len(sol.Unplaced))},
		{"Overall Utilization", fmt.Sprintf("%.1f%%", sol.TotalUtilization())},
		{"Fitness", fmt.Sprintf("%.4f", sol.Fitness)},
		{"Seed", fmt.Sprintf("%d", sol.Seed)},
		{"Generations", fmt.Sprintf("%d", sol.Generations)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	// Per-bin breakdown table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Bin Breakdown", "", 0, "L", false, 0, "")
	y += 9

	// Table header
	colWidths := []float64{20, 30, 60, 35}
	headers := []string{"Bin", "Boxes", "Load / Volume", "Utilization"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	// Table rows
	pdf.SetFont("Helvetica", "", 9)
	util := sol.Utilization()
	for bin := range sol.Bins {
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", bin+1),
			fmt.Sprintf("%d", len(sol.Bins[bin])),
			fmt.Sprintf("%d / %d", sol.BinLoad(bin), sol.BinSpec.Volume()),
			fmt.Sprintf("%.1f%%", util[bin]),
		}

		// Alternate row background
		if bin%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	// Unplaced boxes warning
	if len(sol.Unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Boxes", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)

		for _, idx := range sol.Unplaced {
			item := problem.Items[idx]
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- %s: %d x %d x %d", item.Label, item.Width, item.Depth, item.Height)
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	// Problem settings summary
	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Packing Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Bin Size", fmt.Sprintf("%d x %d x %d", problem.BinSpec.Width, problem.BinSpec.Depth, problem.BinSpec.Height)},
		{"Mode", problem.Mode.String()},
		{"Rotation", problem.Rotation.String()},
		{"Total Boxes", fmt.Sprintf("%d", len(problem.Items))},
		{"Total Box Volume", fmt.Sprintf("%d", problem.TotalItemVolume())},
	}
	if problem.Mode == model.ModeFixedBins {
		settingsItems = append(settingsItems, struct {
			label string
			value string
		}{"Max Bins", fmt.Sprintf("%d", problem.MaxBins)})
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by kaosu-packer - 3D Bin Packing Solver", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
