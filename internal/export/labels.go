package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/bobotu/kaosu-packer/internal/model"
)

// LabelInfo holds the data encoded into each box label's QR code.
type LabelInfo struct {
	BoxLabel string `json:"label"`
	BoxID    string `json:"id"`
	Bin      int    `json:"bin"`
	Box      int    `json:"box"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Z        int    `json:"z"`
	Width    int    `json:"width"`
	Depth    int    `json:"depth"`
	Height   int    `json:"height"`
	Rotated  bool   `json:"rotated"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7  // mm
	labelMarginLeft = 4.8   // mm
	labelWidth      = 66.7  // mm per label
	labelHeight     = 25.4  // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// WriteLabelSheet generates a PDF of QR-coded labels for all placed boxes.
// Each label carries the box name, its oriented dimensions, and a QR code
// encoding placement metadata as JSON. Labels are laid out on a standard
// label sheet format (Avery 5160 / 3 columns x 10 rows on US Letter).
func WriteLabelSheet(path string, problem model.Problem, sol model.Solution) error {
	if sol.BinsUsed() == 0 {
		return fmt.Errorf("no bins to generate labels for")
	}

	labels := CollectLabelInfos(problem, sol)
	if len(labels) == 0 {
		return fmt.Errorf("no boxes placed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		// Add new page when needed
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.BoxLabel, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Draw light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	// Generate QR code PNG bytes
	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	// Register QR image with a unique name
	imgName := fmt.Sprintf("qr_%d_%d", info.Bin, info.Box)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// Place QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Text area (left side of label)
	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Box label (bold, larger)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	// Truncate label if too long
	boxLabel := info.BoxLabel
	if pdf.GetStringWidth(boxLabel) > textW {
		for len(boxLabel) > 0 && pdf.GetStringWidth(boxLabel+"...") > textW {
			boxLabel = boxLabel[:len(boxLabel)-1]
		}
		boxLabel += "..."
	}
	pdf.CellFormat(textW, 4.5, boxLabel, "", 1, "L", false, 0, "")

	// Oriented dimensions
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%d x %d x %d", info.Width, info.Depth, info.Height)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	// Bin and position info
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	binInfo := fmt.Sprintf("Bin %d @ (%d, %d, %d)", info.Bin, info.X, info.Y, info.Z)
	pdf.CellFormat(textW, 3, binInfo, "", 1, "L", false, 0, "")

	// Rotation indicator
	if info.Rotated {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Rotated", "", 0, "L", false, 0, "")
	}

	// Reset text color
	pdf.SetTextColor(0, 0, 0)

	return nil
}

// CollectLabelInfos extracts label information from a packing solution
// for use in testing or alternative export formats. Bins are numbered
// from 1 on the labels.
func CollectLabelInfos(problem model.Problem, sol model.Solution) []LabelInfo {
	var labels []LabelInfo
	for bin, placements := range sol.Bins {
		for _, p := range placements {
			item := problem.Items[p.BoxIndex]
			size := p.Space.Size()
			labels = append(labels, LabelInfo{
				BoxLabel: item.Label,
				BoxID:    item.ID,
				Bin:      bin + 1,
				Box:      p.BoxIndex,
				X:        p.Space.Min.X,
				Y:        p.Space.Min.Y,
				Z:        p.Space.Min.Z,
				Width:    size.Width,
				Depth:    size.Depth,
				Height:   size.Height,
				Rotated:  size != item.Dim(),
			})
		}
	}
	return labels
}
