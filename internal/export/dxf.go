package export

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/bobotu/kaosu-packer/internal/model"
)

// layerColors cycles ACI color numbers for the per-bin DXF layers.
var layerColors = []color.ColorNumber{
	color.Red,
	color.Yellow,
	color.Green,
	color.Cyan,
	color.Blue,
	color.Magenta,
}

// WriteDXF writes the packing as a DXF drawing: the bin outline on a shared
// layer, plus one layer per bin holding the top-view footprints of its boxes
// as closed lightweight polylines at true coordinates. Every bin draws over
// the same outline, so CAD viewers show one bin at a time by toggling layers.
func WriteDXF(path string, problem model.Problem, sol model.Solution) error {
	if sol.BinsUsed() == 0 {
		return fmt.Errorf("no bins to export")
	}

	d := dxf.NewDrawing()

	if _, err := d.AddLayer("BIN", dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add bin layer: %w", err)
	}
	if err := drawRect(d, 0, 0, float64(sol.BinSpec.Width), float64(sol.BinSpec.Depth)); err != nil {
		return fmt.Errorf("failed to draw bin outline: %w", err)
	}

	for bin, placements := range sol.Bins {
		name := fmt.Sprintf("BIN_%d", bin+1)
		if _, err := d.AddLayer(name, layerColors[bin%len(layerColors)], dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", name, err)
		}

		for _, p := range placements {
			if err := drawFootprint(d, problem, p); err != nil {
				return fmt.Errorf("failed to draw box %d in bin %d: %w", p.BoxIndex, bin+1, err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}

// drawFootprint draws one box's top-view rectangle and a label carrying its
// vertical extent.
func drawFootprint(d *drawing.Drawing, problem model.Problem, p model.Placement) error {
	x := float64(p.Space.Min.X)
	y := float64(p.Space.Min.Z)
	w := float64(p.Space.Width())
	dd := float64(p.Space.Depth())

	if err := drawRect(d, x, y, w, dd); err != nil {
		return err
	}

	// Text height scaled to the footprint, so labels stay inside small boxes
	th := math.Min(w, dd) / 6
	if th <= 0 {
		return nil
	}

	item := problem.Items[p.BoxIndex]
	label := fmt.Sprintf("%s y%d-%d", item.Label, p.Space.Min.Y, p.Space.Max.Y)
	if _, err := d.Text(label, x+th/2, y+th/2, 0.0, th); err != nil {
		return err
	}
	return nil
}

// drawRect draws an axis-aligned rectangle as a closed lightweight polyline.
func drawRect(d *drawing.Drawing, x, y, w, h float64) error {
	_, err := d.LwPolyline(true,
		[]float64{x, y},
		[]float64{x + w, y},
		[]float64{x + w, y + h},
		[]float64{x, y + h},
	)
	return err
}
