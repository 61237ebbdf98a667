package model

import (
	"github.com/campoy/unique"
	"github.com/google/uuid"
)

// RotationMode controls which axis-aligned orientations a box may take.
type RotationMode int

const (
	RotationFull   RotationMode = iota // All six axis permutations
	RotationPlanar                     // Width/depth swap only, boxes stay upright
	RotationNone                       // Boxes keep their given orientation
)

func (m RotationMode) String() string {
	switch m {
	case RotationPlanar:
		return "Planar"
	case RotationNone:
		return "None"
	default:
		return "Full"
	}
}

// Dimension holds the integral extents of a box or bin.
type Dimension struct {
	Width  int `json:"width"`
	Depth  int `json:"depth"`
	Height int `json:"height"`
}

func NewDimension(w, d, h int) Dimension {
	return Dimension{Width: w, Depth: d, Height: h}
}

// Volume returns width × depth × height.
func (d Dimension) Volume() int {
	return d.Width * d.Depth * d.Height
}

// IsValid reports whether all extents are positive.
func (d Dimension) IsValid() bool {
	return d.Width > 0 && d.Depth > 0 && d.Height > 0
}

// MinExtent returns the smallest of the three extents.
func (d Dimension) MinExtent() int {
	return min(d.Width, d.Depth, d.Height)
}

// Orientations enumerates the distinct axis permutations of d allowed
// by the rotation mode. Equal extents collapse to a single entry, so
// the result holds between 1 and 6 dimensions, in a deterministic
// order.
func (d Dimension) Orientations(mode RotationMode) []Dimension {
	var out []Dimension
	switch mode {
	case RotationNone:
		out = []Dimension{d}
	case RotationPlanar:
		out = []Dimension{
			{Width: d.Width, Depth: d.Depth, Height: d.Height},
			{Width: d.Depth, Depth: d.Width, Height: d.Height},
		}
	default:
		out = []Dimension{
			{Width: d.Width, Depth: d.Depth, Height: d.Height},
			{Width: d.Depth, Depth: d.Width, Height: d.Height},
			{Width: d.Width, Depth: d.Height, Height: d.Depth},
			{Width: d.Height, Depth: d.Width, Height: d.Depth},
			{Width: d.Height, Depth: d.Depth, Height: d.Width},
			{Width: d.Depth, Depth: d.Height, Height: d.Width},
		}
	}
	unique.Slice(&out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Width != b.Width {
			return a.Width < b.Width
		}
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		return a.Height < b.Height
	})
	return out
}

// ItemGroup is one row of the tabular input: a box size and how many
// copies of it must be packed.
type ItemGroup struct {
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Depth  int    `json:"depth"`
	Height int    `json:"height"`
	Count  int    `json:"count"`
}

// Item is a single box instance to pack.
type Item struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Depth  int    `json:"depth"`
	Height int    `json:"height"`
	Group  int    `json:"group"` // Index of the originating ItemGroup
}

func NewItem(label string, w, d, h int) Item {
	return Item{
		ID:     uuid.New().String()[:8],
		Label:  label,
		Width:  w,
		Depth:  d,
		Height: h,
	}
}

// Dim returns the item's dimensions.
func (it Item) Dim() Dimension {
	return Dimension{Width: it.Width, Depth: it.Depth, Height: it.Height}
}

// Volume returns the item's volume.
func (it Item) Volume() int {
	return it.Dim().Volume()
}

// ExpandGroups turns input rows into the flat box collection consumed
// by the solver. Each copy becomes its own Item; Group records the row
// it came from.
func ExpandGroups(groups []ItemGroup) []Item {
	var items []Item
	for gi, g := range groups {
		for n := 0; n < g.Count; n++ {
			it := NewItem(g.Label, g.Width, g.Depth, g.Height)
			it.Group = gi
			items = append(items, it)
		}
	}
	return items
}

// Mode selects what the solver optimizes for.
type Mode int

const (
	ModeMinimizeBins Mode = iota // Unbounded bin supply, minimize bins used
	ModeFixedBins                // At most MaxBins bins, pack as much as possible
)

func (m Mode) String() string {
	if m == ModeFixedBins {
		return "FixedBins"
	}
	return "MinimizeBins"
}

// Problem is a complete packing instance.
type Problem struct {
	BinSpec  Dimension    `json:"bin_spec"`
	Items    []Item       `json:"items"`
	Mode     Mode         `json:"mode"`
	MaxBins  int          `json:"max_bins,omitempty"` // Only meaningful in ModeFixedBins
	Rotation RotationMode `json:"rotation"`
}

func NewProblem(bin Dimension, items []Item) Problem {
	return Problem{
		BinSpec:  bin,
		Items:    items,
		Mode:     ModeMinimizeBins,
		Rotation: RotationFull,
	}
}

// BinVolume returns the volume of a single bin.
func (p Problem) BinVolume() int {
	return p.BinSpec.Volume()
}

// TotalItemVolume sums the volume of every item.
func (p Problem) TotalItemVolume() int {
	var total int
	for _, it := range p.Items {
		total += it.Volume()
	}
	return total
}
