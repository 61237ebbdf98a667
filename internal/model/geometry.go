package model

// Point represents a 3D coordinate inside a bin.
// X runs along the width, Y along the height, Z along the depth.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// DistanceSq returns the squared euclidean distance to another point.
func (p Point) DistanceSq(other Point) int {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// atMost reports whether every coordinate of p is <= the matching
// coordinate of other.
func (p Point) atMost(other Point) bool {
	return p.X <= other.X && p.Y <= other.Y && p.Z <= other.Z
}

// Space is an axis-aligned box between a minimum and a maximum corner.
// It doubles as a placed box's occupied region and as an empty maximal
// space tracked by the packing heuristic.
type Space struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// NewSpace builds a space from its two corners.
func NewSpace(min, max Point) Space {
	return Space{Min: min, Max: max}
}

// SpaceAt builds the space occupied by a box of dimensions d placed
// with its minimum corner at origin.
func SpaceAt(origin Point, d Dimension) Space {
	return Space{
		Min: origin,
		Max: Point{
			X: origin.X + d.Width,
			Y: origin.Y + d.Height,
			Z: origin.Z + d.Depth,
		},
	}
}

// Width returns the extent along X.
func (s Space) Width() int { return s.Max.X - s.Min.X }

// Height returns the extent along Y.
func (s Space) Height() int { return s.Max.Y - s.Min.Y }

// Depth returns the extent along Z.
func (s Space) Depth() int { return s.Max.Z - s.Min.Z }

// Volume returns the enclosed volume.
func (s Space) Volume() int {
	return s.Width() * s.Height() * s.Depth()
}

// Size returns the space's extents as a Dimension.
func (s Space) Size() Dimension {
	return Dimension{Width: s.Width(), Depth: s.Depth(), Height: s.Height()}
}

// Fits reports whether a box of dimensions d fits inside the space.
func (s Space) Fits(d Dimension) bool {
	return s.Width() >= d.Width && s.Height() >= d.Height && s.Depth() >= d.Depth
}

// Contains reports whether other lies entirely within s. A space
// contains itself.
func (s Space) Contains(other Space) bool {
	return s.Min.atMost(other.Min) && other.Max.atMost(s.Max)
}

// Intersects reports whether the two spaces share volume or touch.
func (s Space) Intersects(other Space) bool {
	return s.Min.atMost(other.Max) && other.Min.atMost(s.Max)
}

// Overlap returns the intersection box of two spaces. Meaningful only
// when the spaces intersect; the result may be degenerate (zero extent
// on an axis) when they merely touch.
func (s Space) Overlap(other Space) Space {
	return Space{
		Min: Point{
			X: max(s.Min.X, other.Min.X),
			Y: max(s.Min.Y, other.Min.Y),
			Z: max(s.Min.Z, other.Min.Z),
		},
		Max: Point{
			X: min(s.Max.X, other.Max.X),
			Y: min(s.Max.Y, other.Max.Y),
			Z: min(s.Max.Z, other.Max.Z),
		},
	}
}
