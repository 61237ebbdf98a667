package engine

import (
	"github.com/bobotu/kaosu-packer/internal/model"
)

// bin is one open bin during a decode: the empty maximal spaces still
// free and the volume placed so far. The scratch slices are reused
// across placements.
type bin struct {
	spaces []model.Space
	used   int

	hitIdx    []int
	newSpaces []model.Space
}

// bestSpace returns the index of the free space in which a box of
// dimensions d sinks deepest, i.e. whose placement puts the box's max
// corner farthest from the bin's max corner. Ties keep the earliest
// space. Returns -1 when no free space holds the box.
func (b *bin) bestSpace(d model.Dimension, corner model.Point) int {
	best, bestDist := -1, -1
	for i, s := range b.spaces {
		if !s.Fits(d) {
			continue
		}
		boxCorner := model.SpaceAt(s.Min, d).Max
		if dist := corner.DistanceSq(boxCorner); dist > bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// place puts a box of dimensions d at the minimum corner of the free
// space at idx and rebuilds the free-space list around it. keep reports
// whether a space is still worth tracking for the boxes not yet placed.
func (b *bin) place(idx int, d model.Dimension, keep func(model.Space) bool) model.Space {
	placed := model.SpaceAt(b.spaces[idx].Min, d)
	b.used += placed.Volume()

	b.hitIdx = b.hitIdx[:0]
	for i, s := range b.spaces {
		if s.Intersects(placed) {
			b.hitIdx = append(b.hitIdx, i)
		}
	}

	b.newSpaces = b.newSpaces[:0]
	for _, i := range b.hitIdx {
		s := b.spaces[i]
		b.newSpaces = appendDifferences(b.newSpaces, s, s.Overlap(placed), keep)
	}

	for k := len(b.hitIdx) - 1; k >= 0; k-- {
		i := b.hitIdx[k]
		last := len(b.spaces) - 1
		b.spaces[i] = b.spaces[last]
		b.spaces = b.spaces[:last]
	}

	kept := b.spaces[:0]
	for _, s := range b.spaces {
		if keep(s) {
			kept = append(kept, s)
		}
	}
	b.spaces = kept

	for i, s := range b.newSpaces {
		if !containedInAnother(b.newSpaces, i) {
			b.spaces = append(b.spaces, s)
		}
	}
	return placed
}

// appendDifferences cuts overlap out of space and appends the up to six
// surviving pieces to dst. Piece order is fixed: low then high along X,
// Y, Z. Pieces with a zero extent or rejected by keep are dropped.
func appendDifferences(dst []model.Space, space, overlap model.Space, keep func(model.Space) bool) []model.Space {
	sb, su := space.Min, space.Max
	ob, ou := overlap.Min, overlap.Max
	pieces := [6]model.Space{
		model.NewSpace(sb, model.Point{X: ob.X, Y: su.Y, Z: su.Z}),
		model.NewSpace(model.Point{X: ou.X, Y: sb.Y, Z: sb.Z}, su),
		model.NewSpace(sb, model.Point{X: su.X, Y: ob.Y, Z: su.Z}),
		model.NewSpace(model.Point{X: sb.X, Y: ou.Y, Z: sb.Z}, su),
		model.NewSpace(sb, model.Point{X: su.X, Y: su.Y, Z: ob.Z}),
		model.NewSpace(model.Point{X: sb.X, Y: sb.Y, Z: ou.Z}, su),
	}
	for _, p := range pieces {
		if min(p.Width(), p.Height(), p.Depth()) == 0 {
			continue
		}
		if keep(p) {
			dst = append(dst, p)
		}
	}
	return dst
}

// containedInAnother reports whether spaces[i] lies inside some other
// entry of spaces. Equal twins keep their first occurrence only.
func containedInAnother(spaces []model.Space, i int) bool {
	for j, other := range spaces {
		if j == i || !other.Contains(spaces[i]) {
			continue
		}
		if i < j && spaces[i].Contains(other) {
			continue
		}
		return true
	}
	return false
}

// binArena pools bins across decodes so their free-space lists do not
// churn the allocator. Only the first open bins are live; the rest is
// retained storage from earlier decodes.
type binArena struct {
	spec   model.Dimension
	corner model.Point
	bins   []bin
	open   int
}

func newBinArena(spec model.Dimension) *binArena {
	return &binArena{
		spec:   spec,
		corner: model.SpaceAt(model.Point{}, spec).Max,
	}
}

// openNew starts one more bin seeded with the whole-bin space, reusing
// pooled storage when available, and returns its index.
func (a *binArena) openNew() int {
	if a.open == len(a.bins) {
		a.bins = append(a.bins, bin{})
	}
	b := &a.bins[a.open]
	b.used = 0
	b.spaces = append(b.spaces[:0], model.SpaceAt(model.Point{}, a.spec))
	a.open++
	return a.open - 1
}

// nth returns the open bin at idx.
func (a *binArena) nth(idx int) *bin {
	return &a.bins[idx]
}

// reset returns the arena to zero open bins, keeping the storage.
func (a *binArena) reset() {
	a.open = 0
}

// leastLoad returns the smallest used volume among open bins.
func (a *binArena) leastLoad() int {
	if a.open == 0 {
		return 0
	}
	least := a.bins[0].used
	for i := 1; i < a.open; i++ {
		if v := a.bins[i].used; v < least {
			least = v
		}
	}
	return least
}
