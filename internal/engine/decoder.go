package engine

import (
	"math"
	"sort"

	"github.com/bobotu/kaosu-packer/internal/model"
)

// boxInfo caches one box's permitted orientations and the pruning
// thresholds the free-space filter needs. Built once per problem and
// shared read-only by every decoder instance.
type boxInfo struct {
	orientations []model.Dimension
	minExtent    int
	volume       int
}

// newBoxTable computes the per-box tables for a problem. Orientations
// that do not fit even an empty bin are dropped; a box left with no
// permitted orientation makes the whole problem infeasible.
func newBoxTable(p *model.Problem) ([]boxInfo, error) {
	empty := model.SpaceAt(model.Point{}, p.BinSpec)
	table := make([]boxInfo, len(p.Items))
	for i, it := range p.Items {
		dim := it.Dim()
		var permitted []model.Dimension
		for _, o := range dim.Orientations(p.Rotation) {
			if empty.Fits(o) {
				permitted = append(permitted, o)
			}
		}
		if len(permitted) == 0 {
			return nil, &InfeasibleItemError{BoxIndex: i, Box: dim, Bin: p.BinSpec}
		}
		table[i] = boxInfo{
			orientations: permitted,
			minExtent:    dim.MinExtent(),
			volume:       dim.Volume(),
		}
	}
	return table, nil
}

// pickOrientation maps an orientation gene onto a box's permitted list:
// six gene buckets, clipped to the entries that exist.
func pickOrientation(gene float64, permitted []model.Dimension) model.Dimension {
	idx := int(gene * 6)
	if idx >= len(permitted) {
		idx = len(permitted) - 1
	}
	return permitted[idx]
}

// innerSolution is the raw outcome of one decode. The placements and
// unplaced slices alias the placer's scratch buffers and stay valid
// only until its next decode.
type innerSolution struct {
	binsUsed   int
	leastLoad  int
	placedVol  int
	placements []model.Placement
	unplaced   []int
}

// placer decodes chromosomes into placements for one problem. Decoding
// is deterministic and draws no randomness. Each instance owns its
// scratch arenas, so distinct instances may decode concurrently.
type placer struct {
	problem   *model.Problem
	boxes     []boxInfo
	binVolume int

	arena      *binArena
	order      []int
	placements []model.Placement
	unplaced   []int
	admitBins  []int
	admitSpace []int
}

// newPlacer builds a decoder instance around the shared box table.
func newPlacer(problem *model.Problem, boxes []boxInfo) *placer {
	return &placer{
		problem:   problem,
		boxes:     boxes,
		binVolume: problem.BinVolume(),
		arena:     newBinArena(problem.BinSpec),
		order:     make([]int, len(problem.Items)),
	}
}

// decode turns a chromosome into its fitness and bin count. Placement
// geometry is discarded here; decodeFull recomputes it once for the
// winning chromosome.
func (pl *placer) decode(c chromosome) (float64, int) {
	sol := pl.place(c)
	return pl.fitnessOf(sol), sol.binsUsed
}

// decodeFull decodes a chromosome and materializes its placements
// grouped by bin, plus the indices of any unplaced boxes.
func (pl *placer) decodeFull(c chromosome) (float64, [][]model.Placement, []int) {
	sol := pl.place(c)
	bins := make([][]model.Placement, sol.binsUsed)
	for _, p := range sol.placements {
		bins[p.Bin] = append(bins[p.Bin], p)
	}
	var unplaced []int
	if len(sol.unplaced) > 0 {
		unplaced = append([]int(nil), sol.unplaced...)
	}
	return pl.fitnessOf(sol), bins, unplaced
}

// place runs the constructive heuristic: boxes in priority-gene order,
// the gene-chosen orientation, deepest free space in the gene-chosen
// bin. Free spaces that no remaining box can use are pruned as the
// minima rise.
func (pl *placer) place(c chromosome) innerSolution {
	pl.arena.reset()
	pl.sortByPriority(c)
	pl.placements = pl.placements[:0]
	pl.unplaced = pl.unplaced[:0]

	var placedVol int
	minExtent, minVolume := math.MaxInt, math.MaxInt
	keep := func(s model.Space) bool {
		return min(s.Width(), s.Height(), s.Depth()) >= minExtent && s.Volume() >= minVolume
	}

	for oi, boxIdx := range pl.order {
		info := &pl.boxes[boxIdx]
		orient := pickOrientation(c.orientationGene(boxIdx), info.orientations)
		binIdx, spaceIdx := pl.chooseBin(c, boxIdx, orient)

		// This box leaves the pool now, so the pruning thresholds may
		// rise whether or not it lands anywhere.
		if info.minExtent <= minExtent || info.volume <= minVolume {
			minExtent, minVolume = pl.remainingMinima(oi + 1)
		}

		if binIdx < 0 {
			pl.unplaced = append(pl.unplaced, boxIdx)
			continue
		}

		placed := pl.arena.nth(binIdx).place(spaceIdx, orient, keep)
		placedVol += placed.Volume()
		pl.placements = append(pl.placements, model.Placement{
			BoxIndex: boxIdx,
			Bin:      binIdx,
			Space:    placed,
		})
	}

	return innerSolution{
		binsUsed:   pl.arena.open,
		leastLoad:  pl.arena.leastLoad(),
		placedVol:  placedVol,
		placements: pl.placements,
		unplaced:   pl.unplaced,
	}
}

// sortByPriority rebuilds the processing order from the priority genes,
// ascending, ties broken by box index.
func (pl *placer) sortByPriority(c chromosome) {
	for i := range pl.order {
		pl.order[i] = i
	}
	sort.Slice(pl.order, func(a, b int) bool {
		ga, gb := c.priorityGene(pl.order[a]), c.priorityGene(pl.order[b])
		if ga != gb {
			return ga < gb
		}
		return pl.order[a] < pl.order[b]
	})
}

// chooseBin selects the bin and free-space index for a box in its
// chosen orientation, or (-1, -1) when the box cannot be placed.
//
// Minimizing bins, every open bin that admits the box is a candidate
// and the box's bin gene picks among them; a new bin opens only when
// none admits. With a fixed bin budget the first admitting bin wins,
// new bins open while the budget allows, and a box that still has no
// home is reported unplaced rather than failing the decode.
func (pl *placer) chooseBin(c chromosome, boxIdx int, orient model.Dimension) (int, int) {
	a := pl.arena
	if pl.problem.Mode == model.ModeFixedBins {
		for i := 0; i < a.open; i++ {
			if si := a.nth(i).bestSpace(orient, a.corner); si >= 0 {
				return i, si
			}
		}
		if a.open < pl.problem.MaxBins {
			return a.openNew(), 0
		}
		return -1, -1
	}

	pl.admitBins = pl.admitBins[:0]
	pl.admitSpace = pl.admitSpace[:0]
	for i := 0; i < a.open; i++ {
		if si := a.nth(i).bestSpace(orient, a.corner); si >= 0 {
			pl.admitBins = append(pl.admitBins, i)
			pl.admitSpace = append(pl.admitSpace, si)
		}
	}
	if len(pl.admitBins) == 0 {
		return a.openNew(), 0
	}
	k := int(c.binGene(boxIdx) * float64(len(pl.admitBins)))
	if k >= len(pl.admitBins) {
		k = len(pl.admitBins) - 1
	}
	return pl.admitBins[k], pl.admitSpace[k]
}

// remainingMinima scans the boxes not yet processed for the smallest
// extent and volume still to come.
func (pl *placer) remainingMinima(from int) (int, int) {
	minE, minV := math.MaxInt, math.MaxInt
	for _, boxIdx := range pl.order[from:] {
		info := &pl.boxes[boxIdx]
		if info.minExtent < minE {
			minE = info.minExtent
		}
		if info.volume < minV {
			minV = info.volume
		}
	}
	return minE, minV
}

// fitnessOf folds a decode outcome into the scalar the engine ranks by.
// Lower is better. A fully placed solution scores bins used plus the
// least-loaded bin's fill fraction; leaving k boxes out scores past
// every feasible value, ordered first by k and then by wasted volume.
func (pl *placer) fitnessOf(sol innerSolution) float64 {
	if k := len(sol.unplaced); k > 0 {
		capacity := float64(pl.problem.MaxBins * pl.binVolume)
		waste := 1.0 - float64(sol.placedVol)/capacity
		return float64(pl.problem.MaxBins+k) + 1.0 + waste
	}
	return float64(sol.binsUsed) + float64(sol.leastLoad)/float64(pl.binVolume)
}
