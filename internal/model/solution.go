package model

// Placement records where one box ended up.
type Placement struct {
	BoxIndex int   `json:"box"` // Index into Problem.Items
	Bin      int   `json:"bin"`
	Space    Space `json:"space"`
}

// Solution is the best packing found by a solver run.
type Solution struct {
	BinSpec     Dimension     `json:"bin_spec"`
	Bins        [][]Placement `json:"bins"`
	Unplaced    []int         `json:"unplaced,omitempty"` // Box indices left out (fixed-bin mode)
	Fitness     float64       `json:"fitness"`
	Seed        uint64        `json:"seed"`
	Generations int           `json:"generations"`
}

// BinsUsed returns how many bins hold at least one box.
func (s Solution) BinsUsed() int {
	return len(s.Bins)
}

// PlacedCount returns the number of placed boxes.
func (s Solution) PlacedCount() int {
	var n int
	for _, bin := range s.Bins {
		n += len(bin)
	}
	return n
}

// BinLoad returns the volume occupied in one bin.
func (s Solution) BinLoad(bin int) int {
	var load int
	for _, p := range s.Bins[bin] {
		load += p.Space.Volume()
	}
	return load
}

// Utilization returns the per-bin volume usage percentage.
func (s Solution) Utilization() []float64 {
	bv := s.BinSpec.Volume()
	out := make([]float64, len(s.Bins))
	if bv == 0 {
		return out
	}
	for i := range s.Bins {
		out[i] = float64(s.BinLoad(i)) / float64(bv) * 100.0
	}
	return out
}

// TotalUtilization returns the overall volume usage percentage across
// all used bins.
func (s Solution) TotalUtilization() float64 {
	total := s.BinSpec.Volume() * len(s.Bins)
	if total == 0 {
		return 0
	}
	var used int
	for i := range s.Bins {
		used += s.BinLoad(i)
	}
	return float64(used) / float64(total) * 100.0
}
