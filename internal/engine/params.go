package engine

// Params holds the genetic algorithm parameters for one run.
type Params struct {
	PopulationSize  int     `json:"population_size"`
	EliteFraction   float64 `json:"elite_fraction"`   // Share of the population copied unchanged
	MutantFraction  float64 `json:"mutant_fraction"`  // Share replaced by fresh random chromosomes
	EliteBias       float64 `json:"elite_bias"`       // Probability a child gene comes from its elite parent
	MaxGenerations  int     `json:"max_generations"`
	StagnationLimit int     `json:"stagnation_limit"` // Stop after this many generations without improvement
	Seed            uint64  `json:"seed,omitempty"`   // 0 draws a fresh seed
	Parallel        bool    `json:"parallel"`
}

// DefaultParams returns the reference parameter set.
func DefaultParams() Params {
	return Params{
		PopulationSize:  100,
		EliteFraction:   0.10,
		MutantFraction:  0.15,
		EliteBias:       0.70,
		MaxGenerations:  200,
		StagnationLimit: 5,
		Parallel:        true,
	}
}

// RecommendParams scales the reference parameters to a problem of
// numBoxes boxes: population size 30 per box, everything else as in
// DefaultParams.
func RecommendParams(numBoxes int) Params {
	p := DefaultParams()
	p.PopulationSize = 30 * numBoxes
	return p
}

// numElites returns the elite set size, truncated like the fractions
// themselves.
func (p Params) numElites() int {
	return int(p.EliteFraction * float64(p.PopulationSize))
}

// numMutants returns the number of fresh random chromosomes injected
// each generation.
func (p Params) numMutants() int {
	return int(p.MutantFraction * float64(p.PopulationSize))
}

// Validate rejects parameter sets no generation could run with. It
// returns a *ConfigError describing the first offending field.
func (p Params) Validate() error {
	if p.PopulationSize <= 0 {
		return configErrorf("population_size", "must be positive, got %d", p.PopulationSize)
	}
	if p.EliteFraction < 0 || p.EliteFraction > 1 {
		return configErrorf("elite_fraction", "must be within [0,1], got %v", p.EliteFraction)
	}
	if p.MutantFraction < 0 || p.MutantFraction > 1 {
		return configErrorf("mutant_fraction", "must be within [0,1], got %v", p.MutantFraction)
	}
	if p.EliteBias < 0 || p.EliteBias > 1 {
		return configErrorf("elite_bias", "must be within [0,1], got %v", p.EliteBias)
	}
	if p.EliteFraction*float64(p.PopulationSize)+p.MutantFraction*float64(p.PopulationSize) > float64(p.PopulationSize) {
		return configErrorf("elite_fraction", "elites (%v) plus mutants (%v) exceed the population",
			p.EliteFraction, p.MutantFraction)
	}
	if p.numElites() < 1 {
		return configErrorf("elite_fraction", "yields an empty elite set for population %d", p.PopulationSize)
	}
	if p.numElites() >= p.PopulationSize {
		return configErrorf("elite_fraction", "leaves no non-elite members for population %d", p.PopulationSize)
	}
	if p.MaxGenerations < 1 {
		return configErrorf("max_generations", "must be positive, got %d", p.MaxGenerations)
	}
	if p.StagnationLimit < 1 {
		return configErrorf("stagnation_limit", "must be positive, got %d", p.StagnationLimit)
	}
	return nil
}
