package engine

import (
	"context"

	"github.com/bobotu/kaosu-packer/internal/model"
)

// solverState tracks where a run is in its lifecycle.
type solverState int

const (
	stateInitialized solverState = iota
	stateEvaluated
	stateEvolving
	stateTerminated
)

// Snapshot is one generation's progress record, delivered through the
// Progress callback.
type Snapshot struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	BinsUsed    int     `json:"bins_used"`
	Improved    bool    `json:"improved"`
	Stagnation  int     `json:"stagnation"`
}

// Solver runs the biased random-key genetic algorithm over one packing
// problem. Build one with New. A Solver is single-use: rerunning with
// the same seed means building a new one.
type Solver struct {
	problem model.Problem
	params  Params
	boxes   []boxInfo
	eval    *evaluator
	seed    uint64

	state      solverState
	pop        []individual
	scratch    []individual
	generation int

	best       individual
	hasBest    bool
	stagnation int

	// Progress, when set, is called once per generation after its
	// evaluation completes. It runs on the caller's goroutine.
	Progress func(Snapshot)
}

// New validates the problem and parameters and builds a solver.
// Invalid configuration and infeasible boxes are rejected here, before
// any generation runs.
func New(problem model.Problem, params Params) (*Solver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := validateProblem(&problem); err != nil {
		return nil, err
	}
	boxes, err := newBoxTable(&problem)
	if err != nil {
		return nil, err
	}

	seed := params.Seed
	if seed == 0 {
		seed = entropySeed()
	}

	s := &Solver{
		problem: problem,
		params:  params,
		boxes:   boxes,
		seed:    seed,
	}
	s.eval = newEvaluator(&s.problem, boxes, params.Parallel)
	return s, nil
}

func validateProblem(p *model.Problem) error {
	if !p.BinSpec.IsValid() {
		return configErrorf("bin_spec", "dimensions must be positive, got %d×%d×%d",
			p.BinSpec.Width, p.BinSpec.Depth, p.BinSpec.Height)
	}
	if len(p.Items) == 0 {
		return configErrorf("items", "no boxes to pack")
	}
	if p.Mode == model.ModeFixedBins && p.MaxBins < 1 {
		return configErrorf("max_bins", "must be at least 1 in fixed-bin mode, got %d", p.MaxBins)
	}
	return nil
}

// Seed returns the seed driving this run. When Params.Seed was zero
// this is the entropy-drawn value, so a run can be reproduced later.
func (s *Solver) Seed() uint64 { return s.seed }

// Run evolves the population until the generation limit, a stagnation
// window without improvement, or cancellation. On cancellation the best
// solution found so far is returned together with the context's error.
func (s *Solver) Run(ctx context.Context) (*model.Solution, error) {
	if s.state != stateInitialized {
		return nil, ErrSolverUsed
	}
	if err := ctx.Err(); err != nil {
		s.state = stateTerminated
		return nil, err
	}

	s.initPopulation()
	if err := s.eval.evaluate(s.pop); err != nil {
		s.state = stateTerminated
		return nil, err
	}
	sortByFitness(s.pop)
	s.state = stateEvaluated
	s.report(s.captureBest())

	s.state = stateEvolving
	for s.generation < s.params.MaxGenerations {
		if err := ctx.Err(); err != nil {
			return s.finish(), err
		}
		if s.stagnation >= s.params.StagnationLimit {
			break
		}
		if err := s.step(); err != nil {
			s.state = stateTerminated
			return nil, err
		}
	}
	return s.finish(), nil
}

// step breeds and evaluates one generation.
func (s *Solver) step() error {
	s.generation++
	s.nextPopulation()
	if err := s.eval.evaluate(s.pop); err != nil {
		return err
	}
	sortByFitness(s.pop)
	s.report(s.captureBest())
	return nil
}

// initPopulation draws generation zero, one sub-RNG per slot.
func (s *Solver) initPopulation() {
	n := len(s.problem.Items)
	s.pop = make([]individual, 0, s.params.PopulationSize)
	for slot := 0; slot < s.params.PopulationSize; slot++ {
		rng := slotRand(s.seed, 0, slot)
		s.pop = append(s.pop, individual{chrom: randomChromosome(n, rng)})
	}
}

// nextPopulation breeds the following generation from the sorted
// current one: elites carried unchanged with their fitness, fresh
// mutants, then biased crossover children. Every stochastic slot draws
// from its own (seed, generation, slot) sub-RNG, so breeding does not
// depend on evaluation order or worker count.
func (s *Solver) nextPopulation() {
	elites := s.params.numElites()
	mutants := s.params.numMutants()
	p := s.params.PopulationSize
	n := len(s.problem.Items)

	next := s.scratch[:0]
	next = append(next, s.pop[:elites]...)
	for slot := elites; slot < p; slot++ {
		rng := slotRand(s.seed, s.generation, slot)
		var c chromosome
		if slot < elites+mutants {
			c = randomChromosome(n, rng)
		} else {
			elite := s.pop[rng.Intn(elites)].chrom
			other := s.pop[elites+rng.Intn(p-elites)].chrom
			c = crossover(elite, other, s.params.EliteBias, rng)
		}
		next = append(next, individual{chrom: c})
	}
	s.scratch = s.pop[:0]
	s.pop = next
}

// captureBest folds the current generation's best into the global best
// and updates the stagnation counter. Returns whether the global best
// strictly improved.
func (s *Solver) captureBest() bool {
	gen := s.pop[0]
	if !s.hasBest || gen.fitness < s.best.fitness {
		s.best = gen
		s.hasBest = true
		s.stagnation = 0
		return true
	}
	s.stagnation++
	return false
}

func (s *Solver) report(improved bool) {
	if s.Progress == nil {
		return
	}
	s.Progress(Snapshot{
		Generation:  s.generation,
		BestFitness: s.best.fitness,
		BinsUsed:    s.best.bins,
		Improved:    improved,
		Stagnation:  s.stagnation,
	})
}

// finish recomputes the winning chromosome's placement. Geometry is
// materialized only here, never per population member.
func (s *Solver) finish() *model.Solution {
	s.state = stateTerminated
	fitness, bins, unplaced := s.eval.placers[0].decodeFull(s.best.chrom)
	return &model.Solution{
		BinSpec:     s.problem.BinSpec,
		Bins:        bins,
		Unplaced:    unplaced,
		Fitness:     fitness,
		Seed:        s.seed,
		Generations: s.generation,
	}
}
