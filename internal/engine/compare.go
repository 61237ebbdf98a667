package engine

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/bobotu/kaosu-packer/internal/model"
)

// Scenario names one solver setup to evaluate against the others. Each
// seed in Seeds is one full run; an empty list runs once with
// Params.Seed.
type Scenario struct {
	Name     string
	Params   Params
	Rotation model.RotationMode
	Seeds    []uint64
}

// ScenarioResult aggregates the runs of a single scenario.
type ScenarioResult struct {
	Scenario          Scenario
	Best              *model.Solution
	MeanFitness       float64
	StddevFitness     float64
	MeanUtilization   float64
	StddevUtilization float64
	MeanBins          float64
}

// CompareScenarios solves the same problem under each scenario and
// aggregates the outcomes, ranked best mean fitness first. This enables
// side-by-side comparison of parameter sets and rotation policies. A
// scenario that fails to run (bad parameters, a rotation policy that
// makes some box infeasible, cancellation) fails the whole comparison
// with the scenario named in the error.
func CompareScenarios(ctx context.Context, problem model.Problem, scenarios []Scenario) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		res, err := runScenario(ctx, problem, sc)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MeanFitness < results[j].MeanFitness
	})
	return results, nil
}

func runScenario(ctx context.Context, problem model.Problem, sc Scenario) (ScenarioResult, error) {
	prob := problem
	prob.Rotation = sc.Rotation

	seeds := sc.Seeds
	if len(seeds) == 0 {
		seeds = []uint64{sc.Params.Seed}
	}

	var best *model.Solution
	fitness := make([]float64, 0, len(seeds))
	utils := make([]float64, 0, len(seeds))
	bins := make([]float64, 0, len(seeds))

	for _, seed := range seeds {
		params := sc.Params
		params.Seed = seed
		solver, err := New(prob, params)
		if err != nil {
			return ScenarioResult{}, err
		}
		sol, err := solver.Run(ctx)
		if err != nil {
			return ScenarioResult{}, err
		}

		fitness = append(fitness, sol.Fitness)
		utils = append(utils, sol.TotalUtilization())
		bins = append(bins, float64(sol.BinsUsed()))
		if best == nil || sol.Fitness < best.Fitness {
			best = sol
		}
	}

	res := ScenarioResult{
		Scenario:        sc,
		Best:            best,
		MeanFitness:     stat.Mean(fitness, nil),
		MeanUtilization: stat.Mean(utils, nil),
		MeanBins:        stat.Mean(bins, nil),
	}
	if len(seeds) > 1 {
		res.StddevFitness = stat.StdDev(fitness, nil)
		res.StddevUtilization = stat.StdDev(utils, nil)
	}
	return res, nil
}

// BuildDefaultScenarios generates what-if variants of one setup:
// the setup itself, a rotation alternative, a doubled population and a
// wider stagnation window.
func BuildDefaultScenarios(problem model.Problem, base Params) []Scenario {
	scenarios := []Scenario{
		{
			Name:     "Current Settings",
			Params:   base,
			Rotation: problem.Rotation,
		},
	}

	if problem.Rotation == model.RotationFull {
		scenarios = append(scenarios, Scenario{
			Name:     "Upright Boxes Only",
			Params:   base,
			Rotation: model.RotationPlanar,
		})
	} else {
		scenarios = append(scenarios, Scenario{
			Name:     "Full Rotation",
			Params:   base,
			Rotation: model.RotationFull,
		})
	}

	bigger := base
	bigger.PopulationSize = base.PopulationSize * 2
	scenarios = append(scenarios, Scenario{
		Name:     fmt.Sprintf("Population %d", bigger.PopulationSize),
		Params:   bigger,
		Rotation: problem.Rotation,
	})

	patient := base
	patient.StagnationLimit = base.StagnationLimit * 4
	scenarios = append(scenarios, Scenario{
		Name:     fmt.Sprintf("Stagnation Window %d", patient.StagnationLimit),
		Params:   patient,
		Rotation: problem.Rotation,
	})

	return scenarios
}
