package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobotu/kaosu-packer/internal/model"
)

func TestCompareScenarios_RanksByMeanFitness(t *testing.T) {
	problem := cubeProblem()
	scenarios := BuildDefaultScenarios(problem, testParams(0))
	for i := range scenarios {
		scenarios[i].Seeds = []uint64{1, 2}
	}

	results, err := CompareScenarios(context.Background(), problem, scenarios)
	require.NoError(t, err)
	require.Len(t, results, len(scenarios))

	for i, res := range results {
		require.NotNil(t, res.Best, "scenario %q has no best solution", res.Scenario.Name)
		assert.Equal(t, 1, res.Best.BinsUsed())
		assert.InDelta(t, 100.0, res.MeanUtilization, 1e-9)
		assert.InDelta(t, 1.0, res.MeanBins, 1e-12)
		if i > 0 {
			assert.GreaterOrEqual(t, res.MeanFitness, results[i-1].MeanFitness,
				"results must be ranked best mean fitness first")
		}
	}
}

func TestCompareScenarios_SingleSeedSkipsSpread(t *testing.T) {
	problem := cubeProblem()
	scenarios := []Scenario{{
		Name:     "only",
		Params:   testParams(4),
		Rotation: model.RotationFull,
	}}

	results, err := CompareScenarios(context.Background(), problem, scenarios)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].StddevFitness)
	assert.Zero(t, results[0].StddevUtilization)
}

func TestCompareScenarios_NamesFailingScenario(t *testing.T) {
	problem := cubeProblem()
	bad := testParams(1)
	bad.PopulationSize = 0

	_, err := CompareScenarios(context.Background(), problem, []Scenario{{
		Name:     "broken setup",
		Params:   bad,
		Rotation: model.RotationFull,
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken setup")
}

func TestBuildDefaultScenarios_Variants(t *testing.T) {
	problem := cubeProblem()
	base := DefaultParams()

	scenarios := BuildDefaultScenarios(problem, base)
	require.NotEmpty(t, scenarios)
	assert.Equal(t, "Current Settings", scenarios[0].Name)
	assert.Equal(t, problem.Rotation, scenarios[0].Rotation)

	names := make([]string, len(scenarios))
	for i, sc := range scenarios {
		names[i] = sc.Name
	}
	assert.Contains(t, names, "Upright Boxes Only")
	assert.Contains(t, names, "Population 200")
	assert.Contains(t, names, "Stagnation Window 20")

	problem.Rotation = model.RotationNone
	names = names[:0]
	for _, sc := range BuildDefaultScenarios(problem, base) {
		names = append(names, sc.Name)
	}
	assert.Contains(t, names, "Full Rotation")
}
