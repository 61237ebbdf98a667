package engine

import (
	"math/rand"
	"sort"
)

// chromosome is a vector of random keys in [0,1). For a problem with n
// boxes it carries 3n genes: [0,n) priority, [n,2n) orientation and
// [2n,3n) bin choice.
type chromosome []float64

func (c chromosome) numBoxes() int { return len(c) / 3 }

func (c chromosome) priorityGene(box int) float64 { return c[box] }

func (c chromosome) orientationGene(box int) float64 { return c[c.numBoxes()+box] }

func (c chromosome) binGene(box int) float64 { return c[2*c.numBoxes()+box] }

// randomChromosome draws a fresh chromosome for numBoxes boxes.
func randomChromosome(numBoxes int, rng *rand.Rand) chromosome {
	c := make(chromosome, 3*numBoxes)
	for i := range c {
		c[i] = rng.Float64()
	}
	return c
}

// crossover mates an elite with a non-elite parent. Each child gene
// comes from the elite parent with probability bias, from the non-elite
// parent otherwise.
func crossover(elite, nonElite chromosome, bias float64, rng *rand.Rand) chromosome {
	child := make(chromosome, len(elite))
	for i := range child {
		if rng.Float64() <= bias {
			child[i] = elite[i]
		} else {
			child[i] = nonElite[i]
		}
	}
	return child
}

// individual pairs a chromosome with its decoded fitness. Elites keep
// their evaluation across generations.
type individual struct {
	chrom     chromosome
	fitness   float64
	bins      int
	evaluated bool
}

// sortByFitness orders a population best first. The stable sort keeps
// the relative order of equal-fitness individuals independent of the
// number of evaluation workers.
func sortByFitness(pop []individual) {
	sort.SliceStable(pop, func(i, j int) bool {
		return pop[i].fitness < pop[j].fitness
	})
}
