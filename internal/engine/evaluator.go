package engine

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/bobotu/kaosu-packer/internal/model"
)

// evaluator fans chromosome decoding out across a fixed worker set.
// Worker w owns slots w, w+workers, w+2·workers, ... of the population,
// so every slot is written by exactly one goroutine and the merged
// result is identical for any worker count.
type evaluator struct {
	placers []*placer
}

// newEvaluator builds one decoder per worker: NumCPU workers when
// parallel evaluation is on, a single worker otherwise.
func newEvaluator(problem *model.Problem, boxes []boxInfo, parallel bool) *evaluator {
	workers := 1
	if parallel {
		workers = runtime.NumCPU()
	}
	ev := &evaluator{placers: make([]*placer, 0, workers)}
	for i := 0; i < workers; i++ {
		ev.placers = append(ev.placers, newPlacer(problem, boxes))
	}
	return ev
}

// evaluate fills in fitness for every population member lacking one.
// A worker failure fails the whole evaluation; missing fitness values
// are never defaulted.
func (ev *evaluator) evaluate(pop []individual) error {
	workers := len(ev.placers)
	if workers == 1 {
		return evaluateSlots(ev.placers[0], pop, 0, 1)
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			errs[w] = evaluateSlots(ev.placers[w], pop, w, workers)
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// evaluateSlots decodes population slots start, start+stride, ... with
// one placer. A panic inside a decode is surfaced as an error.
func evaluateSlots(pl *placer, pop []individual, start, stride int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode failed: %v", r)
		}
	}()
	for i := start; i < len(pop); i += stride {
		if pop[i].evaluated {
			continue
		}
		pop[i].fitness, pop[i].bins = pl.decode(pop[i].chrom)
		pop[i].evaluated = true
	}
	return nil
}
