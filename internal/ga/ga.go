// Package ga is the population-based metaheuristic optimizer (C7):
// randomized feasible-ish seeding, rank selection, uniform per-slot
// crossover, structural mutation, and elitism over the same assignment
// space the backtracking solver searches. Grounded in the teacher's
// worker-pool/result-channel concurrency pattern (main.go, cli.go) —
// generalized from "one goroutine per search attempt, aggregated by a
// collector" to "one goroutine per individual, synchronized at each
// generation boundary" per spec.md §5.
package ga

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/univsched/unitimetable/internal/fitness"
	"github.com/univsched/unitimetable/internal/materialize"
	"github.com/univsched/unitimetable/internal/metrics"
	"github.com/univsched/unitimetable/internal/model"
	"github.com/univsched/unitimetable/internal/problem"
)

// Placement is one lesson's committed tuple within a single week's
// bucket.
type Placement struct {
	LessonID int
	Tuple    model.Tuple
}

// Individual is one candidate schedule. Unlike the solver's single
// Assignment, an Individual tracks the even and odd weeks as
// independently mutable buckets (spec.md §4.6's mutation operators can
// move or drop a lesson from one week without touching the other),
// which is why it keeps its own per-week placements rather than
// referencing a Problem-wide assignment.
type Individual struct {
	ID   string
	Even map[model.Slot][]Placement
	Odd  map[model.Slot][]Placement

	Fitness float64
}

func newIndividual() *Individual {
	return &Individual{
		ID:   uuid.NewString(),
		Even: make(map[model.Slot][]Placement),
		Odd:  make(map[model.Slot][]Placement),
	}
}

func (ind *Individual) clone() *Individual {
	out := newIndividual()
	out.Fitness = ind.Fitness
	for slot, placements := range ind.Even {
		out.Even[slot] = append([]Placement(nil), placements...)
	}
	for slot, placements := range ind.Odd {
		out.Odd[slot] = append([]Placement(nil), placements...)
	}
	return out
}

// Optimizer runs the GA over a single Problem.
type Optimizer struct {
	p       *problem.Problem
	log     *zap.Logger
	metrics *metrics.Registry
}

func New(p *problem.Problem, log *zap.Logger, m *metrics.Registry) *Optimizer {
	return &Optimizer{p: p, log: log, metrics: m}
}

// Run evolves a population for Config.GA.Generations generations (or
// until an individual reaches fitness 1.0, or ctx is cancelled between
// generations) and returns the best individual found.
func (o *Optimizer) Run(ctx context.Context) *Individual {
	cfg := o.p.Config.GA
	popSize := cfg.PopulationSize
	if popSize < 1 {
		popSize = 1
	}

	population := o.parallelMap(popSize, func(i int) *Individual {
		ind := o.seed(o.p.NewRand(int64(i) + 1))
		ind.Fitness = o.evaluate(ind)
		return ind
	})

	best := bestOf(population)
	o.metrics.GABestFitness.Set(best.Fitness)

	generations := cfg.Generations
	for gen := 0; gen < generations; gen++ {
		select {
		case <-ctx.Done():
			o.log.Info("ga cancelled, returning best so far", zap.Float64("fitness", best.Fitness))
			return best
		default:
		}

		population = o.nextGeneration(population, int64(gen))
		for _, ind := range population {
			o.metrics.GAPopulationFit.Observe(ind.Fitness)
		}

		genBest := bestOf(population)
		if genBest.Fitness > best.Fitness {
			best = genBest
			o.metrics.GABestFitness.Set(best.Fitness)
		}
		o.metrics.GAGenerations.Inc()
		o.log.Info("generation complete", zap.Int("generation", gen), zap.Float64("best_fitness", best.Fitness))

		if best.Fitness >= 1.0 {
			o.log.Info("early stop: reached fitness 1.0", zap.Int("generation", gen))
			return best
		}
	}

	return best
}

func bestOf(population []*Individual) *Individual {
	best := population[0]
	for _, ind := range population[1:] {
		if ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}

// nextGeneration performs selection, elitism, crossover, and mutation,
// returning a population of the same size.
func (o *Optimizer) nextGeneration(population []*Individual, salt int64) []*Individual {
	cfg := o.p.Config.GA
	ranked := append([]*Individual(nil), population...)
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Fitness > ranked[b].Fitness })

	eliteCount := maxInt(1, int(float64(len(ranked))*cfg.EliteFraction))
	if eliteCount > len(ranked) {
		eliteCount = len(ranked)
	}
	poolCount := maxInt(1, int(float64(len(ranked))*cfg.SelectionFraction))
	if poolCount > len(ranked) {
		poolCount = len(ranked)
	}
	pool := ranked[:poolCount]

	next := make([]*Individual, 0, len(population))
	for i := 0; i < eliteCount; i++ {
		next = append(next, ranked[i].clone())
	}

	offspringNeeded := len(population) - eliteCount
	offspring := o.parallelMap(offspringNeeded, func(i int) *Individual {
		rng := o.p.NewRand(salt*1_000_003 + int64(i) + 2)
		parentA := pool[rng.Intn(len(pool))]
		parentB := pool[rng.Intn(len(pool))]
		child := o.crossover(parentA, parentB, rng)
		o.mutate(child, rng)
		child.Fitness = o.evaluate(child)
		return child
	})

	return append(next, offspring...)
}

// parallelMap runs fn(0..n) across runtime.NumCPU() goroutines and
// collects results in index order. Grounded in the teacher's
// WaitGroup-based worker pool (main.go), adapted from "run until time
// budget exhausted" to "run exactly n independent tasks".
func (o *Optimizer) parallelMap(n int, fn func(int) *Individual) []*Individual {
	results := make([]*Individual, n)
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// Timetable materializes ind into the same Timetable shape the
// backtracking solver's output takes, so reports never need to know
// whether a schedule came from search or optimization.
func (ind *Individual) Timetable(p *problem.Problem) *materialize.Timetable {
	return &materialize.Timetable{
		Even: placementsToEntries(p, ind.Even),
		Odd:  placementsToEntries(p, ind.Odd),
	}
}

func (o *Optimizer) evaluate(ind *Individual) float64 {
	tt := &materialize.Timetable{Even: placementsToEntries(o.p, ind.Even), Odd: placementsToEntries(o.p, ind.Odd)}
	return fitness.EvaluateTimetable(tt)
}

func placementsToEntries(p *problem.Problem, buckets map[model.Slot][]Placement) map[model.Slot][]materialize.Entry {
	out := make(map[model.Slot][]materialize.Entry, len(buckets))
	for slot, placements := range buckets {
		entries := make([]materialize.Entry, 0, len(placements))
		for _, pl := range placements {
			if e, ok := materialize.EntryFor(p, pl.LessonID, pl.Tuple); ok {
				entries = append(entries, e)
			}
		}
		out[slot] = entries
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
