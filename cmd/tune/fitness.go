package main

import (
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flapgen/config"
	"github.com/pthm-cable/flapgen/game"
	"github.com/pthm-cable/flapgen/telemetry"
)

// Evaluator runs headless training runs and scores a parameter vector.
type Evaluator struct {
	params      *ParamVector
	base        *config.Config
	seeds       []int64
	generations int
	maxTicks    int64

	mu       sync.Mutex
	lastBest int
}

// NewEvaluator creates an evaluator that trains for the given number of
// generations per seed, capped at maxTicks.
func NewEvaluator(params *ParamVector, base *config.Config, seeds []int64, generations int, maxTicks int64) *Evaluator {
	return &Evaluator{
		params:      params,
		base:        base,
		seeds:       seeds,
		generations: generations,
		maxTicks:    maxTicks,
	}
}

// LastBestScore returns the best score reached by any seed in the latest evaluation.
func (e *Evaluator) LastBestScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastBest
}

// runResult holds the outcome of one seeded run.
type runResult struct {
	maxScores []float64 // per finished generation
	bestScore int
}

// Evaluate returns the fitness of a raw parameter vector (lower = better).
// Seeds run in parallel.
func (e *Evaluator) Evaluate(x []float64) float64 {
	cfg := e.configFor(x)

	results := make([]runResult, len(e.seeds))
	var wg sync.WaitGroup
	for i, seed := range e.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = e.run(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	fitness := make([]float64, len(results))
	best := 0
	for i, r := range results {
		fitness[i] = runFitness(r)
		best = max(best, r.bestScore)
	}

	e.mu.Lock()
	e.lastBest = best
	e.mu.Unlock()

	return stat.Mean(fitness, nil)
}

// run trains one population until the generation budget or the tick cap.
func (e *Evaluator) run(cfg *config.Config, seed int64) runResult {
	var res runResult

	opts := game.DefaultOptions(seed)
	opts.OnGeneration = func(s telemetry.GenerationStats) {
		res.maxScores = append(res.maxScores, float64(s.MaxScore))
	}

	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		slog.Error("failed to create game", "seed", seed, "error", err)
		return res
	}
	defer g.Unload()

	for g.Generation() <= e.generations && g.Tick() < e.maxTicks {
		g.Step()
	}
	res.bestScore = g.Stats().BestScore
	return res
}

// runFitness rewards both how fast scores rise and how high they get: the
// mean per-generation max score plus the best score, negated for minimization.
func runFitness(r runResult) float64 {
	mean := 0.0
	if len(r.maxScores) > 0 {
		mean = stat.Mean(r.maxScores, nil)
	}
	return -(mean + float64(r.bestScore))
}

// configFor returns a copy of the base config with x applied.
func (e *Evaluator) configFor(x []float64) *config.Config {
	cfg := *e.base
	e.params.ApplyToConfig(&cfg, x)
	return &cfg
}
