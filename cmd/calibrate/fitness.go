package main

import (
	"math"
	"sync"

	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/config"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/game"
	"github.com/stevelikesmusic/tiger-evolution-3d-sub001/telemetry"
)

// FitnessEvaluator runs headless simulations and scores how well a
// parameter vector produces a tense-but-survivable ambush experience.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	configPath string

	mu          sync.Mutex
	bestFitness float64
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, configPath string) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		configPath:  configPath,
		bestFitness: math.Inf(1),
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	exit        game.ExitStats
	windowStats []telemetry.WindowStats
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality := fe.computeQuality(result)
			results[idx] = seedResult{
				fitness: fe.computeFitness(result, quality),
				quality: quality,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	// Fresh config per run: the games run in parallel and must not
	// share mutable state.
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		// The path was already validated in main; defaults as fallback.
		cfg = config.Default()
	}
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	g, err := game.NewGame(game.Options{
		Seed:     seed,
		Headless: true,
		MaxTicks: fe.maxTicks,
		Config:   cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		result.exit = game.ExitStats{}
		return result
	}
	result.exit = g.RunHeadless()
	g.Unload()
	return result
}

// Scoring targets: the tiger should survive the whole run while
// spending a meaningful fraction of it under threat, with ambushes
// that land often enough to matter but not reliably.
const (
	targetDangerFrac    = 0.25 // fraction of time at danger tier or above
	dangerFracWidth     = 0.15
	targetHitRate       = 0.45
	hitRateWidth        = 0.20
	targetStrikesPerMin = 1.5

	qualityWeightDanger   = 0.35
	qualityWeightHitRate  = 0.30
	qualityWeightPressure = 0.20
	qualityWeightSteady   = 0.15
)

// computeQuality scores one run in [0, 1].
func (fe *FitnessEvaluator) computeQuality(r *runResult) float64 {
	exit := r.exit
	if exit.SimTimeSec <= 0 {
		return 0
	}

	// 1. Time under threat near the target band
	dErr := (exit.DangerTimeFrac - targetDangerFrac) / dangerFracWidth
	dangerScore := math.Exp(-dErr * dErr)

	// 2. Ambush hit rate near the target band (needs strikes to judge)
	hitScore := 0.0
	if exit.Strikes > 0 {
		hitRate := float64(exit.Hits) / float64(exit.Strikes)
		hErr := (hitRate - targetHitRate) / hitRateWidth
		hitScore = math.Exp(-hErr * hErr)
	}

	// 3. Ambush pressure: enough strike attempts to feel hunted
	strikesPerMin := float64(exit.Strikes) / (exit.SimTimeSec / 60.0)
	pressureScore := 1.0 - math.Exp(-strikesPerMin/targetStrikesPerMin)

	// 4. Steady threat: awareness should oscillate, not flatline.
	// Penalize runs where the windowed awareness variance collapses.
	steadyScore := 0.0
	if len(r.windowStats) >= 2 {
		means := make([]float64, 0, len(r.windowStats))
		for _, w := range r.windowStats {
			means = append(means, w.AwarenessMean)
		}
		steadyScore = 1.0 - math.Exp(-cv(means)/0.3)
	}

	quality := qualityWeightDanger*dangerScore +
		qualityWeightHitRate*hitScore +
		qualityWeightPressure*pressureScore +
		qualityWeightSteady*steadyScore

	return clamp01(quality)
}

// computeFitness calculates the scalar fitness (lower = better).
// Survival dominates: a dead tiger truncates the run and loses most of
// the score regardless of how exciting the fight was.
func (fe *FitnessEvaluator) computeFitness(r *runResult, quality float64) float64 {
	survival := float64(r.exit.Ticks)
	return -(survival * (1.0 + 0.5*quality))
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff/n) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
