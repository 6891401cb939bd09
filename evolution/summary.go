package evolution

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flapgen/agent"
)

// Summary describes one finished generation.
type Summary struct {
	Generation    int
	Size          int
	MaxScore      int
	MeanScore     float64
	BestScoreEver int

	BestFitness   float64
	MeanFitness   float64
	MedianFitness float64
	FitnessP10    float64
	FitnessP90    float64

	MeanFrames float64
	FramesStd  float64
	MaxFrames  int

	Restarted bool // bred from scratch because no agent had positive fitness
}

// Summarize computes fitness and survival statistics for agents whose Fitness is set.
func Summarize(generation int, agents []*agent.Agent) Summary {
	s := Summary{Generation: generation, Size: len(agents)}
	if len(agents) == 0 {
		return s
	}

	fitness := make([]float64, len(agents))
	frames := make([]float64, len(agents))
	scores := make([]float64, len(agents))
	for i, a := range agents {
		fitness[i] = a.Fitness
		frames[i] = float64(a.FramesAlive)
		scores[i] = float64(a.Score)
		if a.Score > s.MaxScore {
			s.MaxScore = a.Score
		}
		if a.FramesAlive > s.MaxFrames {
			s.MaxFrames = a.FramesAlive
		}
	}

	s.MeanFitness = stat.Mean(fitness, nil)
	s.MeanFrames, s.FramesStd = stat.PopMeanStdDev(frames, nil)
	s.MeanScore = stat.Mean(scores, nil)
	s.BestFitness = floats.Max(fitness)

	sort.Float64s(fitness)
	s.FitnessP10 = stat.Quantile(0.1, stat.Empirical, fitness, nil)
	s.MedianFitness = stat.Quantile(0.5, stat.Empirical, fitness, nil)
	s.FitnessP90 = stat.Quantile(0.9, stat.Empirical, fitness, nil)

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("size", s.Size),
		slog.Int("max_score", s.MaxScore),
		slog.Int("best_score_ever", s.BestScoreEver),
		slog.Float64("best_fitness", s.BestFitness),
		slog.Float64("mean_fitness", s.MeanFitness),
		slog.Float64("median_fitness", s.MedianFitness),
		slog.Float64("fitness_p10", s.FitnessP10),
		slog.Float64("fitness_p90", s.FitnessP90),
		slog.Float64("mean_frames", s.MeanFrames),
		slog.Int("max_frames", s.MaxFrames),
		slog.Bool("restarted", s.Restarted),
	)
}
