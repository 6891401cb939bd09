package telemetry

import (
	"log/slog"
)

// GenerationStats holds aggregated statistics for one finished generation.
type GenerationStats struct {
	Generation int     `csv:"generation"`
	EndTick    int64   `csv:"end_tick"`
	Ticks      int64   `csv:"ticks"`
	SimTimeSec float64 `csv:"sim_time"`
	Size       int     `csv:"size"`
	Restarted  bool    `csv:"restarted"`

	// Score
	MaxScore      int     `csv:"max_score"`
	MeanScore     float64 `csv:"mean_score"`
	BestScoreEver int     `csv:"best_score_ever"`

	// Fitness distribution
	BestFitness float64 `csv:"best_fitness"`
	MeanFitness float64 `csv:"mean_fitness"`
	FitnessP10  float64 `csv:"fitness_p10"`
	FitnessP50  float64 `csv:"fitness_p50"`
	FitnessP90  float64 `csv:"fitness_p90"`

	// Survival
	MeanFrames float64 `csv:"mean_frames"`
	FramesStd  float64 `csv:"frames_std"`
	MaxFrames  int     `csv:"max_frames"`

	// Events during the generation
	Flaps          int     `csv:"flaps"`
	FlapRate       float64 `csv:"flap_rate"` // flaps per agent-frame
	Collisions     int     `csv:"collisions"`
	BoundaryDeaths int     `csv:"boundary_deaths"`
	Passes         int     `csv:"passes"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int64("end_tick", s.EndTick),
		slog.Int64("ticks", s.Ticks),
		slog.Int("size", s.Size),
		slog.Bool("restarted", s.Restarted),
		slog.Int("max_score", s.MaxScore),
		slog.Float64("mean_score", s.MeanScore),
		slog.Int("best_score_ever", s.BestScoreEver),
		slog.Float64("best_fitness", s.BestFitness),
		slog.Float64("mean_fitness", s.MeanFitness),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Float64("mean_frames", s.MeanFrames),
		slog.Int("max_frames", s.MaxFrames),
		slog.Float64("flap_rate", s.FlapRate),
		slog.Int("collisions", s.Collisions),
		slog.Int("boundary_deaths", s.BoundaryDeaths),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"generation", s.Generation,
		"end_tick", s.EndTick,
		"ticks", s.Ticks,
		"size", s.Size,
		"restarted", s.Restarted,
		"max_score", s.MaxScore,
		"best_score_ever", s.BestScoreEver,
		"best_fitness", s.BestFitness,
		"mean_fitness", s.MeanFitness,
		"fitness_p10", s.FitnessP10,
		"fitness_p50", s.FitnessP50,
		"fitness_p90", s.FitnessP90,
		"mean_frames", s.MeanFrames,
		"max_frames", s.MaxFrames,
		"flaps", s.Flaps,
		"collisions", s.Collisions,
		"boundary_deaths", s.BoundaryDeaths,
		"passes", s.Passes,
	)
}
