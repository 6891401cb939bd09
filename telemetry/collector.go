package telemetry

import "github.com/pthm-cable/flapgen/evolution"

// Collector accumulates per-tick events for the running generation and produces
// GenerationStats when it ends.
type Collector struct {
	tickRate int

	genStartTick int64

	flaps          int
	collisions     int
	boundaryDeaths int
	passes         int
	agentFrames    int
}

// NewCollector creates a new stats collector.
// tickRate converts ticks to simulated seconds.
func NewCollector(tickRate int) *Collector {
	if tickRate < 1 {
		tickRate = 60
	}
	return &Collector{tickRate: tickRate}
}

// RecordStep adds one population step's events. alive is the number of agents
// that entered the step alive.
func (c *Collector) RecordStep(ev evolution.StepEvents, alive int) {
	c.flaps += ev.Flaps
	c.collisions += ev.Collisions
	c.boundaryDeaths += ev.BoundaryDeaths
	c.passes += ev.Passes
	c.agentFrames += alive
}

// Flush produces the stats for the finished generation and resets the counters.
func (c *Collector) Flush(currentTick int64, s evolution.Summary) GenerationStats {
	var flapRate float64
	if c.agentFrames > 0 {
		flapRate = float64(c.flaps) / float64(c.agentFrames)
	}

	stats := GenerationStats{
		Generation: s.Generation,
		EndTick:    currentTick,
		Ticks:      currentTick - c.genStartTick,
		SimTimeSec: float64(currentTick) / float64(c.tickRate),
		Size:       s.Size,
		Restarted:  s.Restarted,

		MaxScore:      s.MaxScore,
		MeanScore:     s.MeanScore,
		BestScoreEver: s.BestScoreEver,

		BestFitness: s.BestFitness,
		MeanFitness: s.MeanFitness,
		FitnessP10:  s.FitnessP10,
		FitnessP50:  s.MedianFitness,
		FitnessP90:  s.FitnessP90,

		MeanFrames: s.MeanFrames,
		FramesStd:  s.FramesStd,
		MaxFrames:  s.MaxFrames,

		Flaps:          c.flaps,
		FlapRate:       flapRate,
		Collisions:     c.collisions,
		BoundaryDeaths: c.boundaryDeaths,
		Passes:         c.passes,
	}

	c.Reset(currentTick)
	return stats
}

// Reset discards the counters and starts a new generation at tick.
func (c *Collector) Reset(tick int64) {
	c.genStartTick = tick
	c.flaps = 0
	c.collisions = 0
	c.boundaryDeaths = 0
	c.passes = 0
	c.agentFrames = 0
}
