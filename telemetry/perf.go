package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase is one timed section of a simulation step.
type Phase int

// Step phases in execution order.
const (
	PhaseCourse     Phase = iota // obstacle spawn, scroll and cull
	PhasePopulation              // sense, decide, physics, collision, scoring
	PhaseBreed                   // fitness, selection and mutation
	PhaseTelemetry
	NumPhases
)

// Phases lists every phase in execution order.
var Phases = [NumPhases]Phase{PhaseCourse, PhasePopulation, PhaseBreed, PhaseTelemetry}

var phaseNames = [NumPhases]string{"course", "population", "breed", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// PerfCollector keeps the last windowSize tick timings, split by phase.
// Timings are stored in microseconds so the window can go straight into gonum.
type PerfCollector struct {
	windowSize int
	next       int
	count      int

	tickUS  []float64
	phaseUS [NumPhases][]float64

	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
	current    [NumPhases]time.Duration

	lastFrame     time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	p := &PerfCollector{
		windowSize: windowSize,
		tickUS:     make([]float64, windowSize),
	}
	for i := range p.phaseUS {
		p.phaseUS[i] = make([]float64, windowSize)
	}
	return p
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.current = [NumPhases]time.Duration{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick closes the tick and stores it in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)

	p.tickUS[p.next] = micros(now.Sub(p.tickStart))
	for ph := range p.phaseUS {
		p.phaseUS[ph][p.next] = micros(p.current[ph])
	}
	p.next = (p.next + 1) % p.windowSize
	p.count = min(p.count+1, p.windowSize)
}

// RecordFrame marks a rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frameDuration = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

func micros(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

func fromMicros(us float64) time.Duration {
	return time.Duration(us * float64(time.Microsecond))
}

// PerfStats summarizes the current window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64 // share of the average tick

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{FrameDuration: p.frameDuration}
	if p.frameDuration > 0 {
		s.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.count == 0 {
		return s
	}

	// Slots past count are still zero until the ring first fills.
	ticks := p.tickUS[:p.count]
	avg := stat.Mean(ticks, nil)
	s.AvgTickDuration = fromMicros(avg)
	s.MinTickDuration = fromMicros(floats.Min(ticks))
	s.MaxTickDuration = fromMicros(floats.Max(ticks))

	sorted := slices.Clone(ticks)
	slices.Sort(sorted)
	s.P95TickDuration = fromMicros(stat.Quantile(0.95, stat.Empirical, sorted, nil))

	for ph := range p.phaseUS {
		phaseAvg := stat.Mean(p.phaseUS[ph][:p.count], nil)
		s.PhaseAvg[ph] = fromMicros(phaseAvg)
		if avg > 0 {
			s.PhasePct[ph] = phaseAvg / avg * 100
		}
	}
	if avg > 0 {
		s.TicksPerSecond = 1e6 / avg
	}
	return s
}

// LogStats logs the window summary.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, ph := range Phases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd     int64   `csv:"window_end"`
	Generation    int     `csv:"generation"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	MinTickUS     int64   `csv:"min_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	P95TickUS     int64   `csv:"p95_tick_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	FPS           float64 `csv:"fps"`
	CoursePct     float64 `csv:"course_pct"`
	PopulationPct float64 `csv:"population_pct"`
	BreedPct      float64 `csv:"breed_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at tick windowEnd.
func (s PerfStats) ToCSV(windowEnd int64, generation int) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		Generation:    generation,
		AvgTickUS:     s.AvgTickDuration.Microseconds(),
		MinTickUS:     s.MinTickDuration.Microseconds(),
		MaxTickUS:     s.MaxTickDuration.Microseconds(),
		P95TickUS:     s.P95TickDuration.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		FPS:           s.FPS,
		CoursePct:     s.PhasePct[PhaseCourse],
		PopulationPct: s.PhasePct[PhasePopulation],
		BreedPct:      s.PhasePct[PhaseBreed],
		TelemetryPct:  s.PhasePct[PhaseTelemetry],
	}
}
