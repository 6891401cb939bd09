// Package game drives a training run: the obstacle course, the evolving
// population or a human-controlled agent, and the telemetry around them.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flapgen/agent"
	"github.com/pthm-cable/flapgen/config"
	"github.com/pthm-cable/flapgen/evolution"
	"github.com/pthm-cable/flapgen/systems"
	"github.com/pthm-cable/flapgen/telemetry"
)

// Game holds the complete run state.
type Game struct {
	cfg  *config.Config
	rng  *rand.Rand
	opts Options

	world  *ecs.World
	course *systems.CourseSystem

	mode       agent.Mode
	population *evolution.Population
	human      *agent.Agent
	popSize    int

	// Telemetry
	collector         *telemetry.Collector
	perfCollector     *telemetry.PerfCollector
	milestoneDetector *telemetry.MilestoneDetector
	outputManager     *telemetry.OutputManager

	// State
	tick   int64
	paused bool
	speed  int // ticks per Update call
}

// NewGameWithOptions creates a game from the loaded config.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	rng := rand.New(rand.NewSource(opts.Seed))
	world := ecs.NewWorld()

	g := &Game{
		cfg:     cfg,
		rng:     rng,
		opts:    opts,
		world:   world,
		course:  systems.NewCourseSystem(world, cfg.CourseParams(), rand.New(rand.NewSource(rng.Int63()))),
		mode:    opts.Mode,
		popSize: cfg.Population.Size,
		speed:   cfg.Speed.Default,

		collector:     telemetry.NewCollector(cfg.Physics.TickRate),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		milestoneDetector: telemetry.NewMilestoneDetector(
			cfg.Telemetry.MilestoneHistorySize,
			cfg.Telemetry.BreakthroughMultiplier,
			cfg.Telemetry.StagnationGenerations,
		),
	}
	if opts.StepsPerUpdate > 0 {
		g.speed = opts.StepsPerUpdate
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	if err := g.enterMode(g.mode); err != nil {
		om.Close()
		return nil, err
	}
	return g, nil
}

// enterMode discards the course and starts a fresh run in the given mode.
func (g *Game) enterMode(mode agent.Mode) error {
	g.course.Clear()
	g.collector.Reset(g.tick)
	g.mode = mode

	if mode == agent.ModeHuman {
		g.population = nil
		g.resetHuman()
		return nil
	}

	pop, err := evolution.New(g.cfg.PopulationParams(g.popSize), g.rng)
	if err != nil {
		return fmt.Errorf("creating population: %w", err)
	}
	g.population = pop
	g.human = nil
	return nil
}

// Update advances the simulation by the current speed, unless paused.
func (g *Game) Update() {
	if g.paused {
		return
	}
	for i := 0; i < g.speed; i++ {
		g.Step()
	}
}

// UpdateHeadless advances the simulation ignoring pause; used without a window.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.speed; i++ {
		g.Step()
	}
}

// Step runs one simulation tick in the current mode.
func (g *Game) Step() {
	if g.mode == agent.ModeHuman {
		g.stepHuman()
		return
	}
	g.stepAI()
}

func (g *Game) stepAI() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseCourse)
	g.course.Update(!g.population.AllDead())
	obstacles := g.course.Obstacles()

	g.perfCollector.StartPhase(telemetry.PhasePopulation)
	alive := g.population.Stats().Alive
	events := g.population.Step(obstacles)
	g.collector.RecordStep(events, alive)
	g.tick++

	if g.population.AllDead() {
		g.perfCollector.StartPhase(telemetry.PhaseBreed)
		summary := g.population.AdvanceGeneration()
		g.course.Clear()

		g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
		g.flushGeneration(summary)
	}

	g.perfCollector.EndTick()
	g.flushPerf()
}

// stepHuman mirrors the single-player loop: the world freezes once the agent dies.
func (g *Game) stepHuman() {
	h := g.human
	if !h.Alive {
		return
	}
	phys := g.cfg.AgentPhysics()

	h.Tick(phys)
	g.course.Update(h.Alive)
	for _, o := range g.course.Obstacles() {
		h.CheckScore(o)
		h.CheckCollision(o)
	}
	g.tick++

	if !h.Alive {
		slog.Debug("game over", "score", h.Score, "frames", h.FramesAlive)
	}
}

func (g *Game) resetHuman() {
	g.course.Clear()
	g.human = agent.New(agent.ModeHuman, g.cfg.AgentBody(), nil)
}

// HumanFlap flaps the human agent, or restarts the round after a game over.
// It has no effect in AI mode.
func (g *Game) HumanFlap() {
	if g.mode != agent.ModeHuman {
		return
	}
	if !g.human.Alive {
		g.resetHuman()
		return
	}
	g.human.Flap(g.cfg.AgentPhysics())
}

// ToggleMode switches between AI training and human play, restarting the run.
func (g *Game) ToggleMode() error {
	next := agent.ModeAI
	if g.mode == agent.ModeAI {
		next = agent.ModeHuman
	}
	slog.Info("mode changed", "mode", next.String())
	return g.enterMode(next)
}

// Restart begins a new run in the current mode. In AI mode the population is
// recreated from scratch at generation 1.
func (g *Game) Restart() error {
	return g.enterMode(g.mode)
}

// SetPopulationSize changes the population size, clamped to the configured
// range. In AI mode the population is recreated.
func (g *Game) SetPopulationSize(n int) error {
	n = max(g.cfg.Population.Min, min(n, g.cfg.Population.Max))
	if n == g.popSize && g.population != nil {
		return nil
	}
	g.popSize = n
	if g.mode != agent.ModeAI {
		return nil
	}
	return g.enterMode(agent.ModeAI)
}

// SetSpeed sets the ticks per Update call, clamped to [1, speed.max].
func (g *Game) SetSpeed(n int) {
	g.speed = max(1, min(n, g.cfg.Speed.Max))
}

// Speed returns the ticks per Update call.
func (g *Game) Speed() int {
	return g.speed
}

// TogglePause pauses or resumes Update.
func (g *Game) TogglePause() {
	g.paused = !g.paused
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// Mode returns the current control mode.
func (g *Game) Mode() agent.Mode {
	return g.mode
}

// Tick returns the number of simulated ticks.
func (g *Game) Tick() int64 {
	return g.tick
}

// Generation returns the current generation, or 0 in human mode.
func (g *Game) Generation() int {
	if g.population == nil {
		return 0
	}
	return g.population.Generation()
}

// PopulationSize returns the size used for the next population.
func (g *Game) PopulationSize() int {
	return g.popSize
}

// Stats returns the population display statistics. Zero in human mode.
func (g *Game) Stats() evolution.Stats {
	if g.population == nil {
		return evolution.Stats{}
	}
	return g.population.Stats()
}

// Agents returns the agents to draw: the population or the human agent.
func (g *Game) Agents() []*agent.Agent {
	if g.mode == agent.ModeHuman {
		return []*agent.Agent{g.human}
	}
	return g.population.Agents()
}

// Human returns the human agent, or nil in AI mode.
func (g *Game) Human() *agent.Agent {
	return g.human
}

// Obstacles returns the current obstacles in spawn order.
func (g *Game) Obstacles() []agent.Obstacle {
	return g.course.Obstacles()
}

// Config returns the configuration the game was created with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Perf returns the rolling performance statistics.
func (g *Game) Perf() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// RecordFrame records a rendered frame for FPS tracking.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// Unload flushes and closes telemetry output.
func (g *Game) Unload() {
	g.logRunSummary()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
