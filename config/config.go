// Package config provides configuration loading for the trainer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/flapgen/agent"
	"github.com/pthm-cable/flapgen/evolution"
	"github.com/pthm-cable/flapgen/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all trainer configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Board      BoardConfig      `yaml:"board"`
	Bird       BirdConfig       `yaml:"bird"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Pipes      PipesConfig      `yaml:"pipes"`
	Population PopulationConfig `yaml:"population"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Fitness    FitnessConfig    `yaml:"fitness"`
	Speed      SpeedConfig      `yaml:"speed"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// BoardConfig holds the playfield dimensions in board units.
type BoardConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// BirdConfig holds the agent body. Zero start coordinates default to (W/8, H/2).
type BirdConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	StartX float64 `yaml:"start_x"`
	StartY float64 `yaml:"start_y"`
}

// PhysicsConfig holds motion constants.
type PhysicsConfig struct {
	TickRate      int     `yaml:"tick_rate"` // simulation ticks per second of wall time at 1x
	Gravity       float64 `yaml:"gravity"`
	FlapVelocity  float64 `yaml:"flap_velocity"`
	VelocityScale float64 `yaml:"velocity_scale"` // sensor normalization divisor
	CeilingKills  bool    `yaml:"ceiling_kills"`
}

// PipesConfig holds obstacle stream parameters.
type PipesConfig struct {
	Width           float64 `yaml:"width"`
	Height          float64 `yaml:"height"`
	GapFraction     float64 `yaml:"gap_fraction"` // gap height as a fraction of board height
	ScrollSpeed     float64 `yaml:"scroll_speed"`
	SpawnIntervalMS int     `yaml:"spawn_interval_ms"`
	OffsetMin       float64 `yaml:"offset_min"`   // fraction of pipe height
	OffsetRange     float64 `yaml:"offset_range"` // fraction of pipe height
}

// PopulationConfig holds population sizing. Min and Max bound the viewer slider.
type PopulationConfig struct {
	Size int `yaml:"size"`
	Min  int `yaml:"min"`
	Max  int `yaml:"max"`
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Rate      float64 `yaml:"rate"`
	Magnitude float64 `yaml:"magnitude"`
}

// FitnessConfig holds the fitness weighting.
type FitnessConfig struct {
	ScoreWeight float64 `yaml:"score_weight"`
}

// SpeedConfig holds simulation steps per rendered frame.
type SpeedConfig struct {
	Default int `yaml:"default"`
	Max     int `yaml:"max"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfCollectorWindow    int     `yaml:"perf_collector_window"`
	PerfLogInterval        int     `yaml:"perf_log_interval"` // ticks between perf records
	MilestoneHistorySize   int     `yaml:"milestone_history_size"`
	StagnationGenerations  int     `yaml:"stagnation_generations"`
	BreakthroughMultiplier float64 `yaml:"breakthrough_multiplier"`
}

// DerivedConfig holds values computed from other config fields.
type DerivedConfig struct {
	GapHeight  float64 // Board.Height * Pipes.GapFraction
	SpawnTicks int     // Pipes.SpawnIntervalMS converted to ticks
	StartX     float64
	StartY     float64
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Validate reports the first out-of-range value.
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"board.width", c.Board.Width},
		{"board.height", c.Board.Height},
		{"bird.width", c.Bird.Width},
		{"bird.height", c.Bird.Height},
		{"physics.tick_rate", float64(c.Physics.TickRate)},
		{"physics.velocity_scale", c.Physics.VelocityScale},
		{"pipes.width", c.Pipes.Width},
		{"pipes.height", c.Pipes.Height},
		{"pipes.gap_fraction", c.Pipes.GapFraction},
		{"pipes.spawn_interval_ms", float64(c.Pipes.SpawnIntervalMS)},
		{"population.size", float64(c.Population.Size)},
		{"mutation.magnitude", c.Mutation.Magnitude},
		{"speed.default", float64(c.Speed.Default)},
	}
	for _, p := range positive {
		if math.IsNaN(p.value) || p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, p.name, p.value)
		}
	}

	switch {
	case c.Pipes.GapFraction >= 1:
		return fmt.Errorf("%w: pipes.gap_fraction must be below 1, got %v", ErrInvalid, c.Pipes.GapFraction)
	case c.Mutation.Rate < 0 || c.Mutation.Rate > 1:
		return fmt.Errorf("%w: mutation.rate must be in [0,1], got %v", ErrInvalid, c.Mutation.Rate)
	case c.Fitness.ScoreWeight < 0:
		return fmt.Errorf("%w: fitness.score_weight must be non-negative, got %v", ErrInvalid, c.Fitness.ScoreWeight)
	case c.Population.Min > 0 && c.Population.Max > 0 && c.Population.Min > c.Population.Max:
		return fmt.Errorf("%w: population.min %d exceeds population.max %d",
			ErrInvalid, c.Population.Min, c.Population.Max)
	case c.Speed.Max > 0 && c.Speed.Default > c.Speed.Max:
		return fmt.Errorf("%w: speed.default %d exceeds speed.max %d", ErrInvalid, c.Speed.Default, c.Speed.Max)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.GapHeight = c.Board.Height * c.Pipes.GapFraction

	ticks := int(math.Round(float64(c.Pipes.SpawnIntervalMS) * float64(c.Physics.TickRate) / 1000))
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.SpawnTicks = ticks

	c.Derived.StartX = c.Bird.StartX
	if c.Derived.StartX == 0 {
		c.Derived.StartX = c.Board.Width / 8
	}
	c.Derived.StartY = c.Bird.StartY
	if c.Derived.StartY == 0 {
		c.Derived.StartY = c.Board.Height / 2
	}

	if c.Population.Min <= 0 {
		c.Population.Min = 1
	}
	if c.Population.Max < c.Population.Size {
		c.Population.Max = c.Population.Size
	}
	if c.Speed.Max < c.Speed.Default {
		c.Speed.Max = c.Speed.Default
	}
}

// AgentPhysics returns the physics constants shared by every agent.
func (c *Config) AgentPhysics() agent.Physics {
	return agent.Physics{
		BoardWidth:    c.Board.Width,
		BoardHeight:   c.Board.Height,
		Gravity:       c.Physics.Gravity,
		FlapVelocity:  c.Physics.FlapVelocity,
		VelocityScale: c.Physics.VelocityScale,
		GapHeight:     c.Derived.GapHeight,
		CeilingKills:  c.Physics.CeilingKills,
	}
}

// AgentBody returns the agent bounding box and start position.
func (c *Config) AgentBody() agent.Body {
	return agent.Body{
		Width:  c.Bird.Width,
		Height: c.Bird.Height,
		StartX: c.Derived.StartX,
		StartY: c.Derived.StartY,
	}
}

// PopulationParams builds population parameters for the given size.
func (c *Config) PopulationParams(size int) evolution.Params {
	return evolution.Params{
		Size:              size,
		MutationRate:      c.Mutation.Rate,
		MutationMagnitude: c.Mutation.Magnitude,
		ScoreWeight:       c.Fitness.ScoreWeight,
		Physics:           c.AgentPhysics(),
		Body:              c.AgentBody(),
	}
}

// CourseParams builds the obstacle stream parameters.
func (c *Config) CourseParams() systems.CourseParams {
	return systems.CourseParams{
		BoardWidth:    c.Board.Width,
		PipeWidth:     c.Pipes.Width,
		PipeHeight:    c.Pipes.Height,
		GapHeight:     c.Derived.GapHeight,
		ScrollSpeed:   c.Pipes.ScrollSpeed,
		SpawnInterval: c.Derived.SpawnTicks,
		OffsetMin:     c.Pipes.Height * c.Pipes.OffsetMin,
		OffsetRange:   c.Pipes.Height * c.Pipes.OffsetRange,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
