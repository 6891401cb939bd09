package game

import (
	"github.com/pthm-cable/flapgen/agent"
	"github.com/pthm-cable/flapgen/telemetry"
)

// Options configures a Game.
type Options struct {
	Seed           int64
	LogStats       bool   // log every generation and perf window via slog
	OutputDir      string // CSV and config snapshot directory (empty = disabled)
	StepsPerUpdate int    // ticks per Update call
	Mode           agent.Mode

	// OnGeneration is called with the stats of every finished generation.
	OnGeneration func(telemetry.GenerationStats)
}

// DefaultOptions returns options for a seeded AI run at 1x speed.
func DefaultOptions(seed int64) Options {
	return Options{
		Seed:           seed,
		StepsPerUpdate: 1,
		Mode:           agent.ModeAI,
	}
}
