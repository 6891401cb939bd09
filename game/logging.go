package game

import (
	"log/slog"

	"github.com/pthm-cable/flapgen/agent"
)

// logRunSummary logs where the run ended.
func (g *Game) logRunSummary() {
	if g.mode == agent.ModeHuman {
		slog.Info("run finished",
			"mode", g.mode.String(),
			"tick", g.tick,
			"score", g.human.Score,
		)
		return
	}

	stats := g.population.Stats()
	perf := g.perfCollector.Stats()
	slog.Info("run finished",
		"mode", g.mode.String(),
		"tick", g.tick,
		"generation", stats.Generation,
		"population", stats.Size,
		"best_score", stats.BestScore,
		"ticks_per_sec", int(perf.TicksPerSecond),
	)
}
