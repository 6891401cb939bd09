package game

import (
	"log/slog"

	"github.com/pthm-cable/flapgen/evolution"
)

// flushGeneration records a finished generation and handles milestones.
func (g *Game) flushGeneration(summary evolution.Summary) {
	stats := g.collector.Flush(g.tick, summary)

	if g.opts.OnGeneration != nil {
		g.opts.OnGeneration(stats)
	}

	if g.opts.LogStats {
		stats.LogStats()
	}

	if err := g.outputManager.WriteGeneration(stats); err != nil {
		slog.Error("failed to write generation", "error", err)
	}

	for _, m := range g.milestoneDetector.Check(stats) {
		if g.opts.LogStats {
			m.LogMilestone()
		}
		if err := g.outputManager.WriteMilestone(m); err != nil {
			slog.Error("failed to write milestone", "error", err)
		}
	}
}

// flushPerf emits a perf record every telemetry.perf_log_interval ticks.
func (g *Game) flushPerf() {
	interval := int64(g.cfg.Telemetry.PerfLogInterval)
	if interval <= 0 || g.tick%interval != 0 {
		return
	}

	perfStats := g.perfCollector.Stats()
	if g.opts.LogStats {
		perfStats.LogStats()
	}
	if err := g.outputManager.WritePerf(perfStats, g.tick, g.Generation()); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
