package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flapgen/agent"
	"github.com/pthm-cable/flapgen/config"
	"github.com/pthm-cable/flapgen/game"
	"github.com/pthm-cable/flapgen/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	human := flag.Bool("human", false, "Start in human mode")
	logStats := flag.Bool("log-stats", false, "Output per-generation stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	maxGenerations := flag.Int("max-generations", 0, "Stop after N completed generations (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Simulation ticks per update call (0 = config speed.default)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.DefaultOptions(rngSeed)
	opts.LogStats = *logStats
	opts.OutputDir = *outputDir
	opts.StepsPerUpdate = *stepsPerUpdate
	if *human {
		opts.Mode = agent.ModeHuman
	}

	done := func(g *game.Game) bool {
		if *maxTicks > 0 && g.Tick() >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return true
		}
		if *maxGenerations > 0 && g.Generation() > *maxGenerations {
			slog.Info("max generations reached", "generation", g.Generation())
			return true
		}
		return false
	}

	if *headless {
		if *human {
			slog.Error("human mode needs a window")
			os.Exit(1)
		}

		g, err := game.NewGameWithOptions(cfg, opts)
		if err != nil {
			slog.Error("failed to create game", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless training",
			"seed", rngSeed,
			"population", cfg.Population.Size,
			"max_ticks", *maxTicks,
			"max_generations", *maxGenerations,
			"steps_per_update", g.Speed(),
		)

		for !done(g) {
			g.UpdateHeadless()
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Flapgen")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(cfg, opts)
	if err != nil {
		slog.Error("failed to create game", "error", err)
		return
	}
	defer g.Unload()

	viewer := ui.NewViewer(g)
	for !rl.WindowShouldClose() && !done(g) {
		viewer.HandleInput()
		g.Update()
		viewer.Draw()
		g.RecordFrame()
	}
}
