package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flapgen/agent"
	"github.com/pthm-cable/flapgen/telemetry"
)

// HUDData holds everything the board overlay shows.
type HUDData struct {
	Mode       agent.Mode
	Generation int
	Alive      int
	Size       int
	BestScore  int

	// Human mode
	Score    int
	GameOver bool

	Tick   int64
	Speed  int
	FPS    int32
	Paused bool
}

// HUDLines returns the overlay text, top to bottom.
func HUDLines(d HUDData) []string {
	if d.Mode == agent.ModeHuman {
		lines := []string{fmt.Sprintf("Score: %d", d.Score)}
		if d.GameOver {
			lines = append(lines, "GAME OVER")
		}
		return lines
	}
	return []string{
		fmt.Sprintf("Gen: %d", d.Generation),
		fmt.Sprintf("Alive: %d/%d", d.Alive, d.Size),
		fmt.Sprintf("Best Score: %d", d.BestScore),
	}
}

// StatusLine returns the tick, speed and pause summary.
func StatusLine(d HUDData) string {
	s := fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", d.Tick, d.Speed, d.FPS)
	if d.Paused {
		s += " | PAUSED"
	}
	return s
}

// HUD renders the heads-up display over the board.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the overlay with its top-left corner at (x, y).
func (h *HUD) Draw(d HUDData, x, y int32) {
	lines := HUDLines(d)
	for i, line := range lines {
		color := rl.White
		size := int32(20)
		if line == "GAME OVER" {
			color = h.renderer.Theme.GameOver
			size = 28
		}
		rl.DrawText(line, x+2, y+2+int32(i)*26, size, rl.Black)
		rl.DrawText(line, x, y+int32(i)*26, size, color)
	}
}

// DrawStatus renders the status line at the bottom of the screen.
func (h *HUD) DrawStatus(d HUDData, x, screenHeight int32) {
	rl.DrawText(StatusLine(d), x, screenHeight-25, h.renderer.Theme.FontSize, rl.Gray)
}

// PerfPanel renders the per-phase tick timing.
type PerfPanel struct {
	renderer *Renderer
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel() *PerfPanel {
	return &PerfPanel{renderer: NewRenderer()}
}

// Draw renders the panel at (x, y) and returns the Y below it.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, x, y int32) int32 {
	col := p.renderer.Column(x, y, 0)
	col.Header("Performance")
	col.Row("Tick", stats.AvgTickDuration.Round(time.Microsecond).String())
	col.Row("p95", stats.P95TickDuration.Round(time.Microsecond).String())
	col.Row("Ticks/s", fmt.Sprintf("%.0f", stats.TicksPerSecond))

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := p.renderer.Theme.LabelColor
		if pct > 50 {
			color = rl.Orange
		}
		col.Line(fmt.Sprintf("%-11s %5.1f%%", phase, pct), color)
	}
	return col.Y
}
