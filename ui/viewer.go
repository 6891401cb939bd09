package ui

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flapgen/agent"
	"github.com/pthm-cable/flapgen/camera"
	"github.com/pthm-cable/flapgen/config"
	"github.com/pthm-cable/flapgen/evolution"
	"github.com/pthm-cable/flapgen/neural"
	"github.com/pthm-cable/flapgen/telemetry"
)

// Sim is the run the viewer draws and controls.
type Sim interface {
	Config() *config.Config
	Mode() agent.Mode
	Agents() []*agent.Agent
	Human() *agent.Agent
	Obstacles() []agent.Obstacle
	Stats() evolution.Stats
	Perf() telemetry.PerfStats
	Tick() int64

	Speed() int
	SetSpeed(n int)
	Paused() bool
	TogglePause()
	PopulationSize() int
	SetPopulationSize(n int) error
	Restart() error
	ToggleMode() error
	HumanFlap()
}

// PanelWidth is the width of the controls panel left of the board.
const PanelWidth = 240

// Viewer draws a Sim into the raylib window and routes input to it.
type Viewer struct {
	sim      Sim
	cam      *camera.Camera
	theme    Theme
	panel    *Renderer
	hud      *HUD
	controls *ControlsPanel
	perf     *PerfPanel

	screenW, screenH int32
}

// NewViewer creates a viewer for the current window size.
// rl.InitWindow must have been called.
func NewViewer(sim Sim) *Viewer {
	cfg := sim.Config()
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	return &Viewer{
		sim: sim,
		cam: camera.New(PanelWidth, 0, float32(w-PanelWidth), float32(h),
			float32(cfg.Board.Width), float32(cfg.Board.Height)),
		theme:    DefaultTheme(),
		panel:    NewRenderer(),
		hud:      NewHUD(),
		controls: NewControlsPanel(0, 0, PanelWidth),
		perf:     NewPerfPanel(),
		screenW:  w,
		screenH:  h,
	}
}

// HandleInput applies keyboard and mouse input for this frame.
func (v *Viewer) HandleInput() {
	if rl.IsWindowResized() {
		v.screenW, v.screenH = int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
		v.cam.Resize(PanelWidth, 0, float32(v.screenW-PanelWidth), float32(v.screenH))
	}

	if rl.IsKeyPressed(rl.KeyA) {
		v.apply(ControlsActions{ToggleMode: true})
	}
	if rl.IsKeyPressed(rl.KeySpace) || rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyX) {
		v.sim.HumanFlap()
	}
	if rl.IsKeyPressed(rl.KeyComma) {
		v.sim.SetSpeed(v.sim.Speed() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.sim.SetSpeed(v.sim.Speed() + 1)
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.sim.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.apply(ControlsActions{Restart: true})
	}

	mouse := rl.GetMousePosition()
	if wheel := rl.GetMouseWheelMove(); wheel != 0 && v.cam.Contains(mouse.X, mouse.Y) {
		v.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Pan(-d.X, -d.Y)
	}
}

// apply forwards panel or key actions to the sim.
func (v *Viewer) apply(act ControlsActions) {
	if act.Speed != 0 {
		v.sim.SetSpeed(act.Speed)
	}
	if act.TogglePause {
		v.sim.TogglePause()
	}
	if act.PopulationSize != 0 {
		if err := v.sim.SetPopulationSize(act.PopulationSize); err != nil {
			slog.Error("failed to resize population", "error", err)
		}
	}
	if act.Restart {
		if err := v.sim.Restart(); err != nil {
			slog.Error("failed to restart", "error", err)
		}
	}
	if act.ToggleMode {
		if err := v.sim.ToggleMode(); err != nil {
			slog.Error("failed to toggle mode", "error", err)
		}
	}
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(rl.Color{R: 15, G: 18, B: 22, A: 255})

	v.drawBoard()

	data := v.hudData()
	bx, by := v.cam.WorldToScreen(0, 0)
	v.hud.Draw(data, max(int32(bx), PanelWidth)+10, max(int32(by), 0)+10)

	act, y := v.controls.Draw(v.controlsState(), v.screenH)
	v.apply(act)
	if data.Mode == agent.ModeAI && data.Size > 0 {
		col := v.panel.Column(v.theme.Padding, y, PanelWidth-v.theme.Padding*2)
		col.Bar("Alive", float32(data.Alive)/float32(data.Size))
		y = col.Y + 6
	}
	y = v.controls.DrawKeys(v.theme.Padding, y)
	y = v.perf.Draw(v.sim.Perf(), v.theme.Padding, y+10)
	v.drawLeadBrain(y + 10)
	v.hud.DrawStatus(data, PanelWidth+10, v.screenH)
}

// drawLeadBrain shows the lead agent's network with its current activations.
func (v *Viewer) drawLeadBrain(y int32) {
	if v.sim.Mode() != agent.ModeAI {
		return
	}
	agents := v.sim.Agents()
	lead := LeadAgent(agents)
	if lead < 0 {
		return
	}
	a := agents[lead]

	col := v.panel.Column(v.theme.Padding, y, PanelWidth-v.theme.Padding*2)
	col.Header(fmt.Sprintf("Lead brain (#%d)", lead))
	y = col.Y

	var act *neural.Activations
	if inputs, ok := a.Sense(v.sim.Obstacles(), v.sim.Config().AgentPhysics()); ok && a.Brain != nil {
		fwd := a.Brain.Forward(inputs)
		act = &fwd
	}
	DrawNetwork(v.theme.Padding+50, y, PanelWidth-v.theme.Padding*2-80, 170, a.Brain, act)
}

func (v *Viewer) drawBoard() {
	cfg := v.sim.Config()
	cam := v.cam

	rl.BeginScissorMode(int32(cam.ViewportX), int32(cam.ViewportY), int32(cam.ViewportW), int32(cam.ViewportH))
	defer rl.EndScissorMode()

	v.drawRect(0, 0, cfg.Board.Width, cfg.Board.Height, v.theme.Sky)

	for _, o := range v.sim.Obstacles() {
		if !cam.IsVisible(float32(o.X), float32(o.Y), float32(o.Width), float32(o.Height)) {
			continue
		}
		v.drawRect(o.X, o.Y, o.Width, o.Height, v.theme.Pipe)
		v.drawRectLines(o.X, o.Y, o.Width, o.Height, v.theme.PipeEdge)
	}

	if v.sim.Mode() == agent.ModeHuman {
		if h := v.sim.Human(); h != nil {
			v.drawAgent(h, v.theme.HumanBird)
		}
	} else {
		agents := v.sim.Agents()
		lead := LeadAgent(agents)
		for i, a := range agents {
			if a.Alive && i != lead {
				v.drawAgent(a, v.theme.Bird)
			}
		}
		// Drawn last so it stays on top.
		if lead >= 0 {
			v.drawAgent(agents[lead], v.theme.BestBird)
		}
	}

	v.drawRectLines(0, 0, cfg.Board.Width, cfg.Board.Height, v.theme.BoardFrame)
}

func (v *Viewer) drawAgent(a *agent.Agent, color rl.Color) {
	x, y, w, h := a.Bounds()
	v.drawRect(x, y, w, h, color)
}

func (v *Viewer) drawRect(x, y, w, h float64, color rl.Color) {
	sx, sy := v.cam.WorldToScreen(float32(x), float32(y))
	rl.DrawRectangleRec(rl.Rectangle{X: sx, Y: sy, Width: v.cam.Scale(float32(w)), Height: v.cam.Scale(float32(h))}, color)
}

func (v *Viewer) drawRectLines(x, y, w, h float64, color rl.Color) {
	sx, sy := v.cam.WorldToScreen(float32(x), float32(y))
	rl.DrawRectangleLinesEx(rl.Rectangle{X: sx, Y: sy, Width: v.cam.Scale(float32(w)), Height: v.cam.Scale(float32(h))}, 2, color)
}

func (v *Viewer) hudData() HUDData {
	st := v.sim.Stats()
	d := HUDData{
		Mode:       v.sim.Mode(),
		Generation: st.Generation,
		Alive:      st.Alive,
		Size:       st.Size,
		BestScore:  st.BestScore,
		Tick:       v.sim.Tick(),
		Speed:      v.sim.Speed(),
		FPS:        rl.GetFPS(),
		Paused:     v.sim.Paused(),
	}
	if h := v.sim.Human(); h != nil && d.Mode == agent.ModeHuman {
		d.Score = h.Score
		d.GameOver = !h.Alive
	}
	return d
}

func (v *Viewer) controlsState() ControlsState {
	cfg := v.sim.Config()
	return ControlsState{
		Mode:           v.sim.Mode(),
		Speed:          v.sim.Speed(),
		MaxSpeed:       cfg.Speed.Max,
		PopulationSize: v.sim.PopulationSize(),
		MinPopulation:  cfg.Population.Min,
		MaxPopulation:  cfg.Population.Max,
		Paused:         v.sim.Paused(),
	}
}

// LeadAgent returns the index of the living agent with the highest score,
// the first one on ties, or -1 when all are dead.
func LeadAgent(agents []*agent.Agent) int {
	lead := -1
	for i, a := range agents {
		if !a.Alive {
			continue
		}
		if lead < 0 || a.Score > agents[lead].Score {
			lead = i
		}
	}
	return lead
}
