package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flapgen/agent"
)

// ControlsState is the panel's view of the run.
type ControlsState struct {
	Mode           agent.Mode
	Speed          int
	MaxSpeed       int
	PopulationSize int
	MinPopulation  int
	MaxPopulation  int
	Paused         bool
}

// ControlsActions reports what the user changed this frame. Zero values mean
// no change.
type ControlsActions struct {
	Speed          int
	PopulationSize int
	Restart        bool
	ToggleMode     bool
	TogglePause    bool
}

// Any reports whether any action was requested.
func (a ControlsActions) Any() bool {
	return a.Speed != 0 || a.PopulationSize != 0 || a.Restart || a.ToggleMode || a.TogglePause
}

// ControlsPanel renders the left-side panel with sliders and buttons.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32

	// The population slider only commits on release so that dragging does not
	// recreate the population every frame.
	pendingPop int
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Draw renders the panel and returns the actions taken plus the Y below it.
func (c *ControlsPanel) Draw(s ControlsState, height int32) (ControlsActions, int32) {
	var act ControlsActions
	r := c.renderer
	pad := r.Theme.Padding

	r.DrawPanel(c.x, c.y, c.width, height)

	px := float32(c.x + pad)
	py := float32(c.y + pad)
	sliderW := float32(c.width - pad*2 - 50)

	rl.DrawText("Controls", int32(px), int32(py), 18, rl.White)
	py += 30

	// Speed
	rl.DrawText("Speed (ticks/frame)", int32(px), int32(py), r.Theme.FontSize, r.Theme.LabelColor)
	py += 18
	newSpeed := gui.SliderBar(
		rl.Rectangle{X: px + 10, Y: py, Width: sliderW - 10, Height: 20},
		"1", "",
		float32(s.Speed), 1, float32(s.MaxSpeed),
	)
	rl.DrawText(fmt.Sprintf("%dx", s.Speed), int32(px+sliderW+6), int32(py+2), r.Theme.FontSize, r.Theme.ValueColor)
	if n := int(newSpeed + 0.5); n != s.Speed {
		act.Speed = n
	}
	py += 34

	// Population, AI mode only
	if s.Mode == agent.ModeAI {
		if c.pendingPop == 0 {
			c.pendingPop = s.PopulationSize
		}
		rl.DrawText("Population", int32(px), int32(py), r.Theme.FontSize, r.Theme.LabelColor)
		py += 18
		newPop := gui.SliderBar(
			rl.Rectangle{X: px + 10, Y: py, Width: sliderW - 10, Height: 20},
			"", "",
			float32(c.pendingPop), float32(s.MinPopulation), float32(s.MaxPopulation),
		)
		c.pendingPop = int(newPop + 0.5)
		rl.DrawText(fmt.Sprintf("%d", c.pendingPop), int32(px+sliderW+6), int32(py+2), r.Theme.FontSize, r.Theme.ValueColor)
		if rl.IsMouseButtonReleased(rl.MouseButtonLeft) && c.pendingPop != s.PopulationSize {
			act.PopulationSize = c.pendingPop
		}
		py += 40
	} else {
		c.pendingPop = 0
	}

	// Buttons
	bw := float32(c.width-pad*3) / 2
	if gui.Button(rl.Rectangle{X: px, Y: py, Width: bw, Height: 30}, "Restart") {
		act.Restart = true
	}
	if gui.Button(rl.Rectangle{X: px + bw + float32(pad), Y: py, Width: bw, Height: 30}, toggleText(s.Paused, "Resume", "Pause")) {
		act.TogglePause = true
	}
	py += 40

	if gui.Button(rl.Rectangle{X: px, Y: py, Width: bw*2 + float32(pad), Height: 30}, toggleText(s.Mode == agent.ModeAI, "Play as human", "Train AI")) {
		act.ToggleMode = true
	}
	py += 45

	return act, int32(py)
}

// DrawKeys renders the key legend starting at (x, y).
func (c *ControlsPanel) DrawKeys(x, y int32) int32 {
	col := c.renderer.Column(x, y, c.width)
	col.Header("Keys")
	for _, k := range keyLegend {
		col.Row(k[0], k[1])
	}
	return col.Y
}

var keyLegend = [][2]string{
	{"A", "toggle mode"},
	{"Space/Up/X", "flap"},
	{", .", "slower/faster"},
	{"P", "pause"},
	{"R", "restart"},
	{"Wheel", "zoom"},
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
