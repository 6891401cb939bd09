// Package agent implements a single simulated flyer: its physics, sensing,
// decision making, collision and scoring against the obstacle stream.
package agent

import (
	"github.com/pthm-cable/flapgen/neural"
)

// Mode selects how an agent decides when to flap.
type Mode uint8

const (
	ModeAI    Mode = iota // brain decides every tick an obstacle is visible
	ModeHuman             // flaps only when Flap is called by the driver
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAI:
		return "ai"
	case ModeHuman:
		return "human"
	default:
		return "unknown"
	}
}

// Physics holds the board geometry and motion constants shared by every agent.
type Physics struct {
	BoardWidth    float64
	BoardHeight   float64
	Gravity       float64 // added to vertical velocity every tick
	FlapVelocity  float64 // vertical velocity set by a flap (negative is up)
	VelocityScale float64 // divisor normalizing velocity for the sensor vector
	GapHeight     float64 // vertical opening between the members of a pair
	CeilingKills  bool    // touching the top boundary is fatal
}

// DefaultPhysics returns the constants of the classic 360x640 board.
func DefaultPhysics() Physics {
	return Physics{
		BoardWidth:    360,
		BoardHeight:   640,
		Gravity:       0.4,
		FlapVelocity:  -6,
		VelocityScale: 10,
		GapHeight:     640.0 / 4,
	}
}

// Body holds an agent's bounding box size and starting position.
type Body struct {
	Width  float64
	Height float64
	StartX float64
	StartY float64
}

// DefaultBody returns a 34x24 body starting at (W/8, H/2) for the given physics.
func DefaultBody(p Physics) Body {
	return Body{
		Width:  34,
		Height: 24,
		StartX: p.BoardWidth / 8,
		StartY: p.BoardHeight / 2,
	}
}

// Agent is one simulated flyer. Once Alive is false every method is a no-op.
type Agent struct {
	Mode Mode

	X, Y          float64
	Width, Height float64
	VelocityY     float64
	Alive         bool

	FramesAlive int
	Score       int     // gap pairs passed
	Fitness     float64 // set by the population at generation end

	Brain *neural.Network // nil for human agents

	passed passedSet
}

// New creates a live agent at the body's start position with zero velocity.
func New(mode Mode, body Body, brain *neural.Network) *Agent {
	return &Agent{
		Mode:   mode,
		X:      body.StartX,
		Y:      body.StartY,
		Width:  body.Width,
		Height: body.Height,
		Alive:  true,
		Brain:  brain,
	}
}

// Reset returns the agent to its starting state, keeping its mode and brain.
func (a *Agent) Reset(body Body) {
	*a = *New(a.Mode, body, a.Brain)
}

// Think senses the obstacles and, for AI agents with a brain, decides whether to flap.
// Returns true if the agent flapped.
func (a *Agent) Think(obstacles []Obstacle, p Physics) bool {
	if !a.Alive || a.Mode != ModeAI || a.Brain == nil {
		return false
	}
	inputs, ok := a.Sense(obstacles, p)
	if !ok {
		return false
	}
	return a.Decide(inputs, p)
}

// Sense builds the sensor vector for the next upcoming obstacle: the one whose
// right edge is still ahead of the agent and whose left edge is nearest.
// Returns false if no obstacle qualifies.
func (a *Agent) Sense(obstacles []Obstacle, p Physics) ([neural.NumInputs]float64, bool) {
	var inputs [neural.NumInputs]float64
	if !a.Alive {
		return inputs, false
	}

	next := -1
	for i := range obstacles {
		o := &obstacles[i]
		if o.Right() <= a.X {
			continue
		}
		if next < 0 || o.X < obstacles[next].X {
			next = i
		}
	}
	if next < 0 {
		return inputs, false
	}

	o := obstacles[next]
	gapTop, gapBottom := o.Gap(p.GapHeight)

	inputs[0] = a.Y / p.BoardHeight
	inputs[1] = a.VelocityY / p.VelocityScale
	inputs[2] = (o.X - a.X) / p.BoardWidth
	inputs[3] = gapTop / p.BoardHeight
	inputs[4] = gapBottom / p.BoardHeight
	return inputs, true
}

// Decide runs the brain and flaps if the flap score strictly exceeds the no-flap score.
func (a *Agent) Decide(inputs [neural.NumInputs]float64, p Physics) bool {
	if !a.Alive || a.Brain == nil {
		return false
	}
	flap, noFlap := a.Brain.Infer(inputs)
	if flap > noFlap {
		a.Flap(p)
		return true
	}
	return false
}

// Flap sets the vertical velocity to the upward impulse.
func (a *Agent) Flap(p Physics) {
	if !a.Alive {
		return
	}
	a.VelocityY = p.FlapVelocity
}

// Tick integrates one step of physics: gravity, position clamped to the top
// boundary, then the boundary death checks.
func (a *Agent) Tick(p Physics) {
	if !a.Alive {
		return
	}

	a.VelocityY += p.Gravity
	y := a.Y + a.VelocityY
	hitCeiling := y < 0
	if hitCeiling {
		y = 0
	}
	a.Y = y

	if a.Y > p.BoardHeight || (hitCeiling && p.CeilingKills) {
		a.Alive = false
	}

	a.FramesAlive++
}

// CheckCollision kills the agent if its bounding box overlaps the obstacle.
// Returns true if a collision happened on this call.
func (a *Agent) CheckCollision(o Obstacle) bool {
	if !a.Alive {
		return false
	}
	if a.X < o.X+o.Width &&
		a.X+a.Width > o.X &&
		a.Y < o.Y+o.Height &&
		a.Y+a.Height > o.Y {
		a.Alive = false
		return true
	}
	return false
}

// CheckScore counts a top obstacle once the agent is past its trailing edge.
// Each obstacle ID is counted at most once. Returns true if the score changed.
func (a *Agent) CheckScore(o Obstacle) bool {
	if !a.Alive || !o.Top {
		return false
	}
	if a.X <= o.Right() || a.passed.Has(o.ID) {
		return false
	}
	a.passed.Add(o.ID)
	a.Score++
	return true
}

// Bounds returns the agent's bounding box as x, y, width, height.
func (a *Agent) Bounds() (x, y, w, h float64) {
	return a.X, a.Y, a.Width, a.Height
}
