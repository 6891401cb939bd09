package agent

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/flapgen/neural"
)

// constBrain returns a network whose output is fixed regardless of input:
// flap iff wantFlap.
func constBrain(wantFlap bool) *neural.Network {
	nn := neural.NewNetwork(rand.New(rand.NewSource(1)))
	nn.SetWeights(make([]float64, neural.NumParams))
	if wantFlap {
		nn.BiasO.SetVec(0, 1)
		nn.BiasO.SetVec(1, -1)
	} else {
		nn.BiasO.SetVec(0, -1)
		nn.BiasO.SetVec(1, 1)
	}
	return nn
}

// pair returns a top/bottom obstacle pair at x whose opening starts at gapTop.
func pair(id uint64, x, gapTop float64, p Physics) (Obstacle, Obstacle) {
	const w, h = 64, 512
	top := Obstacle{ID: id, X: x, Y: gapTop - h, Width: w, Height: h, Top: true}
	bottom := Obstacle{ID: id + 1, X: x, Y: gapTop + p.GapHeight, Width: w, Height: h}
	return top, bottom
}

func TestNewAgent(t *testing.T) {
	p := DefaultPhysics()
	body := DefaultBody(p)
	a := New(ModeAI, body, nil)

	if !a.Alive {
		t.Error("new agent should be alive")
	}
	if a.X != 45 || a.Y != 320 {
		t.Errorf("start position = (%v,%v), want (45,320)", a.X, a.Y)
	}
	if a.VelocityY != 0 || a.FramesAlive != 0 || a.Score != 0 {
		t.Error("new agent should start at rest with zero counters")
	}
}

func TestTickGravity(t *testing.T) {
	p := DefaultPhysics()
	a := New(ModeAI, DefaultBody(p), nil)

	a.Tick(p)
	if math.Abs(a.VelocityY-0.4) > 1e-12 {
		t.Errorf("velocity after one tick = %v, want 0.4", a.VelocityY)
	}
	if math.Abs(a.Y-320.4) > 1e-12 {
		t.Errorf("y after one tick = %v, want 320.4", a.Y)
	}
	if a.FramesAlive != 1 {
		t.Errorf("FramesAlive = %d, want 1", a.FramesAlive)
	}
}

func TestTickClampsToTop(t *testing.T) {
	p := DefaultPhysics()
	a := New(ModeAI, DefaultBody(p), nil)
	a.Y = 2
	a.VelocityY = -10

	a.Tick(p)
	if a.Y != 0 {
		t.Errorf("y = %v, want clamped to 0", a.Y)
	}
	if !a.Alive {
		t.Error("ceiling should not kill by default")
	}

	p.CeilingKills = true
	b := New(ModeAI, DefaultBody(p), nil)
	b.Y = 2
	b.VelocityY = -10
	b.Tick(p)
	if b.Alive {
		t.Error("ceiling should kill when CeilingKills is set")
	}
	if b.Y != 0 {
		t.Errorf("y = %v, want clamped to 0", b.Y)
	}
}

func TestFallsToFloor(t *testing.T) {
	p := DefaultPhysics()
	a := New(ModeAI, DefaultBody(p), constBrain(false))

	ticks := 0
	for a.Alive && ticks < 1000 {
		a.Think(nil, p)
		a.Tick(p)
		ticks++
	}
	if a.Alive {
		t.Fatal("agent never hit the floor")
	}
	if a.Y <= p.BoardHeight {
		t.Errorf("died at y=%v, want below %v", a.Y, p.BoardHeight)
	}
	if a.FramesAlive != ticks {
		t.Errorf("FramesAlive = %d, want %d", a.FramesAlive, ticks)
	}
}

func TestDeadAgentIsInert(t *testing.T) {
	p := DefaultPhysics()
	a := New(ModeAI, DefaultBody(p), constBrain(true))
	a.Alive = false
	a.X = 200
	a.VelocityY = 3

	top, bottom := pair(1, 100, 300, p)
	before := *a

	a.Tick(p)
	a.Flap(p)
	a.Think([]Obstacle{top, bottom}, p)
	if a.CheckCollision(Obstacle{X: 0, Y: 0, Width: 1000, Height: 1000}) {
		t.Error("dead agent reported a collision")
	}
	if a.CheckScore(top) {
		t.Error("dead agent scored")
	}

	if a.X != before.X || a.Y != before.Y || a.VelocityY != before.VelocityY ||
		a.Score != before.Score || a.Alive != before.Alive || a.FramesAlive != before.FramesAlive {
		t.Errorf("dead agent state changed: before %+v after %+v", before, *a)
	}
}

func TestSenseNoObstacles(t *testing.T) {
	p := DefaultPhysics()
	a := New(ModeAI, DefaultBody(p), constBrain(true))

	if _, ok := a.Sense(nil, p); ok {
		t.Error("Sense should report no obstacle for an empty stream")
	}
	if a.Think(nil, p) {
		t.Error("agent should not flap without an obstacle")
	}
	if a.VelocityY != 0 {
		t.Errorf("velocity changed to %v without a decision", a.VelocityY)
	}
}

func TestSenseSkipsPassedObstacles(t *testing.T) {
	p := DefaultPhysics()
	a := New(ModeAI, DefaultBody(p), nil)

	behindTop, behindBottom := pair(1, a.X-100, 200, p) // right edge at a.X-36
	aheadTop, aheadBottom := pair(3, 250, 150, p)
	nearTop, nearBottom := pair(5, 120, 300, p)

	inputs, ok := a.Sense([]Obstacle{behindTop, behindBottom, aheadTop, aheadBottom, nearTop, nearBottom}, p)
	if !ok {
		t.Fatal("expected an upcoming obstacle")
	}

	want := [neural.NumInputs]float64{
		a.Y / p.BoardHeight,
		0,
		(120 - a.X) / p.BoardWidth,
		300 / p.BoardHeight,
		(300 + p.GapHeight) / p.BoardHeight,
	}
	for i := range want {
		if math.Abs(inputs[i]-want[i]) > 1e-12 {
			t.Errorf("input %d = %v, want %v", i, inputs[i], want[i])
		}
	}
}

func TestSenseFromBottomMember(t *testing.T) {
	p := DefaultPhysics()
	a := New(ModeAI, DefaultBody(p), nil)
	top, bottom := pair(1, 200, 250, p)

	fromTop, _ := a.Sense([]Obstacle{top}, p)
	fromBottom, _ := a.Sense([]Obstacle{bottom}, p)
	for i := range fromTop {
		if math.Abs(fromTop[i]-fromBottom[i]) > 1e-12 {
			t.Errorf("input %d differs: top %v bottom %v", i, fromTop[i], fromBottom[i])
		}
	}
}

func TestDecide(t *testing.T) {
	p := DefaultPhysics()
	var inputs [neural.NumInputs]float64

	flapper := New(ModeAI, DefaultBody(p), constBrain(true))
	if !flapper.Decide(inputs, p) {
		t.Error("expected flap")
	}
	if flapper.VelocityY != p.FlapVelocity {
		t.Errorf("velocity = %v, want %v", flapper.VelocityY, p.FlapVelocity)
	}

	idle := New(ModeAI, DefaultBody(p), constBrain(false))
	if idle.Decide(inputs, p) {
		t.Error("expected no flap")
	}

	// Equal scores do not flap.
	tie := New(ModeAI, DefaultBody(p), constBrain(false))
	tie.Brain.BiasO.SetVec(0, 0)
	tie.Brain.BiasO.SetVec(1, 0)
	if tie.Decide(inputs, p) {
		t.Error("tied scores should not flap")
	}
}

func TestHumanModeIgnoresBrain(t *testing.T) {
	p := DefaultPhysics()
	h := New(ModeHuman, DefaultBody(p), constBrain(true))
	top, bottom := pair(1, 100, 250, p)

	if h.Think([]Obstacle{top, bottom}, p) {
		t.Error("human agent should not decide on its own")
	}
	h.Flap(p)
	if h.VelocityY != p.FlapVelocity {
		t.Errorf("velocity after Flap = %v, want %v", h.VelocityY, p.FlapVelocity)
	}
}

func TestGapCollision(t *testing.T) {
	p := DefaultPhysics()
	top, bottom := pair(1, 40, 240, p)

	t.Run("inside gap", func(t *testing.T) {
		a := New(ModeAI, DefaultBody(p), nil)
		a.X = top.X
		a.Y = 240 + (p.GapHeight-a.Height)/2
		if a.CheckCollision(top) || a.CheckCollision(bottom) {
			t.Error("agent inside the gap should not collide")
		}
		if !a.Alive {
			t.Error("agent inside the gap should be alive")
		}
	})

	t.Run("above gap", func(t *testing.T) {
		a := New(ModeAI, DefaultBody(p), nil)
		a.X = top.X
		a.Y = 240 - a.Height/2
		if !a.CheckCollision(top) {
			t.Error("agent overlapping the top member should collide")
		}
		if a.Alive {
			t.Error("agent should be dead after collision")
		}
		if a.CheckCollision(top) {
			t.Error("collision should be reported once")
		}
	})

	t.Run("below gap", func(t *testing.T) {
		a := New(ModeAI, DefaultBody(p), nil)
		a.X = top.X
		a.Y = 240 + p.GapHeight - a.Height/2
		if a.CheckCollision(top) {
			t.Error("agent below the gap should not hit the top member")
		}
		if !a.CheckCollision(bottom) {
			t.Error("agent overlapping the bottom member should collide")
		}
	})

	t.Run("touching edges", func(t *testing.T) {
		a := New(ModeAI, DefaultBody(p), nil)
		a.X = top.X
		a.Y = 240 // top edge exactly on the gap top
		if a.CheckCollision(top) {
			t.Error("touching edges do not overlap")
		}
	})
}

func TestCheckScoreOncePerPair(t *testing.T) {
	p := DefaultPhysics()
	a := New(ModeAI, DefaultBody(p), nil)
	top, bottom := pair(7, a.X-70, 250, p) // right edge at a.X-6

	for i := 0; i < 10; i++ {
		a.CheckScore(top)
		a.CheckScore(bottom)
	}
	if a.Score != 1 {
		t.Errorf("score = %d, want 1", a.Score)
	}
}

func TestCheckScoreRequiresPassing(t *testing.T) {
	p := DefaultPhysics()
	a := New(ModeAI, DefaultBody(p), nil)

	top, _ := pair(1, a.X-64, 250, p) // right edge exactly at a.X
	if a.CheckScore(top) {
		t.Error("agent level with the trailing edge has not passed it")
	}
	top.X -= 1
	if !a.CheckScore(top) {
		t.Error("agent past the trailing edge should score")
	}
}

func TestPassedSetEviction(t *testing.T) {
	var s passedSet
	for id := uint64(1); id <= passedCapacity+4; id++ {
		s.Add(id)
	}
	if s.Len() != passedCapacity {
		t.Errorf("Len = %d, want %d", s.Len(), passedCapacity)
	}
	for id := uint64(1); id <= 4; id++ {
		if s.Has(id) {
			t.Errorf("id %d should have been evicted", id)
		}
	}
	for id := uint64(5); id <= passedCapacity+4; id++ {
		if !s.Has(id) {
			t.Errorf("id %d should be present", id)
		}
	}
}

func TestModeString(t *testing.T) {
	if ModeAI.String() != "ai" || ModeHuman.String() != "human" {
		t.Error("unexpected mode names")
	}
}
