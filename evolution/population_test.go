package evolution

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/flapgen/agent"
	"github.com/pthm-cable/flapgen/neural"
)

// fixedBrain returns a network that always flaps (or never does) regardless of input.
func fixedBrain(flap bool) *neural.Network {
	nn := neural.NewNetwork(rand.New(rand.NewSource(1)))
	nn.SetWeights(make([]float64, neural.NumParams))
	if flap {
		nn.BiasO.SetVec(0, 1)
		nn.BiasO.SetVec(1, -1)
	} else {
		nn.BiasO.SetVec(0, -1)
		nn.BiasO.SetVec(1, 1)
	}
	return nn
}

// testCourse reproduces a scrolling stream: a pair spawns at the right edge every
// 90 ticks and moves 2 px per tick. tick counts from the start of the generation.
func testCourse(tick int, p agent.Physics) []agent.Obstacle {
	var obs []agent.Obstacle
	for k := 0; k*90 <= tick; k++ {
		x := p.BoardWidth - 2*float64(tick-k*90)
		if x < -64 {
			continue
		}
		gapTop := 120 + float64((k*97)%240)
		obs = append(obs,
			agent.Obstacle{ID: uint64(2*k + 1), X: x, Y: gapTop - 512, Width: 64, Height: 512, Top: true},
			agent.Obstacle{ID: uint64(2*k + 2), X: x, Y: gapTop + p.GapHeight, Width: 64, Height: 512},
		)
	}
	return obs
}

// runGeneration steps until every agent is dead or maxTicks elapse, then kills
// any survivors so the generation can end deterministically.
func runGeneration(p *Population, maxTicks int) {
	phys := p.Params().Physics
	for tick := 0; tick < maxTicks && !p.AllDead(); tick++ {
		p.Step(testCourse(tick, phys))
	}
	for _, a := range p.Agents() {
		a.Alive = false
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"zero size", func(p *Params) { p.Size = 0 }},
		{"negative size", func(p *Params) { p.Size = -3 }},
		{"rate above one", func(p *Params) { p.MutationRate = 1.5 }},
		{"negative rate", func(p *Params) { p.MutationRate = -0.1 }},
		{"nan rate", func(p *Params) { p.MutationRate = math.NaN() }},
		{"zero magnitude", func(p *Params) { p.MutationMagnitude = 0 }},
		{"negative score weight", func(p *Params) { p.ScoreWeight = -1 }},
		{"empty board", func(p *Params) { p.Physics.BoardHeight = 0 }},
		{"zero velocity scale", func(p *Params) { p.Physics.VelocityScale = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams(10)
			tt.modify(&params)
			_, err := New(params, rand.New(rand.NewSource(1)))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if _, err := New(DefaultParams(10), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil rng: error = %v, want ErrInvalidConfig", err)
	}
}

func TestNewPopulation(t *testing.T) {
	p, err := New(DefaultParams(25), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	stats := p.Stats()
	if stats.Generation != 1 || stats.Size != 25 || stats.Alive != 25 || stats.BestScore != 0 {
		t.Errorf("unexpected initial stats %+v", stats)
	}

	seen := make(map[*neural.Network]bool)
	for _, a := range p.Agents() {
		if a.Brain == nil {
			t.Fatal("agent without brain")
		}
		if seen[a.Brain] {
			t.Fatal("brains are shared between agents")
		}
		seen[a.Brain] = true
	}
}

func TestFitness(t *testing.T) {
	tests := []struct {
		frames, score int
		weight        float64
		want          float64
	}{
		{0, 0, 1000, 1000},
		{10, 0, 1000, 1010},
		{0, 3, 1000, 8000},
		{250, 2, 1000, 4250},
		{0, 0, 0, 0},
		{7, 5, 0, 7},
	}
	for _, tt := range tests {
		if got := Fitness(tt.frames, tt.score, tt.weight); got != tt.want {
			t.Errorf("Fitness(%d, %d, %v) = %v, want %v", tt.frames, tt.score, tt.weight, got, tt.want)
		}
	}
}

func TestStepOnlyAdvancesLivingAgents(t *testing.T) {
	p, _ := New(DefaultParams(4), rand.New(rand.NewSource(3)))
	dead := p.Agents()[2]
	dead.Alive = false
	y := dead.Y

	p.Step(nil)

	if dead.Y != y || dead.FramesAlive != 0 {
		t.Error("dead agent was stepped")
	}
	for i, a := range p.Agents() {
		if i != 2 && a.FramesAlive != 1 {
			t.Errorf("agent %d FramesAlive = %d, want 1", i, a.FramesAlive)
		}
	}
}

func TestUpdateAdvancesOnlyWhenAllDead(t *testing.T) {
	p, _ := New(DefaultParams(5), rand.New(rand.NewSource(9)))
	p.SetBrains(func(int) *neural.Network { return fixedBrain(false) })

	advanced := false
	ticks := 0
	for !advanced && ticks < 1000 {
		var s Summary
		s, advanced = p.Update(nil)
		ticks++
		if advanced && s.Generation != 1 {
			t.Errorf("summary generation = %d, want 1", s.Generation)
		}
	}
	if !advanced {
		t.Fatal("generation never advanced")
	}
	// Never-flapping agents free-fall from mid-board and die on the same tick.
	if ticks != 40 {
		t.Errorf("generation lasted %d ticks, want 40", ticks)
	}
	if p.Generation() != 2 {
		t.Errorf("generation = %d, want 2", p.Generation())
	}
	if p.AllDead() {
		t.Error("new generation should be alive")
	}
}

func TestNeverFlapScenario(t *testing.T) {
	p, err := New(DefaultParams(10), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p.SetBrains(func(int) *neural.Network { return fixedBrain(false) })

	phys := p.Params().Physics
	for tick := 0; tick < 1000 && !p.AllDead(); tick++ {
		p.Step(testCourse(tick, phys))
	}
	if !p.AllDead() {
		t.Fatal("never-flapping agents should all hit the floor")
	}
	for i, a := range p.Agents() {
		if a.Score != 0 {
			t.Errorf("agent %d score = %d, want 0", i, a.Score)
		}
	}

	s := p.AdvanceGeneration()

	if len(p.Agents()) != 10 {
		t.Errorf("population size = %d, want 10", len(p.Agents()))
	}
	if p.Generation() != 2 {
		t.Errorf("generation = %d, want 2", p.Generation())
	}
	if p.BestScore() != 0 || s.BestScoreEver != 0 {
		t.Errorf("best score = %d, want 0", p.BestScore())
	}
	if s.MaxScore != 0 {
		t.Errorf("summary max score = %d, want 0", s.MaxScore)
	}
}

func TestDegenerateGenerationRestarts(t *testing.T) {
	params := DefaultParams(10)
	params.ScoreWeight = 0
	p, _ := New(params, rand.New(rand.NewSource(5)))

	old := make(map[*neural.Network]bool)
	for _, a := range p.Agents() {
		old[a.Brain] = true
		a.Alive = false // died before surviving a single tick
	}

	s := p.AdvanceGeneration()

	if !s.Restarted {
		t.Error("all-zero fitness should restart from fresh brains")
	}
	if s.BestFitness != 0 {
		t.Errorf("best fitness = %v, want 0", s.BestFitness)
	}
	if len(p.Agents()) != 10 || p.Generation() != 2 || p.BestScore() != 0 {
		t.Errorf("unexpected state after restart: size=%d gen=%d best=%d",
			len(p.Agents()), p.Generation(), p.BestScore())
	}
	for _, a := range p.Agents() {
		if !a.Alive || old[a.Brain] {
			t.Fatal("restart should create live agents with new brains")
		}
	}
}

func TestElitismCopiesBestBrain(t *testing.T) {
	p, _ := New(DefaultParams(8), rand.New(rand.NewSource(11)))

	for i, a := range p.Agents() {
		a.Alive = false
		a.FramesAlive = 100 + i
		a.Score = i % 3
	}
	// Agents 2 and 5 both score 2; agent 5 survived longer.
	best := p.Agents()[5]
	bestWeights := best.Brain.Weights()

	s := p.AdvanceGeneration()

	if s.Restarted {
		t.Fatal("unexpected restart")
	}
	if s.BestFitness != Fitness(105, 2, DefaultScoreWeight) {
		t.Errorf("best fitness = %v, want %v", s.BestFitness, Fitness(105, 2, DefaultScoreWeight))
	}

	elite := p.Agents()[0]
	if elite.Brain == best.Brain {
		t.Fatal("elite must own a copy, not share the parent's network")
	}
	got := elite.Brain.Weights()
	for i := range bestWeights {
		if got[i] != bestWeights[i] {
			t.Fatalf("elite param %d = %v, want %v (unmutated)", i, got[i], bestWeights[i])
		}
	}
	if !elite.Alive || elite.Score != 0 || elite.FramesAlive != 0 {
		t.Error("elite should start as a fresh agent")
	}
}

func TestElitismNonRegression(t *testing.T) {
	p, _ := New(DefaultParams(20), rand.New(rand.NewSource(21)))

	runGeneration(p, 3000)
	first := p.AdvanceGeneration()

	elite := p.Agents()[0]
	runGeneration(p, 3000)
	p.AdvanceGeneration()

	if elite.Fitness < first.BestFitness {
		t.Errorf("elite fitness %v regressed below previous best %v", elite.Fitness, first.BestFitness)
	}
}

func TestSizeInvariantAndMonotoneBest(t *testing.T) {
	params := DefaultParams(15)
	p, _ := New(params, rand.New(rand.NewSource(77)))

	prevBest := 0
	prevGen := p.Generation()
	for g := 0; g < 12; g++ {
		runGeneration(p, 2000)
		p.AdvanceGeneration()

		if len(p.Agents()) != params.Size {
			t.Fatalf("generation %d: size = %d, want %d", p.Generation(), len(p.Agents()), params.Size)
		}
		if p.Generation() != prevGen+1 {
			t.Fatalf("generation went %d -> %d", prevGen, p.Generation())
		}
		if p.BestScore() < prevBest {
			t.Fatalf("best score decreased %d -> %d", prevBest, p.BestScore())
		}
		prevBest = p.BestScore()
		prevGen = p.Generation()
	}
}

func TestBestScoreKeepsMaximum(t *testing.T) {
	p, _ := New(DefaultParams(4), rand.New(rand.NewSource(2)))

	for _, a := range p.Agents() {
		a.Alive = false
	}
	p.Agents()[1].Score = 3
	p.AdvanceGeneration()
	if p.BestScore() != 3 {
		t.Fatalf("best score = %d, want 3", p.BestScore())
	}

	for _, a := range p.Agents() {
		a.Alive = false
		a.Score = 1
	}
	s := p.AdvanceGeneration()
	if p.BestScore() != 3 || s.BestScoreEver != 3 {
		t.Errorf("best score = %d, want 3 after a weaker generation", p.BestScore())
	}
	if s.MaxScore != 1 {
		t.Errorf("generation max score = %d, want 1", s.MaxScore)
	}
}

func TestDeterministicRuns(t *testing.T) {
	run := func() []float64 {
		p, _ := New(DefaultParams(12), rand.New(rand.NewSource(2024)))
		phys := p.Params().Physics
		var trace []float64
		tick := 0
		for i := 0; i < 1500; i++ {
			_, advanced := p.Update(testCourse(tick, phys))
			tick++
			if advanced {
				tick = 0
				trace = append(trace, float64(p.Generation()))
			}
			for _, a := range p.Agents() {
				trace = append(trace, a.Y, a.VelocityY, float64(a.Score))
			}
		}
		return trace
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("trace lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("traces diverge at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSetBrains(t *testing.T) {
	p, _ := New(DefaultParams(3), rand.New(rand.NewSource(1)))
	brain := fixedBrain(true)
	p.SetBrains(func(i int) *neural.Network {
		if i == 1 {
			return brain
		}
		return p.Agents()[i].Brain
	})
	if p.Agents()[1].Brain != brain {
		t.Error("SetBrains did not install the brain")
	}
}
