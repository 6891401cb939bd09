// Package evolution runs the generational genetic algorithm: it steps a fixed-size
// population of agents against the obstacle stream and, once every agent is dead,
// scores, selects, breeds and mutates the next generation.
package evolution

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/flapgen/agent"
	"github.com/pthm-cable/flapgen/neural"
)

// ErrInvalidConfig is returned by New for parameters that cannot describe a population.
var ErrInvalidConfig = errors.New("invalid population config")

// DefaultScoreWeight is the multiplier K in fitness = frames + 2^score * K.
const DefaultScoreWeight = 1000

// Params configures a population. Changing Size requires a new Population.
type Params struct {
	Size              int
	MutationRate      float64 // probability each weight is perturbed
	MutationMagnitude float64 // perturbation bound
	ScoreWeight       float64 // K in the fitness formula

	Physics agent.Physics
	Body    agent.Body
}

// DefaultParams returns the classic settings for a population of the given size.
func DefaultParams(size int) Params {
	p := agent.DefaultPhysics()
	return Params{
		Size:              size,
		MutationRate:      0.1,
		MutationMagnitude: 0.5,
		ScoreWeight:       DefaultScoreWeight,
		Physics:           p,
		Body:              agent.DefaultBody(p),
	}
}

// Validate reports the first parameter that is out of range.
func (p Params) Validate() error {
	switch {
	case p.Size <= 0:
		return fmt.Errorf("%w: population size must be positive, got %d", ErrInvalidConfig, p.Size)
	case math.IsNaN(p.MutationRate) || p.MutationRate < 0 || p.MutationRate > 1:
		return fmt.Errorf("%w: mutation rate must be in [0,1], got %v", ErrInvalidConfig, p.MutationRate)
	case math.IsNaN(p.MutationMagnitude) || p.MutationMagnitude <= 0:
		return fmt.Errorf("%w: mutation magnitude must be positive, got %v", ErrInvalidConfig, p.MutationMagnitude)
	case math.IsNaN(p.ScoreWeight) || p.ScoreWeight < 0:
		return fmt.Errorf("%w: score weight must be non-negative, got %v", ErrInvalidConfig, p.ScoreWeight)
	case p.Physics.BoardWidth <= 0 || p.Physics.BoardHeight <= 0:
		return fmt.Errorf("%w: board must have positive size, got %vx%v",
			ErrInvalidConfig, p.Physics.BoardWidth, p.Physics.BoardHeight)
	case p.Physics.VelocityScale == 0:
		return fmt.Errorf("%w: velocity scale must be non-zero", ErrInvalidConfig)
	}
	return nil
}

// Population owns the agents of the current generation.
type Population struct {
	params Params
	rng    *rand.Rand

	agents     []*agent.Agent
	generation int
	bestScore  int
}

// Stats is the per-tick summary a driver displays.
type Stats struct {
	Generation int
	Alive      int
	Size       int
	BestScore  int
}

// New creates generation 1 with randomly initialized brains.
// All randomness (initial weights, mutation, selection) is drawn from rng.
func New(params Params, rng *rand.Rand) (*Population, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidConfig)
	}
	p := &Population{
		params:     params,
		rng:        rng,
		generation: 1,
	}
	p.agents = p.freshAgents()
	return p, nil
}

func (p *Population) freshAgents() []*agent.Agent {
	agents := make([]*agent.Agent, p.params.Size)
	for i := range agents {
		agents[i] = agent.New(agent.ModeAI, p.params.Body, neural.NewNetwork(p.rng))
	}
	return agents
}

// StepEvents counts what happened during one Step.
type StepEvents struct {
	Flaps          int
	Collisions     int
	BoundaryDeaths int
	Passes         int
}

// Step advances every living agent by one tick: sense, decide, integrate physics,
// then check collision and scoring against every obstacle. obstacles is read-only.
func (p *Population) Step(obstacles []agent.Obstacle) StepEvents {
	var ev StepEvents
	phys := p.params.Physics
	for _, a := range p.agents {
		if !a.Alive {
			continue
		}
		if a.Think(obstacles, phys) {
			ev.Flaps++
		}
		a.Tick(phys)
		if !a.Alive {
			ev.BoundaryDeaths++
		}
		for _, o := range obstacles {
			if a.CheckCollision(o) {
				ev.Collisions++
			}
			if a.CheckScore(o) {
				ev.Passes++
			}
		}
	}
	return ev
}

// AllDead reports whether no agent in the current generation is alive.
func (p *Population) AllDead() bool {
	for _, a := range p.agents {
		if a.Alive {
			return false
		}
	}
	return true
}

// Update runs one Step and, if that leaves every agent dead, breeds the next
// generation. Returns the finished generation's summary and true when that happened.
func (p *Population) Update(obstacles []agent.Obstacle) (Summary, bool) {
	p.Step(obstacles)
	if !p.AllDead() {
		return Summary{}, false
	}
	return p.AdvanceGeneration(), true
}

// AdvanceGeneration scores the finished generation and replaces it with the next one.
// It is meant to be called once AllDead is true.
func (p *Population) AdvanceGeneration() Summary {
	best, maxFitness, maxScore := assignFitness(p.agents, p.params.ScoreWeight)
	if maxScore > p.bestScore {
		p.bestScore = maxScore
	}

	summary := Summarize(p.generation, p.agents)
	summary.BestScoreEver = p.bestScore

	if maxFitness == 0 {
		p.restart()
		summary.Restarted = true
		return summary
	}

	pool := breedingPool(p.agents)
	if len(pool) == 0 {
		p.restart()
		summary.Restarted = true
		return summary
	}
	weights := normalizedWeights(pool, maxFitness)

	next := make([]*agent.Agent, 0, p.params.Size)
	next = append(next, agent.New(agent.ModeAI, p.params.Body, best.Brain.Clone()))

	for len(next) < p.params.Size {
		parent := pool[selectIndex(p.rng, weights)]
		brain := parent.Brain.Clone()
		brain.Mutate(p.rng, p.params.MutationRate, p.params.MutationMagnitude)
		next = append(next, agent.New(agent.ModeAI, p.params.Body, brain))
	}

	p.agents = next
	p.generation++
	return summary
}

// restart discards the population for fresh random brains.
func (p *Population) restart() {
	p.agents = p.freshAgents()
	p.generation++
}

// Stats returns the current display statistics.
func (p *Population) Stats() Stats {
	alive := 0
	for _, a := range p.agents {
		if a.Alive {
			alive++
		}
	}
	return Stats{
		Generation: p.generation,
		Alive:      alive,
		Size:       len(p.agents),
		BestScore:  p.bestScore,
	}
}

// Agents returns the current generation. Callers must treat it as read-only.
func (p *Population) Agents() []*agent.Agent {
	return p.agents
}

// Generation returns the current generation number, starting at 1.
func (p *Population) Generation() int {
	return p.generation
}

// BestScore returns the best score reached by any agent in any finished generation.
func (p *Population) BestScore() int {
	return p.bestScore
}

// Size returns the fixed population size.
func (p *Population) Size() int {
	return p.params.Size
}

// Params returns the parameters the population was created with.
func (p *Population) Params() Params {
	return p.params
}

// SetBrains replaces every agent's brain with the result of fn.
// Used to seed scenarios with hand-built networks.
func (p *Population) SetBrains(fn func(i int) *neural.Network) {
	for i, a := range p.agents {
		a.Brain = fn(i)
	}
}
