package evolution

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/flapgen/agent"
)

// Fitness scores one agent: survival time plus an exponential bonus for gaps cleared,
// so one more gap outweighs any amount of extra survival at the same score.
func Fitness(framesAlive, score int, scoreWeight float64) float64 {
	return float64(framesAlive) + math.Pow(2, float64(score))*scoreWeight
}

// assignFitness sets every agent's Fitness and returns the first agent with the
// strictly highest fitness (agents[0] if none exceeds zero), the maximum fitness
// and the maximum score.
func assignFitness(agents []*agent.Agent, scoreWeight float64) (best *agent.Agent, maxFitness float64, maxScore int) {
	if len(agents) == 0 {
		return nil, 0, 0
	}
	best = agents[0]
	for _, a := range agents {
		a.Fitness = Fitness(a.FramesAlive, a.Score, scoreWeight)
		if a.Fitness > maxFitness {
			maxFitness = a.Fitness
			best = a
		}
		if a.Score > maxScore {
			maxScore = a.Score
		}
	}
	return best, maxFitness, maxScore
}

// breedingPool returns the agents with strictly positive fitness, in population order.
func breedingPool(agents []*agent.Agent) []*agent.Agent {
	pool := make([]*agent.Agent, 0, len(agents))
	for _, a := range agents {
		if a.Fitness > 0 {
			pool = append(pool, a)
		}
	}
	return pool
}

// normalizedWeights divides each pool member's fitness by maxFitness,
// giving selection weights in (0, 1].
func normalizedWeights(pool []*agent.Agent, maxFitness float64) []float64 {
	w := make([]float64, len(pool))
	for i, a := range pool {
		w[i] = a.Fitness
	}
	floats.Scale(1/maxFitness, w)
	return w
}
