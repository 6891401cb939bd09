// Package systems contains ECS systems for the obstacle course.
package systems

import (
	"cmp"
	"math/rand"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flapgen/agent"
	"github.com/pthm-cable/flapgen/components"
)

// CourseParams configures the obstacle stream.
type CourseParams struct {
	BoardWidth    float64
	PipeWidth     float64
	PipeHeight    float64
	GapHeight     float64
	ScrollSpeed   float64 // pixels moved left per tick
	SpawnInterval int     // ticks between pairs
	OffsetMin     float64 // top member is raised at least this far above the board
	OffsetRange   float64 // plus a uniform extra in [0, OffsetRange)
}

// DefaultCourseParams returns the classic course for the given board.
func DefaultCourseParams(p agent.Physics) CourseParams {
	const pipeHeight = 512
	return CourseParams{
		BoardWidth:    p.BoardWidth,
		PipeWidth:     64,
		PipeHeight:    pipeHeight,
		GapHeight:     p.GapHeight,
		ScrollSpeed:   2,
		SpawnInterval: 90,
		OffsetMin:     pipeHeight / 4,
		OffsetRange:   pipeHeight / 2,
	}
}

// CourseSystem spawns gap pairs at a fixed cadence, scrolls them left and
// culls them once they leave the board.
type CourseSystem struct {
	params CourseParams
	rng    *rand.Rand

	mapper *ecs.Map4[components.Position, components.Velocity, components.Size, components.Pipe]
	filter *ecs.Filter4[components.Position, components.Velocity, components.Size, components.Pipe]

	nextID     uint64
	nextPair   uint64
	sinceSpawn int

	toRemove []ecs.Entity
}

// NewCourseSystem creates a course on the given world. Offsets are drawn from rng.
func NewCourseSystem(w *ecs.World, params CourseParams, rng *rand.Rand) *CourseSystem {
	if params.SpawnInterval < 1 {
		params.SpawnInterval = 1
	}
	return &CourseSystem{
		params:   params,
		rng:      rng,
		mapper:   ecs.NewMap4[components.Position, components.Velocity, components.Size, components.Pipe](w),
		filter:   ecs.NewFilter4[components.Position, components.Velocity, components.Size, components.Pipe](w),
		nextID:   1,
		nextPair: 1,
	}
}

// Update advances the course by one tick: scroll, cull, then spawn a new pair
// if the interval has elapsed and spawning is allowed.
func (s *CourseSystem) Update(spawn bool) {
	s.toRemove = s.toRemove[:0]

	query := s.filter.Query()
	for query.Next() {
		pos, vel, size, _ := query.Get()
		pos.X += vel.X
		pos.Y += vel.Y
		if pos.X < -size.Width {
			s.toRemove = append(s.toRemove, query.Entity())
		}
	}

	// Structural changes are not allowed while the query is open.
	for _, e := range s.toRemove {
		s.mapper.Remove(e)
	}

	s.sinceSpawn++
	if s.sinceSpawn >= s.params.SpawnInterval {
		s.sinceSpawn = 0
		if spawn {
			s.Spawn()
		}
	}
}

// Spawn places a new gap pair at the right edge of the board.
func (s *CourseSystem) Spawn() {
	p := s.params
	topY := -p.OffsetMin - s.rng.Float64()*p.OffsetRange

	vel := components.Velocity{X: -p.ScrollSpeed}
	size := components.Size{Width: p.PipeWidth, Height: p.PipeHeight}
	pair := s.nextPair
	s.nextPair++

	topPos := components.Position{X: p.BoardWidth, Y: topY}
	top := components.Pipe{ID: s.nextID, Pair: pair, Top: true}
	s.nextID++
	s.mapper.NewEntity(&topPos, &vel, &size, &top)

	bottomPos := components.Position{X: p.BoardWidth, Y: topY + p.PipeHeight + p.GapHeight}
	bottom := components.Pipe{ID: s.nextID, Pair: pair}
	s.nextID++
	s.mapper.NewEntity(&bottomPos, &vel, &size, &bottom)
}

// Clear removes every obstacle. The spawn cadence keeps running, and IDs keep
// increasing so agents never confuse a new pipe with an old one.
func (s *CourseSystem) Clear() {
	s.toRemove = s.toRemove[:0]
	query := s.filter.Query()
	for query.Next() {
		s.toRemove = append(s.toRemove, query.Entity())
	}
	for _, e := range s.toRemove {
		s.mapper.Remove(e)
	}
}

// Obstacles returns the current obstacles in spawn order.
func (s *CourseSystem) Obstacles() []agent.Obstacle {
	out := make([]agent.Obstacle, 0, 8)
	query := s.filter.Query()
	for query.Next() {
		pos, _, size, pipe := query.Get()
		out = append(out, agent.Obstacle{
			ID:     pipe.ID,
			X:      pos.X,
			Y:      pos.Y,
			Width:  size.Width,
			Height: size.Height,
			Top:    pipe.Top,
		})
	}
	slices.SortFunc(out, func(a, b agent.Obstacle) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Len returns the number of live obstacles.
func (s *CourseSystem) Len() int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Params returns the course configuration.
func (s *CourseSystem) Params() CourseParams {
	return s.params
}
