package agent

// Obstacle is one rectangle of a gap pair, read-only to agents.
type Obstacle struct {
	ID     uint64 // unique, increasing in spawn order
	X, Y   float64
	Width  float64
	Height float64
	Top    bool // the upper member of its pair; only top members score
}

// Right returns the obstacle's trailing (right) edge.
func (o Obstacle) Right() float64 {
	return o.X + o.Width
}

// Gap returns the vertical extent of the opening this obstacle bounds.
// A top member bounds the opening from above; a bottom member from below.
func (o Obstacle) Gap(gapHeight float64) (top, bottom float64) {
	if o.Top {
		top = o.Y + o.Height
		return top, top + gapHeight
	}
	return o.Y - gapHeight, o.Y
}

// passedCapacity bounds how many obstacle IDs an agent remembers. Far more
// pairs than ever fit on the board at once.
const passedCapacity = 16

// passedSet is a fixed-capacity ring of obstacle IDs already scored.
type passedSet struct {
	ids   [passedCapacity]uint64
	n     int
	write int
}

// Has reports whether id has been recorded.
func (s *passedSet) Has(id uint64) bool {
	for i := 0; i < s.n; i++ {
		if s.ids[i] == id {
			return true
		}
	}
	return false
}

// Add records id, evicting the oldest entry when full.
func (s *passedSet) Add(id uint64) {
	s.ids[s.write] = id
	s.write = (s.write + 1) % passedCapacity
	if s.n < passedCapacity {
		s.n++
	}
}

// Len returns the number of remembered IDs.
func (s *passedSet) Len() int {
	return s.n
}
