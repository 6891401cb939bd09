package components

// Position is an obstacle's top-left corner in board coordinates.
type Position struct {
	X, Y float64
}

// Velocity is the per-tick displacement applied by the course.
type Velocity struct {
	X, Y float64
}
