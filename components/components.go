// Package components defines ECS components for obstacle course entities.
package components

// Pipe identifies one member of a gap pair.
// Members of the same pair share a Pair number; IDs are unique per member.
type Pipe struct {
	ID   uint64
	Pair uint64
	Top  bool
}
