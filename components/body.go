package components

// Size is the extent of an obstacle's bounding box.
type Size struct {
	Width  float64
	Height float64
}
