// Package camera maps the bounded board onto a rectangular screen viewport.
package camera

// Camera controls the viewport onto the board.
// At FitZoom the whole board is visible and centered in the viewport.
type Camera struct {
	// Center of the view in board coordinates
	X, Y float32

	// Zoom relative to board units (1.0 = one pixel per board unit)
	Zoom float32

	// Viewport rectangle on screen
	ViewportX, ViewportY float32
	ViewportW, ViewportH float32

	// Board dimensions
	BoardW, BoardH float32

	// FitZoom shows the whole board; MaxZoom is a multiple of it.
	FitZoom, MaxZoom float32
}

// New creates a camera that fits the board inside the viewport at (vx, vy).
func New(vx, vy, viewportW, viewportH, boardW, boardH float32) *Camera {
	c := &Camera{
		ViewportX: vx,
		ViewportY: vy,
		ViewportW: viewportW,
		ViewportH: viewportH,
		BoardW:    boardW,
		BoardH:    boardH,
	}
	c.refit()
	c.Reset()
	return c
}

func (c *Camera) refit() {
	c.FitZoom = min(c.ViewportW/c.BoardW, c.ViewportH/c.BoardH)
	c.MaxZoom = c.FitZoom * 4
}

// WorldToScreen converts board coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportX + c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportY + c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to board coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportX-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportY-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// Scale converts a board length to screen pixels.
func (c *Camera) Scale(length float32) float32 {
	return length * c.Zoom
}

// IsVisible reports whether any part of the board rectangle is on screen.
func (c *Camera) IsVisible(wx, wy, w, h float32) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return wx < maxX && wx+w > minX && wy < maxY && wy+h > minY
}

// Contains reports whether a screen point lies inside the viewport.
func (c *Camera) Contains(sx, sy float32) bool {
	return sx >= c.ViewportX && sx < c.ViewportX+c.ViewportW &&
		sy >= c.ViewportY && sy < c.ViewportY+c.ViewportH
}

// Resize updates the viewport and keeps the zoom relative to the new fit.
func (c *Camera) Resize(vx, vy, viewportW, viewportH float32) {
	if vx == c.ViewportX && vy == c.ViewportY && viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	rel := c.Zoom / c.FitZoom
	c.ViewportX, c.ViewportY = vx, vy
	c.ViewportW, c.ViewportH = viewportW, viewportH
	c.refit()
	c.SetZoom(c.FitZoom * rel)
}

// Pan moves the view by the given delta in screen pixels, keeping the center on the board.
func (c *Camera) Pan(dx, dy float32) {
	c.X = clamp(c.X+dx/c.Zoom, 0, c.BoardW)
	c.Y = clamp(c.Y+dy/c.Zoom, 0, c.BoardH)
}

// SetZoom sets the zoom level, clamped to [FitZoom, MaxZoom].
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.FitZoom, c.MaxZoom)
	if c.Zoom == c.FitZoom {
		c.X, c.Y = c.BoardW/2, c.BoardH/2
	}
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset shows the whole board.
func (c *Camera) Reset() {
	c.X = c.BoardW / 2
	c.Y = c.BoardH / 2
	c.Zoom = c.FitZoom
}

// VisibleWorldBounds returns the board-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
