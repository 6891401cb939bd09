package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer draws panel chrome with a shared theme.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel fills a bordered panel rectangle.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// Column starts a top-to-bottom layout at (x, y).
func (r *Renderer) Column(x, y, width int32) *Column {
	return &Column{theme: &r.Theme, X: x, Y: y, Width: width}
}

// Column lays out panel rows; Y is the top of the next row.
type Column struct {
	theme *Theme
	X, Y  int32
	Width int32
}

// Header draws a section title.
func (c *Column) Header(title string) {
	rl.DrawText(title, c.X, c.Y, c.theme.HeaderFontSize, c.theme.SectionHeader)
	c.Y += c.theme.LineHeight + 2
}

// Row draws "label: value" with the value in a fixed column.
func (c *Column) Row(label, value string) {
	rl.DrawText(label+":", c.X, c.Y, c.theme.FontSize, c.theme.LabelColor)
	rl.DrawText(value, c.X+c.theme.LabelWidth, c.Y, c.theme.FontSize, c.theme.ValueColor)
	c.Y += c.theme.LineHeight
}

// Line draws free text in a small font.
func (c *Column) Line(text string, color rl.Color) {
	rl.DrawText(text, c.X, c.Y, 12, color)
	c.Y += 14
}

// Bar draws a labeled fill bar for a fraction in [0, 1].
func (c *Column) Bar(label string, fraction float32) {
	fraction = max(0, min(fraction, 1))
	t := c.theme
	barX := c.X + t.LabelWidth
	barW := c.Width - t.LabelWidth - 45

	rl.DrawText(label+":", c.X, c.Y, t.FontSize, t.LabelColor)
	rl.DrawRectangle(barX, c.Y+2, barW, t.BarHeight, t.BarBg)
	rl.DrawRectangle(barX, c.Y+2, int32(float32(barW)*fraction), t.BarHeight, t.BarFill)
	rl.DrawText(fmt.Sprintf("%3.0f%%", fraction*100), barX+barW+5, c.Y, t.FontSize, t.ValueColor)
	c.Y += t.LineHeight + 2
}
