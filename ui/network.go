package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flapgen/neural"
)

// Labels for the network diagram, in sensor order.
var (
	InputLabels  = [neural.NumInputs]string{"y", "vy", "dist", "gap top", "gap bot"}
	OutputLabels = [neural.NumOutputs]string{"flap", "stay"}
)

var (
	colorNodeRing = rl.Color{R: 100, G: 100, B: 100, A: 255}
	colorEdgePos  = rl.Color{R: 200, G: 80, B: 80, A: 100}
	colorEdgeNeg  = rl.Color{R: 80, G: 80, B: 200, A: 100}
	colorLabelDim = rl.Color{R: 140, G: 140, B: 140, A: 255}
)

const (
	minEdgeToDraw  = 0.1
	maxEdgeThick   = 3
	maxEdgeOpacity = 150
)

// DrawNetwork renders the network as three columns of nodes shaded by act.
// act may be nil when the agent has nothing to sense yet.
func DrawNetwork(x, y, width, height int32, nn *neural.Network, act *neural.Activations) {
	if nn == nil {
		rl.DrawText("No network", x, y, 12, colorLabelDim)
		return
	}

	colW := float32(width) / 3
	radius := float32(6)
	in := layerNodes(x, y, height, colW*0.5, neural.NumInputs)
	hid := layerNodes(x, y, height, colW*1.5, neural.NumHidden)
	out := layerNodes(x, y, height, colW*2.5, neural.NumOutputs)

	for h := range hid {
		for i := range in {
			drawEdge(in[i], hid[h], nn.WeightsIH.At(h, i))
		}
	}
	for o := range out {
		for h := range hid {
			drawEdge(hid[h], out[o], nn.WeightsHO.At(o, h))
		}
	}

	var a neural.Activations
	if act != nil {
		a = *act
	}
	for i, p := range in {
		drawNode(p, radius, a.Inputs[i])
		w := rl.MeasureText(InputLabels[i], 10)
		rl.DrawText(InputLabels[i], int32(p.X-radius)-w-4, int32(p.Y)-5, 10, colorLabelDim)
	}
	for h, p := range hid {
		drawNode(p, radius, a.Hidden[h])
	}
	for o, p := range out {
		drawNode(p, radius+2, a.Outputs[o])
		label := OutputLabels[o]
		if act != nil {
			label = fmt.Sprintf("%s %.2f", label, a.Outputs[o])
		}
		rl.DrawText(label, int32(p.X+radius+6), int32(p.Y)-5, 10, colorLabelDim)
	}
}

// layerNodes spaces n nodes evenly down a column at offset cx.
func layerNodes(x, y, height int32, cx float32, n int) []rl.Vector2 {
	spacing := float32(height-20) / float32(n)
	pad := (float32(height-20) - float32(n-1)*spacing) / 2
	nodes := make([]rl.Vector2, n)
	for i := range nodes {
		nodes[i] = rl.Vector2{X: float32(x) + cx, Y: float32(y) + 10 + pad + float32(i)*spacing}
	}
	return nodes
}

func drawNode(pos rl.Vector2, radius float32, activation float64) {
	rl.DrawCircleV(pos, radius, activationColor(activation))
	rl.DrawCircleLinesV(pos, radius, colorNodeRing)
}

func drawEdge(from, to rl.Vector2, weight float64) {
	mag := absf(weight)
	if mag < minEdgeToDraw {
		return
	}
	color := colorEdgePos
	if weight < 0 {
		color = colorEdgeNeg
	}
	color.A = uint8(min(40+int(mag*40), maxEdgeOpacity))
	thick := max(0.5, min(float32(mag)*1.5, maxEdgeThick))
	rl.DrawLineEx(from, to, thick, color)
}

// activationColor shades a sigmoid value or raw input: 0 is gray, positive
// red, negative blue.
func activationColor(v float64) rl.Color {
	t := float32(min(absf(v), 1))
	if v >= 0 {
		return rl.Color{R: uint8(60 + t*195), G: uint8(60 - t*30), B: uint8(60 - t*30), A: 255}
	}
	return rl.Color{R: uint8(60 - t*30), G: uint8(60 - t*30), B: uint8(60 + t*195), A: 255}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
