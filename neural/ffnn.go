// Package neural provides the fixed-topology feedforward decision network used as an agent's brain.
package neural

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Network dimensions. Topology never changes; only values mutate.
const (
	NumInputs  = 5 // y, vy, distance to obstacle, gap top, gap bottom
	NumHidden  = 8
	NumOutputs = 2 // flap, no-flap

	// NumParams is the total number of weights and biases.
	NumParams = NumHidden*NumInputs + NumOutputs*NumHidden + NumHidden + NumOutputs
)

// Network is a two-layer feedforward network with logistic activations.
type Network struct {
	WeightsIH *mat.Dense    // NumHidden x NumInputs
	WeightsHO *mat.Dense    // NumOutputs x NumHidden
	BiasH     *mat.VecDense // NumHidden
	BiasO     *mat.VecDense // NumOutputs
}

// NewNetwork creates a network with every weight and bias drawn uniformly from [-1, 1).
func NewNetwork(rng *rand.Rand) *Network {
	return &Network{
		WeightsIH: mat.NewDense(NumHidden, NumInputs, uniform(rng, NumHidden*NumInputs)),
		WeightsHO: mat.NewDense(NumOutputs, NumHidden, uniform(rng, NumOutputs*NumHidden)),
		BiasH:     mat.NewVecDense(NumHidden, uniform(rng, NumHidden)),
		BiasO:     mat.NewVecDense(NumOutputs, uniform(rng, NumOutputs)),
	}
}

func uniform(rng *rand.Rand, n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	return data
}

// Activations holds every layer's values from one forward pass.
type Activations struct {
	Inputs  [NumInputs]float64
	Hidden  [NumHidden]float64
	Outputs [NumOutputs]float64
}

// Infer runs the network on a sensor vector and returns the flap and no-flap scores,
// both in (0, 1).
func (nn *Network) Infer(inputs [NumInputs]float64) (flap, noFlap float64) {
	act := nn.Forward(inputs)
	return act.Outputs[0], act.Outputs[1]
}

// Forward runs the network and keeps the intermediate layer values.
func (nn *Network) Forward(inputs [NumInputs]float64) Activations {
	act := Activations{Inputs: inputs}
	x := mat.NewVecDense(NumInputs, act.Inputs[:])

	hidden := mat.NewVecDense(NumHidden, act.Hidden[:])
	hidden.MulVec(nn.WeightsIH, x)
	hidden.AddVec(hidden, nn.BiasH)
	applySigmoid(hidden)

	out := mat.NewVecDense(NumOutputs, act.Outputs[:])
	out.MulVec(nn.WeightsHO, hidden)
	out.AddVec(out, nn.BiasO)
	applySigmoid(out)

	return act
}

// Sigmoid is the logistic function 1/(1+e^-x).
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func applySigmoid(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		v.SetVec(i, Sigmoid(v.AtVec(i)))
	}
}

// Clone creates a deep copy of the network. The copy shares no storage with nn.
func (nn *Network) Clone() *Network {
	return &Network{
		WeightsIH: mat.DenseCopyOf(nn.WeightsIH),
		WeightsHO: mat.DenseCopyOf(nn.WeightsHO),
		BiasH:     mat.VecDenseCopyOf(nn.BiasH),
		BiasO:     mat.VecDenseCopyOf(nn.BiasO),
	}
}

// Mutate perturbs each weight and bias independently with probability rate by a
// uniform offset in [-magnitude, magnitude]. Unselected values are left untouched.
// Values are visited in a fixed order so a seeded rng reproduces the same result.
func (nn *Network) Mutate(rng *rand.Rand, rate, magnitude float64) {
	mutateDense(nn.WeightsIH, rng, rate, magnitude)
	mutateDense(nn.WeightsHO, rng, rate, magnitude)
	mutateVec(nn.BiasH, rng, rate, magnitude)
	mutateVec(nn.BiasO, rng, rate, magnitude)
}

func mutateDense(m *mat.Dense, rng *rand.Rand, rate, magnitude float64) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if rng.Float64() < rate {
				m.Set(i, j, m.At(i, j)+(rng.Float64()*2-1)*magnitude)
			}
		}
	}
}

func mutateVec(v *mat.VecDense, rng *rand.Rand, rate, magnitude float64) {
	for i := 0; i < v.Len(); i++ {
		if rng.Float64() < rate {
			v.SetVec(i, v.AtVec(i)+(rng.Float64()*2-1)*magnitude)
		}
	}
}

// Weights returns every parameter flattened in mutation order:
// WeightsIH row-major, WeightsHO row-major, BiasH, BiasO.
func (nn *Network) Weights() []float64 {
	out := make([]float64, 0, NumParams)
	out = appendDense(out, nn.WeightsIH)
	out = appendDense(out, nn.WeightsHO)
	for i := 0; i < nn.BiasH.Len(); i++ {
		out = append(out, nn.BiasH.AtVec(i))
	}
	for i := 0; i < nn.BiasO.Len(); i++ {
		out = append(out, nn.BiasO.AtVec(i))
	}
	return out
}

func appendDense(out []float64, m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

// SetWeights restores parameters from the layout produced by Weights.
// Extra values are ignored; missing values leave parameters unchanged.
func (nn *Network) SetWeights(w []float64) {
	idx := 0
	next := func(cur float64) float64 {
		if idx >= len(w) {
			return cur
		}
		v := w[idx]
		idx++
		return v
	}
	for _, m := range []*mat.Dense{nn.WeightsIH, nn.WeightsHO} {
		rows, cols := m.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				m.Set(i, j, next(m.At(i, j)))
			}
		}
	}
	for _, v := range []*mat.VecDense{nn.BiasH, nn.BiasO} {
		for i := 0; i < v.Len(); i++ {
			v.SetVec(i, next(v.AtVec(i)))
		}
	}
}
