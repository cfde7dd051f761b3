package ai

import (
	"fmt"
	"math"
	"math/rand/v2"
)

type Activation string

const (
	ReLU    Activation = "relu"
	Softmax Activation = "softmax"
)

// Layer is a fully connected layer. Weights are indexed [output][input].
// Dropout is the fraction of outputs zeroed while training; it is ignored by Predict.
type Layer struct {
	Weights    [][]float64
	Bias       []float64
	Activation Activation
	Dropout    float64
}

func (l Layer) Inputs() int {
	if len(l.Weights) == 0 {
		return 0
	}
	return len(l.Weights[0])
}

func (l Layer) Outputs() int {
	return len(l.Weights)
}

// Network is a feed-forward classifier ending with a softmax layer.
// Once trained it is never mutated, Predict is safe for concurrent use.
type Network struct {
	Layers []Layer
}

// NewNetwork builds input -> hidden... -> output with ReLU hidden layers followed by
// dropout, and a softmax output. Weights use Glorot uniform initialization, biases start at zero.
func NewNetwork(inputs int, hidden []int, outputs int, dropout float64, rng *rand.Rand) (*Network, error) {
	if inputs <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("network needs positive input and output widths, got %d and %d", inputs, outputs)
	}
	if dropout < 0 || dropout >= 1 {
		return nil, fmt.Errorf("dropout rate must be in [0,1), got %v", dropout)
	}
	sizes := append([]int{inputs}, hidden...)
	sizes = append(sizes, outputs)

	layers := make([]Layer, 0, len(sizes)-1)
	for i := 1; i < len(sizes); i++ {
		if sizes[i] <= 0 {
			return nil, fmt.Errorf("layer %d has width %d", i, sizes[i])
		}
		activation, rate := ReLU, dropout
		if i == len(sizes)-1 {
			activation, rate = Softmax, 0
		}
		layers = append(layers, newDenseLayer(sizes[i-1], sizes[i], activation, rate, rng))
	}
	return &Network{Layers: layers}, nil
}

func newDenseLayer(inputs, outputs int, activation Activation, dropout float64, rng *rand.Rand) Layer {
	limit := math.Sqrt(6.0 / float64(inputs+outputs))
	weights := make([][]float64, outputs)
	for o := range weights {
		weights[o] = make([]float64, inputs)
		for i := range weights[o] {
			weights[o][i] = (rng.Float64()*2 - 1) * limit
		}
	}
	return Layer{
		Weights:    weights,
		Bias:       make([]float64, outputs),
		Activation: activation,
		Dropout:    dropout,
	}
}

func (n *Network) InputSize() int {
	return n.Layers[0].Inputs()
}

func (n *Network) OutputSize() int {
	return n.Layers[len(n.Layers)-1].Outputs()
}

// Validate checks that layer shapes chain together and that the network ends with softmax.
func (n *Network) Validate() error {
	if len(n.Layers) == 0 {
		return fmt.Errorf("network has no layer")
	}
	for l, layer := range n.Layers {
		if layer.Outputs() == 0 || layer.Inputs() == 0 {
			return fmt.Errorf("layer %d is empty", l)
		}
		for o, row := range layer.Weights {
			if len(row) != layer.Inputs() {
				return fmt.Errorf("layer %d row %d has %d weights, expected %d", l, o, len(row), layer.Inputs())
			}
		}
		if len(layer.Bias) != layer.Outputs() {
			return fmt.Errorf("layer %d has %d biases, expected %d", l, len(layer.Bias), layer.Outputs())
		}
		if l > 0 && layer.Inputs() != n.Layers[l-1].Outputs() {
			return fmt.Errorf("layer %d expects %d inputs but layer %d produces %d",
				l, layer.Inputs(), l-1, n.Layers[l-1].Outputs())
		}
		switch layer.Activation {
		case ReLU, Softmax:
		default:
			return fmt.Errorf("layer %d has unknown activation %q", l, layer.Activation)
		}
	}
	if n.Layers[len(n.Layers)-1].Activation != Softmax {
		return fmt.Errorf("output layer must use softmax")
	}
	return nil
}

// Predict returns the probability distribution over outputs. Dropout is inactive.
func (n *Network) Predict(x []float64) []float64 {
	a := x
	for _, layer := range n.Layers {
		a = layer.activate(layer.linear(a))
	}
	return a
}

func (l Layer) linear(x []float64) []float64 {
	z := make([]float64, len(l.Weights))
	for o, row := range l.Weights {
		sum := l.Bias[o]
		for i, w := range row {
			sum += w * x[i]
		}
		z[o] = sum
	}
	return z
}

func (l Layer) activate(z []float64) []float64 {
	switch l.Activation {
	case Softmax:
		return softmax(z)
	default:
		return relu(z)
	}
}

func relu(z []float64) []float64 {
	out := make([]float64, len(z))
	for i, v := range z {
		if v > 0 {
			out[i] = v
		}
	}
	return out
}

// softmax subtracts the max logit before exponentiating to avoid overflow.
func softmax(z []float64) []float64 {
	out := make([]float64, len(z))
	maxLogit := math.Inf(-1)
	for _, v := range z {
		if v > maxLogit {
			maxLogit = v
		}
	}
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
