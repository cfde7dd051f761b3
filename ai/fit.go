package ai

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const epsilon = 1e-12

// FitOptions configures mini-batch stochastic gradient descent.
type FitOptions struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Momentum     float64
	Nesterov     bool
	// Rand drives shuffling and dropout masks.
	Rand *rand.Rand
}

// DefaultFitOptions: 200 epochs, batches of 5, SGD lr=0.01 with Nesterov momentum 0.9.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		Epochs:       200,
		BatchSize:    5,
		LearningRate: 0.01,
		Momentum:     0.9,
		Nesterov:     true,
	}
}

func (o FitOptions) validate() error {
	switch {
	case o.Epochs <= 0:
		return fmt.Errorf("epochs must be positive, got %d", o.Epochs)
	case o.BatchSize <= 0:
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	case o.LearningRate <= 0:
		return fmt.Errorf("learning rate must be positive, got %v", o.LearningRate)
	case o.Momentum < 0 || o.Momentum >= 1:
		return fmt.Errorf("momentum must be in [0,1), got %v", o.Momentum)
	case o.Rand == nil:
		return fmt.Errorf("a random source is required")
	}
	return nil
}

// EpochStats is the mean categorical cross-entropy and accuracy over one pass on the dataset.
type EpochStats struct {
	Epoch    int
	Loss     float64
	Accuracy float64
}

type gradients struct {
	weights [][][]float64
	bias    [][]float64
}

func newGradients(n *Network) gradients {
	g := gradients{
		weights: make([][][]float64, len(n.Layers)),
		bias:    make([][]float64, len(n.Layers)),
	}
	for l, layer := range n.Layers {
		g.weights[l] = make([][]float64, layer.Outputs())
		for o := range g.weights[l] {
			g.weights[l][o] = make([]float64, layer.Inputs())
		}
		g.bias[l] = make([]float64, layer.Outputs())
	}
	return g
}

// Fit trains the network in place and reports statistics after every epoch.
// onEpoch may be nil.
func (n *Network) Fit(data Dataset, opts FitOptions, onEpoch func(EpochStats)) ([]EpochStats, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if data.Len() == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}
	if err := data.Validate(n.InputSize(), n.OutputSize()); err != nil {
		return nil, err
	}

	velocity := newGradients(n)
	order := make([]int, data.Len())
	for i := range order {
		order[i] = i
	}

	history := make([]EpochStats, 0, opts.Epochs)
	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		opts.Rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var lossSum float64
		correct := 0
		for start := 0; start < len(order); start += opts.BatchSize {
			end := min(start+opts.BatchSize, len(order))
			grads := newGradients(n)
			for _, idx := range order[start:end] {
				loss, hit := n.backpropagate(data.X[idx], data.Y[idx], grads, opts.Rand)
				lossSum += loss
				if hit {
					correct++
				}
			}
			n.step(grads, velocity, float64(end-start), opts)
		}

		stats := EpochStats{
			Epoch:    epoch,
			Loss:     lossSum / float64(len(order)),
			Accuracy: float64(correct) / float64(len(order)),
		}
		history = append(history, stats)
		if onEpoch != nil {
			onEpoch(stats)
		}
	}
	return history, nil
}

// backpropagate runs one training forward pass with dropout and accumulates gradients
// of the cross-entropy loss into grads.
func (n *Network) backpropagate(x, y []float64, grads gradients, rng *rand.Rand) (float64, bool) {
	activations := make([][]float64, 0, len(n.Layers)+1)
	activations = append(activations, x)
	preActivations := make([][]float64, len(n.Layers))
	masks := make([][]float64, len(n.Layers))

	a := x
	for l, layer := range n.Layers {
		z := layer.linear(a)
		preActivations[l] = z
		out := layer.activate(z)
		if layer.Dropout > 0 {
			masks[l] = dropoutMask(len(out), layer.Dropout, rng)
			for i := range out {
				out[i] *= masks[l][i]
			}
		}
		activations = append(activations, out)
		a = out
	}

	probs := a
	loss := crossEntropy(probs, y)
	hit := argmax(probs) == argmax(y)

	// Softmax followed by cross-entropy has the gradient p - y on the logits.
	delta := make([]float64, len(probs))
	for i := range probs {
		delta[i] = probs[i] - y[i]
	}

	for l := len(n.Layers) - 1; l >= 0; l-- {
		input := activations[l]
		for o, d := range delta {
			grads.bias[l][o] += d
			if d == 0 {
				continue
			}
			row := grads.weights[l][o]
			for i, v := range input {
				row[i] += d * v
			}
		}
		if l == 0 {
			break
		}

		prev := make([]float64, len(input))
		for o, d := range delta {
			if d == 0 {
				continue
			}
			for i, w := range n.Layers[l].Weights[o] {
				prev[i] += w * d
			}
		}
		below := n.Layers[l-1]
		for i := range prev {
			if masks[l-1] != nil {
				prev[i] *= masks[l-1][i]
			}
			if below.Activation == ReLU && preActivations[l-1][i] <= 0 {
				prev[i] = 0
			}
		}
		delta = prev
	}
	return loss, hit
}

// step applies averaged gradients with (Nesterov) momentum:
// v = m*v - lr*g, then w += v, or w += m*v - lr*g with Nesterov.
func (n *Network) step(grads, velocity gradients, size float64, opts FitOptions) {
	update := func(param, v *float64, g float64) {
		g /= size
		*v = opts.Momentum*(*v) - opts.LearningRate*g
		if opts.Nesterov {
			*param += opts.Momentum*(*v) - opts.LearningRate*g
		} else {
			*param += *v
		}
	}
	for l := range n.Layers {
		layer := n.Layers[l]
		for o := range layer.Weights {
			for i := range layer.Weights[o] {
				update(&layer.Weights[o][i], &velocity.weights[l][o][i], grads.weights[l][o][i])
			}
			update(&layer.Bias[o], &velocity.bias[l][o], grads.bias[l][o])
		}
	}
}

// dropoutMask keeps each unit with probability 1-rate and scales kept units by 1/(1-rate).
func dropoutMask(size int, rate float64, rng *rand.Rand) []float64 {
	mask := make([]float64, size)
	scale := 1 / (1 - rate)
	for i := range mask {
		if rng.Float64() >= rate {
			mask[i] = scale
		}
	}
	return mask
}

func crossEntropy(probs, y []float64) float64 {
	var loss float64
	for i, target := range y {
		if target == 0 {
			continue
		}
		loss -= target * math.Log(math.Max(probs[i], epsilon))
	}
	return loss
}
