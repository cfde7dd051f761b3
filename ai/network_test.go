package ai

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(42, 7))
}

func TestNewNetwork_Shapes(t *testing.T) {
	req := require.New(t)

	network, err := NewNetwork(10, []int{128, 64}, 3, 0.5, newTestRand())
	req.NoError(err)
	req.NoError(network.Validate())

	req.Len(network.Layers, 3)
	req.Equal(10, network.InputSize())
	req.Equal(3, network.OutputSize())
	req.Equal(ReLU, network.Layers[0].Activation)
	req.Equal(0.5, network.Layers[1].Dropout)
	req.Equal(Softmax, network.Layers[2].Activation)
	req.Zero(network.Layers[2].Dropout)
}

func TestNewNetwork_Rejects(t *testing.T) {
	req := require.New(t)

	_, err := NewNetwork(0, []int{8}, 2, 0.5, newTestRand())
	req.Error(err)
	_, err = NewNetwork(4, []int{8}, 0, 0.5, newTestRand())
	req.Error(err)
	_, err = NewNetwork(4, []int{8}, 2, 1, newTestRand())
	req.Error(err)
}

func TestNetwork_PredictIsADistribution(t *testing.T) {
	req := require.New(t)
	network, err := NewNetwork(6, []int{16, 8}, 4, 0.5, newTestRand())
	req.NoError(err)

	input := []float64{1, 0, 1, 0, 0, 1}
	probs := network.Predict(input)

	req.Len(probs, 4)
	var sum float64
	for _, p := range probs {
		req.GreaterOrEqual(p, 0.0)
		sum += p
	}
	req.InDelta(1.0, sum, 1e-9)

	// Then inference is deterministic for fixed weights
	req.Equal(probs, network.Predict(input))
}

func TestSoftmax_Stable(t *testing.T) {
	req := require.New(t)

	probs := softmax([]float64{1000, 1000})

	req.False(math.IsNaN(probs[0]))
	req.InDelta(0.5, probs[0], 1e-9)
}

func TestNetwork_Validate(t *testing.T) {
	req := require.New(t)
	network, err := NewNetwork(3, []int{4}, 2, 0, newTestRand())
	req.NoError(err)

	network.Layers[1].Activation = ReLU
	req.Error(network.Validate())

	network.Layers[1].Activation = Softmax
	network.Layers[1].Bias = []float64{0}
	req.Error(network.Validate())

	req.Error((&Network{}).Validate())
}

func TestNetwork_FitLearnsSeparableIntents(t *testing.T) {
	req := require.New(t)
	rng := newTestRand()

	// Given three classes, each owning disjoint features
	var data Dataset
	data.Append([]float64{1, 0, 0, 0, 0, 0}, OneHot(0, 3))
	data.Append([]float64{0, 1, 0, 0, 0, 0}, OneHot(0, 3))
	data.Append([]float64{0, 0, 1, 0, 0, 0}, OneHot(1, 3))
	data.Append([]float64{0, 0, 0, 1, 0, 0}, OneHot(1, 3))
	data.Append([]float64{0, 0, 0, 0, 1, 0}, OneHot(2, 3))
	data.Append([]float64{0, 0, 0, 0, 0, 1}, OneHot(2, 3))

	network, err := NewNetwork(6, []int{128, 64}, 3, 0.5, rng)
	req.NoError(err)

	opts := DefaultFitOptions()
	opts.Rand = rng
	calls := 0
	history, err := network.Fit(data, opts, func(EpochStats) { calls++ })

	// Then the loss decreased and every example is classified correctly
	req.NoError(err)
	req.Len(history, opts.Epochs)
	req.Equal(opts.Epochs, calls)
	req.Less(history[len(history)-1].Loss, history[0].Loss)
	for i, x := range data.X {
		req.Equal(argmax(data.Y[i]), argmax(network.Predict(x)), "example %d", i)
	}
}

func TestNetwork_FitRejectsBadInput(t *testing.T) {
	req := require.New(t)
	network, err := NewNetwork(2, []int{4}, 2, 0, newTestRand())
	req.NoError(err)

	opts := DefaultFitOptions()
	_, err = network.Fit(Dataset{}, opts, nil)
	req.Error(err, "missing random source")

	opts.Rand = newTestRand()
	_, err = network.Fit(Dataset{}, opts, nil)
	req.Error(err, "empty dataset")

	var wrongWidth Dataset
	wrongWidth.Append([]float64{1, 0, 0}, OneHot(0, 2))
	_, err = network.Fit(wrongWidth, opts, nil)
	req.Error(err)
}
