package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"stocktagger/internal/domain"

	"gonum.org/v1/gonum/mat"
)

type Activation string

const (
	ActivationReLU    Activation = "relu"
	ActivationSigmoid Activation = "sigmoid"
)

//go:generate mockgen -source=network.go -destination=mocks/mock_classifier.go -package=mock_ml Classifier

// Classifier maps one scaled feature vector to independent per-label
// probabilities
type Classifier interface {
	Predict(features []float64) ([]float64, error)
	InputDim() int
	OutputDim() int
}

// Layer is a fully connected layer followed by its activation and an
// optional dropout applied only while training
type Layer struct {
	Weights    *mat.Dense
	Bias       []float64
	Activation Activation
	Dropout    float64
}

type Network struct {
	inputDim int
	layers   []*Layer
}

// NewNetwork builds input -> hidden relu layers (each followed by its
// dropout rate) -> sigmoid output layer, glorot-uniform initialized
func NewNetwork(inputDim int, hidden []int, dropout []float64, outputDim int, seed int64) (*Network, error) {
	if inputDim <= 0 || outputDim <= 0 {
		return nil, fmt.Errorf("network dims must be positive, got input=%d output=%d", inputDim, outputDim)
	}
	if len(hidden) != len(dropout) {
		return nil, fmt.Errorf("got %d hidden layers but %d dropout rates", len(hidden), len(dropout))
	}
	rng := rand.New(rand.NewSource(seed))

	n := &Network{inputDim: inputDim}
	in := inputDim
	for i, units := range hidden {
		if dropout[i] < 0 || dropout[i] >= 1 {
			return nil, fmt.Errorf("dropout rate must be in [0, 1), got %v", dropout[i])
		}
		n.layers = append(n.layers, &Layer{
			Weights:    glorotUniform(rng, in, units),
			Bias:       make([]float64, units),
			Activation: ActivationReLU,
			Dropout:    dropout[i],
		})
		in = units
	}
	n.layers = append(n.layers, &Layer{
		Weights:    glorotUniform(rng, in, outputDim),
		Bias:       make([]float64, outputDim),
		Activation: ActivationSigmoid,
	})

	return n, nil
}

func glorotUniform(rng *rand.Rand, in, out int) *mat.Dense {
	limit := math.Sqrt(6 / float64(in+out))
	data := make([]float64, in*out)
	for i := range data {
		data[i] = rng.Float64()*2*limit - limit
	}
	return mat.NewDense(in, out, data)
}

func (n *Network) InputDim() int {
	return n.inputDim
}

func (n *Network) OutputDim() int {
	_, c := n.layers[len(n.layers)-1].Weights.Dims()
	return c
}

func (n *Network) Layers() []*Layer {
	return n.layers
}

func (n *Network) Predict(features []float64) ([]float64, error) {
	if len(features) != n.inputDim {
		return nil, domain.ShapeMismatchError{What: "model input", Expected: n.inputDim, Got: len(features)}
	}
	x := mat.NewDense(1, n.inputDim, append([]float64{}, features...))
	out, _ := n.forward(x, nil)
	return mat.Row(nil, 0, out), nil
}

type layerCache struct {
	input *mat.Dense
	z     *mat.Dense
	mask  *mat.Dense
}

// forward runs a batch through the network. dropout is only applied when
// rng is non-nil
func (n *Network) forward(x *mat.Dense, rng *rand.Rand) (*mat.Dense, []layerCache) {
	caches := make([]layerCache, 0, len(n.layers))
	in := x
	for _, l := range n.layers {
		z := &mat.Dense{}
		z.Mul(in, l.Weights)
		rows, cols := z.Dims()
		for i := 0; i < rows; i++ {
			row := z.RawRowView(i)
			for j := range row {
				row[j] += l.Bias[j]
			}
		}

		a := mat.NewDense(rows, cols, nil)
		switch l.Activation {
		case ActivationReLU:
			a.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, z)
		case ActivationSigmoid:
			a.Apply(func(_, _ int, v float64) float64 { return sigmoid(v) }, z)
		}

		var mask *mat.Dense
		if rng != nil && l.Dropout > 0 {
			keep := 1 - l.Dropout
			mask = mat.NewDense(rows, cols, nil)
			mask.Apply(func(_, _ int, _ float64) float64 {
				if rng.Float64() < keep {
					return 1 / keep
				}
				return 0
			}, mask)
			a.MulElem(a, mask)
		}

		caches = append(caches, layerCache{input: in, z: z, mask: mask})
		in = a
	}
	return in, caches
}

type gradients struct {
	weights []*mat.Dense
	bias    [][]float64
}

// backward returns parameter gradients of the batch-mean loss, where the
// per-sample loss is binary cross-entropy summed over labels
func (n *Network) backward(out, y *mat.Dense, caches []layerCache) gradients {
	batch, _ := out.Dims()
	g := gradients{
		weights: make([]*mat.Dense, len(n.layers)),
		bias:    make([][]float64, len(n.layers)),
	}

	delta := &mat.Dense{}
	delta.Sub(out, y)
	delta.Scale(1/float64(batch), delta)

	for li := len(n.layers) - 1; li >= 0; li-- {
		c := caches[li]
		l := n.layers[li]

		gw := &mat.Dense{}
		gw.Mul(c.input.T(), delta)
		g.weights[li] = gw

		rows, cols := delta.Dims()
		gb := make([]float64, cols)
		for i := 0; i < rows; i++ {
			for j, v := range delta.RawRowView(i) {
				gb[j] += v
			}
		}
		g.bias[li] = gb

		if li == 0 {
			break
		}

		prev := caches[li-1]
		prevLayer := n.layers[li-1]
		dIn := &mat.Dense{}
		dIn.Mul(delta, l.Weights.T())
		if prev.mask != nil {
			dIn.MulElem(dIn, prev.mask)
		}
		switch prevLayer.Activation {
		case ActivationReLU:
			dIn.Apply(func(i, j int, v float64) float64 {
				if prev.z.At(i, j) > 0 {
					return v
				}
				return 0
			}, dIn)
		case ActivationSigmoid:
			dIn.Apply(func(i, j int, v float64) float64 {
				s := sigmoid(prev.z.At(i, j))
				return v * s * (1 - s)
			}, dIn)
		}
		delta = dIn
	}

	return g
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

type layerJSON struct {
	Activation Activation  `json:"activation"`
	Dropout    float64     `json:"dropout"`
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
}

type networkJSON struct {
	InputDim int         `json:"inputDim"`
	Layers   []layerJSON `json:"layers"`
}

func (n *Network) MarshalJSON() ([]byte, error) {
	out := networkJSON{InputDim: n.inputDim}
	for _, l := range n.layers {
		rows, _ := l.Weights.Dims()
		weights := make([][]float64, rows)
		for i := 0; i < rows; i++ {
			weights[i] = mat.Row(nil, i, l.Weights)
		}
		out.Layers = append(out.Layers, layerJSON{
			Activation: l.Activation,
			Dropout:    l.Dropout,
			Weights:    weights,
			Bias:       l.Bias,
		})
	}
	return json.Marshal(out)
}

func (n *Network) UnmarshalJSON(b []byte) error {
	in := networkJSON{}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	if len(in.Layers) == 0 {
		return fmt.Errorf("network has no layers")
	}

	layers := make([]*Layer, 0, len(in.Layers))
	expectedRows := in.InputDim
	for i, l := range in.Layers {
		if len(l.Weights) != expectedRows {
			return domain.ShapeMismatchError{What: fmt.Sprintf("layer %d weight rows", i), Expected: expectedRows, Got: len(l.Weights)}
		}
		cols := len(l.Bias)
		if expectedRows == 0 || cols == 0 {
			return fmt.Errorf("layer %d has an empty weight matrix", i)
		}
		data := make([]float64, 0, expectedRows*cols)
		for _, row := range l.Weights {
			if len(row) != cols {
				return domain.ShapeMismatchError{What: fmt.Sprintf("layer %d weight cols", i), Expected: cols, Got: len(row)}
			}
			data = append(data, row...)
		}
		switch l.Activation {
		case ActivationReLU, ActivationSigmoid:
		default:
			return fmt.Errorf("layer %d has unknown activation '%s'", i, l.Activation)
		}
		layers = append(layers, &Layer{
			Weights:    mat.NewDense(expectedRows, cols, data),
			Bias:       l.Bias,
			Activation: l.Activation,
			Dropout:    l.Dropout,
		})
		expectedRows = cols
	}

	n.inputDim = in.InputDim
	n.layers = layers
	return nil
}
