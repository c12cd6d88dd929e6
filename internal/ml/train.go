package ml

import (
	"fmt"
	"math"
	"math/rand"

	"stocktagger/internal/domain"

	"gonum.org/v1/gonum/mat"
)

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-7

	// probabilities are clipped before taking logs
	lossEpsilon = 1e-7

	// Threshold turns an independent sigmoid output into a label
	Threshold = 0.5
)

type FitConfig struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Seed         int64
}

type EpochMetrics struct {
	Epoch       int     `csv:"epoch" json:"epoch"`
	Loss        float64 `csv:"loss" json:"loss"`
	Accuracy    float64 `csv:"accuracy" json:"accuracy"`
	ValLoss     float64 `csv:"val_loss" json:"valLoss"`
	ValAccuracy float64 `csv:"val_accuracy" json:"valAccuracy"`
}

type adam struct {
	lr float64
	t  int
	mW [][]float64
	vW [][]float64
	mB [][]float64
	vB [][]float64
}

func newAdam(n *Network, lr float64) *adam {
	a := &adam{lr: lr}
	for _, l := range n.layers {
		size := len(l.Weights.RawMatrix().Data)
		a.mW = append(a.mW, make([]float64, size))
		a.vW = append(a.vW, make([]float64, size))
		a.mB = append(a.mB, make([]float64, len(l.Bias)))
		a.vB = append(a.vB, make([]float64, len(l.Bias)))
	}
	return a
}

func (a *adam) step(n *Network, g gradients) {
	a.t++
	lrT := a.lr * math.Sqrt(1-math.Pow(adamBeta2, float64(a.t))) / (1 - math.Pow(adamBeta1, float64(a.t)))

	update := func(params, grads, m, v []float64) {
		for i := range params {
			m[i] = adamBeta1*m[i] + (1-adamBeta1)*grads[i]
			v[i] = adamBeta2*v[i] + (1-adamBeta2)*grads[i]*grads[i]
			params[i] -= lrT * m[i] / (math.Sqrt(v[i]) + adamEpsilon)
		}
	}

	for li, l := range n.layers {
		update(l.Weights.RawMatrix().Data, g.weights[li].RawMatrix().Data, a.mW[li], a.vW[li])
		update(l.Bias, g.bias[li], a.mB[li], a.vB[li])
	}
}

func toDense(rows [][]float64, width int) (*mat.Dense, error) {
	data := make([]float64, 0, len(rows)*width)
	for i, r := range rows {
		if len(r) != width {
			return nil, domain.ShapeMismatchError{What: fmt.Sprintf("row %d", i), Expected: width, Got: len(r)}
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), width, data), nil
}

// batchMetrics returns summed loss and correct label count for a batch
func batchMetrics(out, y *mat.Dense) (loss float64, correct int) {
	rows, cols := out.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			p := math.Min(math.Max(out.At(i, j), lossEpsilon), 1-lossEpsilon)
			t := y.At(i, j)
			loss -= t*math.Log(p) + (1-t)*math.Log(1-p)
			predicted := 0.0
			if out.At(i, j) >= Threshold {
				predicted = 1
			}
			if predicted == t {
				correct++
			}
		}
	}
	return loss, correct
}

// Evaluate returns the mean per-sample loss and the binary accuracy over
// all labels. both are NaN for an empty set
func Evaluate(n *Network, x, y [][]float64) (loss, accuracy float64, err error) {
	if len(x) == 0 {
		return math.NaN(), math.NaN(), nil
	}
	if len(x) != len(y) {
		return 0, 0, domain.ShapeMismatchError{What: "evaluation labels", Expected: len(x), Got: len(y)}
	}
	xm, err := toDense(x, n.InputDim())
	if err != nil {
		return 0, 0, err
	}
	ym, err := toDense(y, n.OutputDim())
	if err != nil {
		return 0, 0, err
	}
	out, _ := n.forward(xm, nil)
	sum, correct := batchMetrics(out, ym)
	return sum / float64(len(x)), float64(correct) / float64(len(x)*n.OutputDim()), nil
}

// Fit trains with mini-batch adam, shuffling every epoch. onEpoch, when
// set, is called after each epoch's validation pass
func Fit(n *Network, x, y, valX, valY [][]float64, cfg FitConfig, onEpoch func(EpochMetrics)) ([]EpochMetrics, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("cannot fit on 0 rows")
	}
	if len(x) != len(y) {
		return nil, domain.ShapeMismatchError{What: "training labels", Expected: len(x), Got: len(y)}
	}
	if cfg.BatchSize <= 0 || cfg.Epochs <= 0 {
		return nil, fmt.Errorf("epochs and batch size must be positive")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	opt := newAdam(n, cfg.LearningRate)
	history := make([]EpochMetrics, 0, cfg.Epochs)

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		perm := rng.Perm(len(x))
		lossSum := 0.0
		correct := 0

		for start := 0; start < len(perm); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(perm) {
				end = len(perm)
			}
			bx := make([][]float64, 0, end-start)
			by := make([][]float64, 0, end-start)
			for _, idx := range perm[start:end] {
				bx = append(bx, x[idx])
				by = append(by, y[idx])
			}
			xm, err := toDense(bx, n.InputDim())
			if err != nil {
				return nil, err
			}
			ym, err := toDense(by, n.OutputDim())
			if err != nil {
				return nil, err
			}

			out, caches := n.forward(xm, rng)
			l, c := batchMetrics(out, ym)
			lossSum += l
			correct += c

			opt.step(n, n.backward(out, ym, caches))
		}

		valLoss, valAcc, err := Evaluate(n, valX, valY)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate validation set: %w", err)
		}

		m := EpochMetrics{
			Epoch:       epoch,
			Loss:        lossSum / float64(len(x)),
			Accuracy:    float64(correct) / float64(len(x)*n.OutputDim()),
			ValLoss:     valLoss,
			ValAccuracy: valAcc,
		}
		if math.IsNaN(m.Loss) {
			return nil, fmt.Errorf("training diverged at epoch %d", epoch)
		}
		history = append(history, m)
		if onEpoch != nil {
			onEpoch(m)
		}
	}

	return history, nil
}
