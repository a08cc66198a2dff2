package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/siamese/internal/tensor"
)

// Loss is a criterion comparing predictions against targets of the same shape.
//
// Forward returns the mean loss over all elements and caches what Backward
// needs. Backward returns dLoss/dpredictions for the last Forward call.
type Loss interface {
	Forward(predictions, targets *tensor.Tensor) float32
	Backward() *tensor.Tensor
}

// MSELoss computes the mean squared error.
//
//	Loss = mean((pred - target)^2)
//	dLoss/dpred = 2 * (pred - target) / n
type MSELoss struct {
	diff *tensor.Tensor
}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss() *MSELoss {
	return &MSELoss{}
}

// Forward computes the mean squared error.
func (l *MSELoss) Forward(predictions, targets *tensor.Tensor) float32 {
	checkLossShapes("mse", predictions, targets)
	l.diff = predictions.Zip(targets, func(p, t float32) float32 { return p - t })

	var sum float64
	for _, d := range l.diff.Data() {
		sum += float64(d) * float64(d)
	}
	return float32(sum / float64(l.diff.NumElements()))
}

// Backward returns 2 * (pred - target) / n.
func (l *MSELoss) Backward() *tensor.Tensor {
	mustHaveInput("mse", l.diff)
	return l.diff.Scale(2 / float32(l.diff.NumElements()))
}

// BCELoss computes the binary cross-entropy between probabilities and targets.
//
//	Loss = -mean(t * log(p) + (1 - t) * log(1 - p))
//
// Each log term is clamped at -100 so that p = 0 or p = 1 yields a finite loss.
// Predictions must already be probabilities (e.g. the output of Sigmoid).
//
//	dLoss/dp = (p - t) / max(p * (1 - p), 1e-12) / n
type BCELoss struct {
	predictions *tensor.Tensor
	targets     *tensor.Tensor
}

// NewBCELoss creates a new binary cross-entropy loss function.
func NewBCELoss() *BCELoss {
	return &BCELoss{}
}

const (
	bceLogClamp = -100.0
	bceGradEps  = 1e-12
)

// Forward computes the mean binary cross-entropy.
func (l *BCELoss) Forward(predictions, targets *tensor.Tensor) float32 {
	checkLossShapes("bce", predictions, targets)
	l.predictions, l.targets = predictions, targets

	pd, td := predictions.Data(), targets.Data()
	var sum float64
	for i, p := range pd {
		t := float64(td[i])
		logP := math.Max(math.Log(float64(p)), bceLogClamp)
		log1P := math.Max(math.Log(1-float64(p)), bceLogClamp)
		sum -= t*logP + (1-t)*log1P
	}
	return float32(sum / float64(len(pd)))
}

// Backward returns dLoss/dp.
func (l *BCELoss) Backward() *tensor.Tensor {
	mustHaveInput("bce", l.predictions)
	n := float64(l.predictions.NumElements())
	return l.predictions.Zip(l.targets, func(p, t float32) float32 {
		denom := math.Max(float64(p)*(1-float64(p)), bceGradEps)
		return float32(float64(p-t) / denom / n)
	})
}

func checkLossShapes(op string, predictions, targets *tensor.Tensor) {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("%s: predictions shape %v != targets shape %v", op, predictions.Shape(), targets.Shape()))
	}
}
