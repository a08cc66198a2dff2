package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/siamese/internal/tensor"
)

// CrossEntropyLoss computes cross-entropy loss for multi-class classification.
//
// Mathematical Formulation:
//
//	Loss = mean over batch of -log_softmax(logits)[target]
//
// Gradient (Backward):
//
//	dL/dlogits = (softmax(logits) - one_hot(target)) / batch
//
// Usage:
//
//	criterion := nn.NewCrossEntropyLoss()
//	logits := model.Forward(input)              // [batch, num_classes]
//	loss := criterion.Forward(logits, labels)   // labels: class indices
//	model.Backward(criterion.Backward())
//
// The log-sum-exp trick keeps the softmax finite for large logits.
type CrossEntropyLoss struct {
	probs  *tensor.Tensor
	labels []int
}

// NewCrossEntropyLoss creates a new cross-entropy loss function.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the mean cross-entropy of logits [batch, classes] against labels.
func (l *CrossEntropyLoss) Forward(logits *tensor.Tensor, labels []int) float32 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross_entropy: expected 2D logits [batch, classes], got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	if len(labels) != batch {
		panic(fmt.Sprintf("cross_entropy: %d labels for batch of %d", len(labels), batch))
	}

	l.probs = tensor.ZerosLike(logits)
	l.labels = labels

	ld, pd := logits.Data(), l.probs.Data()
	var total float64
	for i := 0; i < batch; i++ {
		row := ld[i*classes : (i+1)*classes]
		label := labels[i]
		if label < 0 || label >= classes {
			panic(fmt.Sprintf("cross_entropy: label %d out of range [0, %d)", label, classes))
		}

		maxLogit := float64(row[0])
		for _, v := range row[1:] {
			maxLogit = math.Max(maxLogit, float64(v))
		}
		var sumExp float64
		for _, v := range row {
			sumExp += math.Exp(float64(v) - maxLogit)
		}
		logSumExp := maxLogit + math.Log(sumExp)

		for j, v := range row {
			pd[i*classes+j] = float32(math.Exp(float64(v) - logSumExp))
		}
		total += logSumExp - float64(row[label])
	}
	return float32(total / float64(batch))
}

// Backward returns (softmax - one_hot) / batch.
func (l *CrossEntropyLoss) Backward() *tensor.Tensor {
	mustHaveInput("cross_entropy", l.probs)
	shape := l.probs.Shape()
	batch, classes := shape[0], shape[1]

	grad := l.probs.Clone()
	gd := grad.Data()
	for i, label := range l.labels {
		gd[i*classes+label]--
	}
	scale := 1 / float32(batch)
	for i := range gd {
		gd[i] *= scale
	}
	return grad
}

// Predictions returns the argmax class of every row of logits.
func Predictions(logits *tensor.Tensor) []int {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("predictions: expected 2D logits, got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	data := logits.Data()
	preds := make([]int, batch)
	for i := 0; i < batch; i++ {
		best := 0
		for j := 1; j < classes; j++ {
			if data[i*classes+j] > data[i*classes+best] {
				best = j
			}
		}
		preds[i] = best
	}
	return preds
}
