// Package train runs the supervised loops of the digit-pair experiment.
//
// Every loop uses Adam with a StepLR schedule (step 1, gamma 0.9 by default),
// binary cross-entropy on the comparison output and, for Siamese models with
// the auxiliary loss enabled, cross-entropy on both digit predictions:
//
//	loss = alpha*bce + (1-alpha)/2*ce_left + (1-alpha)/2*ce_right
//
// The test set is evaluated after every epoch. Losses are averaged over
// batches, accuracies over samples.
package train

import (
	"io"
	"log/slog"
	"math/rand"
)

// Options configures a training run.
//
// Zero-valued fields take their defaults, except Alpha where zero is meaningful.
type Options struct {
	Epochs        int          // Number of epochs (default: 20)
	LR            float32      // Initial Adam learning rate (default: 0.001)
	Gamma         float32      // StepLR decay per epoch (default: 0.9)
	BatchSize     int          // Training batch size (default: 5)
	TestBatchSize int          // Evaluation batch size (default: whole test set)
	AuxLoss       bool         // Add the auxiliary digit losses (Siamese only)
	Alpha         float32      // Weight of the main loss when AuxLoss is set
	Rand          *rand.Rand   // Shuffling source (default: seeded from math/rand)
	Logger        *slog.Logger // Per-epoch progress at debug level (default: discard)
}

func (o Options) withDefaults(testLen int) Options {
	if o.Epochs <= 0 {
		o.Epochs = 20
	}
	if o.LR == 0 {
		o.LR = 0.001
	}
	if o.Gamma == 0 {
		o.Gamma = 0.9
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 5
	}
	if o.TestBatchSize <= 0 {
		o.TestBatchSize = max(testLen, 1)
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(rand.Int63()))
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Metrics summarizes one pass over a dataset.
type Metrics struct {
	Loss      float64
	Accuracy  float64
	LossLeft  float64 // Auxiliary digit loss of the first image (Siamese only)
	LossRight float64 // Auxiliary digit loss of the second image (Siamese only)
}

// History records per-epoch metrics, one entry per completed epoch.
type History struct {
	TrainLoss      []float64
	TrainAcc       []float64
	TrainLossLeft  []float64
	TrainLossRight []float64
	TestLoss       []float64
	TestAcc        []float64
	TestLossLeft   []float64
	TestLossRight  []float64
}

// Epochs returns the number of completed epochs.
func (h *History) Epochs() int {
	return len(h.TrainLoss)
}

func (h *History) record(train, test Metrics) {
	h.TrainLoss = append(h.TrainLoss, train.Loss)
	h.TrainAcc = append(h.TrainAcc, train.Accuracy)
	h.TrainLossLeft = append(h.TrainLossLeft, train.LossLeft)
	h.TrainLossRight = append(h.TrainLossRight, train.LossRight)
	h.TestLoss = append(h.TestLoss, test.Loss)
	h.TestAcc = append(h.TestAcc, test.Accuracy)
	h.TestLossLeft = append(h.TestLossLeft, test.LossLeft)
	h.TestLossRight = append(h.TestLossRight, test.LossRight)
}

// Final returns the train and test metrics of the last epoch.
//
// Panics if no epoch completed.
func (h *History) Final() (train, test Metrics) {
	n := h.Epochs()
	if n == 0 {
		panic("history: no completed epoch")
	}
	i := n - 1
	train = Metrics{h.TrainLoss[i], h.TrainAcc[i], h.TrainLossLeft[i], h.TrainLossRight[i]}
	test = Metrics{h.TestLoss[i], h.TestAcc[i], h.TestLossLeft[i], h.TestLossRight[i]}
	return train, test
}

// countCorrect counts rows where round(output) equals the label.
// 0.5 rounds to 0 (round half to even).
func countCorrect(output, labels []float32) int {
	correct := 0
	for i, p := range output {
		var pred float32
		if p > 0.5 {
			pred = 1
		}
		if pred == labels[i] {
			correct++
		}
	}
	return correct
}
