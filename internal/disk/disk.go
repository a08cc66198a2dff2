// Package disk trains a small fully connected network to tell whether a 2D
// point lies inside a disk, using only the hand-written modules of package nn.
package disk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"

	"github.com/born-ml/siamese/internal/dataset"
	"github.com/born-ml/siamese/internal/nn"
	"github.com/born-ml/siamese/internal/optim"
	"github.com/born-ml/siamese/internal/tensor"
)

// Config configures a disk training run.
//
// Zero-valued fields take their defaults.
type Config struct {
	Samples   int          // Points per split (default: 1000)
	Epochs    int          // Training epochs (default: 50)
	LR        float32      // SGD learning rate (default: 0.1)
	Momentum  float32      // SGD momentum (default: 0)
	BatchSize int          // Mini-batch size (default: 100)
	Seed      int64        // Seed for data, initialization and shuffling
	Logger    *slog.Logger // Per-epoch progress at info level (default: discard)
}

func (c Config) withDefaults() Config {
	if c.Samples <= 0 {
		c.Samples = 1000
	}
	if c.Epochs <= 0 {
		c.Epochs = 50
	}
	if c.LR == 0 {
		c.LR = 0.1
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Epoch holds the metrics of one training epoch.
type Epoch struct {
	Loss       float64 // Mean MSE over training batches
	TrainError float64 // Misclassified fraction of the training set
	TestError  float64 // Misclassified fraction of the test set
}

// NewModel builds the disk classifier:
//
//	Linear(2, 25) -> ReLU -> Linear(25, 25) -> ReLU -> Linear(25, 25) -> Tanh -> Linear(25, 2)
func NewModel(backend tensor.Backend, rng *rand.Rand) *nn.Sequential {
	return nn.NewSequential(
		nn.NewLinear(2, 25, backend, rng),
		nn.NewReLU(),
		nn.NewLinear(25, 25, backend, rng),
		nn.NewReLU(),
		nn.NewLinear(25, 25, backend, rng),
		nn.NewTanh(),
		nn.NewLinear(25, 2, backend, rng),
	)
}

// Train samples a train and a test set, fits a fresh model to one-hot targets
// with MSE and SGD, and returns the per-epoch metrics along with the model.
func Train(ctx context.Context, backend tensor.Backend, cfg Config) ([]Epoch, *nn.Sequential, error) {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	trainSet := dataset.Disk(cfg.Samples, rng)
	testSet := dataset.Disk(cfg.Samples, rng)
	targets := dataset.OneHot(trainSet.Labels, 2)

	model := NewModel(backend, rng)
	criterion := nn.NewMSELoss()
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: cfg.LR, Momentum: cfg.Momentum})

	history := make([]Epoch, 0, cfg.Epochs)
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		order := rng.Perm(cfg.Samples)
		var sumLoss float64
		batches := 0
		for start := 0; start < cfg.Samples; start += cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				return history, model, err
			}
			idx := order[start:min(start+cfg.BatchSize, cfg.Samples)]
			x, y := gatherRows(trainSet.Inputs, idx), gatherRows(targets, idx)

			optimizer.ZeroGrad()
			loss := criterion.Forward(model.Forward(x), y)
			model.Backward(criterion.Backward())
			optimizer.Step()

			sumLoss += float64(loss)
			batches++
		}

		e := Epoch{
			Loss:       sumLoss / float64(batches),
			TrainError: ErrorRate(model, trainSet),
			TestError:  ErrorRate(model, testSet),
		}
		history = append(history, e)
		cfg.Logger.Info("epoch complete",
			"epoch", epoch,
			"loss", e.Loss,
			"train_error", e.TrainError,
			"test_error", e.TestError,
		)
	}
	return history, model, nil
}

// ErrorRate returns the fraction of points whose predicted class differs from the label.
func ErrorRate(model nn.Module, points *dataset.Points) float64 {
	if points.Len() == 0 {
		return 0
	}
	predictions := nn.Predictions(model.Forward(points.Inputs))
	wrong := 0
	for i, p := range predictions {
		if p != points.Labels[i] {
			wrong++
		}
	}
	return float64(wrong) / float64(points.Len())
}

// gatherRows copies the given rows of a 2D tensor into a new tensor.
func gatherRows(t *tensor.Tensor, rows []int) *tensor.Tensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("disk: expected 2D tensor, got %v", shape))
	}
	cols := shape[1]
	src := t.Data()
	out := make([]float32, len(rows)*cols)
	for i, r := range rows {
		copy(out[i*cols:(i+1)*cols], src[r*cols:(r+1)*cols])
	}
	return tensor.New(out, tensor.Shape{len(rows), cols})
}
