package train

import (
	"context"
	"errors"

	"github.com/born-ml/siamese/internal/dataset"
	"github.com/born-ml/siamese/internal/nn"
	"github.com/born-ml/siamese/internal/optim"
	"github.com/born-ml/siamese/internal/tensor"
)

// SiameseModel is a pair comparator that also exposes its digit logits.
type SiameseModel interface {
	Forward(images *tensor.Tensor) (output, leftLogits, rightLogits *tensor.Tensor)
	Backward(gradOutput, gradLeft, gradRight *tensor.Tensor) *tensor.Tensor
	Parameters() []*nn.Parameter
}

// siameseCriterion evaluates the main and auxiliary losses of one batch.
type siameseCriterion struct {
	auxLoss bool
	alpha   float32

	bce   *nn.BCELoss
	left  *nn.CrossEntropyLoss
	right *nn.CrossEntropyLoss
}

func newSiameseCriterion(auxLoss bool, alpha float32) *siameseCriterion {
	return &siameseCriterion{
		auxLoss: auxLoss,
		alpha:   alpha,
		bce:     nn.NewBCELoss(),
		left:    nn.NewCrossEntropyLoss(),
		right:   nn.NewCrossEntropyLoss(),
	}
}

// forward returns the combined loss along with both digit losses.
// Digit losses are always computed for reporting.
func (c *siameseCriterion) forward(output, leftLogits, rightLogits *tensor.Tensor, batch dataset.PairBatch) (loss, lossLeft, lossRight float32) {
	loss = c.bce.Forward(output, batch.BoolLabels)
	lossLeft = c.left.Forward(leftLogits, batch.Digits(0))
	lossRight = c.right.Forward(rightLogits, batch.Digits(1))
	if c.auxLoss {
		w := (1 - c.alpha) / 2
		loss = c.alpha*loss + w*lossLeft + w*lossRight
	}
	return loss, lossLeft, lossRight
}

// backward returns the gradients of the combined loss with respect to the
// output and, when the auxiliary loss is on, both digit logits.
func (c *siameseCriterion) backward() (gradOutput, gradLeft, gradRight *tensor.Tensor) {
	gradOutput = c.bce.Backward()
	if !c.auxLoss {
		return gradOutput, nil, nil
	}
	w := (1 - c.alpha) / 2
	return gradOutput.Scale(c.alpha), c.left.Backward().Scale(w), c.right.Backward().Scale(w)
}

// TrainSiamese trains model on train and evaluates it on test after every epoch.
//
// Cancellation is checked between batches; on cancellation the history of
// the completed epochs is returned with ctx.Err().
func TrainSiamese(ctx context.Context, model SiameseModel, train, test *dataset.PairDataset, opts Options) (*History, error) {
	if train.Len() == 0 {
		return nil, errors.New("train: empty training set")
	}
	opts = opts.withDefaults(test.Len())

	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: opts.LR})
	scheduler := optim.NewStepLR(optimizer, optim.StepLRConfig{StepSize: 1, Gamma: opts.Gamma})
	criterion := newSiameseCriterion(opts.AuxLoss, opts.Alpha)

	history := &History{}
	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		var sumLoss, sumLeft, sumRight float64
		correct, total := 0, 0

		batches := train.Batches(opts.BatchSize, true, opts.Rand)
		for _, batch := range batches {
			if err := ctx.Err(); err != nil {
				return history, err
			}

			optimizer.ZeroGrad()
			output, left, right := model.Forward(batch.Images)
			loss, lossLeft, lossRight := criterion.forward(output, left, right, batch)
			model.Backward(criterion.backward())
			optimizer.Step()

			total += batch.Size()
			correct += countCorrect(output.Data(), batch.BoolLabels.Data())
			sumLoss += float64(loss)
			sumLeft += float64(lossLeft)
			sumRight += float64(lossRight)
		}
		scheduler.Step()

		n := float64(len(batches))
		trainMetrics := Metrics{
			Loss:      sumLoss / n,
			Accuracy:  float64(correct) / float64(total),
			LossLeft:  sumLeft / n,
			LossRight: sumRight / n,
		}

		testMetrics, err := PredictSiamese(ctx, model, test, opts.AuxLoss, opts.Alpha, opts.TestBatchSize)
		if err != nil {
			return history, err
		}
		history.record(trainMetrics, testMetrics)

		opts.Logger.Debug("epoch complete",
			"epoch", epoch,
			"lr", optimizer.GetLR(),
			"train_loss", trainMetrics.Loss,
			"train_acc", trainMetrics.Accuracy,
			"test_loss", testMetrics.Loss,
			"test_acc", testMetrics.Accuracy,
		)
	}
	return history, nil
}

// PredictSiamese evaluates model on data without updating it.
//
// The reported loss combines the main and auxiliary losses the same way
// TrainSiamese does.
func PredictSiamese(ctx context.Context, model SiameseModel, data *dataset.PairDataset, auxLoss bool, alpha float32, batchSize int) (Metrics, error) {
	if data.Len() == 0 {
		return Metrics{}, errors.New("predict: empty dataset")
	}
	if batchSize <= 0 {
		batchSize = data.Len()
	}
	criterion := newSiameseCriterion(auxLoss, alpha)

	var sumLoss, sumLeft, sumRight float64
	correct, total := 0, 0
	batches := data.Batches(batchSize, false, nil)
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return Metrics{}, err
		}
		output, left, right := model.Forward(batch.Images)
		loss, lossLeft, lossRight := criterion.forward(output, left, right, batch)

		total += batch.Size()
		correct += countCorrect(output.Data(), batch.BoolLabels.Data())
		sumLoss += float64(loss)
		sumLeft += float64(lossLeft)
		sumRight += float64(lossRight)
	}

	n := float64(len(batches))
	return Metrics{
		Loss:      sumLoss / n,
		Accuracy:  float64(correct) / float64(total),
		LossLeft:  sumLeft / n,
		LossRight: sumRight / n,
	}, nil
}
