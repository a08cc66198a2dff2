package train

import (
	"context"
	"errors"

	"github.com/born-ml/siamese/internal/dataset"
	"github.com/born-ml/siamese/internal/nn"
	"github.com/born-ml/siamese/internal/optim"
)

// TrainBasic trains a comparator that maps [B, 2, 14, 14] directly to [B, 1]
// probabilities, using binary cross-entropy only.
//
// The digit-loss fields of the returned history stay at zero.
func TrainBasic(ctx context.Context, model nn.Module, train, test *dataset.PairDataset, opts Options) (*History, error) {
	if train.Len() == 0 {
		return nil, errors.New("train: empty training set")
	}
	opts = opts.withDefaults(test.Len())

	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: opts.LR})
	scheduler := optim.NewStepLR(optimizer, optim.StepLRConfig{StepSize: 1, Gamma: opts.Gamma})
	criterion := nn.NewBCELoss()

	history := &History{}
	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		var sumLoss float64
		correct, total := 0, 0

		batches := train.Batches(opts.BatchSize, true, opts.Rand)
		for _, batch := range batches {
			if err := ctx.Err(); err != nil {
				return history, err
			}

			optimizer.ZeroGrad()
			output := model.Forward(batch.Images)
			loss := criterion.Forward(output, batch.BoolLabels)
			model.Backward(criterion.Backward())
			optimizer.Step()

			total += batch.Size()
			correct += countCorrect(output.Data(), batch.BoolLabels.Data())
			sumLoss += float64(loss)
		}
		scheduler.Step()

		trainMetrics := Metrics{
			Loss:     sumLoss / float64(len(batches)),
			Accuracy: float64(correct) / float64(total),
		}
		testMetrics, err := PredictBasic(ctx, model, test, opts.TestBatchSize)
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

// PredictBasic evaluates a BasicNet-style model on data.
func PredictBasic(ctx context.Context, model nn.Module, data *dataset.PairDataset, batchSize int) (Metrics, error) {
	if data.Len() == 0 {
		return Metrics{}, errors.New("predict: empty dataset")
	}
	if batchSize <= 0 {
		batchSize = data.Len()
	}
	criterion := nn.NewBCELoss()

	var sumLoss float64
	correct, total := 0, 0
	batches := data.Batches(batchSize, false, nil)
	for _, batch := range batches {
		if err := ctx.Err(); err != nil {
			return Metrics{}, err
		}
		output := model.Forward(batch.Images)
		sumLoss += float64(criterion.Forward(output, batch.BoolLabels))
		total += batch.Size()
		correct += countCorrect(output.Data(), batch.BoolLabels.Data())
	}

	return Metrics{
		Loss:     sumLoss / float64(len(batches)),
		Accuracy: float64(correct) / float64(total),
	}, nil
}
