package train

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/siamese/internal/backend/cpu"
	"github.com/born-ml/siamese/internal/dataset"
	"github.com/born-ml/siamese/internal/models"
	"github.com/born-ml/siamese/internal/nn"
	"github.com/born-ml/siamese/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairSet(t *testing.T, n int, seed int64) *dataset.PairDataset {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	digits := dataset.Downsample(dataset.Synthetic(2*n, rng))
	pairs, err := dataset.NewPairs(digits, n, rng)
	require.NoError(t, err)
	return pairs
}

func snapshot(params []*nn.Parameter) [][]float32 {
	out := make([][]float32, len(params))
	for i, p := range params {
		out[i] = append([]float32(nil), p.Tensor().Data()...)
	}
	return out
}

func TestCountCorrect(t *testing.T) {
	output := []float32{0.2, 0.5, 0.51, 0.9, 0.1}
	labels := []float32{0, 0, 1, 0, 1}
	// 0.5 rounds to 0
	assert.Equal(t, 3, countCorrect(output, labels))
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults(1000)
	assert.Equal(t, 20, o.Epochs)
	assert.Equal(t, float32(0.001), o.LR)
	assert.Equal(t, float32(0.9), o.Gamma)
	assert.Equal(t, 5, o.BatchSize)
	assert.Equal(t, 1000, o.TestBatchSize)
	assert.Equal(t, float32(0), o.Alpha)
	assert.NotNil(t, o.Rand)
	assert.NotNil(t, o.Logger)
}

func TestSiameseCriterion(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	batch := pairSet(t, 4, 2).Batches(4, false, nil)[0]
	output := tensor.RandUniform(tensor.Shape{4, 1}, 0.1, 0.9, rng)
	left := tensor.RandUniform(tensor.Shape{4, 10}, -1, 1, rng)
	right := tensor.RandUniform(tensor.Shape{4, 10}, -1, 1, rng)

	plain := newSiameseCriterion(false, 0.3)
	bce, l, r := plain.forward(output, left, right, batch)
	gOut, gLeft, gRight := plain.backward()
	assert.Nil(t, gLeft)
	assert.Nil(t, gRight)

	aux := newSiameseCriterion(true, 0.3)
	loss, auxL, auxR := aux.forward(output, left, right, batch)
	assert.InDelta(t, l, auxL, 1e-6)
	assert.InDelta(t, r, auxR, 1e-6)
	assert.InDelta(t, 0.3*bce+0.35*l+0.35*r, loss, 1e-5)

	auxOut, auxGLeft, auxGRight := aux.backward()
	assert.InDeltaSlice(t, gOut.Scale(0.3).Data(), auxOut.Data(), 1e-6)

	ce := nn.NewCrossEntropyLoss()
	ce.Forward(left, batch.Digits(0))
	assert.InDeltaSlice(t, ce.Backward().Scale(0.35).Data(), auxGLeft.Data(), 1e-6)
	ce.Forward(right, batch.Digits(1))
	assert.InDeltaSlice(t, ce.Backward().Scale(0.35).Data(), auxGRight.Data(), 1e-6)
}

func TestTrainSiamese(t *testing.T) {
	backend := cpu.New()
	trainSet, testSet := pairSet(t, 10, 3), pairSet(t, 6, 4)

	for _, aux := range []bool{false, true} {
		rng := rand.New(rand.NewSource(5))
		model := models.NewSiameseNet(models.NewFCN(1, 16, backend, rng), nil, 1, 16, backend, rng)

		history, err := TrainSiamese(context.Background(), model, trainSet, testSet, Options{
			Epochs:    30,
			LR:        0.01,
			Gamma:     1,
			BatchSize: 5,
			AuxLoss:   aux,
			Alpha:     0.5,
			Rand:      rng,
		})
		require.NoError(t, err)
		require.Equal(t, 30, history.Epochs())

		for _, series := range [][]float64{
			history.TrainLoss, history.TrainAcc, history.TrainLossLeft, history.TrainLossRight,
			history.TestLoss, history.TestAcc, history.TestLossLeft, history.TestLossRight,
		} {
			require.Len(t, series, 30)
			for _, v := range series {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
			}
		}
		for _, acc := range append(history.TrainAcc, history.TestAcc...) {
			assert.GreaterOrEqual(t, acc, 0.0)
			assert.LessOrEqual(t, acc, 1.0)
		}
		assert.Less(t, history.TrainLoss[29], history.TrainLoss[0], "aux=%v", aux)

		train, test := history.Final()
		assert.Equal(t, history.TrainLoss[29], train.Loss)
		assert.Equal(t, history.TestAcc[29], test.Accuracy)
	}
}

func TestTrainSiamese_Cancelled(t *testing.T) {
	backend := cpu.New()
	model := models.NewSiameseNet(models.NewFCN(1, 4, backend, nil), nil, 1, 4, backend, nil)
	before := snapshot(model.Parameters())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	history, err := TrainSiamese(ctx, model, pairSet(t, 5, 6), pairSet(t, 5, 7), Options{Epochs: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, history.Epochs())
	assert.Equal(t, before, snapshot(model.Parameters()))
}

func TestPredictSiamese_DoesNotUpdate(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(8))
	model := models.NewSiameseNet(models.NewFCN(1, 8, backend, rng), models.NewFCN(1, 8, backend, rng), 1, 8, backend, rng)
	data := pairSet(t, 7, 9)
	before := snapshot(model.Parameters())

	whole, err := PredictSiamese(context.Background(), model, data, true, 0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, before, snapshot(model.Parameters()))
	assert.GreaterOrEqual(t, whole.Accuracy, 0.0)
	assert.LessOrEqual(t, whole.Accuracy, 1.0)

	// Accuracy over samples does not depend on the batch size.
	split, err := PredictSiamese(context.Background(), model, data, true, 0.5, 3)
	require.NoError(t, err)
	assert.InDelta(t, whole.Accuracy, split.Accuracy, 1e-9)
}

func TestTrainBasic(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(10))
	model := models.NewBasicNet(1, 32, backend, rng)

	history, err := TrainBasic(context.Background(), model, pairSet(t, 10, 11), pairSet(t, 6, 12), Options{
		Epochs:    30,
		LR:        0.01,
		Gamma:     1,
		BatchSize: 5,
		Rand:      rng,
	})
	require.NoError(t, err)
	require.Equal(t, 30, history.Epochs())
	assert.Less(t, history.TrainLoss[29], history.TrainLoss[0])
	for _, v := range history.TrainLossLeft {
		assert.Zero(t, v)
	}

	metrics, err := PredictBasic(context.Background(), model, pairSet(t, 6, 12), 4)
	require.NoError(t, err)
	_, test := history.Final()
	assert.InDelta(t, test.Accuracy, metrics.Accuracy, 1e-9)
}

func TestEmptyDatasets(t *testing.T) {
	backend := cpu.New()
	empty := &dataset.PairDataset{}
	model := models.NewBasicNet(1, 4, backend, nil)

	_, err := TrainBasic(context.Background(), model, empty, empty, Options{})
	assert.Error(t, err)
	_, err = PredictBasic(context.Background(), model, empty, 0)
	assert.Error(t, err)
}

func TestHistoryFinalPanicsWhenEmpty(t *testing.T) {
	assert.Panics(t, func() { (&History{}).Final() })
}
