package disk

import (
	"context"
	"math/rand"
	"testing"

	"github.com/born-ml/siamese/internal/backend/cpu"
	"github.com/born-ml/siamese/internal/dataset"
	"github.com/born-ml/siamese/internal/nn"
	"github.com/born-ml/siamese/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModel(t *testing.T) {
	model := NewModel(cpu.New(), rand.New(rand.NewSource(1)))
	assert.Equal(t, 7, model.Len())
	// (2*25+25) + 2*(25*25+25) + (25*2+2)
	assert.Equal(t, 75+1300+52, nn.CountParameters(model))

	out := model.Forward(tensor.Zeros(tensor.Shape{4, 2}))
	assert.Equal(t, tensor.Shape{4, 2}, out.Shape())
}

func TestTrain(t *testing.T) {
	history, model, err := Train(context.Background(), cpu.New(), Config{
		Samples:   1000,
		Epochs:    60,
		LR:        0.1,
		Momentum:  0.9,
		BatchSize: 50,
		Seed:      3,
	})
	require.NoError(t, err)
	require.Len(t, history, 60)
	require.NotNil(t, model)

	first, last := history[0], history[len(history)-1]
	assert.Less(t, last.Loss, first.Loss)
	assert.Less(t, last.TrainError, 0.3)
	assert.Less(t, last.TestError, 0.3)
}

func TestTrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	history, _, err := Train(ctx, cpu.New(), Config{Epochs: 5})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, history)
}

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, 1000, c.Samples)
	assert.Equal(t, 50, c.Epochs)
	assert.Equal(t, float32(0.1), c.LR)
	assert.Equal(t, 100, c.BatchSize)
	assert.NotNil(t, c.Logger)
}

func TestErrorRate(t *testing.T) {
	points := &dataset.Points{
		Inputs: tensor.New([]float32{0, 1, 1, 0, 1, 0}, tensor.Shape{3, 2}),
		Labels: []int{1, 0, 1},
	}
	// Identity on [x, y] predicts argmax.
	identity := nn.NewSequential()
	assert.InDelta(t, 1.0/3.0, ErrorRate(identity, points), 1e-12)
	assert.Zero(t, ErrorRate(identity, &dataset.Points{}))
}

func TestGatherRows(t *testing.T) {
	x := tensor.New([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})
	got := gatherRows(x, []int{2, 0})
	assert.Equal(t, tensor.Shape{2, 2}, got.Shape())
	assert.Equal(t, []float32{5, 6, 1, 2}, got.Data())
	assert.Panics(t, func() { gatherRows(tensor.Zeros(tensor.Shape{2}), []int{0}) })
}
