package tensor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_NumElementsAndStrides(t *testing.T) {
	s := Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Error(t, Shape{2, 0}.Validate())
}

func TestFromSlice_CopiesData(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	x, err := FromSlice(data, Shape{2, 3})
	require.NoError(t, err)

	data[0] = 100
	assert.Equal(t, float32(1), x.At(0, 0))
	assert.Equal(t, float32(6), x.At(1, 2))

	_, err = FromSlice(data, Shape{4, 2})
	assert.Error(t, err)
}

func TestReshape_InfersDimension(t *testing.T) {
	x := Zeros(Shape{4, 2, 3})
	y := x.Reshape(Shape{4, -1})
	assert.Equal(t, Shape{4, 6}, y.Shape())

	y.Data()[0] = 7
	assert.Equal(t, float32(7), x.At(0, 0, 0), "reshape must share storage")

	assert.Panics(t, func() { x.Reshape(Shape{5, -1}) })
}

func TestNarrowAndCat_RoundTrip(t *testing.T) {
	data := make([]float32, 2*2*3)
	for i := range data {
		data[i] = float32(i)
	}
	x, err := FromSlice(data, Shape{2, 2, 3})
	require.NoError(t, err)

	left := x.Narrow(1, 0, 1)
	right := x.Narrow(1, 1, 1)
	assert.Equal(t, Shape{2, 1, 3}, left.Shape())
	assert.Equal(t, []float32{0, 1, 2, 6, 7, 8}, left.Data())
	assert.Equal(t, []float32{3, 4, 5, 9, 10, 11}, right.Data())

	joined := Cat([]*Tensor{left, right}, 1)
	assert.Equal(t, x.Data(), joined.Data())

	rows := Cat([]*Tensor{x.Narrow(0, 0, 1), x.Narrow(0, 1, 1)}, 0)
	assert.Equal(t, x.Data(), rows.Data())
}

func TestCat_ShapeMismatchPanics(t *testing.T) {
	assert.Panics(t, func() {
		Cat([]*Tensor{Zeros(Shape{2, 3}), Zeros(Shape{3, 2})}, 0)
	})
}

func TestElementwise(t *testing.T) {
	a, _ := FromSlice([]float32{1, -2, 3}, Shape{3})
	b, _ := FromSlice([]float32{2, 2, 2}, Shape{3})

	assert.Equal(t, []float32{2, -4, 6}, a.Mul(b).Data())
	assert.Equal(t, []float32{0.5, -1, 1.5}, a.Scale(0.5).Data())

	a.AddInPlace(b)
	assert.Equal(t, []float32{3, 0, 5}, a.Data())
	assert.InDelta(t, 8.0, a.Sum(), 1e-6)
}

func TestRandUniform_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := RandUniform(Shape{100}, -0.5, 0.5, rng)
	for _, v := range x.Data() {
		assert.GreaterOrEqual(t, v, float32(-0.5))
		assert.Less(t, v, float32(0.5))
	}
}
