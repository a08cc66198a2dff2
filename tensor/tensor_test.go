// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/siamese/backend/cpu"
	"github.com/born-ml/siamese/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBackendInterface verifies that the CPU backend implements tensor.Backend.
func TestBackendInterface(t *testing.T) {
	var b tensor.Backend = cpu.New()
	assert.Equal(t, tensor.CPU, b.Device())
}

func TestConstructors(t *testing.T) {
	x := tensor.Full(tensor.Shape{2, 2}, 3)
	assert.Equal(t, float32(12), x.Sum())
	assert.Equal(t, float32(4), tensor.Ones(tensor.Shape{4}).Sum())
	assert.Zero(t, tensor.Zeros(tensor.Shape{3}).Sum())

	_, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2})
	assert.Error(t, err)

	y, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	require.NoError(t, err)
	assert.Equal(t, float32(3), y.At(1, 0))
}

func TestCat(t *testing.T) {
	a := tensor.New([]float32{1, 2}, tensor.Shape{1, 2})
	b := tensor.New([]float32{3, 4}, tensor.Shape{1, 2})
	c := tensor.Cat([]*tensor.Tensor{a, b}, 0)
	assert.Equal(t, tensor.Shape{2, 2}, c.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4}, c.Data())
}

func TestRandUniform(t *testing.T) {
	x := tensor.RandUniform(tensor.Shape{100}, -1, 1, rand.New(rand.NewSource(1)))
	for _, v := range x.Data() {
		assert.GreaterOrEqual(t, v, float32(-1))
		assert.Less(t, v, float32(1))
	}
}
